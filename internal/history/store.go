package history

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultMaxEntries bounds the history file to the most recent entries.
const DefaultMaxEntries = 200

// DefaultPath is the history file written into the CI workspace.
const DefaultPath = "review_history.json"

// Store persists review entries to a JSON file, oldest first.
type Store struct {
	path       string
	maxEntries int
}

// NewStore creates a store for the given path. maxEntries <= 0 selects
// DefaultMaxEntries.
func NewStore(path string, maxEntries int) *Store {
	if path == "" {
		path = DefaultPath
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{path: path, maxEntries: maxEntries}
}

// Path returns the history file path.
func (s *Store) Path() string { return s.path }

// wrapped matches the object forms older generations of the history file
// used; the store always writes a bare list but reads all three shapes.
type wrapped struct {
	Entries []Entry `json:"entries"`
	Reviews []Entry `json:"reviews"`
}

// Load reads the history file. A missing or unparseable file yields an
// empty history rather than an error: the store is best-effort state, and
// every consumer must behave sensibly from a cold start.
func (s *Store) Load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries
	}
	var w wrapped
	if err := json.Unmarshal(data, &w); err == nil {
		if len(w.Entries) > 0 {
			return w.Entries
		}
		return w.Reviews
	}
	return nil
}

// Save trims to the retention bound and writes the list via a temp file
// rename, then refreshes the metrics sidecar.
func (s *Store) Save(entries []Entry) error {
	entries = Trim(entries, s.maxEntries)
	if err := writeJSON(s.path, entries); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	// Sidecar is advisory; a failure to write it must not fail the save.
	if err := writeJSON(s.path+".summary.json", ComputeMetrics(entries)); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] could not write history summary: %v\n", err)
	}
	return nil
}

// Upsert adds the entry, replacing any existing entry with the same PR
// number or content hash in place, and saves. It returns the metrics for
// the resulting history and whether an existing entry was replaced.
func (s *Store) Upsert(entry Entry) (Metrics, bool, error) {
	entries := s.Load()
	replaced := false
	if i := FindDuplicate(entries, entry.PRNumber, entry.ContentHash); i >= 0 {
		entries[i] = entry
		replaced = true
	} else {
		entries = append(entries, entry)
	}
	if err := s.Save(entries); err != nil {
		return Metrics{}, replaced, err
	}
	return ComputeMetrics(Trim(entries, s.maxEntries)), replaced, nil
}

// FindDuplicate returns the index of an entry matching the PR number or
// content hash, or -1. Empty keys never match.
func FindDuplicate(entries []Entry, prNumber, contentHash string) int {
	for i, e := range entries {
		if prNumber != "" && e.PRNumber == prNumber {
			return i
		}
		if contentHash != "" && e.ContentHash == contentHash {
			return i
		}
	}
	return -1
}

// Trim returns the most recent max entries.
func Trim(entries []Entry, max int) []Entry {
	if max <= 0 || len(entries) <= max {
		return entries
	}
	return entries[len(entries)-max:]
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
