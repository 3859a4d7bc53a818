package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestStore_LoadMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)
	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load on missing file = %d entries, want 0", len(got))
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path, 0)
	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load on corrupt file = %d entries, want 0", len(got))
	}
}

func TestStore_LoadWrappedShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare list", `[{"pr_number":"7","priority_score":40}]`},
		{"entries wrapper", `{"entries":[{"pr_number":"7","priority_score":40}]}`},
		{"reviews wrapper", `{"reviews":[{"pr_number":"7","priority_score":40}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "history.json")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			got := NewStore(path, 0).Load()
			if len(got) != 1 || got[0].PRNumber != "7" {
				t.Errorf("Load = %+v, want single entry for PR 7", got)
			}
		})
	}
}

func TestStore_UpsertDedupByPRNumber(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)

	first := NewEntry("12", "fix bug", "bug fix", 40, false, "diff-a", nil)
	if _, replaced, err := s.Upsert(first); err != nil || replaced {
		t.Fatalf("first Upsert: replaced=%v err=%v", replaced, err)
	}

	second := NewEntry("12", "fix bug again", "bug fix", 80, true, "diff-b", nil)
	metrics, replaced, err := s.Upsert(second)
	if err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	if !replaced {
		t.Error("expected duplicate PR number to replace")
	}
	if metrics.TotalReviews != 1 {
		t.Errorf("TotalReviews = %d, want 1", metrics.TotalReviews)
	}

	got := s.Load()
	if len(got) != 1 || got[0].PriorityScore != 80 {
		t.Errorf("stored = %+v, want single replaced entry with score 80", got)
	}
}

func TestStore_UpsertDedupByContentHash(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"), 0)

	if _, _, err := s.Upsert(NewEntry("1", "a", "general", 10, false, "same diff", nil)); err != nil {
		t.Fatal(err)
	}
	// Different PR number, identical content.
	_, replaced, err := s.Upsert(NewEntry("", "b", "general", 20, false, "same diff", nil))
	if err != nil {
		t.Fatal(err)
	}
	if !replaced {
		t.Error("expected duplicate content hash to replace")
	}
	if got := s.Load(); len(got) != 1 {
		t.Errorf("stored %d entries, want 1", len(got))
	}
}

func TestStore_BoundedRetention(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "history.json"), 5)
	for i := 0; i < 9; i++ {
		e := NewEntry(fmt.Sprintf("%d", i), "t", "general", i*10, false, fmt.Sprintf("diff-%d", i), nil)
		if _, _, err := s.Upsert(e); err != nil {
			t.Fatal(err)
		}
	}
	got := s.Load()
	if len(got) != 5 {
		t.Fatalf("stored %d entries, want 5", len(got))
	}
	// Oldest-first order with the oldest four dropped.
	if got[0].PRNumber != "4" || got[4].PRNumber != "8" {
		t.Errorf("retention kept %s..%s, want 4..8", got[0].PRNumber, got[4].PRNumber)
	}
}

func TestStore_SaveWritesSummarySidecar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	s := NewStore(path, 0)
	if _, _, err := s.Upsert(NewEntry("3", "t", "docs", 60, true, "x", nil)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path + ".summary.json")
	if err != nil {
		t.Fatalf("summary sidecar missing: %v", err)
	}
	var m Metrics
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("summary sidecar not valid JSON: %v", err)
	}
	if m.TotalReviews != 1 || m.HighRiskCount != 1 {
		t.Errorf("sidecar metrics = %+v", m)
	}
}

func TestFindDuplicate_EmptyKeysNeverMatch(t *testing.T) {
	entries := []Entry{{PRNumber: "", ContentHash: ""}}
	if i := FindDuplicate(entries, "", ""); i != -1 {
		t.Errorf("FindDuplicate with empty keys = %d, want -1", i)
	}
}
