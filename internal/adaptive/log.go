package adaptive

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// DefaultLogPath is the adaptive log file in the workspace.
const DefaultLogPath = "ai_adaptive_log.json"

// DefaultMaxLogEntries bounds the adaptive log.
const DefaultMaxLogEntries = 400

// LogEntry records either an adaptive decision (before a review) or the
// outcome of a run (after it).
type LogEntry struct {
	Timestamp     string    `json:"timestamp"`
	Reason        string    `json:"reason,omitempty"`
	PRNumber      string    `json:"pr_number,omitempty"`
	PriorityScore *int      `json:"priority_score,omitempty"`
	HighRisk      bool      `json:"high_risk,omitempty"`
	Category      string    `json:"category,omitempty"`
	AISelfScore   *float64  `json:"ai_self_score,omitempty"`
	Settings      *Settings `json:"adaptive_settings,omitempty"`
}

// Log is the adaptive log file: a bounded history plus aggregates that are
// recomputed on every save.
type Log struct {
	History       []LogEntry `json:"history"`
	AverageScore  *float64   `json:"average_score"`
	HighRiskCount int        `json:"high_risk_count"`

	path       string
	maxEntries int
}

// OpenLog loads the adaptive log from path, tolerating a missing or
// corrupt file. maxEntries <= 0 selects DefaultMaxLogEntries.
func OpenLog(path string, maxEntries int) *Log {
	if path == "" {
		path = DefaultLogPath
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxLogEntries
	}
	l := &Log{path: path, maxEntries: maxEntries}
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, l)
	}
	return l
}

// AppendDecision records the adaptive settings chosen before a review.
func (l *Log) AppendDecision(s Settings) {
	l.History = append(l.History, LogEntry{
		Timestamp: nowISO(),
		Reason:    "computed before review",
		Settings:  &s,
	})
}

// AppendRun records the outcome of a review run.
func (l *Log) AppendRun(prNumber string, priorityScore int, highRisk bool, category string, s Settings) {
	l.History = append(l.History, LogEntry{
		Timestamp:     nowISO(),
		PRNumber:      prNumber,
		PriorityScore: &priorityScore,
		HighRisk:      highRisk,
		Category:      category,
		Settings:      &s,
	})
}

// Save trims the history, recomputes the aggregates, and writes the log
// via a temp-file rename.
func (l *Log) Save() error {
	if len(l.History) > l.maxEntries {
		l.History = l.History[len(l.History)-l.maxEntries:]
	}

	var sum float64
	n := 0
	risk := 0
	for _, e := range l.History {
		if e.PriorityScore != nil {
			sum += float64(*e.PriorityScore)
			n++
		}
		if e.HighRisk {
			risk++
		}
	}
	l.AverageScore = nil
	if n > 0 {
		avg := math.Round(sum/float64(n)*100) / 100
		l.AverageScore = &avg
	}
	l.HighRiskCount = risk

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling adaptive log: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing adaptive log: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing adaptive log: %w", err)
	}
	return nil
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
