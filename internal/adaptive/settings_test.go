package adaptive

import (
	"testing"

	"github.com/dshills/reviewloop/internal/history"
)

func entriesWith(scores []int, highRisk bool) []history.Entry {
	out := make([]history.Entry, len(scores))
	for i, s := range scores {
		out[i] = history.Entry{PriorityScore: s, HighRisk: highRisk}
	}
	return out
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name    string
		entries []history.Entry
		tone    string
		depth   string
		caution string
	}{
		{"no history", nil, "neutral", "standard", "normal"},
		{"quiet period", entriesWith([]int{10, 20, 30}, false), "concise", "light", "low"},
		{"moderate", entriesWith([]int{50, 60, 55}, false), "balanced", "standard", "normal"},
		{"high risk trend", entriesWith([]int{80, 90, 85}, true), "cautious", "deep", "high"},
		// Low scores but recent high risk should not relax the review.
		{"low score with risk", entriesWith([]int{20, 25}, true), "balanced", "standard", "normal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Analyze(tt.entries)
			if s.Tone != tt.tone || s.Depth != tt.depth || s.CautionLevel != tt.caution {
				t.Errorf("Analyze = %s/%s/%s, want %s/%s/%s",
					s.Tone, s.Depth, s.CautionLevel, tt.tone, tt.depth, tt.caution)
			}
		})
	}
}

func TestAnalyze_WindowsRecentEntries(t *testing.T) {
	// Twenty old high-risk entries followed by ten calm ones: only the
	// calm window should count.
	entries := entriesWith(repeatInt(95, 20), true)
	entries = append(entries, entriesWith(repeatInt(10, 10), false)...)

	s := Analyze(entries)
	if s.Tone != "concise" {
		t.Errorf("Tone = %q, want concise from recent window", s.Tone)
	}
	if s.AvgRecentPriority != 10 {
		t.Errorf("AvgRecentPriority = %v, want 10", s.AvgRecentPriority)
	}
	if s.RecentHighRisk != 0 {
		t.Errorf("RecentHighRisk = %d, want 0", s.RecentHighRisk)
	}
}

func repeatInt(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
