package review

import (
	"strings"
	"testing"

	"github.com/dshills/reviewloop/internal/adaptive"
)

func TestBuildPrompt(t *testing.T) {
	in := Input{
		Title: "Add retry budget",
		Body:  "Bounds retries per run.",
		Diff:  "+func retryBudget() {}",
	}
	settings := adaptive.Settings{
		Tone:         "cautious",
		Depth:        "deep",
		CautionLevel: "high",
		TrendSummary: "High-risk trend detected. Emphasize correctness and security.",
	}
	prompt := BuildPrompt(in, "feature addition", settings, nil)

	for _, want := range []string{
		"Tone: cautious",
		"Depth: deep",
		"Caution: high",
		"reviewing a feature addition pull request",
		"PR Title: Add retry budget",
		"--- Begin diff ---",
		"+func retryBudget() {}",
		"--- End diff ---",
		"### Summary",
		"### Potential Issues",
		"### Suggestions",
		"### Testing Recommendations",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPrompt_WeightFocusHints(t *testing.T) {
	w := adaptive.Weights{"security_bias": 1.8, "test_bias": 1.0, "depth_multiplier": 1.7}
	prompt := BuildPrompt(Input{}, "general", adaptive.Settings{}, w)
	if !strings.Contains(prompt, "scrutinize security") {
		t.Error("missing security focus hint")
	}
	if !strings.Contains(prompt, "deep review") {
		t.Error("missing depth focus hint")
	}
	if strings.Contains(prompt, "test quality") {
		t.Error("unexpected test focus hint at neutral weight")
	}
}

func TestTruncateDiff(t *testing.T) {
	long := strings.Repeat("x", MaxDiffChars+500)
	if got := TruncateDiff(long, 0); len(got) != MaxDiffChars {
		t.Errorf("len = %d, want %d", len(got), MaxDiffChars)
	}
	if got := TruncateDiff("short", 0); got != "short" {
		t.Errorf("short diff altered: %q", got)
	}
	if got := TruncateDiff("abcdef", 3); got != "abc" {
		t.Errorf("custom max = %q, want abc", got)
	}
}
