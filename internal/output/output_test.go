package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/dshills/reviewloop/internal/review"
)

func sampleResult() *review.Result {
	avg := 47.5
	return &review.Result{
		RunID:    "run-1",
		Mode:     review.ModeLive,
		Category: "security",
		Feedback: "## AI Code Review Feedback\n\n### Summary\n\nTightens auth checks.\n",
		Analysis: review.Analysis{
			IssueCount:    2,
			HighRisk:      true,
			PriorityScore: 85,
			RiskTerms:     []string{"security", "auth"},
		},
		Prediction: review.Prediction{
			RiskScore:        0.41,
			PredictedQuality: 0.59,
		},
		Settings: adaptive.Settings{
			Tone:         "cautious",
			Depth:        "deep",
			CautionLevel: "high",
			TrendSummary: "High-risk trend detected. Emphasize correctness and security.",
		},
		Metrics:    history.Metrics{TotalReviews: 12, AvgPriorityScore: &avg},
		TokensUsed: 420,
		DurationMs: 1337,
	}
}

func TestGetWriter(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"markdown", false},
		{"xml", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			_, err := GetWriter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("GetWriter(%q) err = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"LIVE mode",
		"Category: security",
		"Priority score: 85/100",
		"[HIGH RISK]",
		"Risk terms: security, auth",
		"Predicted risk: 0.410",
		"Adaptive tone: cautious",
		"Tightens auth checks.",
		"Reviews on record: 12",
		"Tokens used: 420",
		"Completed in 1337ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	var got review.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.RunID != "run-1" || got.Analysis.PriorityScore != 85 {
		t.Errorf("round-trip = %+v", got)
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "## AI Code Review Feedback") {
		t.Error("markdown missing feedback body")
	}
	if !strings.Contains(out, "**Priority:** 85/100") {
		t.Errorf("markdown missing priority line:\n%s", out)
	}
	if !strings.Contains(out, "**High risk**") {
		t.Error("markdown missing high risk marker")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("a bb ccc dddd", 5)
	for _, l := range lines {
		if len(l) > 5 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if got := wrapText("short", 70); len(got) != 1 || got[0] != "short" {
		t.Errorf("wrapText(short) = %v", got)
	}
}
