package output

import (
	"io"
	"strings"

	"github.com/dshills/reviewloop/internal/review"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, result *review.Result) error {
	ew := &errWriter{w: w}

	ew.printf("Adaptive PR Review — %s mode\n", result.Mode)
	ew.printf("Category: %s\n", result.Category)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Priority score: %d/100", result.Analysis.PriorityScore)
	if result.Analysis.HighRisk {
		ew.printf("  [HIGH RISK]")
	}
	ew.println("")
	ew.printf("Issues flagged: %d\n", result.Analysis.IssueCount)
	ew.printf("Predicted risk: %.3f (quality %.3f)\n",
		result.Prediction.RiskScore, result.Prediction.PredictedQuality)
	if len(result.Analysis.RiskTerms) > 0 {
		ew.printf("Risk terms: %s\n", strings.Join(result.Analysis.RiskTerms, ", "))
	}
	ew.printf("Adaptive tone: %s (depth: %s, caution: %s)\n",
		result.Settings.Tone, result.Settings.Depth, result.Settings.CautionLevel)
	if result.Settings.TrendSummary != "" {
		for _, line := range wrapText(result.Settings.TrendSummary, 70) {
			ew.printf("  %s\n", line)
		}
	}
	ew.println(strings.Repeat("─", 60))

	ew.println("")
	ew.println(strings.TrimSpace(result.Feedback))
	ew.println("")

	ew.println(strings.Repeat("─", 60))
	ew.printf("Reviews on record: %d", result.Metrics.TotalReviews)
	if result.Metrics.AvgPriorityScore != nil {
		ew.printf(" (avg priority %.1f)", *result.Metrics.AvgPriorityScore)
	}
	ew.println("")
	if result.TokensUsed > 0 {
		ew.printf("Tokens used: %d\n", result.TokensUsed)
	}
	ew.printf("Completed in %dms\n", result.DurationMs)

	return ew.err
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
