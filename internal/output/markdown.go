package output

import (
	"io"
	"strings"

	"github.com/dshills/reviewloop/internal/review"
)

// MarkdownWriter outputs the result in the same shape the reviewer
// posts to a pull request.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, result *review.Result) error {
	ew := &errWriter{w: w}

	ew.println(strings.TrimSpace(result.Feedback))
	ew.println("")
	ew.println("---")
	ew.printf("**Mode:** %s | **Category:** %s | **Priority:** %d/100",
		result.Mode, result.Category, result.Analysis.PriorityScore)
	if result.Analysis.HighRisk {
		ew.printf(" | **High risk**")
	}
	ew.println("")
	if len(result.Analysis.RiskTerms) > 0 {
		ew.printf("**Risk terms:** %s\n", strings.Join(result.Analysis.RiskTerms, ", "))
	}
	ew.printf("**Adaptive tone:** %s\n", result.Settings.Tone)

	return ew.err
}
