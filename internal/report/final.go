package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/dashboard"
)

// DefaultFinalReportPath is the combined project report file.
const DefaultFinalReportPath = "final_report.md"

// FinalReport renders the overall project report from the dashboard
// summary and adaptive log.
func FinalReport(summary dashboard.Summary, log *adaptive.Log) string {
	var b strings.Builder
	b.WriteString("# Final Project Report — Adaptive PR Reviewer\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339))
	b.WriteString("This repository implements an adaptive, self-evaluating AI PR reviewer with reinforcement tuning, predictive analytics, cross-repo learning, and a generated dashboard.\n\n")

	b.WriteString("## Key Metrics (automatically computed)\n\n")
	fmt.Fprintf(&b, "- **Total reviews processed:** %d\n", summary.TotalReviews)
	if summary.AvgPriority != nil {
		fmt.Fprintf(&b, "- **Avg priority score:** %.2f\n", *summary.AvgPriority)
	} else {
		b.WriteString("- **Avg priority score:** n/a\n")
	}
	fmt.Fprintf(&b, "- **High-risk ratio:** %.2f%%\n", summary.RiskRatio)
	trend := summary.RecentTrend
	if trend == "" {
		trend = "n/a"
	}
	fmt.Fprintf(&b, "- **Recent trend:** %s\n\n", trend)

	if log != nil {
		b.WriteString("### Adaptive snapshot\n\n")
		if log.AverageScore != nil {
			fmt.Fprintf(&b, "- avg_recent_priority: %.2f\n", *log.AverageScore)
		} else {
			b.WriteString("- avg_recent_priority: n/a\n")
		}
		fmt.Fprintf(&b, "- adaptive history length: %d\n\n", len(log.History))
	}

	b.WriteString(`## How to run locally

1. Clone the repository.
2. Set GITHUB_TOKEN plus a provider API key (OPENAI_API_KEY or ANTHROPIC_API_KEY).
3. Run ` + "`reviewloop review pr <number>`" + ` for a live review, or ` + "`reviewloop review staged`" + ` against local changes.
4. Generate artifacts with ` + "`reviewloop report summary`" + ` and ` + "`reviewloop report dashboard`" + `.
`)
	return b.String()
}

// WriteFinalReport renders and persists the final report.
func WriteFinalReport(path string, summary dashboard.Summary, log *adaptive.Log) error {
	if path == "" {
		path = DefaultFinalReportPath
	}
	if err := os.WriteFile(path, []byte(FinalReport(summary, log)), 0o644); err != nil {
		return fmt.Errorf("writing final report: %w", err)
	}
	return nil
}
