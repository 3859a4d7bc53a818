package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/dashboard"
)

// Recruiter report output files.
const (
	DefaultRecruiterMDPath   = "recruiter_summary.md"
	DefaultRecruiterJSONPath = "recruiter_score.json"
)

// RecruiterMetrics are the headline numbers in the recruiter report.
type RecruiterMetrics struct {
	TotalPRs      int     `json:"total_prs"`
	AvgConfidence float64 `json:"avg_confidence"`
	Adaptability  float64 `json:"adaptability"`
	InsightDepth  float64 `json:"insight_depth"`
	ImpactScore   float64 `json:"impact_score"`
	Timestamp     string  `json:"timestamp"`
}

// BuildRecruiterMetrics derives the recruiter metrics from the
// dashboard summary, adaptive weights, and calibrated confidence.
// avgConfidence <= 0 falls back to a neutral 75.
func BuildRecruiterMetrics(summary dashboard.Summary, weights adaptive.Weights, avgConfidence float64) RecruiterMetrics {
	if avgConfidence <= 0 {
		avgConfidence = 75
	}
	depth := weights["depth_multiplier"]
	if depth == 0 {
		depth = 1.0
	}
	m := RecruiterMetrics{
		TotalPRs:      summary.TotalReviews,
		AvgConfidence: round2(avgConfidence),
		Adaptability:  round2(depth * 50),
		InsightDepth:  insightDepth(weights),
		Timestamp:     time.Now().UTC().Format("2006-01-02 15:04 UTC"),
	}
	m.ImpactScore = round2(0.4*m.Adaptability + 0.35*m.AvgConfidence + 0.25*m.InsightDepth)
	return m
}

// RecruiterMarkdown renders the recruiter-facing project summary.
func RecruiterMarkdown(m RecruiterMetrics) string {
	var b strings.Builder
	b.WriteString("# Adaptive PR Reviewer — Recruiter Summary\n\n")
	b.WriteString("*Autonomous Adaptive Code Intelligence System*\n\n")
	b.WriteString("**Project Overview**\n")
	b.WriteString("- Adaptive AI reviewer integrated via GitHub Actions\n")
	b.WriteString("- Learns from past reviews using self-evaluation and reinforcement tuning\n")
	b.WriteString("- Shares learned weights across repositories through a knowledge hub\n\n")
	b.WriteString("**Latest Metrics**\n")
	b.WriteString("| Metric | Value |\n|:-------|:------|\n")
	fmt.Fprintf(&b, "| Total PRs Reviewed | %d |\n", m.TotalPRs)
	fmt.Fprintf(&b, "| Avg Confidence | %.2f%% |\n", m.AvgConfidence)
	fmt.Fprintf(&b, "| Adaptability Index | %.2f |\n", m.Adaptability)
	fmt.Fprintf(&b, "| Insight Depth | %.2f |\n", m.InsightDepth)
	fmt.Fprintf(&b, "| Overall Project Impact | **%.2f / 100** |\n\n", m.ImpactScore)
	b.WriteString("**Key Features**\n")
	b.WriteString("- Multi-phase CI orchestration with self-learning loops\n")
	b.WriteString("- Predictive and reinforcement-learning components\n")
	b.WriteString("- Network fusion: shares intelligence across repositories\n")
	b.WriteString("- Auto-generated dashboard and recruiter summary\n\n")
	fmt.Fprintf(&b, "_Last updated: %s_\n", m.Timestamp)
	return b.String()
}

// WriteRecruiterReport persists both the JSON metrics and the markdown
// summary.
func WriteRecruiterReport(jsonPath, mdPath string, m RecruiterMetrics) error {
	if jsonPath == "" {
		jsonPath = DefaultRecruiterJSONPath
	}
	if mdPath == "" {
		mdPath = DefaultRecruiterMDPath
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling recruiter metrics: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("writing recruiter metrics: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(RecruiterMarkdown(m)), 0o644); err != nil {
		return fmt.Errorf("writing recruiter summary: %w", err)
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
