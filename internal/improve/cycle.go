package improve

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
	"github.com/dshills/reviewloop/internal/providers"
)

// Output file names for the improvement cycle.
const (
	DefaultPlanPath    = "improvement_plan.json"
	DefaultReportPath  = "quality_report.md"
	DefaultMetricsPath = "self_improvement_metrics.json"
)

const planSystemPrompt = "You are an expert engineering manager producing actionable improvement plans and quality reports for an AI reviewer."

// Cycle runs one self-improvement pass over the accumulated review
// history. A nil Provider skips the model and uses heuristics.
type Cycle struct {
	Provider providers.Reviewer
	Dir      string
}

// PlanPayload is the full improvement_plan.json document.
type PlanPayload struct {
	GeneratedAt     string          `json:"generated_at"`
	ImprovementPlan Plan            `json:"improvement_plan"`
	Calibration     Calibration     `json:"calibration"`
	Metrics         HistoryMetrics  `json:"metrics"`
	AdaptiveSummary adaptiveSummary `json:"adaptive_summary"`
}

type adaptiveSummary struct {
	AvgAISelfScore *float64 `json:"avg_ai_self_score"`
	RecentTrend    string   `json:"recent_trend,omitempty"`
}

type metricsPayload struct {
	Timestamp       string          `json:"timestamp"`
	HistoryMetrics  HistoryMetrics  `json:"history_metrics"`
	AdaptiveMetrics AdaptiveMetrics `json:"adaptive_metrics"`
}

// Run executes the improvement cycle and writes the plan, quality
// report, and diagnostic metrics into c.Dir.
func (c *Cycle) Run(ctx context.Context, entries []history.Entry, log *adaptive.Log) (PlanPayload, error) {
	metrics := AggregateHistory(entries)
	adaptiveMetrics := AggregateAdaptive(log)
	trendSummary := currentTrendSummary(entries)

	if err := c.writeJSON(DefaultMetricsPath, metricsPayload{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		HistoryMetrics:  metrics,
		AdaptiveMetrics: adaptiveMetrics,
	}); err != nil {
		return PlanPayload{}, err
	}

	plan, report, calibration := c.generate(ctx, metrics, adaptiveMetrics, trendSummary, recentSamples(entries))

	payload := PlanPayload{
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
		ImprovementPlan: plan,
		Calibration:     calibration,
		Metrics:         metrics,
		AdaptiveSummary: adaptiveSummary{
			AvgAISelfScore: adaptiveMetrics.AvgAISelfScore,
			RecentTrend:    metrics.RecentTrend,
		},
	}
	if err := c.writeJSON(DefaultPlanPath, payload); err != nil {
		return PlanPayload{}, err
	}
	if err := os.WriteFile(c.path(DefaultReportPath), []byte(report), 0o644); err != nil {
		return PlanPayload{}, fmt.Errorf("writing quality report: %w", err)
	}
	return payload, nil
}

// generate asks the provider for a plan and falls back to heuristics on
// any failure.
func (c *Cycle) generate(ctx context.Context, m HistoryMetrics, a AdaptiveMetrics, trendSummary string, samples []string) (Plan, string, Calibration) {
	heuristic := func(reason string) (Plan, string, Calibration) {
		plan := HeuristicPlan(m, trendSummary)
		report := heuristicReport(m, reason)
		return plan, report, DefaultCalibration()
	}

	if c.Provider == nil {
		return heuristic("no model configured")
	}

	resp, err := c.Provider.Review(ctx, providers.ReviewRequest{
		SystemPrompt: planSystemPrompt,
		UserPrompt:   BuildPlanPrompt(m, a, trendSummary, samples),
		MaxTokens:    2048,
		Temperature:  0.2,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] plan generation failed: %v; using heuristics\n", err)
		return heuristic(err.Error())
	}

	parsed, err := ParsePlanResponse(resp.Content)
	if err != nil || parsed.ImprovementPlan == nil {
		// Keep the raw text as the report; the plan falls back.
		plan := HeuristicPlan(m, trendSummary)
		report := "## Generated Quality Report (raw)\n\n" + resp.Content
		return plan, report, DefaultCalibration()
	}

	plan := *parsed.ImprovementPlan
	if plan.GeneratedAt == "" {
		plan.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	report := parsed.QualityReport
	if report == "" {
		report = heuristicReport(m, "model returned no quality report")
	}
	calibration := DefaultCalibration()
	if parsed.Calibration != nil && len(parsed.Calibration.Rules) > 0 {
		calibration = *parsed.Calibration
	}
	return plan, report, calibration
}

func heuristicReport(m HistoryMetrics, reason string) string {
	snapshot, _ := json.MarshalIndent(m, "", "  ")
	return fmt.Sprintf("## Heuristic Quality Report\n\nGenerated by heuristics (%s).\n\nMetrics snapshot:\n\n```json\n%s\n```\n", reason, snapshot)
}

// recentSamples builds short context lines from the last few reviews.
func recentSamples(entries []history.Entry) []string {
	n := 6
	if len(entries) < n {
		n = len(entries)
	}
	var out []string
	for _, e := range entries[len(entries)-n:] {
		cqi := e.Meta["cqi"]
		out = append(out, fmt.Sprintf("%s | %s | score:%d", e.Title, cqi, e.PriorityScore))
	}
	return out
}

func currentTrendSummary(entries []history.Entry) string {
	s := adaptive.Analyze(entries)
	return s.TrendSummary
}

func (c *Cycle) path(name string) string {
	if c.Dir == "" {
		return name
	}
	return filepath.Join(c.Dir, name)
}

func (c *Cycle) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}
	tmp := c.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, c.path(name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// Summary is a one-line description suitable for a PR comment.
func (p PlanPayload) Summary() string {
	focus := p.ImprovementPlan.FocusNext
	if len(focus) > 3 {
		focus = focus[:3]
	}
	trend := p.AdaptiveSummary.RecentTrend
	if trend == "" {
		trend = "n/a"
	}
	return fmt.Sprintf("Improvement plan generated. Key focuses: %s; trend: %s", strings.Join(focus, ", "), trend)
}
