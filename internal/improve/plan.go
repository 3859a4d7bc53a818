package improve

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Plan tells the reviewer what to emphasize over the next reviews.
type Plan struct {
	GeneratedAt     string   `json:"generated_at"`
	FocusNext       []string `json:"focus_next"`
	AvoidNext       []string `json:"avoid_next"`
	LearningSummary string   `json:"learning_summary"`
	Actions         []string `json:"actions"`
}

// Calibration maps self-evaluation score bands to a suggested tone.
type Calibration struct {
	Rules map[string]string `json:"rules"`
}

// DefaultCalibration is the fallback score-to-tone mapping.
func DefaultCalibration() Calibration {
	return Calibration{Rules: map[string]string{
		"<0.75":     "cautious",
		"0.75-0.92": "balanced",
		">0.92":     "concise",
	}}
}

// HeuristicPlan derives a conservative improvement plan from numeric
// metrics alone. Used whenever no model output is available.
func HeuristicPlan(m HistoryMetrics, trendSummary string) Plan {
	plan := Plan{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}

	avgPriority := 0.0
	if m.AvgPriority != nil {
		avgPriority = *m.AvgPriority
	}

	if m.HighRiskRatio > 10 || avgPriority >= 70 {
		plan.FocusNext = append(plan.FocusNext, "security & correctness")
		plan.Actions = append(plan.Actions, "Require explicit security checks and input validation guidance in reviews.")
	}
	if m.AvgCQI != nil && *m.AvgCQI < 60 {
		plan.FocusNext = append(plan.FocusNext, "test coverage & documentation")
		plan.Actions = append(plan.Actions, "Emphasize tests and doc comments; suggest test cases where missing.")
	}
	if m.PerCategory["feature addition"] > m.PerCategory["bug fix"] {
		plan.FocusNext = append(plan.FocusNext, "API design & backwards compatibility")
		plan.Actions = append(plan.Actions, "Check API changes, deprecations, and version compatibility.")
	}
	if m.AvgPriority != nil && avgPriority < 30 {
		plan.FocusNext = append(plan.FocusNext, "conciseness")
		plan.Actions = append(plan.Actions, "Favor concise, high-signal feedback; reduce boilerplate comments.")
	}
	if len(plan.FocusNext) == 0 {
		plan.FocusNext = append(plan.FocusNext, "balanced coverage")
		plan.Actions = append(plan.Actions, "Maintain balanced checks: tests, docs, performance, security.")
	}
	plan.AvoidNext = append(plan.AvoidNext, "overly generic bullet lists without test suggestions")
	if trendSummary == "" {
		trendSummary = "none"
	}
	plan.LearningSummary = "Adaptive summary: " + trendSummary
	return plan
}

// planResponse is the JSON contract the model is asked to return.
type planResponse struct {
	ImprovementPlan *Plan        `json:"improvement_plan"`
	QualityReport   string       `json:"quality_report"`
	Calibration     *Calibration `json:"calibration"`
}

// ParsePlanResponse extracts the plan payload from raw model output.
// Models sometimes prepend prose before the JSON object, so parsing
// starts at the first '{'.
func ParsePlanResponse(raw string) (planResponse, error) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return planResponse{}, fmt.Errorf("no JSON object in model output")
	}
	var resp planResponse
	if err := json.Unmarshal([]byte(raw[start:]), &resp); err != nil {
		return planResponse{}, fmt.Errorf("parsing model output: %w", err)
	}
	return resp, nil
}

// BuildPlanPrompt composes the supervision prompt for the model.
func BuildPlanPrompt(m HistoryMetrics, a AdaptiveMetrics, trendSummary string, recentSamples []string) string {
	samples := strings.Join(recentSamples, "\n")
	if samples == "" {
		samples = "No recent textual samples available."
	}
	var b strings.Builder
	b.WriteString("You supervise an AI code reviewer. Aggregated metrics from recent reviews:\n\n")
	fmt.Fprintf(&b, "- Total reviews considered: %d\n", m.TotalReviews)
	fmt.Fprintf(&b, "- Average priority score: %s\n", floatOrNA(m.AvgPriority))
	fmt.Fprintf(&b, "- Median priority: %s\n", floatOrNA(m.MedianPriority))
	fmt.Fprintf(&b, "- High-risk ratio (%%): %.2f\n", m.HighRiskRatio)
	fmt.Fprintf(&b, "- Average CQI: %s\n", floatOrNA(m.AvgCQI))
	fmt.Fprintf(&b, "- Per-category counts: %v\n", m.PerCategory)
	fmt.Fprintf(&b, "- Recent trend: %s\n\n", m.RecentTrend)
	fmt.Fprintf(&b, "Adaptive summary:\n- %s\n- Average self-eval score: %s\n\n", trendSummary, floatOrNA(a.AvgAISelfScore))
	fmt.Fprintf(&b, "Recent sample snippets (for context):\n%s\n\n", samples)
	b.WriteString(`Task:
1) Produce an actionable improvement plan telling the reviewer what to focus on over the next ~20 reviews. Prioritize security and tests if a high-risk trend is present. Give 4-6 concrete actions.
2) Produce a concise quality report in markdown summarizing strengths, weaknesses, and a short validation checklist.
3) Output a calibration rule mapping ai_self_score to tone, e.g. "<0.75" -> cautious, "0.75-0.92" -> balanced, ">0.92" -> concise.

Return a JSON object with keys: improvement_plan (object with focus_next, avoid_next, learning_summary, actions), quality_report (markdown string), calibration (object with rules).
Be concise but actionable.
`)
	return b.String()
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g", *v)
}
