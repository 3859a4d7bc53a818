package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dshills/reviewloop/internal/dashboard"
)

// Evolution output files.
const (
	DefaultEvolutionStatePath  = "evolution_state.json"
	DefaultEvolutionBadgePath  = "evolution_badge.svg"
	DefaultEvolutionReportPath = "project_evolution_report.md"
)

// EvolutionState records the priority delta between two dashboard
// snapshots.
type EvolutionState struct {
	PrevAvgPriority float64 `json:"prev_avg_priority"`
	NewAvgPriority  float64 `json:"new_avg_priority"`
	DeltaPriority   float64 `json:"delta_priority"`
	Timestamp       string  `json:"timestamp"`
}

// Evolve compares the current dashboard summary against the stored
// evolution state, updates the state, and renders the badge and report.
// All three artifacts are written into the current directory unless
// custom paths are given.
func Evolve(statePath, badgePath, reportPath string, summary dashboard.Summary) (EvolutionState, error) {
	if statePath == "" {
		statePath = DefaultEvolutionStatePath
	}
	if badgePath == "" {
		badgePath = DefaultEvolutionBadgePath
	}
	if reportPath == "" {
		reportPath = DefaultEvolutionReportPath
	}

	var prev EvolutionState
	if data, err := os.ReadFile(statePath); err == nil {
		_ = json.Unmarshal(data, &prev)
	}

	curr := 0.0
	if summary.AvgPriority != nil {
		curr = *summary.AvgPriority
	}
	state := EvolutionState{
		PrevAvgPriority: prev.NewAvgPriority,
		NewAvgPriority:  curr,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
	// No baseline yet means no measurable delta.
	if prev.NewAvgPriority != 0 {
		state.DeltaPriority = round2(curr - prev.NewAvgPriority)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return EvolutionState{}, fmt.Errorf("marshaling evolution state: %w", err)
	}
	if err := os.WriteFile(statePath, data, 0o644); err != nil {
		return EvolutionState{}, fmt.Errorf("writing evolution state: %w", err)
	}
	if err := os.WriteFile(badgePath, []byte(Badge(state.DeltaPriority)), 0o644); err != nil {
		return EvolutionState{}, fmt.Errorf("writing evolution badge: %w", err)
	}
	if err := os.WriteFile(reportPath, []byte(evolutionReport(state)), 0o644); err != nil {
		return EvolutionState{}, fmt.Errorf("writing evolution report: %w", err)
	}
	return state, nil
}

// Badge renders the evolution delta as a shields-style SVG badge.
func Badge(delta float64) string {
	color := "red"
	switch {
	case delta > 0:
		color = "brightgreen"
	case delta == 0:
		color = "orange"
	}
	text := fmt.Sprintf("Evolved %+.1f%%", delta)
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="120" height="20">
<rect width="60" height="20" fill="#555"/>
<rect x="60" width="60" height="20" fill="%s"/>
<text x="30" y="14" fill="#fff" font-size="11" text-anchor="middle">evolution</text>
<text x="90" y="14" fill="#fff" font-size="11" text-anchor="middle">%s</text>
</svg>`, color, text)
}

func evolutionReport(s EvolutionState) string {
	var b strings.Builder
	b.WriteString("# Project Evolution Report\n")
	fmt.Fprintf(&b, "- Generated: %s\n", s.Timestamp)
	fmt.Fprintf(&b, "- Previous avg priority: %g\n", s.PrevAvgPriority)
	fmt.Fprintf(&b, "- Current avg priority: %g\n", s.NewAvgPriority)
	fmt.Fprintf(&b, "- Improvement delta: %g points\n\n", s.DeltaPriority)
	b.WriteString("### Summary\n")
	b.WriteString("The reviewer evolved based on adaptive, predictive, and shared network state.\n")
	b.WriteString("Each iteration refines confidence calibration and insight quality.\n")
	return b.String()
}
