// Package improve runs the self-improvement cycle: it aggregates meta
// metrics over the recent review history and the adaptive log, asks the
// configured model for an improvement plan, and falls back to
// conservative heuristics when no model output is usable.
//
// Each run writes improvement_plan.json, quality_report.md, and
// self_improvement_metrics.json.
package improve
