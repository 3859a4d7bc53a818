// Package dashboard renders the review metrics dashboard.
//
// Build folds the review history and adaptive log into a Summary,
// Write persists it as dashboard_summary.json plus a self-contained
// HTML page with inline SVG charts.
package dashboard
