package review

import (
	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
)

// Run modes.
const (
	ModeLive = "LIVE"
	ModeMock = "MOCK"
)

// Input describes the pull request under review.
type Input struct {
	Repo     string
	PRNumber string
	Title    string
	Body     string
	Diff     string
}

// Analysis is the heuristic score of a piece of review feedback.
type Analysis struct {
	IssueCount    int      `json:"issue_count"`
	HighRisk      bool     `json:"high_risk"`
	PriorityScore int      `json:"priority_score"`
	RiskTerms     []string `json:"risk_terms,omitempty"`
}

// Result is the outcome of a single review run.
type Result struct {
	RunID      string            `json:"run_id"`
	Mode       string            `json:"mode"`
	Category   string            `json:"category"`
	Feedback   string            `json:"feedback"`
	Analysis   Analysis          `json:"analysis"`
	Prediction Prediction        `json:"prediction"`
	Settings   adaptive.Settings `json:"adaptive_settings"`
	Metrics    history.Metrics   `json:"history_metrics"`
	TokensUsed int               `json:"tokens_used,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

// Metadata is the small run descriptor written next to the feedback.
type Metadata struct {
	Mode         string `json:"mode"`
	Success      bool   `json:"success"`
	Timestamp    string `json:"timestamp"`
	FeedbackFile string `json:"feedback_file"`
	RunID        string `json:"run_id,omitempty"`
}
