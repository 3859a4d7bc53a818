package adaptive

import (
	"math"

	"github.com/dshills/reviewloop/internal/history"
)

// Settings steer the prompt for the next review.
type Settings struct {
	Tone              string  `json:"tone"`
	Depth             string  `json:"depth"`
	CautionLevel      string  `json:"caution_level"`
	TrendSummary      string  `json:"trend_summary"`
	AvgRecentPriority float64 `json:"avg_recent_priority"`
	RecentHighRisk    int     `json:"recent_high_risk"`
}

// settingsWindow is how many recent entries inform the settings.
const settingsWindow = 10

// Analyze derives settings from the most recent history entries.
func Analyze(entries []history.Entry) Settings {
	if len(entries) == 0 {
		return Settings{
			Tone:         "neutral",
			Depth:        "standard",
			CautionLevel: "normal",
			TrendSummary: "No historical data available.",
		}
	}

	recent := entries
	if len(recent) > settingsWindow {
		recent = recent[len(recent)-settingsWindow:]
	}

	var sum float64
	highRisk := 0
	for _, e := range recent {
		sum += float64(e.PriorityScore)
		if e.HighRisk {
			highRisk++
		}
	}
	avg := sum / float64(len(recent))

	s := Settings{
		AvgRecentPriority: math.Round(avg*100) / 100,
		RecentHighRisk:    highRisk,
	}
	switch {
	case avg < 35 && highRisk == 0:
		s.Tone, s.Depth, s.CautionLevel = "concise", "light", "low"
		s.TrendSummary = "Recent PRs are low-risk. Keep reviews concise."
	case avg < 70:
		s.Tone, s.Depth, s.CautionLevel = "balanced", "standard", "normal"
		s.TrendSummary = "Moderate risk. Maintain balanced analysis."
	default:
		s.Tone, s.Depth, s.CautionLevel = "cautious", "deep", "high"
		s.TrendSummary = "High-risk trend detected. Emphasize correctness and security."
	}
	return s
}
