package history

import "math"

// Trend classifies the direction of recent priority scores.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// trendWindow is the number of recent scored entries compared against the
// preceding window of the same size.
const trendWindow = 10

// trendHysteresis is the score delta, in points, below which the trend is
// reported as stable.
const trendHysteresis = 2.0

// Metrics are the rolling aggregates derived from the history.
type Metrics struct {
	TotalReviews     int            `json:"total_reviews"`
	AvgPriorityScore *float64       `json:"avg_priority_score"`
	PerCategory      map[string]int `json:"per_category"`
	HighRiskCount    int            `json:"high_risk_count"`
	RiskRatio        float64        `json:"risk_ratio"`
	RecentTrend      Trend          `json:"recent_trend,omitempty"`
}

// ComputeMetrics aggregates the full history.
func ComputeMetrics(entries []Entry) Metrics {
	m := Metrics{PerCategory: map[string]int{}}
	if len(entries) == 0 {
		return m
	}
	m.TotalReviews = len(entries)

	var scores []float64
	for _, e := range entries {
		scores = append(scores, float64(e.PriorityScore))
		cat := e.Category
		if cat == "" {
			cat = "uncategorized"
		}
		m.PerCategory[cat]++
		if e.HighRisk {
			m.HighRiskCount++
		}
	}

	avg := round2(mean(scores))
	m.AvgPriorityScore = &avg
	m.RiskRatio = round2(float64(m.HighRiskCount) / float64(len(entries)) * 100)
	m.RecentTrend = classifyTrend(scores, trendWindow)
	return m
}

// classifyTrend compares the mean of the last window scores against the
// previous window. It returns "" when there is not enough data for both
// windows.
func classifyTrend(scores []float64, window int) Trend {
	if len(scores) < 2*window {
		return ""
	}
	recent := mean(scores[len(scores)-window:])
	prev := mean(scores[len(scores)-2*window : len(scores)-window])
	switch {
	case recent > prev+trendHysteresis:
		return TrendImproving
	case recent < prev-trendHysteresis:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Scores returns the priority scores of the entries, in order.
func Scores(entries []Entry) []float64 {
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		out = append(out, float64(e.PriorityScore))
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
