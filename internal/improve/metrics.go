package improve

import (
	"math"
	"sort"
	"strconv"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
)

// historyWindow caps how many recent entries feed the meta metrics.
const historyWindow = 100

// HistoryMetrics aggregates the recent review history for the
// improvement cycle.
type HistoryMetrics struct {
	TotalReviews   int            `json:"total_reviews"`
	AvgPriority    *float64       `json:"avg_priority"`
	MedianPriority *float64       `json:"median_priority"`
	HighRiskCount  int            `json:"high_risk_count"`
	HighRiskRatio  float64        `json:"high_risk_ratio"`
	PerCategory    map[string]int `json:"per_category"`
	AvgCQI         *float64       `json:"avg_cqi"`
	RecentTrend    string         `json:"recent_trend,omitempty"`
}

// AdaptiveMetrics aggregates self-evaluation data from the adaptive log.
type AdaptiveMetrics struct {
	AvgAISelfScore *float64 `json:"avg_ai_self_score"`
	SelfEvalCount  int      `json:"ai_self_count"`
	RecentHighRisk int      `json:"recent_high_risk"`
}

// AggregateHistory computes meta metrics over the most recent window of
// review history entries.
func AggregateHistory(entries []history.Entry) HistoryMetrics {
	m := HistoryMetrics{PerCategory: map[string]int{}}
	if len(entries) == 0 {
		return m
	}
	if len(entries) > historyWindow {
		entries = entries[len(entries)-historyWindow:]
	}
	m.TotalReviews = len(entries)

	scores := history.Scores(entries)
	if len(scores) > 0 {
		avg := round2(meanOf(scores))
		med := round2(median(scores))
		m.AvgPriority = &avg
		m.MedianPriority = &med
	}

	var cqi []float64
	for _, e := range entries {
		if e.HighRisk {
			m.HighRiskCount++
		}
		cat := e.Category
		if cat == "" {
			cat = "uncategorized"
		}
		m.PerCategory[cat]++
		if raw, ok := e.Meta["cqi"]; ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				cqi = append(cqi, v)
			}
		}
	}
	m.HighRiskRatio = round2(float64(m.HighRiskCount) / float64(len(entries)) * 100)
	if len(cqi) > 0 {
		avg := round2(meanOf(cqi))
		m.AvgCQI = &avg
	}
	m.RecentTrend = recentTrend(scores)
	return m
}

// recentTrend compares the last 10 scores with the 10 before them.
// Higher priority scores mean more issues found, so a rising average
// reads as "worse".
func recentTrend(scores []float64) string {
	const n = 10
	if len(scores) < 2*n {
		return ""
	}
	recent := meanOf(scores[len(scores)-n:])
	prev := meanOf(scores[len(scores)-2*n : len(scores)-n])
	switch {
	case recent > prev+2:
		return "worse (more priority issues)"
	case recent < prev-2:
		return "improving"
	default:
		return "stable"
	}
}

// AggregateAdaptive summarizes the self-evaluation scores in the
// adaptive log.
func AggregateAdaptive(log *adaptive.Log) AdaptiveMetrics {
	var m AdaptiveMetrics
	if log == nil || len(log.History) == 0 {
		return m
	}
	var scores []float64
	for _, e := range log.History {
		if e.AISelfScore != nil {
			scores = append(scores, *e.AISelfScore)
		}
	}
	m.SelfEvalCount = len(log.History)
	if len(scores) > 0 {
		avg := round3(meanOf(scores))
		m.AvgAISelfScore = &avg
	}
	recent := log.History
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, e := range recent {
		if e.HighRisk {
			m.RecentHighRisk++
		}
	}
	return m
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
