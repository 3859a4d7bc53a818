package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
)

// Output file names.
const (
	DefaultSummaryPath = "dashboard_summary.json"
	DefaultHTMLPath    = "dashboard.html"
)

// Summary is the machine-readable dashboard snapshot.
type Summary struct {
	TotalReviews     int              `json:"total_reviews"`
	AvgPriority      *float64         `json:"avg_priority"`
	RiskRatio        float64          `json:"risk_ratio"`
	RecentTrend      string           `json:"recent_trend,omitempty"`
	AdaptiveSnapshot AdaptiveSnapshot `json:"adaptive_snapshot"`
}

// AdaptiveSnapshot carries the adaptive log aggregates into the
// dashboard.
type AdaptiveSnapshot struct {
	AvgRecentPriority *float64 `json:"avg_recent_priority"`
	LogLen            int      `json:"log_len"`
}

// Build computes the dashboard summary from the review history and the
// adaptive log.
func Build(entries []history.Entry, log *adaptive.Log) Summary {
	s := Summary{TotalReviews: len(entries)}
	scores := history.Scores(entries)
	if len(scores) > 0 {
		avg := round2(meanOf(scores))
		s.AvgPriority = &avg
	}
	if len(entries) > 0 {
		high := 0
		for _, e := range entries {
			if e.HighRisk {
				high++
			}
		}
		s.RiskRatio = round2(float64(high) / float64(len(entries)) * 100)
	}
	s.RecentTrend = recentTrend(scores)
	if log != nil {
		s.AdaptiveSnapshot = AdaptiveSnapshot{
			AvgRecentPriority: log.AverageScore,
			LogLen:            len(log.History),
		}
	}
	return s
}

// recentTrend compares the mean of the last 5 scores with the 5 before
// them. The dashboard reads a rising priority average as improving
// reviewer signal.
func recentTrend(scores []float64) string {
	if len(scores) < 6 {
		return ""
	}
	last := scores[len(scores)-5:]
	prevStart := len(scores) - 10
	if prevStart < 0 {
		prevStart = 0
	}
	prev := scores[prevStart : len(scores)-5]
	if len(prev) == 0 {
		return ""
	}
	switch {
	case meanOf(last) > meanOf(prev)+2:
		return "improving"
	case meanOf(last) < meanOf(prev)-2:
		return "declining"
	default:
		return "stable"
	}
}

// Write renders the summary JSON and HTML dashboard into dir.
func Write(dir string, entries []history.Entry, log *adaptive.Log, reviewSnippet string) (Summary, error) {
	s := Build(entries, log)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return Summary{}, fmt.Errorf("marshaling dashboard summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultSummaryPath), data, 0o644); err != nil {
		return Summary{}, fmt.Errorf("writing dashboard summary: %w", err)
	}

	html, err := RenderHTML(s, entries, reviewSnippet)
	if err != nil {
		return Summary{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultHTMLPath), []byte(html), 0o644); err != nil {
		return Summary{}, fmt.Errorf("writing dashboard html: %w", err)
	}
	return s, nil
}

// LoadSummary reads a previously written dashboard summary. Returns a
// zero Summary when the file is missing or unreadable.
func LoadSummary(path string) Summary {
	if path == "" {
		path = DefaultSummaryPath
	}
	var s Summary
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	_ = json.Unmarshal(data, &s)
	return s
}

func meanOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }
