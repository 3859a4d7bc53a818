package dashboard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/history"
)

func entries(scores ...int) []history.Entry {
	var out []history.Entry
	for _, s := range scores {
		out = append(out, history.Entry{PriorityScore: s, Category: "general"})
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	s := Build(nil, nil)
	if s.TotalReviews != 0 {
		t.Errorf("TotalReviews = %d", s.TotalReviews)
	}
	if s.AvgPriority != nil {
		t.Errorf("AvgPriority = %v, want nil", s.AvgPriority)
	}
	if s.RecentTrend != "" {
		t.Errorf("RecentTrend = %q", s.RecentTrend)
	}
}

func TestBuild(t *testing.T) {
	hist := entries(40, 60)
	hist[1].HighRisk = true
	avg := 55.0
	log := &adaptive.Log{History: []adaptive.LogEntry{{}, {}}, AverageScore: &avg}

	s := Build(hist, log)
	if s.TotalReviews != 2 {
		t.Errorf("TotalReviews = %d", s.TotalReviews)
	}
	if s.AvgPriority == nil || *s.AvgPriority != 50 {
		t.Errorf("AvgPriority = %v, want 50", s.AvgPriority)
	}
	if s.RiskRatio != 50 {
		t.Errorf("RiskRatio = %v, want 50", s.RiskRatio)
	}
	if s.AdaptiveSnapshot.LogLen != 2 {
		t.Errorf("LogLen = %d", s.AdaptiveSnapshot.LogLen)
	}
	if s.AdaptiveSnapshot.AvgRecentPriority == nil || *s.AdaptiveSnapshot.AvgRecentPriority != 55 {
		t.Errorf("AvgRecentPriority = %v", s.AdaptiveSnapshot.AvgRecentPriority)
	}
}

func TestRecentTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   string
	}{
		{"too short", []float64{50, 50, 50}, ""},
		{"improving", []float64{40, 40, 40, 40, 40, 60, 60, 60, 60, 60}, "improving"},
		{"declining", []float64{60, 60, 60, 60, 60, 40, 40, 40, 40, 40}, "declining"},
		{"stable", []float64{50, 50, 50, 50, 50, 51, 51, 51, 51, 51}, "stable"},
		{"short prev window", []float64{40, 60, 60, 60, 60, 60}, "improving"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recentTrend(tt.scores); got != tt.want {
				t.Errorf("recentTrend = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	hist := entries(30, 50, 70)
	s, err := Write(dir, hist, &adaptive.Log{}, "## AI Code Review Feedback\n\nLooks fine.")
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalReviews != 3 {
		t.Errorf("TotalReviews = %d", s.TotalReviews)
	}

	data, err := os.ReadFile(filepath.Join(dir, DefaultSummaryPath))
	if err != nil {
		t.Fatal(err)
	}
	var got Summary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalReviews != 3 {
		t.Errorf("persisted TotalReviews = %d", got.TotalReviews)
	}

	html, err := os.ReadFile(filepath.Join(dir, DefaultHTMLPath))
	if err != nil {
		t.Fatal(err)
	}
	page := string(html)
	if !strings.Contains(page, "<svg") {
		t.Error("dashboard html has no inline charts")
	}
	if !strings.Contains(page, "Looks fine.") {
		t.Error("review snippet missing from dashboard")
	}
}

func TestRenderHTML_EscapesSnippet(t *testing.T) {
	html, err := RenderHTML(Summary{}, nil, "<script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("snippet not escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped snippet missing")
	}
}

func TestPriorityChart_Empty(t *testing.T) {
	svg := priorityChart(nil)
	if !strings.Contains(svg, "no data yet") {
		t.Errorf("empty chart = %s", svg)
	}
}

func TestCategoryChart(t *testing.T) {
	hist := []history.Entry{
		{Category: "bug fix"}, {Category: "bug fix"}, {Category: ""},
	}
	svg := categoryChart(hist)
	if !strings.Contains(svg, "bug fix (2)") {
		t.Errorf("chart = %s", svg)
	}
	if !strings.Contains(svg, "uncategorized (1)") {
		t.Errorf("chart = %s", svg)
	}
}

func TestLoadSummary_Missing(t *testing.T) {
	s := LoadSummary(filepath.Join(t.TempDir(), "nope.json"))
	if s.TotalReviews != 0 {
		t.Errorf("missing file should load zero Summary, got %+v", s)
	}
}

func TestRiskChart(t *testing.T) {
	if got := riskChart(nil); !strings.Contains(got, "no data yet") {
		t.Errorf("riskChart(nil) = %q, want empty chart", got)
	}

	es := entries(10, 20, 30)
	es[1].HighRisk = true
	got := riskChart(es)
	if !strings.Contains(got, "polyline") {
		t.Errorf("riskChart missing polyline:\n%s", got)
	}
	if !strings.Contains(got, "High-risk ratio") {
		t.Errorf("riskChart missing title:\n%s", got)
	}
}
