package history

import "testing"

func scored(scores ...int) []Entry {
	entries := make([]Entry, len(scores))
	for i, s := range scores {
		entries[i] = Entry{PriorityScore: s, Category: "general"}
	}
	return entries
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)
	if m.TotalReviews != 0 || m.AvgPriorityScore != nil || m.RiskRatio != 0 {
		t.Errorf("empty metrics = %+v", m)
	}
}

func TestComputeMetrics_Aggregates(t *testing.T) {
	entries := []Entry{
		{PriorityScore: 40, Category: "bug fix", HighRisk: true},
		{PriorityScore: 60, Category: "bug fix"},
		{PriorityScore: 20, Category: ""},
		{PriorityScore: 80, Category: "security", HighRisk: true},
	}
	m := ComputeMetrics(entries)
	if m.TotalReviews != 4 {
		t.Errorf("TotalReviews = %d", m.TotalReviews)
	}
	if m.AvgPriorityScore == nil || *m.AvgPriorityScore != 50 {
		t.Errorf("AvgPriorityScore = %v, want 50", m.AvgPriorityScore)
	}
	if m.PerCategory["bug fix"] != 2 || m.PerCategory["uncategorized"] != 1 {
		t.Errorf("PerCategory = %v", m.PerCategory)
	}
	if m.HighRiskCount != 2 || m.RiskRatio != 50 {
		t.Errorf("risk = %d / %v", m.HighRiskCount, m.RiskRatio)
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   Trend
	}{
		{"too few entries", []float64{10, 20, 30}, ""},
		{
			"improving",
			append(repeat(30, 10), repeat(40, 10)...),
			TrendImproving,
		},
		{
			"declining",
			append(repeat(60, 10), repeat(40, 10)...),
			TrendDeclining,
		},
		{
			"within hysteresis",
			append(repeat(50, 10), repeat(51, 10)...),
			TrendStable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTrend(tt.scores, trendWindow); got != tt.want {
				t.Errorf("classifyTrend = %q, want %q", got, tt.want)
			}
		})
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestComputeMetrics_TrendOverFullHistory(t *testing.T) {
	entries := scored(30, 30, 30, 30, 30, 30, 30, 30, 30, 30,
		70, 70, 70, 70, 70, 70, 70, 70, 70, 70)
	m := ComputeMetrics(entries)
	if m.RecentTrend != TrendImproving {
		t.Errorf("RecentTrend = %q, want improving", m.RecentTrend)
	}
}
