package bench

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSyntheticDiffs(t *testing.T) {
	diffs := SyntheticDiffs(3)
	if len(diffs) != 3 {
		t.Fatalf("got %d diffs", len(diffs))
	}
	for i, d := range diffs {
		if !strings.Contains(d, "diff --git") {
			t.Errorf("diff %d malformed: %q", i, d)
		}
	}
	if diffs[0] == diffs[1] {
		t.Error("diffs should differ")
	}
}

func TestRun_Mock(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(nil, dir)

	report, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(report.Results))
	}
	for i, res := range report.Results {
		if res.Clarity < 75 || res.Clarity > 85 {
			t.Errorf("result %d clarity = %d, want 80±5", i, res.Clarity)
		}
		if res.Actionability < 70 || res.Actionability > 80 {
			t.Errorf("result %d actionability = %d, want 75±5", i, res.Actionability)
		}
		if res.Tokens <= 0 {
			t.Errorf("result %d tokens = %v", i, res.Tokens)
		}
	}
	if report.Summary.Runs != 3 {
		t.Errorf("summary runs = %d", report.Summary.Runs)
	}
	if report.Summary.AvgScore < 70 || report.Summary.AvgScore > 85 {
		t.Errorf("avg score = %v", report.Summary.AvgScore)
	}
	if len(report.Summary.Checksum) != 10 {
		t.Errorf("checksum = %q, want 10 hex chars", report.Summary.Checksum)
	}

	data, err := os.ReadFile(filepath.Join(dir, DefaultReportPath))
	if err != nil {
		t.Fatal(err)
	}
	var persisted Report
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatal(err)
	}
	if persisted.Summary.Checksum != report.Summary.Checksum {
		t.Error("persisted report differs from returned report")
	}
}

func TestRun_DeterministicScores(t *testing.T) {
	first, err := NewRunner(nil, t.TempDir()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewRunner(nil, t.TempDir()).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Results {
		if first.Results[i].Score != second.Results[i].Score {
			t.Errorf("run %d score differs: %v vs %v", i, first.Results[i].Score, second.Results[i].Score)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []RunResult{
		{Score: 80, LatencySec: 0.1, Tokens: 10},
		{Score: 90, LatencySec: 0.3, Tokens: 20},
	}
	s := summarize(results, 0.45)
	if s.AvgScore != 85 {
		t.Errorf("AvgScore = %v", s.AvgScore)
	}
	if s.AvgLatency != 0.2 {
		t.Errorf("AvgLatency = %v", s.AvgLatency)
	}
	if s.AvgTokens != 15 {
		t.Errorf("AvgTokens = %v", s.AvgTokens)
	}
	if s.TotalTimeSec != 0.45 {
		t.Errorf("TotalTimeSec = %v", s.TotalTimeSec)
	}
}
