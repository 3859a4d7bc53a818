package adaptive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/reviewloop/internal/history"
)

// Learning artifact filenames, all relative to the workspace.
const (
	LearningWeightsFile = "learning_weights.json"
	AdaptiveMemoryFile  = "adaptive_memory.json"
	LearningLogFile     = "learning_log.md"
)

// DefaultLearningWeights is the neutral six-dimension learning vector.
func DefaultLearningWeights() Weights {
	return Weights{
		"clarity":        1.0,
		"depth":          1.0,
		"risk_awareness": 1.0,
		"consistency":    1.0,
		"actionability":  1.0,
		"confidence":     1.0,
	}
}

// LearningInputs carries the aggregate signals a learning pass consumes.
type LearningInputs struct {
	AvgClarity       float64
	AvgDepth         float64
	AvgActionability float64
	AvgConfidence    float64

	// SelfEval holds optional self-evaluation metrics in 0..1:
	// ai_self_score, clarity, actionability, cqi.
	SelfEval map[string]float64

	TrendHighlights []string
}

// AdaptiveMemory is the snapshot written after each learning pass.
type AdaptiveMemory struct {
	LastUpdated       string             `json:"last_updated"`
	RecentPerformance map[string]float64 `json:"recent_performance"`
	Weights           Weights            `json:"weights"`
	Insights          MemoryInsights     `json:"insights"`
}

// MemoryInsights records what the learner is steering toward.
type MemoryInsights struct {
	TrendHighlights       []string              `json:"trend_highlights"`
	BehavioralAdaptations BehavioralAdaptations `json:"behavioral_adaptations"`
}

type BehavioralAdaptations struct {
	FocusAreas      []string `json:"focus_areas"`
	BiasCorrections []string `json:"bias_corrections"`
}

// MetricAverage averages a per-review metric stored in entry metadata.
// Entries without the key, or with a non-numeric value, contribute zero.
func MetricAverage(entries []history.Entry, key string) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, e := range entries {
		if raw, ok := e.Meta[key]; ok {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				sum += v
			}
		}
	}
	return sum / float64(len(entries))
}

// UpdateLearningWeights applies one learning step: trend-based
// multiplicative adjustments, self-evaluation reinforcement, then a
// final clamp to [0.5, 1.5]. prev may be nil or partial.
func UpdateLearningWeights(prev Weights, in LearningInputs) Weights {
	w := DefaultLearningWeights()
	for k, v := range prev {
		if _, ok := w[k]; ok {
			w[k] = v
		}
	}

	adjust := func(key string, avg, factor, hi float64) {
		f := clamp(1+(0.5-avg)*factor, 0.8, hi)
		w[key] = round3(w[key] * f)
	}
	adjust("clarity", in.AvgClarity, 0.3, 1.2)
	adjust("depth", in.AvgDepth, 0.4, 1.3)
	adjust("actionability", in.AvgActionability, 0.3, 1.2)
	adjust("confidence", in.AvgConfidence, 0.2, 1.2)

	reinforce := map[string]string{
		"clarity":       "clarity",
		"actionability": "actionability",
		"cqi":           "consistency",
		"ai_self_score": "confidence",
	}
	for evalKey, weightKey := range reinforce {
		if v, ok := in.SelfEval[evalKey]; ok {
			w[weightKey] += (v - 0.7) * 0.15
		}
	}

	for k, v := range w {
		w[k] = clamp(v, 0.5, 1.5)
	}
	return w
}

// RunLearning performs a full learning pass over the review history and
// writes learning_weights.json, adaptive_memory.json, and
// learning_log.md into dir.
func RunLearning(dir string, entries []history.Entry, selfEval map[string]float64, trendHighlights []string) (Weights, error) {
	prev := LoadWeights(filepath.Join(dir, LearningWeightsFile))

	in := LearningInputs{
		AvgClarity:       MetricAverage(entries, "clarity"),
		AvgDepth:         MetricAverage(entries, "depth"),
		AvgActionability: MetricAverage(entries, "actionability"),
		AvgConfidence:    MetricAverage(entries, "confidence"),
		SelfEval:         selfEval,
		TrendHighlights:  trendHighlights,
	}
	weights := UpdateLearningWeights(prev, in)

	mem := AdaptiveMemory{
		LastUpdated: nowISO(),
		RecentPerformance: map[string]float64{
			"avg_clarity":       round3(in.AvgClarity),
			"avg_depth":         round3(in.AvgDepth),
			"avg_actionability": round3(in.AvgActionability),
			"avg_confidence":    round3(in.AvgConfidence),
		},
		Weights: weights,
		Insights: MemoryInsights{
			TrendHighlights: trendHighlights,
			BehavioralAdaptations: BehavioralAdaptations{
				FocusAreas:      []string{"code clarity", "risk identification", "contextual analysis"},
				BiasCorrections: []string{"reduce redundancy", "increase precision", "improve cross-PR continuity"},
			},
		},
	}

	if err := SaveWeights(filepath.Join(dir, LearningWeightsFile), weights); err != nil {
		return nil, err
	}
	memData, err := json.MarshalIndent(mem, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling adaptive memory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, AdaptiveMemoryFile), memData, 0o644); err != nil {
		return nil, fmt.Errorf("writing adaptive memory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, LearningLogFile), []byte(learningLog(mem)), 0o644); err != nil {
		return nil, fmt.Errorf("writing learning log: %w", err)
	}
	return weights, nil
}

func learningLog(mem AdaptiveMemory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Continuous Learning Log — %s\n\n", mem.LastUpdated)
	b.WriteString("### Weight Adjustments\n")
	for _, k := range []string{"clarity", "depth", "risk_awareness", "consistency", "actionability", "confidence"} {
		fmt.Fprintf(&b, "- **%s** -> %g\n", k, mem.Weights[k])
	}
	b.WriteString("\n### Trend Insights\n")
	for _, insight := range mem.Insights.TrendHighlights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	b.WriteString("\n### Behavioral Adaptations\n")
	for _, c := range mem.Insights.BehavioralAdaptations.BiasCorrections {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nContinuous learning update complete.\n")
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
