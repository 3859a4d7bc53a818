package adaptive

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/dshills/reviewloop/internal/history"
)

// DefaultWeightsPath is where category-bias weights are persisted.
const DefaultWeightsPath = "adaptive_weights.json"

// weightsWindow is how many recent entries inform the weights.
const weightsWindow = 50

// Weights is a set of named multipliers applied when building prompts
// and reports. Stored as a flat map so fused snapshots from other repos
// can carry keys this build does not know about.
type Weights map[string]float64

// DefaultWeights returns the neutral weight set.
func DefaultWeights() Weights {
	return Weights{
		"security_bias":    1.0,
		"test_bias":        1.0,
		"style_bias":       1.0,
		"depth_multiplier": 1.0,
	}
}

// ComputeWeights derives weights from the most recent history entries.
// Depth scales with the average priority score, security bias with the
// high-risk fraction, test bias with the test-update fraction.
func ComputeWeights(entries []history.Entry) Weights {
	recent := entries
	if len(recent) > weightsWindow {
		recent = recent[len(recent)-weightsWindow:]
	}
	if len(recent) == 0 {
		return DefaultWeights()
	}

	var sum float64
	highRisk := 0
	testUpdates := 0
	for _, e := range recent {
		sum += float64(e.PriorityScore)
		if e.HighRisk {
			highRisk++
		}
		if e.Category == "test update" {
			testUpdates++
		}
	}
	n := float64(len(recent))
	avg := sum / n

	w := DefaultWeights()
	w["depth_multiplier"] = 1.0 + avg/100.0
	w["security_bias"] = 1.0 + float64(highRisk)/n*2.0
	w["test_bias"] = 1.0 + float64(testUpdates)/n*3.0
	for k, v := range w {
		w[k] = round3(v)
	}
	return w
}

// LoadWeights reads a weight set, falling back to defaults when the file
// is missing or corrupt. A {"weights": {...}} wrapper is unwrapped so
// hub snapshots load the same way as local files.
func LoadWeights(path string) Weights {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultWeights()
	}
	w := decodeWeights(data)
	if len(w) == 0 {
		return DefaultWeights()
	}
	return w
}

func decodeWeights(data []byte) Weights {
	var flat Weights
	if err := json.Unmarshal(data, &flat); err == nil && len(flat) > 0 {
		return flat
	}
	var wrapped struct {
		Weights Weights `json:"weights"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return wrapped.Weights
	}
	return nil
}

// SaveWeights writes a weight set as indented JSON.
func SaveWeights(path string, w Weights) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling weights: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
