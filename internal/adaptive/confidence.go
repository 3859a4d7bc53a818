package adaptive

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// DefaultConfidencePath is where calibration metrics are persisted.
const DefaultConfidencePath = "reviewer_confidence.json"

// Confidence holds calibration metrics derived from past priority
// scores. Calibrated stays at 0.5 when there is no history.
type Confidence struct {
	AvgPriority *float64 `json:"avg_priority"`
	StdPriority *float64 `json:"std_priority"`
	Consistency float64  `json:"consistency,omitempty"`
	Calibrated  float64  `json:"calibrated_confidence"`
}

// Calibrate computes reviewer confidence from priority scores. Higher
// average priority raises it slightly; a tighter score spread raises the
// consistency term.
func Calibrate(scores []float64) Confidence {
	if len(scores) == 0 {
		return Confidence{Calibrated: 0.5}
	}
	avg := meanOf(scores)
	std := 0.0
	if len(scores) > 1 {
		std = pstdev(scores, avg)
	}
	consistency := math.Max(0, 1-std/50)
	calibrated := math.Min(1, 0.5+(avg-50)/200+consistency*0.25)

	a, s := round2(avg), round2(std)
	return Confidence{
		AvgPriority: &a,
		StdPriority: &s,
		Consistency: round3(consistency),
		Calibrated:  round3(calibrated),
	}
}

// SaveConfidence writes calibration metrics as indented JSON.
func SaveConfidence(path string, c Confidence) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling confidence: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func meanOf(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func pstdev(vs []float64, mean float64) float64 {
	var sq float64
	for _, v := range vs {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(vs)))
}
