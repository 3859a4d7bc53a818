package review

import (
	"math"
	"strings"
)

// Prediction estimates risk and quality from diff shape alone, before
// any provider call. Risk saturates as the diff grows.
type Prediction struct {
	RiskScore          float64 `json:"risk_score"`
	PredictedQuality   float64 `json:"predicted_quality"`
	ComplexityEstimate int     `json:"complexity_estimate"`
	PredictedErrorRate float64 `json:"predicted_error_rate"`
	Reasoning          string  `json:"reasoning"`
}

// Predict scores a diff heuristically: risk grows with the log of the
// line count, quality is its complement.
func Predict(diff string) Prediction {
	lines := 0
	if diff != "" {
		lines = len(strings.Split(diff, "\n"))
	}
	risk := math.Min(1, math.Log1p(float64(lines))/10)
	quality := 1 - risk
	return Prediction{
		RiskScore:          round3(risk),
		PredictedQuality:   round3(quality),
		ComplexityEstimate: lines,
		PredictedErrorRate: round3(math.Max(0, math.Min(1, 1-quality))),
		Reasoning:          "Predicted risk based on diff complexity and style.",
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
