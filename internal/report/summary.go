package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/review"
)

// Review summary output files.
const (
	DefaultSummaryJSONPath = "review_summary.json"
	DefaultSummaryMDPath   = "review_summary.md"
)

// ReviewSummary is the structured digest of one review run.
type ReviewSummary struct {
	Timestamp       string   `json:"timestamp"`
	AvgConfidence   float64  `json:"avg_confidence"`
	InsightDepth    float64  `json:"insight_depth"`
	ConfidenceScore int      `json:"confidence_score"`
	PotentialIssues int      `json:"potential_issues"`
	Suggestions     int      `json:"suggestions"`
	HighRiskTerms   []string `json:"high_risk_terms"`

	summary     string
	issues      string
	suggestions string
	tests       string
}

// BuildSummary digests the review feedback markdown together with the
// calibrated confidence and adaptive weights.
func BuildSummary(feedback string, calibrated float64, weights adaptive.Weights) ReviewSummary {
	summary := sectionOrPlaceholder(feedback, "Summary")
	issues := sectionOrPlaceholder(feedback, "Potential Issues")
	suggestions := sectionOrPlaceholder(feedback, "Suggestions")
	tests := sectionOrPlaceholder(feedback, "Testing Recommendations")
	risks := review.DetectRiskTerms(feedback)

	return ReviewSummary{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		AvgConfidence:   calibrated * 100,
		InsightDepth:    insightDepth(weights),
		ConfidenceScore: confidenceScore(summary, issues, suggestions, risks, calibrated),
		PotentialIssues: review.CountBullets(issues),
		Suggestions:     review.CountBullets(suggestions),
		HighRiskTerms:   risks,

		summary:     summary,
		issues:      issues,
		suggestions: suggestions,
		tests:       tests,
	}
}

// sectionOrPlaceholder notes a missing section inline. The "missing"
// marker also feeds the confidence score penalty.
func sectionOrPlaceholder(feedback, heading string) string {
	if s := review.ExtractSection(feedback, heading); s != "" {
		return s
	}
	return fmt.Sprintf("_%s section missing_", heading)
}

// insightDepth scales the mean adaptive weight to a 0-100ish index.
// Empty weights read as a neutral 50.
func insightDepth(weights adaptive.Weights) float64 {
	if len(weights) == 0 {
		return 50
	}
	sum := 0.0
	for _, v := range weights {
		sum += v
	}
	return round2(sum / float64(len(weights)) * 10)
}

// confidenceScore adjusts the calibrated confidence by structural
// signals in the feedback and clamps to [30, 98].
func confidenceScore(summary, issues, suggestions string, risks []string, calibrated float64) int {
	score := calibrated * 100
	balance := math.Abs(float64(review.CountBullets(issues) - review.CountBullets(suggestions)))
	score -= balance * 5
	if strings.Contains(strings.ToLower(summary), "missing") {
		score -= 10
	}
	score -= float64(len(risks)) * 5
	if float64(len(summary))/200 < 0.5 {
		score -= 5
	}
	rounded := int(math.Round(score))
	if rounded < 30 {
		return 30
	}
	if rounded > 98 {
		return 98
	}
	return rounded
}

// Markdown renders the recruiter-oriented summary document.
func (s ReviewSummary) Markdown() string {
	risks := "None"
	if len(s.HighRiskTerms) > 0 {
		risks = strings.Join(s.HighRiskTerms, ", ")
	}
	var b strings.Builder
	b.WriteString("## AI Review Summary\n\n")
	fmt.Fprintf(&b, "**Confidence Score:** %d/100  \n", s.ConfidenceScore)
	fmt.Fprintf(&b, "**Calibrated Confidence:** %.1f%%  \n", s.AvgConfidence)
	fmt.Fprintf(&b, "**Insight Depth:** %.1f  \n", s.InsightDepth)
	fmt.Fprintf(&b, "**Detected Issues:** %d  \n", s.PotentialIssues)
	fmt.Fprintf(&b, "**Suggestions:** %d  \n", s.Suggestions)
	fmt.Fprintf(&b, "**High-Risk Keywords:** %s\n\n", risks)
	fmt.Fprintf(&b, "### Summary\n%s\n\n", s.summary)
	fmt.Fprintf(&b, "### Potential Issues\n%s\n\n", s.issues)
	fmt.Fprintf(&b, "### Suggestions\n%s\n\n", s.suggestions)
	fmt.Fprintf(&b, "### Testing Recommendations\n%s\n", s.tests)
	return b.String()
}

// WriteSummary builds the summary and persists both the JSON and
// markdown renditions.
func WriteSummary(jsonPath, mdPath, feedback string, calibrated float64, weights adaptive.Weights) (ReviewSummary, error) {
	if jsonPath == "" {
		jsonPath = DefaultSummaryJSONPath
	}
	if mdPath == "" {
		mdPath = DefaultSummaryMDPath
	}
	s := BuildSummary(feedback, calibrated, weights)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ReviewSummary{}, fmt.Errorf("marshaling review summary: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return ReviewSummary{}, fmt.Errorf("writing review summary: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(s.Markdown()), 0o644); err != nil {
		return ReviewSummary{}, fmt.Errorf("writing review summary markdown: %w", err)
	}
	return s, nil
}
