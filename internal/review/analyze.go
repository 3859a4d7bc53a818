package review

import (
	"regexp"
	"strings"
)

// riskTerms flag feedback that mentions dangerous failure modes.
var riskTerms = []string{
	"security", "vulnerability", "data loss", "crash", "injection",
	"auth", "password", "corrupt", "race", "leak",
}

var bulletRe = regexp.MustCompile(`(?m)^\s*[-*] `)

// AnalyzeFeedback scores review feedback: each bullet is worth ten
// points up to 100, and any risk term forces the score to at least 80.
func AnalyzeFeedback(feedback string) Analysis {
	return AnalyzeFeedbackWith(feedback, nil)
}

// AnalyzeFeedbackWith scores feedback with extra risk terms (from the
// repo policy) appended to the built-in list.
func AnalyzeFeedbackWith(feedback string, extra []string) Analysis {
	terms := riskTerms
	if len(extra) > 0 {
		seen := map[string]bool{}
		terms = append([]string{}, riskTerms...)
		for _, t := range riskTerms {
			seen[t] = true
		}
		for _, t := range extra {
			if !seen[t] {
				terms = append(terms, t)
				seen[t] = true
			}
		}
	}
	found := detectTerms(feedback, terms)
	bullets := CountBullets(feedback)

	score := bullets * 10
	if score > 100 {
		score = 100
	}
	if len(found) > 0 {
		score += 10
		if score < 80 {
			score = 80
		}
		if score > 100 {
			score = 100
		}
	}
	return Analysis{
		IssueCount:    bullets,
		HighRisk:      len(found) > 0,
		PriorityScore: score,
		RiskTerms:     found,
	}
}

// CountBullets counts markdown bullet lines.
func CountBullets(text string) int {
	return len(bulletRe.FindAllString(text, -1))
}

// DetectRiskTerms returns the risk terms present in the text, lowered.
func DetectRiskTerms(text string) []string {
	return detectTerms(text, riskTerms)
}

func detectTerms(text string, terms []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range terms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

// ExtractSection returns the body of a "### Heading" markdown section,
// without the heading line, trimmed. Empty when the heading is absent.
func ExtractSection(markdown, heading string) string {
	lines := strings.Split(markdown, "\n")
	var body []string
	inSection := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			if inSection {
				break
			}
			if strings.EqualFold(strings.TrimSpace(strings.TrimLeft(trimmed, "#")), heading) {
				inSection = true
			}
			continue
		}
		if inSection {
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}
