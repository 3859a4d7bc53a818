package review

import (
	"fmt"
	"strings"

	"github.com/dshills/reviewloop/internal/adaptive"
	"github.com/dshills/reviewloop/internal/providers"
)

// MaxDiffChars caps how much of the diff reaches the provider.
const MaxDiffChars = 12000

const systemPrompt = `You are a professional software engineer and code reviewer performing an adaptive AI code review. Prioritize correctness, readability, tests, and security according to the adaptive context you are given.`

// SystemPrompt returns the system prompt for the LLM.
func SystemPrompt() string {
	return systemPrompt
}

// TruncateDiff limits the diff to max characters. max <= 0 selects
// MaxDiffChars.
func TruncateDiff(diff string, max int) string {
	if max <= 0 {
		max = MaxDiffChars
	}
	if len(diff) > max {
		return diff[:max]
	}
	return diff
}

// BuildPrompt constructs the user prompt: adaptive context, category,
// PR metadata, weight-driven focus hints, the diff, and the required
// markdown section contract.
func BuildPrompt(in Input, category string, settings adaptive.Settings, weights adaptive.Weights) string {
	var b strings.Builder

	b.WriteString("Adaptive context:\n")
	fmt.Fprintf(&b, "- Tone: %s\n", settings.Tone)
	fmt.Fprintf(&b, "- Depth: %s\n", settings.Depth)
	fmt.Fprintf(&b, "- Caution: %s\n", settings.CautionLevel)
	fmt.Fprintf(&b, "- Trend: %s\n", settings.TrendSummary)

	if hints := focusHints(weights); len(hints) > 0 {
		b.WriteString("\nFocus areas from recent review history:\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	fmt.Fprintf(&b, "\nYou are reviewing a %s pull request.\n\n", category)
	fmt.Fprintf(&b, "PR Title: %s\n", in.Title)
	fmt.Fprintf(&b, "PR Description: %s\n", in.Body)

	b.WriteString("\n--- Begin diff ---\n")
	b.WriteString(TruncateDiff(in.Diff, MaxDiffChars))
	b.WriteString("\n--- End diff ---\n")

	b.WriteString(`
Provide structured markdown feedback with these sections:

## AI Code Review Feedback

### Summary
- One-paragraph summary of changes.

### Potential Issues
- Bullet list of possible bugs, logic errors, design issues, or risks.

### Suggestions
- Actionable suggestions and refactors.

### Testing Recommendations
- Concrete test scenarios to add.
`)
	return b.String()
}

// focusHints translates elevated weights into prompt guidance.
func focusHints(w adaptive.Weights) []string {
	var hints []string
	if w["security_bias"] > 1.2 {
		hints = append(hints, "recent PRs trended high-risk; scrutinize security and failure modes")
	}
	if w["test_bias"] > 1.2 {
		hints = append(hints, "test changes are frequent here; check coverage and test quality")
	}
	if w["depth_multiplier"] > 1.5 {
		hints = append(hints, "perform a deep review; surface subtle logic and design issues")
	}
	return hints
}

// MockFeedback is the offline fallback used when no provider is
// configured or the provider call fails. The text is shared with the
// mock provider so the two cannot drift apart.
func MockFeedback() string {
	return providers.MockFeedback
}
