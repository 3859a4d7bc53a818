package review

import (
	"sort"
	"strings"
)

// PR categories, in match-priority order. Security outranks the rest
// because it changes how hard the adaptive weights lean on the review.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"security", []string{"security", "vulnerability", "cve", "auth", "encrypt", "sanitize"}},
	{"test update", []string{"test", "_test.go", "spec", "coverage"}},
	{"bug fix", []string{"fix", "bug", "patch", "regression", "hotfix"}},
	{"docs", []string{"doc", "readme", "changelog", "comment"}},
	{"refactor", []string{"refactor", "cleanup", "rename", "restructure", "simplify"}},
	{"feature addition", []string{"feat", "add", "implement", "introduce", "support"}},
}

// Categorize classifies a PR from its title, description, and diff.
// The title is the strongest signal; the diff is consulted last.
func Categorize(title, body, diff string) string {
	return CategorizeWith(title, body, diff, nil)
}

// CategorizeWith is Categorize with policy keyword overrides, which
// are checked before the built-in table. Override categories are
// scanned in sorted name order so classification is deterministic.
func CategorizeWith(title, body, diff string, overrides map[string][]string) string {
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, text := range []string{title, body, diff} {
		lower := strings.ToLower(text)
		for _, name := range names {
			for _, kw := range overrides[name] {
				if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
					return name
				}
			}
		}
		for _, c := range categoryKeywords {
			for _, kw := range c.keywords {
				if strings.Contains(lower, kw) {
					return c.category
				}
			}
		}
	}
	return "general"
}
