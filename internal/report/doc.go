// Package report generates the human-facing artifacts of a review run:
// the structured review summary, the recruiter-oriented project
// summary, the evolution badge and report, and the combined final
// report.
package report
