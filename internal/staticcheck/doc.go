// Package staticcheck runs the repository's static analyzers (gofmt,
// go vet) and merges their findings into static_report.json for the CI
// pipeline.
package staticcheck
