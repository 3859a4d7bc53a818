// Package output renders review results in text, JSON, and markdown
// formats. The text writer targets terminals, the markdown writer
// mirrors the PR comment layout, and the JSON writer emits the full
// result for tooling.
package output
