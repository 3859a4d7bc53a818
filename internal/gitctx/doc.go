// Package gitctx extracts diffs and repository metadata from git.
//
// It supports the local review modes (unstaged, staged, and revision
// range) by shelling out to git, and truncates results to a
// configurable maximum byte size.
package gitctx
