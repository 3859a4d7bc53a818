// Package github wraps the GitHub API operations a review run needs:
// fetching PR metadata and diffs, posting the review comment, and
// detecting the owner/repo pair from the Actions environment or the
// git remote.
package github
