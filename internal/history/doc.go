// Package history implements the review-history store: an append-bounded,
// deduplicated log of past PR reviews persisted as a single JSON file.
//
// Entries are keyed by PR number and by a SHA-256 hash of the reviewed
// content; re-reviewing the same PR or the same diff replaces the existing
// entry in place instead of appending. The store keeps at most MaxEntries
// entries (oldest dropped first), writes through a temp-file rename so a
// failed save never truncates existing state, and maintains a
// `<path>.summary.json` sidecar with rolling metrics.
//
// Metrics derived from the log (average priority, per-category counts,
// high-risk ratio, windowed trend classification) drive the adaptive
// behavior in package adaptive.
package history
