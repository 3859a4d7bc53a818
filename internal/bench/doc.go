// Package bench measures reviewer latency, token footprint, and score
// stability over a fixed set of synthetic diffs. Without a provider the
// scores are simulated deterministically so CI runs are comparable; a
// checksum over the result set makes drift visible.
package bench
