// Package cache provides a file-based cache for LLM responses.
//
// Cache entries are keyed by a SHA-256 hash of the provider name, model,
// and prompt. Each entry stores the raw response string along with a
// creation timestamp and a TTL in seconds. Expired entries are skipped
// on read and removed during cache-clear operations, but can still be
// served via stale reads when the provider is unreachable.
//
// The default cache directory is $XDG_CACHE_HOME/reviewloop (or the
// OS-appropriate equivalent).
package cache
