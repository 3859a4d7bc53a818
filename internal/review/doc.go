// Package review runs an adaptive AI review of a pull request diff.
//
// A run categorizes the PR, derives tone/depth/caution settings from
// past reviews, builds the prompt, calls the configured provider (or a
// mock when no key is available), scores the returned feedback, and
// records the outcome in the review history and adaptive log.
package review
