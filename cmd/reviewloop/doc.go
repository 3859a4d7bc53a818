// Reviewloop is a CI-oriented CLI that reviews pull requests with LLM
// providers and adapts its behavior from its own review history.
//
// It fetches or receives a PR diff, produces scored markdown feedback,
// maintains bounded JSON state (history, adaptive log, weights), and
// generates dashboards, badges, and reports, with deterministic exit
// codes suitable for CI gating.
//
// Usage:
//
//	reviewloop review pr 42               # review a pull request
//	reviewloop review range origin/main..HEAD  # review a local revision range
//	reviewloop learn                      # update adaptive weights
//	reviewloop improve                    # run the self-improvement cycle
//	reviewloop network aggregate          # merge learning artifacts
//	reviewloop report dashboard           # generate the HTML dashboard
//
// See https://github.com/dshills/reviewloop for full documentation.
package main
