// Package cli wires together the Cobra command tree for the reviewloop
// binary.
//
// It defines the root command and all subcommands (review, learn,
// improve, network, report, history, bench, static, cache, config,
// action, version), binds flags, reads configuration, invokes the
// review engine and learning passes, and returns deterministic exit
// codes for CI gating.
package cli
