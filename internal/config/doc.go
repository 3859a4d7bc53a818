// Package config loads and merges reviewloop configuration from
// multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REVIEWLOOP_PROVIDER, HUB_REPO_URL, etc.)
//  3. Config file ($XDG_CONFIG_HOME/reviewloop/config.json)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config] and [SetField] to update a
// single key before saving with [Save].
package config
