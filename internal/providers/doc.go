// Package providers implements the LLM backends used for reviews.
//
// Each provider is a thin HTTP client with typed errors for rate
// limits, auth failures, and server errors, retried with jittered
// exponential backoff. The mock provider needs no credentials and is
// the fallback when no API key is configured.
package providers
