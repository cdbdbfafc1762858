// Package llm provides an OpenRouter-compatible chat completion client used by
// the openrouter feedback provider.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteText: send system/user prompts, receive assistant text.
// Client.HealthCheck: verify API key and model availability.
//
// # Errors
//
// Non-2xx answers surface as *StatusError (Unauthorized reports 401/403).
// A completion without text surfaces as *EmptyContentError. A missing key
// fails fast with ErrMissingAPIKey.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 3
// attempts by default). Context cancellation aborts retries immediately.
package llm
