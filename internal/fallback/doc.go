// ABOUTME: Package documentation for fallback.
// ABOUTME: Describes the suggestion strategies used when routing finds no provider.

// Package fallback produces an actionable suggestion menu when intent routing
// yields no provider. It never returns an error to the user: a configured
// language model is asked for structured suggestions first, and any failure
// there falls through to a deterministic keyword-based menu.
package fallback
