// ABOUTME: Minimal language-model client boundary used by chat and fallback.
// ABOUTME: Implementations may fail or return non-JSON text; callers must tolerate both.

// Package llm defines the language-model client boundary. The assistant never
// talks to a model API directly; it goes through Client so that deployments
// without credentials degrade to deterministic behavior.
package llm

import "context"

// Options tunes a single chat call.
type Options struct {
	// System is prepended as the system prompt when non-empty.
	System string
	// MaxTokens bounds the completion length; zero means the client default.
	MaxTokens int
}

// Response is one model completion.
type Response struct {
	Text  string
	Model string
}

// Client is a credentialed language-model client. Chat may fail or return
// text that is not valid JSON even when JSON was requested.
type Client interface {
	Chat(ctx context.Context, prompt string, opts Options) (*Response, error)
}
