// ABOUTME: Registers all built-in providers on a capability registry.
// ABOUTME: Built-ins cover the chat:ask, system:help, and chat:clear intents.

package builtins

import (
	"log/slog"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/eventlog"
	"github.com/hearthd/hearthd/internal/llm"
)

// Deps carries what the built-in providers need.
type Deps struct {
	Conversation *eventlog.Conversation
	// LLM is optional; without it chat degrades to a canned reply.
	LLM    llm.Client
	Logger *slog.Logger
}

// RegisterAll registers the chat, help, and clear providers.
func RegisterAll(registry *capability.Registry, deps Deps) error {
	providers := []capability.Provider{
		NewChatProvider(deps.LLM, deps.Logger),
		NewHelpProvider(registry),
		NewClearProvider(deps.Conversation, deps.Logger),
	}
	for _, p := range providers {
		if err := registry.Register(p); err != nil {
			return err
		}
	}
	return nil
}
