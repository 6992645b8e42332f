// ABOUTME: The chat:clear provider wiping the conversation log.
// ABOUTME: Basic shape on purpose, it accepts any input routed to its intent.

package builtins

import (
	"context"
	"log/slog"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/eventlog"
)

// ClearProvider clears the conversation when chat:clear is routed.
type ClearProvider struct {
	conv   *eventlog.Conversation
	logger *slog.Logger
}

// NewClearProvider creates the clear provider.
func NewClearProvider(conv *eventlog.Conversation, logger *slog.Logger) *ClearProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClearProvider{conv: conv, logger: logger.With("component", "builtin.clear")}
}

func (p *ClearProvider) ID() string        { return "builtin:clear" }
func (p *ClearProvider) Name() string      { return "Clear" }
func (p *ClearProvider) Version() string   { return "1.0.0" }
func (p *ClearProvider) Intents() []string { return []string{"chat:clear"} }

func (p *ClearProvider) CanHandle(input string, ec *capability.ExecContext) bool {
	return true
}

func (p *ClearProvider) Execute(ctx context.Context, rawInput string, ec *capability.ExecContext) (*capability.Result, error) {
	if err := p.conv.Clear(); err != nil {
		p.logger.Warn("failed to clear conversation", "error", err)
		return &capability.Result{Text: "I couldn't clear the conversation.", Kind: "chat"}, nil
	}
	return &capability.Result{Text: "Conversation cleared.", Kind: "chat"}, nil
}
