// ABOUTME: The conversational catch-all provider behind the chat:ask intent.
// ABOUTME: Answers through the configured language model, or a canned reply without one.

package builtins

import (
	"context"
	"log/slog"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/llm"
)

const chatSystemPrompt = "You are a concise home assistant. Answer the user " +
	"directly; if the request needs a device capability you do not have, say so."

const noModelReply = "I don't have a language model configured, so I can only " +
	"run device commands. Say \"help\" to see what I can do."

// ChatProvider is the rich catch-all conversation provider.
type ChatProvider struct {
	client llm.Client
	logger *slog.Logger
}

// NewChatProvider creates the chat provider. A nil client degrades to a
// canned reply instead of failing.
func NewChatProvider(client llm.Client, logger *slog.Logger) *ChatProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatProvider{client: client, logger: logger.With("component", "builtin.chat")}
}

func (p *ChatProvider) ID() string        { return "builtin:chat" }
func (p *ChatProvider) Name() string      { return "Chat" }
func (p *ChatProvider) Version() string   { return "1.0.0" }
func (p *ChatProvider) Intents() []string { return []string{"chat:ask"} }

func (p *ChatProvider) Capabilities() capability.Capabilities {
	// Lowest priority so any installed provider outranks the catch-all
	return capability.Capabilities{Priority: 0, BrowserCompatible: true}
}

func (p *ChatProvider) Execute(ctx context.Context, q *capability.Query) (*capability.Result, error) {
	if p.client == nil {
		return &capability.Result{Text: noModelReply, Kind: "chat"}, nil
	}

	resp, err := p.client.Chat(ctx, q.RawInput, llm.Options{System: chatSystemPrompt})
	if err != nil {
		p.logger.Warn("chat completion failed", "error", err)
		return &capability.Result{
			Text: "I couldn't reach the language model just now. Try again in a moment.",
			Kind: "chat",
		}, nil
	}
	return &capability.Result{
		Text: resp.Text,
		Kind: "chat",
		Data: map[string]any{"model": resp.Model},
	}, nil
}
