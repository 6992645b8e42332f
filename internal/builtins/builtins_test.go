// ABOUTME: Tests for the built-in chat, help, and clear providers.
// ABOUTME: Exercises both provider shapes and the degraded no-model path.

package builtins

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/eventlog"
	"github.com/hearthd/hearthd/internal/llm"
)

type fakeLLM struct {
	text string
	err  error
}

func (f *fakeLLM) Chat(ctx context.Context, prompt string, opts llm.Options) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text, Model: "fake-1"}, nil
}

func newConversation(t *testing.T) *eventlog.Conversation {
	t.Helper()
	conv := eventlog.NewConversation(eventlog.NewStore(nil), nil)
	t.Cleanup(conv.Close)
	return conv
}

func TestChatProvider_Execute_UsesModel(t *testing.T) {
	p := NewChatProvider(&fakeLLM{text: "Hello there!"}, nil)

	res, err := p.Execute(context.Background(), &capability.Query{Intent: "chat:ask", RawInput: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", res.Text)
	assert.Equal(t, "fake-1", res.Data["model"])
}

func TestChatProvider_Execute_NoModelCannedReply(t *testing.T) {
	p := NewChatProvider(nil, nil)

	res, err := p.Execute(context.Background(), &capability.Query{Intent: "chat:ask", RawInput: "hi"})

	require.NoError(t, err)
	assert.Contains(t, res.Text, "help")
}

func TestChatProvider_Execute_ModelErrorReturnsTypedFailure(t *testing.T) {
	p := NewChatProvider(&fakeLLM{err: errors.New("timeout")}, nil)

	res, err := p.Execute(context.Background(), &capability.Query{Intent: "chat:ask", RawInput: "hi"})

	require.NoError(t, err, "model failures must become a result, not an error")
	assert.NotEmpty(t, res.Text)
}

func TestHelpProvider_Execute_ListsRegisteredProviders(t *testing.T) {
	registry := capability.NewRegistry(nil)
	require.NoError(t, RegisterAll(registry, Deps{Conversation: newConversation(t)}))

	help := registry.Get("builtin:help").(*HelpProvider)
	res, err := help.Execute(context.Background(), &capability.Query{Intent: "system:help"})

	require.NoError(t, err)
	assert.Contains(t, res.Text, "Chat")
	assert.Contains(t, res.Text, "chat:clear")
	assert.Contains(t, res.Text, "system:help")
}

func TestClearProvider_Execute_EmptiesConversation(t *testing.T) {
	conv := newConversation(t)
	_, err := conv.AddMessage(eventlog.RoleUser, "hello", "chat", nil)
	require.NoError(t, err)
	require.Len(t, conv.Messages(), 1)

	p := NewClearProvider(conv, nil)
	res, err := p.Execute(context.Background(), "clear", &capability.ExecContext{})

	require.NoError(t, err)
	assert.Equal(t, "Conversation cleared.", res.Text)
	assert.Empty(t, conv.Messages())
	assert.Equal(t, 0, conv.NextID())
}

func TestRegisterAll_ProvidersCoverExpectedIntents(t *testing.T) {
	registry := capability.NewRegistry(nil)
	require.NoError(t, RegisterAll(registry, Deps{Conversation: newConversation(t)}))

	for _, intent := range []string{"chat:ask", "system:help", "chat:clear"} {
		assert.NotEmpty(t, registry.ForIntent(intent), "intent %s must have a builtin", intent)
	}
}
