// ABOUTME: Tests for the ask pipeline.
// ABOUTME: Covers routing, scope filtering, fallback substitution, and message recording.

package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthd/hearthd/internal/builtins"
	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/command"
	"github.com/hearthd/hearthd/internal/eventlog"
	"github.com/hearthd/hearthd/internal/fallback"
	"github.com/hearthd/hearthd/internal/intent"
	"github.com/hearthd/hearthd/internal/scope"
)

type pingProvider struct {
	err error
}

func (p *pingProvider) ID() string        { return "net-ping" }
func (p *pingProvider) Name() string      { return "Ping" }
func (p *pingProvider) Version() string   { return "1.0.0" }
func (p *pingProvider) Intents() []string { return []string{"network:ping"} }

func (p *pingProvider) Capabilities() capability.Capabilities {
	return capability.Capabilities{Priority: 5, BrowserCompatible: true}
}

func (p *pingProvider) Execute(ctx context.Context, q *capability.Query) (*capability.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &capability.Result{
		Text: "pong from " + q.Entities["target"],
		Kind: "chat",
	}, nil
}

type fixture struct {
	svc    *Service
	caps   *capability.Registry
	scopes *scope.Registry
	conv   *eventlog.Conversation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	scopes, err := scope.NewRegistry(scope.Config{Scopes: []scope.Scope{
		{ID: "local", Name: "Local", AllowedProviders: []string{"net-ping"}, AllowLAN: true},
	}})
	require.NoError(t, err)

	caps := capability.NewRegistry(nil)
	detector, err := intent.NewDetector(intent.DetectorConfig{})
	require.NoError(t, err)
	router := intent.NewRouter(intent.RouterConfig{Capabilities: caps, Scopes: scopes})
	conv := eventlog.NewConversation(eventlog.NewStore(nil), nil)
	t.Cleanup(conv.Close)

	svc, err := NewService(Config{
		Bus:          command.NewBus(nil),
		Detector:     detector,
		Router:       router,
		Fallback:     fallback.NewHandler(fallback.Config{}),
		Scopes:       scopes,
		Conversation: conv,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, caps: caps, scopes: scopes, conv: conv}
}

func TestService_Ask_RoutesToProviderAndRecords(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.caps.Register(&pingProvider{}))

	res, err := f.svc.Ask(context.Background(), "ping 10.0.0.5", "local")

	require.NoError(t, err)
	assert.Equal(t, "pong from 10.0.0.5", res.Text)

	msgs := f.conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, eventlog.RoleUser, msgs[0].Role)
	assert.Equal(t, "ping 10.0.0.5", msgs[0].Text)
	assert.Equal(t, eventlog.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "net-ping", msgs[1].Meta["provider"])
	assert.Equal(t, "network:ping", msgs[1].Meta["intent"])
}

func TestService_Ask_ScopeBlocksProviderFallsBack(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.caps.Register(&pingProvider{}))

	// "local" does not allow a browse provider; nothing handles browse:url
	res, err := f.svc.Ask(context.Background(), "open https://example.com", "local")

	require.NoError(t, err)
	require.NotNil(t, res.Prompt)
	assert.Equal(t, "suggestion", res.Kind)
	assert.NotEmpty(t, res.Prompt.Actions)

	msgs := f.conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "fallback", msgs[1].Meta["provider"])
	assert.Equal(t, "suggestion", msgs[1].Kind)
}

func TestService_Ask_EmptyScopeUsesActiveScope(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.caps.Register(&pingProvider{}))

	// Sandbox allows only built-in chat providers
	require.NoError(t, f.scopes.SetActiveScope("sandbox"))

	res, err := f.svc.Ask(context.Background(), "ping 10.0.0.5", "")

	require.NoError(t, err)
	require.NotNil(t, res.Prompt, "blocked provider must yield a suggestion menu")
}

func TestService_Ask_BuiltinsEndToEnd(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, builtins.RegisterAll(f.caps, builtins.Deps{Conversation: f.conv}))

	res, err := f.svc.Ask(context.Background(), "what can you do?", "")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Chat")

	res, err = f.svc.Ask(context.Background(), "tell me a joke", "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Text)

	res, err = f.svc.Ask(context.Background(), "clear", "")
	require.NoError(t, err)
	assert.Equal(t, "Conversation cleared.", res.Text)

	// Only the post-clear assistant reply survives, renumbered from zero
	msgs := f.conv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, 0, msgs[0].ID)
	assert.Equal(t, eventlog.RoleAssistant, msgs[0].Role)
}

func TestService_Ask_ProviderErrorPropagates(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("socket exploded")
	require.NoError(t, f.caps.Register(&pingProvider{err: boom}))

	_, err := f.svc.Ask(context.Background(), "ping 10.0.0.5", "local")

	assert.ErrorIs(t, err, boom)
}

func TestNewService_DuplicateAskRegistrationFails(t *testing.T) {
	f := newFixture(t)

	_, err := NewService(Config{
		Bus:          f.svc.bus,
		Detector:     f.svc.detector,
		Router:       f.svc.router,
		Fallback:     f.svc.fallback,
		Scopes:       f.scopes,
		Conversation: f.conv,
	})

	assert.ErrorIs(t, err, command.ErrDuplicateCommand)
}

func TestLoggingMiddleware_PassesResultThrough(t *testing.T) {
	bus := command.NewBus(nil)
	bus.Use(LoggingMiddleware(nil))
	require.NoError(t, bus.Register("echo", func(ctx context.Context, cmd command.Command) (any, error) {
		return cmd.Payload, nil
	}))

	out, err := bus.Execute(context.Background(), "echo", "hello")

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}
