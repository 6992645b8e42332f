// ABOUTME: The ask pipeline: detect intent, route to a provider, execute, record.
// ABOUTME: Routing misses become fallback suggestions, never user-visible errors.

package assistant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/command"
	"github.com/hearthd/hearthd/internal/eventlog"
	"github.com/hearthd/hearthd/internal/fallback"
	"github.com/hearthd/hearthd/internal/intent"
	"github.com/hearthd/hearthd/internal/scope"
)

// CommandAsk is the command type the service registers on the bus.
const CommandAsk = "ask"

// AskRequest is the payload of an ask command.
type AskRequest struct {
	RawInput string
	// ScopeID restricts routing; empty means the active scope.
	ScopeID string
}

// Service runs user input through detection, routing, and execution. It owns
// the ask command registration; everything else reaches it through the bus.
type Service struct {
	bus      *command.Bus
	detector *intent.Detector
	router   *intent.Router
	fallback *fallback.Handler
	scopes   *scope.Registry
	conv     *eventlog.Conversation
	logger   *slog.Logger
}

// Config configures a Service.
type Config struct {
	Bus          *command.Bus
	Detector     *intent.Detector
	Router       *intent.Router
	Fallback     *fallback.Handler
	Scopes       *scope.Registry
	Conversation *eventlog.Conversation
	Logger       *slog.Logger
}

// NewService creates the service and registers the ask command on the bus.
func NewService(cfg Config) (*Service, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		bus:      cfg.Bus,
		detector: cfg.Detector,
		router:   cfg.Router,
		fallback: cfg.Fallback,
		scopes:   cfg.Scopes,
		conv:     cfg.Conversation,
		logger:   logger.With("component", "assistant"),
	}
	if err := s.bus.Register(CommandAsk, s.handleAsk); err != nil {
		return nil, fmt.Errorf("registering ask command: %w", err)
	}
	return s, nil
}

// Ask dispatches an ask command through the bus and returns the provider or
// fallback result.
func (s *Service) Ask(ctx context.Context, rawInput, scopeID string) (*capability.Result, error) {
	out, err := s.bus.Execute(ctx, CommandAsk, AskRequest{RawInput: rawInput, ScopeID: scopeID})
	if err != nil {
		return nil, err
	}
	res, ok := out.(*capability.Result)
	if !ok {
		return nil, fmt.Errorf("ask command returned unexpected type %T", out)
	}
	return res, nil
}

// handleAsk is the single handler behind CommandAsk. The user message is
// recorded before anything can fail, so the log always reflects what was
// asked.
func (s *Service) handleAsk(ctx context.Context, cmd command.Command) (any, error) {
	req, ok := cmd.Payload.(AskRequest)
	if !ok {
		return nil, fmt.Errorf("ask command payload must be AskRequest, got %T", cmd.Payload)
	}

	if _, err := s.conv.AddMessage(eventlog.RoleUser, req.RawInput, "chat", nil); err != nil {
		s.logger.Warn("failed to record user message", "error", err)
	}

	scopeID := req.ScopeID
	if scopeID == "" {
		scopeID = s.scopes.ActiveScope().ID
	}

	det := s.detector.Detect(ctx, req.RawInput)

	var (
		res        *capability.Result
		providerID string
		err        error
	)
	if p := s.router.Route(det.Intent, scopeID, req.RawInput); p != nil {
		providerID = p.ID()
		res, err = s.execute(ctx, p, det, scopeID, req.RawInput)
		if err != nil {
			// Provider contract violation; propagate unchanged
			return nil, err
		}
	} else {
		providerID = "fallback"
		res = s.fallback.Suggest(ctx, req.RawInput)
	}

	kind := res.Kind
	if kind == "" {
		kind = "chat"
	}
	meta := map[string]any{
		"intent":     det.Intent,
		"confidence": det.Confidence,
		"provider":   providerID,
	}
	if _, err := s.conv.AddMessage(eventlog.RoleAssistant, res.Text, kind, meta); err != nil {
		s.logger.Warn("failed to record assistant message", "error", err)
	}

	return res, nil
}

// execute invokes a provider through whichever shape it implements.
func (s *Service) execute(ctx context.Context, p capability.Provider, det intent.Detection, scopeID, rawInput string) (*capability.Result, error) {
	if rich, ok := p.(capability.RichProvider); ok {
		return rich.Execute(ctx, &capability.Query{
			Intent:    det.Intent,
			RawInput:  rawInput,
			Entities:  det.Entities,
			SubAction: det.SubAction,
			Scope:     s.scopes.GetScope(scopeID),
		})
	}
	if basic, ok := p.(capability.BasicProvider); ok {
		return basic.Execute(ctx, rawInput, s.router.ExecContext(scopeID))
	}
	return nil, fmt.Errorf("provider %q implements neither execution shape", p.ID())
}
