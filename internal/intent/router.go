// ABOUTME: Resolves a detected intent plus scope to an eligible capability provider.
// ABOUTME: A nil result means "delegate to the fallback handler", never an error.

package intent

import (
	"log/slog"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/scope"
)

// Router picks the provider that should execute an intent. Candidates come
// from the capability registry in priority order; when a scope is supplied
// they are pre-filtered by its allow-list, and basic providers additionally
// get their per-call CanHandle check.
type Router struct {
	caps           *capability.Registry
	scopes         *scope.Registry
	privilegedHost bool
	invoke         capability.InvokeFunc
	logger         *slog.Logger
}

// RouterConfig configures a Router.
type RouterConfig struct {
	Capabilities *capability.Registry
	Scopes       *scope.Registry
	// Invoke reaches a privileged host runtime; nil means providers that
	// require one are not eligible.
	Invoke capability.InvokeFunc
	Logger *slog.Logger
}

// NewRouter creates a router over the given registries.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		caps:           cfg.Capabilities,
		scopes:         cfg.Scopes,
		privilegedHost: cfg.Invoke != nil,
		invoke:         cfg.Invoke,
		logger:         logger.With("component", "router"),
	}
}

// Route returns the first eligible provider for the intent, or nil when
// nothing is eligible. Callers must treat nil as "delegate to fallback".
// An empty scopeID skips scope filtering entirely.
func (r *Router) Route(intent, scopeID, rawInput string) capability.Provider {
	candidates := r.caps.AvailableForIntent(intent, r.privilegedHost)

	var sc *scope.Scope
	if scopeID != "" {
		sc = r.scopes.GetScope(scopeID)
	}
	ec := &capability.ExecContext{
		Scope:          sc,
		PrivilegedHost: r.privilegedHost,
		Invoke:         r.invoke,
	}

	for _, p := range candidates {
		if scopeID != "" && !r.scopes.IsPluginAllowed(p.ID(), scopeID) {
			continue
		}
		// Declaring an intent does not guarantee acceptance of every input
		if basic, ok := p.(capability.BasicProvider); ok {
			if !basic.CanHandle(rawInput, ec) {
				continue
			}
		}
		r.logger.Debug("intent routed",
			"intent", intent,
			"provider_id", p.ID(),
			"scope_id", scopeID)
		return p
	}

	r.logger.Debug("no eligible provider", "intent", intent, "scope_id", scopeID)
	return nil
}

// ExecContext builds the per-call context for executing under a scope.
func (r *Router) ExecContext(scopeID string) *capability.ExecContext {
	var sc *scope.Scope
	if scopeID != "" {
		sc = r.scopes.GetScope(scopeID)
	}
	return &capability.ExecContext{
		Scope:          sc,
		PrivilegedHost: r.privilegedHost,
		Invoke:         r.invoke,
	}
}
