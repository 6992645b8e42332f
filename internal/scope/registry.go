// ABOUTME: Thread-safe registry of scopes, the process-wide active scope, and
// ABOUTME: dynamically installed provider manifests with kvstore persistence.

package scope

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hearthd/hearthd/internal/kvstore"
)

// ErrUnknownScope indicates the target scope is not registered.
var ErrUnknownScope = errors.New("unknown scope")

// ErrScopeExists indicates a scope with the same id is already registered.
var ErrScopeExists = errors.New("scope already registered")

// persistKey is the kvstore key holding the serialized registry state.
const persistKey = "scope_registry"

// Registry owns the scope map, the active scope id, and the per-scope dynamic
// provider manifests. Exactly one scope is active process-wide at a time.
type Registry struct {
	mu       sync.RWMutex
	scopes   map[string]*Scope
	order    []string
	dynamic  map[string]map[string]Manifest // scope id -> provider id -> manifest
	activeID string
	kv       kvstore.Store
	logger   *slog.Logger
}

// Config configures a Registry.
type Config struct {
	// KV is the optional persistence boundary for active scope and dynamic
	// providers. Nil disables persistence.
	KV kvstore.Store
	// Scopes are registered in addition to the built-in set.
	Scopes []Scope
	Logger *slog.Logger
}

// NewRegistry creates a registry holding the built-in scopes plus any
// configured ones. Returns an error on duplicate scope ids.
func NewRegistry(cfg Config) (*Registry, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		scopes:   make(map[string]*Scope),
		dynamic:  make(map[string]map[string]Manifest),
		activeID: DefaultScopeID,
		kv:       cfg.KV,
		logger:   logger.With("component", "scopes"),
	}

	for _, s := range builtinScopes() {
		if err := r.register(s); err != nil {
			return nil, err
		}
	}
	for _, s := range cfg.Scopes {
		if err := r.register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(s Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scopes[s.ID]; exists {
		return fmt.Errorf("%w: %q", ErrScopeExists, s.ID)
	}
	copied := s
	r.scopes[s.ID] = &copied
	r.order = append(r.order, s.ID)
	return nil
}

// Register adds a scope after construction. Fails on duplicate ids.
func (r *Registry) Register(s Scope) error {
	return r.register(s)
}

// GetScope returns the scope with the given id, or nil if unregistered.
func (r *Registry) GetScope(id string) *Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scopes[id]
}

// AllScopes returns every registered scope in registration order.
func (r *Registry) AllScopes() []*Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Scope, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.scopes[id])
	}
	return out
}

// ActiveScope returns the currently active scope, falling back to the default
// when the active id is unset or unknown.
func (r *Registry) ActiveScope() *Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.scopes[r.activeID]; ok {
		return s
	}
	return r.scopes[DefaultScopeID]
}

// SetActiveScope switches the process-wide active scope.
// Returns ErrUnknownScope for an unregistered id.
func (r *Registry) SetActiveScope(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScope, id)
	}
	r.activeID = id
	r.logger.Info("active scope changed", "scope_id", id)
	return nil
}

// IsPluginAllowed reports whether the provider may run under the given scope.
// An empty scopeID means the active scope. A provider is allowed when it is in
// the scope's static allow-list or has been dynamically installed into it.
// Unknown scopes allow nothing.
func (r *Registry) IsPluginAllowed(providerID, scopeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if scopeID == "" {
		scopeID = r.activeID
	}
	s, ok := r.scopes[scopeID]
	if !ok {
		return false
	}
	if s.allowsStatic(providerID) {
		return true
	}
	_, installed := r.dynamic[scopeID][providerID]
	return installed
}

// InstallRemotePlugin upserts a manifest into its target scope's dynamic
// provider list. Returns ErrUnknownScope if the target scope is unregistered.
func (r *Registry) InstallRemotePlugin(m Manifest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[m.Scope]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScope, m.Scope)
	}
	if m.InstalledAt.IsZero() {
		m.InstalledAt = time.Now()
	}
	if r.dynamic[m.Scope] == nil {
		r.dynamic[m.Scope] = make(map[string]Manifest)
	}
	r.dynamic[m.Scope][m.ID] = m

	r.logger.Info("remote plugin installed",
		"provider_id", m.ID,
		"scope_id", m.Scope,
		"version", m.Version)
	return nil
}

// UninstallRemotePlugin removes a dynamic provider from a scope. Removing an
// absent provider or targeting an unknown scope is a no-op.
func (r *Registry) UninstallRemotePlugin(providerID, scopeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dynamic[scopeID][providerID]; !ok {
		return
	}
	delete(r.dynamic[scopeID], providerID)
	if len(r.dynamic[scopeID]) == 0 {
		delete(r.dynamic, scopeID)
	}

	r.logger.Info("remote plugin uninstalled",
		"provider_id", providerID,
		"scope_id", scopeID)
}

// DynamicProviders returns the manifests installed into a scope, sorted by id.
func (r *Registry) DynamicProviders(scopeID string) []Manifest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Manifest, 0, len(r.dynamic[scopeID]))
	for _, m := range r.dynamic[scopeID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// persistedState is the JSON payload stored through the kvstore boundary.
type persistedState struct {
	ActiveScopeID    string                `json:"active_scope_id"`
	DynamicProviders map[string][]Manifest `json:"dynamic_providers"`
}

// Persist serializes the active scope id and dynamic provider lists through
// the kvstore boundary. A nil store is a no-op.
func (r *Registry) Persist(ctx context.Context) error {
	if r.kv == nil {
		return nil
	}

	r.mu.RLock()
	state := persistedState{
		ActiveScopeID:    r.activeID,
		DynamicProviders: make(map[string][]Manifest, len(r.dynamic)),
	}
	for scopeID, manifests := range r.dynamic {
		list := make([]Manifest, 0, len(manifests))
		for _, m := range manifests {
			list = append(list, m)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
		state.DynamicProviders[scopeID] = list
	}
	r.mu.RUnlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("serializing scope state: %w", err)
	}
	if err := r.kv.Set(ctx, persistKey, string(data)); err != nil {
		return fmt.Errorf("persisting scope state: %w", err)
	}
	return nil
}

// Restore loads previously persisted state. Best-effort: missing or malformed
// data is logged and swallowed, never fatal to startup. Manifests targeting
// scopes that no longer exist are dropped.
func (r *Registry) Restore(ctx context.Context) {
	if r.kv == nil {
		return
	}

	raw, err := r.kv.Get(ctx, persistKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			r.logger.Warn("scope state unreadable, starting fresh", "error", err)
		}
		return
	}

	var state persistedState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		r.logger.Warn("scope state malformed, starting fresh", "error", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.scopes[state.ActiveScopeID]; ok {
		r.activeID = state.ActiveScopeID
	}
	for scopeID, manifests := range state.DynamicProviders {
		if _, ok := r.scopes[scopeID]; !ok {
			r.logger.Warn("dropping dynamic providers for unknown scope", "scope_id", scopeID)
			continue
		}
		for _, m := range manifests {
			if r.dynamic[scopeID] == nil {
				r.dynamic[scopeID] = make(map[string]Manifest)
			}
			r.dynamic[scopeID][m.ID] = m
		}
	}

	r.logger.Debug("scope state restored",
		"active_scope", r.activeID,
		"scopes_with_dynamic", len(r.dynamic))
}
