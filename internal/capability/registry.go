// ABOUTME: Thread-safe catalog of capability providers with lifecycle fan-out.
// ABOUTME: Initialize and dispose use settle-all semantics; observers get plugin events.

package capability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrProviderExists indicates a provider with the same id is already registered.
var ErrProviderExists = errors.New("provider already registered")

// EventKind tags a plugin lifecycle event.
type EventKind string

const (
	EventRegistered  EventKind = "registered"
	EventInitialized EventKind = "initialized"
	EventError       EventKind = "error"
	EventDisposed    EventKind = "disposed"
)

// PluginEvent describes a lifecycle transition of a registered provider.
type PluginEvent struct {
	Kind       EventKind
	ProviderID string
	Err        error
	Timestamp  time.Time
}

type observer struct {
	id string
	fn func(PluginEvent)
}

// Registry catalogs capability providers. It owns each registered instance
// exclusively; callers interact with providers only through lookups here.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	observers []observer
	logger    *slog.Logger
}

// NewRegistry creates an empty registry. Pass nil logger for default.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger.With("component", "capabilities"),
	}
}

// Register stores a provider and emits a "registered" event.
// Returns ErrProviderExists if the id is taken; the existing registration is
// left untouched.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	if _, exists := r.providers[p.ID()]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrProviderExists, p.ID())
	}
	r.providers[p.ID()] = p
	r.order = append(r.order, p.ID())
	r.mu.Unlock()

	r.logger.Info("provider registered",
		"provider_id", p.ID(),
		"version", p.Version(),
		"intents", p.Intents())
	r.emit(PluginEvent{Kind: EventRegistered, ProviderID: p.ID()})
	return nil
}

// Unregister removes a provider and emits a "disposed" event. Removing an
// unknown id is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	if _, exists := r.providers[id]; !exists {
		r.mu.Unlock()
		return
	}
	delete(r.providers, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.logger.Info("provider unregistered", "provider_id", id)
	r.emit(PluginEvent{Kind: EventDisposed, ProviderID: id})
}

// Get returns the provider with the given id, or nil.
func (r *Registry) Get(id string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[id]
}

// All returns every provider in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// snapshot returns providers in registration order. Must be called with a
// lock held.
func (r *Registry) snapshot() []Provider {
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// ForIntent returns providers declaring the intent, sorted by descending
// priority. Ties keep registration order.
func (r *Registry) ForIntent(intent string) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Provider
	for _, p := range r.snapshot() {
		if supportsIntent(p, intent) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return priorityOf(out[i]) > priorityOf(out[j])
	})
	return out
}

// AvailableForIntent is ForIntent minus providers that require a privileged
// host runtime when none is available.
func (r *Registry) AvailableForIntent(intent string, privilegedHost bool) []Provider {
	candidates := r.ForIntent(intent)
	if privilegedHost {
		return candidates
	}
	out := candidates[:0]
	for _, p := range candidates {
		if !requiresPrivilegedHost(p) {
			out = append(out, p)
		}
	}
	return out
}

// InitializeAll fans Initialize out to every provider with settle-all
// semantics: every provider is invoked, each failure is caught and reported
// independently, and the result maps provider id to its error (nil on
// success or when the provider has no Initialize).
func (r *Registry) InitializeAll(ctx context.Context) map[string]error {
	return r.fanOut(ctx, "initialize", func(ctx context.Context, p Provider) error {
		init, ok := p.(Initializer)
		if !ok {
			return nil
		}
		return init.Initialize(ctx)
	}, EventInitialized)
}

// DisposeAll fans Dispose out to every provider with settle-all semantics.
func (r *Registry) DisposeAll(ctx context.Context) map[string]error {
	return r.fanOut(ctx, "dispose", func(ctx context.Context, p Provider) error {
		disp, ok := p.(Disposer)
		if !ok {
			return nil
		}
		return disp.Dispose(ctx)
	}, EventDisposed)
}

// fanOut runs op against every provider concurrently and joins every outcome.
// A panicking provider is converted to an error for its own entry only.
func (r *Registry) fanOut(ctx context.Context, name string, op func(context.Context, Provider) error, okKind EventKind) map[string]error {
	providers := r.All()

	results := make(map[string]error, len(providers))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()

			err := func() (err error) {
				defer func() {
					if rec := recover(); rec != nil {
						err = fmt.Errorf("provider panicked during %s: %v", name, rec)
					}
				}()
				return op(ctx, p)
			}()

			resultsMu.Lock()
			results[p.ID()] = err
			resultsMu.Unlock()

			if err != nil {
				r.logger.Warn("provider lifecycle failure",
					"provider_id", p.ID(),
					"op", name,
					"error", err)
				r.emit(PluginEvent{Kind: EventError, ProviderID: p.ID(), Err: err})
				return
			}
			r.emit(PluginEvent{Kind: okKind, ProviderID: p.ID()})
		}(p)
	}
	wg.Wait()

	return results
}

// OnPluginEvent registers an observer for lifecycle events and returns a
// disposer. A panicking observer is recovered so it cannot break notification
// of the others.
func (r *Registry) OnPluginEvent(fn func(PluginEvent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New().String()
	r.observers = append(r.observers, observer{id: id, fn: fn})

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// emit notifies every observer of an event.
func (r *Registry) emit(ev PluginEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	r.mu.RLock()
	observers := make([]observer, len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, o := range observers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("plugin event observer panicked",
						"kind", ev.Kind,
						"provider_id", ev.ProviderID,
						"panic", rec)
				}
			}()
			o.fn(ev)
		}()
	}
}
