// ABOUTME: Command bus dispatching typed commands to single handlers.
// ABOUTME: Middleware wraps dispatch in registration order, outermost first.

package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrDuplicateCommand indicates a handler for the type is already registered.
var ErrDuplicateCommand = errors.New("command type already registered")

// ErrHandlerNotFound indicates no handler is registered for the dispatched type.
var ErrHandlerNotFound = errors.New("no handler for command type")

// Command is a typed request routed to exactly one handler.
type Command struct {
	Type    string
	Payload any
}

// Handler executes a command and returns its result. Handler errors propagate
// unchanged through the middleware chain to the caller.
type Handler func(ctx context.Context, cmd Command) (any, error)

// Next invokes the rest of the chain from inside a middleware.
type Next func(ctx context.Context, cmd Command) (any, error)

// Middleware wraps command dispatch. It must call next to continue the chain
// and may observe or transform the result on the way back out.
type Middleware func(ctx context.Context, cmd Command, next Next) (any, error)

// Bus routes commands to handlers through the middleware chain.
type Bus struct {
	mu         sync.RWMutex
	handlers   map[string]Handler
	middleware []Middleware
	logger     *slog.Logger
}

// NewBus creates an empty bus. Pass nil logger for default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		handlers: make(map[string]Handler),
		logger:   logger.With("component", "commandbus"),
	}
}

// Register binds a handler to a command type.
// Returns ErrDuplicateCommand if the type is taken.
func (b *Bus) Register(commandType string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.handlers[commandType]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCommand, commandType)
	}
	b.handlers[commandType] = h
	b.logger.Debug("command handler registered", "type", commandType)
	return nil
}

// Unregister removes the handler for a command type. Removing an absent type
// is a no-op.
func (b *Bus) Unregister(commandType string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, commandType)
}

// Use appends a middleware to the chain. Middleware registered first runs
// outermost: its before-code runs first and its after-code runs last.
func (b *Bus) Use(mw Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, mw)
}

// Dispatch runs the command through the full middleware chain to its handler.
// Returns ErrHandlerNotFound for unregistered types; handler results and
// errors propagate unchanged.
func (b *Bus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	b.mu.RLock()
	handler, ok := b.handlers[cmd.Type]
	chain := make([]Middleware, len(b.middleware))
	copy(chain, b.middleware)
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrHandlerNotFound, cmd.Type)
	}

	next := Next(handler)
	for i := len(chain) - 1; i >= 0; i-- {
		mw := chain[i]
		inner := next
		next = func(ctx context.Context, cmd Command) (any, error) {
			return mw(ctx, cmd, inner)
		}
	}
	return next(ctx, cmd)
}

// Execute is shorthand for dispatching a command built from type and payload.
func (b *Bus) Execute(ctx context.Context, commandType string, payload any) (any, error) {
	return b.Dispatch(ctx, Command{Type: commandType, Payload: payload})
}
