// ABOUTME: The dual-shape capability provider contract and its query/result types.
// ABOUTME: Basic providers check inputs per call, rich providers declare static capabilities.

package capability

import (
	"context"

	"github.com/hearthd/hearthd/internal/scope"
)

// Provider is the common envelope every capability provider satisfies.
// Intents returns the canonical intent names the provider implements.
type Provider interface {
	ID() string
	Name() string
	Version() string
	Intents() []string
}

// Initializer is implemented by providers that need startup work. Initialize
// failures are isolated by the registry, never fatal to it.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Disposer is implemented by providers that hold resources.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// InvokeFunc calls into a privileged host runtime. Its absence means
// privileged capabilities self-report unavailable.
type InvokeFunc func(ctx context.Context, name string, args map[string]any) (any, error)

// ExecContext carries per-call environment into basic providers.
type ExecContext struct {
	// Scope is the access-control domain the call runs under, nil when the
	// caller did not restrict it.
	Scope *scope.Scope
	// PrivilegedHost is true when a privileged host runtime is reachable.
	PrivilegedHost bool
	// Invoke reaches the privileged host; nil when PrivilegedHost is false.
	Invoke InvokeFunc
}

// BasicProvider handles raw input and decides acceptance per call. Declaring
// an intent does not guarantee acceptance of every input under it.
type BasicProvider interface {
	Provider
	CanHandle(input string, ec *ExecContext) bool
	Execute(ctx context.Context, rawInput string, ec *ExecContext) (*Result, error)
}

// Capabilities is the static declaration of a rich provider.
type Capabilities struct {
	// Priority orders providers competing for the same intent; higher wins.
	Priority int
	// BrowserCompatible providers run without a privileged host runtime.
	BrowserCompatible bool
}

// RichProvider declares capabilities up front and executes structured queries.
type RichProvider interface {
	Provider
	Capabilities() Capabilities
	Execute(ctx context.Context, q *Query) (*Result, error)
}

// Query is the structured input a rich provider executes.
type Query struct {
	Intent    string
	RawInput  string
	Entities  map[string]string
	SubAction string
	Scope     *scope.Scope
}

// Result is what a provider returns. Providers are expected to catch their
// own I/O errors and return a typed failure result rather than an error.
type Result struct {
	Text   string
	Kind   string // rendering hint, e.g. "chat", "alert", "suggestion"
	Data   map[string]any
	Prompt *ActionPrompt
}

// ActionType distinguishes suggestion actions.
type ActionType string

const (
	// ActionExecute runs a canned query immediately when chosen.
	ActionExecute ActionType = "execute"
	// ActionPrefill places text into the input box for the user to edit.
	ActionPrefill ActionType = "prefill"
)

// Action is one entry of a suggestion menu. Every action carries a non-empty
// ExecuteQuery or PrefillText.
type Action struct {
	ID           string
	Label        string
	Type         ActionType
	ExecuteQuery string
	PrefillText  string
}

// ActionPrompt is the actionable menu attached to fallback results.
type ActionPrompt struct {
	Layout  string
	Actions []Action
}

// supportsIntent reports whether the provider declares the intent.
func supportsIntent(p Provider, intent string) bool {
	for _, i := range p.Intents() {
		if i == intent {
			return true
		}
	}
	return false
}

// priorityOf returns the declared priority of a provider; basic providers
// have no declaration and default to zero.
func priorityOf(p Provider) int {
	if rich, ok := p.(RichProvider); ok {
		return rich.Capabilities().Priority
	}
	return 0
}

// requiresPrivilegedHost reports whether the provider cannot run without a
// privileged runtime. Basic providers always run in-process.
func requiresPrivilegedHost(p Provider) bool {
	if rich, ok := p.(RichProvider); ok {
		return !rich.Capabilities().BrowserCompatible
	}
	return false
}
