// ABOUTME: Fallback suggestion handler invoked when no provider routes an input.
// ABOUTME: LLM strategy first when configured, deterministic keyword menus otherwise.

package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hearthd/hearthd/internal/capability"
	"github.com/hearthd/hearthd/internal/llm"
)

const suggestionKind = "suggestion"

// Handler turns an unroutable input into a suggestion menu. Every returned
// result carries at least one action with a non-empty ExecuteQuery or
// PrefillText.
type Handler struct {
	client llm.Client
	logger *slog.Logger
}

// Config configures a Handler.
type Config struct {
	// Client is optional; nil disables the LLM strategy entirely.
	Client llm.Client
	Logger *slog.Logger
}

// NewHandler creates a fallback handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client: cfg.Client,
		logger: logger.With("component", "fallback"),
	}
}

// Suggest builds a suggestion menu for input that matched no provider. It
// never fails: LLM errors and unparseable completions fall through to the
// keyword strategy, which always produces at least a generic menu.
func (h *Handler) Suggest(ctx context.Context, rawInput string) *capability.Result {
	if h.client != nil {
		if res := h.suggestViaModel(ctx, rawInput); res != nil {
			return res
		}
	}
	return h.suggestViaKeywords(rawInput)
}

// modelSuggestion mirrors the JSON shape requested from the model.
type modelSuggestion struct {
	Message string `json:"message"`
	Actions []struct {
		Intent string `json:"intent"`
		Reason string `json:"reason"`
	} `json:"actions"`
}

const suggestPrompt = `The user said: %q

No capability matched this request. Respond with ONLY a JSON object of the
form {"message": string, "actions": [{"intent": string, "reason": string}]}
where each intent is one the assistant supports (network:ping, network:scan,
camera:view, camera:snapshot, iot:toggle, monitor:status, system:info,
browse:url, system:help) and reason is a short user-facing label.`

// suggestViaModel asks the model for structured suggestions. A nil return
// means the strategy produced nothing usable and the caller should fall
// through.
func (h *Handler) suggestViaModel(ctx context.Context, rawInput string) *capability.Result {
	resp, err := h.client.Chat(ctx, fmt.Sprintf(suggestPrompt, rawInput), llm.Options{MaxTokens: 512})
	if err != nil {
		h.logger.Debug("model suggestion failed, using keyword menu", "error", err)
		return nil
	}

	var parsed modelSuggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text)), &parsed); err != nil {
		h.logger.Debug("model returned non-JSON suggestion, using keyword menu", "error", err)
		return nil
	}

	actions := make([]capability.Action, 0, len(parsed.Actions))
	for _, a := range parsed.Actions {
		act, ok := actionForIntent(a.Intent, a.Reason)
		if !ok {
			continue
		}
		actions = append(actions, act)
	}
	if parsed.Message == "" || len(actions) == 0 {
		h.logger.Debug("model suggestion unusable, using keyword menu")
		return nil
	}

	return &capability.Result{
		Text: parsed.Message,
		Kind: suggestionKind,
		Prompt: &capability.ActionPrompt{
			Layout:  "list",
			Actions: actions,
		},
	}
}

// actionForIntent maps a suggested intent to a runnable action. Unknown
// intents become prefill actions so the user can still act on them.
func actionForIntent(intent, reason string) (capability.Action, bool) {
	label := reason
	if label == "" {
		label = intent
	}
	if query, ok := cannedQueries[intent]; ok {
		return capability.Action{
			ID:           intent,
			Label:        label,
			Type:         capability.ActionExecute,
			ExecuteQuery: query,
		}, true
	}
	if intent == "" {
		return capability.Action{}, false
	}
	return capability.Action{
		ID:          intent,
		Label:       label,
		Type:        capability.ActionPrefill,
		PrefillText: label,
	}, true
}

// suggestViaKeywords matches the query against fixed domain keyword groups.
// No domain match yields the generic menu, so the result is never empty.
func (h *Handler) suggestViaKeywords(rawInput string) *capability.Result {
	lowered := strings.ToLower(rawInput)

	for _, g := range keywordGroups {
		if !containsAny(lowered, g.keywords) {
			continue
		}
		h.logger.Debug("keyword fallback matched", "group", g.name)
		return &capability.Result{
			Text: g.message,
			Kind: suggestionKind,
			Prompt: &capability.ActionPrompt{
				Layout:  "list",
				Actions: g.actions,
			},
		}
	}

	return &capability.Result{
		Text: genericGroup.message,
		Kind: suggestionKind,
		Prompt: &capability.ActionPrompt{
			Layout:  "list",
			Actions: genericGroup.actions,
		},
	}
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
