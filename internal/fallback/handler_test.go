// ABOUTME: Tests for fallback suggestion strategies.
// ABOUTME: Validates LLM-first ordering, failure fallthrough, and the actionability invariant.

package fallback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthd/hearthd/internal/capability"
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
	return &llm.Response{Text: f.text, Model: "fake"}, nil
}

func assertActionable(t *testing.T, res *capability.Result) {
	t.Helper()
	require.NotNil(t, res)
	require.NotNil(t, res.Prompt)
	require.NotEmpty(t, res.Prompt.Actions)
	for _, a := range res.Prompt.Actions {
		assert.True(t, a.ExecuteQuery != "" || a.PrefillText != "",
			"action %q must carry an execute query or prefill text", a.ID)
	}
}

func TestHandler_Suggest_KeywordCamera(t *testing.T) {
	h := NewHandler(Config{})

	res := h.Suggest(context.Background(), "record a timelapse from the cam")

	assertActionable(t, res)
	assert.Equal(t, "suggestion", res.Kind)
	assert.Equal(t, "camera-view", res.Prompt.Actions[0].ID)
}

func TestHandler_Suggest_GenericMenuIncludesHelp(t *testing.T) {
	h := NewHandler(Config{})

	res := h.Suggest(context.Background(), "flurble the wizzbang")

	assertActionable(t, res)
	found := false
	for _, a := range res.Prompt.Actions {
		if a.ExecuteQuery == "help" {
			found = true
		}
	}
	assert.True(t, found, "generic menu must include a help action")
}

func TestHandler_Suggest_ModelSuggestionUsed(t *testing.T) {
	h := NewHandler(Config{Client: &fakeLLM{
		text: `{"message":"Did you mean one of these?","actions":[{"intent":"network:scan","reason":"Scan your network"},{"intent":"camera:view","reason":"Check a camera"}]}`,
	}})

	res := h.Suggest(context.Background(), "what's on my lan")

	assertActionable(t, res)
	assert.Equal(t, "Did you mean one of these?", res.Text)
	require.Len(t, res.Prompt.Actions, 2)
	assert.Equal(t, capability.ActionExecute, res.Prompt.Actions[0].Type)
	assert.Equal(t, "scan the network", res.Prompt.Actions[0].ExecuteQuery)
}

func TestHandler_Suggest_ModelUnknownIntentBecomesPrefill(t *testing.T) {
	h := NewHandler(Config{Client: &fakeLLM{
		text: `{"message":"Try this","actions":[{"intent":"weather:today","reason":"Check the weather"}]}`,
	}})

	res := h.Suggest(context.Background(), "do I need an umbrella")

	assertActionable(t, res)
	require.Len(t, res.Prompt.Actions, 1)
	assert.Equal(t, capability.ActionPrefill, res.Prompt.Actions[0].Type)
	assert.Equal(t, "Check the weather", res.Prompt.Actions[0].PrefillText)
}

func TestHandler_Suggest_ModelErrorFallsThrough(t *testing.T) {
	h := NewHandler(Config{Client: &fakeLLM{err: errors.New("rate limited")}})

	res := h.Suggest(context.Background(), "ping the router please")

	assertActionable(t, res)
	assert.Equal(t, "network-scan", res.Prompt.Actions[0].ID)
}

func TestHandler_Suggest_ModelNonJSONFallsThrough(t *testing.T) {
	h := NewHandler(Config{Client: &fakeLLM{text: "I think you want to scan the network!"}})

	res := h.Suggest(context.Background(), "what devices are online")

	assertActionable(t, res)
	assert.Equal(t, "network-scan", res.Prompt.Actions[0].ID)
}

func TestHandler_Suggest_ModelEmptyActionsFallsThrough(t *testing.T) {
	h := NewHandler(Config{Client: &fakeLLM{text: `{"message":"hmm","actions":[]}`}})

	res := h.Suggest(context.Background(), "flurble")

	assertActionable(t, res)
}

func TestHandler_Suggest_AlwaysActionable(t *testing.T) {
	h := NewHandler(Config{Client: &fakeLLM{err: errors.New("down")}})

	inputs := []string{
		"xyzzy", "install something", "is the hub paired", "watch the driveway",
		"how much memory is free", "turn off everything", "alert me about motion",
	}
	for _, in := range inputs {
		assertActionable(t, h.Suggest(context.Background(), in))
	}
}
