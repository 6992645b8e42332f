// ABOUTME: Tests for the colorized slog handler used by the REPL.
// ABOUTME: Covers group qualification of attr keys and level gating.

package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorHandler_WithGroup_QualifiesAttrKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&colorHandler{level: slog.LevelDebug, out: &buf})

	logger.WithGroup("http").With("method", "GET").Info("request handled", "status", "200")

	out := buf.String()
	assert.Contains(t, out, "http.method=")
	assert.Contains(t, out, "http.status=")
	assert.Contains(t, out, "request handled")
}

func TestColorHandler_NestedGroupsJoinWithDots(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&colorHandler{level: slog.LevelDebug, out: &buf})

	logger.WithGroup("scope").WithGroup("dynamic").Info("installed", "provider", "net-ping")

	assert.Contains(t, buf.String(), "scope.dynamic.provider=")
}

func TestColorHandler_UngroupedAttrsUnqualified(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&colorHandler{level: slog.LevelDebug, out: &buf})

	logger.With("component", "alert").Info("bridge attached")

	assert.Contains(t, buf.String(), " component=")
	assert.NotContains(t, buf.String(), ".component=")
}

func TestColorHandler_Enabled_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := &colorHandler{level: slog.LevelInfo, out: &buf}

	require.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	require.True(t, h.Enabled(context.Background(), slog.LevelWarn))

	slog.New(h).Debug("hidden")
	assert.Empty(t, buf.String())
}
