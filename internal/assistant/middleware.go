// ABOUTME: Bus middleware shipped with the assistant service.
// ABOUTME: Logging wraps every dispatch with timing and outcome.

package assistant

import (
	"context"
	"log/slog"
	"time"

	"github.com/hearthd/hearthd/internal/command"
)

// LoggingMiddleware logs each dispatched command with its duration and
// outcome. Register it first so it observes the whole chain.
func LoggingMiddleware(logger *slog.Logger) command.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "commandbus")

	return func(ctx context.Context, cmd command.Command, next command.Next) (any, error) {
		start := time.Now()
		out, err := next(ctx, cmd)
		if err != nil {
			logger.Warn("command failed",
				"type", cmd.Type,
				"duration", time.Since(start),
				"error", err)
			return out, err
		}
		logger.Debug("command handled",
			"type", cmd.Type,
			"duration", time.Since(start))
		return out, nil
	}
}
