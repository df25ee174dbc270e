// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs the global slog handler. Production gets JSON on stdout
// for the log aggregator; everywhere else gets the text handler at debug
// level so local routing decisions are easy to follow.
func Init() {
	var handler slog.Handler
	if strings.ToLower(os.Getenv("ENVIRONMENT")) == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// WithRequest returns a logger carrying the chat request id, so every line
// a single route() invocation emits can be correlated.
func WithRequest(requestID string) *slog.Logger {
	return slog.With("request_id", requestID)
}
