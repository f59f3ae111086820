package agentpipe

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger whose output goes to io.Discard. Sessions
// constructed without WithLogger use it, so logging is opt-in.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
