package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/syncup/syncup-go/internal/config"
)

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loginHint is the CLI Navigator: a denied check tells the user how to sign
// in again. It prints at most once per invocation.
type loginHint struct {
	w     io.Writer
	shown bool
}

func (h *loginHint) Navigate(_ context.Context, path string) {
	if h.shown {
		return
	}
	h.shown = true
	fmt.Fprintf(h.w, "Session ended (%s). Run `syncup login` to sign in again.\n", path)
}
