package syncauth

import (
	"log/slog"
	"time"
)

// Session event types
const (
	EventGuardAllow    = "guard_allow"
	EventGuardDeny     = "guard_deny"
	EventDecodeFailure = "decode_failure"
	EventInvalidate    = "invalidate"
	EventStoreFailure  = "store_failure"
	EventAttach        = "attach"
)

// SessionEvent represents a structured session log entry
type SessionEvent struct {
	EventType    string    // One of the Event* constants
	Timestamp    time.Time // Event timestamp
	Username     string    // Subject from claims (empty when unknown)
	Reason       string    // Error code on failures
	Path         string    // Request path or redirect target
	TokenPreview string    // Redacted token preview
}

// LogValue implements slog.LogValuer for structured logging with redaction
func (e SessionEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("event", e.EventType),
		slog.Time("timestamp", e.Timestamp),
		slog.String("username", e.Username),
		slog.String("reason", e.Reason),
		slog.String("path", e.Path),
		slog.String("token", redactToken(e.TokenPreview)),
	)
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSessionEvent emits a session event via the configured logger
func logSessionEvent(logger *slog.Logger, event SessionEvent) {
	if logger == nil {
		return
	}

	switch event.EventType {
	case EventGuardDeny, EventInvalidate, EventStoreFailure:
		logger.Warn("session rejected", "session_event", event)
	case EventDecodeFailure, EventAttach:
		logger.Debug("session token processed", "session_event", event)
	default:
		logger.Info("session accepted", "session_event", event)
	}
}
