package mockapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	ctxRequestID    = "mockapi.request_id"
	ctxUsername     = "mockapi.username"
)

// authEvent is logged for every bearer check
type authEvent struct {
	Outcome   string
	RequestID string
	Username  string
	Reason    ErrorCode
	Path      string
	Latency   time.Duration
}

func (e authEvent) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("outcome", e.Outcome),
		slog.String("request_id", e.RequestID),
		slog.String("path", e.Path),
		slog.Duration("latency", e.Latency),
	}
	if e.Username != "" {
		attrs = append(attrs, slog.String("username", e.Username))
	}
	if e.Reason != "" {
		attrs = append(attrs, slog.String("reason", string(e.Reason)))
	}
	return slog.GroupValue(attrs...)
}

// requestID echoes the caller's X-Request-ID or generates one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requireBearer rejects requests without a valid bearer token with 401
func requireBearer(cfg *Config, db *memoryDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var username string
			username, err = parseToken(cfg, token)
			if err == nil {
				if _, ok := db.user(username); !ok {
					err = newAuthError(ErrUnknownUser, "account no longer exists", nil)
				} else {
					c.Set(ctxUsername, username)
					logAuth(cfg, c, authEvent{Outcome: "success", Username: username, Latency: time.Since(start)})
					c.Next()
					return
				}
			}
		}

		logAuth(cfg, c, authEvent{Outcome: "failure", Reason: codeOf(err), Latency: time.Since(start)})
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"message": "Unauthorized",
			"reason":  codeOf(err),
		})
	}
}

func logAuth(cfg *Config, c *gin.Context, event authEvent) {
	if cfg.logger == nil {
		return
	}
	event.RequestID = c.GetString(ctxRequestID)
	event.Path = c.Request.URL.Path
	level := slog.LevelInfo
	if event.Outcome != "success" {
		level = slog.LevelWarn
	}
	cfg.logger.LogAttrs(c.Request.Context(), level, "bearer check", slog.Any("auth_event", event))
}

func currentUser(c *gin.Context) string {
	return c.GetString(ctxUsername)
}
