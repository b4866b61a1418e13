package mockapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type usernameKey struct{}

// UsernameFromContext returns the subject authenticated by UnaryServerInterceptor
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey{}).(string)
	return username, ok
}

// UnaryServerInterceptor applies the bearer rules to gRPC calls. Methods in
// public (full method names) skip the check.
func UnaryServerInterceptor(cfg *Config, public ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]bool, len(public))
	for _, m := range public {
		skip[m] = true
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if skip[info.FullMethod] {
			return handler(ctx, req)
		}

		start := time.Now()
		requestID := uuid.New().String()

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			logGRPCAuth(ctx, cfg, info.FullMethod, requestID, "", ErrMissingToken, start)
			return nil, status.Error(codes.Unauthenticated, string(ErrMissingToken))
		}
		if ids := md.Get("x-request-id"); len(ids) > 0 && ids[0] != "" {
			requestID = ids[0]
		}

		token, err := bearerFromMetadata(md)
		if err == nil {
			var username string
			if username, err = parseToken(cfg, token); err == nil {
				logGRPCAuth(ctx, cfg, info.FullMethod, requestID, username, "", start)
				return handler(context.WithValue(ctx, usernameKey{}, username), req)
			}
		}

		logGRPCAuth(ctx, cfg, info.FullMethod, requestID, "", codeOf(err), start)
		return nil, status.Error(codes.Unauthenticated, string(codeOf(err)))
	}
}

func logGRPCAuth(ctx context.Context, cfg *Config, method, requestID, username string, reason ErrorCode, start time.Time) {
	if cfg.logger == nil {
		return
	}
	event := authEvent{
		Outcome:   "success",
		RequestID: requestID,
		Username:  username,
		Reason:    reason,
		Path:      method,
		Latency:   time.Since(start),
	}
	level := slog.LevelInfo
	if reason != "" {
		event.Outcome = "failure"
		level = slog.LevelWarn
	}
	cfg.logger.LogAttrs(ctx, level, "bearer check", slog.String("transport", "grpc"), slog.Any("auth_event", event))
}
