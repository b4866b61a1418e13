package syncauth

import "context"

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const userContextKey contextKey = "github.com/syncup/syncup-go/syncauth:user"

// WithUser stores the user admitted by the guard in the context.
// Downstream code reads it instead of decoding the token again.
func WithUser(ctx context.Context, user *SessionUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the guard-admitted user.
// Returns nil, false if the guard did not run or ran in presence-only mode.
func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	user, ok := ctx.Value(userContextKey).(*SessionUser)
	return user, ok && user != nil
}
