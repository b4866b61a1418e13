package syncauth

import (
	"context"
	"strings"
)

// Navigator performs the redirect side effect of a denied check.
// Navigate must not block on the destination.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, path string)

// Navigate implements Navigator
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// Decision is the outcome of one guard check
type Decision struct {
	Allowed bool
	Reason  ErrorCode    // Set when denied
	User    *SessionUser // Set when allowed, unless the guard is presence-only
}

// Guard gates protected operations on the stored session. It is the single
// authority for both token presence and expiry; consumers trust its Decision
// instead of decoding the token themselves.
type Guard struct {
	cfg     *Config
	session *Session
	nav     Navigator
}

// NewGuard creates a Guard that redirects through nav on denial
func NewGuard(cfg *Config, nav Navigator) *Guard {
	return &Guard{cfg: cfg, session: NewSession(cfg), nav: nav}
}

// CanActivate reports whether navigation may proceed
func (g *Guard) CanActivate(ctx context.Context) bool {
	return g.Check(ctx).Allowed
}

// Check evaluates the stored session. A denied check redirects to the login
// path exactly once and, unless the store itself failed, clears the session.
func (g *Guard) Check(ctx context.Context) Decision {
	token, ok, err := g.session.Token(ctx)
	if err != nil {
		return g.deny(ctx, ErrStoreFailure, "", false)
	}
	if !ok || isBlankToken(token) {
		return g.deny(ctx, ErrMissingToken, token, true)
	}

	if g.cfg.presenceOnly {
		g.allow(token, "")
		return Decision{Allowed: true}
	}

	user, err := g.cfg.codec.SessionUser(token)
	if err != nil {
		return g.deny(ctx, CodeOf(err), token, true)
	}
	if user.IsExpired {
		return g.deny(ctx, ErrExpired, token, true)
	}

	if err := g.session.CacheUser(ctx, user); err != nil {
		logSessionEvent(g.cfg.logger, SessionEvent{
			EventType: EventStoreFailure,
			Timestamp: g.cfg.now(),
			Username:  user.Username,
			Reason:    err.Error(),
		})
	}

	g.allow(token, user.Username)
	return Decision{Allowed: true, User: user}
}

// Invalidate ends the session and redirects to the login path. It is the
// handler for a backend 401 on any authenticated call.
func (g *Guard) Invalidate(ctx context.Context) {
	if err := g.session.End(ctx); err != nil {
		logSessionEvent(g.cfg.logger, SessionEvent{
			EventType: EventStoreFailure,
			Timestamp: g.cfg.now(),
			Reason:    err.Error(),
		})
	}
	logSessionEvent(g.cfg.logger, SessionEvent{
		EventType: EventInvalidate,
		Timestamp: g.cfg.now(),
		Path:      g.cfg.loginPath,
	})
	g.redirect(ctx)
}

func (g *Guard) allow(token, username string) {
	g.cfg.metrics.observeGuard("allow", "")
	logSessionEvent(g.cfg.logger, SessionEvent{
		EventType:    EventGuardAllow,
		Timestamp:    g.cfg.now(),
		Username:     username,
		TokenPreview: token,
	})
}

func (g *Guard) deny(ctx context.Context, reason ErrorCode, token string, clear bool) Decision {
	if clear {
		if err := g.session.End(ctx); err != nil {
			logSessionEvent(g.cfg.logger, SessionEvent{
				EventType: EventStoreFailure,
				Timestamp: g.cfg.now(),
				Reason:    err.Error(),
			})
		}
	}
	g.cfg.metrics.observeGuard("deny", string(reason))
	logSessionEvent(g.cfg.logger, SessionEvent{
		EventType:    EventGuardDeny,
		Timestamp:    g.cfg.now(),
		Reason:       string(reason),
		Path:         g.cfg.loginPath,
		TokenPreview: token,
	})
	g.redirect(ctx)
	return Decision{Allowed: false, Reason: reason}
}

func (g *Guard) redirect(ctx context.Context) {
	if g.nav != nil {
		g.nav.Navigate(ctx, g.cfg.loginPath)
	}
}

// isBlankToken matches the values browsers leave behind for a missing token
func isBlankToken(token string) bool {
	return strings.TrimSpace(token) == "" || token == "null"
}
