package syncauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Session manages the token/user_data pair in a Store
type Session struct {
	cfg *Config
}

// NewSession binds session helpers to a configuration
func NewSession(cfg *Config) *Session {
	return &Session{cfg: cfg}
}

// Token returns the stored raw token
func (s *Session) Token(ctx context.Context) (string, bool, error) {
	token, ok, err := s.cfg.store.Get(ctx, KeyAuthToken)
	if err != nil {
		return "", false, NewValidationError(ErrStoreFailure, "read token", err)
	}
	return token, ok, nil
}

// Begin stores a freshly issued token. Any cached user belongs to the previous
// token and is dropped.
func (s *Session) Begin(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return NewValidationError(ErrMissingToken, "refusing to store an empty token", nil)
	}
	if err := s.cfg.store.Set(ctx, KeyAuthToken, token); err != nil {
		return NewValidationError(ErrStoreFailure, "write token", err)
	}
	if err := s.cfg.store.Remove(ctx, KeyUserData); err != nil {
		return NewValidationError(ErrStoreFailure, "drop cached user", err)
	}
	return nil
}

// CacheUser overwrites the advisory user_data entry
func (s *Session) CacheUser(ctx context.Context, user *SessionUser) error {
	encoded, err := newCachedUser(user).encode()
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}
	if err := s.cfg.store.Set(ctx, KeyUserData, encoded); err != nil {
		return NewValidationError(ErrStoreFailure, "write cached user", err)
	}
	return nil
}

// CachedUser returns the display copy written by the last successful guard
// check. It must not be used for access decisions.
func (s *Session) CachedUser(ctx context.Context) (*CachedUser, bool, error) {
	raw, ok, err := s.cfg.store.Get(ctx, KeyUserData)
	if err != nil {
		return nil, false, NewValidationError(ErrStoreFailure, "read cached user", err)
	}
	if !ok {
		return nil, false, nil
	}
	var user CachedUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, true, nil
}

// End removes token and user_data together. Both removals are attempted even
// when the first fails.
func (s *Session) End(ctx context.Context) error {
	errToken := s.cfg.store.Remove(ctx, KeyAuthToken)
	errUser := s.cfg.store.Remove(ctx, KeyUserData)
	if err := errors.Join(errToken, errUser); err != nil {
		return NewValidationError(ErrStoreFailure, "clear session", err)
	}
	return nil
}
