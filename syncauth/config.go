package syncauth

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// DefaultLoginPath is where denied navigations are sent
	DefaultLoginPath = "/login"
	// DefaultPublicSegment marks the endpoints that issue tokens
	DefaultPublicSegment = "/auth/"
)

// Config holds immutable configuration shared by the session components
type Config struct {
	store         Store
	logger        *slog.Logger
	now           func() time.Time
	loginPath     string
	publicSegment string
	publicMethods map[string]struct{}
	presenceOnly  bool
	registerer    prometheus.Registerer
	metrics       *metrics
	codec         *Codec
}

// ConfigOption is a functional option for configuring the session components
type ConfigOption func(*Config) error

// NewConfig creates a new immutable configuration with the given options
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		now:           time.Now,
		loginPath:     DefaultLoginPath,
		publicSegment: DefaultPublicSegment,
		publicMethods: make(map[string]struct{}),
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if cfg.store == nil {
		return nil, NewValidationError(ErrConfigError, "a session store must be configured (use WithStore)", nil)
	}

	if cfg.registerer != nil {
		m, err := newMetrics(cfg.registerer)
		if err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("metrics registration failed: %v", err), err)
		}
		cfg.metrics = m
	}

	cfg.codec = NewCodec(cfg.logger, cfg.now)
	return cfg, nil
}

// WithStore sets the key-value medium holding the session
func WithStore(store Store) ConfigOption {
	return func(c *Config) error {
		if store == nil {
			return fmt.Errorf("store cannot be nil")
		}
		c.store = store
		return nil
	}
}

// WithLogger sets a structured logger for session events
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithClock overrides the wall clock used for expiry checks
func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithLoginPath sets the route denied navigations are redirected to
func WithLoginPath(path string) ConfigOption {
	return func(c *Config) error {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("login path must be absolute, got %q", path)
		}
		c.loginPath = path
		return nil
	}
}

// WithPublicPathSegment sets the path fragment identifying token-issuing endpoints.
// Requests whose path contains it never carry a bearer credential.
func WithPublicPathSegment(segment string) ConfigOption {
	return func(c *Config) error {
		if strings.TrimSpace(segment) == "" {
			return fmt.Errorf("public path segment cannot be empty")
		}
		c.publicSegment = segment
		return nil
	}
}

// WithPublicMethods lists full gRPC method names that are called without a credential
func WithPublicMethods(methods ...string) ConfigOption {
	return func(c *Config) error {
		for _, m := range methods {
			c.publicMethods[m] = struct{}{}
		}
		return nil
	}
}

// WithPresenceOnlyGuard makes the guard accept any non-blank token without
// decoding it or checking expiry.
func WithPresenceOnlyGuard() ConfigOption {
	return func(c *Config) error {
		c.presenceOnly = true
		return nil
	}
}

// WithRegisterer enables guard and authenticator counters on the given registry
func WithRegisterer(reg prometheus.Registerer) ConfigOption {
	return func(c *Config) error {
		c.registerer = reg
		return nil
	}
}

func (c *Config) Store() Store {
	return c.store
}

func (c *Config) Logger() *slog.Logger {
	return c.logger
}

func (c *Config) LoginPath() string {
	return c.loginPath
}

func (c *Config) PublicSegment() string {
	return c.publicSegment
}

// PublicMethods returns the sorted gRPC methods exempt from authentication
func (c *Config) PublicMethods() []string {
	methods := make([]string, 0, len(c.publicMethods))
	for m := range c.publicMethods {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func (c *Config) PresenceOnly() bool {
	return c.presenceOnly
}

// Codec returns the token codec sharing this configuration's logger and clock
func (c *Config) Codec() *Codec {
	return c.codec
}

// isPublic reports whether a request path or RPC method must go out without a credential
func (c *Config) isPublic(path string) bool {
	if _, ok := c.publicMethods[path]; ok {
		return true
	}
	return strings.Contains(path, c.publicSegment)
}
