package mockapi

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of tokens issued by /auth/login
const DefaultTokenTTL = time.Hour

// Config holds the immutable backend configuration
type Config struct {
	signingMethod jwt.SigningMethod
	signingKey    any // []byte for HS256, *rsa.PrivateKey for RS256
	verifyKey     any
	tokenTTL      time.Duration
	bcryptCost    int
	logger        *slog.Logger
	now           func() time.Time
}

// ConfigOption configures the backend
type ConfigOption func(*Config) error

// NewConfig builds a Config. Exactly one signing key must be configured.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := &Config{
		tokenTTL:   DefaultTokenTTL,
		bcryptCost: 10,
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, newAuthError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}

	if cfg.signingMethod == nil {
		return nil, newAuthError(ErrConfigError, "a signing key must be configured (use WithHS256 or WithRS256)", nil)
	}

	return cfg, nil
}

// WithHS256 signs tokens with an HMAC secret of at least 32 bytes
func WithHS256(secret []byte) ConfigOption {
	return func(c *Config) error {
		if len(secret) < 32 {
			return fmt.Errorf("HS256 secret must be at least 32 bytes (256 bits), got %d bytes", len(secret))
		}
		c.signingMethod = jwt.SigningMethodHS256
		c.signingKey = secret
		c.verifyKey = secret
		return nil
	}
}

// WithRS256 signs tokens with an RSA private key
func WithRS256(privateKey *rsa.PrivateKey) ConfigOption {
	return func(c *Config) error {
		if privateKey == nil {
			return fmt.Errorf("RS256 private key cannot be nil")
		}
		c.signingMethod = jwt.SigningMethodRS256
		c.signingKey = privateKey
		c.verifyKey = &privateKey.PublicKey
		return nil
	}
}

func WithTokenTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) error {
		if ttl <= 0 {
			return fmt.Errorf("token ttl must be positive, got %v", ttl)
		}
		c.tokenTTL = ttl
		return nil
	}
}

// WithBcryptCost lowers the hashing cost, mostly for tests
func WithBcryptCost(cost int) ConfigOption {
	return func(c *Config) error {
		if cost < 4 || cost > 31 {
			return fmt.Errorf("bcrypt cost out of range: %d", cost)
		}
		c.bcryptCost = cost
		return nil
	}
}

func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

func WithClock(now func() time.Time) ConfigOption {
	return func(c *Config) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// Algorithm returns the configured signing algorithm name
func (c *Config) Algorithm() string {
	return c.signingMethod.Alg()
}

func (c *Config) TokenTTL() time.Duration {
	return c.tokenTTL
}
