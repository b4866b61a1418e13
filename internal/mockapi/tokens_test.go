package mockapi

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestAlgorithmConfusionPrevention checks tokens signed with another algorithm are refused
func TestAlgorithmConfusionPrevention(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	hsCfg, _ := NewConfig(WithHS256(testSecret))
	rsCfg, _ := NewConfig(WithRS256(rsaKey))

	tests := []struct {
		name         string
		cfg          *Config
		signMethod   jwt.SigningMethod
		signKey      any
		expectedCode ErrorCode
	}{
		{
			name:         "RS256 token presented to HS256 backend",
			cfg:          hsCfg,
			signMethod:   jwt.SigningMethodRS256,
			signKey:      rsaKey,
			expectedCode: ErrUnsupportedAlgorithm,
		},
		{
			name:         "HS256 token presented to RS256 backend",
			cfg:          rsCfg,
			signMethod:   jwt.SigningMethodHS256,
			signKey:      testSecret,
			expectedCode: ErrUnsupportedAlgorithm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(tt.signMethod, jwt.MapClaims{
				"sub": "attacker",
				"exp": time.Now().Add(time.Hour).Unix(),
			}).SignedString(tt.signKey)
			if err != nil {
				t.Fatalf("Failed to sign token: %v", err)
			}

			_, err = parseToken(tt.cfg, token)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := codeOf(err); got != tt.expectedCode {
				t.Errorf("expected %s, got %s", tt.expectedCode, got)
			}
		})
	}
}

func TestNoneAlgorithmRejected(t *testing.T) {
	cfg, _ := NewConfig(WithHS256(testSecret))

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "attacker",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	_, err = parseToken(cfg, token)
	if got := codeOf(err); got != ErrNoneAlgorithm {
		t.Errorf("expected %s, got %s (%v)", ErrNoneAlgorithm, got, err)
	}
}

func TestIssueAndParseRS256(t *testing.T) {
	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	cfg, err := NewConfig(WithRS256(rsaKey), WithTokenTTL(5*time.Minute))
	if err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	token, err := issueToken(cfg, "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	sub, err := parseToken(cfg, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sub != "alice" {
		t.Errorf("expected alice, got %q", sub)
	}
}

func TestTokenExpiresWithClock(t *testing.T) {
	now := time.Unix(1735324800, 0)
	cfg, _ := NewConfig(
		WithHS256(testSecret),
		WithTokenTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)
	token, _ := issueToken(cfg, "alice")

	now = now.Add(2 * time.Minute)
	if _, err := parseToken(cfg, token); codeOf(err) != ErrExpired {
		t.Errorf("expected EXPIRED, got %v", err)
	}
}

func TestParseRSAPrivateKeyFromPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	pkcs8, _ := x509.MarshalPKCS8PrivateKey(key)

	tests := []struct {
		name    string
		pem     []byte
		wantErr bool
	}{
		{"PKCS#1", pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), false},
		{"PKCS#8", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}), false},
		{"not PEM", []byte("hello"), true},
		{"garbage block", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("junk")}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRSAPrivateKeyFromPEM(tt.pem)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(key) {
				t.Error("parsed key does not match")
			}
		})
	}
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr bool
	}{
		{"HS256", []ConfigOption{WithHS256(testSecret)}, false},
		{"no key", nil, true},
		{"short secret", []ConfigOption{WithHS256([]byte("short"))}, true},
		{"nil RSA key", []ConfigOption{WithRS256(nil)}, true},
		{"zero ttl", []ConfigOption{WithHS256(testSecret), WithTokenTTL(0)}, true},
		{"bad bcrypt cost", []ConfigOption{WithHS256(testSecret), WithBcryptCost(2)}, true},
		{"nil clock", []ConfigOption{WithHS256(testSecret), WithClock(nil)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.opts...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if codeOf(err) != ErrConfigError {
					t.Errorf("expected CONFIG_ERROR, got %s", codeOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Algorithm() != "HS256" || cfg.TokenTTL() != DefaultTokenTTL {
				t.Errorf("unexpected defaults: %s %v", cfg.Algorithm(), cfg.TokenTTL())
			}
		})
	}
}
