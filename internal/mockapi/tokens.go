package mockapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// issueToken signs a token carrying sub, iat and exp for username
func issueToken(cfg *Config, username string) (string, error) {
	now := cfg.now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(cfg.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(cfg.signingMethod, claims).SignedString(cfg.signingKey)
}

// parseToken verifies signature and expiry and returns the subject
func parseToken(cfg *Config, tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithTimeFunc(cfg.now),
		jwt.WithExpirationRequired(),
	)
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return verificationKey(token, cfg)
	})
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return "", authErr
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", newAuthError(ErrExpired, "token has expired", err)
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) || errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return "", newAuthError(ErrInvalidSignature, "invalid signature", err)
		}
		return "", newAuthError(ErrMalformed, "malformed token", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", newAuthError(ErrMalformed, "required claim missing: sub", err)
	}
	return sub, nil
}

// verificationKey rejects "none" and any algorithm other than the configured one
func verificationKey(token *jwt.Token, cfg *Config) (any, error) {
	alg, ok := token.Header["alg"].(string)
	if !ok {
		return nil, newAuthError(ErrMalformed, "missing algorithm in token header", nil)
	}
	if strings.EqualFold(alg, "none") {
		return nil, newAuthError(ErrNoneAlgorithm, "none algorithm not allowed", nil)
	}
	if alg != cfg.signingMethod.Alg() {
		return nil, newAuthError(
			ErrUnsupportedAlgorithm,
			fmt.Sprintf("algorithm %s not supported (available: %s)", alg, cfg.signingMethod.Alg()),
			nil,
		)
	}
	if token.Method.Alg() != cfg.signingMethod.Alg() {
		return nil, newAuthError(ErrInvalidSignature, "algorithm confusion detected", nil)
	}
	return cfg.verifyKey, nil
}
