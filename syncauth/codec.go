package syncauth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// Codec decodes token payloads without verifying signatures. The backend
// re-validates every token it receives, so the client only reads claims.
type Codec struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewCodec creates a codec. A nil logger disables diagnostics and a nil clock
// means time.Now.
func NewCodec(logger *slog.Logger, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{logger: logger, now: now}
}

var defaultCodec = NewCodec(nil, nil)

// Decode decodes a token with the default codec
func Decode(token string) (*ClaimSet, error) {
	return defaultCodec.Decode(token)
}

// Decode splits the token into header.payload.signature and decodes the payload
// into a ClaimSet. It never panics; every failure is a *ValidationError.
func (c *Codec) Decode(token string) (*ClaimSet, error) {
	claims, err := decodeClaims(token)
	if err != nil {
		c.logDecodeFailure(token, err)
		return nil, err
	}
	return claims, nil
}

// IsExpired reports whether expiresAt (seconds since epoch) lies strictly in
// the past. A token expiring in the current second is still valid.
func (c *Codec) IsExpired(expiresAt int64) bool {
	return expiresAt < c.now().Unix()
}

// TokenExpired is IsExpired for a raw token. Tokens that cannot be decoded
// count as expired.
func (c *Codec) TokenExpired(token string) bool {
	claims, err := c.Decode(token)
	if err != nil {
		return true
	}
	return c.IsExpired(claims.ExpiresAt)
}

// SessionUser derives the display user from a token
func (c *Codec) SessionUser(token string) (*SessionUser, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return nil, err
	}
	return &SessionUser{
		Username:  claims.Subject,
		IssuedAt:  time.Unix(claims.IssuedAt, 0).UTC(),
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
		IsExpired: c.IsExpired(claims.ExpiresAt),
	}, nil
}

// Username returns the token subject. Empty tokens are rejected without decoding.
func (c *Codec) Username(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	user, err := c.SessionUser(token)
	if err != nil {
		return "", false
	}
	return user.Username, true
}

func decodeClaims(token string) (*ClaimSet, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, NewValidationError(ErrMalformed, fmt.Sprintf("token has %d segments, expected 3", len(parts)), nil)
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, err
	}

	// Numbers stay json.Number so out-of-range epochs can be rejected before
	// the jwt getters convert them through float64
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, NewValidationError(ErrInvalidPayload, "payload is not a JSON object", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, NewValidationError(ErrInvalidPayload, "trailing data after payload object", nil)
	}

	return mapClaims(jwt.MapClaims(raw))
}

// decodeSegment accepts base64url with or without padding. The decoded bytes
// must be UTF-8 text.
func decodeSegment(seg string) ([]byte, error) {
	s := strings.NewReplacer("-", "+", "_", "/").Replace(seg)
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}

	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, NewValidationError(ErrInvalidEncoding, "payload is not valid base64url", err)
	}
	if !utf8.Valid(b) {
		return nil, NewValidationError(ErrInvalidEncoding, "payload is not valid UTF-8", nil)
	}
	return b, nil
}

func mapClaims(mc jwt.MapClaims) (*ClaimSet, error) {
	if _, ok := mc["sub"]; !ok {
		return nil, NewValidationError(ErrInvalidPayload, "required claim missing: sub", nil)
	}
	sub, err := mc.GetSubject()
	if err != nil {
		return nil, NewValidationError(ErrInvalidPayload, "sub claim must be a string", err)
	}

	for _, name := range []string{"exp", "iat"} {
		if err := checkEpoch(mc, name); err != nil {
			return nil, err
		}
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, NewValidationError(ErrInvalidPayload, "exp claim must be a number", err)
	}
	if exp == nil {
		return nil, NewValidationError(ErrInvalidPayload, "required claim missing: exp", nil)
	}

	claims := &ClaimSet{
		Subject:   sub,
		ExpiresAt: exp.Unix(),
	}

	iat, err := mc.GetIssuedAt()
	if err != nil {
		return nil, NewValidationError(ErrInvalidPayload, "iat claim must be a number", err)
	}
	if iat != nil {
		claims.IssuedAt = iat.Unix()
	}

	return claims, nil
}

// maxEpochSeconds is the largest epoch every float64 conversion keeps exact
const maxEpochSeconds = 1<<53 - 1

// checkEpoch rejects a numeric claim that cannot round-trip through the
// float64 path of the jwt getters. Non-numeric values are left to them.
func checkEpoch(mc jwt.MapClaims, name string) error {
	n, ok := mc[name].(json.Number)
	if !ok {
		return nil
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.Abs(f) > maxEpochSeconds {
		return NewValidationError(ErrInvalidPayload, fmt.Sprintf("%s claim is out of range", name), err)
	}
	return nil
}

func (c *Codec) logDecodeFailure(token string, err error) {
	if c.logger == nil {
		return
	}
	logSessionEvent(c.logger, SessionEvent{
		EventType:    EventDecodeFailure,
		Timestamp:    c.now(),
		Reason:       string(CodeOf(err)),
		TokenPreview: token,
	})
}
