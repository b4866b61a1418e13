package syncauth

import (
	"encoding/json"
	"time"
)

// ClaimSet is the decoded payload of a session token
type ClaimSet struct {
	Subject   string // Authenticated username (sub claim)
	IssuedAt  int64  // Seconds since epoch (iat claim), 0 when absent
	ExpiresAt int64  // Seconds since epoch (exp claim)
}

// SessionUser is the display view of a decoded token. It is derived on every
// decode and is never an authority for access decisions.
type SessionUser struct {
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	IsExpired bool
}

// isoLayout matches the millisecond UTC form browsers produce for dates.
const isoLayout = "2006-01-02T15:04:05.000Z"

// CachedUser is the JSON shape written under KeyUserData.
type CachedUser struct {
	Username  string `json:"username"`
	IssuedAt  string `json:"issuedAt"`
	ExpiresAt string `json:"expiresAt"`
}

func newCachedUser(u *SessionUser) CachedUser {
	return CachedUser{
		Username:  u.Username,
		IssuedAt:  u.IssuedAt.UTC().Format(isoLayout),
		ExpiresAt: u.ExpiresAt.UTC().Format(isoLayout),
	}
}

func (c CachedUser) encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
