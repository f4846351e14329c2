// Package session carries the authenticated context for one console run.
// Components receive a Session at construction instead of reading a token out
// of ambient storage, which is how the browser console used to do it.
package session

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

type Session struct {
	token string
}

func New(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string { return s.token }

// Authenticated reports whether a bearer token is present at all. Whether the
// token is actually accepted is the backend's call; an empty token simply
// means "not authenticated" to the surrounding shell.
func (s *Session) Authenticated() bool { return s.token != "" }

// ExpiresAt reads the token's exp claim without verifying the signature. The
// signing secret belongs to the backend, so the client can only inspect the
// claims, not vouch for them. Returns false for opaque or claimless tokens.
func (s *Session) ExpiresAt() (time.Time, bool) {
	if s.token == "" {
		return time.Time{}, false
	}
	claims := &jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(s.token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an exp claim in the past. Tokens
// without a readable expiry are never reported expired; the backend will
// reject them if they are invalid.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && now.After(exp)
}
