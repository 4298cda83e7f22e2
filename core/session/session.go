// Package session models the cookie-backed TClass session.
//
// A Session is recomputed from the raw cookie values on every request and is
// never mutated afterwards.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// Cookie names.
const (
	TokenCookie     = "tclass_token"
	RoleCookie      = "tclass_role"
	LastEmailCookie = "tclass_last_email" // convenience only, never authentication state
	DraftCookie     = "tclass_draft_id"
)

// DefaultMaxAge is the lifetime of the session cookies when none is configured.
const DefaultMaxAge = 24 * time.Hour

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

var (
	AllRoles = []Role{RoleStudent, RoleFaculty, RoleAdmin}

	homePaths = map[Role]string{
		RoleStudent: "/student",
		RoleFaculty: "/faculty",
		RoleAdmin:   "/admin",
	}
)

// ParseRole maps `s` onto the closed role enum. Only exact matches are accepted:
// "STUDENT", " admin" or "Administrator" are all invalid.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// HomePath is the landing page of the role; it is "/" for an invalid role.
func HomePath(r Role) string {
	if p, ok := homePaths[r]; ok {
		return p
	}
	return "/"
}

// Session is the read-only view of the two session cookies.
type Session struct {
	token string
	role  Role
	valid bool
}

// FromCookies builds a Session from the raw cookie values.
// Partial or unrecognized data yields an anonymous session.
func FromCookies(token, role string) Session {
	r, ok := ParseRole(role)
	if token == "" || !ok {
		return Session{}
	}
	return Session{token: token, role: r, valid: true}
}

// FromRequest reads the session cookies of `req`; missing cookies mean anonymous.
func FromRequest(req *http.Request) Session {
	var token, role string
	if c, err := req.Cookie(TokenCookie); err == nil {
		token = c.Value
	}
	if c, err := req.Cookie(RoleCookie); err == nil {
		role = c.Value
	}
	return FromCookies(token, role)
}

func (s Session) IsAuthenticated() bool { return s.valid }

func (s Session) Role() Role { return s.role }

// Token returns the bearer token, "" for anonymous sessions.
func (s Session) Token() string { return s.token }

// Home is HomePath(s.Role()).
func (s Session) Home() string { return HomePath(s.role) }

// Fingerprint identifies the token in logs without revealing it.
func (s Session) Fingerprint() string {
	if !s.valid {
		return ""
	}
	sum := sha256.Sum256([]byte(s.token))
	return hex.EncodeToString(sum[:6])
}

// Cookies returns the two session cookies for a freshly obtained credential.
// A non-positive maxAge means DefaultMaxAge.
func Cookies(token string, role Role, maxAge time.Duration, secure bool) []*http.Cookie {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	secs := int(maxAge.Seconds())
	return []*http.Cookie{
		newCookie(TokenCookie, token, secs, secure),
		newCookie(RoleCookie, string(role), secs, secure),
	}
}

// ExpiredCookies returns cookies clearing the session (max-age=0).
func ExpiredCookies(secure bool) []*http.Cookie {
	return []*http.Cookie{
		newCookie(TokenCookie, "", -1, secure),
		newCookie(RoleCookie, "", -1, secure),
	}
}

func newCookie(name, value string, maxAge int, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge, // net/http writes "Max-Age=0" for negative values
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
