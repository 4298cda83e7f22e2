package guard

import (
	"strings"

	"github.com/tclass/web/core/session"
)

// Rule gates every path under Prefix to the Allowed roles.
type Rule struct {
	Prefix  string
	Allowed []session.Role
}

// Policy is a static, ordered list of rules. Prefixes must not overlap so that a
// protected path maps to exactly one allowed-role set.
type Policy []Rule

// DefaultPolicy is the TClass route policy.
var DefaultPolicy = Policy{
	{Prefix: "/admin", Allowed: []session.Role{session.RoleAdmin}},
	{Prefix: "/faculty", Allowed: []session.Role{session.RoleFaculty}},
	{Prefix: "/student", Allowed: []session.Role{session.RoleStudent}},
}

// rule returns the rule protecting `path`, if any.
func (p Policy) rule(path string) (Rule, bool) {
	for _, r := range p {
		if path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/") {
			return r, true
		}
	}
	return Rule{}, false
}

// Protected reports whether `path` is under a role-gated prefix.
func (p Policy) Protected(path string) bool {
	_, ok := p.rule(path)
	return ok
}

// Allows reports whether `role` may view `path`. Unprotected paths allow everyone.
func (p Policy) Allows(path string, role session.Role) bool {
	r, ok := p.rule(path)
	if !ok {
		return true
	}
	for _, allowed := range r.Allowed {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	skippedPrefixes = []string{"/api/", "/_next/static/", "/_next/image/"}
	skippedFiles    = []string{"/favicon.ico", "/sitemap.xml", "/robots.txt"}
)

// Skip reports whether `path` is outside the route protection matcher
// (API routes, build assets and well-known files) and must not be evaluated.
func Skip(path string) bool {
	if path == "/api" {
		return true
	}
	for _, p := range skippedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, f := range skippedFiles {
		if path == f {
			return true
		}
	}
	return false
}
