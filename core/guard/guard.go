// Package guard decides, for every navigation, whether to serve the page, send
// the visitor to the login page or send them back to their role's home.
package guard

import (
	"net/url"
	"strings"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/session"
)

const (
	LoginPath     = "/login"
	RedirectParam = "redirect"
)

type Action int

const (
	Continue Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "continue"
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Action   Action
	Location string // set for Redirect
	Reason   string // "login", "anonymous", "forbidden"; for logs and metrics
}

// Request is everything the guard looks at.
type Request struct {
	Path     string
	RawQuery string
	Token    string // raw tclass_token cookie value
	Role     string // raw tclass_role cookie value
}

// Evaluate is a pure function of the request path and the two cookies.
func (p Policy) Evaluate(req Request) Decision {
	sess := session.FromCookies(req.Token, req.Role)

	if req.Path == LoginPath {
		if sess.IsAuthenticated() {
			return Decision{Action: Redirect, Location: sess.Home(), Reason: "login"}
		}
		return Decision{Action: Continue}
	}

	if !p.Protected(req.Path) {
		return Decision{Action: Continue}
	}

	if !sess.IsAuthenticated() {
		return Decision{Action: Redirect, Location: LoginURL(req.Path, req.RawQuery), Reason: "anonymous"}
	}

	if !p.Allows(req.Path, sess.Role()) {
		return Decision{Action: Redirect, Location: sess.Home(), Reason: "forbidden"}
	}
	return Decision{Action: Continue}
}

// Evaluate applies the DefaultPolicy.
func Evaluate(req Request) Decision {
	return DefaultPolicy.Evaluate(req)
}

// LoginURL is the login page remembering the original destination.
func LoginURL(path, rawQuery string) string {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	v := url.Values{}
	v.Set(RedirectParam, target)
	return LoginPath + "?" + v.Encode()
}

// SafeRedirect returns `target` when it is a same-origin relative path other than
// the login page itself, else "".
func SafeRedirect(target string) string {
	if !core.IsRelativePath(target) {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	if u.Path == LoginPath || strings.HasPrefix(u.Path, LoginPath+"/") {
		return ""
	}
	return target
}
