package echoweb

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tclass/web/core/guard"
	"github.com/tclass/web/core/session"
	metricsvc "github.com/tclass/web/services/metrics"
)

// draftOwnerMaxAge keeps the anonymous draft owner around for 30 days.
const draftOwnerMaxAge = 30 * 24 * 60 * 60

// guardMiddleware runs the access guard on every request the route matcher covers.
func guardMiddleware(policy guard.Policy, metrics *metricsvc.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			if guard.Skip(req.URL.Path) {
				return next(ctx)
			}

			decision := policy.Evaluate(guard.Request{
				Path:     req.URL.Path,
				RawQuery: req.URL.RawQuery,
				Token:    cookieValue(req, session.TokenCookie),
				Role:     cookieValue(req, session.RoleCookie),
			})
			metrics.GuardDecisions.WithLabelValues(decision.Action.String(), decision.Reason).Inc()

			if decision.Action == guard.Redirect {
				code := http.StatusTemporaryRedirect
				if req.Method != http.MethodGet && req.Method != http.MethodHead {
					code = http.StatusSeeOther
				}
				return ctx.Redirect(code, decision.Location)
			}
			return next(ctx)
		}
	}
}

func cookieValue(req *http.Request, name string) string {
	if c, err := req.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

// draftOwner returns the id drafts of this browser are stored under, issuing one
// on first use.
func draftOwner(ctx echo.Context, secure bool) string {
	if id := cookieValue(ctx.Request(), session.DraftCookie); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	ctx.SetCookie(&http.Cookie{
		Name:     session.DraftCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   draftOwnerMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// wantsJSON reports whether the client asked for JSON rather than a page.
func wantsJSON(ctx echo.Context) bool {
	req := ctx.Request()
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
