package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/guard"
	"github.com/tclass/web/core/session"
	metricsvc "github.com/tclass/web/services/metrics"
)

// lastEmailMaxAge keeps the convenience email cookie for a year.
const lastEmailMaxAge = 365 * 24 * 60 * 60

type loginPage struct {
	Email    string
	Role     string
	Redirect string
	Error    string
	Roles    []session.Role
}

type authHandlers struct {
	svc     *auth.Service
	metrics *metricsvc.Metrics
	maxAge  time.Duration
	secure  bool
}

func registerAuthRoutes(app *echo.Echo, deps ServerDeps) {
	h := authHandlers{
		svc:     deps.AuthSvc,
		metrics: deps.Metrics,
		maxAge:  deps.Conf.Session.MaxAge,
		secure:  deps.Conf.Session.SecureCookies,
	}

	app.GET(guard.LoginPath, h.loginPage)
	app.POST(guard.LoginPath, h.login, withFallback(auth.MsgLoginFailed))
	app.GET("/logout", h.logout)
	app.POST("/logout", h.logout)
}

// Handlers

func (h *authHandlers) loginPage(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "login", "Log in", loginPage{
		Email:    cookieValue(ctx.Request(), session.LastEmailCookie),
		Role:     string(session.RoleStudent),
		Redirect: guard.SafeRedirect(ctx.QueryParam(guard.RedirectParam)),
		Roles:    session.AllRoles,
	})
}

func (h *authHandlers) login(ctx echo.Context) error {
	var req auth.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if req.Redirect == "" {
		req.Redirect = ctx.QueryParam(guard.RedirectParam)
	}

	cred, err := h.svc.Login(ctx.Request().Context(), req)
	if err != nil {
		h.metrics.Logins.WithLabelValues("failed").Inc()
		if wantsJSON(ctx) {
			return err
		}
		return render(ctx, loginFailureCode(err), "login", "Log in", loginPage{
			Email:    req.Email,
			Role:     req.Role,
			Redirect: guard.SafeRedirect(req.Redirect),
			Error:    auth.FailureMessage(err),
			Roles:    session.AllRoles,
		})
	}
	h.metrics.Logins.WithLabelValues(cred.Role.String()).Inc()

	for _, c := range cred.Cookies(h.maxAge, h.secure) {
		ctx.SetCookie(c)
	}
	ctx.SetCookie(&http.Cookie{
		Name:     session.LastEmailCookie,
		Value:    cred.Email,
		Path:     "/",
		MaxAge:   lastEmailMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	dest := guard.SafeRedirect(req.Redirect)
	if dest == "" {
		dest = cred.Home()
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, echo.Map{"role": cred.Role, "redirect": dest})
	}
	return ctx.Redirect(http.StatusSeeOther, dest)
}

func (h *authHandlers) logout(ctx echo.Context) error {
	for _, c := range session.ExpiredCookies(h.secure) {
		ctx.SetCookie(c)
	}
	return ctx.Redirect(http.StatusSeeOther, guard.LoginPath)
}

func loginFailureCode(err error) int {
	cause := errors.Cause(err)
	if cause == auth.ErrInvalidRole {
		return http.StatusForbidden
	}
	switch e := cause.(type) {
	case *core.ValidationError:
		return http.StatusBadRequest
	case *core.TransportError:
		return http.StatusServiceUnavailable
	case *core.ServerError:
		if e.Status >= http.StatusInternalServerError {
			return http.StatusBadGateway
		}
	}
	if cause == core.ErrAPIBaseMissing {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnauthorized
}
