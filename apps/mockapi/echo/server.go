// Package echomock is a development stand-in for the TClass backend API.
package echomock

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/session"
)

type ServerDeps struct {
	Conf           *core.Config
	Logger         core.Logger
	Users          *UserStore
	Inbox          *Inbox
	DisableReqLogs bool
}

type Server struct {
	deps ServerDeps
	app  *echo.Echo
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{deps: deps, app: echo.New()}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())
	s.app.HTTPErrorHandler = newErrorHandler(s.deps.Logger)

	api := &api{
		users: s.deps.Users,
		inbox: s.deps.Inbox,
		tokens: tokenIssuer{
			issuer: conf.AppName,
			key:    []byte(conf.Mock.SecretKey),
			ttl:    conf.Mock.TokenTTL,
		},
	}
	jwtAuth := api.tokens.middleware()

	s.app.POST("/auth/login", api.login)
	s.app.POST("/admission/submit", api.submitAdmission)
	s.app.POST("/contact/submit", api.submitContact)
	s.app.GET("/student/evaluation", api.evaluation, jwtAuth, roleMiddleware(session.RoleStudent))
	s.app.POST("/enrollment/assess", api.assess, jwtAuth, roleMiddleware(session.RoleStudent))
}

func (s *Server) Start() error {
	if err := s.app.Start(s.deps.Conf.Mock.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

// newErrorHandler answers every error as `{"message": ...}`, the backend's error shape.
func newErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		var message interface{} = http.StatusText(code)

		if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			code = herr.Code
			message = herr.Message
		} else {
			logger.Error("mock backend error", err)
		}

		if ctx.Response().Committed {
			return
		}
		if err = ctx.JSON(code, echo.Map{"message": message}); err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// optionalClaims reads the bearer token of a route that also accepts anonymous calls.
func optionalClaims(ctx echo.Context, ti tokenIssuer) (*Claims, error) {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, errUnauthorized
	}
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.key, nil
	})
	if err != nil {
		return nil, errUnauthorized
	}
	return claims, nil
}
