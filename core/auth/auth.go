// Package auth implements the login flow: credentials go to the backend, and
// only a role the access guard understands is ever turned into a session.
package auth

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/session"
)

const (
	MsgLoginFailed = "Login failed. Please check your credentials and try again."
	MsgInvalidRole = "Your account role is not recognized."
)

// ErrInvalidRole is returned when the backend grants a role outside the session enum.
var ErrInvalidRole = core.NewFieldError("role", MsgInvalidRole)

type (
	// LoginRequest is what the login page posts. Role is only a hint.
	LoginRequest struct {
		Email    string `json:"email" form:"email" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
		Role     string `json:"role" form:"role" validate:"omitempty,tclassrole"`
		Redirect string `json:"redirect" form:"redirect" query:"redirect"`
	}

	// LoginPayload is sent to the backend.
	LoginPayload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	// LoginResult is the backend's answer, already reduced to a single shape.
	LoginResult struct {
		Token string
		Role  string // may be empty
	}

	Backend interface {
		Login(ctx context.Context, p LoginPayload) (LoginResult, error)
	}

	// Credential is a successful login.
	Credential struct {
		Email string
		Token string
		Role  session.Role
	}
)

// Home is where the user lands when no redirect was asked for.
func (c Credential) Home() string { return session.HomePath(c.Role) }

// Cookies are the session cookies to set for the credential.
func (c Credential) Cookies(maxAge time.Duration, secure bool) []*http.Cookie {
	return session.Cookies(c.Token, c.Role, maxAge, secure)
}

type Service struct {
	backend    Backend
	validate   *validator.Validate
	translator ut.Translator
	logger     core.Logger
}

func NewService(backend Backend, validate *validator.Validate, translator ut.Translator, logger core.Logger) *Service {
	return &Service{backend: backend, validate: validate, translator: translator, logger: logger}
}

// Login authenticates against the backend. The server role wins over the hint;
// the hint is used only when the server omits a role.
func (svc *Service) Login(ctx context.Context, req LoginRequest) (Credential, error) {
	req.Email = core.CleanString(req.Email)
	if err := core.CheckStruct(svc.validate, svc.translator, req); err != nil {
		return Credential{}, err
	}

	res, err := svc.backend.Login(ctx, LoginPayload{Email: req.Email, Password: req.Password, Role: req.Role})
	if err != nil {
		return Credential{}, errors.Wrap(err, "logging in")
	}
	if res.Token == "" {
		svc.logger.Warn("login response without token", map[string]interface{}{"email": req.Email})
		return Credential{}, errors.New("login response without token")
	}

	raw := core.CleanString(res.Role, true)
	if raw == "" {
		raw = req.Role
	}
	role, ok := session.ParseRole(raw)
	if !ok {
		svc.logger.Warn("login with unknown role", map[string]interface{}{"email": req.Email, "role": res.Role})
		return Credential{}, ErrInvalidRole
	}
	return Credential{Email: req.Email, Token: res.Token, Role: role}, nil
}

// FailureMessage is what the login page shows for err.
func FailureMessage(err error) string {
	return core.UserMessage(err, MsgLoginFailed)
}
