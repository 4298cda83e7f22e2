package echomock

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tclass/web/core/session"
)

const tokenContextKey = "userToken"

var (
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password.")
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
	errForbidden            = echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	Email string       `json:"email,omitempty"`
	Role  session.Role `json:"role,omitempty"`
}

type tokenIssuer struct {
	issuer string
	key    []byte
	ttl    time.Duration
}

func (ti tokenIssuer) claims(usr User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    ti.issuer,
			Subject:   usr.Email,
			ExpiresAt: now.Add(ti.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func (ti tokenIssuer) GenerateToken(usr User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ti.claims(usr))
	ss, err := token.SignedString(ti.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (ti tokenIssuer) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:    ti.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
		ErrorHandler: func(error) error {
			return errUnauthorized
		},
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// roleMiddleware only lets users of `role` through.
func roleMiddleware(role session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if claims.Role != role {
				return errForbidden
			}
			return next(ctx)
		}
	}
}

func authenticate(users *UserStore, email, pwd string) (User, error) {
	usr, err := users.GetByEmail(email)
	if err != nil {
		return User{}, errAuthenticationFailed
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, errAuthenticationFailed
	}
	return usr, nil
}
