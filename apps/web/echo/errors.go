package echoweb

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/admission"
	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/session"
)

var (
	errUnknownForm   = echo.NewHTTPError(http.StatusNotFound, "unknown form")
	errUnknownSlot   = echo.NewHTTPError(http.StatusNotFound, "unknown attachment")
	errMissingFile   = core.NewFieldError("file", "Please choose a file.")
	errSubmitPending = echo.NewHTTPError(http.StatusConflict, "Your application is already being submitted.")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Error()
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = echo.Map{"error": origErr.Error(), "fields": fldErrs}
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
			if error(origErr) == auth.ErrInvalidRole {
				code = http.StatusForbidden
			}
		case *core.ServerError:
			code = http.StatusBadGateway
			if origErr.Status == http.StatusUnauthorized || origErr.Status == http.StatusForbidden {
				code = origErr.Status
			}
			message = core.UserMessage(origErr, fallbackMessage(ctx))
		case *core.TransportError:
			code = http.StatusServiceUnavailable
			message = core.MsgCannotConnect
			logger.Warn("backend unreachable", err, session.FromRequest(ctx.Request()))
		default:
			switch errors.Cause(err) {
			case core.ErrAPIBaseMissing:
				code = http.StatusServiceUnavailable
				message = core.MsgMissingAPI
			case admission.ErrSubmitInFlight:
				code = errSubmitPending.Code
				message = errSubmitPending.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), session.FromRequest(ctx.Request()))

				if ctx.Echo().Debug {
					message = err.Error()
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// fallbackMessage is the generic message of the operation behind the request.
func fallbackMessage(ctx echo.Context) string {
	if msg, ok := ctx.Get(fallbackKey).(string); ok && msg != "" {
		return msg
	}
	return "Something went wrong. Please try again."
}

const fallbackKey = "fallbackMessage"

// withFallback sets the generic failure message of the route's operation.
func withFallback(msg string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(fallbackKey, msg)
			return next(ctx)
		}
	}
}
