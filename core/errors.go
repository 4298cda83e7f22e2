package core

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// user-facing fallbacks
const (
	MsgCannotConnect = "Unable to connect to the server. Please try again later."
	MsgMissingAPI    = "The application is not configured: missing API base URL."
)

// ErrAPIBaseMissing is returned before any network call when no API base URL is configured.
var ErrAPIBaseMissing = errors.New("api base url is not configured")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a ValidationError about a single field; its message is the error text.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// TransportError wraps a failure to reach the backend at all (offline, DNS, refused...).
type TransportError struct {
	Op  string
	Err error
}

func (err *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", err.Op, err.Err)
}

func (err *TransportError) Unwrap() error { return err.Err }

// ServerError is a non-2xx backend response.
type ServerError struct {
	Status  int
	Message string // `message` from the response body, may be empty
}

func (err *ServerError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("backend responded %d %s", err.Status, http.StatusText(err.Status))
	}
	return fmt.Sprintf("backend responded %d: %s", err.Status, err.Message)
}

// UserMessage returns the message to show for err, falling back to `fallback`
// when err carries nothing the user should see verbatim.
func UserMessage(err error, fallback string) string {
	switch e := errors.Cause(err).(type) {
	case nil:
		return ""
	case *ServerError:
		if e.Message != "" {
			return e.Message
		}
	case *ValidationError:
		if msg := e.Error(); msg != "" {
			return msg
		}
	case *TransportError:
		return MsgCannotConnect
	}
	if errors.Cause(err) == ErrAPIBaseMissing {
		return MsgMissingAPI
	}
	return fallback
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
