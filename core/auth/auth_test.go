package auth

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/session"
)

type backendMock struct {
	res   LoginResult
	err   error
	calls []LoginPayload
}

func (b *backendMock) Login(_ context.Context, p LoginPayload) (LoginResult, error) {
	b.calls = append(b.calls, p)
	return b.res, b.err
}

func newService(b Backend) *Service {
	translator := core.NewTranslator()
	return NewService(b, core.NewValidator(translator), translator, core.NopLogger{})
}

func TestService_Login(t *testing.T) {
	tests := []struct {
		name     string
		req      LoginRequest
		res      LoginResult
		err      error
		wantRole session.Role
		wantErr  string
		wantCall bool
	}{
		{
			name:     "server role wins over hint",
			req:      LoginRequest{Email: " ana@tclass.test ", Password: "pw", Role: "student"},
			res:      LoginResult{Token: "tok", Role: "faculty"},
			wantRole: session.RoleFaculty,
			wantCall: true,
		},
		{
			name:     "server role is normalized",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "student"},
			res:      LoginResult{Token: "tok", Role: " Admin "},
			wantRole: session.RoleAdmin,
			wantCall: true,
		},
		{
			name:     "hint used when server omits role",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "student"},
			res:      LoginResult{Token: "tok"},
			wantRole: session.RoleStudent,
			wantCall: true,
		},
		{
			name:     "unknown server role",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "student"},
			res:      LoginResult{Token: "tok", Role: "registrar"},
			wantErr:  MsgInvalidRole,
			wantCall: true,
		},
		{
			name:     "no role at all",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw"},
			res:      LoginResult{Token: "tok"},
			wantErr:  MsgInvalidRole,
			wantCall: true,
		},
		{
			name:     "server message surfaced",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "bad", Role: "student"},
			err:      &core.ServerError{Status: 401, Message: "Invalid email or password."},
			wantErr:  "Invalid email or password.",
			wantCall: true,
		},
		{
			name:     "generic fallback",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "bad", Role: "student"},
			err:      &core.ServerError{Status: 500},
			wantErr:  MsgLoginFailed,
			wantCall: true,
		},
		{
			name:     "cannot connect",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "student"},
			err:      &core.TransportError{Op: "POST /auth/login", Err: errors.New("connection refused")},
			wantErr:  core.MsgCannotConnect,
			wantCall: true,
		},
		{
			name:     "missing api base",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "student"},
			err:      core.ErrAPIBaseMissing,
			wantErr:  core.MsgMissingAPI,
			wantCall: true,
		},
		{
			name:     "missing token",
			req:      LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "student"},
			res:      LoginResult{Role: "student"},
			wantErr:  MsgLoginFailed,
			wantCall: true,
		},
		{
			name:    "missing password never reaches backend",
			req:     LoginRequest{Email: "ana@tclass.test", Role: "student"},
			wantErr: "this field is required",
		},
		{
			name:    "invalid hint never reaches backend",
			req:     LoginRequest{Email: "ana@tclass.test", Password: "pw", Role: "STUDENT"},
			wantErr: "role must be one of student, faculty or admin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backendMock{res: tt.res, err: tt.err}
			cred, err := newService(b).Login(context.Background(), tt.req)

			assert.Equal(t, tt.wantCall, len(b.calls) == 1)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, FailureMessage(err))
				assert.Empty(t, cred.Token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, cred.Role)
			assert.Equal(t, "tok", cred.Token)
			assert.Equal(t, "ana@tclass.test", cred.Email)
			assert.Equal(t, "ana@tclass.test", b.calls[0].Email)
		})
	}
}

func TestCredential(t *testing.T) {
	cred := Credential{Token: "tok", Role: session.RoleFaculty}
	assert.Equal(t, "/faculty", cred.Home())

	cookies := cred.Cookies(0, false)
	require.Len(t, cookies, 2)
	assert.Equal(t, session.TokenCookie, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.Equal(t, session.RoleCookie, cookies[1].Name)
	assert.Equal(t, "faculty", cookies[1].Value)
	assert.Equal(t, 86400, cookies[0].MaxAge)

	for _, c := range cred.Cookies(time.Hour, false) {
		assert.Equal(t, 3600, c.MaxAge)
	}
}
