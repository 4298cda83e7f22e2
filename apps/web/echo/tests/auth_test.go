package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/session"
)

func Test_login(t *testing.T) {
	backend.reset()

	form := func(email, password, role, redirect string) url.Values {
		v := url.Values{"email": {email}, "password": {password}, "role": {role}}
		if redirect != "" {
			v.Set("redirect", redirect)
		}
		return v
	}

	tests := []struct {
		name         string
		serverRole   string
		form         url.Values
		wantCode     int
		wantLocation string
		wantRole     string
		wantBody     string
	}{
		{"server role wins over hint", "admin", form("ana@tclass.edu", goodPassword, "student", ""), http.StatusSeeOther, "/admin", "admin", ""},
		{"server role is normalized", " Faculty ", form("ana@tclass.edu", goodPassword, "student", ""), http.StatusSeeOther, "/faculty", "faculty", ""},
		{"hint used when server omits role", "", form("ana@tclass.edu", goodPassword, "student", ""), http.StatusSeeOther, "/student", "student", ""},
		{"safe redirect honoured", "student", form("ana@tclass.edu", goodPassword, "student", "/student/enrollment?year=1"), http.StatusSeeOther, "/student/enrollment?year=1", "student", ""},
		{"absolute redirect ignored", "student", form("ana@tclass.edu", goodPassword, "student", "https://evil.example/x"), http.StatusSeeOther, "/student", "student", ""},
		{"protocol-relative redirect ignored", "student", form("ana@tclass.edu", goodPassword, "student", "//evil.example"), http.StatusSeeOther, "/student", "student", ""},
		{"login redirect ignored", "admin", form("ana@tclass.edu", goodPassword, "admin", "/login"), http.StatusSeeOther, "/admin", "admin", ""},
		{"unknown server role", "teacher", form("ana@tclass.edu", goodPassword, "student", ""), http.StatusForbidden, "", "", auth.MsgInvalidRole},
		{"bad credentials", "student", form("ana@tclass.edu", "nope", "student", ""), http.StatusUnauthorized, "", "", "Invalid email or password."},
		{"missing password", "student", form("ana@tclass.edu", "", "student", ""), http.StatusBadRequest, "", "", "this field is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend.set(func(b *backendMock) { b.loginRole = tt.serverRole })

			req, rec := newFormRequest(http.MethodPost, "/login", tt.form)
			app.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))

			roleCookie := responseCookie(rec, session.RoleCookie)
			tokenCookie := responseCookie(rec, session.TokenCookie)
			if tt.wantRole == "" {
				assert.Nil(t, roleCookie, "no session on failure")
				assert.Nil(t, tokenCookie, "no session on failure")
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				return
			}
			require.NotNil(t, roleCookie)
			require.NotNil(t, tokenCookie)
			assert.Equal(t, tt.wantRole, roleCookie.Value)
			assert.Equal(t, "tok-ana@tclass.edu", tokenCookie.Value)
			assert.True(t, tokenCookie.HttpOnly)
			assert.Equal(t, int(sessionMaxAge.Seconds()), tokenCookie.MaxAge)

			lastEmail := responseCookie(rec, session.LastEmailCookie)
			require.NotNil(t, lastEmail)
			assert.Equal(t, "ana@tclass.edu", lastEmail.Value)
		})
	}
}

func Test_login_json(t *testing.T) {
	backend.reset()

	tests := []httpTest{
		{
			name:     "unknown server role",
			body:     []byte(`{"email":"ben@tclass.edu","password":"secret","role":"faculty"}`),
			wantCode: http.StatusForbidden,
			wantData: []byte(`{"error":"Your account role is not recognized.","fields":{"role":"Your account role is not recognized."}}`),
			extra:    "teacher",
		},
		{
			name:     "success",
			body:     []byte(`{"email":"ben@tclass.edu","password":"secret","role":"faculty"}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"role":"faculty","redirect":"/faculty"}`),
		},
		{
			name:     "bad credentials",
			body:     []byte(`{"email":"ben@tclass.edu","password":"wrong","role":"faculty"}`),
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, httpErr{Error: "Invalid email or password."}),
		},
		{
			name:     "invalid role hint",
			body:     []byte(`{"email":"ben@tclass.edu","password":"secret","role":"Faculty"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"error":"role must be one of student, faculty or admin","fields":{"role":"role must be one of student, faculty or admin"}}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serverRole, _ := tt.extra.(string)
			backend.set(func(b *backendMock) { b.loginRole = serverRole })

			req, rec := newJSONRequest(http.MethodPost, "/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_loginPage(t *testing.T) {
	req, rec := newFormRequest(http.MethodGet, "/login?redirect=%2Fstudent", nil)
	req.AddCookie(&http.Cookie{Name: session.LastEmailCookie, Value: "ana@tclass.edu"})
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="ana@tclass.edu"`)
	assert.Contains(t, body, `name="redirect" value="/student"`)
}

func Test_logout(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			req, rec := newFormRequest(method, "/logout", nil)
			logIn(req, session.RoleAdmin)
			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/login", rec.Header().Get("Location"))
			for _, name := range []string{session.TokenCookie, session.RoleCookie} {
				c := responseCookie(rec, name)
				require.NotNil(t, c, name)
				assert.Empty(t, c.Value)
				assert.True(t, c.MaxAge < 0)
			}
			assert.Nil(t, responseCookie(rec, session.LastEmailCookie), "the last email is kept")
		})
	}
}
