package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/admission"
	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/contact"
	"github.com/tclass/web/core/enrollment"
	"github.com/tclass/web/core/session"
)

const goodPassword = "secret"

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	role     session.Role
	wantCode int
	wantData []byte
	extra    interface{}
}

// backendMock stands in for the TClass backend API.
type backendMock struct {
	mu          sync.Mutex
	loginRole   string
	submitErr   error
	contactErr  error
	evalRows    []enrollment.Row
	evalErr     error
	assessErr   error
	submissions []admission.Payload
	contacts    []contact.Message
	enlisted    []enrollment.EnlistRequest
}

var (
	_ auth.Backend       = (*backendMock)(nil)
	_ admission.Backend  = (*backendMock)(nil)
	_ contact.Backend    = (*backendMock)(nil)
	_ enrollment.Backend = (*backendMock)(nil)
)

func newBackendMock() *backendMock {
	return &backendMock{}
}

// reset restores the default behaviour: every call succeeds.
func (b *backendMock) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginRole = ""
	b.submitErr, b.contactErr, b.evalErr, b.assessErr = nil, nil, nil, nil
	b.evalRows = nil
	b.submissions, b.contacts, b.enlisted = nil, nil, nil
}

func (b *backendMock) set(fn func(b *backendMock)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

func (b *backendMock) Login(_ context.Context, p auth.LoginPayload) (auth.LoginResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Password != goodPassword {
		return auth.LoginResult{}, &core.ServerError{Status: http.StatusUnauthorized, Message: "Invalid email or password."}
	}
	return auth.LoginResult{Token: "tok-" + p.Email, Role: b.loginRole}, nil
}

func (b *backendMock) SubmitAdmission(_ context.Context, _ string, p admission.Payload) (admission.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.submitErr != nil {
		return admission.Receipt{}, b.submitErr
	}
	b.submissions = append(b.submissions, p)
	return admission.Receipt{Reference: "APP-0001"}, nil
}

func (b *backendMock) SubmitContact(_ context.Context, m contact.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.contactErr != nil {
		return b.contactErr
	}
	b.contacts = append(b.contacts, m)
	return nil
}

func (b *backendMock) StudentEvaluation(context.Context, string) ([]enrollment.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.evalRows, b.evalErr
}

func (b *backendMock) AssessEnrollment(_ context.Context, _ string, req enrollment.EnlistRequest) (enrollment.EnlistReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.assessErr != nil {
		return enrollment.EnlistReceipt{}, b.assessErr
	}
	b.enlisted = append(b.enlisted, req)
	return enrollment.EnlistReceipt{}, nil
}

func (b *backendMock) submissionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.submissions)
}

func (b *backendMock) lastSubmission() admission.Payload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submissions[len(b.submissions)-1]
}

// Requests

func newJSONRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, httptest.NewRecorder()
}

func newFormRequest(method, path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, httptest.NewRecorder()
}

func newUploadRequest(t *testing.T, path, filename string, data []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile(): %v", err)
		}
		_, _ = part.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Writer.Close(): %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, httptest.NewRecorder()
}

// logIn adds the session cookies of a user with `role`.
func logIn(req *http.Request, role session.Role) {
	if role == "" {
		return
	}
	for _, c := range session.Cookies("tok-"+string(role), role, 0, false) {
		req.AddCookie(c)
	}
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
