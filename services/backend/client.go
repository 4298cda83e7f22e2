// Package backendsvc is the HTTP client of the TClass backend API.
package backendsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/admission"
	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/contact"
	"github.com/tclass/web/core/enrollment"
	metricsvc "github.com/tclass/web/services/metrics"
)

const (
	loginPath      = "/auth/login"
	admissionPath  = "/admission/submit"
	contactPath    = "/contact/submit"
	evaluationPath = "/student/evaluation"
	assessPath     = "/enrollment/assess"

	maxErrorBody = 64 << 10
)

// Client calls the backend API under baseURL. An empty baseURL makes every
// call fail with core.ErrAPIBaseMissing before anything is sent.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metricsvc.Metrics
	logger  core.Logger
}

var (
	_ auth.Backend       = (*Client)(nil)
	_ admission.Backend  = (*Client)(nil)
	_ contact.Backend    = (*Client)(nil)
	_ enrollment.Backend = (*Client)(nil)
)

func NewClient(baseURL string, timeout time.Duration, metrics *metricsvc.Metrics, logger core.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  logger,
	}
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
}

func jsonRequest(method, path, token string, payload interface{}) (request, error) {
	req := request{method: method, path: path, token: token}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return req, errors.Wrap(err, "encoding request body")
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do sends r and decodes a 2xx JSON body into target (when not nil).
func (c *Client) do(ctx context.Context, r request, target interface{}) (err error) {
	outcome := "ok"
	start := time.Now()
	defer func() {
		c.metrics.BackendCalls.WithLabelValues(r.path, outcome).Inc()
		c.metrics.BackendLatency.WithLabelValues(r.path).Observe(time.Since(start).Seconds())
	}()

	if c.baseURL == "" {
		outcome = "config_error"
		return core.ErrAPIBaseMissing
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		outcome = "config_error"
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		outcome = "transport_error"
		return &core.TransportError{Op: r.method + " " + r.path, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		outcome = "server_error"
		body, _ := ioutil.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &core.ServerError{Status: res.StatusCode, Message: errorMessage(body)}
	}

	if target == nil {
		return nil
	}
	if err = json.NewDecoder(res.Body).Decode(target); err != nil && err != io.EOF {
		outcome = "decode_error"
		return errors.Wrapf(err, "decoding %s response", r.path)
	}
	return nil
}

// errorMessage extracts `message` (or `error`) from an error response body.
func errorMessage(body []byte) string {
	var resp struct {
		Message string      `json:"message"`
		Error   interface{} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	if resp.Message != "" {
		return resp.Message
	}
	if s, ok := resp.Error.(string); ok {
		return s
	}
	return ""
}

func (c *Client) Login(ctx context.Context, p auth.LoginPayload) (auth.LoginResult, error) {
	req, err := jsonRequest(http.MethodPost, loginPath, "", p)
	if err != nil {
		return auth.LoginResult{}, err
	}
	var raw json.RawMessage
	if err = c.do(ctx, req, &raw); err != nil {
		return auth.LoginResult{}, err
	}
	return decodeLogin(raw)
}

func (c *Client) SubmitAdmission(ctx context.Context, token string, p admission.Payload) (admission.Receipt, error) {
	body, ct, err := p.Encode()
	if err != nil {
		return admission.Receipt{}, err
	}
	var resp struct {
		Message   string      `json:"message"`
		Reference interface{} `json:"reference"`
		ID        interface{} `json:"id"`
	}
	req := request{method: http.MethodPost, path: admissionPath, token: token, body: body, contentType: ct}
	if err = c.do(ctx, req, &resp); err != nil {
		return admission.Receipt{}, err
	}
	ref := resp.Reference
	if ref == nil {
		ref = resp.ID
	}
	return admission.Receipt{Message: resp.Message, Reference: scalarString(ref)}, nil
}

func (c *Client) SubmitContact(ctx context.Context, m contact.Message) error {
	req, err := jsonRequest(http.MethodPost, contactPath, "", m)
	if err != nil {
		return err
	}
	return c.do(ctx, req, nil)
}

func (c *Client) StudentEvaluation(ctx context.Context, token string) ([]enrollment.Row, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: evaluationPath, token: token}, &raw); err != nil {
		return nil, err
	}
	return decodeEvaluationRows(raw)
}

// assessRequest is the wire shape of an enrollment.EnlistRequest.
type assessRequest struct {
	YearLevel    int      `json:"year_level"`
	Semester     int      `json:"semester"`
	SubjectCodes []string `json:"subject_codes"`
}

func (c *Client) AssessEnrollment(ctx context.Context, token string, er enrollment.EnlistRequest) (enrollment.EnlistReceipt, error) {
	req, err := jsonRequest(http.MethodPost, assessPath, token, assessRequest{
		YearLevel:    er.Term.YearLevel,
		Semester:     er.Term.Semester,
		SubjectCodes: er.SubjectCodes,
	})
	if err != nil {
		return enrollment.EnlistReceipt{}, err
	}
	var receipt enrollment.EnlistReceipt
	if err = c.do(ctx, req, &receipt); err != nil {
		return enrollment.EnlistReceipt{}, err
	}
	return receipt, nil
}
