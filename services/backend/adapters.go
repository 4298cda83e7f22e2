package backendsvc

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tclass/web/core/auth"
	"github.com/tclass/web/core/enrollment"
)

// decodeLogin reads the token from `token` or `access_token` and the role from
// `role` or `user.role`. The role may be missing; the token may not.
func decodeLogin(raw json.RawMessage) (auth.LoginResult, error) {
	var resp struct {
		Token       string `json:"token"`
		AccessToken string `json:"access_token"`
		Role        string `json:"role"`
		User        *struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return auth.LoginResult{}, errors.Wrap(err, "decoding login response")
	}

	res := auth.LoginResult{Token: resp.Token, Role: resp.Role}
	if res.Token == "" {
		res.Token = resp.AccessToken
	}
	if res.Role == "" && resp.User != nil {
		res.Role = resp.User.Role
	}
	if res.Token == "" {
		return auth.LoginResult{}, errors.New("login response has no token")
	}
	return res, nil
}

// evaluationRow tolerates numbers sent as strings.
type evaluationRow struct {
	SubjectCode  string     `json:"subject_code"`
	SubjectTitle string     `json:"subject_title"`
	Units        flexNumber `json:"units"`
	YearLevel    flexNumber `json:"year_level"`
	Semester     flexNumber `json:"semester"`
	Grade        flexNumber `json:"grade"`
	Status       string     `json:"status"`
}

// decodeEvaluationRows accepts the rows either as the top-level array or
// under `rows`, `data` or `evaluation`.
func decodeEvaluationRows(raw json.RawMessage) ([]enrollment.Row, error) {
	raw = bytes.TrimSpace(raw)
	var list []evaluationRow

	switch {
	case len(raw) == 0:
		return nil, errors.New("empty evaluation response")
	case raw[0] == '[':
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, errors.Wrap(err, "decoding evaluation rows")
		}
	case raw[0] == '{':
		var envelope struct {
			Rows       *[]evaluationRow `json:"rows"`
			Data       *[]evaluationRow `json:"data"`
			Evaluation *[]evaluationRow `json:"evaluation"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, errors.Wrap(err, "decoding evaluation envelope")
		}
		switch {
		case envelope.Rows != nil:
			list = *envelope.Rows
		case envelope.Data != nil:
			list = *envelope.Data
		case envelope.Evaluation != nil:
			list = *envelope.Evaluation
		default:
			return nil, errors.New("evaluation response has no rows")
		}
	default:
		return nil, errors.New("unexpected evaluation response")
	}

	rows := make([]enrollment.Row, 0, len(list))
	for _, r := range list {
		if strings.TrimSpace(r.SubjectCode) == "" {
			continue
		}
		rows = append(rows, enrollment.Row{
			SubjectCode:  strings.TrimSpace(r.SubjectCode),
			SubjectTitle: strings.TrimSpace(r.SubjectTitle),
			Units:        r.Units.value(),
			YearLevel:    int(r.YearLevel.value()),
			Semester:     int(r.Semester.value()),
			Grade:        r.Grade.ptr(),
			Status:       strings.ToLower(strings.TrimSpace(r.Status)),
		})
	}
	return rows, nil
}

// flexNumber is a JSON number, numeric string, empty string or null.
type flexNumber struct {
	v     float64
	valid bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = flexNumber{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			*n = flexNumber{}
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid number %s", string(data))
	}
	*n = flexNumber{v: f, valid: true}
	return nil
}

func (n flexNumber) value() float64 { return n.v }

func (n flexNumber) ptr() *float64 {
	if !n.valid {
		return nil
	}
	v := n.v
	return &v
}

// scalarString renders a JSON string or number as a string.
func scalarString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
