package enrollment

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/tclass/web/core"
)

const (
	MsgFallbackCurriculum = "Your evaluation could not be loaded. Showing the standard curriculum instead."
	MsgEnlisted           = "Your subjects were submitted for assessment."
	MsgEnlistedLocally    = "Your subjects were pre-enlisted, but the registrar could not confirm them yet."
	MsgNoSubjects         = "Please select at least one subject."
)

type (
	// EnlistRequest is the commit sent to the backend for assessment.
	EnlistRequest struct {
		Term         Term     `json:"term"`
		SubjectCodes []string `json:"subject_codes"`
	}

	// EnlistReceipt is the backend's answer to an EnlistRequest.
	EnlistReceipt struct {
		Message string `json:"message"`
	}

	Backend interface {
		StudentEvaluation(ctx context.Context, token string) ([]Row, error)
		AssessEnrollment(ctx context.Context, token string, req EnlistRequest) (EnlistReceipt, error)
	}

	// Evaluation is everything the enrollment page shows.
	Evaluation struct {
		Rows       []Row      `json:"rows"`
		Assessment Assessment `json:"assessment"`
		Available  []Row      `json:"available"`
		Fallback   bool       `json:"fallback"`
		Notice     string     `json:"notice,omitempty"`
	}

	// EnlistResult lists the subjects shown as enrolled. Confirmed is false when
	// the backend could not record them.
	EnlistResult struct {
		Term      Term    `json:"term"`
		Enrolled  []Row   `json:"enrolled"`
		Units     float64 `json:"units"`
		Confirmed bool    `json:"confirmed"`
		Message   string  `json:"message"`
	}
)

type Service struct {
	backend Backend
	logger  core.Logger
}

func NewService(backend Backend, logger core.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// Evaluate loads the student's rows and the recommendation computed from them.
// When the backend has nothing usable the fallback curriculum is used.
func (svc *Service) Evaluate(ctx context.Context, token string, yearFilter int) Evaluation {
	ev := Evaluation{}
	rows, err := svc.backend.StudentEvaluation(ctx, token)
	if err != nil || len(rows) == 0 {
		if err != nil {
			svc.logger.Warn("loading student evaluation", err)
		}
		rows = FallbackCurriculum()
		ev.Fallback = true
		ev.Notice = MsgFallbackCurriculum
	}

	ev.Rows = rows
	ev.Assessment, _ = Assess(rows)
	ev.Available = AvailableSubjects(rows, ev.Assessment.Target, yearFilter)
	return ev
}

// Enlist commits the selected subject codes. A failed commit still returns the
// selection as enrolled, unconfirmed.
func (svc *Service) Enlist(ctx context.Context, token string, codes []string) (EnlistResult, error) {
	ev := svc.Evaluate(ctx, token, 0)

	avail := make(map[string]Row, len(ev.Available))
	for _, r := range ev.Available {
		avail[strings.ToUpper(r.SubjectCode)] = r
	}

	var (
		selected []Row
		seen     = make(map[string]bool)
	)
	for _, code := range codes {
		code = strings.ToUpper(core.CleanString(code))
		if code == "" || seen[code] {
			continue
		}
		r, ok := avail[code]
		if !ok {
			return EnlistResult{}, core.NewFieldError("subjects", code+" is not available for enlistment this term.")
		}
		seen[code] = true
		selected = append(selected, r)
	}
	if len(selected) == 0 {
		return EnlistResult{}, core.NewFieldError("subjects", MsgNoSubjects)
	}

	req := EnlistRequest{Term: ev.Assessment.Target, SubjectCodes: make([]string, 0, len(selected))}
	for _, r := range selected {
		req.SubjectCodes = append(req.SubjectCodes, r.SubjectCode)
	}

	res := EnlistResult{Term: req.Term, Enrolled: selected, Units: TotalUnits(selected)}
	receipt, err := svc.backend.AssessEnrollment(ctx, token, req)
	if err != nil {
		svc.logger.Warn("committing enlistment", errors.Wrap(err, "assessing enrollment"))
		res.Message = MsgEnlistedLocally
		return res, nil
	}
	res.Confirmed = true
	res.Message = receipt.Message
	if res.Message == "" {
		res.Message = MsgEnlisted
	}
	return res, nil
}
