package echomock

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core/contact"
	"github.com/tclass/web/core/enrollment"
)

type api struct {
	users  *UserStore
	inbox  *Inbox
	tokens tokenIssuer
}

type (
	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"` // ignored, the stored role wins
	}

	assessRequest struct {
		YearLevel    int      `json:"year_level"`
		Semester     int      `json:"semester"`
		SubjectCodes []string `json:"subject_codes"`
	}
)

func unprocessable(msg string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, msg)
}

// Handlers

func (api *api) login(ctx echo.Context) error {
	var req loginRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to loginRequest")
	}
	usr, err := authenticate(api.users, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, err := api.tokens.GenerateToken(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"access_token": token, "user": usr})
}

func (api *api) submitAdmission(ctx echo.Context) error {
	form, err := ctx.MultipartForm()
	if err != nil {
		return unprocessable("Expected a multipart form.")
	}
	if strings.TrimSpace(firstValue(form.Value, "email")) == "" {
		return unprocessable("email is required")
	}

	app := Application{Fields: form.Value, Files: make(map[string]string, len(form.File))}
	for name, fhs := range form.File {
		if len(fhs) > 0 {
			app.Files[name] = fhs[0].Filename
		}
	}
	if claims, err := optionalClaims(ctx, api.tokens); err == nil {
		app.Applicant = claims.Email
	}

	app = api.inbox.addApplication(app)
	return ctx.JSON(http.StatusCreated, echo.Map{
		"message":   "Application received. Your reference number is " + app.Reference + ".",
		"reference": app.Reference,
	})
}

func (api *api) submitContact(ctx echo.Context) error {
	var m contact.Message
	if err := ctx.Bind(&m); err != nil {
		return errors.Wrap(err, "binding to contact.Message")
	}
	if strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Message) == "" {
		return unprocessable("email and message are required")
	}
	api.inbox.addContact(m)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Message received."})
}

func (api *api) evaluation(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"evaluation": sampleEvaluation()})
}

func (api *api) assess(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var req assessRequest
	if err = ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to assessRequest")
	}
	if len(req.SubjectCodes) == 0 {
		return unprocessable("subject_codes is required")
	}
	term := enrollment.Term{YearLevel: req.YearLevel, Semester: req.Semester}
	api.inbox.addEnlistment(Enlistment{Student: claims.Email, Term: term, SubjectCodes: req.SubjectCodes})
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Enlisted %d subject(s) for %s.", len(req.SubjectCodes), term),
	})
}

// sampleEvaluation is the curriculum with the whole first year passed.
func sampleEvaluation() []enrollment.Row {
	rows := enrollment.FallbackCurriculum()
	for i := range rows {
		if rows[i].YearLevel == 1 && !rows[i].Passed() {
			g := 85.0
			rows[i].Grade = &g
			rows[i].Status = enrollment.StatusPassed
		}
	}
	return rows
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
