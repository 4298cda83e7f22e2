package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/admission"
	"github.com/tclass/web/core/session"
	metricsvc "github.com/tclass/web/services/metrics"
)

var formTitles = map[admission.Variant]string{
	admission.VariantAdmission:  "Admission form",
	admission.VariantVocational: "Vocational enrollment form",
}

type formPage struct {
	admission.Snapshot
	Vocational   bool
	ValidIDTypes []string
	Purposes     []string
}

// fieldEdit is one field change; list fields send every selected value.
type fieldEdit struct {
	Field  string   `json:"field" form:"field"`
	Value  string   `json:"value" form:"value"`
	Values []string `json:"values" form:"values"`
}

func (fe fieldEdit) values() []string {
	if len(fe.Values) > 0 {
		return fe.Values
	}
	return []string{fe.Value}
}

type formHandlers struct {
	forms     *admission.Registry
	metrics   *metricsvc.Metrics
	uploadMax int64
	secure    bool
}

func registerFormRoutes(app *echo.Echo, deps ServerDeps) {
	h := formHandlers{
		forms:     deps.Forms,
		metrics:   deps.Metrics,
		uploadMax: deps.Conf.UploadMaxBytes,
		secure:    deps.Conf.Session.SecureCookies,
	}

	for _, v := range []admission.Variant{admission.VariantAdmission, admission.VariantVocational} {
		g := app.Group("/"+string(v), variantMiddleware(v))
		g.GET("", h.mount)
		g.GET("/state", h.state)
		g.POST("/fields", h.edit)
		g.POST("/attachments/:slot", h.attach)
		g.DELETE("/attachments/:slot", h.detach)
		g.POST("/reset", h.reset)
		g.POST("/submit", h.submit, withFallback(admission.MsgSubmitFailed))
	}
}

const variantKey = "formVariant"

func variantMiddleware(v admission.Variant) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(variantKey, v)
			return next(ctx)
		}
	}
}

func (h *formHandlers) engine(ctx echo.Context) (*admission.Engine, error) {
	v, ok := ctx.Get(variantKey).(admission.Variant)
	if !ok {
		return nil, errUnknownForm
	}
	owner := draftOwner(ctx, h.secure)
	e := h.forms.Get(ctx.Request().Context(), v, owner)
	h.metrics.LiveEngines.Set(float64(h.forms.Len()))
	return e, nil
}

// Handlers

// mount is a page load: the engine is rebuilt from the persisted draft.
func (h *formHandlers) mount(ctx echo.Context) error {
	v, ok := ctx.Get(variantKey).(admission.Variant)
	if !ok {
		return errUnknownForm
	}
	e := h.forms.Mount(ctx.Request().Context(), v, draftOwner(ctx, h.secure))
	h.metrics.LiveEngines.Set(float64(h.forms.Len()))

	snap := e.Snapshot()
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, snap)
	}
	return render(ctx, http.StatusOK, "form", formTitles[v], formPage{
		Snapshot:     snap,
		Vocational:   v == admission.VariantVocational,
		ValidIDTypes: admission.ValidIDTypes,
		Purposes:     admission.EnrollmentPurposes,
	})
}

func (h *formHandlers) state(ctx echo.Context) error {
	e, err := h.engine(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e.Snapshot())
}

func (h *formHandlers) edit(ctx echo.Context) error {
	var fe fieldEdit
	if err := ctx.Bind(&fe); err != nil {
		return errors.Wrap(err, "binding to fieldEdit")
	}
	if params, err := ctx.FormParams(); err == nil && len(params["value"]) > 1 {
		fe.Values = params["value"]
	}

	e, err := h.engine(ctx)
	if err != nil {
		return err
	}
	if err := e.Edit(ctx.Request().Context(), fe.Field, fe.values()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e.Snapshot())
}

func (h *formHandlers) attach(ctx echo.Context) error {
	slot, ok := admission.ParseSlot(ctx.Param("slot"))
	if !ok {
		return errUnknownSlot
	}
	fh, err := ctx.FormFile("file")
	if err != nil {
		return errMissingFile
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	at, err := admission.NewAttachment(slot, fh.Filename, f, h.uploadMax)
	if err != nil {
		return err
	}

	e, err := h.engine(ctx)
	if err != nil {
		return err
	}
	if err := e.Attach(at); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e.Snapshot())
}

func (h *formHandlers) detach(ctx echo.Context) error {
	slot, ok := admission.ParseSlot(ctx.Param("slot"))
	if !ok {
		return errUnknownSlot
	}
	e, err := h.engine(ctx)
	if err != nil {
		return err
	}
	e.Detach(slot)
	return ctx.JSON(http.StatusOK, e.Snapshot())
}

func (h *formHandlers) reset(ctx echo.Context) error {
	e, err := h.engine(ctx)
	if err != nil {
		return err
	}
	e.Reset()
	return ctx.JSON(http.StatusOK, e.Snapshot())
}

func (h *formHandlers) submit(ctx echo.Context) error {
	e, err := h.engine(ctx)
	if err != nil {
		return err
	}
	sess := session.FromRequest(ctx.Request())

	res, err := e.Submit(ctx.Request().Context(), sess.Token())
	if err != nil {
		h.metrics.Submissions.WithLabelValues(string(e.Variant()), submitOutcome(err)).Inc()
		return err
	}
	h.metrics.Submissions.WithLabelValues(string(e.Variant()), "ok").Inc()
	return ctx.JSON(http.StatusOK, res)
}

func submitOutcome(err error) string {
	cause := errors.Cause(err)
	switch cause.(type) {
	case *core.ValidationError:
		return "invalid"
	}
	if cause == admission.ErrSubmitInFlight {
		return "in_flight"
	}
	return "failed"
}
