package echoweb

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core"
	"github.com/tclass/web/core/enrollment"
	"github.com/tclass/web/core/session"
	metricsvc "github.com/tclass/web/services/metrics"
)

type enlistForm struct {
	Subjects []string `json:"subjects" form:"subjects"`
}

type enrollmentHandlers struct {
	svc     *enrollment.Service
	metrics *metricsvc.Metrics
}

func registerEnrollmentRoutes(app *echo.Echo, deps ServerDeps) {
	h := enrollmentHandlers{svc: deps.EnrollmentSvc, metrics: deps.Metrics}

	// student-only, enforced by the guard
	g := app.Group("/student/enrollment")
	g.GET("", h.evaluate)
	g.POST("", h.enlist)
}

// Handlers

func (h *enrollmentHandlers) evaluate(ctx echo.Context) error {
	var year int
	if y := ctx.QueryParam("year"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || n < 0 {
			return core.NewFieldError("year", "Invalid year level.")
		}
		year = n
	}

	sess := session.FromRequest(ctx.Request())
	ev := h.svc.Evaluate(ctx.Request().Context(), sess.Token(), year)
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, ev)
	}
	return render(ctx, http.StatusOK, "enrollment", "Enrollment", ev)
}

func (h *enrollmentHandlers) enlist(ctx echo.Context) error {
	var form enlistForm
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding to enlistForm")
	}
	var codes []string
	for _, s := range form.Subjects {
		codes = append(codes, strings.Split(s, ",")...)
	}

	sess := session.FromRequest(ctx.Request())
	res, err := h.svc.Enlist(ctx.Request().Context(), sess.Token(), codes)
	if err != nil {
		return err
	}
	h.metrics.Enlistments.WithLabelValues(strconv.FormatBool(res.Confirmed)).Inc()
	return ctx.JSON(http.StatusOK, res)
}
