package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tclass/web/core/contact"
)

type contactHandlers struct {
	svc *contact.Service
}

func registerContactRoutes(app *echo.Echo, deps ServerDeps) {
	h := contactHandlers{svc: deps.ContactSvc}

	app.GET("/contact", page("contact", "Contact us", nil))
	app.POST("/contact", h.send, withFallback(contact.MsgSendFailed))
}

func (h *contactHandlers) send(ctx echo.Context) error {
	var m contact.Message
	if err := ctx.Bind(&m); err != nil {
		return errors.Wrap(err, "binding to contact.Message")
	}
	if err := h.svc.Send(ctx.Request().Context(), m); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": contact.MsgSent})
}
