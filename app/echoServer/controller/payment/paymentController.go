package payment

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"societypay/app/echoServer/controller"
	paymentsvc "societypay/service/payment"
)

const (
	HeaderWebhookToken = "X-Webhook-Token"
	maxWebhookBody     = 64 << 10
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// POST /webhook
func (h *Controller) Webhook(c echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}
	token := c.Request().Header.Get(HeaderWebhookToken)

	out, err := h.Svc.HandleWebhook(c.Request().Context(), token, raw)
	if err != nil {
		return controller.Fail(c, h.Log, "webhook", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok", "outcome": out})
}

// POST /check-status
func (h *Controller) CheckStatus(c echo.Context) error {
	var req CheckStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	res, err := h.Svc.CheckStatus(c.Request().Context(), req.OrderID)
	if err != nil {
		return controller.Fail(c, h.Log, "check status", err)
	}
	return c.JSON(http.StatusOK, res)
}
