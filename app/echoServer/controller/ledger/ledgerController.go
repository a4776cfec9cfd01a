package ledger

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"societypay/app/echoServer/controller"
	"societypay/app/echoServer/jwtx"
	paymentsvc "societypay/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// GET /ledger
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.Ledger(c.Request().Context(), jwtx.MemberID(c))
	if err != nil {
		return controller.Fail(c, h.Log, "ledger", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
