package order

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"societypay/app/echoServer/controller"
	"societypay/app/echoServer/jwtx"
	ordersvc "societypay/service/order"
)

type Controller struct {
	Svc ordersvc.Service
	Log *slog.Logger
}

// POST /orders
func (h *Controller) Create(c echo.Context) error {
	var req CreateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	memberID := jwtx.MemberID(c)

	out, err := h.Svc.CreateOrder(c.Request().Context(), ordersvc.CreateOrderInput{
		BillID:         req.BillID,
		MemberID:       memberID,
		CustomerMobile: req.CustomerMobile,
		RedirectURL:    req.RedirectURL,
	})
	if err != nil {
		return controller.Fail(c, h.Log, "create order", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"orderId":    out.OrderID,
		"paymentUrl": out.PaymentURL,
	})
}
