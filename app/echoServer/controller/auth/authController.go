package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"societypay/app/echoServer/controller"
	"societypay/model"
	authsvc "societypay/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	Log *slog.Logger
}

// POST /auth/login
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}

	m, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return controller.Fail(c, ct.Log, "login", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login success",
		"token":   token,
		"member":  m,
	})
}
