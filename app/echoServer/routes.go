package echoServer

import (
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"societypay/app/echoServer/controller/auth"
	"societypay/app/echoServer/controller/ledger"
	"societypay/app/echoServer/controller/order"
	"societypay/app/echoServer/controller/payment"
	"societypay/app/echoServer/jwtx"
)

type C struct {
	Auth      *auth.Controller
	Order     *order.Controller
	Payment   *payment.Controller
	Ledger    *ledger.Controller
	JWTSecret string
	Log       *slog.Logger
}

func Register(e *echo.Echo, c C) {
	// Public
	e.POST("/auth/login", c.Auth.Login)
	e.POST("/webhook", c.Payment.Webhook)

	// Member
	member := e.Group("")
	member.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	}))
	member.Use(memberAuth(c.Log))

	member.POST("/orders", c.Order.Create)
	member.POST("/check-status", c.Payment.CheckStatus)
	member.GET("/ledger", c.Ledger.List)
}

func memberAuth(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, email, err := jwtx.Claims(c)
			if err != nil {
				log.Warn("auth rejected", "err", err,
					"req_id", c.Response().Header().Get(echo.HeaderXRequestID), "ip", c.RealIP())
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			jwtx.Bind(c, id, email)
			return next(c)
		}
	}
}
