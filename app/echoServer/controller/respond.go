package controller

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"societypay/util/apperr"
)

// StatusFor maps an error's code to the HTTP status and public message.
func StatusFor(err error) (int, string) {
	switch apperr.Code(err) {
	case apperr.ErrValidation:
		return http.StatusBadRequest, "validation error"
	case apperr.ErrBadPayload:
		return http.StatusBadRequest, "bad payload"
	case apperr.ErrInvalidOrderFormat:
		return http.StatusBadRequest, "invalid order id"
	case apperr.ErrUnauthorizedWebhook:
		return http.StatusUnauthorized, "unauthorized"
	case apperr.ErrInvalidCredentials:
		return http.StatusUnauthorized, "invalid email or password"
	case apperr.ErrBillNotFound:
		return http.StatusNotFound, "bill not found"
	case apperr.ErrGatewayUnavailable:
		return http.StatusBadGateway, "payment gateway unavailable"
	case apperr.ErrGatewayRejected:
		return http.StatusBadGateway, "payment gateway rejected the request"
	case apperr.ErrMalformedGateway:
		return http.StatusBadGateway, "unexpected payment gateway response"
	}
	return http.StatusInternalServerError, "internal error"
}

// Fail logs err under op and writes the mapped JSON error.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	status, msg := StatusFor(err)
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	if status >= http.StatusInternalServerError {
		log.Error(op, "err", err, "req_id", rid)
	} else {
		log.Warn(op, "err", err, "req_id", rid)
	}
	body := echo.Map{"message": msg}
	if code := apperr.Code(err); code != "" && status < http.StatusInternalServerError {
		body["code"] = code
	}
	return c.JSON(status, body)
}
