package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	memberjwt "societypay/util/jwt"
)

const (
	ctxMemberID    = "member_id"
	ctxMemberEmail = "member_email"
)

// Claims reads the member identity from the token echo-jwt stored under "user".
func Claims(c echo.Context) (memberID, email string, err error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", "", errors.New("no jwt token in context")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid jwt claims")
	}
	return memberjwt.Member(claims)
}

// Bind copies the member identity onto the echo context.
func Bind(c echo.Context, memberID, email string) {
	c.Set(ctxMemberID, memberID)
	c.Set(ctxMemberEmail, email)
}

func MemberID(c echo.Context) string {
	id, _ := c.Get(ctxMemberID).(string)
	return id
}

func MemberEmail(c echo.Context) string {
	e, _ := c.Get(ctxMemberEmail).(string)
	return e
}
