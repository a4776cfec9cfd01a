package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimSubject = "sub"
	ClaimEmail   = "email"
)

// Issue signs a member token. Tokens are minted by the auth service in
// production; this is used by tests and local tooling.
func Issue(secret, memberID, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		ClaimSubject: memberID,
		ClaimEmail:   email,
		"exp":        time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Member reads the member identity out of verified claims.
func Member(claims jwt.MapClaims) (memberID, email string, err error) {
	memberID, _ = claims[ClaimSubject].(string)
	if memberID == "" {
		return "", "", errors.New("sub missing in claims")
	}
	email, _ = claims[ClaimEmail].(string)
	return memberID, email, nil
}
