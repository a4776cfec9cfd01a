// Package apperr carries the error codes shared by the gateway, settlement and
// HTTP layers.
package apperr

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	ErrValidation          ErrCode = "VALIDATION"
	ErrMalformedGateway    ErrCode = "MALFORMED_GATEWAY_RESPONSE"
	ErrGatewayUnavailable  ErrCode = "GATEWAY_UNAVAILABLE"
	ErrGatewayRejected     ErrCode = "GATEWAY_REJECTED"
	ErrInvalidOrderFormat  ErrCode = "INVALID_ORDER_FORMAT"
	ErrBillNotFound        ErrCode = "BILL_NOT_FOUND"
	ErrMemberNotFound      ErrCode = "MEMBER_NOT_FOUND"
	ErrBadPayload          ErrCode = "BAD_PAYLOAD"
	ErrUnauthorizedWebhook ErrCode = "UNAUTHORIZED_WEBHOOK"
	ErrInvalidCredentials  ErrCode = "INVALID_CREDENTIALS"
)

type codedError struct {
	code ErrCode
	msg  string
	err  error
}

func (e *codedError) Error() string {
	switch {
	case e.msg == "" && e.err == nil:
		return string(e.code)
	case e.err == nil:
		return string(e.code) + ": " + e.msg
	case e.msg == "":
		return string(e.code) + ": " + e.err.Error()
	}
	return fmt.Sprintf("%s: %s: %v", e.code, e.msg, e.err)
}

func (e *codedError) Code() ErrCode { return e.code }
func (e *codedError) Unwrap() error { return e.err }

func New(c ErrCode, msg string) error { return &codedError{code: c, msg: msg} }

func Newf(c ErrCode, format string, args ...any) error {
	return &codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to err. A nil err still yields a coded error.
func Wrap(c ErrCode, err error, msg string) error {
	return &codedError{code: c, msg: msg, err: err}
}

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Is reports whether err carries code c.
func Is(err error, c ErrCode) bool { return err != nil && Code(err) == c }
