package model

import (
	"strconv"
	"strings"
	"time"

	"societypay/util/apperr"
)

const (
	OrderIDPrefix    = "BILL"
	OrderIDDelimiter = "_"
)

// FormatOrderID builds BILL_<billID>_<unixMillis>_<salt>. The bill id must not
// contain the delimiter, otherwise ParseBillID could not recover it.
func FormatOrderID(billID string, at time.Time, salt int) (string, error) {
	if billID == "" {
		return "", apperr.New(apperr.ErrValidation, "bill id is empty")
	}
	if strings.Contains(billID, OrderIDDelimiter) {
		return "", apperr.Newf(apperr.ErrValidation, "bill id %q contains %q", billID, OrderIDDelimiter)
	}
	return strings.Join([]string{
		OrderIDPrefix,
		billID,
		strconv.FormatInt(at.UnixMilli(), 10),
		strconv.Itoa(salt),
	}, OrderIDDelimiter), nil
}

// ParseBillID recovers the bill id from an order id. Only the prefix and the
// bill segment are checked; the remaining segments are salt.
func ParseBillID(orderID string) (string, error) {
	parts := strings.SplitN(orderID, OrderIDDelimiter, 3)
	if len(parts) < 2 || parts[0] != OrderIDPrefix || parts[1] == "" {
		return "", apperr.Newf(apperr.ErrInvalidOrderFormat, "order id %q", orderID)
	}
	return parts[1], nil
}
