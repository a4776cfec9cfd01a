// model/payment.go
package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentPending PaymentStatus = "PENDING"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentResult is the canonical shape of any gateway answer, whichever
// channel it arrived on.
type PaymentResult struct {
	OrderID       string          `json:"order_id"`
	BillID        string          `json:"bill_id"`
	Status        PaymentStatus   `json:"status"`
	RawStatus     string          `json:"raw_status"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	RawPayload    json.RawMessage `json:"raw_payload,omitempty"`
}
