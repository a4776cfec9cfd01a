package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettledEvent is published once per successful settlement.
type SettledEvent struct {
	EventType     string          `json:"event_type"`
	BillID        string          `json:"bill_id"`
	OrderID       string          `json:"order_id"`
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number"`
	TransactionID string          `json:"transaction_id"`
	PaidAt        time.Time       `json:"paid_at"`
}
