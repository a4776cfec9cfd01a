// model/ledger.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LedgerModeOnline     = "online"
	LedgerStatusComplete = "completed"
)

// LedgerEntry is immutable once written; at most one exists per OrderID.
type LedgerEntry struct {
	ID             string          `json:"id"`
	MemberID       string          `json:"member_id"`
	BillID         string          `json:"bill_id"`
	OrderID        string          `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Mode           string          `json:"mode"`
	Date           time.Time       `json:"date"`
	ReceiptNumber  string          `json:"receipt_number"`
	TransactionID  string          `json:"transaction_id"`
	Status         string          `json:"status"`
	GatewayDetails GatewayDetails  `json:"gateway_details"`
}
