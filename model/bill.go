// model/bill.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillPending BillStatus = "pending"
	BillOverdue BillStatus = "overdue"
	BillPaid    BillStatus = "paid"
)

const PaymentMethodUPI = "UPI"

type Bill struct {
	ID             string          `json:"id"`
	MemberID       string          `json:"member_id"`
	MemberEmail    string          `json:"member_email"`
	Amount         decimal.Decimal `json:"amount"`
	LateFee        decimal.Decimal `json:"late_fee"`
	Status         BillStatus      `json:"status"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	PaidDate       *time.Time      `json:"paid_date,omitempty"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	ReceiptNumber  string          `json:"receipt_number,omitempty"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	GatewayDetails *GatewayDetails `json:"gateway_details,omitempty"`
}

// TotalDue is what the member is asked to pay: amount plus any late fee.
func (b Bill) TotalDue() decimal.Decimal { return b.Amount.Add(b.LateFee) }

func (b Bill) IsPaid() bool { return b.Status == BillPaid }

// GatewayDetails is stored as JSONB on both the bill and its ledger entry.
type GatewayDetails struct {
	OrderID        string          `json:"order_id"`
	RawStatus      string          `json:"raw_status"`
	Amount         decimal.Decimal `json:"amount"`
	TransactionID  string          `json:"transaction_id"`
	ProcessedAt    time.Time       `json:"processed_at"`
	AmountMismatch bool            `json:"amount_mismatch,omitempty"`
}

// PaidUpdate is the set of fields written by the paid transition.
type PaidUpdate struct {
	PaidDate       time.Time
	PaymentMethod  string
	ReceiptNumber  string
	TransactionID  string
	GatewayDetails GatewayDetails
}
