// model/order.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCreated OrderStatus = "created"
	OrderClosed  OrderStatus = "closed"
	OrderExpired OrderStatus = "expired"
)

// Order is one payment attempt for a bill.
type Order struct {
	OrderID        string          `json:"order_id"`
	BillID         string          `json:"bill_id"`
	MemberID       string          `json:"member_id"`
	Amount         decimal.Decimal `json:"amount"`
	CustomerMobile string          `json:"customer_mobile"`
	RedirectURL    string          `json:"redirect_url"`
	PaymentURL     string          `json:"payment_url"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
