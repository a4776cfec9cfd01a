package gatewayrepo

import (
	"context"

	"github.com/shopspring/decimal"
)

type CreateOrderReq struct {
	OrderID        string
	Amount         decimal.Decimal
	CustomerMobile string
	RedirectURL    string
	Remark1        string
	Remark2        string
}

type CreateOrderResp struct {
	OrderID    string
	PaymentURL string
	Raw        []byte
}

// Repo is the UPI gateway. Calls are single request/response with no retry.
//
//go:generate mockgen -destination=mocks/mock_repo.go -package=mocks -source=gatewayRepo.go Repo
type Repo interface {
	CreateOrder(ctx context.Context, req CreateOrderReq) (*CreateOrderResp, error)
	// CheckStatus returns the raw status body; feed it to Normalize.
	CheckStatus(ctx context.Context, orderID string) ([]byte, error)
}
