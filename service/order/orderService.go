package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	"societypay/model"
	billrepo "societypay/repository/bill"
	gatewayrepo "societypay/repository/gateway"
	orderrepo "societypay/repository/order"
	"societypay/util/apperr"
)

// UPI handles: ten digits, first digit 6-9.
var mobileRe = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// GenerateOrderID mints the correlation id for one payment attempt on billID.
func GenerateOrderID(billID string) (string, error) {
	return model.FormatOrderID(billID, time.Now(), 1000+rand.IntN(9000))
}

// ParseBillID is the inverse of GenerateOrderID.
func ParseBillID(orderID string) (string, error) { return model.ParseBillID(orderID) }

type CreateOrderInput struct {
	BillID         string `validate:"required"`
	MemberID       string `validate:"required"`
	CustomerMobile string `validate:"required,upimobile"`
	RedirectURL    string `validate:"omitempty,url"`
}

type Created struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

type Service interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Created, error)
}

type service struct {
	bills       billrepo.Repo
	orders      orderrepo.Repo
	gw          gatewayrepo.Repo
	v           *validator.Validate
	redirectURL string
	log         *slog.Logger
	now         func() time.Time
}

func New(bills billrepo.Repo, orders orderrepo.Repo, gw gatewayrepo.Repo, redirectURL string, log *slog.Logger) Service {
	return &service{
		bills:       bills,
		orders:      orders,
		gw:          gw,
		v:           NewValidator(),
		redirectURL: redirectURL,
		log:         log,
		now:         time.Now,
	}
}

// NewValidator returns a validator that knows the upimobile tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("upimobile", func(fl validator.FieldLevel) bool {
		return mobileRe.MatchString(fl.Field().String())
	})
	return v
}

func (s *service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Created, error) {
	if in.RedirectURL == "" {
		in.RedirectURL = s.redirectURL
	}
	if err := s.v.Struct(in); err != nil {
		return nil, apperr.Wrap(apperr.ErrValidation, err, "create order input")
	}

	bill, err := s.bills.Get(ctx, in.BillID)
	if err != nil {
		return nil, fmt.Errorf("load bill %s: %w", in.BillID, err)
	}
	if bill == nil {
		return nil, apperr.Newf(apperr.ErrBillNotFound, "bill %s", in.BillID)
	}
	if bill.MemberID != in.MemberID {
		// do not reveal other members' bills
		return nil, apperr.Newf(apperr.ErrBillNotFound, "bill %s", in.BillID)
	}
	if bill.IsPaid() {
		return nil, apperr.Newf(apperr.ErrValidation, "bill %s is already paid", in.BillID)
	}
	amount := bill.TotalDue()
	if !amount.IsPositive() {
		return nil, apperr.Newf(apperr.ErrValidation, "bill %s amount %s must be positive", in.BillID, amount)
	}

	orderID, err := GenerateOrderID(bill.ID)
	if err != nil {
		return nil, err
	}

	resp, err := s.gw.CreateOrder(ctx, gatewayrepo.CreateOrderReq{
		OrderID:        orderID,
		Amount:         amount,
		CustomerMobile: in.CustomerMobile,
		RedirectURL:    in.RedirectURL,
		Remark1:        bill.ID,
		Remark2:        bill.MemberID,
	})
	if err != nil {
		s.log.Error("gateway create order failed", "order_id", orderID, "bill_id", bill.ID, "err", err)
		return nil, err
	}

	err = s.orders.Insert(ctx, model.Order{
		OrderID:        orderID,
		BillID:         bill.ID,
		MemberID:       bill.MemberID,
		Amount:         amount,
		CustomerMobile: in.CustomerMobile,
		RedirectURL:    in.RedirectURL,
		PaymentURL:     resp.PaymentURL,
		Status:         model.OrderCreated,
		CreatedAt:      s.now().UTC(),
	})
	if err != nil {
		// no payment URL is handed out for an order the sweep cannot see
		s.log.Error("record order failed", "order_id", orderID, "err", err)
		return nil, fmt.Errorf("record order %s: %w", orderID, err)
	}

	s.log.Info("order created", "order_id", orderID, "bill_id", bill.ID, "amount", amount.String())
	return &Created{OrderID: orderID, PaymentURL: resp.PaymentURL}, nil
}
