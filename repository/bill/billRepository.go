package billrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"societypay/model"
	"societypay/util/database"
)

type Repo interface {
	// Get returns nil, nil when the bill does not exist.
	Get(ctx context.Context, id string) (*model.Bill, error)
	// MarkPaid is the settlement compare-and-swap: it only writes when the bill
	// is still unpaid and reports whether it did.
	MarkPaid(ctx context.Context, id string, u model.PaidUpdate) (bool, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Get(ctx context.Context, id string) (*model.Bill, error) {
	const q = `
SELECT id, member_id, member_email, amount, late_fee, status, due_date, paid_date,
       COALESCE(payment_method, ''), COALESCE(receipt_number, ''), COALESCE(transaction_id, ''),
       gateway_details
FROM bills
WHERE id = $1`
	var (
		b  model.Bill
		gd []byte
	)
	err := r.db.Conn(ctx).QueryRow(ctx, q, id).Scan(
		&b.ID, &b.MemberID, &b.MemberEmail, &b.Amount, &b.LateFee, &b.Status, &b.DueDate, &b.PaidDate,
		&b.PaymentMethod, &b.ReceiptNumber, &b.TransactionID, &gd,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(gd) > 0 {
		b.GatewayDetails = &model.GatewayDetails{}
		if err := json.Unmarshal(gd, b.GatewayDetails); err != nil {
			return nil, fmt.Errorf("bill %s gateway_details: %w", id, err)
		}
	}
	return &b, nil
}

func (r *repo) MarkPaid(ctx context.Context, id string, u model.PaidUpdate) (bool, error) {
	gd, err := json.Marshal(u.GatewayDetails)
	if err != nil {
		return false, err
	}
	const q = `
UPDATE bills
SET status = 'paid',
    paid_date = $2,
    payment_method = $3,
    receipt_number = $4,
    transaction_id = $5,
    gateway_details = $6
WHERE id = $1
  AND status <> 'paid'`
	tag, err := r.db.Conn(ctx).Exec(ctx, q, id, u.PaidDate, u.PaymentMethod, u.ReceiptNumber, u.TransactionID, gd)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
