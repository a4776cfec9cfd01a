package orderrepo

import (
	"context"
	"time"

	"societypay/model"
	"societypay/util/database"
)

type Repo interface {
	Insert(ctx context.Context, o model.Order) error
	// ListOpen returns orders still awaiting confirmation created after since.
	ListOpen(ctx context.Context, since time.Time, limit int) ([]model.Order, error)
	MarkClosed(ctx context.Context, orderID string) error
	// ExpireBefore flags open orders older than before and returns how many.
	ExpireBefore(ctx context.Context, before time.Time) (int64, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, o model.Order) error {
	const q = `
INSERT INTO payment_orders (order_id, bill_id, member_id, amount, customer_mobile, redirect_url, payment_url, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.db.Conn(ctx).Exec(ctx, q,
		o.OrderID, o.BillID, o.MemberID, o.Amount, o.CustomerMobile, o.RedirectURL, o.PaymentURL, o.Status, o.CreatedAt)
	return err
}

func (r *repo) ListOpen(ctx context.Context, since time.Time, limit int) ([]model.Order, error) {
	const q = `
SELECT order_id, bill_id, member_id, amount, customer_mobile, redirect_url, payment_url, status, created_at
FROM payment_orders
WHERE status = 'created'
  AND created_at >= $1
ORDER BY created_at
LIMIT $2`
	rows, err := r.db.Conn(ctx).Query(ctx, q, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.OrderID, &o.BillID, &o.MemberID, &o.Amount, &o.CustomerMobile,
			&o.RedirectURL, &o.PaymentURL, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repo) MarkClosed(ctx context.Context, orderID string) error {
	const q = `UPDATE payment_orders SET status = 'closed' WHERE order_id = $1 AND status = 'created'`
	_, err := r.db.Conn(ctx).Exec(ctx, q, orderID)
	return err
}

func (r *repo) ExpireBefore(ctx context.Context, before time.Time) (int64, error) {
	const q = `UPDATE payment_orders SET status = 'expired' WHERE status = 'created' AND created_at < $1`
	tag, err := r.db.Conn(ctx).Exec(ctx, q, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
