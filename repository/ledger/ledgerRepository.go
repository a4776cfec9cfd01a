package ledgerrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"societypay/model"
	"societypay/util/database"
)

type Repo interface {
	// AppendIfAbsent writes e unless an entry for e.OrderID already exists.
	// It reports whether a row was written.
	AppendIfAbsent(ctx context.Context, e model.LedgerEntry) (bool, error)
	ListByMember(ctx context.Context, memberID string) ([]model.LedgerEntry, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db: db} }

func (r *repo) AppendIfAbsent(ctx context.Context, e model.LedgerEntry) (bool, error) {
	gd, err := json.Marshal(e.GatewayDetails)
	if err != nil {
		return false, err
	}
	const q = `
INSERT INTO ledger_entries (id, member_id, bill_id, order_id, amount, method, mode, entry_date, receipt_number, transaction_id, status, gateway_details)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (order_id) DO NOTHING`
	tag, err := r.db.Conn(ctx).Exec(ctx, q,
		e.ID, e.MemberID, e.BillID, e.OrderID, e.Amount, e.Method, e.Mode, e.Date,
		e.ReceiptNumber, e.TransactionID, e.Status, gd)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repo) ListByMember(ctx context.Context, memberID string) ([]model.LedgerEntry, error) {
	const q = `
SELECT id, member_id, bill_id, order_id, amount, method, mode, entry_date, receipt_number, transaction_id, status, gateway_details
FROM ledger_entries
WHERE member_id = $1
ORDER BY entry_date DESC, id DESC`
	rows, err := r.db.Conn(ctx).Query(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.LedgerEntry{}
	for rows.Next() {
		var (
			e  model.LedgerEntry
			gd []byte
		)
		if err := rows.Scan(&e.ID, &e.MemberID, &e.BillID, &e.OrderID, &e.Amount, &e.Method, &e.Mode,
			&e.Date, &e.ReceiptNumber, &e.TransactionID, &e.Status, &gd); err != nil {
			return nil, err
		}
		if len(gd) > 0 {
			if err := json.Unmarshal(gd, &e.GatewayDetails); err != nil {
				return nil, fmt.Errorf("ledger %s gateway_details: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
