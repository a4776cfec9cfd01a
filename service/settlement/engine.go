// Package settlement is the single writer of bill settlement state.
//
// Settle is called from the webhook, the status-check relay and the stale-order
// sweep, in any order and any number of times. The conditional write in
// billrepo.Repo.MarkPaid is the only synchronization point between them: the
// caller that wins it appends the ledger entry, every other caller observes
// Noop and writes nothing.
package settlement

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"societypay/model"
	billrepo "societypay/repository/bill"
	"societypay/repository/cache"
	"societypay/repository/events"
	ledgerrepo "societypay/repository/ledger"
	memberrepo "societypay/repository/member"
	"societypay/util/apperr"
)

type Outcome int

const (
	NotCompleted Outcome = iota
	Settled
	Noop
)

func (o Outcome) String() string {
	switch o {
	case Settled:
		return "settled"
	case Noop:
		return "noop"
	default:
		return "not_completed"
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "settled":
		*o = Settled
	case "noop":
		*o = Noop
	case "not_completed":
		*o = NotCompleted
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Transactor runs fn in one unit of work; repositories reached via ctx join it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// amounts closer than this are treated as equal
var mismatchTolerance = decimal.New(1, -3)

type Engine struct {
	tx      Transactor
	bills   billrepo.Repo
	members memberrepo.Repo
	ledger  ledgerrepo.Repo
	cache   cache.LedgerCache
	pub     events.Publisher
	log     *slog.Logger
	now     func() time.Time
}

type Option func(*Engine)

func WithCache(c cache.LedgerCache) Option    { return func(e *Engine) { e.cache = c } }
func WithPublisher(p events.Publisher) Option { return func(e *Engine) { e.pub = p } }
func WithClock(now func() time.Time) Option   { return func(e *Engine) { e.now = now } }

func New(tx Transactor, bills billrepo.Repo, members memberrepo.Repo, ledger ledgerrepo.Repo, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		tx:      tx,
		bills:   bills,
		members: members,
		ledger:  ledger,
		cache:   cache.Noop(),
		pub:     events.Noop(),
		log:     log,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Settle moves the bill named by r.OrderID to paid and appends its ledger
// entry, at most once however often it is called.
func (e *Engine) Settle(ctx context.Context, r model.PaymentResult) (Outcome, error) {
	billID, err := model.ParseBillID(r.OrderID)
	if err != nil {
		return NotCompleted, err
	}
	log := e.log.With("order_id", r.OrderID, "bill_id", billID)

	bill, err := e.bills.Get(ctx, billID)
	if err != nil {
		return NotCompleted, fmt.Errorf("load bill %s: %w", billID, err)
	}
	if bill == nil {
		return NotCompleted, apperr.Newf(apperr.ErrBillNotFound, "bill %s", billID)
	}
	if bill.IsPaid() {
		log.Debug("bill already paid")
		return Noop, nil
	}
	if r.Status != model.PaymentSuccess {
		log.Debug("payment not completed", "status", r.Status, "raw_status", r.RawStatus)
		return NotCompleted, nil
	}

	now := e.now().UTC()
	amount := r.Amount
	mismatch := false
	if amount.IsZero() {
		amount = bill.TotalDue()
	} else if amount.Sub(bill.TotalDue()).Abs().GreaterThan(mismatchTolerance) {
		// TODO: decide with the committee whether short payments should be held for review instead of settled.
		mismatch = true
		log.Warn("settled amount differs from bill", "bill_amount", bill.TotalDue().String(), "paid_amount", amount.String())
	}

	details := model.GatewayDetails{
		OrderID:        r.OrderID,
		RawStatus:      r.RawStatus,
		Amount:         amount,
		TransactionID:  r.TransactionID,
		ProcessedAt:    now,
		AmountMismatch: mismatch,
	}
	upd := model.PaidUpdate{
		PaidDate:       now,
		PaymentMethod:  model.PaymentMethodUPI,
		ReceiptNumber:  newReceipt(now),
		TransactionID:  r.TransactionID,
		GatewayDetails: details,
	}

	var (
		won    bool
		member *model.Member
	)
	err = e.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		won, err = e.bills.MarkPaid(ctx, billID, upd)
		if err != nil {
			return fmt.Errorf("mark bill %s paid: %w", billID, err)
		}
		if !won {
			return nil
		}

		member, err = e.members.ByEmail(ctx, bill.MemberEmail)
		if err != nil {
			return fmt.Errorf("load member %s: %w", bill.MemberEmail, err)
		}
		if member == nil {
			return apperr.Newf(apperr.ErrMemberNotFound, "member %s", bill.MemberEmail)
		}

		appended, err := e.ledger.AppendIfAbsent(ctx, model.LedgerEntry{
			ID:             newLedgerID(now),
			MemberID:       member.ID,
			BillID:         billID,
			OrderID:        r.OrderID,
			Amount:         amount,
			Method:         model.PaymentMethodUPI,
			Mode:           model.LedgerModeOnline,
			Date:           now,
			ReceiptNumber:  upd.ReceiptNumber,
			TransactionID:  r.TransactionID,
			Status:         model.LedgerStatusComplete,
			GatewayDetails: details,
		})
		if err != nil {
			return fmt.Errorf("append ledger for %s: %w", r.OrderID, err)
		}
		if !appended {
			log.Warn("ledger entry already present for order")
		}
		return nil
	})
	if err != nil {
		return NotCompleted, err
	}
	if !won {
		log.Info("lost settlement race")
		return Noop, nil
	}

	log.Info("bill settled", "receipt", upd.ReceiptNumber, "amount", amount.String(), "txn", r.TransactionID)
	e.afterSettle(ctx, log, member.ID, model.SettledEvent{
		BillID:        billID,
		OrderID:       r.OrderID,
		MemberID:      member.ID,
		Amount:        amount,
		ReceiptNumber: upd.ReceiptNumber,
		TransactionID: r.TransactionID,
		PaidAt:        now,
	})
	return Settled, nil
}

// afterSettle runs post-commit side effects; none of them may fail a settlement.
func (e *Engine) afterSettle(ctx context.Context, log *slog.Logger, memberID string, ev model.SettledEvent) {
	if err := e.cache.Invalidate(ctx, memberID); err != nil {
		log.Warn("ledger cache invalidate failed", "member_id", memberID, "err", err)
	}
	if err := e.pub.PublishSettled(ctx, ev); err != nil {
		log.Warn("publish settled event failed", "err", err)
	}
}

func newReceipt(at time.Time) string {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	return "RCPT-" + at.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b))
}

func newLedgerID(at time.Time) string {
	return "TXN_" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
