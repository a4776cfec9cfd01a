package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	orderrepo "societypay/repository/order"
	"societypay/service/settlement"
)

const (
	defaultBatch = 200
	runTimeout   = 90 * time.Second
)

// Checker is satisfied by the payment service's status-check relay.
type Checker interface {
	Check(ctx context.Context, orderID string) (settlement.Outcome, error)
}

type Report struct {
	Checked int   `json:"checked"`
	Closed  int   `json:"closed"`
	Failed  int   `json:"failed"`
	Expired int64 `json:"expired"`
}

// Sweeper reconciles orders whose webhook never arrived.
type Sweeper interface {
	Sweep(ctx context.Context) (Report, error)
}

type sweeper struct {
	orders  orderrepo.Repo
	checker Checker
	maxAge  time.Duration
	batch   int
	now     func() time.Time
	log     *slog.Logger
}

func New(orders orderrepo.Repo, checker Checker, maxAge time.Duration, log *slog.Logger) Sweeper {
	return &sweeper{orders: orders, checker: checker, maxAge: maxAge, batch: defaultBatch, now: time.Now, log: log}
}

// Sweep checks open orders younger than maxAge, closes the ones whose bill is
// paid and expires everything older.
func (s *sweeper) Sweep(ctx context.Context) (Report, error) {
	var rep Report
	cutoff := s.now().UTC().Add(-s.maxAge)

	open, err := s.orders.ListOpen(ctx, cutoff, s.batch)
	if err != nil {
		return rep, fmt.Errorf("list open orders: %w", err)
	}
	for _, o := range open {
		if ctx.Err() != nil {
			break
		}
		rep.Checked++
		out, err := s.checker.Check(ctx, o.OrderID)
		if err != nil {
			rep.Failed++
			s.log.Warn("sweep check failed", "order_id", o.OrderID, "err", err)
			continue
		}
		if out == settlement.NotCompleted {
			continue
		}
		if err := s.orders.MarkClosed(ctx, o.OrderID); err != nil {
			rep.Failed++
			s.log.Warn("close order failed", "order_id", o.OrderID, "err", err)
			continue
		}
		rep.Closed++
	}

	rep.Expired, err = s.orders.ExpireBefore(ctx, cutoff)
	if err != nil {
		return rep, fmt.Errorf("expire orders: %w", err)
	}
	return rep, nil
}

// NewCron returns a scheduler that never overlaps two runs of the same job.
func NewCron(log *slog.Logger) *cron.Cron {
	l := cronLogger{log}
	return cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
}

// Schedule registers s on c under the standard five-field spec.
func Schedule(c *cron.Cron, spec string, s Sweeper, log *slog.Logger) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		start := time.Now()
		rep, err := s.Sweep(ctx)
		if err != nil {
			log.Error("order sweep failed", "err", err)
			return
		}
		log.Info("order sweep done",
			"checked", rep.Checked, "closed", rep.Closed, "failed", rep.Failed,
			"expired", rep.Expired, "latency_ms", time.Since(start).Milliseconds())
	})
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) { c.l.Debug("cron: "+msg, kv...) }
func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error("cron: "+msg, append(kv, "err", err)...)
}
