// Package poller drives the client-side wait for a payment to be confirmed.
//
// A Poller asks its Checker about one order on every tick until the bill is
// paid, the deadline passes or the caller cancels. It never writes anything
// itself: every mutation happens inside the Checker's settlement call, so a
// timed-out or cancelled poll leaves the bill exactly as the gateway left it.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"societypay/service/settlement"
)

const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 5 * time.Minute
)

type State int32

const (
	Idle State = iota
	Polling
	Settled
	TimedOut
	Cancelled
)

func (s State) String() string {
	switch s {
	case Polling:
		return "polling"
	case Settled:
		return "settled"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s == Settled || s == TimedOut || s == Cancelled }

var (
	ErrTimedOut   = errors.New("payment not confirmed before deadline")
	ErrCancelled  = errors.New("polling cancelled")
	ErrAlreadyRun = errors.New("poller already started")
)

// Checker reports what the gateway says about an order, settling it if paid.
type Checker interface {
	Check(ctx context.Context, orderID string) (settlement.Outcome, error)
}

type Poller struct {
	checker  Checker
	interval time.Duration
	timeout  time.Duration
	clock    clockwork.Clock
	log      *slog.Logger

	state   atomic.Int32
	started atomic.Bool
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option { return func(p *Poller) { p.interval = d } }
func WithTimeout(d time.Duration) Option  { return func(p *Poller) { p.timeout = d } }
func WithClock(c clockwork.Clock) Option  { return func(p *Poller) { p.clock = c } }
func WithLogger(l *slog.Logger) Option    { return func(p *Poller) { p.log = l } }

func New(checker Checker, opts ...Option) *Poller {
	p := &Poller{
		checker:  checker,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		clock:    clockwork.NewRealClock(),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// State is safe to call while Run is in progress.
func (p *Poller) State() State { return State(p.state.Load()) }

// Run polls orderID until it reaches a terminal state. Settled returns a nil
// error; TimedOut and Cancelled return ErrTimedOut and ErrCancelled. A check
// already in flight when ctx is cancelled runs to completion.
func (p *Poller) Run(ctx context.Context, orderID string) (State, error) {
	if !p.started.CompareAndSwap(false, true) {
		return p.State(), ErrAlreadyRun
	}
	log := p.log.With("order_id", orderID)
	p.set(Polling)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()
	deadline := p.clock.NewTimer(p.timeout)
	defer deadline.Stop()

	checkCtx := context.WithoutCancel(ctx)
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			log.Info("polling cancelled", "attempts", attempt)
			return p.set(Cancelled), ErrCancelled
		case <-deadline.Chan():
			log.Info("polling timed out", "attempts", attempt, "timeout", p.timeout.String())
			return p.set(TimedOut), ErrTimedOut
		case <-ticker.Chan():
			if ctx.Err() != nil {
				log.Info("polling cancelled", "attempts", attempt)
				return p.set(Cancelled), ErrCancelled
			}
			attempt++
			out, err := p.checker.Check(checkCtx, orderID)
			if err != nil {
				log.Warn("status check failed", "attempt", attempt, "err", err)
				continue
			}
			if out == settlement.Settled || out == settlement.Noop {
				log.Info("payment confirmed", "attempt", attempt, "outcome", out.String())
				return p.set(Settled), nil
			}
		}
	}
}

func (p *Poller) set(s State) State {
	p.state.Store(int32(s))
	return s
}
