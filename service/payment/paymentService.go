package paymentsvc

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"societypay/model"
	"societypay/repository/cache"
	gatewayrepo "societypay/repository/gateway"
	ledgerrepo "societypay/repository/ledger"
	"societypay/service/settlement"
	"societypay/util/apperr"
)

// Settler is the reconciliation entry point shared by every channel.
type Settler interface {
	Settle(ctx context.Context, r model.PaymentResult) (settlement.Outcome, error)
}

// StatusResult is what the status-check relay returns to the member.
type StatusResult struct {
	Result  model.PaymentResult `json:"result"`
	Outcome settlement.Outcome  `json:"outcome"`
}

type Service interface {
	// HandleWebhook verifies and settles one gateway callback.
	HandleWebhook(ctx context.Context, token string, raw []byte) (settlement.Outcome, error)
	// CheckStatus asks the gateway about orderID and settles what it says.
	CheckStatus(ctx context.Context, orderID string) (*StatusResult, error)
	// Check is CheckStatus reduced to its outcome, for the poller and the sweep.
	Check(ctx context.Context, orderID string) (settlement.Outcome, error)
	Ledger(ctx context.Context, memberID string) ([]model.LedgerEntry, error)
}

type service struct {
	gw           gatewayrepo.Repo
	settler      Settler
	ledger       ledgerrepo.Repo
	cache        cache.LedgerCache
	webhookToken string
	log          *slog.Logger

	relay singleflight.Group
}

// New builds the service. An empty webhookToken disables the callback token check.
func New(gw gatewayrepo.Repo, settler Settler, ledger ledgerrepo.Repo, c cache.LedgerCache, webhookToken string, log *slog.Logger) Service {
	if c == nil {
		c = cache.Noop()
	}
	return &service{gw: gw, settler: settler, ledger: ledger, cache: c, webhookToken: webhookToken, log: log}
}

func (s *service) HandleWebhook(ctx context.Context, token string, raw []byte) (settlement.Outcome, error) {
	if s.webhookToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.webhookToken)) != 1 {
		return settlement.NotCompleted, apperr.New(apperr.ErrUnauthorizedWebhook, "webhook token mismatch")
	}

	r, err := gatewayrepo.Normalize(raw)
	if err != nil {
		return settlement.NotCompleted, apperr.Wrap(apperr.ErrBadPayload, err, "webhook body")
	}
	if r.OrderID == "" || gatewayrepo.WebhookStatus(raw) == "" {
		return settlement.NotCompleted, apperr.New(apperr.ErrBadPayload, "orderId and status are required")
	}

	out, err := s.settler.Settle(ctx, r)
	if err != nil {
		return out, err
	}
	s.log.Info("webhook processed", "order_id", r.OrderID, "status", r.Status, "outcome", out.String())
	return out, nil
}

func (s *service) CheckStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	if _, err := model.ParseBillID(orderID); err != nil {
		return nil, err
	}

	v, err, shared := s.relay.Do(orderID, func() (any, error) {
		return s.checkOnce(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("status check collapsed", "order_id", orderID)
	}
	res := *v.(*StatusResult)
	return &res, nil
}

func (s *service) checkOnce(ctx context.Context, orderID string) (*StatusResult, error) {
	raw, err := s.gw.CheckStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}
	r, err := gatewayrepo.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if r.OrderID == "" {
		r.OrderID = orderID
	}
	if r.OrderID != orderID {
		return nil, apperr.Newf(apperr.ErrMalformedGateway, "gateway answered for %s, asked about %s", r.OrderID, orderID)
	}
	if r.BillID == "" {
		r.BillID, _ = model.ParseBillID(orderID)
	}

	out, err := s.settler.Settle(ctx, r)
	if err != nil {
		return nil, err
	}
	s.log.Info("status checked", "order_id", orderID, "status", r.Status, "outcome", out.String())
	return &StatusResult{Result: r, Outcome: out}, nil
}

func (s *service) Check(ctx context.Context, orderID string) (settlement.Outcome, error) {
	res, err := s.CheckStatus(ctx, orderID)
	if err != nil {
		return settlement.NotCompleted, err
	}
	return res.Outcome, nil
}

func (s *service) Ledger(ctx context.Context, memberID string) ([]model.LedgerEntry, error) {
	if memberID == "" {
		return nil, apperr.New(apperr.ErrValidation, "member id required")
	}
	cached, gen, ok, cerr := s.cache.Get(ctx, memberID)
	switch {
	case cerr != nil:
		s.log.Warn("ledger cache read failed", "member_id", memberID, "err", cerr)
	case ok:
		return cached, nil
	}

	entries, err := s.ledger.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	if cerr != nil {
		return entries, nil
	}
	// refused when a settlement bumped gen after the cache read
	switch err := s.cache.Set(ctx, memberID, gen, entries); {
	case errors.Is(err, cache.ErrStale):
		s.log.Debug("ledger changed during read, not cached", "member_id", memberID)
	case err != nil:
		s.log.Warn("ledger cache write failed", "member_id", memberID, "err", err)
	}
	return entries, nil
}
