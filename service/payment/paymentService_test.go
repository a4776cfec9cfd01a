package paymentsvc_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"societypay/model"
	"societypay/repository/cache"
	"societypay/repository/gateway/mocks"
	paymentsvc "societypay/service/payment"
	"societypay/service/settlement"
	"societypay/util/apperr"
	"societypay/util/testutil"
)

const orderB1 = "BILL_B1_1700000000000_4821"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func seeded() *testutil.MemStore {
	s := testutil.NewMemStore()
	s.PutMember(model.Member{ID: "M1", Email: "asha@society.test"})
	s.PutBill(model.Bill{ID: "B1", MemberID: "M1", MemberEmail: "asha@society.test", Amount: decimal.NewFromInt(2500), Status: model.BillPending})
	return s
}

func newSvc(t *testing.T, store *testutil.MemStore, gw *mocks.MockRepo, c cache.LedgerCache, token string) paymentsvc.Service {
	t.Helper()
	eng := settlement.New(store, store, store, store, discard, settlement.WithCache(c))
	return paymentsvc.New(gw, eng, store, c, token, discard)
}

func TestHandleWebhook(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		body    string
		want    settlement.Outcome
		wantErr apperr.ErrCode
		paid    bool
	}{
		{name: "success settles", body: `{"orderId":"` + orderB1 + `","status":"SUCCESS","amount":2500,"utr":"UTR123"}`, want: settlement.Settled, paid: true},
		{name: "snake case aliases", body: `{"order_id":"` + orderB1 + `","status":"PENDING","txnStatus":"COMPLETED","transaction_id":"UTR9"}`, want: settlement.Settled, paid: true},
		{name: "pending is acknowledged", body: `{"orderId":"` + orderB1 + `","status":"PENDING"}`, want: settlement.NotCompleted},
		{name: "failed is acknowledged", body: `{"orderId":"` + orderB1 + `","status":"FAILED"}`, want: settlement.NotCompleted},
		{name: "missing status", body: `{"orderId":"` + orderB1 + `"}`, wantErr: apperr.ErrBadPayload},
		{name: "txnStatus without status", body: `{"orderId":"` + orderB1 + `","txnStatus":"SUCCESS"}`, wantErr: apperr.ErrBadPayload},
		{name: "blank status", body: `{"orderId":"` + orderB1 + `","status":"  ","txnStatus":"SUCCESS"}`, wantErr: apperr.ErrBadPayload},
		{name: "missing order id", body: `{"status":"SUCCESS"}`, wantErr: apperr.ErrBadPayload},
		{name: "not json", body: `status=SUCCESS`, wantErr: apperr.ErrBadPayload},
		{name: "truncated json", body: `{"orderId":`, wantErr: apperr.ErrBadPayload},
		{name: "bad order id", body: `{"orderId":"ORD_B1_1","status":"SUCCESS"}`, wantErr: apperr.ErrInvalidOrderFormat},
		{name: "unknown bill", body: `{"orderId":"BILL_B9_1_1","status":"SUCCESS"}`, wantErr: apperr.ErrBillNotFound},
		{name: "wrong token", token: "nope", body: `{"orderId":"` + orderB1 + `","status":"SUCCESS"}`, wantErr: apperr.ErrUnauthorizedWebhook},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			store := seeded()
			svc := newSvc(t, store, mocks.NewMockRepo(ctrl), cache.Noop(), "s3cret")

			token := tc.token
			if token == "" {
				token = "s3cret"
			}
			out, err := svc.HandleWebhook(context.Background(), token, []byte(tc.body))
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Equal(t, tc.wantErr, apperr.Code(err))
				require.Zero(t, store.Writes)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
			require.Equal(t, tc.paid, store.Bill("B1").IsPaid())
		})
	}
}

func TestHandleWebhook_TokenCheckDisabledWhenUnset(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := seeded()
	svc := newSvc(t, store, mocks.NewMockRepo(ctrl), cache.Noop(), "")

	out, err := svc.HandleWebhook(context.Background(), "", []byte(`{"orderId":"`+orderB1+`","status":"SUCCESS"}`))
	require.NoError(t, err)
	require.Equal(t, settlement.Settled, out)
}

func TestCheckStatus_SettlesAndFillsOrderID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := seeded()
	gw := mocks.NewMockRepo(ctrl)
	gw.EXPECT().CheckStatus(gomock.Any(), orderB1).
		Return([]byte(`{"status":"SUCCESS","result":{"txnStatus":"SUCCESS","amount":"2500","utr":"UTR123"}}`), nil).
		Times(2)

	svc := newSvc(t, store, gw, cache.Noop(), "")

	res, err := svc.CheckStatus(context.Background(), orderB1)
	require.NoError(t, err)
	require.Equal(t, settlement.Settled, res.Outcome)
	require.Equal(t, orderB1, res.Result.OrderID)
	require.Equal(t, "B1", res.Result.BillID)
	require.Equal(t, model.PaymentSuccess, res.Result.Status)

	out, err := svc.Check(context.Background(), orderB1)
	require.NoError(t, err)
	require.Equal(t, settlement.Noop, out)
	require.Len(t, store.Ledger(), 1)
}

func TestCheckStatus_Errors(t *testing.T) {
	t.Run("invalid order id never reaches gateway", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := newSvc(t, seeded(), mocks.NewMockRepo(ctrl), cache.Noop(), "")
		_, err := svc.CheckStatus(context.Background(), "B1_123")
		require.Equal(t, apperr.ErrInvalidOrderFormat, apperr.Code(err))
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gw := mocks.NewMockRepo(ctrl)
		gw.EXPECT().CheckStatus(gomock.Any(), orderB1).Return(nil, apperr.New(apperr.ErrGatewayUnavailable, "503"))
		store := seeded()
		_, err := newSvc(t, store, gw, cache.Noop(), "").CheckStatus(context.Background(), orderB1)
		require.Equal(t, apperr.ErrGatewayUnavailable, apperr.Code(err))
		require.Zero(t, store.Writes)
	})

	t.Run("malformed body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gw := mocks.NewMockRepo(ctrl)
		gw.EXPECT().CheckStatus(gomock.Any(), orderB1).Return([]byte(`<html>oops</html>`), nil)
		_, err := newSvc(t, seeded(), gw, cache.Noop(), "").CheckStatus(context.Background(), orderB1)
		require.Equal(t, apperr.ErrMalformedGateway, apperr.Code(err))
	})

	t.Run("answer for another order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		gw := mocks.NewMockRepo(ctrl)
		gw.EXPECT().CheckStatus(gomock.Any(), orderB1).Return([]byte(`{"orderId":"BILL_B2_1_1","status":"SUCCESS"}`), nil)
		store := seeded()
		_, err := newSvc(t, store, gw, cache.Noop(), "").CheckStatus(context.Background(), orderB1)
		require.Equal(t, apperr.ErrMalformedGateway, apperr.Code(err))
		require.Zero(t, store.Writes)
	})
}

func TestCheckStatus_CollapsesConcurrentRelays(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := seeded()

	entered := make(chan struct{})
	release := make(chan struct{})
	gw := mocks.NewMockRepo(ctrl)
	gw.EXPECT().CheckStatus(gomock.Any(), orderB1).
		DoAndReturn(func(context.Context, string) ([]byte, error) {
			close(entered)
			<-release
			return []byte(`{"orderId":"` + orderB1 + `","status":"SUCCESS"}`), nil
		}).
		Times(1)

	svc := newSvc(t, store, gw, cache.Noop(), "")

	var wg sync.WaitGroup
	outs := make([]settlement.Outcome, 2)
	errs := make([]error, 2)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = svc.Check(context.Background(), orderB1)
		}(i)
		if i == 0 {
			<-entered
		}
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, []error{nil, nil}, errs)
	require.Equal(t, []settlement.Outcome{settlement.Settled, settlement.Settled}, outs)
	require.Len(t, store.Ledger(), 1)
}

func TestLedger_ReadThroughAndInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c := cache.NewRedis(rdb)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := seeded()
	svc := newSvc(t, store, mocks.NewMockRepo(ctrl), c, "")
	ctx := context.Background()

	entries, err := svc.Ledger(ctx, "M1")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.True(t, mr.Exists("ledger:M1"))

	_, err = svc.HandleWebhook(ctx, "", []byte(`{"orderId":"`+orderB1+`","status":"SUCCESS","amount":"2500"}`))
	require.NoError(t, err)
	require.False(t, mr.Exists("ledger:M1"), "settlement must drop the cached ledger")

	entries, err = svc.Ledger(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, orderB1, entries[0].OrderID)

	_, err = svc.Ledger(ctx, "")
	require.Equal(t, apperr.ErrValidation, apperr.Code(err))
}

// pausedLedger holds ListByMember after its read until release is closed.
type pausedLedger struct {
	*testutil.MemStore
	read    chan struct{}
	release chan struct{}
}

func (p *pausedLedger) ListByMember(ctx context.Context, memberID string) ([]model.LedgerEntry, error) {
	entries, err := p.MemStore.ListByMember(ctx, memberID)
	close(p.read)
	<-p.release
	return entries, err
}

func TestLedger_SettlementDuringReadIsNotCachedStale(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c := cache.NewRedis(rdb)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := seeded()
	eng := settlement.New(store, store, store, store, discard, settlement.WithCache(c))
	slow := &pausedLedger{MemStore: store, read: make(chan struct{}), release: make(chan struct{})}
	svc := paymentsvc.New(mocks.NewMockRepo(ctrl), eng, slow, c, "", discard)
	ctx := context.Background()

	type listed struct {
		entries []model.LedgerEntry
		err     error
	}
	done := make(chan listed, 1)
	go func() {
		entries, err := svc.Ledger(ctx, "M1")
		done <- listed{entries, err}
	}()

	<-slow.read
	out, err := svc.HandleWebhook(ctx, "", []byte(`{"orderId":"`+orderB1+`","status":"SUCCESS","amount":"2500"}`))
	require.NoError(t, err)
	require.Equal(t, settlement.Settled, out)
	close(slow.release)

	first := <-done
	require.NoError(t, first.err)
	require.Empty(t, first.entries)
	require.False(t, mr.Exists("ledger:M1"), "pre-settlement list must not be cached")

	entries, err := paymentsvc.New(mocks.NewMockRepo(ctrl), eng, store, c, "", discard).Ledger(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, mr.Exists("ledger:M1"))
}
