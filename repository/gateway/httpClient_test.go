package gatewayrepo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gatewayrepo "societypay/repository/gateway"
	"societypay/util/apperr"
)

func newGateway(t *testing.T, h http.HandlerFunc) gatewayrepo.Repo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return gatewayrepo.NewHTTP(srv.URL+"/", "tok-123", srv.Client())
}

func TestCreateOrder_FormEncoded(t *testing.T) {
	repo := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/create-order", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "tok-123", r.PostForm.Get("user_token"))
		assert.Equal(t, "9876543210", r.PostForm.Get("customer_mobile"))
		assert.Equal(t, "2500.00", r.PostForm.Get("amount"))
		assert.Equal(t, "BILL_B1_1700000000000_4821", r.PostForm.Get("order_id"))
		assert.Equal(t, "https://society.test/return", r.PostForm.Get("redirect_url"))
		assert.Equal(t, "B1", r.PostForm.Get("remark1"))
		_, hasRemark2 := r.PostForm["remark2"]
		assert.False(t, hasRemark2)
		_, _ = w.Write([]byte(`{"status":true,"message":"Order Created","result":{"orderId":"BILL_B1_1700000000000_4821","payment_url":"https://pay.test/p/abc"}}`))
	})

	resp, err := repo.CreateOrder(context.Background(), gatewayrepo.CreateOrderReq{
		OrderID:        "BILL_B1_1700000000000_4821",
		Amount:         decimal.NewFromInt(2500),
		CustomerMobile: "9876543210",
		RedirectURL:    "https://society.test/return",
		Remark1:        "B1",
	})
	require.NoError(t, err)
	require.Equal(t, "https://pay.test/p/abc", resp.PaymentURL)
	require.Equal(t, "BILL_B1_1700000000000_4821", resp.OrderID)
}

func TestCreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   apperr.ErrCode
	}{
		{name: "non-2xx", status: http.StatusBadGateway, body: `oops`, want: apperr.ErrGatewayUnavailable},
		{name: "rejected", status: http.StatusOK, body: `{"status":false,"message":"Order ID already exists"}`, want: apperr.ErrGatewayRejected},
		{name: "not json", status: http.StatusOK, body: `<html></html>`, want: apperr.ErrMalformedGateway},
		{name: "no url", status: http.StatusOK, body: `{"status":"SUCCESS","result":{}}`, want: apperr.ErrMalformedGateway},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := repo.CreateOrder(context.Background(), gatewayrepo.CreateOrderReq{OrderID: "BILL_B1_1_1", Amount: decimal.NewFromInt(1)})
			assert.Error(t, err)
			assert.Equal(t, tc.want, apperr.Code(err))
		})
	}
}

func TestCreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	repo := gatewayrepo.NewHTTP(url, "tok", nil)
	_, err := repo.CreateOrder(context.Background(), gatewayrepo.CreateOrderReq{OrderID: "BILL_B1_1_1"})
	assert.Equal(t, apperr.ErrGatewayUnavailable, apperr.Code(err))
}

func TestCheckStatus(t *testing.T) {
	body := `{"status":"SUCCESS","result":{"txnStatus":"SUCCESS","amount":"2500","utr":"UTR123"}}`
	repo := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check-order-status", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "tok-123", r.PostForm.Get("user_token"))
		assert.Equal(t, "BILL_B1_1700000000000_4821", r.PostForm.Get("order_id"))
		_, _ = w.Write([]byte(body))
	})

	raw, err := repo.CheckStatus(context.Background(), "BILL_B1_1700000000000_4821")
	require.NoError(t, err)
	require.JSONEq(t, body, string(raw))
}

func TestCheckStatus_NoResult(t *testing.T) {
	tests := []struct {
		body string
		want apperr.ErrCode
	}{
		{body: `{"status":false,"message":"Order not found"}`, want: apperr.ErrGatewayRejected},
		{body: `{"status":"SUCCESS"}`, want: apperr.ErrMalformedGateway},
		{body: `not json`, want: apperr.ErrMalformedGateway},
	}
	for _, tc := range tests {
		repo := newGateway(t, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(tc.body)) })
		_, err := repo.CheckStatus(context.Background(), "BILL_B1_1_1")
		require.Equal(t, tc.want, apperr.Code(err), tc.body)
	}
}
