package gatewayrepo_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societypay/model"
	gatewayrepo "societypay/repository/gateway"
	"societypay/util/apperr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantStatus model.PaymentStatus
		wantOrder  string
		wantBill   string
		wantTxn    string
		wantAmount string
		wantCode   apperr.ErrCode
	}{
		{
			name:       "check-status envelope with txnStatus and utr",
			raw:        `{"status":"SUCCESS","result":{"txnStatus":"SUCCESS","amount":"2500","utr":"UTR123","date":"2023-11-14 22:13:20"}}`,
			wantStatus: model.PaymentSuccess,
			wantTxn:    "UTR123",
			wantAmount: "2500",
		},
		{
			name:       "check-status envelope with status alias and numeric amount",
			raw:        `{"status":true,"result":{"status":"COMPLETED","amount":2500.5,"transactionId":"T-9","orderId":"BILL_B7_1700000000000_1111"}}`,
			wantStatus: model.PaymentSuccess,
			wantOrder:  "BILL_B7_1700000000000_1111",
			wantBill:   "B7",
			wantTxn:    "T-9",
			wantAmount: "2500.5",
		},
		{
			name:       "envelope success does not leak into a pending result",
			raw:        `{"status":"SUCCESS","result":{"amount":"2500"}}`,
			wantStatus: model.PaymentPending,
			wantAmount: "2500",
		},
		{
			name:       "webhook body",
			raw:        `{"orderId":"BILL_B1_1700000000000_4821","status":"SUCCESS","amount":"2500","transactionId":"UTR123","paymentMethod":"UPI","customerDetails":{"mobile":"9876543210"}}`,
			wantStatus: model.PaymentSuccess,
			wantOrder:  "BILL_B1_1700000000000_4821",
			wantBill:   "B1",
			wantTxn:    "UTR123",
			wantAmount: "2500",
		},
		{
			name:       "webhook txnStatus wins over status",
			raw:        `{"order_id":"BILL_B1_1_1","status":"received","txnStatus":"FAILURE","utr":"U1"}`,
			wantStatus: model.PaymentFailed,
			wantOrder:  "BILL_B1_1_1",
			wantBill:   "B1",
			wantTxn:    "U1",
			wantAmount: "0",
		},
		{
			name:       "unknown status is pending",
			raw:        `{"orderId":"BILL_B1_1_1","status":"ON_HOLD"}`,
			wantStatus: model.PaymentPending,
			wantOrder:  "BILL_B1_1_1",
			wantBill:   "B1",
			wantAmount: "0",
		},
		{
			name:       "unparseable order id leaves bill empty",
			raw:        `{"orderId":"XYZ","status":"SUCCESS"}`,
			wantStatus: model.PaymentSuccess,
			wantOrder:  "XYZ",
			wantAmount: "0",
		},
		{name: "not json", raw: `<html>502</html>`, wantCode: apperr.ErrMalformedGateway},
		{name: "json array", raw: `[1,2]`, wantCode: apperr.ErrMalformedGateway},
		{name: "empty", raw: ``, wantCode: apperr.ErrMalformedGateway},
		{name: "bad amount", raw: `{"status":"SUCCESS","amount":"two thousand"}`, wantCode: apperr.ErrMalformedGateway},
		{name: "object where scalar expected", raw: `{"status":{"code":1}}`, wantCode: apperr.ErrMalformedGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := gatewayrepo.Normalize([]byte(tc.raw))
			if tc.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantCode, apperr.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, got.Status)
			assert.Equal(t, tc.wantOrder, got.OrderID)
			assert.Equal(t, tc.wantBill, got.BillID)
			assert.Equal(t, tc.wantTxn, got.TransactionID)
			assert.True(t, decimal.RequireFromString(tc.wantAmount).Equal(got.Amount), "amount %s", got.Amount)
			assert.JSONEq(t, tc.raw, string(got.RawPayload))
		})
	}
}

func TestMapStatus(t *testing.T) {
	for _, s := range []string{"SUCCESS", "completed", " Paid ", "TXN_SUCCESS"} {
		assert.Equal(t, model.PaymentSuccess, gatewayrepo.MapStatus(s), s)
	}
	for _, s := range []string{"FAILED", "declined", "EXPIRED", "cancelled"} {
		assert.Equal(t, model.PaymentFailed, gatewayrepo.MapStatus(s), s)
	}
	for _, s := range []string{"", "PENDING", "INITIATED", "whatever"} {
		assert.Equal(t, model.PaymentPending, gatewayrepo.MapStatus(s), s)
	}
}

func TestWebhookStatus(t *testing.T) {
	assert.Equal(t, "SUCCESS", gatewayrepo.WebhookStatus([]byte(`{"status":" SUCCESS ","txnStatus":"FAILED"}`)))
	assert.Equal(t, "1", gatewayrepo.WebhookStatus([]byte(`{"status":1}`)))
	assert.Empty(t, gatewayrepo.WebhookStatus([]byte(`{"txnStatus":"SUCCESS"}`)))
	assert.Empty(t, gatewayrepo.WebhookStatus([]byte(`{"status":null}`)))
	assert.Empty(t, gatewayrepo.WebhookStatus([]byte(`{"status":{"code":"SUCCESS"}}`)))
	assert.Empty(t, gatewayrepo.WebhookStatus([]byte(`not json`)))
}
