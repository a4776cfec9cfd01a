package gatewayrepo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"societypay/model"
	"societypay/util/apperr"
)

// flexString accepts a JSON string, number or bool. The gateway is not
// consistent about which it sends for amounts and statuses.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected scalar, got %c", b[0])
	}
	*f = flexString(b)
	return nil
}

func (f flexString) String() string { return string(f) }

// fields lists every alias seen for the same value across call sites.
type fields struct {
	OrderID            flexString `json:"orderId"`
	OrderIDSnake       flexString `json:"order_id"`
	Status             flexString `json:"status"`
	TxnStatus          flexString `json:"txnStatus"`
	UTR                flexString `json:"utr"`
	TransactionID      flexString `json:"transactionId"`
	TransactionIDSnake flexString `json:"transaction_id"`
	Amount             flexString `json:"amount"`
	Date               flexString `json:"date"`
	PaymentURL         flexString `json:"payment_url"`
	PaymentURLCamel    flexString `json:"paymentUrl"`
}

func (f *fields) orderID() string { return first(f.OrderID, f.OrderIDSnake) }
func (f *fields) txnID() string   { return first(f.UTR, f.TransactionID, f.TransactionIDSnake) }
func (f *fields) paymentURL() string {
	return first(f.PaymentURL, f.PaymentURLCamel)
}

type envelope struct {
	fields
	Message    flexString      `json:"message"`
	Msg        flexString      `json:"msg"`
	ResultJSON json.RawMessage `json:"result"`
}

func (e *envelope) message() string { return first(e.Message, e.Msg) }

// result decodes the nested result object, nil when absent.
func (e *envelope) result() (*fields, error) {
	raw := bytes.TrimSpace(e.ResultJSON)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '{' {
		return nil, nil
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, apperr.Wrap(apperr.ErrMalformedGateway, err, "result object")
	}
	return &f, nil
}

// Normalize turns a check-status body or a webhook body into a PaymentResult.
// Unknown statuses become PENDING; only undecodable payloads are errors.
func Normalize(raw []byte) (model.PaymentResult, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return model.PaymentResult{}, apperr.New(apperr.ErrMalformedGateway, "payload is not a JSON object")
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.PaymentResult{}, apperr.Wrap(apperr.ErrMalformedGateway, err, "decode payload")
	}
	res, err := env.result()
	if err != nil {
		return model.PaymentResult{}, err
	}

	var rawStatus, txnID, amount, orderID string
	if res != nil {
		// top-level status is the envelope's, not the payment's
		rawStatus = first(res.TxnStatus, res.Status, env.TxnStatus)
		txnID = first(flexString(res.txnID()), flexString(env.txnID()))
		amount = first(res.Amount, env.Amount)
		orderID = first(flexString(res.orderID()), flexString(env.orderID()))
	} else {
		rawStatus = first(env.TxnStatus, env.Status)
		txnID = env.txnID()
		amount = env.Amount.String()
		orderID = env.orderID()
	}

	amt, err := parseAmount(amount)
	if err != nil {
		return model.PaymentResult{}, err
	}

	out := model.PaymentResult{
		OrderID:       orderID,
		Status:        MapStatus(rawStatus),
		RawStatus:     rawStatus,
		Amount:        amt,
		TransactionID: txnID,
		RawPayload:    json.RawMessage(append([]byte(nil), raw...)),
	}
	if billID, err := model.ParseBillID(orderID); err == nil {
		out.BillID = billID
	}
	return out, nil
}

// WebhookStatus returns the callback's own "status" field. txnStatus is an
// optional refinement and does not stand in for it.
func WebhookStatus(raw []byte) string {
	var body struct {
		Status flexString `json:"status"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Status.String()
}

// MapStatus folds gateway status strings onto the three internal states.
func MapStatus(s string) model.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "COMPLETED", "SUCCESSFUL", "PAID", "CAPTURE", "SETTLEMENT", "TXN_SUCCESS":
		return model.PaymentSuccess
	case "FAILED", "FAILURE", "FAIL", "DECLINED", "CANCELLED", "CANCELED", "EXPIRED", "REJECTED", "ERROR", "TXN_FAILURE":
		return model.PaymentFailed
	}
	return model.PaymentPending
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.Wrap(apperr.ErrMalformedGateway, err, "amount")
	}
	return d, nil
}

func first(vals ...flexString) string {
	for _, v := range vals {
		if v != "" {
			return string(v)
		}
	}
	return ""
}
