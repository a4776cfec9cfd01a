package gatewayrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"societypay/util/apperr"
)

const maxBody = 1 << 20

type httpRepo struct {
	baseURL   string
	userToken string
	client    *http.Client
}

func NewHTTP(baseURL, userToken string, client *http.Client) Repo {
	if client == nil {
		client = &http.Client{}
	}
	return &httpRepo{baseURL: strings.TrimRight(baseURL, "/"), userToken: userToken, client: client}
}

func (r *httpRepo) CreateOrder(ctx context.Context, req CreateOrderReq) (*CreateOrderResp, error) {
	form := url.Values{}
	form.Set("user_token", r.userToken)
	form.Set("customer_mobile", req.CustomerMobile)
	form.Set("amount", req.Amount.StringFixed(2))
	form.Set("order_id", req.OrderID)
	form.Set("redirect_url", req.RedirectURL)
	if req.Remark1 != "" {
		form.Set("remark1", req.Remark1)
	}
	if req.Remark2 != "" {
		form.Set("remark2", req.Remark2)
	}

	raw, err := r.post(ctx, "/create-order", form)
	if err != nil {
		return nil, err
	}

	var out envelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Wrap(apperr.ErrMalformedGateway, err, "create order body")
	}
	if !accepted(out.Status) {
		return nil, apperr.Newf(apperr.ErrGatewayRejected, "create order %s: status=%q message=%q", req.OrderID, out.Status, out.message())
	}
	res, err := out.result()
	if err != nil {
		return nil, err
	}
	if res == nil || res.paymentURL() == "" {
		return nil, apperr.Newf(apperr.ErrMalformedGateway, "create order %s: no payment_url", req.OrderID)
	}
	return &CreateOrderResp{OrderID: req.OrderID, PaymentURL: res.paymentURL(), Raw: raw}, nil
}

func (r *httpRepo) CheckStatus(ctx context.Context, orderID string) ([]byte, error) {
	form := url.Values{}
	form.Set("user_token", r.userToken)
	form.Set("order_id", orderID)

	raw, err := r.post(ctx, "/check-order-status", form)
	if err != nil {
		return nil, err
	}

	// The envelope status only says whether the lookup worked; the payment
	// status lives in result. Without a result there is nothing to normalize.
	var out envelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Wrap(apperr.ErrMalformedGateway, err, "check status body")
	}
	res, err := out.result()
	if err != nil {
		return nil, err
	}
	if res == nil {
		if !accepted(out.Status) {
			return nil, apperr.Newf(apperr.ErrGatewayRejected, "check status %s: status=%q message=%q", orderID, out.Status, out.message())
		}
		return nil, apperr.Newf(apperr.ErrMalformedGateway, "check status %s: no result", orderID)
	}
	return raw, nil
}

func (r *httpRepo) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrGatewayUnavailable, err, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrGatewayUnavailable, err, path+" read body")
	}
	if resp.StatusCode >= 300 {
		return nil, apperr.Newf(apperr.ErrGatewayUnavailable, "%s: %s", path, resp.Status)
	}
	return raw, nil
}

func accepted(s flexString) bool {
	switch strings.ToUpper(s.String()) {
	case "TRUE", "SUCCESS", "OK", "1":
		return true
	}
	return false
}
