package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"societypay/model"
	"societypay/service/settlement"
)

// apiClient talks to the settlement API with the member's token. It
// satisfies poller.Checker through Check.
type apiClient struct {
	base  string
	token string
	http  *http.Client
}

func newAPIClient(base, token string, hc *http.Client) *apiClient {
	return &apiClient{base: strings.TrimRight(base, "/"), token: token, http: hc}
}

type createOrderResp struct {
	OrderID    string `json:"orderId"`
	PaymentURL string `json:"paymentUrl"`
}

func (c *apiClient) CreateOrder(ctx context.Context, billID, mobile, redirect string) (*createOrderResp, error) {
	var out createOrderResp
	err := c.do(ctx, http.MethodPost, "/orders", map[string]string{
		"billId":         billID,
		"customerMobile": mobile,
		"redirectUrl":    redirect,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Check(ctx context.Context, orderID string) (settlement.Outcome, error) {
	var out struct {
		Outcome settlement.Outcome `json:"outcome"`
	}
	if err := c.do(ctx, http.MethodPost, "/check-status", map[string]string{"orderId": orderID}, &out); err != nil {
		return settlement.NotCompleted, err
	}
	return out.Outcome, nil
}

func (c *apiClient) Ledger(ctx context.Context) ([]model.LedgerEntry, error) {
	var out struct {
		Data []model.LedgerEntry `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/ledger", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return fmt.Sprintf("server said %d: %s", e.Status, e.Message) }

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode/100 != 2 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &apiError{Status: resp.StatusCode, Message: e.Message}
	}
	return json.Unmarshal(raw, out)
}
