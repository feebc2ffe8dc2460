// Package payment drives a booking's deposit through the external
// payment provider: order creation, the redirect hand-off, and the
// idempotent-tolerant confirmation on return.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ConfirmResult is the provider's answer to a successful confirm call.
type ConfirmResult struct {
	ApprovedAt time.Time
	ReceiptURL string
}

// DeclineError reports that the provider rejected a confirm call with
// a business reason (declined card, canceled checkout).  It is
// distinct from transport errors so the coordinator can mark the
// payment FAILED instead of leaving it retryable.
type DeclineError struct {
	Code    string
	Message string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Message)
}

// Gateway abstracts the provider's confirm API so the coordinator can
// be exercised without the network.
type Gateway interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*ConfirmResult, error)
}

// HTTPGateway talks JSON-over-HTTPS to the provider.  Requests are
// authenticated with the store-side secret key using HTTP basic auth.
type HTTPGateway struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

// NewHTTPGateway builds a gateway with a bounded request timeout so a
// hung provider surfaces as an ordinary failure, never a silent hang.
func NewHTTPGateway(baseURL, secretKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		Client:    &http.Client{Timeout: timeout},
	}
}

type confirmRequest struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

type confirmResponse struct {
	Status     string `json:"status"`
	ApprovedAt string `json:"approvedAt"`
	Receipt    struct {
		URL string `json:"url"`
	} `json:"receipt"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Confirm asks the provider to capture the deposit.  A non-2xx answer
// with a provider code becomes a *DeclineError; transport failures are
// returned as-is for the coordinator to classify as network errors.
func (g *HTTPGateway) Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*ConfirmResult, error) {
	body, err := json.Marshal(confirmRequest{PaymentKey: paymentKey, OrderID: orderID, Amount: amount})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/payments/confirm", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(g.SecretKey+":")))

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out confirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode confirm response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := out.Code
		if code == "" {
			code = fmt.Sprintf("HTTP_%d", resp.StatusCode)
		}
		msg := out.Message
		if msg == "" {
			msg = "payment provider rejected the confirmation"
		}
		return nil, &DeclineError{Code: code, Message: msg}
	}
	approvedAt, err := time.Parse(time.RFC3339, out.ApprovedAt)
	if err != nil {
		approvedAt = time.Now().UTC()
	}
	return &ConfirmResult{ApprovedAt: approvedAt, ReceiptURL: out.Receipt.URL}, nil
}
