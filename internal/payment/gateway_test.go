package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGatewayConfirmSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments/confirm", r.URL.Path)
		assert.Equal(t, "Basic c2stdGVzdDo=", r.Header.Get("Authorization")) // sk-test:

		var in map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "pk-1", in["paymentKey"])
		assert.Equal(t, "ord-1", in["orderId"])
		assert.Equal(t, float64(2000), in["amount"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "DONE",
			"approvedAt": "2026-09-01T18:05:00Z",
			"receipt":    map[string]string{"url": "https://pay.example.com/r/1"},
		})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk-test", 5*time.Second)
	res, err := gw.Confirm(context.Background(), "pk-1", "ord-1", 2000)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 18, 5, 0, 0, time.UTC), res.ApprovedAt)
	assert.Equal(t, "https://pay.example.com/r/1", res.ReceiptURL)
}

func TestHTTPGatewayConfirmDecline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"code": "REJECT_CARD", "message": "card declined"})
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk-test", 5*time.Second)
	_, err := gw.Confirm(context.Background(), "pk-1", "ord-1", 2000)
	var decline *DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, "REJECT_CARD", decline.Code)
	assert.Equal(t, "card declined", decline.Message)
}

func TestHTTPGatewayConfirmDeclineWithoutBodyCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "sk-test", 5*time.Second)
	_, err := gw.Confirm(context.Background(), "pk-1", "ord-1", 2000)
	var decline *DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, "HTTP_500", decline.Code)
}
