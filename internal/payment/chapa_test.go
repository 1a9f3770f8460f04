package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0.00", amountString(0))
	assert.Equal(t, "0.05", amountString(5))
	assert.Equal(t, "1.00", amountString(100))
	assert.Equal(t, "150.50", amountString(15050))
	assert.Equal(t, "12345.07", amountString(1234507))
}

func TestInitializeSuccess(t *testing.T) {
	var got initializePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"checkout_url":"https://checkout.chapa.co/xyz"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", time.Second)
	checkout, err := c.Initialize(context.Background(), InitializeRequest{
		TxRef:       "TXN-1-abc",
		AmountCents: 150000,
		Currency:    "ETB",
		Email:       "alem@example.com",
		FirstName:   "Alem",
		LastName:    "Tesfaye",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.chapa.co/xyz", checkout.CheckoutURL)
	assert.Equal(t, "TXN-1-abc", checkout.TxRef)
	assert.Equal(t, "1500.00", got.Amount)
	assert.Equal(t, "ETB", got.Currency)
	assert.Equal(t, "TXN-1-abc", got.TxRef)
}

func TestInitializeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"failed","message":"Invalid currency"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", time.Second)
	_, err := c.Initialize(context.Background(), InitializeRequest{TxRef: "TXN-1-abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid currency")
	assert.False(t, errors.Is(err, ErrGatewayUnavailable))
}

func TestInitializeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", time.Second)
	_, err := c.Initialize(context.Background(), InitializeRequest{TxRef: "TXN-1-abc"})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestInitializeConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before the call

	c := NewClient(srv.URL, "sk-test", time.Second)
	_, err := c.Initialize(context.Background(), InitializeRequest{TxRef: "TXN-1-abc"})
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestVerifyStatusMapping(t *testing.T) {
	cases := []struct {
		gateway string
		want    Status
	}{
		{"success", StatusSuccess},
		{"failed", StatusFailed},
		{"pending", StatusPending},
		{"processing", StatusPending}, // anything unrecognized stays pending
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/transaction/verify/TXN-1-abc", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			body, _ := json.Marshal(map[string]any{
				"status":  "success",
				"message": "verified",
				"data": map[string]any{
					"status":   tc.gateway,
					"amount":   1500.50,
					"currency": "ETB",
				},
			})
			w.Write(body)
		}))

		c := NewClient(srv.URL, "sk-test", time.Second)
		res, err := c.Verify(context.Background(), "TXN-1-abc")
		srv.Close()
		require.NoError(t, err, "gateway status %q", tc.gateway)
		assert.Equal(t, tc.want, res.Status, "gateway status %q", tc.gateway)
		assert.Equal(t, uint64(150050), res.AmountCents)
		assert.Equal(t, "ETB", res.Currency)
		assert.NotEmpty(t, res.Raw)
	}
}

func TestVerifyNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":"failed","message":"Transaction not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", time.Second)
	_, err := c.Verify(context.Background(), "TXN-404-x")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerifyEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","message":"Invalid API Key"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", time.Second)
	_, err := c.Verify(context.Background(), "TXN-1-abc")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test", time.Second)
	_, err := c.Verify(context.Background(), "TXN-1-abc")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
