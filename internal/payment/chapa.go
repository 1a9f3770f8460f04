package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the production Chapa API endpoint.
const DefaultBaseURL = "https://api.chapa.co"

// Client talks to the Chapa REST API.  It implements Gateway.  Build
// one with NewClient at process start and inject it; the secret key
// lives here and nowhere else.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient constructs a Chapa client.  An empty baseURL selects the
// production endpoint; the timeout bounds every request so a stalled
// gateway cannot hold a caller indefinitely.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// amountString renders cents as the decimal string the gateway expects.
func amountString(cents uint64) string {
	return strconv.FormatUint(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}

type initializePayload struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TxRef     string `json:"tx_ref"`
	ReturnURL string `json:"return_url,omitempty"`
}

type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// Initialize opens a checkout session for the given transaction
// reference and returns the hosted checkout URL.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error) {
	payload := initializePayload{
		Amount:    amountString(req.AmountCents),
		Currency:  req.Currency,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TxRef:     req.TxRef,
		ReturnURL: req.ReturnURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: http %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	var parsed initializeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrGatewayUnavailable)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "success" {
		return nil, fmt.Errorf("initialize rejected: %s", parsed.Message)
	}
	return &Checkout{
		CheckoutURL: parsed.Data.CheckoutURL,
		TxRef:       req.TxRef,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
	}, nil
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	} `json:"data"`
}

// Verify asks the gateway for the state of a transaction reference and
// normalizes the answer into a VerifyResult.  Unknown gateway states
// map to pending: a state we cannot interpret must never confirm or
// fail a booking.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: http %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}
	var parsed verifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrGatewayUnavailable)
	}

	result := &VerifyResult{
		AmountCents: uint64(parsed.Data.Amount * 100),
		Currency:    parsed.Data.Currency,
		Raw:         raw,
	}
	switch parsed.Data.Status {
	case "success":
		result.Status = StatusSuccess
	case "failed":
		result.Status = StatusFailed
	default:
		result.Status = StatusPending
	}
	if parsed.Status != "success" {
		// Envelope-level failure without a transaction state: the
		// reference is unknown to the gateway.
		return nil, ErrTransactionNotFound
	}
	return result, nil
}
