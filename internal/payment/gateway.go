// Package payment wraps the Chapa payment gateway behind a narrow
// interface.  The core only depends on Gateway; the concrete REST
// client is constructed once at startup from configuration and passed
// in explicitly.
package payment

import (
	"context"
	"encoding/json"
	"errors"
)

// Status is the normalized verification outcome reported by the
// gateway.  Transport problems are NOT a status: they surface as
// ErrGatewayUnavailable so a flaky gateway can never mark a booking
// FAILED.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// ErrGatewayUnavailable indicates the gateway could not be reached or
// answered with a server error.  Callers must treat this as transient
// and leave booking state untouched.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrTransactionNotFound indicates the gateway does not know the
// transaction reference.
var ErrTransactionNotFound = errors.New("transaction not found")

// InitializeRequest carries everything the gateway needs to open a
// checkout session for a booking.
type InitializeRequest struct {
	TxRef       string
	AmountCents uint64
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	ReturnURL   string
}

// Checkout is the gateway's answer to a successful initialization.
type Checkout struct {
	CheckoutURL string
	TxRef       string
	AmountCents uint64
	Currency    string
}

// VerifyResult is the normalized verification of a transaction
// reference.  Raw preserves the gateway's response body for audit
// logging; the core only reads Status, AmountCents and Currency.
type VerifyResult struct {
	Status      Status
	AmountCents uint64
	Currency    string
	Raw         json.RawMessage
}

// Gateway is the payment confirmation adapter the booking flow depends
// on.  Implementations must distinguish transient transport failures
// (ErrGatewayUnavailable) from a definitive failed payment status.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Checkout, error)
	Verify(ctx context.Context, txRef string) (*VerifyResult, error)
}
