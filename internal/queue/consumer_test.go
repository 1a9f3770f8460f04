package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLineBookingCreated(t *testing.T) {
	body, err := json.Marshal(BookingCreatedEvent{
		BookingID:        7,
		UserEmail:        "alem@example.com",
		TourName:         "Danakil Depression",
		Location:         "Afar",
		StartDate:        "2026-09-10T06:00:00Z",
		Participants:     2,
		TotalAmountCents: 900000,
		CreatedAt:        "2026-08-30T10:00:00Z",
	})
	require.NoError(t, err)

	line, err := renderLine(BookingCreatedQueue, body)
	require.NoError(t, err)
	assert.Contains(t, line, "Booking created")
	assert.Contains(t, line, "booking_id=7")
	assert.Contains(t, line, "alem@example.com")
	assert.Contains(t, line, "Danakil Depression")
	assert.Contains(t, line, "participants=2")
}

func TestRenderLineBookingCancelledNoReason(t *testing.T) {
	body, err := json.Marshal(BookingCancelledEvent{
		BookingID: 9,
		UserEmail: "alem@example.com",
		TourName:  "Lalibela Churches",
	})
	require.NoError(t, err)

	line, err := renderLine(BookingCancelledQueue, body)
	require.NoError(t, err)
	assert.Contains(t, line, "Booking cancelled")
	assert.Contains(t, line, `reason=""`)
}

func TestRenderLinePaymentSucceeded(t *testing.T) {
	body, err := json.Marshal(PaymentSucceededEvent{
		BookingID:   3,
		UserEmail:   "alem@example.com",
		TourName:    "Omo Valley",
		PaymentRef:  "TXN-3-abc",
		AmountCents: 450000,
		Currency:    "ETB",
	})
	require.NoError(t, err)

	line, err := renderLine(PaymentSucceededQueue, body)
	require.NoError(t, err)
	assert.Contains(t, line, "Payment succeeded")
	assert.Contains(t, line, "ref=TXN-3-abc")
	assert.Contains(t, line, "amount=450000 ETB")
}

func TestRenderLineUnknownQueue(t *testing.T) {
	_, err := renderLine("orders.shipped", []byte(`{}`))
	assert.Error(t, err)
}

func TestRenderLineMalformedBody(t *testing.T) {
	_, err := renderLine(BookingCreatedQueue, []byte(`{not json`))
	assert.Error(t, err)
}
