package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/selamtours/tour-booking-api/internal/service"
)

// PaymentHandler drives checkout initialization and confirmation.
type PaymentHandler struct {
	Svc              *service.BookingService
	DefaultReturnURL string
}

func NewPaymentHandler(svc *service.BookingService, defaultReturnURL string) *PaymentHandler {
	return &PaymentHandler{Svc: svc, DefaultReturnURL: defaultReturnURL}
}

type initPaymentReq struct {
	ReturnURL string `json:"return_url"`
}

// Initialize opens a gateway checkout session for the caller's PENDING
// booking and returns the hosted checkout URL.
// POST /bookings/:id/payment
func (h *PaymentHandler) Initialize(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req initPaymentReq
	_ = c.Bind(&req)
	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = h.DefaultReturnURL
	}

	checkout, err := h.Svc.InitializePayment(c.Request().Context(), uid, id, returnURL)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"checkout_url": checkout.CheckoutURL,
		"tx_ref":       checkout.TxRef,
		"amount_cents": checkout.AmountCents,
		"currency":     checkout.Currency,
	})
}

// Verify confirms a payment by transaction reference.  Called by the
// gateway's return redirect and safe to call repeatedly: an already
// confirmed booking is returned unchanged.
// GET /payments/verify/:tx_ref
func (h *PaymentHandler) Verify(c echo.Context) error {
	txRef := c.Param("tx_ref")
	b, err := h.Svc.ConfirmPayment(c.Request().Context(), txRef)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}
