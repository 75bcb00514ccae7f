package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/gyansetu/internal/middleware"
	"github.com/example/gyansetu/internal/services"
)

// PaymentHandler exposes the mock payment engine.
type PaymentHandler struct {
	payments *services.Payments
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(payments *services.Payments) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder registers a mock payment intent. Missing or non-positive
// amounts fall back to defaults; the simulation never rejects input here.
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order := h.payments.CreateOrder(req.Amount, req.Currency)
	return c.JSON(fiber.Map{
		"success":  true,
		"orderId":  order.OrderID,
		"amount":   order.Amount,
		"currency": order.Currency,
	})
}

type verifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// Verify checks the payment signature and returns the ledger transaction.
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	txn, err := h.payments.Verify(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		middleware.PaymentsVerified.WithLabelValues("failure").Inc()
		return err
	}

	middleware.PaymentsVerified.WithLabelValues("success").Inc()
	return c.JSON(fiber.Map{
		"success":       true,
		"transactionId": txn.TransactionID,
		"amount":        txn.Amount,
		"currency":      txn.Currency,
	})
}
