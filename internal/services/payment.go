package services

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults applied when an order request omits amount or currency. The amount
// is in the smallest currency unit, matching what the checkout UI sends.
const (
	DefaultOrderAmount   int64 = 19900
	DefaultOrderCurrency       = "INR"
)

// Signer derives the expected signature for an (orderID, paymentID) pair. The
// dummy implementation is deliberately not a keyed MAC; a real gateway
// integration replaces this without touching the intake contract.
type Signer interface {
	Sign(orderID, paymentID string) string
}

// DummySigner reproduces the portal's publicly-derivable mock signature.
type DummySigner struct{}

func (DummySigner) Sign(orderID, paymentID string) string {
	return "dummy-sign-" + orderID + "-" + paymentID
}

// Order is a pending mock payment intent.
type Order struct {
	OrderID   string    `json:"orderId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"-"`
}

// Transaction is the immutable record minted once a signature check passes.
// It is the only artifact application intake trusts.
type Transaction struct {
	TransactionID string    `json:"transactionId"`
	OrderID       string    `json:"orderId"`
	PaymentID     string    `json:"paymentId"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}

// Payments owns the mock order book and the verified-transaction ledger.
type Payments struct {
	mu       sync.Mutex
	signer   Signer
	orderTTL time.Duration
	logger   *zap.Logger

	orders       map[string]Order
	transactions map[string]Transaction
	byPair       map[string]string // orderID|paymentID -> transactionID
}

// NewPayments constructs the engine. Orders older than ttl are rejected and
// removed by SweepExpired.
func NewPayments(signer Signer, ttl time.Duration, logger *zap.Logger) *Payments {
	return &Payments{
		signer:       signer,
		orderTTL:     ttl,
		logger:       logger,
		orders:       make(map[string]Order),
		transactions: make(map[string]Transaction),
		byPair:       make(map[string]string),
	}
}

// CreateOrder registers a new order. Malformed input is never rejected here;
// defaults are substituted instead, since the whole flow is a simulation.
func (p *Payments) CreateOrder(amount int64, currency string) Order {
	if amount <= 0 {
		amount = DefaultOrderAmount
	}
	if currency == "" {
		currency = DefaultOrderCurrency
	}

	order := Order{
		OrderID:   "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Amount:    amount,
		Currency:  currency,
		CreatedAt: time.Now(),
	}

	p.mu.Lock()
	p.orders[order.OrderID] = order
	p.mu.Unlock()

	p.logger.Debug("payment order created", zap.String("order_id", order.OrderID), zap.Int64("amount", amount))
	return order
}

// Verify checks the supplied signature against the deterministic expectation
// and records the transaction. Verification is idempotent per
// (orderID, paymentID): repeating a pair returns the already-minted
// transaction rather than a fresh one. An order may still be verified with a
// different payment id, which models a retried checkout.
func (p *Payments) Verify(orderID, paymentID, signature string) (Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok || p.expired(order, time.Now()) {
		return Transaction{}, ErrInvalidOrder
	}

	if signature != p.signer.Sign(orderID, paymentID) {
		return Transaction{}, ErrSignatureMismatch
	}

	pair := orderID + "|" + paymentID
	if existing, ok := p.byPair[pair]; ok {
		return p.transactions[existing], nil
	}

	txn := Transaction{
		TransactionID: fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), tail(paymentID, 6)),
		OrderID:       orderID,
		PaymentID:     paymentID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		VerifiedAt:    time.Now(),
	}
	p.transactions[txn.TransactionID] = txn
	p.byPair[pair] = txn.TransactionID

	p.logger.Info("payment verified",
		zap.String("order_id", orderID),
		zap.String("transaction_id", txn.TransactionID))
	return txn, nil
}

// Lookup resolves a transaction id from the ledger.
func (p *Payments) Lookup(transactionID string) (Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	txn, ok := p.transactions[transactionID]
	return txn, ok
}

// SweepExpired drops orders past their TTL. Verified transactions are kept;
// the ledger is append-only.
func (p *Payments) SweepExpired() int {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, order := range p.orders {
		if p.expired(order, now) {
			delete(p.orders, id)
			removed++
		}
	}
	if removed > 0 {
		p.logger.Info("expired payment orders removed", zap.Int("count", removed))
	}
	return removed
}

func (p *Payments) expired(order Order, now time.Time) bool {
	return p.orderTTL > 0 && now.Sub(order.CreatedAt) > p.orderTTL
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
