// Package checkout validates submitted carts, computes the authoritative
// order total and records the order atomically.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/urbanthread/storefront/internal/app/domain/order"
	"github.com/urbanthread/storefront/internal/app/metrics"
	"github.com/urbanthread/storefront/internal/app/storage"
	"github.com/urbanthread/storefront/pkg/logger"
)

// Pricing constants. Shipping is a flat fee charged on any non-empty cart;
// tax applies to the subtotal only, without compounding over shipping.
const (
	ShippingFlat = 5.00
	TaxRate      = 0.10
)

var (
	// ErrEmptyCart is returned when the submission carries no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrMissingField is returned when payment method, shipping address or
	// email is absent or invalid.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidItem is returned when a line item carries an unusable price.
	ErrInvalidItem = errors.New("invalid cart item")
)

// Submission is a validated-shape checkout request. Prices and the declared
// total come from the client and are treated as untrusted display data; the
// persisted amount is always recomputed here.
type Submission struct {
	Items           []order.LineItem
	PaymentMethod   string
	ShippingAddress string
	Email           string
	DeclaredTotal   float64
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	OrderID     int64     `json:"order_id"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service is the checkout transaction engine.
type Service struct {
	orders storage.OrderStore
	log    *logger.Logger
}

// New creates a configured checkout service.
func New(orders storage.OrderStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("checkout")
	}
	return &Service{orders: orders, log: log}
}

// Submit runs the full checkout flow: validation, total computation and the
// atomic persistence of the order with its sales-counter updates. Validation
// failures reject the submission before any storage interaction; storage
// failures roll back in full inside the store.
func (s *Service) Submit(ctx context.Context, sub Submission) (Receipt, error) {
	start := time.Now()

	items, err := validate(sub)
	if err != nil {
		metrics.RecordCheckout("rejected", time.Since(start))
		return Receipt{}, err
	}

	total := ComputeTotal(items)
	if sub.DeclaredTotal != 0 && math.Abs(sub.DeclaredTotal-total) > 0.005 {
		// The client-declared amount is never persisted; a mismatch is only
		// worth noting.
		s.log.WithField("declared", sub.DeclaredTotal).
			WithField("computed", total).
			Warn("client-declared total differs from computed total")
	}

	ord := order.Order{
		ProductID:       items[0].ProductID,
		TotalAmount:     total,
		PaymentMethod:   sub.PaymentMethod,
		ShippingAddress: strings.TrimSpace(sub.ShippingAddress),
		Email:           strings.TrimSpace(sub.Email),
		Items:           items,
	}

	recorded, err := s.orders.RecordCheckout(ctx, ord)
	if err != nil {
		metrics.RecordCheckout("failed", time.Since(start))
		s.log.WithError(err).Error("checkout persistence failed")
		return Receipt{}, fmt.Errorf("record checkout: %w", err)
	}

	metrics.RecordCheckout("succeeded", time.Since(start))
	s.log.WithField("order_id", recorded.ID).
		WithField("total_amount", recorded.TotalAmount).
		WithField("items", len(recorded.Items)).
		Info("checkout recorded")

	return Receipt{
		OrderID:     recorded.ID,
		TotalAmount: recorded.TotalAmount,
		CreatedAt:   recorded.CreatedAt,
	}, nil
}

// ComputeTotal returns the authoritative order total for the items:
// subtotal plus flat shipping on non-empty carts plus 10% tax, rounded to
// two decimals at the end.
func ComputeTotal(items []order.LineItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	var shipping float64
	if subtotal > 0 {
		shipping = ShippingFlat
	}
	tax := subtotal * TaxRate

	return round2(subtotal + shipping + tax)
}

// validate checks the submission shape and normalizes line items. Items with
// no usable product id are kept (their counter update is skipped later);
// quantity defaults to 1 when absent or non-positive.
func validate(sub Submission) ([]order.LineItem, error) {
	if len(sub.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if !order.ValidPaymentMethod(sub.PaymentMethod) {
		return nil, fmt.Errorf("%w: payment method must be %s or %s",
			ErrMissingField, order.PaymentCreditCard, order.PaymentPayPal)
	}
	if strings.TrimSpace(sub.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: shipping address", ErrMissingField)
	}
	if strings.TrimSpace(sub.Email) == "" {
		return nil, fmt.Errorf("%w: email", ErrMissingField)
	}

	items := make([]order.LineItem, len(sub.Items))
	for i, item := range sub.Items {
		if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
			return nil, fmt.Errorf("%w: item %d has an invalid price", ErrInvalidItem, i)
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.ProductID < 0 {
			item.ProductID = 0
		}
		items[i] = item
	}
	return items, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
