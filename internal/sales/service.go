// Package sales is the order producer: it persists orders and announces
// them to the ledger.
package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/events"
	"github.com/cleared-dev/books/internal/id"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/period"
	"github.com/cleared-dev/books/internal/store"
)

// StatusCompleted marks an order that has been placed and announced.
const StatusCompleted = "completed"

var (
	ErrEmptyOrder    = errors.New("order has no amount")
	ErrInvalidAmount = errors.New("amount must not be negative")
	ErrWalletExceed  = errors.New("wallet amount exceeds order total")
)

// Publisher is the event bus as seen by a producer.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

// Service places orders.
type Service struct {
	orders store.Collection[model.Order]
	bus    Publisher
	logger *logrus.Logger
}

// New creates a sales Service.
func New(orders store.Collection[model.Order], bus Publisher, logger *logrus.Logger) *Service {
	return &Service{orders: orders, bus: bus, logger: logger}
}

// OrderInput describes an order. When Items are given and Subtotal is zero,
// the subtotal is the sum of quantity times unit price. A zero Total is
// subtotal plus tax plus shipping.
type OrderInput struct {
	CustomerID   string
	Date         time.Time
	Items        []model.OrderItem
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	WalletAmount decimal.Decimal
}

// PlaceOrder stores the order and publishes OrderCreated. The order stays
// placed even when a subscriber fails.
func (s *Service) PlaceOrder(ctx context.Context, lock period.Lock, in OrderInput) (model.Order, error) {
	if err := lock.AssertUnlocked(in.Date); err != nil {
		return model.Order{}, err
	}
	if err := checkAmounts(in); err != nil {
		return model.Order{}, err
	}

	subtotal := in.Subtotal
	if subtotal.IsZero() {
		for _, it := range in.Items {
			subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
		}
	}
	total := in.Total
	if total.IsZero() {
		total = subtotal.Add(in.TaxAmount).Add(in.ShippingCost)
	}
	if !total.IsPositive() {
		return model.Order{}, ErrEmptyOrder
	}
	if in.WalletAmount.GreaterThan(total) {
		return model.Order{}, fmt.Errorf("%s > %s: %w", in.WalletAmount, total, ErrWalletExceed)
	}

	order := model.Order{
		ID:           id.New(id.PrefixOrder),
		CustomerID:   in.CustomerID,
		Date:         in.Date,
		Items:        in.Items,
		Subtotal:     subtotal.Round(2),
		TaxAmount:    in.TaxAmount.Round(2),
		ShippingCost: in.ShippingCost.Round(2),
		Total:        total.Round(2),
		WalletAmount: in.WalletAmount.Round(2),
		Status:       StatusCompleted,
	}
	if err := s.orders.Add(ctx, order); err != nil {
		return model.Order{}, fmt.Errorf("saving order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"order": order.ID, "total": order.Total.StringFixed(2)}).Info("order placed")

	if err := s.bus.Publish(ctx, events.OrderCreated{Meta: events.Meta{Lock: lock}, Order: order}); err != nil {
		return order, fmt.Errorf("posting order %s: %w", order.ID, err)
	}
	return order, nil
}

// List returns every order.
func (s *Service) List(ctx context.Context) ([]model.Order, error) {
	return s.orders.GetAll(ctx)
}

func checkAmounts(in OrderInput) error {
	for _, f := range []struct {
		name   string
		amount decimal.Decimal
	}{
		{"subtotal", in.Subtotal},
		{"tax", in.TaxAmount},
		{"shipping", in.ShippingCost},
		{"total", in.Total},
		{"wallet", in.WalletAmount},
	} {
		if f.amount.IsNegative() {
			return fmt.Errorf("%s %s: %w", f.name, f.amount, ErrInvalidAmount)
		}
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 || it.UnitPrice.IsNegative() || (it.UnitCost != nil && it.UnitCost.IsNegative()) {
			return fmt.Errorf("item %s: %w", it.ProductID, ErrInvalidAmount)
		}
	}
	return nil
}
