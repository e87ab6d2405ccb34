// Package receivables is the customer sub-ledger: invoices, the payments
// applied to them and the payment reminder sweep.
package receivables

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

var (
	ErrAlreadyPaid        = errors.New("invoice already paid")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrUnresolvedCustomer = errors.New("customer could not be resolved")
)

// DefaultTerms is the due date offset for invoices created without one.
const DefaultTerms = 30 * 24 * time.Hour

// Publisher is the event bus as seen by a producer.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

// Service manages invoices.
type Service struct {
	invoices store.Collection[model.Invoice]
	bus      Publisher
	logger   *logrus.Logger
	now      func() time.Time
}

// New creates a receivables Service.
func New(invoices store.Collection[model.Invoice], bus Publisher, logger *logrus.Logger) *Service {
	return &Service{invoices: invoices, bus: bus, logger: logger, now: time.Now}
}

// InvoiceInput describes an invoice raised outside an order. Amount
// includes TaxAmount.
type InvoiceInput struct {
	CustomerID string
	Date       time.Time
	DueDate    time.Time // zero means Date + DefaultTerms
	Amount     decimal.Decimal
	TaxAmount  decimal.Decimal
}

// CreateInvoice records a stand-alone receivable and publishes
// InvoiceCreated so that the ledger books it. The invoice is kept even when
// posting fails.
func (s *Service) CreateInvoice(ctx context.Context, lock period.Lock, in InvoiceInput) (model.Invoice, error) {
	if in.Date.IsZero() {
		in.Date = s.now().UTC().Truncate(24 * time.Hour)
	}
	if err := lock.AssertUnlocked(in.Date); err != nil {
		return model.Invoice{}, err
	}
	if in.TaxAmount.IsNegative() || in.TaxAmount.GreaterThan(in.Amount) {
		return model.Invoice{}, fmt.Errorf("invoice tax %s of %s: %w", in.TaxAmount, in.Amount, ErrInvalidAmount)
	}

	inv, err := s.create(ctx, "", in)
	if err != nil {
		return model.Invoice{}, err
	}
	if err := s.bus.Publish(ctx, events.InvoiceCreated{Meta: events.Meta{Lock: lock}, Invoice: inv}); err != nil {
		return inv, fmt.Errorf("posting invoice %s: %w", inv.ID, err)
	}
	return inv, nil
}

func (s *Service) create(ctx context.Context, orderID string, in InvoiceInput) (model.Invoice, error) {
	if !in.Amount.IsPositive() {
		return model.Invoice{}, fmt.Errorf("invoice amount %s: %w", in.Amount, ErrInvalidAmount)
	}
	if in.DueDate.IsZero() {
		in.DueDate = in.Date.Add(DefaultTerms)
	}

	inv := model.Invoice{
		ID:         id.New(id.PrefixInvoice),
		OrderID:    orderID,
		CustomerID: in.CustomerID,
		Date:       in.Date,
		DueDate:    in.DueDate,
		Amount:     in.Amount.Round(2),
		TaxAmount:  in.TaxAmount.Round(2),
		BalanceDue: in.Amount.Round(2),
		Status:     model.InvoiceOpen,
	}
	if err := s.invoices.Add(ctx, inv); err != nil {
		return model.Invoice{}, fmt.Errorf("saving invoice: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"invoice": inv.ID, "order": orderID, "amount": inv.Amount.StringFixed(2)}).Info("invoice created")
	return inv, nil
}

// Register subscribes the service to OrderCreated so that every order with
// an outstanding balance gets an invoice.
func (s *Service) Register(bus *events.Bus) {
	bus.Subscribe(events.NameOrderCreated, "receivables.invoice", s.invoiceOrder)
}

func (s *Service) invoiceOrder(ctx context.Context, evt events.Event) error {
	ev, ok := evt.(events.OrderCreated)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}
	o := ev.Order
	due := o.Total.Sub(o.WalletAmount).Round(2)
	if !due.IsPositive() {
		return nil
	}
	_, err := s.create(ctx, o.ID, InvoiceInput{
		CustomerID: o.CustomerID,
		Date:       o.Date,
		Amount:     due,
		TaxAmount:  o.TaxAmount,
	})
	return err
}

// Get returns one invoice.
func (s *Service) Get(ctx context.Context, invoiceID string) (model.Invoice, error) {
	inv, err := s.invoices.Get(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", invoiceID, err)
	}
	return inv, nil
}

// List returns every invoice.
func (s *Service) List(ctx context.Context) ([]model.Invoice, error) {
	return s.invoices.GetAll(ctx)
}

// Outstanding returns invoices with a balance still due.
func (s *Service) Outstanding(ctx context.Context) ([]model.Invoice, error) {
	all, err := s.invoices.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Invoice
	for _, inv := range all {
		if inv.BalanceDue.IsPositive() && inv.Status != model.InvoicePaid {
			out = append(out, inv)
		}
	}
	return out, nil
}

// RecordPayment applies a payment to an invoice. The amount is clamped to the
// balance due. InvoicePaid is published after the invoice is saved.
func (s *Service) RecordPayment(ctx context.Context, lock period.Lock, invoiceID string, amount decimal.Decimal, method string, date time.Time) (model.Invoice, error) {
	if err := lock.AssertUnlocked(date); err != nil {
		return model.Invoice{}, err
	}
	if !amount.IsPositive() {
		return model.Invoice{}, fmt.Errorf("payment amount %s: %w", amount, ErrInvalidAmount)
	}

	inv, err := s.Get(ctx, invoiceID)
	if err != nil {
		return model.Invoice{}, err
	}
	if inv.Status == model.InvoicePaid || !inv.BalanceDue.IsPositive() {
		return inv, fmt.Errorf("invoice %s: %w", inv.ID, ErrAlreadyPaid)
	}

	applied := decimal.Min(amount.Round(2), inv.BalanceDue)
	pay := model.Payment{ID: id.New(id.PrefixPayment), Date: date, Amount: applied, Method: method}
	inv.Payments = append(inv.Payments, pay)
	inv.BalanceDue = inv.BalanceDue.Sub(applied)
	inv.Status = statusFor(inv.BalanceDue)

	if err := s.invoices.Update(ctx, inv); err != nil {
		return model.Invoice{}, fmt.Errorf("saving invoice %s: %w", inv.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"invoice": inv.ID,
		"amount":  applied.StringFixed(2),
		"status":  inv.Status,
	}).Info("invoice payment recorded")

	if err := s.bus.Publish(ctx, events.InvoicePaid{Meta: events.Meta{Lock: lock}, Invoice: inv, Payment: pay}); err != nil {
		return inv, fmt.Errorf("posting invoice payment: %w", err)
	}
	return inv, nil
}

func statusFor(balanceDue decimal.Decimal) model.InvoiceStatus {
	if balanceDue.IsPositive() {
		return model.InvoicePartial
	}
	return model.InvoicePaid
}
