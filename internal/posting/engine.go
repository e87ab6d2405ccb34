// Package posting translates business events into balanced journal entries.
// Each event type has exactly one rule; producers never write the journal.
package posting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/events"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/period"
)

// ErrMissingMapping is logged when a category has no matching account and the
// rule falls back to its default account.
var ErrMissingMapping = errors.New("no account mapping")

// DefaultCOGSRatio is the share of subtotal booked as cost of goods when an
// order does not carry real item costs.
var DefaultCOGSRatio = decimal.RequireFromString("0.4")

// Journal is the part of the journal store the engine posts through.
type Journal interface {
	Post(ctx context.Context, lock period.Lock, candidate model.JournalEntry) (model.JournalEntry, error)
	Accounts() *accounts.Service
}

// Engine holds the posting rules.
type Engine struct {
	journal   Journal
	logger    *logrus.Logger
	cogsRatio decimal.Decimal
}

// New creates an Engine. A non-positive ratio uses DefaultCOGSRatio.
func New(j Journal, logger *logrus.Logger, cogsRatio decimal.Decimal) *Engine {
	if !cogsRatio.IsPositive() {
		cogsRatio = DefaultCOGSRatio
	}
	return &Engine{journal: j, logger: logger, cogsRatio: cogsRatio}
}

// Register subscribes one handler per event type.
func (e *Engine) Register(bus *events.Bus) {
	bus.Subscribe(events.NameOrderCreated, "posting.order", e.handle(e.OrderCreated))
	bus.Subscribe(events.NameBillApproved, "posting.bill_approved", e.handle(e.BillApproved))
	bus.Subscribe(events.NameBillPaid, "posting.bill_paid", e.handle(e.BillPaid))
	bus.Subscribe(events.NameVendorCredited, "posting.vendor_credit", e.handle(e.VendorCredited))
	bus.Subscribe(events.NameExpenseAdded, "posting.expense", e.handle(e.ExpenseAdded))
	bus.Subscribe(events.NameInvoiceCreated, "posting.invoice_created", e.handle(e.InvoiceCreated))
	bus.Subscribe(events.NameInvoicePaid, "posting.invoice_paid", e.handle(e.InvoicePaid))
}

// handle adapts a typed rule to an events.Handler.
func (e *Engine) handle(rule func(context.Context, events.Event) ([]model.JournalEntry, error)) events.Handler {
	return func(ctx context.Context, evt events.Event) error {
		_, err := rule(ctx, evt)
		return err
	}
}

// OrderCreated posts the revenue entry, the cost of goods entry and, for
// wallet-funded orders, the wallet settlement.
func (e *Engine) OrderCreated(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.OrderCreated)
	if !ok {
		return nil, unexpected(evt)
	}
	o := ev.Order
	var posted []model.JournalEntry

	total := round(o.Total)
	if total.IsPositive() {
		lines := []model.JournalLine{debit(accounts.AccountsReceivable, total)}
		lines = appendCredit(lines, accounts.SalesRevenue, round(o.Subtotal))
		lines = appendCredit(lines, accounts.TaxPayable, round(o.TaxAmount))
		lines = appendCredit(lines, accounts.DeliveryIncome, round(o.ShippingCost))

		residual := total.Sub(round(o.Subtotal)).Sub(round(o.TaxAmount)).Sub(round(o.ShippingCost))
		if residual.Abs().GreaterThan(journal.Tolerance) {
			e.logger.WithFields(logrus.Fields{
				"order":    o.ID,
				"total":    total.StringFixed(2),
				"residual": residual.StringFixed(2),
			}).Warn("order total differs from its components; booking the difference to other income")
		}
		switch {
		case residual.IsPositive():
			lines = append(lines, credit(accounts.OtherIncome, residual))
		case residual.IsNegative():
			lines = append(lines, debit(accounts.OtherIncome, residual.Neg()))
		}

		je, err := e.post(ctx, ev.Lock, model.JournalEntry{
			Date:          o.Date,
			Description:   fmt.Sprintf("Sale %s", o.ID),
			ReferenceID:   o.ID,
			ReferenceType: model.ReferenceOrder,
			Lines:         lines,
		})
		if err != nil {
			return posted, fmt.Errorf("posting revenue for order %s: %w", o.ID, err)
		}
		posted = append(posted, je)
	}

	cost, known := o.ItemCost()
	if !known {
		cost = o.Subtotal.Mul(e.cogsRatio)
	}
	if cost = round(cost); cost.IsPositive() {
		je, err := e.post(ctx, ev.Lock, model.JournalEntry{
			Date:          o.Date,
			Description:   fmt.Sprintf("Cost of goods for %s", o.ID),
			ReferenceID:   o.ID,
			ReferenceType: model.ReferenceOrder,
			Lines:         []model.JournalLine{debit(accounts.COGS, cost), credit(accounts.Inventory, cost)},
		})
		if err != nil {
			return posted, fmt.Errorf("posting cost of goods for order %s: %w", o.ID, err)
		}
		posted = append(posted, je)
	}

	if wallet := round(o.WalletAmount); wallet.IsPositive() {
		je, err := e.post(ctx, ev.Lock, model.JournalEntry{
			Date:          o.Date,
			Description:   fmt.Sprintf("Wallet payment for %s", o.ID),
			ReferenceID:   o.ID,
			ReferenceType: model.ReferencePayment,
			Lines:         []model.JournalLine{debit(accounts.WalletCredits, wallet), credit(accounts.AccountsReceivable, wallet)},
		})
		if err != nil {
			return posted, fmt.Errorf("posting wallet payment for order %s: %w", o.ID, err)
		}
		posted = append(posted, je)
	}
	return posted, nil
}

// BillApproved books the liability: Dr COGS or the mapped expense, Cr AP.
func (e *Engine) BillApproved(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.BillApproved)
	if !ok {
		return nil, unexpected(evt)
	}
	b := ev.Bill
	amount := round(b.Amount)
	target := e.costAccount(b.Category, "BillApproved", b.ID)

	desc := fmt.Sprintf("Bill from %s", b.VendorName)
	if b.Description != "" {
		desc += ": " + b.Description
	}
	je, err := e.post(ctx, ev.Lock, model.JournalEntry{
		Date:          b.Date,
		Description:   desc,
		ReferenceID:   b.ID,
		ReferenceType: model.ReferenceBill,
		Lines:         []model.JournalLine{debit(target, amount), credit(accounts.AccountsPayable, amount)},
	})
	if err != nil {
		return nil, fmt.Errorf("posting bill %s: %w", b.ID, err)
	}
	return []model.JournalEntry{je}, nil
}

// BillPaid settles the liability out of the bank: Dr AP, Cr Bank.
func (e *Engine) BillPaid(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.BillPaid)
	if !ok {
		return nil, unexpected(evt)
	}
	amount := round(ev.Payment.Amount)
	je, err := e.post(ctx, ev.Lock, model.JournalEntry{
		Date:          ev.Payment.Date,
		Description:   fmt.Sprintf("Payment to %s", ev.Bill.VendorName),
		ReferenceID:   ev.Bill.ID,
		ReferenceType: model.ReferencePayment,
		Lines:         []model.JournalLine{debit(accounts.AccountsPayable, amount), credit(accounts.Bank, amount)},
	})
	if err != nil {
		return nil, fmt.Errorf("posting payment %s for bill %s: %w", ev.Payment.ID, ev.Bill.ID, err)
	}
	return []model.JournalEntry{je}, nil
}

// VendorCredited reverses cost against the payable: Dr AP, Cr COGS or the
// mapped expense.
func (e *Engine) VendorCredited(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.VendorCredited)
	if !ok {
		return nil, unexpected(evt)
	}
	amount := round(ev.Amount)
	target := e.costAccount(ev.Category, "VendorCredited", ev.CreditID)

	desc := "Vendor credit"
	if ev.Reason != "" {
		desc += ": " + ev.Reason
	}
	je, err := e.post(ctx, ev.Lock, model.JournalEntry{
		Date:          ev.Date,
		Description:   desc,
		ReferenceID:   ev.CreditID,
		ReferenceType: model.ReferenceAdjustment,
		Lines:         []model.JournalLine{debit(accounts.AccountsPayable, amount), credit(target, amount)},
	})
	if err != nil {
		return nil, fmt.Errorf("posting vendor credit %s: %w", ev.CreditID, err)
	}
	return []model.JournalEntry{je}, nil
}

// ExpenseAdded books a direct spend: Dr the category's expense account, Cr
// Cash or Bank by payment method.
func (e *Engine) ExpenseAdded(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.ExpenseAdded)
	if !ok {
		return nil, unexpected(evt)
	}
	x := ev.Expense
	amount := round(x.Amount)

	target := accounts.GeneralExpense
	if acct, found := e.journal.Accounts().MatchExpense(x.Category); found {
		target = acct.ID
	} else {
		e.missing("ExpenseAdded", x.ID, x.Category, target)
	}

	desc := x.Category
	if x.Description != "" {
		desc = x.Description
	}
	je, err := e.post(ctx, ev.Lock, model.JournalEntry{
		Date:          x.Date,
		Description:   desc,
		ReferenceID:   x.ID,
		ReferenceType: model.ReferencePayment,
		Lines:         []model.JournalLine{debit(target, amount), credit(settlementAccount(x.PaymentMethod), amount)},
	})
	if err != nil {
		return nil, fmt.Errorf("posting expense %s: %w", x.ID, err)
	}
	return []model.JournalEntry{je}, nil
}

// InvoiceCreated books a stand-alone invoice: Dr AR, Cr Sales and Cr Tax
// Payable for the tax share.
func (e *Engine) InvoiceCreated(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.InvoiceCreated)
	if !ok {
		return nil, unexpected(evt)
	}
	inv := ev.Invoice
	amount := round(inv.Amount)
	tax := round(inv.TaxAmount)
	lines := []model.JournalLine{debit(accounts.AccountsReceivable, amount)}
	lines = appendCredit(lines, accounts.SalesRevenue, amount.Sub(tax))
	lines = appendCredit(lines, accounts.TaxPayable, tax)

	je, err := e.post(ctx, ev.Lock, model.JournalEntry{
		Date:          inv.Date,
		Description:   fmt.Sprintf("Invoice %s", inv.ID),
		ReferenceID:   inv.ID,
		ReferenceType: model.ReferenceInvoice,
		Lines:         lines,
	})
	if err != nil {
		return nil, fmt.Errorf("posting invoice %s: %w", inv.ID, err)
	}
	return []model.JournalEntry{je}, nil
}

// InvoicePaid collects the receivable: Dr Cash or Bank, Cr AR.
func (e *Engine) InvoicePaid(ctx context.Context, evt events.Event) ([]model.JournalEntry, error) {
	ev, ok := evt.(events.InvoicePaid)
	if !ok {
		return nil, unexpected(evt)
	}
	amount := round(ev.Payment.Amount)
	je, err := e.post(ctx, ev.Lock, model.JournalEntry{
		Date:          ev.Payment.Date,
		Description:   fmt.Sprintf("Payment received for %s", ev.Invoice.ID),
		ReferenceID:   ev.Invoice.ID,
		ReferenceType: model.ReferencePayment,
		Lines: []model.JournalLine{
			debit(settlementAccount(ev.Payment.Method), amount),
			credit(accounts.AccountsReceivable, amount),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("posting payment %s for invoice %s: %w", ev.Payment.ID, ev.Invoice.ID, err)
	}
	return []model.JournalEntry{je}, nil
}

func (e *Engine) post(ctx context.Context, lock period.Lock, candidate model.JournalEntry) (model.JournalEntry, error) {
	je, err := e.journal.Post(ctx, lock, candidate)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.logger.WithFields(logrus.Fields{
		"entry":     je.ID,
		"reference": je.ReferenceID,
		"amount":    je.TotalAmount.StringFixed(2),
	}).Info("posted journal entry")
	return je, nil
}

// costAccount maps a bill or credit category to an account. An empty category
// means cost of goods; an unknown one falls back to COGS and is logged.
func (e *Engine) costAccount(category, funcName, ref string) string {
	if strings.TrimSpace(category) == "" {
		return accounts.COGS
	}
	if acct, ok := e.journal.Accounts().MatchExpense(category); ok {
		return acct.ID
	}
	e.missing(funcName, ref, category, accounts.COGS)
	return accounts.COGS
}

func (e *Engine) missing(funcName, ref, category, fallback string) {
	e.logger.WithFields(logrus.Fields{
		"module":   "posting",
		"funcName": funcName,
		"context":  ref,
		"category": category,
		"fallback": fallback,
	}).Warn(ErrMissingMapping.Error())
}

// settlementAccount picks the cash account for a payment method.
func settlementAccount(method string) string {
	if strings.EqualFold(strings.TrimSpace(method), "cash") {
		return accounts.Cash
	}
	return accounts.Bank
}

func debit(acct string, amount decimal.Decimal) model.JournalLine {
	return model.JournalLine{AccountID: acct, Debit: amount}
}

func credit(acct string, amount decimal.Decimal) model.JournalLine {
	return model.JournalLine{AccountID: acct, Credit: amount}
}

func appendCredit(lines []model.JournalLine, acct string, amount decimal.Decimal) []model.JournalLine {
	if !amount.IsPositive() {
		return lines
	}
	return append(lines, credit(acct, amount))
}

func round(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func unexpected(evt events.Event) error {
	return fmt.Errorf("unexpected event %T (%s)", evt, evt.EventName())
}
