package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/period"
)

// Event names.
const (
	NameOrderCreated   = "OrderCreated"
	NameBillApproved   = "BillApproved"
	NameBillPaid       = "BillPaid"
	NameVendorCredited = "VendorCredited"
	NameExpenseAdded   = "ExpenseAdded"
	NameInvoiceCreated = "InvoiceCreated"
	NameInvoicePaid    = "InvoicePaid"
)

// Event is a completed business action published by a producer module.
type Event interface {
	EventName() string
	// PostingLock is the period lock the producer ran under; consumers that
	// post must honor the same lock.
	PostingLock() period.Lock
}

// Meta is embedded in every event.
type Meta struct {
	Lock period.Lock
}

func (m Meta) PostingLock() period.Lock { return m.Lock }

// OrderCreated is published once an order is persisted.
type OrderCreated struct {
	Meta
	Order model.Order
}

func (OrderCreated) EventName() string { return NameOrderCreated }

// BillApproved is published when a bill clears approval, automatically or not.
type BillApproved struct {
	Meta
	Bill model.Bill
}

func (BillApproved) EventName() string { return NameBillApproved }

// BillPaid is published for each payment applied to a bill.
type BillPaid struct {
	Meta
	Bill    model.Bill
	Payment model.Payment
}

func (BillPaid) EventName() string { return NameBillPaid }

// VendorCredited is published when a vendor issues a credit against what we owe.
type VendorCredited struct {
	Meta
	VendorID string
	Amount   decimal.Decimal
	Category string // expense account to reverse; empty = COGS
	Reason   string
	Date     time.Time
	CreditID string
}

func (VendorCredited) EventName() string { return NameVendorCredited }

// ExpenseAdded is published for every recorded expense.
type ExpenseAdded struct {
	Meta
	Expense model.Expense
}

func (ExpenseAdded) EventName() string { return NameExpenseAdded }

// InvoiceCreated is published for invoices raised outside an order. Order
// invoices are not announced: the order's own entry books the receivable.
type InvoiceCreated struct {
	Meta
	Invoice model.Invoice
}

func (InvoiceCreated) EventName() string { return NameInvoiceCreated }

// InvoicePaid is published for each payment applied to an invoice.
type InvoicePaid struct {
	Meta
	Invoice model.Invoice
	Payment model.Payment
}

func (InvoicePaid) EventName() string { return NameInvoicePaid }
