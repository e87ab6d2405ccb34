package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the receivable lifecycle state.
type InvoiceStatus string

const (
	InvoiceOpen    InvoiceStatus = "open"
	InvoicePartial InvoiceStatus = "partial"
	InvoicePaid    InvoiceStatus = "paid"
)

// BillStatus is the payable lifecycle state.
type BillStatus string

const (
	BillPendingApproval BillStatus = "pending_approval"
	BillOpen            BillStatus = "open"
	BillPartial         BillStatus = "partial"
	BillPaid            BillStatus = "paid"
)

// ApprovalStatus records the maker-checker decision on a bill.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
)

// Payment is one settlement applied to an invoice or bill.
type Payment struct {
	ID        string          `yaml:"id" json:"id"`
	Date      time.Time       `yaml:"date" json:"date"`
	Amount    decimal.Decimal `yaml:"amount" json:"amount"`
	Method    string          `yaml:"method" json:"method"`
	Reference string          `yaml:"reference,omitempty" json:"reference,omitempty"`
}

// Invoice is a customer receivable.
type Invoice struct {
	ID                  string          `yaml:"id" json:"id"`
	OrderID             string          `yaml:"order_id,omitempty" json:"orderId,omitempty"`
	CustomerID          string          `yaml:"customer_id" json:"customerId"`
	Date                time.Time       `yaml:"date" json:"date"`
	DueDate             time.Time       `yaml:"due_date" json:"dueDate"`
	Amount              decimal.Decimal `yaml:"amount" json:"amount"`
	TaxAmount           decimal.Decimal `yaml:"tax_amount" json:"taxAmount"`
	BalanceDue          decimal.Decimal `yaml:"balance_due" json:"balanceDue"`
	Status              InvoiceStatus   `yaml:"status" json:"status"`
	Payments            []Payment       `yaml:"payments,omitempty" json:"payments"`
	LastPaymentReminder *time.Time      `yaml:"last_payment_reminder,omitempty" json:"lastPaymentReminder,omitempty"`
}

// RecordID implements store.Record.
func (i Invoice) RecordID() string { return i.ID }

// Bill is a vendor payable.
type Bill struct {
	ID             string          `yaml:"id" json:"id"`
	Date           time.Time       `yaml:"date" json:"date"`
	VendorID       string          `yaml:"vendor_id" json:"vendorId"`
	VendorName     string          `yaml:"vendor_name" json:"vendorName"`
	Category       string          `yaml:"category,omitempty" json:"category,omitempty"` // maps to an expense account; empty = COGS
	Description    string          `yaml:"description,omitempty" json:"description,omitempty"`
	Amount         decimal.Decimal `yaml:"amount" json:"amount"`
	BalanceDue     decimal.Decimal `yaml:"balance_due" json:"balanceDue"`
	Status         BillStatus      `yaml:"status" json:"status"`
	ApprovalStatus ApprovalStatus  `yaml:"approval_status" json:"approvalStatus"`
	Payments       []Payment       `yaml:"payments,omitempty" json:"payments"`
}

// RecordID implements store.Record.
func (b Bill) RecordID() string { return b.ID }

// Vendor is a supplier. BalanceDue is a cached projection kept by payables.
type Vendor struct {
	ID            string          `yaml:"id" json:"id"`
	Name          string          `yaml:"name" json:"name" validate:"required"`
	ContactPerson string          `yaml:"contact_person,omitempty" json:"contactPerson,omitempty"`
	Email         string          `yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Category      string          `yaml:"category,omitempty" json:"category,omitempty"`
	BalanceDue    decimal.Decimal `yaml:"balance_due" json:"balanceDue"`
}

// RecordID implements store.Record.
func (v Vendor) RecordID() string { return v.ID }

// Expense is a direct spend paid out of bank or cash.
type Expense struct {
	ID            string          `yaml:"id" json:"id"`
	Category      string          `yaml:"category" json:"category"`
	Amount        decimal.Decimal `yaml:"amount" json:"amount"`
	Description   string          `yaml:"description,omitempty" json:"description,omitempty"`
	PaymentMethod string          `yaml:"payment_method" json:"paymentMethod"`
	Date          time.Time       `yaml:"date" json:"date"`
	Status        string          `yaml:"status" json:"status"`
	Reference     string          `yaml:"reference,omitempty" json:"reference,omitempty"` // bank row key for imported expenses
}

// RecordID implements store.Record.
func (e Expense) RecordID() string { return e.ID }

// OrderItem is one line of a sale. UnitCost is nil when the real cost is unknown.
type OrderItem struct {
	ProductID string           `yaml:"product_id" json:"productId"`
	Name      string           `yaml:"name" json:"name"`
	Quantity  int64            `yaml:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal  `yaml:"unit_price" json:"unitPrice"`
	UnitCost  *decimal.Decimal `yaml:"unit_cost,omitempty" json:"unitCost,omitempty"`
}

// Order is a completed sale as seen by the ledger.
type Order struct {
	ID           string          `yaml:"id" json:"id"`
	CustomerID   string          `yaml:"customer_id" json:"customerId"`
	Date         time.Time       `yaml:"date" json:"date"`
	Items        []OrderItem     `yaml:"items,omitempty" json:"items"`
	Subtotal     decimal.Decimal `yaml:"subtotal" json:"subtotal"`
	TaxAmount    decimal.Decimal `yaml:"tax_amount" json:"taxAmount"`
	ShippingCost decimal.Decimal `yaml:"shipping_cost" json:"shippingCost"`
	Total        decimal.Decimal `yaml:"total" json:"total"`
	WalletAmount decimal.Decimal `yaml:"wallet_amount" json:"walletAmount"`
	Status       string          `yaml:"status" json:"status"`
}

// RecordID implements store.Record.
func (o Order) RecordID() string { return o.ID }

// ItemCost returns the known cost of goods for the order. ok is false when
// the order has no items or any item lacks a unit cost.
func (o Order) ItemCost() (cost decimal.Decimal, ok bool) {
	if len(o.Items) == 0 {
		return decimal.Zero, false
	}
	cost = decimal.Zero
	for _, it := range o.Items {
		if it.UnitCost == nil {
			return decimal.Zero, false
		}
		cost = cost.Add(it.UnitCost.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return cost, true
}

// Customer is the profile a receivable belongs to.
type Customer struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name" validate:"required"`
	Email string `yaml:"email" json:"email" validate:"omitempty,email"`
}

// RecordID implements store.Record.
func (c Customer) RecordID() string { return c.ID }
