// Package payables is the vendor sub-ledger. Bills below the approval
// threshold are approved on creation; larger bills wait for an explicit
// ApproveBill before anything is posted.
package payables

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
	ErrNotPendingApproval = errors.New("bill is not pending approval")
	ErrNotApproved        = errors.New("bill is not approved")
	ErrAlreadyPaid        = errors.New("bill already paid")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

// DefaultThreshold is the approval threshold used when none is configured.
var DefaultThreshold = decimal.NewFromInt(1000)

// Publisher is the event bus as seen by a producer.
type Publisher interface {
	Publish(ctx context.Context, evt events.Event) error
}

// Service manages vendors and bills.
type Service struct {
	vendors   store.Collection[model.Vendor]
	bills     store.Collection[model.Bill]
	bus       Publisher
	logger    *logrus.Logger
	threshold decimal.Decimal
}

// New creates a payables Service. A non-positive threshold uses DefaultThreshold.
func New(vendors store.Collection[model.Vendor], bills store.Collection[model.Bill], bus Publisher, logger *logrus.Logger, threshold decimal.Decimal) *Service {
	if !threshold.IsPositive() {
		threshold = DefaultThreshold
	}
	return &Service{vendors: vendors, bills: bills, bus: bus, logger: logger, threshold: threshold}
}

// Threshold returns the amount at or above which bills need approval.
func (s *Service) Threshold() decimal.Decimal { return s.threshold }

// AddVendor registers a vendor with a zero balance.
func (s *Service) AddVendor(ctx context.Context, v model.Vendor) (model.Vendor, error) {
	v.Name = strings.TrimSpace(v.Name)
	if err := model.Validate(v); err != nil {
		return model.Vendor{}, fmt.Errorf("vendor: %w", err)
	}
	if v.ID == "" {
		v.ID = id.New(id.PrefixVendor)
	}
	v.BalanceDue = decimal.Zero
	if err := s.vendors.Add(ctx, v); err != nil {
		return model.Vendor{}, fmt.Errorf("saving vendor: %w", err)
	}
	return v, nil
}

// Vendor returns one vendor.
func (s *Service) Vendor(ctx context.Context, vendorID string) (model.Vendor, error) {
	v, err := s.vendors.Get(ctx, vendorID)
	if err != nil {
		return model.Vendor{}, fmt.Errorf("vendor %s: %w", vendorID, err)
	}
	return v, nil
}

// Vendors returns every vendor.
func (s *Service) Vendors(ctx context.Context) ([]model.Vendor, error) {
	return s.vendors.GetAll(ctx)
}

// Bill returns one bill.
func (s *Service) Bill(ctx context.Context, billID string) (model.Bill, error) {
	b, err := s.bills.Get(ctx, billID)
	if err != nil {
		return model.Bill{}, fmt.Errorf("bill %s: %w", billID, err)
	}
	return b, nil
}

// Bills returns every bill.
func (s *Service) Bills(ctx context.Context) ([]model.Bill, error) {
	return s.bills.GetAll(ctx)
}

// BillInput describes a new bill.
type BillInput struct {
	VendorID    string
	Date        time.Time
	Category    string
	Description string
	Amount      decimal.Decimal
}

// CreateBill records a vendor bill. Bills under the threshold are approved
// and posted immediately.
func (s *Service) CreateBill(ctx context.Context, lock period.Lock, in BillInput) (model.Bill, error) {
	if err := lock.AssertUnlocked(in.Date); err != nil {
		return model.Bill{}, err
	}
	if !in.Amount.IsPositive() {
		return model.Bill{}, fmt.Errorf("bill amount %s: %w", in.Amount, ErrInvalidAmount)
	}
	vendor, err := s.Vendor(ctx, in.VendorID)
	if err != nil {
		return model.Bill{}, err
	}

	amount := in.Amount.Round(2)
	bill := model.Bill{
		ID:             id.New(id.PrefixBill),
		Date:           in.Date,
		VendorID:       vendor.ID,
		VendorName:     vendor.Name,
		Category:       in.Category,
		Description:    in.Description,
		Amount:         amount,
		BalanceDue:     amount,
		Status:         model.BillPendingApproval,
		ApprovalStatus: model.ApprovalPending,
	}
	if bill.Category == "" {
		bill.Category = vendor.Category
	}

	if amount.GreaterThanOrEqual(s.threshold) {
		if err := s.bills.Add(ctx, bill); err != nil {
			return model.Bill{}, fmt.Errorf("saving bill: %w", err)
		}
		s.logger.WithFields(logrus.Fields{"bill": bill.ID, "amount": amount.StringFixed(2)}).Info("bill awaiting approval")
		return bill, nil
	}

	bill.Status = model.BillOpen
	bill.ApprovalStatus = model.ApprovalApproved
	if err := s.bills.Add(ctx, bill); err != nil {
		return model.Bill{}, fmt.Errorf("saving bill: %w", err)
	}
	return bill, s.approved(ctx, lock, bill)
}

// ApproveBill approves a pending bill and posts it.
func (s *Service) ApproveBill(ctx context.Context, lock period.Lock, billID string) (model.Bill, error) {
	bill, err := s.Bill(ctx, billID)
	if err != nil {
		return model.Bill{}, err
	}
	if err := lock.AssertUnlocked(bill.Date); err != nil {
		return model.Bill{}, err
	}
	if bill.Status != model.BillPendingApproval {
		return bill, fmt.Errorf("bill %s is %s: %w", bill.ID, bill.Status, ErrNotPendingApproval)
	}

	bill.Status = model.BillOpen
	bill.ApprovalStatus = model.ApprovalApproved
	if err := s.bills.Update(ctx, bill); err != nil {
		return model.Bill{}, fmt.Errorf("saving bill %s: %w", bill.ID, err)
	}
	return bill, s.approved(ctx, lock, bill)
}

// approved raises the vendor balance and publishes BillApproved.
func (s *Service) approved(ctx context.Context, lock period.Lock, bill model.Bill) error {
	if err := s.adjustVendor(ctx, bill.VendorID, bill.Amount); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"bill": bill.ID, "amount": bill.Amount.StringFixed(2)}).Info("bill approved")
	if err := s.bus.Publish(ctx, events.BillApproved{Meta: events.Meta{Lock: lock}, Bill: bill}); err != nil {
		return fmt.Errorf("posting bill %s: %w", bill.ID, err)
	}
	return nil
}

// PayBill applies a payment to an approved bill. The amount is clamped to
// the balance due and the vendor balance drops by the applied amount.
func (s *Service) PayBill(ctx context.Context, lock period.Lock, billID string, amount decimal.Decimal, method string, date time.Time) (model.Bill, error) {
	if err := lock.AssertUnlocked(date); err != nil {
		return model.Bill{}, err
	}
	if !amount.IsPositive() {
		return model.Bill{}, fmt.Errorf("payment amount %s: %w", amount, ErrInvalidAmount)
	}

	bill, err := s.Bill(ctx, billID)
	if err != nil {
		return model.Bill{}, err
	}
	switch {
	case bill.Status == model.BillPendingApproval:
		return bill, fmt.Errorf("bill %s: %w", bill.ID, ErrNotApproved)
	case bill.Status == model.BillPaid || !bill.BalanceDue.IsPositive():
		return bill, fmt.Errorf("bill %s: %w", bill.ID, ErrAlreadyPaid)
	}

	applied := decimal.Min(amount.Round(2), bill.BalanceDue)
	pay := model.Payment{ID: id.New(id.PrefixPayment), Date: date, Amount: applied, Method: method}
	bill.Payments = append(bill.Payments, pay)
	bill.BalanceDue = bill.BalanceDue.Sub(applied)
	bill.Status = model.BillPartial
	if !bill.BalanceDue.IsPositive() {
		bill.Status = model.BillPaid
	}

	if err := s.bills.Update(ctx, bill); err != nil {
		return model.Bill{}, fmt.Errorf("saving bill %s: %w", bill.ID, err)
	}
	if err := s.adjustVendor(ctx, bill.VendorID, applied.Neg()); err != nil {
		return bill, err
	}

	s.logger.WithFields(logrus.Fields{
		"bill":   bill.ID,
		"amount": applied.StringFixed(2),
		"status": bill.Status,
	}).Info("bill payment recorded")

	if err := s.bus.Publish(ctx, events.BillPaid{Meta: events.Meta{Lock: lock}, Bill: bill, Payment: pay}); err != nil {
		return bill, fmt.Errorf("posting bill payment: %w", err)
	}
	return bill, nil
}

// CreditInput describes a vendor credit note.
type CreditInput struct {
	VendorID string
	Amount   decimal.Decimal
	Category string
	Reason   string
	Date     time.Time
}

// CreditVendor reduces what we owe a vendor and publishes VendorCredited.
// It returns the credit ID.
func (s *Service) CreditVendor(ctx context.Context, lock period.Lock, in CreditInput) (string, error) {
	if err := lock.AssertUnlocked(in.Date); err != nil {
		return "", err
	}
	if !in.Amount.IsPositive() {
		return "", fmt.Errorf("credit amount %s: %w", in.Amount, ErrInvalidAmount)
	}
	vendor, err := s.Vendor(ctx, in.VendorID)
	if err != nil {
		return "", err
	}

	amount := in.Amount.Round(2)
	if err := s.adjustVendor(ctx, vendor.ID, amount.Neg()); err != nil {
		return "", err
	}

	creditID := id.New(id.PrefixCredit)
	category := in.Category
	if category == "" {
		category = vendor.Category
	}
	evt := events.VendorCredited{
		Meta:     events.Meta{Lock: lock},
		VendorID: vendor.ID,
		Amount:   amount,
		Category: category,
		Reason:   in.Reason,
		Date:     in.Date,
		CreditID: creditID,
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		return creditID, fmt.Errorf("posting vendor credit: %w", err)
	}
	return creditID, nil
}

func (s *Service) adjustVendor(ctx context.Context, vendorID string, delta decimal.Decimal) error {
	v, err := s.Vendor(ctx, vendorID)
	if err != nil {
		return err
	}
	v.BalanceDue = v.BalanceDue.Add(delta)
	if err := s.vendors.Update(ctx, v); err != nil {
		return fmt.Errorf("saving vendor %s: %w", v.ID, err)
	}
	return nil
}
