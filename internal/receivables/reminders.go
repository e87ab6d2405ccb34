package receivables

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/store"
)

// CustomerResolver looks up the customer an invoice belongs to.
type CustomerResolver interface {
	Customer(ctx context.Context, customerID string) (model.Customer, error)
}

// Notifier delivers one payment reminder.
type Notifier interface {
	Remind(ctx context.Context, customer model.Customer, inv model.Invoice) error
}

// Directory resolves customers from a record collection.
type Directory struct {
	Customers store.Collection[model.Customer]
}

func (d Directory) Customer(ctx context.Context, customerID string) (model.Customer, error) {
	if customerID == "" {
		return model.Customer{}, ErrUnresolvedCustomer
	}
	c, err := d.Customers.Get(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Customer{}, fmt.Errorf("%s: %w", customerID, ErrUnresolvedCustomer)
	}
	return c, err
}

// LogNotifier "sends" reminders by logging them.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Remind(_ context.Context, c model.Customer, inv model.Invoice) error {
	n.Logger.WithFields(logrus.Fields{
		"customer": c.ID,
		"email":    c.Email,
		"invoice":  inv.ID,
		"due":      inv.BalanceDue.StringFixed(2),
		"dueDate":  inv.DueDate.Format("2006-01-02"),
	}).Info("payment reminder")
	return nil
}

// ReminderResult summarizes one sweep.
type ReminderResult struct {
	Sent    []string `json:"sent"`
	Skipped []string `json:"skipped"`
}

// SendReminders sends one reminder per outstanding invoice and stamps
// LastPaymentReminder. Invoices whose customer cannot be resolved, or whose
// reminder fails to send, are logged and skipped.
func (s *Service) SendReminders(ctx context.Context, resolver CustomerResolver, notifier Notifier) (ReminderResult, error) {
	var res ReminderResult

	open, err := s.Outstanding(ctx)
	if err != nil {
		return res, fmt.Errorf("listing outstanding invoices: %w", err)
	}

	for _, inv := range open {
		customer, err := resolver.Customer(ctx, inv.CustomerID)
		if err != nil {
			if !errors.Is(err, ErrUnresolvedCustomer) {
				err = fmt.Errorf("%w: %w", ErrUnresolvedCustomer, err)
			}
			logging.LogError(s.logger, "receivables", "SendReminders", inv.ID, inv.CustomerID, err)
			res.Skipped = append(res.Skipped, inv.ID)
			continue
		}

		if err := notifier.Remind(ctx, customer, inv); err != nil {
			logging.LogError(s.logger, "receivables", "SendReminders", inv.ID, customer.ID, err)
			res.Skipped = append(res.Skipped, inv.ID)
			continue
		}

		sent := s.now().UTC()
		inv.LastPaymentReminder = &sent
		if err := s.invoices.Update(ctx, inv); err != nil {
			return res, fmt.Errorf("saving invoice %s: %w", inv.ID, err)
		}
		res.Sent = append(res.Sent, inv.ID)
	}
	return res, nil
}
