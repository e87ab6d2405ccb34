package journal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
)

// Tolerance is the largest debit/credit difference still treated as balanced.
var Tolerance = decimal.RequireFromString("0.05")

// ErrUnbalanced is matched by every *UnbalancedError.
var ErrUnbalanced = errors.New("journal entry does not balance")

// UnbalancedError reports the totals of an entry that failed the balance check.
type UnbalancedError struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("unbalanced entry: debits %s != credits %s",
		e.Debit.StringFixed(2), e.Credit.StringFixed(2))
}

// Unwrap lets errors.Is match ErrUnbalanced.
func (e *UnbalancedError) Unwrap() error { return ErrUnbalanced }

// ValidationError describes a single structural problem with an entry.
type ValidationError struct {
	Line        int // 1-based; 0 = whole entry
	Description string
}

func (e ValidationError) Error() string {
	if e.Line == 0 {
		return e.Description
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Description)
}

// ValidationErrors is the full set of problems found on one entry.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, ve := range v {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id string) bool
}

// ValidateEntry checks a candidate entry. Structural problems come back as
// ValidationErrors; a well-formed entry whose sides differ by more than
// Tolerance comes back as *UnbalancedError.
func ValidateEntry(e model.JournalEntry, accounts AccountChecker) error {
	var errs ValidationErrors

	if e.Date.IsZero() {
		errs = append(errs, ValidationError{Description: "date is required"})
	}
	if len(e.Lines) < 2 {
		errs = append(errs, ValidationError{Description: fmt.Sprintf("entry needs at least 2 lines, got %d", len(e.Lines))})
	}

	for i, l := range e.Lines {
		n := i + 1
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			errs = append(errs, ValidationError{Line: n, Description: "amounts must not be negative"})
		}
		if l.Debit.IsZero() && l.Credit.IsZero() {
			errs = append(errs, ValidationError{Line: n, Description: "line has neither debit nor credit"})
		}
		if !accounts.Exists(l.AccountID) {
			errs = append(errs, ValidationError{Line: n, Description: fmt.Sprintf("unknown account %q", l.AccountID)})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	debit, credit := e.Totals()
	if debit.Sub(credit).Abs().GreaterThan(Tolerance) {
		return &UnbalancedError{Debit: debit, Credit: credit}
	}
	return nil
}
