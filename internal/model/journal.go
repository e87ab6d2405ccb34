package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceType names the kind of business record a journal entry came from.
type ReferenceType string

const (
	ReferenceOrder      ReferenceType = "order"
	ReferenceBill       ReferenceType = "bill"
	ReferenceInvoice    ReferenceType = "invoice"
	ReferencePayment    ReferenceType = "payment"
	ReferenceAdjustment ReferenceType = "adjustment"
)

// EntryStatus represents the lifecycle state of a journal entry.
type EntryStatus string

// StatusPosted is the only status an entry can have: entries are never edited.
const StatusPosted EntryStatus = "posted"

// JournalLine is one side of a double-entry posting.
type JournalLine struct {
	AccountID string          `json:"accountId"`
	Debit     decimal.Decimal `json:"debit"`  // zero if credit side
	Credit    decimal.Decimal `json:"credit"` // zero if debit side
}

// JournalEntry is an immutable, balanced set of lines.
type JournalEntry struct {
	ID            string          `json:"id"` // "YYYY-MM-NNN"
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	ReferenceID   string          `json:"referenceId"`
	ReferenceType ReferenceType   `json:"referenceType"`
	Lines         []JournalLine   `json:"lines"`
	Status        EntryStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Totals returns the summed debits and credits of the entry.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Touches reports whether any line references accountID.
func (e JournalEntry) Touches(accountID string) bool {
	for _, l := range e.Lines {
		if l.AccountID == accountID {
			return true
		}
	}
	return false
}
