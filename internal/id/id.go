// Package id formats journal entry numbers and record identifiers.
//
// Journal entries are numbered per month ("JE-2025-01-001") so the number
// alone tells which month file holds the entry. Every other record gets a
// prefixed random ID ("bill_3f0c...") generated from a UUIDv4.
package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prefix identifies the record type encoded in a record ID.
type Prefix string

const (
	PrefixAccount  Prefix = "acct"
	PrefixBill     Prefix = "bill"
	PrefixCredit   Prefix = "cred"
	PrefixCustomer Prefix = "cus"
	PrefixExpense  Prefix = "exp"
	PrefixInvoice  Prefix = "inv"
	PrefixOrder    Prefix = "ord"
	PrefixPayment  Prefix = "pay"
	PrefixVendor   Prefix = "ven"
)

const entryPrefix = "JE-"

// New returns a fresh record ID like "bill_9b2d4c0e5d1f4a7cb0d8e4b5a6c7d8e9".
func New(p Prefix) string {
	return string(p) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// HasPrefix reports whether s was produced by New(p).
func HasPrefix(s string, p Prefix) bool {
	return strings.HasPrefix(s, string(p)+"_")
}

// FormatEntryID returns an entry ID like "JE-2025-01-001".
func FormatEntryID(year, month, seq int) string {
	return fmt.Sprintf("%s%04d-%02d-%03d", entryPrefix, year, month, seq)
}

// ParseEntryID parses "JE-2025-01-001" into year, month, seq.
func ParseEntryID(s string) (year, month, seq int, err error) {
	if !strings.HasPrefix(s, entryPrefix) {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", s)
	}

	parts := strings.SplitN(strings.TrimPrefix(s, entryPrefix), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid entry ID format: %q", s)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in entry ID %q: %w", s, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in entry ID %q", s)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in entry ID %q: %w", s, err)
	}

	return year, month, seq, nil
}
