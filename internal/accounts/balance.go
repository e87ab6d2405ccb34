package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
)

// Balance derives one account's balance from a set of journal entries.
// Nothing is cached: every call scans all entries.
func Balance(acct model.Account, entries []model.JournalEntry) decimal.Decimal {
	bal := decimal.Zero
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.AccountID == acct.ID {
				bal = bal.Add(acct.Type.Signed(l.Debit, l.Credit))
			}
		}
	}
	return bal
}

// WithBalances pairs every account with its derived balance, preserving order.
func WithBalances(accts []model.Account, entries []model.JournalEntry) []model.AccountBalance {
	byID := make(map[string]decimal.Decimal, len(accts))
	types := make(map[string]model.AccountType, len(accts))
	for _, a := range accts {
		byID[a.ID] = decimal.Zero
		types[a.ID] = a.Type
	}
	for _, e := range entries {
		for _, l := range e.Lines {
			typ, ok := types[l.AccountID]
			if !ok {
				continue
			}
			byID[l.AccountID] = byID[l.AccountID].Add(typ.Signed(l.Debit, l.Credit))
		}
	}

	out := make([]model.AccountBalance, len(accts))
	for i, a := range accts {
		out[i] = model.AccountBalance{Account: a, Balance: byID[a.ID]}
	}
	return out
}
