package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether balances of this type grow with debits.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Signed returns the balance contribution of one journal line.
// Asset and expense accounts accumulate debit - credit, all others credit - debit.
func (t AccountType) Signed(debit, credit decimal.Decimal) decimal.Decimal {
	if t.DebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	ID          string      `yaml:"id" json:"id"`
	Code        int         `yaml:"code" json:"code"`
	Name        string      `yaml:"name" json:"name"`
	Type        AccountType `yaml:"type" json:"type"`
	Subtype     string      `yaml:"subtype" json:"subtype"`
	IsSystem    bool        `yaml:"is_system" json:"isSystem"`
	Description string      `yaml:"description" json:"description"`
}

// AccountBalance is an account together with its derived balance.
type AccountBalance struct {
	Account `yaml:",inline"`
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
}
