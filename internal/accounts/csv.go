package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/books/internal/model"
)

const (
	numFields   = 7
	colID       = 0
	colCode     = 1
	colName     = 2
	colType     = 3
	colSubtype  = 4
	colIsSystem = 5
	colDesc     = 6
)

// ReadAccounts reads chart-of-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"account_id", "code", "name", "type", "subtype", "is_system", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = strconv.Itoa(acct.Code)
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colSubtype] = acct.Subtype
	row[colIsSystem] = strconv.FormatBool(acct.IsSystem)
	row[colDesc] = acct.Description
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	code, err := strconv.Atoi(record[colCode])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing code %q: %w", record[colCode], err)
	}

	isSystem, err := strconv.ParseBool(record[colIsSystem])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing is_system %q: %w", record[colIsSystem], err)
	}

	typ := model.AccountType(record[colType])
	if !typ.Valid() {
		return model.Account{}, fmt.Errorf("unknown account type %q", record[colType])
	}

	return model.Account{
		ID:          record[colID],
		Code:        code,
		Name:        record[colName],
		Type:        typ,
		Subtype:     record[colSubtype],
		IsSystem:    isSystem,
		Description: record[colDesc],
	}, nil
}
