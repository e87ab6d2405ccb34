package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/model"
)

// Header is the CSV header for journal.csv. One row per line; rows of the
// same entry share entry_id and are contiguous.
const Header = "entry_id,line,date,account_id,description,reference_type,reference_id,debit,credit,status,created_at"

const (
	numFields    = 11
	dateFormat   = "2006-01-02"
	colEntryID   = 0
	colLine      = 1
	colDate      = 2
	colAcctID    = 3
	colDesc      = 4
	colRefType   = 5
	colRefID     = 6
	colDebit     = 7
	colCredit    = 8
	colStatus    = 9
	colCreatedAt = 10
)

// ReadEntries reads all entries from a journal.csv reader.
func ReadEntries(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.JournalEntry
	for i, rec := range records[1:] {
		e, line, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		n := len(entries)
		if n > 0 && entries[n-1].ID == e.ID {
			entries[n-1].Lines = append(entries[n-1].Lines, line)
			continue
		}
		e.Lines = []model.JournalLine{line}
		entries = append(entries, e)
	}

	for i := range entries {
		entries[i].TotalAmount, _ = entries[i].Totals()
	}
	return entries, nil
}

// WriteEntries writes entries to a journal.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		for _, row := range MarshalEntry(e) {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing entry %s: %w", e.ID, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendEntry appends one entry to an existing journal.csv writer (no header).
func AppendEntry(w io.Writer, e model.JournalEntry) error {
	cw := csv.NewWriter(w)
	for _, row := range MarshalEntry(e) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalEntry converts an entry to one CSV row per line.
func MarshalEntry(e model.JournalEntry) [][]string {
	rows := make([][]string, 0, len(e.Lines))
	for i, l := range e.Lines {
		row := make([]string, numFields)
		row[colEntryID] = e.ID
		row[colLine] = strconv.Itoa(i + 1)
		row[colDate] = e.Date.Format(dateFormat)
		row[colAcctID] = l.AccountID
		row[colDesc] = e.Description
		row[colRefType] = string(e.ReferenceType)
		row[colRefID] = e.ReferenceID
		if !l.Debit.IsZero() {
			row[colDebit] = l.Debit.StringFixed(2)
		}
		if !l.Credit.IsZero() {
			row[colCredit] = l.Credit.StringFixed(2)
		}
		row[colStatus] = string(e.Status)
		row[colCreatedAt] = e.CreatedAt.UTC().Format(time.RFC3339)
		rows = append(rows, row)
	}
	return rows
}

func unmarshalRow(record []string) (model.JournalEntry, model.JournalLine, error) {
	if len(record) != numFields {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	createdAt, err := time.Parse(time.RFC3339, record[colCreatedAt])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	var debit, credit decimal.Decimal
	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}
	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	e := model.JournalEntry{
		ID:            record[colEntryID],
		Date:          date,
		Description:   record[colDesc],
		ReferenceType: model.ReferenceType(record[colRefType]),
		ReferenceID:   record[colRefID],
		Status:        model.EntryStatus(record[colStatus]),
		CreatedAt:     createdAt,
	}
	return e, model.JournalLine{AccountID: record[colAcctID], Debit: debit, Credit: credit}, nil
}
