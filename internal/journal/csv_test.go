package journal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
)

func sampleEntry(id string) model.JournalEntry {
	return model.JournalEntry{
		ID:            id,
		Date:          date(2025, 1, 15),
		Description:   "Order ord_1, with comma",
		ReferenceID:   "ord_1",
		ReferenceType: model.ReferenceOrder,
		Status:        model.StatusPosted,
		TotalAmount:   dec("1230"),
		CreatedAt:     time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		Lines: []model.JournalLine{
			dr("accounts_receivable", "1230"),
			cr("sales_revenue", "1000"),
			cr("tax_payable", "180"),
			cr("delivery_fee_income", "50"),
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	entries := []model.JournalEntry{sampleEntry("JE-2025-01-001"), sampleEntry("JE-2025-01-002")}

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, entries))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range entries {
		assert.Equal(t, entries[i].ID, got[i].ID)
		assert.Equal(t, entries[i].Description, got[i].Description)
		assert.Equal(t, entries[i].ReferenceType, got[i].ReferenceType)
		assert.Equal(t, entries[i].ReferenceID, got[i].ReferenceID)
		assert.True(t, entries[i].Date.Equal(got[i].Date))
		assert.True(t, entries[i].CreatedAt.Equal(got[i].CreatedAt))
		assert.True(t, got[i].TotalAmount.Equal(dec("1230")))
		require.Len(t, got[i].Lines, 4)
		for j, l := range entries[i].Lines {
			assert.Equal(t, l.AccountID, got[i].Lines[j].AccountID)
			assert.True(t, l.Debit.Equal(got[i].Lines[j].Debit))
			assert.True(t, l.Credit.Equal(got[i].Lines[j].Credit))
		}
	}
}

func TestMarshalEntry(t *testing.T) {
	rows := MarshalEntry(sampleEntry("JE-2025-01-001"))
	require.Len(t, rows, 4)
	assert.Equal(t, "1", rows[0][colLine])
	assert.Equal(t, "1230.00", rows[0][colDebit])
	assert.Empty(t, rows[0][colCredit])
	assert.Equal(t, "1000.00", rows[1][colCredit])
	assert.Empty(t, rows[1][colDebit])
	assert.Equal(t, "2025-01-15", rows[0][colDate])
}

func TestReadEntries_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad date", "JE-2025-01-001,1,15/01/2025,bank,d,order,o,1.00,,posted,2025-01-15T00:00:00Z"},
		{"bad debit", "JE-2025-01-001,1,2025-01-15,bank,d,order,o,abc,,posted,2025-01-15T00:00:00Z"},
		{"bad credit", "JE-2025-01-001,1,2025-01-15,bank,d,order,o,,x,posted,2025-01-15T00:00:00Z"},
		{"bad created_at", "JE-2025-01-001,1,2025-01-15,bank,d,order,o,1.00,,posted,yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEntries(strings.NewReader(Header + "\n" + tt.row + "\n"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadEntries_WrongFieldCount(t *testing.T) {
	_, err := ReadEntries(strings.NewReader(Header + "\na,b,c\n"))
	assert.Error(t, err)
}
