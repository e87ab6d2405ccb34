package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/books/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: Bank, Code: 1010, Name: "Bank", Type: model.AccountTypeAsset, Subtype: "bank", IsSystem: true, Description: "Primary bank, account"},
		{ID: "acct_x", Code: 6700, Name: "Travel", Type: model.AccountTypeExpense},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_BadRows(t *testing.T) {
	header := "account_id,code,name,type,subtype,is_system,description\n"
	tests := []struct {
		name string
		row  string
	}{
		{"bad code", "bank,abc,Bank,asset,,true,\n"},
		{"bad bool", "bank,1010,Bank,asset,,maybe,\n"},
		{"bad type", "bank,1010,Bank,revenue,,true,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(header + tt.row))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart("sole_trader")

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, chart))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}
