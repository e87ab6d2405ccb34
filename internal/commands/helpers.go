package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/app"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/period"
)

const dateFormat = "2006-01-02"

// session is an opened books directory for one command run.
type session struct {
	*app.App
	lock period.Lock
}

func open(cmd *cobra.Command, dir string) (*session, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	a, err := app.Open(abs, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	lock, err := a.Lock()
	if err != nil {
		return nil, err
	}
	return &session{App: a, lock: lock}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a number", name, s)
	}
	return d, nil
}

func parseRange(from, to string) (journal.Range, error) {
	var r journal.Range
	var err error
	if from != "" {
		if r.From, err = parseDate(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = parseDate(to); err != nil {
			return r, err
		}
	}
	return r, nil
}

func addRangeFlags(cmd *cobra.Command, from, to *string) {
	cmd.Flags().StringVar(from, "from", "", "start date (YYYY-MM-DD), inclusive")
	cmd.Flags().StringVar(to, "to", "", "end date (YYYY-MM-DD), inclusive")
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
