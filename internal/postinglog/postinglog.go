// Package postinglog keeps logs/posting-log.csv, one row per event handler
// run, so that failed postings can be found and replayed by hand.
package postinglog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cleared-dev/books/internal/events"
	"github.com/cleared-dev/books/internal/logging"
)

// Outcomes recorded in the log.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Path is the log location relative to the books root.
const Path = "logs/posting-log.csv"

var header = []string{"timestamp", "event", "handler", "reference", "outcome", "error", "duration_ms"}

// Entry is one row in the posting log.
type Entry struct {
	Timestamp  time.Time
	Event      string
	Handler    string
	Reference  string
	Outcome    string
	Error      string
	DurationMs int64
}

// Log appends entries to <root>/logs/posting-log.csv.
type Log struct {
	mu     sync.Mutex
	path   string
	logger *logrus.Logger
	now    func() time.Time
}

// New returns a Log rooted at a books directory.
func New(root string, logger *logrus.Logger) *Log {
	return &Log{path: filepath.Join(root, Path), logger: logger, now: time.Now}
}

// Observer returns a bus observer writing every handler outcome to the log.
// Write failures are logged, never returned.
func (l *Log) Observer() events.Observer {
	return func(_ context.Context, evt events.Event, o events.Outcome) {
		e := Entry{
			Timestamp:  l.now().UTC().Truncate(time.Second),
			Event:      o.Event,
			Handler:    o.Handler,
			Reference:  Reference(evt),
			Outcome:    OutcomeOK,
			DurationMs: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			e.Outcome = OutcomeFailed
			e.Error = o.Err.Error()
		}
		if err := l.Append(e); err != nil {
			logging.LogError(l.logger, "postinglog", "Observer", o.Handler, e.Reference, err)
		}
	}
}

// Reference returns the ID of the record an event is about.
func Reference(evt events.Event) string {
	switch ev := evt.(type) {
	case events.OrderCreated:
		return ev.Order.ID
	case events.BillApproved:
		return ev.Bill.ID
	case events.BillPaid:
		return ev.Payment.ID
	case events.VendorCredited:
		return ev.CreditID
	case events.ExpenseAdded:
		return ev.Expense.ID
	case events.InvoicePaid:
		return ev.Payment.ID
	default:
		return ""
	}
}

// Append writes entries, creating the file and header if needed.
func (l *Log) Append(entries ...Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	_, statErr := os.Stat(l.path)
	needsHeader := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening posting log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, e := range entries {
		if err := cw.Write(marshal(e)); err != nil {
			return fmt.Errorf("writing %s/%s: %w", e.Event, e.Handler, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry, or nil if the log does not exist yet.
func (l *Log) Read() ([]Entry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening posting log: %w", err)
	}
	defer f.Close()
	return read(f)
}

// Failures returns only the failed entries.
func (l *Log) Failures() ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, e := range all {
		if e.Outcome == OutcomeFailed {
			out = append(out, e)
		}
	}
	return out, nil
}

func marshal(e Entry) []string {
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.Event,
		e.Handler,
		e.Reference,
		e.Outcome,
		e.Error,
		strconv.FormatInt(e.DurationMs, 10),
	}
}

func read(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading posting log: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	entries := make([]Entry, 0, len(records)-1)
	for i, rec := range records[1:] {
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing timestamp %q: %w", i+2, rec[0], err)
		}
		ms, err := strconv.ParseInt(rec[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing duration %q: %w", i+2, rec[6], err)
		}
		entries = append(entries, Entry{
			Timestamp:  ts,
			Event:      rec[1],
			Handler:    rec[2],
			Reference:  rec[3],
			Outcome:    rec[4],
			Error:      rec[5],
			DurationMs: ms,
		})
	}
	return entries, nil
}
