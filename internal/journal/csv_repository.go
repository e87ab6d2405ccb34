package journal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cleared-dev/books/internal/model"
)

// CSVRepository stores entries in <root>/YYYY/MM/journal.csv, one file per month.
type CSVRepository struct {
	mu   sync.Mutex
	root string
}

// NewCSVRepository returns a repository rooted at a books directory.
func NewCSVRepository(root string) *CSVRepository {
	return &CSVRepository{root: root}
}

// Append adds an entry to its month file, creating the file and header if new.
func (r *CSVRepository) Append(_ context.Context, e model.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.monthPath(e.Date.Year(), int(e.Date.Month()))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := AppendEntry(f, e); err != nil {
		return fmt.Errorf("appending entry: %w", err)
	}
	return nil
}

// All reads every month file in chronological order.
func (r *CSVRepository) All(_ context.Context) ([]model.JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(r.root, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journal files: %w", err)
	}
	sort.Strings(paths)

	var entries []model.JournalEntry
	for _, path := range paths {
		month, err := readFile(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, month...)
	}
	return entries, nil
}

func (r *CSVRepository) monthPath(year, month int) string {
	return filepath.Join(r.root, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}

func readFile(path string) ([]model.JournalEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	return entries, nil
}
