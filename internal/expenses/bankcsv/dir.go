package bankcsv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout of the import inbox inside a books directory.
const (
	InboxDir     = "import"
	ProcessedDir = "import/processed"
	RulesFile    = "import/rules.yaml"
)

// Pending lists CSV files waiting in <root>/import, by name.
func Pending(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, InboxDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(root, InboxDir, e.Name()))
	}
	return paths, nil
}

// Archive moves an imported file into <root>/import/processed.
func Archive(root, path string) error {
	dst := filepath.Join(root, ProcessedDir)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if err := os.Rename(path, filepath.Join(dst, filepath.Base(path))); err != nil {
		return fmt.Errorf("archiving %s: %w", filepath.Base(path), err)
	}
	return nil
}
