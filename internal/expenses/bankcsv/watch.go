package bankcsv

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn for every CSV written to <root>/import until ctx is done.
// A file is handed over once it has stopped changing for settle, so
// half-copied exports are not read. fn runs on the watching goroutine.
func Watch(ctx context.Context, root string, settle time.Duration, fn func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	inbox := filepath.Join(root, InboxDir)
	if err := w.Add(inbox); err != nil {
		return fmt.Errorf("watching %s: %w", inbox, err)
	}

	tick := settle / 2
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := map[string]time.Time{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if strings.EqualFold(filepath.Ext(ev.Name), ".csv") {
				pending[ev.Name] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching %s: %w", inbox, err)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) >= settle {
					delete(pending, path)
					fn(path)
				}
			}
		}
	}
}
