// Package watcher monitors an import drop folder.
//
// A JSON file placed in the watched directory is left to settle, run through
// the bulk importer, then renamed with an ".imported" or ".failed" suffix so
// it is never picked up twice. The watcher is optional; the server runs
// without one when no import directory is configured.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shelfstash/shelfstash-server/internal/importer"
)

const (
	suffixImported = ".imported"
	suffixFailed   = ".failed"

	// defaultSettleDelay is how long a file must stay unchanged before it is
	// considered fully written. Copies into the drop folder arrive in chunks.
	defaultSettleDelay = 2 * time.Second
)

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Watcher watches one flat directory for import files.
type Watcher struct {
	dir         string
	importer    *importer.Importer
	logger      *slog.Logger
	settleDelay time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Watcher on dir, creating the directory if needed.
func New(dir string, imp *importer.Importer, logger *slog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create import dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch import dir: %w", err)
	}

	return &Watcher{
		dir:         dir,
		importer:    imp,
		logger:      logger,
		settleDelay: defaultSettleDelay,
		fsw:         fsw,
		pending:     make(map[string]*pendingFile),
		done:        make(chan struct{}),
	}, nil
}

// Start sweeps files already in the folder, then processes events until the
// context is cancelled. It blocks.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching import folder", "dir", w.dir)

	w.sweep(ctx)

	w.wg.Add(1)
	go w.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// sweep imports files that were dropped while the server was down.
func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("failed to read import dir", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if isImportCandidate(path) {
			w.importFile(ctx, path)
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !isImportCandidate(event.Name) {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(event.Name)
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(ctx, event.Name)
	}
}

// cancelPending drops the settle timer for a file that disappeared.
func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// startSettling (re)arms the settle timer for a file.
func (w *Watcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	p := &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	p.timer = time.AfterFunc(w.settleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = p
}

// checkSettled imports the file once its size and mtime stop moving.
func (w *Watcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()

	p, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		// Still changing, restart timer.
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.settleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	w.importFile(ctx, path)
}

// importFile runs one file through the importer and renames it out of the
// candidate set either way.
func (w *Watcher) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path) //#nosec G304 -- Paths come from the watched directory
	if err != nil {
		w.logger.Warn("failed to read import file", "path", path, "error", err)
		return
	}

	result, err := w.importer.Import(ctx, data)
	if err != nil {
		w.logger.Error("import file rejected", "path", path, "error", err)
		w.markDone(path, suffixFailed)
		return
	}

	switch result.Status() {
	case importer.StatusFailed:
		w.logger.Error("import file produced no items",
			"path", path, "failed", result.Failed)
		w.markDone(path, suffixFailed)
	default:
		w.logger.Info("import file processed",
			"path", path,
			"status", result.Status(),
			"imported", result.Imported,
			"failed", result.Failed)
		w.markDone(path, suffixImported)
	}
}

func (w *Watcher) markDone(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		w.logger.Warn("failed to rename processed import file", "path", path, "error", err)
	}
}

// isImportCandidate reports whether a path is an unprocessed JSON drop.
// Processed files carry a suffix after .json and fail the extension check.
func isImportCandidate(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
