// Package watch repairs presentation packages as they land in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/ports/driving"
	"github.com/custodia-labs/deckmend/internal/logger"
)

// DefaultDebounce is how long a file must be quiet before it is repaired.
const DefaultDebounce = 500 * time.Millisecond

// ResultFunc receives the outcome of each repair.
type ResultFunc func(path string, report *domain.RepairReport, err error)

// Watcher repairs new and rewritten packages in one directory.
type Watcher struct {
	repair     driving.RepairService
	dir        string
	debounce   time.Duration
	extensions map[string]struct{}
	suffix     string
	opts       driving.RepairOptions
	onResult   ResultFunc

	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a repair.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOutputSuffix names the suffix of repaired files, which are never
// picked up again.
func WithOutputSuffix(suffix string) Option {
	return func(w *Watcher) {
		w.suffix = suffix
	}
}

// WithRepairOptions sets the options passed to every repair.
func WithRepairOptions(opts driving.RepairOptions) Option {
	return func(w *Watcher) {
		opts.OutputPath = ""
		w.opts = opts
	}
}

// WithResultFunc registers a callback run after every repair.
func WithResultFunc(fn ResultFunc) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a watcher for dir. Only .pptx files are repaired.
func New(repair driving.RepairService, dir string, opts ...Option) (*Watcher, error) {
	if repair == nil {
		return nil, errors.New("watch: repair service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	w := &Watcher{
		repair:     repair,
		dir:        dir,
		debounce:   DefaultDebounce,
		extensions: map[string]struct{}{".pptx": {}},
		suffix:     domain.DefaultOutputSuffix,
		pending:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run watches until ctx is cancelled. Repairs run one at a time on the
// watching goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("watching %s", w.dir)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			delete(w.pending, event.Name)
		}
		return
	}
	if !w.Accepts(event.Name) {
		return
	}
	logger.Debug("watch: %s %s", event.Op, event.Name)
	w.pending[event.Name] = time.Now()
}

// Accepts reports whether path is a package the watcher repairs.
func (w *Watcher) Accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := w.extensions[ext]; !ok {
		return false
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return w.suffix == "" || !strings.HasSuffix(stem, w.suffix)
}

// flush repairs every pending file that has been quiet for the debounce
// period, oldest path first.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)

	for _, path := range ready {
		delete(w.pending, path)
		if ctx.Err() != nil {
			return
		}
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}

		report, err := w.repair.RepairFile(ctx, path, w.opts)
		if err != nil {
			logger.Warn("watch: repairing %s: %v", path, err)
		}
		if w.onResult != nil {
			w.onResult(path, report, err)
		}
	}
}
