package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of file events. Editors and atomic
// writers commonly produce several events per save.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc consumes a freshly loaded snapshot. The engine's
// LoadCorpus is the usual implementation.
type ReloadFunc func(ctx context.Context, snap *Snapshot) error

// Watcher reloads the corpus file when it changes on disk. The parent
// directory is watched rather than the file itself so atomic
// rename-into-place saves are seen.
type Watcher struct {
	loader   *Loader
	reload   ReloadFunc
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the loader's corpus file.
func NewWatcher(loader *Loader, reload ReloadFunc, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		loader:   loader,
		reload:   reload,
		debounce: debounce,
		logger:   logger,
	}
}

// Run watches until the context is cancelled. A failed reload keeps the
// previous corpus published and logs the error; the watcher keeps
// running so a later fix to the file is picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	target, err := filepath.Abs(w.loader.Path())
	if err != nil {
		return fmt.Errorf("resolve corpus path: %w", err)
	}
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch corpus directory: %w", err)
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reloadOnce(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("corpus watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reloadOnce(ctx context.Context) {
	snap, err := w.loader.Load()
	if err != nil {
		w.logger.Error("corpus reload failed, keeping previous snapshot",
			slog.String("path", w.loader.Path()),
			slog.String("error", err.Error()))
		return
	}
	if err := w.reload(ctx, snap); err != nil {
		w.logger.Error("corpus republish failed, keeping previous snapshot",
			slog.String("error", err.Error()))
		return
	}
	w.logger.Info("corpus reloaded",
		slog.String("path", w.loader.Path()),
		slog.Int("patterns", snap.Len()))
}
