package extension

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changed keys of an Area, whoever wrote them.
type Watcher struct {
	dir       string
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	onChange  func(ctx context.Context, key string)
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher watches dir and calls onChange once per key after each burst of
// writes settles for window.
func NewWatcher(dir string, window time.Duration, onChange func(ctx context.Context, key string), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		dir:       dir,
		fsWatcher: fsWatcher,
		onChange:  onChange,
		logger:    logger,
	}
	w.debouncer = NewDebouncer(window, w.onFlush)
	return w, nil
}

// Start begins delivering change notifications.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	w.running = true
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.handleEvents()
	w.logger.Info("watching storage area", "dir", w.dir)
	return nil
}

func (w *Watcher) handleEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			key, ok := KeyFromPath(event.Name)
			if !ok {
				continue
			}
			w.logger.Debug("storage event", "key", key, "op", event.Op.String())
			w.debouncer.Add(key)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("storage watcher error", "error", err)
		}
	}
}

func (w *Watcher) onFlush(keys []string) {
	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	for _, key := range keys {
		w.onChange(ctx, key)
	}
}

// Stop ends notifications and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.fsWatcher.Close()
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
