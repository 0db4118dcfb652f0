// Package fsnotify reloads the roster when its backing file changes on disk.
package fsnotify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	defaultDebounce = 250 * time.Millisecond
	tickInterval    = 50 * time.Millisecond
)

// Invalidator drops cached state. *advisor.RosterCache satisfies it.
type Invalidator interface {
	Invalidate()
}

// Watcher invalidates a cache whenever the watched file is created, written,
// renamed or removed. The parent directory is watched so that editors which
// replace the file atomically are still observed.
type Watcher struct {
	path     string
	target   Invalidator
	logger   *zap.Logger
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a [Watcher].
type Option func(*Watcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long the file must stay quiet before the cache is
// invalidated. Default is 250ms.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnChange registers a callback run after each invalidation.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// New creates a Watcher for path. Call Start to begin watching.
func New(path string, target Invalidator, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		path:     abs,
		target:   target,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Start begins watching in a background goroutine. It is a no-op when the
// watcher is already running.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return errors.Join(fmt.Errorf("fsnotify: %w", err), fw.Close())
	}
	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(ctx, fw, w.stopCh, w.doneCh)
	w.logger.Info("watching roster", zap.String("path", w.path))
	return nil
}

// Stop stops watching and waits for the background goroutine to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	stopCh, doneCh, fw := w.stopCh, w.doneCh, w.watcher
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
	if err := fw.Close(); err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if w.relevant(ev) {
				w.logger.Debug("roster file event", zap.String("op", ev.Op.String()))
				pending = time.Now()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("roster watch error", zap.Error(err))
		case now := <-ticker.C:
			if pending.IsZero() || now.Sub(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			w.target.Invalidate()
			w.logger.Info("roster changed, cache invalidated", zap.String("path", w.path))
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}
