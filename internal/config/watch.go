package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk and hands the
// new, validated settings to a callback. Invalid edits are logged and ignored.
type Watcher struct {
	path     string
	onChange func(*Settings)
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWatcher prepares a watcher for path. The parent directory is watched so
// editors that replace the file by rename are handled.
func NewWatcher(path string, onChange func(*Settings), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the event loop until Stop or ctx cancellation.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

// Stop terminates the loop and releases the fsnotify handle.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	_ = w.watcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(w.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(reloadDebounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	s, err := LoadSettings(w.path)
	if err != nil {
		w.logger.Warn("ignoring settings change", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("settings reloaded", zap.String("path", w.path))
	w.onChange(s)
}
