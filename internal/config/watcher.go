package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals on Changed whenever the watched config file is written,
// created, or renamed. It does not reload or invalidate any AppConfig
// itself, and nothing in this repository constructs one.
type Watcher struct {
	fsw     *fsnotify.Watcher
	path    string
	Changed chan struct{}
	done    chan struct{}
}

// NewWatcher starts watching path (a user config file) for writes. Changed
// receives a value, non-blocking, on every write/create/rename event.
func NewWatcher(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}

	w := &Watcher{fsw: fsw, path: path, Changed: make(chan struct{}, 1), done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				select {
				case w.Changed <- struct{}{}:
				default:
				}
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
