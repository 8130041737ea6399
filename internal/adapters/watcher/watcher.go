// Package watcher reports changes to configuration sources so that their
// artifacts can be rebuilt.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
)

var _ ports.Watcher = (*Watcher)(nil)

var skipDirectories = map[string]bool{
	".git":             true,
	".jj":              true,
	"node_modules":     true,
	domain.TuskDirName: true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify. Only events for files
// carrying the source extension are reported; artifacts written next to
// their sources never echo back.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	ext       string
	events    chan ports.WatchEvent
}

// NewWatcher creates a watcher for .tsk sources.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.PathError(domain.ErrIO, "fsnotify", err)
	}
	return &Watcher{
		fsWatcher: w,
		logger:    logger,
		ext:       domain.SourceExt,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// Start watches root and every directory below it, including ones created
// later.
func (w *Watcher) Start(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.PathError(domain.ErrNotFound, root, err)
		}
		return domain.PathError(domain.ErrIO, root, err)
	}
	if !info.IsDir() {
		root = filepath.Dir(root)
	}

	for dir := range walkDirs(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return domain.PathError(domain.ErrIO, dir, err)
		}
	}
	go w.processEvents(ctx)
	return nil
}

// Stop releases the underlying watches. Events() ends once the pending
// events are drained.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of source change events.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func walkDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skipDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				w.watchNewDir(event.Name)
			}
			out, ok := w.convertEvent(event)
			if !ok {
				continue
			}
			select {
			case w.events <- out:
			case <-ctx.Done():
				return
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: " + err.Error())
		}
	}
}

func (w *Watcher) watchNewDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skipDirectories[info.Name()] {
		return
	}
	for dir := range walkDirs(path) {
		if err := w.fsWatcher.Add(dir); err != nil {
			w.logger.Warn("watcher: cannot watch " + dir + ": " + err.Error())
		}
	}
}

func (w *Watcher) convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	if !strings.HasSuffix(event.Name, w.ext) {
		return ports.WatchEvent{}, false
	}
	path := filepath.Clean(event.Name)
	switch {
	case event.Has(fsnotify.Write):
		return ports.WatchEvent{Path: path, Operation: ports.OpWrite}, true
	case event.Has(fsnotify.Create):
		return ports.WatchEvent{Path: path, Operation: ports.OpCreate}, true
	case event.Has(fsnotify.Remove):
		return ports.WatchEvent{Path: path, Operation: ports.OpRemove}, true
	case event.Has(fsnotify.Rename):
		return ports.WatchEvent{Path: path, Operation: ports.OpRename}, true
	}
	return ports.WatchEvent{}, false
}
