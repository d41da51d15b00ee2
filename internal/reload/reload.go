// Package reload keeps a pipeline in sync with its location file.
package reload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/geoextract/internal/location"
	"github.com/fyrsmithlabs/geoextract/internal/pipeline"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// BuildFunc creates a pipeline for a freshly loaded set of locations.
type BuildFunc func(locs []location.Location) (*pipeline.Pipeline, error)

// Event reports the outcome of a reload.
type Event struct {
	Time      time.Time
	Locations int
	Err       error
}

// Watcher serves extraction from the most recently built pipeline and
// rebuilds it whenever the location file changes. A failed rebuild keeps the
// previous pipeline.
type Watcher struct {
	path    string
	build   BuildFunc
	logger  *zap.Logger
	current atomic.Pointer[pipeline.Pipeline]

	watcher  *fsnotify.Watcher
	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads path and builds the initial pipeline. Watching starts
// with Start.
func NewWatcher(path string, build BuildFunc, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving location file: %w", err)
	}

	w := &Watcher{
		path:   abs,
		build:  build,
		logger: logger,
		events: make(chan Event, 10),
		stop:   make(chan struct{}),
	}
	if _, err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Pipeline returns the current pipeline.
func (w *Watcher) Pipeline() *pipeline.Pipeline {
	return w.current.Load()
}

// Extract runs the current pipeline on document.
func (w *Watcher) Extract(document string) []location.Location {
	return w.current.Load().Extract(document)
}

// Reload rebuilds the pipeline from the location file and returns the number
// of locations loaded.
func (w *Watcher) Reload() (int, error) {
	locs, err := location.LoadFile(w.path)
	if err != nil {
		return 0, err
	}
	p, err := w.build(locs)
	if err != nil {
		return 0, fmt.Errorf("building pipeline: %w", err)
	}
	w.current.Store(p)
	return len(locs), nil
}

// Start watches the directory of the location file. Editors often replace
// files instead of writing them, so events are matched by file name.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = fw

	go w.processEvents(ctx)
	w.logger.Info("watching location file", zap.String("path", w.path))
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
	})
}

// Events delivers reload outcomes. Events are dropped when nobody reads.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) processEvents(ctx context.Context) {
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path || event.Op&relevant == 0 {
				continue
			}
			w.handleChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("location watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleChange() {
	n, err := w.Reload()
	if err != nil {
		w.logger.Error("location reload failed, keeping previous pipeline",
			zap.String("path", w.path),
			zap.Error(err),
		)
	} else {
		w.logger.Info("locations reloaded",
			zap.String("path", w.path),
			zap.Int("locations", n),
		)
	}

	select {
	case w.events <- Event{Time: time.Now(), Locations: n, Err: err}:
	default:
	}
}
