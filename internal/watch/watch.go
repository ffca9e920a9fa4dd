// Package watch re-runs marker sweeps when function files change on disk.
//
// A Watcher watches directory trees with fsnotify. Writes and creations of
// matching files are debounced per path, and each settled path is handed to
// the handler on the Run goroutine, one at a time. The handler's own writes
// produce another event, which settles into a sweep that changes nothing.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/mcmark/internal/debounce"
	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host/filehost"
	"github.com/dshills/mcmark/internal/logging"
)

// Errors returned by the watcher.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("path does not exist")
)

// Handler processes a settled path.
type Handler func(ctx context.Context, path string)

// Stats holds watcher counters.
type Stats struct {
	WatchedDirs int
	Events      int64
	Handled     int64
	Errors      int64
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithMatcher selects the files that trigger the handler.
func WithMatcher(m *filetype.Matcher) Option {
	return func(w *Watcher) { w.matcher = m }
}

// WithIgnore skips matching files and directories.
func WithIgnore(m *filetype.Matcher) Option {
	return func(w *Watcher) { w.ignore = m }
}

// WithDelay sets the per-path debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher watches directory trees for function file changes.
type Watcher struct {
	fsw     *fsnotify.Watcher
	matcher *filetype.Matcher
	ignore  *filetype.Matcher
	delay   time.Duration
	logger  zerolog.Logger

	debouncer *debounce.Debouncer
	settled   chan string

	mu      sync.Mutex
	dirs    map[string]bool
	closed  bool
	closeCh chan struct{}

	events  atomic.Int64
	handled atomic.Int64
	errs    atomic.Int64
}

// New creates a watcher. Call Add for each tree, then Run.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		delay:   debounce.DefaultDelay,
		logger:  logging.WithComponent("watch"),
		settled: make(chan string, 64),
		dirs:    make(map[string]bool),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.matcher == nil {
		w.matcher = filetype.MustMatcher()
	}
	w.debouncer = debounce.New(w.delay, w.settle)
	return w, nil
}

// Add watches root and every directory below it.
func (w *Watcher) Add(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrPathNotExist
		}
		return err
	}
	if !info.IsDir() {
		return w.watchDir(filepath.Dir(abs))
	}

	return filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.errs.Add(1)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != abs && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.watchDir(path)
	})
}

func (w *Watcher) watchDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

func (w *Watcher) ignored(path string) bool {
	return w.ignore != nil && w.ignore.Match(path)
}

// Run delivers settled paths to h until ctx is done or the watcher is
// closed. Handlers run one at a time on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, h Handler) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.closeCh:
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.errs.Add(1)
			w.logger.Warn().Err(err).Msg("watch error")

		case path := <-w.settled:
			w.handled.Add(1)
			h(ctx, path)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	w.events.Add(1)
	if w.ignored(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.Add(ev.Name); err != nil {
				w.errs.Add(1)
				w.logger.Warn().Err(err).Str("dir", ev.Name).Msg("watching new directory")
			}
			return
		}
	}

	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !w.matcher.Match(ev.Name) {
		return
	}
	w.debouncer.Trigger(ev.Name)
}

// settle runs on a timer goroutine.
func (w *Watcher) settle(path string) {
	select {
	case w.settled <- path:
	case <-w.closeCh:
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.debouncer.Stop()
	return w.fsw.Close()
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	n := len(w.dirs)
	w.mu.Unlock()

	return Stats{
		WatchedDirs: n,
		Events:      w.events.Load(),
		Handled:     w.handled.Load(),
		Errors:      w.errs.Load(),
	}
}

// SyncHandler returns a handler that runs h.Sync on each settled path and
// logs the outcome.
func SyncHandler(h *filehost.Host, logger zerolog.Logger) Handler {
	return func(ctx context.Context, path string) {
		res, err := h.Sync(ctx, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			logger.Warn().Err(err).Str("path", path).Msg("sync failed")
			return
		}
		logger.Debug().
			Str("path", path).
			Int("edits", res.Edits).
			Bool("written", res.Written).
			Msg("synced")
	}
}
