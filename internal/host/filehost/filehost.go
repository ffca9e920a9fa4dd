// Package filehost runs marker sweeps over files on disk.
//
// Each file is loaded into an in-memory editor, swept by the synchronizer and
// written back only when its content changed. Writes to the real file system
// are atomic.
package filehost

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/host/memory"
	"github.com/dshills/mcmark/internal/logging"
	"github.com/dshills/mcmark/internal/synchronizer"
)

// Result describes one processed file.
type Result struct {
	Path        string
	Before      string
	After       string
	Commands    int
	Edits       int
	Decorations []int
	Written     bool
}

// Changed reports whether the sweep rewrote any line.
func (r *Result) Changed() bool {
	return r.Before != r.After
}

// Host processes files on an afero file system.
type Host struct {
	fs      afero.Fs
	matcher *filetype.Matcher
	ignore  *filetype.Matcher
	syncer  *synchronizer.Synchronizer
	logger  zerolog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithMatcher selects the files Walk returns.
func WithMatcher(m *filetype.Matcher) Option {
	return func(h *Host) { h.matcher = m }
}

// WithIgnore skips files and directories matching m during Walk.
func WithIgnore(m *filetype.Matcher) Option {
	return func(h *Host) { h.ignore = m }
}

// WithDecorationStyle sets the style of computed decorations.
func WithDecorationStyle(style host.DecorationStyle) Option {
	return func(h *Host) {
		h.syncer = synchronizer.New(host.NewDecorationType(style), synchronizer.WithLogger(h.logger))
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// New creates a host over fsys.
func New(fsys afero.Fs, opts ...Option) *Host {
	h := &Host{
		fs:     fsys,
		logger: logging.WithComponent("filehost"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.matcher == nil {
		h.matcher = filetype.MustMatcher()
	}
	if h.syncer == nil {
		h.syncer = synchronizer.New(host.NewDecorationType(host.DefaultDecorationStyle()), synchronizer.WithLogger(h.logger))
	}
	return h
}

// Fs returns the host's file system.
func (h *Host) Fs() afero.Fs {
	return h.fs
}

// Matcher returns the file matcher.
func (h *Host) Matcher() *filetype.Matcher {
	return h.matcher
}

// Sync sweeps path and writes it back when the content changed.
func (h *Host) Sync(ctx context.Context, path string) (*Result, error) {
	return h.process(ctx, path, true)
}

// Check sweeps path without writing.
func (h *Host) Check(ctx context.Context, path string) (*Result, error) {
	return h.process(ctx, path, false)
}

// Open loads path into an editor of ws.
func (h *Host) Open(ws *memory.Workspace, path string) (*memory.Editor, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ws.OpenReader(path, f)
}

func (h *Host) process(ctx context.Context, path string, write bool) (*Result, error) {
	ed, err := h.Open(memory.NewWorkspace(nil), path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	res := &Result{Path: path, Before: ed.Doc().Text()}
	report, err := h.syncer.UpdateAll(ctx, ed)
	if err != nil {
		return nil, err
	}
	res.After = ed.Doc().Text()
	res.Commands = report.Commands
	res.Edits = report.Edits
	res.Decorations = report.Decorations.Lines()

	if write && res.Changed() {
		if err := h.writeFile(path, res.After); err != nil {
			return res, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Written = true
		h.logger.Info().Str("path", path).Int("edits", res.Edits).Msg("updated markers")
	}
	return res, nil
}

func (h *Host) writeFile(path, text string) error {
	if _, ok := h.fs.(*afero.OsFs); ok {
		return atomic.WriteFile(path, strings.NewReader(text))
	}

	mode := os.FileMode(0o644)
	if info, err := h.fs.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return afero.WriteFile(h.fs, path, []byte(text), mode)
}

// Walk returns the matching files below each root, in lexical order.
// A root naming a file is returned as is, whatever its name.
func (h *Host) Walk(roots ...string) ([]string, error) {
	var files []string
	for _, root := range roots {
		info, err := h.fs.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}

		err = afero.Walk(h.fs, root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if path != root && h.ignore != nil && h.ignore.Match(path) {
				if info.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !info.IsDir() && h.matcher.Match(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// SyncAll runs Sync, or Check when write is false, over every file below
// roots. Files that fail are reported in the joined error; the others are
// still processed.
func (h *Host) SyncAll(ctx context.Context, write bool, roots ...string) ([]*Result, error) {
	files, err := h.Walk(roots...)
	if err != nil {
		return nil, err
	}

	var results []*Result
	var errs []error
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := h.process(ctx, path, write)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}
