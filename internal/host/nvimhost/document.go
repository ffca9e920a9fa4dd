package nvimhost

import (
	"fmt"
	"slices"
	"sync"

	"github.com/neovim/go-client/nvim"

	"github.com/dshills/mcmark/internal/host"
)

// Document is a Neovim buffer.
//
// Lines are cached and fetched again on first access after the buffer
// changed. Edits made through the Editor update the cache in place.
type Document struct {
	api  API
	buf  nvim.Buffer
	path string

	mu      sync.Mutex
	lines   []string
	stale   bool
	version uint64
	err     error
}

func newDocument(api API, buf nvim.Buffer, path string) *Document {
	return &Document{api: api, buf: buf, path: path, stale: true}
}

// Buffer returns the Neovim buffer handle.
func (d *Document) Buffer() nvim.Buffer { return d.buf }

// URI returns file://path, or nvim://buffer/N for unnamed buffers.
func (d *Document) URI() string {
	if d.path == "" {
		return fmt.Sprintf("nvim://buffer/%d", int(d.buf))
	}
	return "file://" + d.path
}

// Path returns the buffer's file name.
func (d *Document) Path() string { return d.path }

// LineCount returns the number of lines in the buffer.
func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.refreshLocked()
	return len(d.lines)
}

// LineAt returns a line of the buffer.
func (d *Document) LineAt(line int) (host.Line, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.refreshLocked(); err != nil {
		return host.Line{}, err
	}
	if line < 0 || line >= len(d.lines) {
		return host.Line{}, host.ErrLineOutOfRange
	}
	return host.NewLine(line, d.lines[line]), nil
}

// Version returns the buffer's changedtick as of the last fetch.
func (d *Document) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	_ = d.refreshLocked()
	return d.version
}

// Lines returns a copy of every line.
func (d *Document) Lines() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.refreshLocked(); err != nil {
		return nil, err
	}
	return slices.Clone(d.lines), nil
}

// invalidate marks the cache out of date.
func (d *Document) invalidate() {
	d.mu.Lock()
	d.stale = true
	d.mu.Unlock()
}

func (d *Document) refreshLocked() error {
	if !d.stale {
		return d.err
	}
	raw, err := d.api.BufferLines(d.buf, 0, -1, true)
	if err != nil {
		d.err = fmt.Errorf("reading buffer %d: %w", int(d.buf), err)
		return d.err
	}
	tick, err := d.api.BufferChangedTick(d.buf)
	if err != nil {
		d.err = fmt.Errorf("reading buffer %d: %w", int(d.buf), err)
		return d.err
	}
	d.lines = fromBytes(raw)
	d.version = uint64(max(tick, 0))
	d.stale = false
	d.err = nil
	return nil
}

var _ host.Document = (*Document)(nil)
