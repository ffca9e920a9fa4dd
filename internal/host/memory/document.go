package memory

import (
	"sync/atomic"

	"github.com/dshills/mcmark/internal/engine/buffer"
	"github.com/dshills/mcmark/internal/host"
)

// Document is a buffer-backed host.Document.
type Document struct {
	uri     string
	path    string
	buf     *buffer.Buffer
	version atomic.Uint64
}

func newDocument(path string, buf *buffer.Buffer) *Document {
	d := &Document{
		uri:  "file://" + path,
		path: path,
		buf:  buf,
	}
	d.version.Store(1)
	return d
}

// URI returns the document URI.
func (d *Document) URI() string { return d.uri }

// Path returns the document path.
func (d *Document) Path() string { return d.path }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return d.buf.LineCount() }

// Version returns the document version.
func (d *Document) Version() uint64 { return d.version.Load() }

// LineAt returns the current text of line.
func (d *Document) LineAt(line int) (host.Line, error) {
	text, err := d.buf.LineText(line)
	if err != nil {
		return host.Line{}, host.ErrLineOutOfRange
	}
	return host.NewLine(line, text), nil
}

// Text returns the full document text.
func (d *Document) Text() string { return d.buf.Text() }

// Lines returns a copy of every line.
func (d *Document) Lines() []string { return d.buf.Lines() }

var _ host.Document = (*Document)(nil)
