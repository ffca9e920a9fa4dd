package synchronizer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/logging"
	"github.com/dshills/mcmark/internal/marker"
)

// DecorationSet is the complete set of marker ranges for one document.
type DecorationSet []host.Range

// Lines returns the line index of every range.
func (d DecorationSet) Lines() []int {
	lines := make([]int, len(d))
	for i, r := range d {
		lines[i] = r.Start.Line
	}
	return lines
}

// Report describes one sweep.
type Report struct {
	Decorations DecorationSet
	Commands    int
	Edits       int
	Duration    time.Duration
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = l
	}
}

// Synchronizer keeps markers and decorations of an editor in sync.
// It holds no document state between sweeps.
type Synchronizer struct {
	decoration *host.DecorationType
	logger     zerolog.Logger
}

// New creates a synchronizer that publishes decorations under decoration.
func New(decoration *host.DecorationType, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		decoration: decoration,
		logger:     logging.WithComponent("synchronizer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DecorationType returns the decoration type used for marker ranges.
func (s *Synchronizer) DecorationType() *host.DecorationType {
	return s.decoration
}

// UpdateAll sweeps the editor's document from the first line to the last.
// On success the editor's decorations are replaced with the returned set.
// On failure the report holds the counts reached before the error.
func (s *Synchronizer) UpdateAll(ctx context.Context, ed host.Editor) (*Report, error) {
	start := time.Now()
	doc := ed.Document()
	report := &Report{Decorations: DecorationSet{}}

	for cmd, err := range marker.Commands(host.Source{Doc: doc}) {
		if err != nil {
			return report, fmt.Errorf("reading %s: %w", doc.URI(), err)
		}
		report.Commands++

		res := marker.Reconcile(cmd)
		if err := Apply(ctx, ed, res); err != nil {
			return report, fmt.Errorf("updating %s: %w", doc.URI(), err)
		}
		report.Edits += len(res.Changes)

		if res.ShowMarker {
			report.Decorations = append(report.Decorations, host.MarkerRange(cmd.StartLine))
		}
	}

	ed.SetDecorations(s.decoration, report.Decorations)
	report.Duration = time.Since(start)

	s.logger.Debug().
		Str("uri", doc.URI()).
		Int("commands", report.Commands).
		Int("edits", report.Edits).
		Int("decorations", len(report.Decorations)).
		Dur("took", report.Duration).
		Msg("sweep finished")

	return report, nil
}

// Apply issues one full-line replacement for every changed line of res, top
// to bottom, moving the cursor along when it sits on an edited line.
// Unchanged lines get no edit. The first rejected edit stops Apply.
func Apply(ctx context.Context, ed host.Editor, res marker.Result) error {
	for _, ch := range res.Changes {
		before := ed.Selection()
		edit := host.Edit{
			Range:   host.LineRange(ch.Line, len(ch.Old)),
			NewText: ch.New,
		}
		if err := ed.ApplyEdit(ctx, edit, host.EditOptions{}); err != nil {
			return fmt.Errorf("line %d: %w", ch.Line, err)
		}
		AdjustCursor(ed, before, ch)
	}
	return nil
}

// AdjustCursor shifts the cursor by the length change of an edited line when
// the cursor was on that line. The column never drops below 0.
func AdjustCursor(ed host.Editor, before host.Position, ch marker.LineChange) {
	if before.Line != ch.Line || ch.Delta == 0 {
		return
	}
	ed.SetSelection(host.Position{
		Line:      before.Line,
		Character: max(0, before.Character+ch.Delta),
	})
}
