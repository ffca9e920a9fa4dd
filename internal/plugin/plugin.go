package plugin

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/mcmark/internal/debounce"
	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/event/events"
	"github.com/dshills/mcmark/internal/event/topic"
	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/logging"
	"github.com/dshills/mcmark/internal/synchronizer"
)

// Source is the event source name used by the plugin.
const Source = "mcmark"

// DefaultQueueSize is the default capacity of the request queue.
const DefaultQueueSize = 64

type requestKind int

const (
	requestSweep requestKind = iota
	requestClear
)

type request struct {
	kind   requestKind
	editor host.Editor
}

// Stats counts plugin activity since creation.
type Stats struct {
	Sweeps   uint64
	Failures uint64
	Clears   uint64
	Skipped  uint64
	// Pending is the number of debounced sweeps waiting for their delay.
	Pending int
}

// Plugin keeps the markers of the focused function file in sync.
type Plugin struct {
	bus     *event.Bus
	ws      host.Workspace
	syncer  *synchronizer.Synchronizer
	matcher *filetype.Matcher
	style   host.DecorationStyle
	delay   time.Duration
	hook    Hook
	logger  zerolog.Logger

	mu        sync.Mutex
	active    bool
	subs      []*event.Subscription
	debouncer *debounce.Debouncer
	requests  chan request
	cancel    context.CancelFunc
	done      chan struct{}

	sweeps   atomic.Uint64
	failures atomic.Uint64
	clears   atomic.Uint64
	skipped  atomic.Uint64
}

// New creates an inactive plugin for the editors of ws.
func New(bus *event.Bus, ws host.Workspace, opts ...Option) (*Plugin, error) {
	if bus == nil {
		return nil, ErrNilBus
	}
	if ws == nil {
		return nil, ErrNilWorkspace
	}

	p := &Plugin{
		bus:    bus,
		ws:     ws,
		style:  host.DefaultDecorationStyle(),
		delay:  debounce.DefaultDelay,
		logger: logging.WithComponent("plugin"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.matcher == nil {
		p.matcher = filetype.MustMatcher()
	}
	p.syncer = synchronizer.New(host.NewDecorationType(p.style), synchronizer.WithLogger(p.logger))
	return p, nil
}

// DecorationType returns the decoration type the plugin sets on editors.
func (p *Plugin) DecorationType() *host.DecorationType {
	return p.syncer.DecorationType()
}

// Qualifies reports whether doc is a document the plugin processes.
func (p *Plugin) Qualifies(doc host.Document) bool {
	if doc == nil {
		return false
	}
	if path := doc.Path(); path != "" {
		return p.matcher.Match(path)
	}
	return p.matcher.Match(doc.URI())
}

// IsActive reports whether the plugin is listening for events.
func (p *Plugin) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Stats returns a snapshot of the plugin counters.
func (p *Plugin) Stats() Stats {
	s := Stats{
		Sweeps:   p.sweeps.Load(),
		Failures: p.failures.Load(),
		Clears:   p.clears.Load(),
		Skipped:  p.skipped.Load(),
	}
	p.mu.Lock()
	deb := p.debouncer
	p.mu.Unlock()
	if deb != nil {
		s.Pending = deb.Pending()
	}
	return s
}

// Activate subscribes to editor events and starts the sweep loop.
// If a qualifying editor already has focus it is swept right away.
// The loop stops when ctx is done or Deactivate is called.
func (p *Plugin) Activate(ctx context.Context) error {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return ErrAlreadyActive
	}

	activeSub, err := p.bus.SubscribeFunc(events.TopicEditorActiveChanged, p.onActiveChanged)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	textSub, err := p.bus.SubscribeFunc(events.TopicDocumentTextChanged, p.onTextChanged)
	if err != nil {
		_ = p.bus.Unsubscribe(activeSub)
		p.mu.Unlock()
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.subs = []*event.Subscription{activeSub, textSub}
	p.requests = make(chan request, DefaultQueueSize)
	p.debouncer = debounce.New(p.delay, p.settled)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.active = true
	go p.loop(loopCtx, p.requests, p.done)
	p.mu.Unlock()

	p.logger.Debug().Dur("delay", p.delay).Strs("patterns", p.matcher.Patterns()).Msg("activated")

	if ed := p.ws.ActiveEditor(); ed != nil && p.Qualifies(ed.Document()) {
		p.enqueue(request{kind: requestSweep, editor: ed})
	}
	return nil
}

// Deactivate unsubscribes, drops pending debounced sweeps and stops the loop.
// Decorations already set on editors are left in place.
func (p *Plugin) Deactivate() error {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return ErrNotActive
	}
	subs, deb, cancel, done := p.subs, p.debouncer, p.cancel, p.done
	p.active = false
	p.subs = nil
	p.debouncer = nil
	p.requests = nil
	p.cancel = nil
	p.mu.Unlock()

	for _, sub := range subs {
		_ = p.bus.Unsubscribe(sub)
	}
	deb.Stop()
	cancel()
	<-done

	p.logger.Debug().Msg("deactivated")
	return nil
}

// Flush runs every pending debounced sweep now instead of waiting.
func (p *Plugin) Flush() {
	p.mu.Lock()
	deb := p.debouncer
	p.mu.Unlock()

	if deb != nil {
		deb.Flush()
	}
}

// SweepActive queues a sweep of the focused editor if it qualifies.
func (p *Plugin) SweepActive() bool {
	ed := p.ws.ActiveEditor()
	if ed == nil || !p.Qualifies(ed.Document()) {
		return false
	}
	return p.enqueue(request{kind: requestSweep, editor: ed})
}

func (p *Plugin) onActiveChanged(_ context.Context, e event.Event) error {
	payload, ok := e.Payload.(events.EditorActiveChanged)
	if !ok || payload.Editor == nil {
		return nil
	}

	doc := payload.Editor.Document()
	if !p.Qualifies(doc) {
		p.enqueue(request{kind: requestClear, editor: payload.Editor})
		return nil
	}

	// The focus sweep covers any edit still waiting on the debouncer.
	p.mu.Lock()
	deb := p.debouncer
	p.mu.Unlock()
	if deb != nil {
		deb.Cancel(doc.URI())
	}
	p.enqueue(request{kind: requestSweep, editor: payload.Editor})
	return nil
}

func (p *Plugin) onTextChanged(_ context.Context, e event.Event) error {
	payload, ok := e.Payload.(events.DocumentTextChanged)
	if !ok || payload.Document == nil {
		return nil
	}

	ed := p.ws.ActiveEditor()
	if ed == nil {
		return nil
	}
	doc := ed.Document()
	if doc.URI() != payload.Document.URI() || !p.Qualifies(doc) {
		return nil
	}

	p.mu.Lock()
	deb := p.debouncer
	p.mu.Unlock()

	if deb != nil {
		deb.Trigger(doc.URI())
	}
	return nil
}

// settled runs on a timer goroutine once a document stopped changing.
func (p *Plugin) settled(uri string) {
	ed := p.ws.ActiveEditor()
	if ed == nil || ed.Document().URI() != uri || !p.Qualifies(ed.Document()) {
		p.skipped.Add(1)
		return
	}
	p.enqueue(request{kind: requestSweep, editor: ed})
}

func (p *Plugin) enqueue(r request) bool {
	p.mu.Lock()
	reqs, done := p.requests, p.done
	p.mu.Unlock()

	if reqs == nil {
		return false
	}
	select {
	case reqs <- r:
		return true
	case <-done:
		return false
	}
}

func (p *Plugin) loop(ctx context.Context, reqs <-chan request, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case r := <-reqs:
			switch r.kind {
			case requestSweep:
				p.sweep(ctx, r.editor)
			case requestClear:
				p.clear(r.editor)
			}
		}
	}
}

func (p *Plugin) sweep(ctx context.Context, ed host.Editor) {
	doc := ed.Document()
	if cur := p.ws.ActiveEditor(); cur == nil || cur.Document().URI() != doc.URI() {
		p.skipped.Add(1)
		return
	}

	report, err := p.syncer.UpdateAll(ctx, ed)
	info := SweepInfo{
		URI:         doc.URI(),
		Path:        doc.Path(),
		Commands:    report.Commands,
		Edits:       report.Edits,
		Decorations: report.Decorations.Lines(),
		Duration:    report.Duration,
		Err:         err,
	}

	if err != nil {
		p.failures.Add(1)
		p.logger.Warn().Err(err).Str("uri", info.URI).Msg("sweep failed")
		p.publish(ctx, events.TopicSweepFailed, events.SweepFailed{URI: info.URI, Err: err})
	} else {
		p.sweeps.Add(1)
		p.publish(ctx, events.TopicDecorationsUpdated, events.DecorationsUpdated{
			URI:      info.URI,
			Ranges:   report.Decorations,
			Edits:    report.Edits,
			Commands: report.Commands,
			Duration: report.Duration,
		})
	}

	if p.hook != nil {
		if err := p.hook.OnSweep(ctx, info); err != nil {
			p.logger.Warn().Err(err).Str("uri", info.URI).Msg("sweep hook failed")
		}
	}
}

func (p *Plugin) clear(ed host.Editor) {
	ed.SetDecorations(p.syncer.DecorationType(), nil)
	p.clears.Add(1)
	p.logger.Debug().Str("uri", ed.Document().URI()).Msg("cleared decorations")
}

func (p *Plugin) publish(ctx context.Context, t topic.Topic, payload any) {
	if err := p.bus.Publish(ctx, event.NewEvent(t, payload, Source)); err != nil {
		p.logger.Debug().Err(err).Str("topic", t.String()).Msg("publish failed")
	}
}
