package nvimhost

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/neovim/go-client/nvim"
	"github.com/rs/zerolog"

	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/event/events"
	"github.com/dshills/mcmark/internal/event/topic"
	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/logging"
)

// ErrNotInitialized is returned when decorations are set before Init.
var ErrNotInitialized = errors.New("nvim host not initialized")

// Source is the event source name used by this host.
const Source = "nvim"

// Names registered in Neovim.
const (
	Namespace      = "mcmark"
	HighlightGroup = "McmarkMarker"
	SignText       = "▎"
)

// Option configures a Host.
type Option func(*Host)

// WithDecorationStyle sets the style used for markers.
func WithDecorationStyle(style host.DecorationStyle) Option {
	return func(h *Host) {
		h.style = style
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// Host is a host.Workspace over the buffers of one Neovim instance.
type Host struct {
	api    API
	bus    *event.Bus
	style  host.DecorationStyle
	logger zerolog.Logger

	mu      sync.Mutex
	ns      int
	ready   bool
	editors map[nvim.Buffer]*Editor
	active  *Editor
}

// New creates a host. It makes no API calls; call Init once the RPC
// connection is being served.
func New(api API, bus *event.Bus, opts ...Option) *Host {
	h := &Host{
		api:     api,
		bus:     bus,
		style:   host.DefaultDecorationStyle(),
		logger:  logging.WithComponent("nvim"),
		editors: make(map[nvim.Buffer]*Editor),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init creates the extmark namespace and the highlight group. With hidden
// markers it also enables concealing in function file windows.
func (h *Host) Init() error {
	ns, err := h.api.CreateNamespace(Namespace)
	if err != nil {
		return fmt.Errorf("creating namespace: %w", err)
	}

	if err := h.api.Command(highlightCommand(h.style)); err != nil {
		return fmt.Errorf("defining highlight: %w", err)
	}
	if h.style.HideMarker {
		if err := h.api.Command(concealCommand); err != nil {
			return fmt.Errorf("enabling conceal: %w", err)
		}
	}

	h.mu.Lock()
	h.ns = ns
	h.ready = true
	h.mu.Unlock()
	return nil
}

// Namespace returns the extmark namespace id.
func (h *Host) Namespace() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ns
}

// ActiveEditor returns the editor of the focused buffer, or nil.
func (h *Host) ActiveEditor() host.Editor {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active == nil {
		return nil
	}
	return h.active
}

// Editor returns the editor of buf, creating it on first use.
func (h *Host) Editor(buf nvim.Buffer, path string) *Editor {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.editorLocked(buf, path)
}

func (h *Host) editorLocked(buf nvim.Buffer, path string) *Editor {
	if ed, ok := h.editors[buf]; ok && ed.doc.path == path {
		return ed
	}
	ed := &Editor{h: h, doc: newDocument(h.api, buf, path)}
	if old, ok := h.editors[buf]; ok {
		// The buffer was renamed; start over with a fresh document.
		old.close()
		if h.active == old {
			h.active = ed
		}
	}
	h.editors[buf] = ed
	return ed
}

// Enter records buf as focused and publishes editor.active.changed.
func (h *Host) Enter(ctx context.Context, buf nvim.Buffer, path string) error {
	h.mu.Lock()
	ed := h.editorLocked(buf, path)
	h.active = ed
	h.mu.Unlock()

	// Text may have changed while the buffer was hidden.
	ed.doc.invalidate()
	return h.publish(ctx, events.TopicEditorActiveChanged, events.EditorActiveChanged{Editor: ed})
}

// Renamed replaces the editor of buf after its file name changed. When buf
// has focus editor.active.changed is published again, since the new name
// may qualify differently.
func (h *Host) Renamed(ctx context.Context, buf nvim.Buffer, path string) error {
	h.mu.Lock()
	_, known := h.editors[buf]
	if !known {
		h.mu.Unlock()
		return nil
	}
	ed := h.editorLocked(buf, path)
	focused := h.active == ed
	h.mu.Unlock()

	if !focused {
		return nil
	}
	return h.publish(ctx, events.TopicEditorActiveChanged, events.EditorActiveChanged{Editor: ed})
}

// Changed invalidates the cached text of buf and publishes
// document.text.changed. tick is the buffer's changedtick.
func (h *Host) Changed(ctx context.Context, buf nvim.Buffer, tick uint64) error {
	h.mu.Lock()
	ed, ok := h.editors[buf]
	h.mu.Unlock()
	if !ok {
		return nil
	}

	ed.doc.invalidate()
	return h.publish(ctx, events.TopicDocumentTextChanged, events.DocumentTextChanged{
		Document: ed.doc,
		Version:  tick,
	})
}

// Wipe forgets buf. Its editor rejects further edits.
func (h *Host) Wipe(buf nvim.Buffer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ed, ok := h.editors[buf]
	if !ok {
		return
	}
	ed.close()
	delete(h.editors, buf)
	if h.active == ed {
		h.active = nil
	}
}

func (h *Host) decorate(doc *Document, ranges []host.Range) error {
	h.mu.Lock()
	ns, ready := h.ns, h.ready
	h.mu.Unlock()
	if !ready {
		return ErrNotInitialized
	}

	if err := h.api.ClearBufferNamespace(doc.buf, ns, 0, -1); err != nil {
		return err
	}
	for _, r := range ranges {
		if _, err := h.api.SetBufferExtmark(doc.buf, ns, r.Start.Line, r.Start.Character, extmarkOptions(h.style, r)); err != nil {
			return fmt.Errorf("line %d: %w", r.Start.Line, err)
		}
	}
	return nil
}

func (h *Host) publish(ctx context.Context, t topic.Topic, payload any) error {
	if h.bus == nil {
		return nil
	}
	return h.bus.Publish(ctx, event.NewEvent(t, payload, Source))
}

// extmarkOptions returns the extmark of a marker range: a gutter sign and,
// when the marker is hidden, a conceal over its glyph.
func extmarkOptions(style host.DecorationStyle, r host.Range) map[string]any {
	opts := map[string]any{
		"end_row":       r.End.Line,
		"end_col":       r.End.Character,
		"sign_text":     SignText,
		"sign_hl_group": HighlightGroup,
	}
	if style.HideMarker {
		opts["conceal"] = ""
	}
	return opts
}

const concealCommand = "augroup mcmark_conceal | autocmd! | autocmd BufWinEnter *.mcfunction setlocal conceallevel=2 concealcursor=nc | augroup END"

// highlightCommand defines the marker highlight. Neovim has no alpha, so the
// border color is blended against black.
func highlightCommand(style host.DecorationStyle) string {
	return fmt.Sprintf("highlight default %s guifg=%s", HighlightGroup, blend(style))
}

func blend(style host.DecorationStyle) string {
	var r, g, b int
	if _, err := fmt.Sscanf(style.BorderColor, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return style.BorderColor
	}
	a := min(max(style.BorderAlpha, 0), 1)
	scale := func(c int) int { return int(float64(c) * a) }
	return fmt.Sprintf("#%02x%02x%02x", scale(r), scale(g), scale(b))
}

// bufferArgs is the [bufnr, path, changedtick] list evaluated by autocmds.
type bufferArgs struct {
	Buffer nvim.Buffer
	Path   string
	Tick   uint64
}

func parseBufferArgs(args []string) (bufferArgs, error) {
	if len(args) < 1 {
		return bufferArgs{}, errors.New("missing buffer number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return bufferArgs{}, fmt.Errorf("buffer number %q: %w", args[0], err)
	}
	a := bufferArgs{Buffer: nvim.Buffer(n)}
	if len(args) > 1 {
		a.Path = args[1]
	}
	if len(args) > 2 && args[2] != "" {
		if a.Tick, err = strconv.ParseUint(args[2], 10, 64); err != nil {
			return bufferArgs{}, fmt.Errorf("changedtick %q: %w", args[2], err)
		}
	}
	return a, nil
}

var _ host.Workspace = (*Host)(nil)
