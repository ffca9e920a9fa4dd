package render

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Loader produces the frame content. Top is ignored.
type Loader func(ctx context.Context) (Frame, error)

type reloadSignal struct{}

type quitSignal struct{}

// View is a read-only pager over a frame that can be reloaded.
//
// Keys: q or Esc quits, arrows and j/k scroll by a line, PgUp/PgDn by a page,
// Home/End jump, r reloads.
type View struct {
	screen tcell.Screen
	theme  Theme
	load   Loader

	mu    sync.Mutex
	frame Frame
	err   error
}

// NewView creates a view on an initialized screen.
func NewView(screen tcell.Screen, theme Theme, load Loader) *View {
	return &View{screen: screen, theme: theme, load: load}
}

// Reload asks the view to reload its content. Safe from any goroutine.
func (v *View) Reload() {
	_ = v.screen.PostEvent(tcell.NewEventInterrupt(reloadSignal{}))
}

// Frame returns the frame currently shown.
func (v *View) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// Run loads the content and handles events until the user quits or ctx is
// done. It returns the last load error, if any.
func (v *View) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		_ = v.screen.PostEvent(tcell.NewEventInterrupt(quitSignal{}))
	})
	defer stop()

	v.reload(ctx)
	v.draw()

	for {
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return v.lastErr()
		case *tcell.EventResize:
			v.screen.Sync()
			v.draw()
		case *tcell.EventInterrupt:
			switch ev.Data().(type) {
			case quitSignal:
				return v.lastErr()
			case reloadSignal:
				v.reload(ctx)
				v.draw()
			}
		case *tcell.EventKey:
			if v.handleKey(ev) {
				return v.lastErr()
			}
			v.draw()
		}
	}
}

func (v *View) handleKey(ev *tcell.EventKey) (quit bool) {
	_, height := v.screen.Size()
	page := max(height-2, 1)

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.scroll(-1)
	case tcell.KeyDown:
		v.scroll(1)
	case tcell.KeyPgUp:
		v.scroll(-page)
	case tcell.KeyPgDn:
		v.scroll(page)
	case tcell.KeyHome:
		v.scrollTo(0)
	case tcell.KeyEnd:
		v.scrollTo(len(v.Frame().Lines))
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			v.scroll(-1)
		case 'j':
			v.scroll(1)
		case 'r':
			v.Reload()
		}
	}
	return false
}

func (v *View) scroll(delta int) {
	v.scrollTo(v.Frame().Top + delta)
}

func (v *View) scrollTo(top int) {
	_, height := v.screen.Size()

	v.mu.Lock()
	defer v.mu.Unlock()
	maxTop := max(len(v.frame.Lines)-(height-1), 0)
	v.frame.Top = min(max(top, 0), maxTop)
}

func (v *View) reload(ctx context.Context) {
	f, err := v.load(ctx)

	v.mu.Lock()
	v.err = err
	if err == nil {
		f.Top = v.frame.Top
		v.frame = f
	}
	v.mu.Unlock()

	v.scroll(0)
}

func (v *View) lastErr() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

func (v *View) draw() {
	Draw(v.screen, v.Frame(), v.theme)
	v.screen.Show()
}
