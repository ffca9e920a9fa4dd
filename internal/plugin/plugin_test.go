package plugin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/event/events"
	"github.com/dshills/mcmark/internal/event/topic"
	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/host/memory"
	"github.com/dshills/mcmark/internal/logging"
)

const testDelay = 20 * time.Millisecond

type fixture struct {
	bus *event.Bus
	ws  *memory.Workspace
	p   *Plugin
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	bus := event.NewBus()
	ws := memory.NewWorkspace(bus)
	opts = append([]Option{WithDelay(testDelay), WithLogger(logging.Nop())}, opts...)
	p, err := New(bus, ws, opts...)
	require.NoError(t, err)
	return &fixture{bus: bus, ws: ws, p: p}
}

func (f *fixture) activate(t *testing.T) {
	t.Helper()
	require.NoError(t, f.p.Activate(context.Background()))
	t.Cleanup(func() {
		if f.p.IsActive() {
			_ = f.p.Deactivate()
		}
	})
}

func collect(t *testing.T, bus *event.Bus, tp topic.Topic) <-chan event.Event {
	t.Helper()

	ch := make(chan event.Event, 64)
	sub, err := bus.SubscribeFunc(tp, func(_ context.Context, e event.Event) error {
		select {
		case ch <- e:
		default:
		}
		return nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Unsubscribe(sub) })
	return ch
}

func await[T any](t *testing.T, ch <-chan event.Event) T {
	t.Helper()

	select {
	case e := <-ch:
		payload, ok := e.Payload.(T)
		require.True(t, ok, "unexpected payload %T", e.Payload)
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

// awaitEdits waits for a DecorationsUpdated that made at least one edit.
func awaitEdits(t *testing.T, ch <-chan event.Event) events.DecorationsUpdated {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case e := <-ch:
			if u, ok := e.Payload.(events.DecorationsUpdated); ok && u.Edits > 0 {
				return u
			}
		case <-deadline:
			t.Fatal("timed out waiting for a sweep with edits")
			return events.DecorationsUpdated{}
		}
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, memory.NewWorkspace(nil))
	assert.ErrorIs(t, err, ErrNilBus)

	_, err = New(event.NewBus(), nil)
	assert.ErrorIs(t, err, ErrNilWorkspace)
}

func TestPlugin_Qualifies(t *testing.T) {
	f := newFixture(t, WithMatcher(filetype.MustMatcher("**/*.mcfunction")))

	fn := f.ws.OpenLines("/pack/data/ns/function/load.mcfunction", nil)
	txt := f.ws.OpenLines("/pack/readme.txt", nil)

	assert.True(t, f.p.Qualifies(fn.Document()))
	assert.False(t, f.p.Qualifies(txt.Document()))
	assert.False(t, f.p.Qualifies(nil))
}

func TestPlugin_ActivateSweepsFocusedEditor(t *testing.T) {
	f := newFixture(t)
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)

	ed := f.ws.OpenLines("/pack/load.mcfunction", []string{"say $(x)", "# $(x)", "say hi"})
	require.NoError(t, f.ws.Show(context.Background(), ed))

	f.activate(t)

	u := awaitEdits(t, updates)
	assert.Equal(t, ed.Document().URI(), u.URI)
	assert.Equal(t, 1, u.Edits)
	assert.Equal(t, 3, u.Commands)
	assert.Equal(t, []host.Range{host.MarkerRange(0)}, u.Ranges)

	assert.Equal(t, []string{"$say $(x)", "# $(x)", "say hi"}, ed.Doc().Lines())
	assert.Equal(t, []host.Range{host.MarkerRange(0)}, ed.Decorations(f.p.DecorationType()))
}

func TestPlugin_ActivateTwice(t *testing.T) {
	f := newFixture(t)
	f.activate(t)

	assert.ErrorIs(t, f.p.Activate(context.Background()), ErrAlreadyActive)
	require.NoError(t, f.p.Deactivate())
	assert.ErrorIs(t, f.p.Deactivate(), ErrNotActive)
	assert.False(t, f.p.IsActive())
}

func TestPlugin_TypingAddsMarkerAndShiftsCursor(t *testing.T) {
	f := newFixture(t)
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"say hi"})
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, ed))
	await[events.DecorationsUpdated](t, updates)

	require.NoError(t, ed.Type(ctx, host.Position{Line: 0, Character: 4}, "$(x) "))
	assert.Equal(t, host.Position{Line: 0, Character: 9}, ed.Selection())

	u := awaitEdits(t, updates)
	assert.Equal(t, []host.Range{host.MarkerRange(0)}, u.Ranges)
	assert.Equal(t, []string{"$say $(x) hi"}, ed.Doc().Lines())
	assert.Equal(t, host.Position{Line: 0, Character: 10}, ed.Selection())
}

func TestPlugin_RemovingMacroStripsMarker(t *testing.T) {
	f := newFixture(t)
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"$say $(x)"})
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, ed))
	await[events.DecorationsUpdated](t, updates)

	ed.SetSelection(host.Position{Line: 0, Character: 5})
	require.NoError(t, ed.Replace(ctx, host.Range{
		Start: host.Position{Line: 0, Character: 5},
		End:   host.Position{Line: 0, Character: 9},
	}, "y"))

	u := awaitEdits(t, updates)
	assert.Empty(t, u.Ranges)
	assert.Equal(t, []string{"say y"}, ed.Doc().Lines())
	assert.Equal(t, 4, ed.Selection().Character)
}

func TestPlugin_FixJoinsUserUndoStep(t *testing.T) {
	f := newFixture(t)
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"say hi"})
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, ed))
	await[events.DecorationsUpdated](t, updates)

	require.NoError(t, ed.Type(ctx, host.Position{Line: 0, Character: 6}, " $(x)"))
	awaitEdits(t, updates)
	require.Equal(t, []string{"$say hi $(x)"}, ed.Doc().Lines())

	require.NoError(t, ed.Undo(ctx))
	assert.Equal(t, []string{"say hi"}, ed.Doc().Lines())
}

func TestPlugin_DebounceCoalescesBurst(t *testing.T) {
	f := newFixture(t, WithDelay(100*time.Millisecond))
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{""})
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, ed))
	await[events.DecorationsUpdated](t, updates)
	before := f.p.Stats().Sweeps

	for i, r := range "say hello" {
		require.NoError(t, ed.Type(ctx, host.Position{Line: 0, Character: i}, string(r)))
		time.Sleep(2 * time.Millisecond)
	}

	await[events.DecorationsUpdated](t, updates)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, before+1, f.p.Stats().Sweeps)
}

func TestPlugin_FocusSweepCancelsPendingDebounce(t *testing.T) {
	f := newFixture(t, WithDelay(time.Hour))
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"say hi"})
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, ed))
	await[events.DecorationsUpdated](t, updates)
	assert.Zero(t, f.p.Stats().Pending)

	// No marker change, so the sweep makes no edits of its own.
	require.NoError(t, ed.Type(ctx, host.Position{Line: 0, Character: 6}, " there"))
	require.Eventually(t, func() bool {
		return f.p.Stats().Pending == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.ws.Show(ctx, ed))
	u := await[events.DecorationsUpdated](t, updates)
	assert.Equal(t, ed.Document().URI(), u.URI)
	assert.Zero(t, u.Edits)
	assert.Equal(t, []string{"say hi there"}, ed.Doc().Lines())
	assert.Zero(t, f.p.Stats().Pending)
	assert.Equal(t, uint64(2), f.p.Stats().Sweeps)
}

func TestPlugin_IgnoresUnfocusedDocument(t *testing.T) {
	f := newFixture(t)
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	ctx := context.Background()

	focused := f.ws.OpenLines("/pack/a.mcfunction", []string{"say a"})
	other := f.ws.OpenLines("/pack/b.mcfunction", []string{"say b"})
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, focused))
	await[events.DecorationsUpdated](t, updates)

	require.NoError(t, other.Type(ctx, host.Position{Line: 0, Character: 5}, " $(x)"))
	f.p.Flush()
	time.Sleep(3 * testDelay)

	assert.Equal(t, []string{"say b $(x)"}, other.Doc().Lines())
	assert.Equal(t, 0, other.AppliedEdits())
}

func TestPlugin_NonQualifyingEditorClearsDecorations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	notes := f.ws.OpenLines("/pack/notes.txt", []string{"say $(x)"})
	notes.SetDecorations(f.p.DecorationType(), []host.Range{host.MarkerRange(0)})
	f.activate(t)

	require.NoError(t, f.ws.Show(ctx, notes))
	require.Eventually(t, func() bool {
		return f.p.Stats().Clears == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Empty(t, notes.Decorations(f.p.DecorationType()))
	assert.Equal(t, []string{"say $(x)"}, notes.Doc().Lines())
	assert.Zero(t, f.p.Stats().Sweeps)
}

func TestPlugin_RejectedEditFailsThenHeals(t *testing.T) {
	f := newFixture(t)
	updates := collect(t, f.bus, events.TopicDecorationsUpdated)
	failures := collect(t, f.bus, events.TopicSweepFailed)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"say $(x)"})
	ed.SetEditFilter(func(host.Edit) error { return errors.New("read-only") })
	f.activate(t)
	require.NoError(t, f.ws.Show(ctx, ed))

	failed := await[events.SweepFailed](t, failures)
	assert.ErrorIs(t, failed.Err, host.ErrEditRejected)
	assert.Equal(t, []string{"say $(x)"}, ed.Doc().Lines())
	assert.Equal(t, uint64(1), f.p.Stats().Failures)

	ed.SetEditFilter(nil)
	require.True(t, f.p.SweepActive())

	u := awaitEdits(t, updates)
	assert.Equal(t, []host.Range{host.MarkerRange(0)}, u.Ranges)
	assert.Equal(t, []string{"$say $(x)"}, ed.Doc().Lines())
}

func TestPlugin_HookReceivesSweepInfo(t *testing.T) {
	var mu sync.Mutex
	var infos []SweepInfo
	hook := HookFunc(func(_ context.Context, info SweepInfo) error {
		mu.Lock()
		defer mu.Unlock()
		infos = append(infos, info)
		return errors.New("hook errors are only logged")
	})

	f := newFixture(t, WithHook(hook))
	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"say $(x)", "say y"})
	require.NoError(t, f.ws.Show(context.Background(), ed))
	f.activate(t)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(infos) > 0
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	first := infos[0]
	assert.Equal(t, "/pack/tick.mcfunction", first.Path)
	assert.Equal(t, 2, first.Commands)
	assert.Equal(t, 1, first.Edits)
	assert.Equal(t, []int{0}, first.Decorations)
	assert.NoError(t, first.Err)
}

func TestPlugin_DeactivateStopsProcessing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ed := f.ws.OpenLines("/pack/tick.mcfunction", []string{"say hi"})
	f.activate(t)
	require.NoError(t, f.p.Deactivate())
	assert.Equal(t, 0, f.bus.Stats().Subscriptions)

	require.NoError(t, f.ws.Show(ctx, ed))
	require.NoError(t, ed.Type(ctx, host.Position{Line: 0, Character: 6}, " $(x)"))
	time.Sleep(3 * testDelay)

	assert.Equal(t, []string{"say hi $(x)"}, ed.Doc().Lines())
	assert.False(t, f.p.SweepActive())
	assert.Zero(t, f.p.Stats().Sweeps)
}
