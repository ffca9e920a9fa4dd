package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mcmark/internal/plugin"
)

// HookFunction is the global a script defines to observe sweeps.
const HookFunction = "on_sweep"

// Hook calls a script's on_sweep function after each sweep.
type Hook struct {
	state *State
}

// LoadHook runs the script at path in a new state and returns a hook for it.
func LoadHook(ctx context.Context, path string, opts ...StateOption) (*Hook, error) {
	s := NewState(opts...)
	if err := s.DoFile(ctx, path); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return NewHook(s), nil
}

// NewHook wraps an already loaded state.
func NewHook(s *State) *Hook {
	return &Hook{state: s}
}

// State returns the hook's Lua state.
func (h *Hook) State() *State {
	return h.state
}

// OnSweep calls on_sweep with a table describing the sweep. Scripts without
// an on_sweep function are skipped.
func (h *Hook) OnSweep(ctx context.Context, info plugin.SweepInfo) error {
	if !h.state.HasFunction(HookFunction) {
		return nil
	}

	t := h.state.NewTable()
	t.RawSetString("uri", lua.LString(info.URI))
	t.RawSetString("path", lua.LString(info.Path))
	t.RawSetString("commands", lua.LNumber(info.Commands))
	t.RawSetString("edits", lua.LNumber(info.Edits))
	t.RawSetString("duration_ms", lua.LNumber(float64(info.Duration.Microseconds())/1000))

	decorations := h.state.NewTable()
	for _, line := range info.Decorations {
		decorations.Append(lua.LNumber(line))
	}
	t.RawSetString("decorations", decorations)
	if info.Err != nil {
		t.RawSetString("error", lua.LString(info.Err.Error()))
	}

	if _, err := h.state.Call(ctx, HookFunction, t); err != nil {
		return fmt.Errorf("%s: %w", HookFunction, err)
	}
	return nil
}

// Close releases the hook's state.
func (h *Hook) Close() error {
	return h.state.Close()
}

var _ plugin.Hook = (*Hook)(nil)
