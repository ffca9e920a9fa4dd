package lua

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
)

func TestState_Sandbox(t *testing.T) {
	s := NewState()
	defer s.Close()
	ctx := context.Background()

	for _, name := range []string{"io", "os", "debug", "dofile", "loadfile", "load", "loadstring"} {
		assert.Equal(t, lua.LNil, s.L.GetGlobal(name), name)
	}

	assert.Error(t, s.DoString(ctx, "req_io", `require("io")`))
	assert.Error(t, s.DoString(ctx, "req_os", `require("os")`))
	assert.Error(t, s.DoString(ctx, "req_disk", `require("somewhere.on.disk")`))
	assert.NoError(t, s.DoString(ctx, "req_ok", `local s = require("string"); local m = require("mcmark")`))
}

func TestState_DoStringAndCall(t *testing.T) {
	s := NewState()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.DoString(ctx, "defs", `
function add(a, b) return a + b, "sum" end
value = 41
`))
	assert.True(t, s.HasFunction("add"))
	assert.False(t, s.HasFunction("value"))

	res, err := s.Call(ctx, "add", lua.LNumber(1), lua.LNumber(2))
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, lua.LNumber(3), res[0])
	assert.Equal(t, lua.LString("sum"), res[1])

	_, err = s.Call(ctx, "value")
	assert.ErrorIs(t, err, ErrNotFunction)

	assert.Error(t, s.DoString(ctx, "syntax", "function ("))
	assert.Error(t, s.DoString(ctx, "runtime", `error("boom")`))
}

func TestState_CallErrorRestoresStack(t *testing.T) {
	s := NewState()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.DoString(ctx, "defs", `function fail() error("nope") end`))
	top := s.L.GetTop()
	_, err := s.Call(ctx, "fail")
	require.Error(t, err)
	assert.Equal(t, top, s.L.GetTop())
}

func TestState_Timeout(t *testing.T) {
	s := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	err := s.DoString(context.Background(), "spin", `while true do end`)
	assert.ErrorIs(t, err, ErrExecutionTimeout)
}

func TestState_DoFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/scripts/init.lua", []byte(`loaded = true`), 0o644))

	s := NewState(WithFs(fsys))
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.DoFile(ctx, "/scripts/init.lua"))
	assert.Equal(t, lua.LTrue, s.L.GetGlobal("loaded"))

	assert.Error(t, s.DoFile(ctx, "/scripts/missing.lua"))
}

func TestState_Closed(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.DoString(ctx, "x", "x = 1"), ErrStateClosed)
	_, err := s.Call(ctx, "f")
	assert.ErrorIs(t, err, ErrStateClosed)
	assert.False(t, s.HasFunction("f"))
}
