package filehost

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/logging"
)

func newHost(t *testing.T, files map[string]string, opts ...Option) *Host {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o640))
	}
	opts = append([]Option{WithLogger(logging.Nop())}, opts...)
	return New(fsys, opts...)
}

func read(t *testing.T, h *Host, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.Fs(), path)
	require.NoError(t, err)
	return string(data)
}

func TestHost_Sync(t *testing.T) {
	h := newHost(t, map[string]string{
		"/pack/load.mcfunction": "say $(x)\r\n$say hi\r\nexecute as @a \\\r\n  run say $(who)\r\n",
	})

	res, err := h.Sync(context.Background(), "/pack/load.mcfunction")
	require.NoError(t, err)

	want := "$say $(x)\r\nsay hi\r\n$execute as @a \\\r\n  run say $(who)\r\n"
	assert.True(t, res.Changed())
	assert.True(t, res.Written)
	assert.Equal(t, 3, res.Edits)
	assert.Equal(t, 3, res.Commands)
	assert.Equal(t, []int{0, 2}, res.Decorations)
	assert.Equal(t, want, res.After)
	assert.Equal(t, want, read(t, h, "/pack/load.mcfunction"))

	info, err := h.Fs().Stat("/pack/load.mcfunction")
	require.NoError(t, err)
	assert.Equal(t, "-rw-r-----", info.Mode().Perm().String())
}

func TestHost_SyncIsIdempotent(t *testing.T) {
	h := newHost(t, map[string]string{"/p/a.mcfunction": "say $(x)\n"})
	ctx := context.Background()

	_, err := h.Sync(ctx, "/p/a.mcfunction")
	require.NoError(t, err)

	res, err := h.Sync(ctx, "/p/a.mcfunction")
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.False(t, res.Written)
	assert.Zero(t, res.Edits)
	assert.Equal(t, []int{0}, res.Decorations)
}

func TestHost_CheckDoesNotWrite(t *testing.T) {
	h := newHost(t, map[string]string{"/p/a.mcfunction": "$say hi\n"})

	res, err := h.Check(context.Background(), "/p/a.mcfunction")
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.False(t, res.Written)
	assert.Equal(t, "say hi\n", res.After)
	assert.Equal(t, "$say hi\n", read(t, h, "/p/a.mcfunction"))
}

func TestHost_SyncMissingFile(t *testing.T) {
	h := newHost(t, nil)
	_, err := h.Sync(context.Background(), "/nope.mcfunction")
	assert.Error(t, err)
}

func TestHost_SyncEmptyFile(t *testing.T) {
	h := newHost(t, map[string]string{"/p/empty.mcfunction": ""})

	res, err := h.Sync(context.Background(), "/p/empty.mcfunction")
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Empty(t, res.Decorations)
}

func TestHost_Walk(t *testing.T) {
	h := newHost(t, map[string]string{
		"/pack/data/ns/function/a.mcfunction": "",
		"/pack/data/ns/function/b.mcfunction": "",
		"/pack/data/ns/function/notes.txt":    "",
		"/pack/.git/x.mcfunction":             "",
		"/other/c.txt":                        "",
	}, WithIgnore(filetype.MustMatcher("**/.git")))

	files, err := h.Walk("/pack", "/other/c.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/pack/data/ns/function/a.mcfunction",
		"/pack/data/ns/function/b.mcfunction",
		"/other/c.txt",
	}, files)

	_, err = h.Walk("/missing")
	assert.Error(t, err)
}

func TestHost_SyncAll(t *testing.T) {
	h := newHost(t, map[string]string{
		"/pack/a.mcfunction": "say $(x)\n",
		"/pack/b.mcfunction": "say hi\n",
	})

	results, err := h.SyncAll(context.Background(), false, "/pack")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Changed())
	assert.False(t, results[1].Changed())
	assert.Equal(t, "say $(x)\n", read(t, h, "/pack/a.mcfunction"))

	results, err = h.SyncAll(context.Background(), true, "/pack")
	require.NoError(t, err)
	assert.True(t, results[0].Written)
	assert.Equal(t, "$say $(x)\n", read(t, h, "/pack/a.mcfunction"))
}

func TestResult_Diff(t *testing.T) {
	res := &Result{
		Path:   "a.mcfunction",
		Before: "say hi\nsay $(x)\nsay bye\n",
		After:  "say hi\n$say $(x)\nsay bye\n",
	}

	assert.Equal(t, "--- a.mcfunction\n+++ a.mcfunction\n@@ line 2 @@\n-say $(x)\n+$say $(x)\n", res.Diff())

	same := &Result{Before: "x\n", After: "x\n"}
	assert.Empty(t, same.Diff())
}
