package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcmark/internal/config"
)

func run(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()
	return runState(t, &state{fs: fsys, logOutput: io.Discard}, args...)
}

func runState(t *testing.T, st *state, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(st)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color", "--dir", "/proj"}, args...))
	err := execute(context.Background(), st, root)
	return out.String(), err
}

// closeTrackingFs records whether the files it opened were closed.
type closeTrackingFs struct {
	afero.Fs
	mu    sync.Mutex
	files []*trackedFile
}

type trackedFile struct {
	afero.File
	closed bool
}

func (f *trackedFile) Close() error {
	f.closed = true
	return f.File.Close()
}

func (fs *closeTrackingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err != nil || flag&os.O_WRONLY == 0 {
		return f, err
	}
	tf := &trackedFile{File: f}
	fs.mu.Lock()
	fs.files = append(fs.files, tf)
	fs.mu.Unlock()
	return tf, nil
}

func (fs *closeTrackingFs) open() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, f := range fs.files {
		if !f.closed {
			n++
		}
	}
	return n
}

func project(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/data/p/function/ok.mcfunction":  "say hi\n$say $(x)\n",
		"/proj/data/p/function/bad.mcfunction": "say $(x)\n$say hi\n",
		"/proj/README.md":                      "say $(x)\n",
	}
	for path, text := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(text), 0o644))
	}
	return fsys
}

func read(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestCheck(t *testing.T) {
	fsys := project(t)

	out, err := run(t, fsys, "check", "/proj")
	require.ErrorIs(t, err, ErrOutOfSync)
	assert.Equal(t, 2, ExitCode(err))
	assert.Contains(t, out, "out of sync /proj/data/p/function/bad.mcfunction (2 lines)")
	assert.NotContains(t, out, "ok.mcfunction")

	assert.Equal(t, "say $(x)\n$say hi\n", read(t, fsys, "/proj/data/p/function/bad.mcfunction"))
}

func TestCheck_FailureClosesLogFile(t *testing.T) {
	fsys := &closeTrackingFs{Fs: project(t)}
	require.NoError(t, afero.WriteFile(fsys.Fs, "/proj/mcmark.toml", []byte("[log]\nfile = \"/proj/mcmark.log\"\n"), 0o644))
	st := &state{fs: fsys}

	_, err := runState(t, st, "check", "/proj")
	require.ErrorIs(t, err, ErrOutOfSync)
	assert.Equal(t, 2, ExitCode(err))

	require.Len(t, fsys.files, 1)
	assert.Zero(t, fsys.open())
	assert.Nil(t, st.app)
}

func TestCheck_Diff(t *testing.T) {
	out, err := run(t, project(t), "check", "--diff", "/proj")
	require.Error(t, err)
	assert.Contains(t, out, "-say $(x)\n")
	assert.Contains(t, out, "+$say $(x)\n")
	assert.Contains(t, out, "+say hi\n")
}

func TestCheck_Clean(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/proj/a.mcfunction", []byte("$say $(x)\n"), 0o644))

	out, err := run(t, fsys, "check", "/proj")
	require.NoError(t, err)
	assert.Contains(t, out, "1 file ok")
}

func TestFix(t *testing.T) {
	fsys := project(t)

	out, err := run(t, fsys, "fix", "/proj")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed /proj/data/p/function/bad.mcfunction (2 edits)")
	assert.Contains(t, out, "2 files checked, 1 file fixed")

	assert.Equal(t, "$say $(x)\nsay hi\n", read(t, fsys, "/proj/data/p/function/bad.mcfunction"))
	assert.Equal(t, "say $(x)\n", read(t, fsys, "/proj/README.md"))

	_, err = run(t, fsys, "check", "/proj")
	assert.NoError(t, err)
}

func TestFix_ConfiguredPatterns(t *testing.T) {
	fsys := project(t)
	require.NoError(t, afero.WriteFile(fsys, "/proj/mcmark.toml", []byte("[files]\npatterns = [\"*.md\"]\n"), 0o644))

	_, err := run(t, fsys, "fix", "/proj")
	require.NoError(t, err)
	assert.Equal(t, "$say $(x)\n", read(t, fsys, "/proj/README.md"))
	assert.Equal(t, "say $(x)\n$say hi\n", read(t, fsys, "/proj/data/p/function/bad.mcfunction"))
}

func TestBadConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/proj/mcmark.toml", []byte("[decoration]\nborder_alpha = 3.0\n"), 0o644))

	_, err := run(t, fsys, "check", "/proj")
	require.ErrorIs(t, err, config.ErrValidationFailed)
	assert.Equal(t, 1, ExitCode(err))
}

func TestLua(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/proj/s.lua", []byte(`
assert(arg[1] == "one")
local text = require("mcmark").sync("say $(x)")
assert(text == "$say $(x)", text)
`), 0o644))

	_, err := run(t, fsys, "lua", "/proj/s.lua", "one")
	require.NoError(t, err)

	_, err = run(t, fsys, "lua", "-e", `error("boom")`)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, afero.NewMemMapFs(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mcmark dev")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("x")))
	assert.Equal(t, 2, ExitCode(ErrOutOfSync))
}
