package nvimhost

import (
	"github.com/neovim/go-client/nvim"
)

// API is the subset of the Neovim RPC API used by the host.
// *nvim.Nvim implements it.
type API interface {
	BufferLines(buffer nvim.Buffer, start, end int, strict bool) ([][]byte, error)
	SetBufferLines(buffer nvim.Buffer, start, end int, strict bool, replacement [][]byte) error
	BufferChangedTick(buffer nvim.Buffer) (int, error)
	WindowBuffer(window nvim.Window) (nvim.Buffer, error)
	WindowCursor(window nvim.Window) ([2]int, error)
	SetWindowCursor(window nvim.Window, pos [2]int) error
	CreateNamespace(name string) (int, error)
	SetBufferExtmark(buffer nvim.Buffer, nsID, line, col int, opts map[string]any) (int, error)
	ClearBufferNamespace(buffer nvim.Buffer, nsID, lineStart, lineEnd int) error
	Command(cmd string) error
}

var _ API = (*nvim.Nvim)(nil)

// currentWindow addresses the focused window in API calls.
const currentWindow = nvim.Window(0)

func toBytes(lines []string) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = []byte(l)
	}
	return out
}

func fromBytes(lines [][]byte) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out
}
