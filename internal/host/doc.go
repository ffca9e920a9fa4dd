// Package host defines the boundary between the marker synchronizer and the
// editor that owns the document.
//
// The editor keeps the text buffer, the cursor and the rendering of
// decorations. The synchronizer only reads lines, requests single-line
// replacements and hands over the ranges that should be decorated. Concrete
// editors live in subpackages: memory (in-process, used by the CLI and tests),
// filehost (files on disk) and nvim (Neovim remote plugin).
package host
