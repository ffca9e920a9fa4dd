// Package nvimhost adapts a running Neovim instance to the host interfaces so
// the marker plugin can run as a Neovim remote plugin.
//
// Buffers map to editors. Decorations become extmarks in a private namespace:
// the marker is concealed and a sign draws the gutter bar. Text is fetched in
// one call per change and edits are joined to the user's last undo block.
package nvimhost
