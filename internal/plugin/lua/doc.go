// Package lua runs user Lua scripts against the marker rules.
//
// A State is a gopher-lua state with the io, os, debug and package loaders
// left closed. The "mcmark" module is preloaded and exposes the marker rules:
//
//	local mcmark = require("mcmark")
//
//	mcmark.has_macro("say $(name)")        --> true
//	mcmark.is_comment("  # note")          --> true
//	mcmark.is_marked("$say $(name)")       --> true
//	mcmark.macro_names("$(a) $(b)")        --> {"a", "b"}
//	mcmark.segment({"a \\", "b", "c"})     --> {{start=0, finish=1, lines={...}}, ...}
//	mcmark.reconcile({"say $(x)"})         --> {lines={"$say $(x)"}, has_macro=true, show_marker=true}
//	mcmark.sync("say $(x)\n")              --> "$say $(x)\n", {0}
//
// Line numbers are zero based, matching editor positions.
//
// A Hook loads a script and calls its global on_sweep function after every
// plugin sweep with a table describing the sweep.
package lua
