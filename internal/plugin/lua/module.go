package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/mcmark/internal/engine/buffer"
	"github.com/dshills/mcmark/internal/marker"
)

// ModuleName is the name scripts require the marker module by.
const ModuleName = "mcmark"

var moduleFuncs = map[string]lua.LGFunction{
	"has_macro":   moduleHasMacro,
	"macro_names": moduleMacroNames,
	"is_comment":  moduleIsComment,
	"is_marked":   moduleIsMarked,
	"segment":     moduleSegment,
	"reconcile":   moduleReconcile,
	"sync":        moduleSync,
}

// Loader is the gopher-lua module loader for the mcmark module.
func Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), moduleFuncs)
	L.SetField(mod, "marker", lua.LString(marker.Marker))
	L.Push(mod)
	return 1
}

func moduleHasMacro(L *lua.LState) int {
	L.Push(lua.LBool(marker.HasMacro(L.CheckString(1))))
	return 1
}

func moduleMacroNames(L *lua.LState) int {
	L.Push(stringsToTable(L, marker.MacroNames(L.CheckString(1))))
	return 1
}

func moduleIsComment(L *lua.LState) int {
	L.Push(lua.LBool(marker.IsComment(L.CheckString(1))))
	return 1
}

func moduleIsMarked(L *lua.LState) int {
	L.Push(lua.LBool(marker.IsMarked(L.CheckString(1))))
	return 1
}

// segment(lines) returns a list of {start, finish, lines} tables.
func moduleSegment(L *lua.LState) int {
	lines := tableToStrings(L, L.CheckTable(1))

	out := L.NewTable()
	for cmd := range marker.Segment(lines) {
		t := L.NewTable()
		t.RawSetString("start", lua.LNumber(cmd.StartLine))
		t.RawSetString("finish", lua.LNumber(cmd.EndLine))
		t.RawSetString("lines", stringsToTable(L, cmd.Lines))
		out.Append(t)
	}
	L.Push(out)
	return 1
}

// reconcile(lines) treats lines as one command.
func moduleReconcile(L *lua.LState) int {
	lines := tableToStrings(L, L.CheckTable(1))
	res := marker.Reconcile(marker.Command{
		Lines:     lines,
		StartLine: 0,
		EndLine:   max(len(lines)-1, 0),
	})

	changes := L.NewTable()
	for _, ch := range res.Changes {
		c := L.NewTable()
		c.RawSetString("line", lua.LNumber(ch.Line))
		c.RawSetString("old", lua.LString(ch.Old))
		c.RawSetString("new", lua.LString(ch.New))
		c.RawSetString("delta", lua.LNumber(ch.Delta))
		changes.Append(c)
	}

	t := L.NewTable()
	t.RawSetString("lines", stringsToTable(L, res.Lines))
	t.RawSetString("has_macro", lua.LBool(res.HasMacro))
	t.RawSetString("show_marker", lua.LBool(res.ShowMarker))
	t.RawSetString("changes", changes)
	L.Push(t)
	return 1
}

// sync(text) returns the corrected text and the decorated line numbers.
func moduleSync(L *lua.LState) int {
	buf := buffer.NewBufferFromString(L.CheckString(1))
	lines := buf.Lines()
	out, decorated := marker.ReconcileLines(lines)
	for i, text := range out {
		if text == lines[i] {
			continue
		}
		if _, err := buf.ReplaceLine(i, text); err != nil {
			L.RaiseError("sync: %v", err)
			return 0
		}
	}

	L.Push(lua.LString(buf.Text()))
	L.Push(intsToTable(L, decorated))
	return 2
}

func stringsToTable(L *lua.LState, s []string) *lua.LTable {
	t := L.CreateTable(len(s), 0)
	for _, v := range s {
		t.Append(lua.LString(v))
	}
	return t
}

func intsToTable(L *lua.LState, s []int) *lua.LTable {
	t := L.CreateTable(len(s), 0)
	for _, v := range s {
		t.Append(lua.LNumber(v))
	}
	return t
}

// tableToStrings reads the array part of t. Non-string items raise an error.
func tableToStrings(L *lua.LState, t *lua.LTable) []string {
	n := t.Len()
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		v := t.RawGetInt(i)
		s, ok := v.(lua.LString)
		if !ok {
			L.ArgError(1, "expected a list of strings, got "+v.Type().String()+" at index "+lua.LNumber(i).String())
			return nil
		}
		out = append(out, string(s))
	}
	return out
}
