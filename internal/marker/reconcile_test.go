package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func single(line string) Command {
	return Command{Lines: []string{line}}
}

func TestReconcile_SingleLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		want       string
		wantShow   bool
		wantDelta  int
		wantChange bool
	}{
		{"plain", "say hello", "say hello", false, 0, false},
		{"adds marker", "say $(name)", "$say $(name)", true, 1, true},
		{"strips marker", "$say hello", "say hello", false, -1, true},
		{"already marked", "$say $(name)", "$say $(name)", true, 0, false},
		{"comment with macro", "# $(note) example", "# $(note) example", false, 0, false},
		{"indented comment", "  # $(note)", "  # $(note)", false, 0, false},
		{"placeholder first", "$(cmd) arg", "$$(cmd) arg", true, 1, true},
		{"indented marked keeps indent", "  $say hi", "  say hi", false, -1, true},
		{"empty", "", "", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Reconcile(single(tt.line))
			require.Len(t, res.Lines, 1)
			assert.Equal(t, tt.want, res.Lines[0])
			assert.Equal(t, tt.wantShow, res.ShowMarker)
			assert.Equal(t, tt.wantChange, res.Changed())
			if tt.wantChange {
				require.Len(t, res.Changes, 1)
				assert.Equal(t, tt.wantDelta, res.Changes[0].Delta)
				assert.Equal(t, tt.line, res.Changes[0].Old)
			}
		})
	}
}

func TestReconcile_MultiLineWithMacro(t *testing.T) {
	cmd := Command{
		Lines:     []string{`execute as @a \`, "run say $(msg)"},
		StartLine: 3,
		EndLine:   4,
	}

	res := Reconcile(cmd)
	assert.Equal(t, []string{`$execute as @a \`, "run say $(msg)"}, res.Lines)
	assert.True(t, res.ShowMarker)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, LineChange{Line: 3, Old: `execute as @a \`, New: `$execute as @a \`, Delta: 1}, res.Changes[0])
}

func TestReconcile_MultiLineStripsContinuationMarkers(t *testing.T) {
	cmd := Command{
		Lines: []string{`$execute as @a \`, `$at @s \`, "  $run say $(msg)"},
	}

	res := Reconcile(cmd)
	assert.Equal(t, []string{`$execute as @a \`, `at @s \`, "  run say $(msg)"}, res.Lines)
	require.Len(t, res.Changes, 2)
	assert.Equal(t, 1, res.Changes[0].Line)
	assert.Equal(t, 2, res.Changes[1].Line)
}

func TestReconcile_ContinuationKeepsLeadingPlaceholder(t *testing.T) {
	cmd := Command{Lines: []string{`tp @s \`, "$(y) ~ ~"}}

	res := Reconcile(cmd)
	assert.Equal(t, []string{`$tp @s \`, "$(y) ~ ~"}, res.Lines)
	assert.True(t, res.ShowMarker)

	again := Reconcile(Command{Lines: res.Lines})
	assert.False(t, again.Changed())
	assert.True(t, again.ShowMarker)
}

func TestReconcile_MultiLineWithoutMacro(t *testing.T) {
	cmd := Command{Lines: []string{`$execute as @a \`, "$run say hi"}}

	res := Reconcile(cmd)
	assert.Equal(t, []string{`execute as @a \`, "run say hi"}, res.Lines)
	assert.False(t, res.ShowMarker)
	assert.Len(t, res.Changes, 2)
}

func TestReconcile_CommentLedMultiLine(t *testing.T) {
	cmd := Command{Lines: []string{`# note \`, "$ $(x)"}}

	res := Reconcile(cmd)
	assert.Equal(t, []string{`# note \`, " $(x)"}, res.Lines)
	assert.False(t, res.ShowMarker)
}

func TestReconcile_Idempotent(t *testing.T) {
	inputs := [][]string{
		{"say $(name)"},
		{"$say hello"},
		{`execute as @a \`, "$run say $(msg)"},
		{`$a \`, `$b \`, "$c"},
		{"$(x) y"},
		{"# $(x)"},
		{`$\`, "$(x)"},
	}

	for _, lines := range inputs {
		first := Reconcile(Command{Lines: lines})
		second := Reconcile(Command{Lines: first.Lines})
		assert.False(t, second.Changed(), "second pass changed %q", first.Lines)
		assert.Equal(t, first.ShowMarker, second.ShowMarker)
	}
}

func TestReconcile_Empty(t *testing.T) {
	res := Reconcile(Command{})
	assert.Empty(t, res.Lines)
	assert.False(t, res.Changed())
}

func TestReconcileLines(t *testing.T) {
	in := []string{
		"say hello",
		"say $(name)",
		"$say hello",
		`execute as @a \`,
		"run say $(msg)",
		"# $(note) example",
	}

	out, decorated := ReconcileLines(in)
	assert.Equal(t, []string{
		"say hello",
		"$say $(name)",
		"say hello",
		`$execute as @a \`,
		"run say $(msg)",
		"# $(note) example",
	}, out)
	assert.Equal(t, []int{1, 3}, decorated)
	assert.Equal(t, "say $(name)", in[1], "input must not be modified")

	again, decoratedAgain := ReconcileLines(out)
	assert.Equal(t, out, again)
	assert.Equal(t, decorated, decoratedAgain)
}
