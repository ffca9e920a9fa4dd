package buffer

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBufferFromString(t *testing.T) {
	b := NewBufferFromString("say a\nsay b\n")

	assert.Equal(t, 2, b.LineCount())
	text, err := b.LineText(1)
	require.NoError(t, err)
	assert.Equal(t, "say b", text)
	assert.Equal(t, "say a\nsay b\n", b.Text())
}

func TestNewBufferFromString_CRLF(t *testing.T) {
	b := NewBufferFromString("say a\r\nsay b")

	assert.Equal(t, LineEndingCRLF, b.LineEnding())
	assert.Equal(t, []string{"say a", "say b"}, b.Lines())
	assert.Equal(t, "say a\r\nsay b", b.Text())
}

func TestNewBufferFromLines_Empty(t *testing.T) {
	b := NewBufferFromLines(nil)
	assert.Equal(t, 0, b.LineCount())
	assert.Equal(t, "", b.Text())

	_, err := b.LineText(0)
	assert.ErrorIs(t, err, ErrLineOutOfRange)

	_, err = b.Insert(Point{}, "say hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"say hi"}, b.Lines())
}

func TestNewBufferFromReader(t *testing.T) {
	b, err := NewBufferFromReader(strings.NewReader("x\ny"))
	require.NoError(t, err)
	assert.Equal(t, 2, b.LineCount())
}

func TestReplaceLine(t *testing.T) {
	b := NewBufferFromLines([]string{"say a", "say $(b)"})
	rev := b.Revision()

	ch, err := b.ReplaceLine(1, "$say $(b)")
	require.NoError(t, err)
	assert.Equal(t, ChangeReplace, ch.Type)
	assert.Equal(t, "say $(b)", ch.OldText)
	assert.Equal(t, Range{Start: Point{1, 0}, End: Point{1, 9}}, ch.NewRange)
	assert.NotEqual(t, rev, b.Revision())
	assert.Equal(t, []string{"say a", "$say $(b)"}, b.Lines())
}

func TestReplaceLine_Errors(t *testing.T) {
	b := NewBufferFromLines([]string{"a"})

	_, err := b.ReplaceLine(3, "x")
	assert.ErrorIs(t, err, ErrLineOutOfRange)

	_, err = b.ReplaceLine(0, "x\ny")
	assert.ErrorIs(t, err, ErrRangeInvalid)
}

func TestReplace_MultiLine(t *testing.T) {
	b := NewBufferFromLines([]string{"one", "two", "three"})

	ch, err := b.Replace(Range{Start: Point{0, 1}, End: Point{2, 2}}, "X\nY")
	require.NoError(t, err)
	assert.Equal(t, []string{"oX", "Yree"}, b.Lines())
	assert.Equal(t, "ne\ntwo\nth", ch.OldText)
	assert.Equal(t, Point{1, 1}, ch.NewRange.End)

	_, err = b.Apply(ch.Invert())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, b.Lines())
}

func TestInsertDelete(t *testing.T) {
	b := NewBufferFromLines([]string{"say hi"})

	ch, err := b.Insert(Point{0, 0}, "$")
	require.NoError(t, err)
	assert.Equal(t, ChangeInsert, ch.Type)
	assert.Equal(t, "$say hi", b.Lines()[0])

	ch, err = b.Delete(Range{Start: Point{0, 0}, End: Point{0, 1}})
	require.NoError(t, err)
	assert.Equal(t, ChangeDelete, ch.Type)
	assert.Equal(t, ChangeInsert, ch.Invert().Type)
	assert.Equal(t, "say hi", b.Lines()[0])
}

func TestReplace_InvalidRange(t *testing.T) {
	b := NewBufferFromLines([]string{"abc"})

	_, err := b.Replace(Range{Start: Point{0, 2}, End: Point{0, 1}}, "")
	assert.ErrorIs(t, err, ErrRangeInvalid)

	_, err = b.Replace(Range{Start: Point{0, 0}, End: Point{0, 9}}, "")
	assert.ErrorIs(t, err, ErrRangeInvalid)
}

func TestBuffer_ConcurrentReads(t *testing.T) {
	b := NewBufferFromLines([]string{"a", "b", "c"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Text()
				_, _ = b.LineText(j % 3)
			}
		}()
	}
	for j := 0; j < 50; j++ {
		_, _ = b.ReplaceLine(j%3, "x")
	}
	wg.Wait()
	assert.Equal(t, 3, b.LineCount())
}
