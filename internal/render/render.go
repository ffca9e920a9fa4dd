// Package render draws a terminal preview of a function file with its marker
// decorations: the marker glyph hidden and a thin colored bar in the gutter
// of every decorated command.
package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/marker"
)

// TabWidth is the number of cells a tab occupies.
const TabWidth = 4

// Theme holds the cell styles of the preview.
type Theme struct {
	Text       tcell.Style
	LineNumber tcell.Style
	Bar        tcell.Style
	Status     tcell.Style

	BarWidth   int
	HideMarker bool
}

// NewTheme builds a theme from a decoration style. The border alpha is
// applied against a black background.
func NewTheme(style host.DecorationStyle) Theme {
	color := tcell.GetColor(style.BorderColor)
	if color != tcell.ColorDefault && style.BorderAlpha < 1 {
		r, g, b := color.RGB()
		a := max(style.BorderAlpha, 0)
		color = tcell.NewRGBColor(int32(float64(r)*a), int32(float64(g)*a), int32(float64(b)*a))
	}

	return Theme{
		Text:       tcell.StyleDefault,
		LineNumber: tcell.StyleDefault.Foreground(tcell.ColorGray),
		Bar:        tcell.StyleDefault.Background(color),
		Status:     tcell.StyleDefault.Reverse(true),
		BarWidth:   max(style.BorderWidth/2, 1),
		HideMarker: style.HideMarker,
	}
}

// Frame is the content of one preview screen.
type Frame struct {
	Title     string
	Lines     []string
	Decorated []int
	Top       int
}

// Draw renders f on s starting at line f.Top. The last row holds a status
// line. It does not call Show.
func Draw(s tcell.Screen, f Frame, theme Theme) {
	s.Clear()
	width, height := s.Size()
	if width <= 0 || height <= 0 {
		return
	}

	decorated := make(map[int]bool, len(f.Decorated))
	for _, line := range f.Decorated {
		decorated[line] = true
	}

	numWidth := len(fmt.Sprint(max(len(f.Lines), 1)))
	textCol := numWidth + 1 + theme.BarWidth + 1

	rows := height - 1
	for row := 0; row < rows; row++ {
		line := f.Top + row
		if line < 0 || line >= len(f.Lines) {
			break
		}

		putString(s, 0, row, fmt.Sprintf("%*d", numWidth, line+1), theme.LineNumber, width)
		if decorated[line] {
			for i := 0; i < theme.BarWidth; i++ {
				s.SetContent(numWidth+1+i, row, ' ', nil, theme.Bar)
			}
		}

		text := f.Lines[line]
		if decorated[line] && theme.HideMarker && strings.HasPrefix(text, marker.Marker) {
			text = text[len(marker.Marker):]
		}
		putString(s, textCol, row, text, theme.Text, width)
	}

	status := fmt.Sprintf(" %s  %d-%d/%d  %d marked ", f.Title,
		min(f.Top+1, len(f.Lines)), min(f.Top+rows, len(f.Lines)), len(f.Lines), len(f.Decorated))
	for x := 0; x < width; x++ {
		s.SetContent(x, height-1, ' ', nil, theme.Status)
	}
	putString(s, 0, height-1, status, theme.Status, width)
}

// putString writes text from column x, expanding tabs and clipping at width.
func putString(s tcell.Screen, x, y int, text string, style tcell.Style, width int) int {
	for _, r := range text {
		if x >= width {
			break
		}
		if r == '\t' {
			for i := 0; i < TabWidth && x < width; i++ {
				s.SetContent(x, y, ' ', nil, style)
				x++
			}
			continue
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
