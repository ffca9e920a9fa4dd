package host

import (
	"fmt"

	"github.com/google/uuid"
)

// DecorationStyle describes how a marker decoration looks.
type DecorationStyle struct {
	// HideMarker renders the marker glyph invisible.
	HideMarker bool
	// BorderColor is a "#rrggbb" color or a color name.
	BorderColor string
	// BorderAlpha is the border opacity in [0, 1].
	BorderAlpha float64
	// BorderWidth is the left border width in pixels, or cells in a terminal.
	BorderWidth int
}

// DefaultDecorationStyle is the marker style: hidden glyph, thin green border.
func DefaultDecorationStyle() DecorationStyle {
	return DecorationStyle{
		HideMarker:  true,
		BorderColor: "#32ff32",
		BorderAlpha: 0.5,
		BorderWidth: 2,
	}
}

// CSSColor returns the border color in rgba() form.
func (s DecorationStyle) CSSColor() string {
	var r, g, b int
	if _, err := fmt.Sscanf(s.BorderColor, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return s.BorderColor
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", r, g, b, s.BorderAlpha)
}

// DecorationType is a handle for a set of decorations sharing a style.
// Editors key their decoration sets by Key.
type DecorationType struct {
	Key   string
	Style DecorationStyle
}

// NewDecorationType creates a decoration type with a unique key.
func NewDecorationType(style DecorationStyle) *DecorationType {
	return &DecorationType{
		Key:   "mcmark-" + uuid.NewString(),
		Style: style,
	}
}
