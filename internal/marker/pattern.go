package marker

import (
	"regexp"
	"strings"
	"unicode"
)

// Marker is the prefix that flags a macro command line.
const Marker = "$"

// CommentPrefix starts a comment line.
const CommentPrefix = "#"

// macroPattern matches a macro placeholder. Names use letters, digits and
// underscores, the same alphabet the game accepts for macro keys.
var (
	macroPattern   = regexp.MustCompile(`\$\([A-Za-z0-9_]+\)`)
	leadingPattern = regexp.MustCompile(`^\$\([A-Za-z0-9_]+\)`)
)

// HasMacro reports whether text contains a macro placeholder.
func HasMacro(text string) bool {
	return macroPattern.MatchString(text)
}

// MacroNames returns the placeholder names found in text, in order of appearance.
func MacroNames(text string) []string {
	matches := macroPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[2 : len(m)-1]
	}
	return names
}

// IsComment reports whether line is a comment.
func IsComment(line string) bool {
	return strings.HasPrefix(trimLeft(line), CommentPrefix)
}

// IsContinued reports whether line continues onto the next line.
func IsContinued(line string) bool {
	return strings.HasSuffix(strings.TrimRightFunc(line, unicode.IsSpace), `\`)
}

// MarkerColumn returns the byte column of the line's marker.
// ok is false when the line carries no marker.
func MarkerColumn(line string) (col int, ok bool) {
	rest := trimLeft(line)
	if !strings.HasPrefix(rest, Marker) || leadingPattern.MatchString(rest) {
		return 0, false
	}
	return len(line) - len(rest), true
}

// IsMarked reports whether line carries a marker.
func IsMarked(line string) bool {
	_, ok := MarkerColumn(line)
	return ok
}

// AddMarker returns line with a marker at column 0.
// Lines that are already marked are returned unchanged.
func AddMarker(line string) string {
	if IsMarked(line) {
		return line
	}
	return Marker + line
}

// StripMarker returns line without its marker. Indentation is kept.
func StripMarker(line string) string {
	col, ok := MarkerColumn(line)
	if !ok {
		return line
	}
	return line[:col] + line[col+len(Marker):]
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
