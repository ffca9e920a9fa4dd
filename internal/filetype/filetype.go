// Package filetype decides which files the marker rules apply to.
package filetype

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPatterns selects Minecraft function files.
var DefaultPatterns = []string{"**/*.mcfunction"}

// Matcher matches file paths against doublestar patterns.
type Matcher struct {
	patterns []string
}

// NewMatcher validates patterns and returns a matcher.
// An empty list selects DefaultPatterns.
func NewMatcher(patterns ...string) (*Matcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern %q", p)
		}
	}
	return &Matcher{patterns: append([]string(nil), patterns...)}, nil
}

// MustMatcher is NewMatcher that panics on an invalid pattern.
func MustMatcher(patterns ...string) *Matcher {
	m, err := NewMatcher(patterns...)
	if err != nil {
		panic(err)
	}
	return m
}

// Patterns returns the configured patterns.
func (m *Matcher) Patterns() []string {
	return append([]string(nil), m.patterns...)
}

// Match reports whether p is selected. Patterns without a slash are matched
// against the base name only.
func (m *Matcher) Match(p string) bool {
	if p == "" {
		return false
	}
	p = strings.TrimPrefix(filepath.ToSlash(p), "file://")
	p = strings.TrimLeft(strings.TrimPrefix(p, filepath.VolumeName(p)), "/")

	for _, pattern := range m.patterns {
		target := p
		if !strings.Contains(pattern, "/") {
			target = path.Base(p)
		}
		if ok, _ := doublestar.Match(pattern, target); ok {
			return true
		}
	}
	return false
}
