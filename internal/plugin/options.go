package plugin

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host"
)

// SweepInfo describes a finished sweep. It is handed to the Hook.
type SweepInfo struct {
	URI         string
	Path        string
	Commands    int
	Edits       int
	Decorations []int
	Duration    time.Duration
	Err         error
}

// Hook is called on the loop goroutine after every sweep.
type Hook interface {
	OnSweep(ctx context.Context, info SweepInfo) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, info SweepInfo) error

// OnSweep calls f.
func (f HookFunc) OnSweep(ctx context.Context, info SweepInfo) error {
	return f(ctx, info)
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithDelay sets the debounce delay for text changes.
func WithDelay(d time.Duration) Option {
	return func(p *Plugin) {
		p.delay = d
	}
}

// WithMatcher sets the file patterns a document must match.
func WithMatcher(m *filetype.Matcher) Option {
	return func(p *Plugin) {
		p.matcher = m
	}
}

// WithDecorationStyle sets the style of the marker decoration.
func WithDecorationStyle(style host.DecorationStyle) Option {
	return func(p *Plugin) {
		p.style = style
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Plugin) {
		p.logger = l
	}
}

// WithHook installs a sweep hook.
func WithHook(h Hook) Option {
	return func(p *Plugin) {
		p.hook = h
	}
}
