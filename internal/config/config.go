package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/logging"
)

// Duration is a time.Duration written as a string such as "100ms".
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds every mcmark setting.
type Config struct {
	Files      Files      `toml:"files"`
	Sync       Sync       `toml:"sync"`
	Decoration Decoration `toml:"decoration"`
	Log        Log        `toml:"log"`
	Lua        Lua        `toml:"lua"`
	Watch      Watch      `toml:"watch"`

	// Source is the config file the settings were read from, if any.
	Source string `toml:"-"`
}

// Files selects the documents markers are maintained in.
type Files struct {
	Patterns []string `toml:"patterns"`
}

// Sync configures the editor plugin.
type Sync struct {
	Debounce Duration `toml:"debounce"`
}

// Decoration configures how marked commands are shown.
type Decoration struct {
	HideMarker  bool    `toml:"hide_marker"`
	BorderColor string  `toml:"border_color"`
	BorderAlpha float64 `toml:"border_alpha"`
	BorderWidth int     `toml:"border_width"`
}

// Log configures logging.
type Log struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
	File   string `toml:"file"`
}

// Lua configures the scripting hook.
type Lua struct {
	Script  string   `toml:"script"`
	Timeout Duration `toml:"timeout"`
}

// Watch configures watch mode.
type Watch struct {
	Debounce Duration `toml:"debounce"`
	Ignore   []string `toml:"ignore"`
}

// Default returns the built-in settings.
func Default() Config {
	style := host.DefaultDecorationStyle()
	return Config{
		Files: Files{Patterns: append([]string(nil), filetype.DefaultPatterns...)},
		Sync:  Sync{Debounce: Duration(100 * time.Millisecond)},
		Decoration: Decoration{
			HideMarker:  style.HideMarker,
			BorderColor: style.BorderColor,
			BorderAlpha: style.BorderAlpha,
			BorderWidth: style.BorderWidth,
		},
		Log: Log{Level: "info", Pretty: true},
		Lua: Lua{Timeout: Duration(5 * time.Second)},
		Watch: Watch{
			Debounce: Duration(100 * time.Millisecond),
			Ignore:   []string{"**/.git/**"},
		},
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error", "off", "none"}

// Validate checks every setting and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...)))
	}

	if len(c.Files.Patterns) == 0 {
		fail("files.patterns must not be empty")
	} else if _, err := filetype.NewMatcher(c.Files.Patterns...); err != nil {
		fail("files.patterns: %v", err)
	}
	if c.Sync.Debounce <= 0 {
		fail("sync.debounce must be positive, got %s", c.Sync.Debounce.Std())
	}
	if c.Decoration.BorderAlpha < 0 || c.Decoration.BorderAlpha > 1 {
		fail("decoration.border_alpha must be within [0, 1], got %g", c.Decoration.BorderAlpha)
	}
	if c.Decoration.BorderWidth < 0 {
		fail("decoration.border_width must not be negative, got %d", c.Decoration.BorderWidth)
	}
	if c.Decoration.BorderColor == "" {
		fail("decoration.border_color must not be empty")
	}
	if !containsFold(logLevels, c.Log.Level) {
		fail("log.level %q is not one of %s", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if c.Lua.Timeout <= 0 {
		fail("lua.timeout must be positive, got %s", c.Lua.Timeout.Std())
	}
	if c.Watch.Debounce <= 0 {
		fail("watch.debounce must be positive, got %s", c.Watch.Debounce.Std())
	}
	if len(c.Watch.Ignore) > 0 {
		if _, err := filetype.NewMatcher(c.Watch.Ignore...); err != nil {
			fail("watch.ignore: %v", err)
		}
	}
	return errors.Join(errs...)
}

// DecorationStyle returns the decoration settings as a host style.
func (c Config) DecorationStyle() host.DecorationStyle {
	return host.DecorationStyle{
		HideMarker:  c.Decoration.HideMarker,
		BorderColor: c.Decoration.BorderColor,
		BorderAlpha: c.Decoration.BorderAlpha,
		BorderWidth: c.Decoration.BorderWidth,
	}
}

// Matcher returns the document matcher for Files.Patterns.
func (c Config) Matcher() (*filetype.Matcher, error) {
	return filetype.NewMatcher(c.Files.Patterns...)
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
