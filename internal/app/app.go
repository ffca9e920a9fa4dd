// Package app wires configuration, logging and the marker components
// together for the command line.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/dshills/mcmark/internal/config"
	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/filetype"
	"github.com/dshills/mcmark/internal/host"
	"github.com/dshills/mcmark/internal/host/filehost"
	"github.com/dshills/mcmark/internal/logging"
	"github.com/dshills/mcmark/internal/plugin"
	"github.com/dshills/mcmark/internal/plugin/lua"
	"github.com/dshills/mcmark/internal/watch"
)

// Options configures New.
type Options struct {
	// ConfigPath names the config file. Empty searches Dir.
	ConfigPath string
	// Dir is searched for config and .env files.
	Dir string
	// LogLevel overrides the configured level when set.
	LogLevel string
	// LogOutput overrides where logs go. Defaults to stderr or the
	// configured log file.
	LogOutput io.Writer
	// Fs is the file system. Defaults to the OS.
	Fs afero.Fs
	// Lookup replaces the process environment.
	Lookup func(string) (string, bool)
}

// App holds the resolved settings and builds components from them.
type App struct {
	cfg     config.Config
	fs      afero.Fs
	matcher *filetype.Matcher
	ignore  *filetype.Matcher
	logger  zerolog.Logger

	mu      sync.Mutex
	hook    *lua.Hook
	logFile io.Closer
}

// New loads the configuration and initializes the global logger.
func New(opts Options) (*App, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	a := &App{fs: opts.Fs}
	if err := a.bootstrap(opts); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) bootstrap(opts Options) error {
	// 1. Configuration
	loadOpts := []config.Option{config.WithFs(a.fs), config.WithDir(opts.Dir)}
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithFile(opts.ConfigPath))
	}
	if opts.Lookup != nil {
		loadOpts = append(loadOpts, config.WithLookup(opts.Lookup))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	a.cfg = cfg

	// 2. Logging
	logCfg := cfg.Logging()
	if opts.LogLevel != "" {
		logCfg.Level = logging.ParseLevel(opts.LogLevel)
	}
	switch {
	case opts.LogOutput != nil:
		logCfg.Output = opts.LogOutput
	case cfg.Log.File != "":
		f, err := a.fs.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return &InitError{Component: "log file", Err: err}
		}
		a.logFile = f
		logCfg.Output = f
		logCfg.Pretty = false
	}
	logging.Init(logCfg)
	a.logger = logging.WithComponent("app")

	// 3. Matchers
	if a.matcher, err = cfg.Matcher(); err != nil {
		return &InitError{Component: "file patterns", Err: err}
	}
	if len(cfg.Watch.Ignore) > 0 {
		if a.ignore, err = filetype.NewMatcher(cfg.Watch.Ignore...); err != nil {
			return &InitError{Component: "ignore patterns", Err: err}
		}
	}

	a.logger.Debug().
		Str("config", cfg.Source).
		Strs("patterns", cfg.Files.Patterns).
		Msg("configured")
	return nil
}

// Config returns the resolved settings.
func (a *App) Config() config.Config { return a.cfg }

// Fs returns the file system.
func (a *App) Fs() afero.Fs { return a.fs }

// Matcher returns the function file matcher.
func (a *App) Matcher() *filetype.Matcher { return a.matcher }

// DecorationStyle returns the configured marker style.
func (a *App) DecorationStyle() host.DecorationStyle { return a.cfg.DecorationStyle() }

// FileHost returns a host that syncs files on the app's file system.
func (a *App) FileHost() *filehost.Host {
	opts := []filehost.Option{
		filehost.WithMatcher(a.matcher),
		filehost.WithDecorationStyle(a.cfg.DecorationStyle()),
		filehost.WithLogger(logging.WithComponent("filehost")),
	}
	if a.ignore != nil {
		opts = append(opts, filehost.WithIgnore(a.ignore))
	}
	return filehost.New(a.fs, opts...)
}

// Watcher returns a file watcher using the watch settings.
func (a *App) Watcher() (*watch.Watcher, error) {
	opts := []watch.Option{
		watch.WithMatcher(a.matcher),
		watch.WithDelay(a.cfg.Watch.Debounce.Std()),
		watch.WithLogger(logging.WithComponent("watch")),
	}
	if a.ignore != nil {
		opts = append(opts, watch.WithIgnore(a.ignore))
	}
	w, err := watch.New(opts...)
	if err != nil {
		return nil, &InitError{Component: "watcher", Err: err}
	}
	return w, nil
}

// LuaState returns a fresh sandboxed Lua state. The caller closes it.
func (a *App) LuaState() *lua.State {
	return lua.NewState(
		lua.WithExecutionTimeout(a.cfg.Lua.Timeout.Std()),
		lua.WithFs(a.fs),
	)
}

// Hook loads the configured sweep script once and returns its hook.
// It returns ErrNoScript when none is configured.
func (a *App) Hook(ctx context.Context) (*lua.Hook, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.hook != nil {
		return a.hook, nil
	}
	if a.cfg.Lua.Script == "" {
		return nil, ErrNoScript
	}
	h, err := lua.LoadHook(ctx, a.cfg.Lua.Script,
		lua.WithExecutionTimeout(a.cfg.Lua.Timeout.Std()),
		lua.WithFs(a.fs),
	)
	if err != nil {
		return nil, &InitError{Component: "lua hook", Err: err}
	}
	a.hook = h
	return h, nil
}

// Plugin creates the editor plugin for ws using the configured delay,
// patterns, style and sweep hook.
func (a *App) Plugin(ctx context.Context, bus *event.Bus, ws host.Workspace) (*plugin.Plugin, error) {
	opts := []plugin.Option{
		plugin.WithDelay(a.cfg.Sync.Debounce.Std()),
		plugin.WithMatcher(a.matcher),
		plugin.WithDecorationStyle(a.cfg.DecorationStyle()),
		plugin.WithLogger(logging.WithComponent("plugin")),
	}

	hook, err := a.Hook(ctx)
	switch {
	case err == nil:
		opts = append(opts, plugin.WithHook(hook))
	case !errors.Is(err, ErrNoScript):
		return nil, err
	}

	p, err := plugin.New(bus, ws, opts...)
	if err != nil {
		return nil, &InitError{Component: "plugin", Err: err}
	}
	return p, nil
}

// Close releases the Lua hook and the log file.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.hook != nil {
		errs = append(errs, a.hook.Close())
		a.hook = nil
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}
