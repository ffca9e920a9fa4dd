package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/dshills/mcmark/internal/config/loader"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MCMARK_"

// SearchFiles are tried in order when no config file is given.
var SearchFiles = []string{"mcmark.toml", "mcmark.yaml", "mcmark.yml", ".mcmark.toml"}

var envBindings = map[string]loader.Binding{
	"PATTERNS":       {Path: "files.patterns", Kind: loader.KindList},
	"DEBOUNCE":       {Path: "sync.debounce", Kind: loader.KindDuration},
	"HIDE_MARKER":    {Path: "decoration.hide_marker", Kind: loader.KindBool},
	"BORDER_COLOR":   {Path: "decoration.border_color", Kind: loader.KindString},
	"BORDER_ALPHA":   {Path: "decoration.border_alpha", Kind: loader.KindFloat},
	"BORDER_WIDTH":   {Path: "decoration.border_width", Kind: loader.KindInt},
	"LOG_LEVEL":      {Path: "log.level", Kind: loader.KindString},
	"LOG_PRETTY":     {Path: "log.pretty", Kind: loader.KindBool},
	"LOG_FILE":       {Path: "log.file", Kind: loader.KindString},
	"LUA_SCRIPT":     {Path: "lua.script", Kind: loader.KindString},
	"LUA_TIMEOUT":    {Path: "lua.timeout", Kind: loader.KindDuration},
	"WATCH_DEBOUNCE": {Path: "watch.debounce", Kind: loader.KindDuration},
	"WATCH_IGNORE":   {Path: "watch.ignore", Kind: loader.KindList},
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs      afero.Fs
	dir     string
	file    string
	envFile string
	lookup  func(string) (string, bool)
}

// WithFs sets the file system config files are read from.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithDir sets the directory searched for config and .env files.
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithFile loads path instead of searching. The file must exist.
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithEnvFile sets the .env file name. Empty disables it.
func WithEnvFile(name string) Option {
	return func(o *options) { o.envFile = name }
}

// WithLookup replaces the process environment.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) { o.lookup = lookup }
}

// Load resolves the settings from defaults, a config file, a .env file and
// the environment, then validates them.
func Load(opts ...Option) (Config, error) {
	o := options{
		fs:      afero.NewOsFs(),
		envFile: ".env",
		lookup:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(&o)
	}

	merged, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	path, err := o.configPath()
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		l, err := loader.ForFile(o.fs, path)
		if err != nil {
			return Config{}, err
		}
		file, err := l.Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, file)
	}

	env := loader.NewEnvLoader(EnvPrefix, envBindings).WithLookup(o.lookup)
	if o.envFile != "" {
		if err := env.ReadDotEnv(o.fs, filepath.Join(o.dir, o.envFile)); err != nil {
			return Config{}, err
		}
	}
	vars, err := env.Load()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	merged = loader.DeepMerge(merged, vars)

	cfg, err := decode(merged)
	if err != nil {
		return Config{}, err
	}
	cfg.Source = path
	if cfg.Lua.Script != "" && path != "" && !filepath.IsAbs(cfg.Lua.Script) {
		cfg.Lua.Script = filepath.Join(filepath.Dir(path), cfg.Lua.Script)
	}
	return cfg, cfg.Validate()
}

func (o options) configPath() (string, error) {
	if o.file != "" {
		ok, err := afero.Exists(o.fs, o.file)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, o.file)
		}
		return o.file, nil
	}
	for _, name := range SearchFiles {
		path := filepath.Join(o.dir, name)
		if ok, _ := afero.Exists(o.fs, path); ok {
			return path, nil
		}
	}
	return "", nil
}

func toMap(cfg Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decode(m map[string]any) (Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: unknown settings:\n%s", ErrValidationFailed, strict.String())
		}
		return Config{}, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return cfg, nil
}
