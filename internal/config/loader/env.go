package loader

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// Kind is the type an environment value is parsed as.
type Kind int

// Value kinds.
const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindDuration
	KindList
)

// Binding maps an environment variable to a config path.
type Binding struct {
	Path string
	Kind Kind
}

// EnvLoader loads configuration from environment variables.
// Variables from a .env file are used when the process environment does not
// set them.
type EnvLoader struct {
	prefix   string
	bindings map[string]Binding
	lookup   func(string) (string, bool)
	dotenv   map[string]string
}

// NewEnvLoader creates an environment loader for bindings. Names in bindings
// exclude prefix.
func NewEnvLoader(prefix string, bindings map[string]Binding) *EnvLoader {
	return &EnvLoader{
		prefix:   prefix,
		bindings: bindings,
		lookup:   os.LookupEnv,
	}
}

// WithLookup replaces the process environment, for tests.
func (l *EnvLoader) WithLookup(lookup func(string) (string, bool)) *EnvLoader {
	l.lookup = lookup
	return l
}

// ReadDotEnv reads variables from a .env file on fsys. A missing file is not
// an error.
func (l *EnvLoader) ReadDotEnv(fsys afero.Fs, path string) error {
	data, err := readFile(fsys, path)
	if err != nil || data == nil {
		return err
	}
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	l.dotenv = vars
	return nil
}

// Load returns a map holding every bound variable that is set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)
	for name, b := range l.bindings {
		raw, ok := l.get(l.prefix + name)
		if !ok {
			continue
		}
		val, err := parseValue(raw, b.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", l.prefix, name, err)
		}
		SetPath(config, b.Path, val)
	}
	return config, nil
}

func (l *EnvLoader) get(name string) (string, bool) {
	if v, ok := l.lookup(name); ok {
		return v, true
	}
	v, ok := l.dotenv[name]
	return v, ok
}

func parseValue(s string, kind Kind) (any, error) {
	switch kind {
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", s)
	case KindInt:
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case KindFloat:
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	case KindDuration:
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case KindList:
		var items []any
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	default:
		return s, nil
	}
}
