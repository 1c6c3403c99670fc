package env

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-decorator/logger"
	"github.com/tidwall/sjson"
)

// Env reads decorator presets from environment variables. With prefix
// "DECO_" and delimiter "__":
//
//	DECO_REPEAT__COUNT=5        -> {"repeat": {"count": "5"}}
//	DECO_RETRY__CODES__0=500    -> {"retry": {"codes": ["500"]}}
//
// Numeric path segments become array indices. Values are kept as strings;
// typing them is the job of whoever consumes the presets.
type Env struct {
	prefix    string
	delim     string
	environ   func() []string
	transform func(key, value string) (string, any)
	logger    logger.Logger
}

type Option func(*Env)

// WithEnviron replaces os.Environ as the variable source.
func WithEnviron(fn func() []string) Option {
	return func(e *Env) {
		if fn != nil {
			e.environ = fn
		}
	}
}

// WithTransform rewrites every key (already stripped and lower cased) and
// value. Returning an empty key drops the variable.
func WithTransform(fn func(key, value string) (string, any)) Option {
	return func(e *Env) {
		e.transform = fn
	}
}

func WithLogger(l logger.Logger) Option {
	return func(e *Env) {
		e.logger = l
	}
}

// Provider builds an Env provider. Only variables starting with prefix
// (case sensitive) are read, an empty prefix reads everything.
func Provider(prefix, delim string, opts ...Option) *Env {
	e := &Env{
		prefix:  prefix,
		delim:   delim,
		environ: os.Environ,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.logger = logger.Or(e.logger, "env")
	return e
}

func (e *Env) SetLogger(l logger.Logger) {
	if l != nil {
		e.logger = l
	}
}

// ReadBytes returns the matching variables as a JSON document.
func (e *Env) ReadBytes() ([]byte, error) {
	vars := e.environ()
	sort.Strings(vars)

	out := "{}"
	for _, kv := range vars {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, e.prefix) {
			continue
		}

		key := e.path(name)
		var v any = value
		if e.transform != nil {
			key, v = e.transform(key, value)
		}
		if key == "" {
			continue
		}

		next, err := sjson.Set(out, key, v)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("%s -> %s", name, key)
		out = next
	}
	return []byte(out), nil
}

// path turns DECO_REPEAT__COUNT into repeat.count.
func (e *Env) path(name string) string {
	name = strings.ToLower(strings.TrimPrefix(name, e.prefix))
	if e.delim == "" {
		return name
	}
	parts := strings.Split(name, strings.ToLower(e.delim))
	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ".")
}

// Read is not supported, use ReadBytes with a JSON parser.
func (e *Env) Read() (map[string]any, error) {
	return nil, errors.New("env provider does not support Read")
}
