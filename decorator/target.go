package decorator

import (
	"reflect"
	"runtime"
	"strings"
)

// Args carries the arguments of one call.
type Args struct {
	Positional []any
	Named      map[string]any
}

// Positional builds Args from positional values only.
func Positional(values ...any) Args {
	return Args{Positional: values}
}

func (a Args) clone() Args {
	return Args{
		Positional: append([]any(nil), a.Positional...),
		Named:      mergeNamed(a.Named),
	}
}

// Target is anything a decorator can wrap.
type Target interface {
	Invoke(Args) (any, error)
}

// Func adapts a plain function into a Target.
type Func func(Args) (any, error)

// Invoke calls f.
func (f Func) Invoke(args Args) (any, error) {
	return f(args)
}

// Metadata is implemented by targets that carry an identity. Wrappers copy it
// from their target so tooling sees the original name and doc.
type Metadata interface {
	Name() string
	Doc() string
}

type described struct {
	name   string
	doc    string
	target Target
}

// Describe attaches a name and doc to target.
func Describe(name, doc string, target Target) Target {
	return &described{name: name, doc: doc, target: target}
}

func (d *described) Name() string { return d.name }
func (d *described) Doc() string  { return d.doc }

func (d *described) Invoke(args Args) (any, error) {
	return d.target.Invoke(args)
}

func nameOf(target Target) string {
	if meta, ok := target.(Metadata); ok {
		return meta.Name()
	}
	return funcName(reflect.ValueOf(target))
}

func docOf(target Target) string {
	if meta, ok := target.(Metadata); ok {
		return meta.Doc()
	}
	return ""
}

func isNilTarget(target Target) bool {
	if target == nil {
		return true
	}
	v := reflect.ValueOf(target)
	switch v.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// funcName returns the runtime name of a function without its import path,
// e.g. "repeat" or "TestWrap.func1".
func funcName(v reflect.Value) string {
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

func mergeNamed(layers ...map[string]any) map[string]any {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	if size == 0 {
		return nil
	}
	out := make(map[string]any, size)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
