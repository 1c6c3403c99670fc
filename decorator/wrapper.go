package decorator

import (
	"errors"

	"github.com/goliatone/go-decorator/option"
)

// Wrapper is a decorator bound to one target. It implements Target and
// Metadata, so wrappers can be decorated again.
type Wrapper struct {
	decorator *Decorator
	target    Target
	overrides map[string]any
	name      string
	doc       string
}

// Name and Doc mirror the wrapped target.
func (w *Wrapper) Name() string { return w.name }
func (w *Wrapper) Doc() string  { return w.doc }

func (w *Wrapper) Decorator() *Decorator { return w.decorator }
func (w *Wrapper) Target() Target        { return w.target }

// Call invokes the wrapper with positional arguments.
func (w *Wrapper) Call(args ...any) (any, error) {
	return w.CallWith(nil, Args{Positional: args})
}

// CallNamed invokes the wrapper with positional and named arguments.
func (w *Wrapper) CallNamed(args Args) (any, error) {
	return w.CallWith(nil, args)
}

// Invoke implements Target.
func (w *Wrapper) Invoke(args Args) (any, error) {
	return w.CallWith(nil, args)
}

// Func returns the wrapper as a plain Func.
func (w *Wrapper) Func() Func {
	return w.Invoke
}

// CallWith invokes the wrapper with call scoped overrides layered over the
// ones carried from the curried application. If option resolution fails the
// template is not run.
func (w *Wrapper) CallWith(overrides map[string]any, args Args) (any, error) {
	d := w.decorator

	merged := option.Merge(w.overrides, overrides)
	var extra map[string]any
	if d.passthrough {
		merged, extra = d.options.Split(merged)
	}

	values, err := d.options.Resolve(merged)
	if err != nil {
		d.logger.Error("%s(%s): %v", d.name, w.name, err)
		return nil, newError(d.name, StageResolve, nil, err, map[string]any{
			"target": w.name,
		})
	}

	proxy := d.slot.proxy()
	if err := proxy.Bind(w.target); err != nil {
		return nil, newError(d.name, StageInvoke, nil, err, nil)
	}
	proxy.SetCall(args)

	call := &Call{
		Fn:        proxy,
		Options:   values,
		Extra:     extra,
		Args:      args.clone(),
		Decorator: d.name,
		Target:    w.name,
	}

	out, err := d.template(call)
	if err != nil {
		var decErr *Error
		if errors.As(err, &decErr) {
			return nil, err
		}
		return nil, newError(d.name, StageInvoke, nil, err, map[string]any{
			"target": w.name,
			"calls":  proxy.Calls(),
		})
	}

	if d.autoReturn {
		return proxy.Result(), nil
	}
	return out, nil
}
