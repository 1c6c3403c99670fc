package decorator

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-decorator/logger"
	"github.com/goliatone/go-decorator/option"
)

// Template is the function a decorator runs on every call of a wrapped target.
type Template func(*Call) (any, error)

// Option configures a decorator declaration.
type Option func(*builder)

type namedSpec struct {
	name string
	spec *option.Spec
}

type slotSpec struct {
	fixed []any
	named map[string]any
}

func (s slotSpec) proxy() *Proxy {
	return NewProxyNamed(s.named, s.fixed...)
}

type builder struct {
	name        string
	doc         string
	specs       []namedSpec
	slots       []slotSpec
	autoReturn  bool
	passthrough bool
	prototype   any
	logger      logger.Logger
	err         error
}

// WithOption declares a configurable option bound to name. The builder works
// on a copy of spec, which stays reusable.
func WithOption(name string, spec *option.Spec) Option {
	return func(b *builder) {
		if spec == nil {
			b.fail(fmt.Errorf("%w: nil spec for option %q", ErrTemplate, name))
			return
		}
		b.specs = append(b.specs, namedSpec{name: name, spec: spec.Clone()})
	}
}

// WithSlot declares the injection slot. fixed is appended to every
// invocation of the bound target.
func WithSlot(fixed ...any) Option {
	return WithSlotNamed(nil, fixed...)
}

// WithSlotNamed is WithSlot with fixed named arguments.
func WithSlotNamed(named map[string]any, fixed ...any) Option {
	return func(b *builder) {
		b.slots = append(b.slots, slotSpec{
			fixed: append([]any(nil), fixed...),
			named: mergeNamed(named),
		})
	}
}

// WithAutoReturn makes wrappers return the proxy's last result instead of
// the template's own return value.
func WithAutoReturn() Option {
	return func(b *builder) {
		b.autoReturn = true
	}
}

// WithPassthrough delivers unknown override names to the template as
// Call.Extra instead of rejecting them.
func WithPassthrough() Option {
	return func(b *builder) {
		b.passthrough = true
	}
}

// WithDoc documents the decorator.
func WithDoc(doc string) Option {
	return func(b *builder) {
		b.doc = doc
	}
}

// WithLogger sets the logger, defaults to a DefaultLogger named "decorator".
func WithLogger(l logger.Logger) Option {
	return func(b *builder) {
		b.logger = l
	}
}

// WithPrototype seeds the plain fields of a struct template. Only Typed uses it.
func WithPrototype(proto any) Option {
	return func(b *builder) {
		b.prototype = proto
	}
}

func (b *builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func newBuilder(name string, opts []Option) *builder {
	b := &builder{name: name}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// New builds a decorator from a template and its declarations.
func New(name string, tmpl Template, opts ...Option) (*Decorator, error) {
	b := newBuilder(name, opts)
	if b.name == "" {
		b.name = funcName(reflect.ValueOf(tmpl))
	}
	if tmpl == nil {
		return nil, newError(b.name, StageBuild, ErrTemplate, fmt.Errorf("nil template"), nil)
	}
	return b.build(tmpl)
}

// Factory fixes the return policy first and takes the template second.
func Factory(autoReturn bool, opts ...Option) func(name string, tmpl Template, more ...Option) (*Decorator, error) {
	return func(name string, tmpl Template, more ...Option) (*Decorator, error) {
		all := append(append([]Option(nil), opts...), more...)
		if autoReturn {
			all = append(all, WithAutoReturn())
		}
		return New(name, tmpl, all...)
	}
}

// Must panics when err is not nil.
func Must(d *Decorator, err error) *Decorator {
	if err != nil {
		panic(err)
	}
	return d
}

func (b *builder) build(tmpl Template) (*Decorator, error) {
	if b.err != nil {
		return nil, newError(b.name, StageBuild, nil, b.err, nil)
	}

	switch len(b.slots) {
	case 0:
		return nil, newError(b.name, StageBuild, ErrMissingInjectionSlot, nil, map[string]any{
			"template": b.name,
		})
	case 1:
	default:
		return nil, newError(b.name, StageBuild, ErrNameConflict,
			fmt.Errorf("injection slot declared %d times", len(b.slots)), nil)
	}

	descriptors := make([]*option.Descriptor, 0, len(b.specs))
	for _, ns := range b.specs {
		ns.spec.SetBindingName(ns.name)
		if ns.spec.Name() == "" {
			return nil, newError(b.name, StageBuild, ErrTemplate, fmt.Errorf("option without a name"), nil)
		}
		d, err := ns.spec.Freeze()
		if err != nil {
			return nil, newError(b.name, StageBuild, nil, err, nil)
		}
		descriptors = append(descriptors, d)
	}

	set, err := option.NewSet(descriptors...)
	if err != nil {
		return nil, newError(b.name, StageBuild, nil, err, nil)
	}

	d := &Decorator{
		name:        b.name,
		doc:         b.doc,
		options:     set,
		slot:        b.slots[0],
		template:    tmpl,
		autoReturn:  b.autoReturn,
		passthrough: b.passthrough,
		logger:      logger.Or(b.logger, "decorator"),
	}
	d.logger.Debug("built %s: options=%v auto_return=%t passthrough=%t",
		d.name, set.Names(), d.autoReturn, d.passthrough)
	return d, nil
}
