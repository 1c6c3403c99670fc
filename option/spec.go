package option

import (
	"reflect"
)

// Validator inspects a value after it passed the type check.
type Validator func(value any) error

// Spec is the mutable declaration stage of an option. Builders fill in the
// binding name and type, then Freeze turns it into an immutable Descriptor.
type Spec struct {
	value       any
	lazy        func() (any, error)
	typ         reflect.Type
	validate    bool
	coerce      bool
	validator   Validator
	rules       []string
	normalizers []StringTransformer
	name        string
	alias       string
	doc         string
}

// SpecOption tweaks a Spec before it is frozen.
type SpecOption func(*Spec)

// New declares an option whose type is T.
func New[T any](value T, opts ...SpecOption) *Spec {
	s := Untyped(value, opts...)
	s.SetType(TypeOf[T]())
	return s
}

// Untyped declares an option without a type. A type must come from WithType
// or from the template declaration, otherwise Freeze fails with ErrMissingType.
func Untyped(value any, opts ...SpecOption) *Spec {
	s := &Spec{value: value}
	return s.Apply(opts...)
}

// Lazy declares an option whose default is produced by fn on every resolution.
func Lazy[T any](fn func() (T, error), opts ...SpecOption) *Spec {
	s := &Spec{}
	if fn != nil {
		s.lazy = func() (any, error) {
			v, err := fn()
			return v, err
		}
	}
	s.Apply(opts...)
	s.SetType(TypeOf[T]())
	return s
}

// Clone returns an independent copy, so one declaration can be shared by
// several builders.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := *s
	out.rules = append([]string(nil), s.rules...)
	out.normalizers = append([]StringTransformer(nil), s.normalizers...)
	return &out
}

// Apply runs opts against the spec.
func (s *Spec) Apply(opts ...SpecOption) *Spec {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// WithType declares the option type explicitly.
func WithType(t reflect.Type) SpecOption {
	return func(s *Spec) {
		s.SetType(t)
	}
}

// Validate enables the runtime type check on every value write.
func Validate() SpecOption {
	return func(s *Spec) {
		s.validate = true
	}
}

// Coerce converts mismatching values to the declared type (weak typing)
// before the type check runs.
func Coerce() SpecOption {
	return func(s *Spec) {
		s.coerce = true
	}
}

// WithValidator registers the predicate run after the type check. Only the
// last validator is kept.
func WithValidator(v Validator) SpecOption {
	return func(s *Spec) {
		s.validator = v
	}
}

// WithRule adds an expression that must evaluate to true. The value is
// available as `value`, the binding name as `option`.
func WithRule(expr string) SpecOption {
	return func(s *Spec) {
		if expr == "" {
			return
		}
		s.rules = append(s.rules, expr)
	}
}

// WithAlias exposes the option to callers under name instead of its binding name.
func WithAlias(name string) SpecOption {
	return func(s *Spec) {
		s.alias = name
	}
}

// WithDoc attaches help text, used for flag usage strings.
func WithDoc(doc string) SpecOption {
	return func(s *Spec) {
		s.doc = doc
	}
}

// WithNormalizer registers transformers applied to string values before any check.
func WithNormalizer(fns ...StringTransformer) SpecOption {
	return func(s *Spec) {
		for _, fn := range fns {
			if fn == nil {
				continue
			}
			s.normalizers = append(s.normalizers, fn)
		}
	}
}

// SetBindingName sets the internal name once. Later calls are no-ops.
func (s *Spec) SetBindingName(name string) {
	if s.name != "" || name == "" {
		return
	}
	s.name = name
}

// SetType sets the declared type once. Later calls are no-ops.
func (s *Spec) SetType(t reflect.Type) {
	if s.typ != nil || t == nil {
		return
	}
	s.typ = t
}

func (s *Spec) Name() string       { return s.name }
func (s *Spec) Alias() string      { return s.alias }
func (s *Spec) Type() reflect.Type { return s.typ }
func (s *Spec) Default() any       { return s.value }

// External returns the caller facing name.
func (s *Spec) External() string {
	if s.alias != "" {
		return s.alias
	}
	return s.name
}

// Freeze produces the immutable descriptor. A non lazy default must pass the
// type check; validators and rules run at resolution time.
func (s *Spec) Freeze() (*Descriptor, error) {
	if s.typ == nil {
		return nil, newError(s.name, ErrMissingType, nil, map[string]any{
			"default": s.value,
		})
	}

	d := &Descriptor{
		name:        s.name,
		alias:       s.alias,
		doc:         s.doc,
		typ:         s.typ,
		lazy:        s.lazy,
		validate:    s.validate,
		coerce:      s.coerce,
		validator:   s.validator,
		rules:       append([]string(nil), s.rules...),
		normalizers: append([]StringTransformer(nil), s.normalizers...),
	}

	if d.lazy == nil {
		value, err := d.Check(s.value)
		if err != nil {
			return nil, err
		}
		d.value = value
	}

	return d, nil
}
