package decorator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-decorator/bind"
	"github.com/goliatone/go-decorator/option"
)

const (
	tagDecorator = "decorator"
	tagDefault   = "default"
	tagDoc       = "doc"
)

var (
	proxyType = reflect.TypeOf((*Proxy)(nil))
	extraType = reflect.TypeOf(map[string]any(nil))
)

type structTemplate struct {
	typ   reflect.Type
	slot  int
	extra int
	specs []namedSpec
}

// Typed builds a decorator from a struct template. The fields of A declare
// the template inputs:
//
//	type repeatArgs struct {
//		Fn    *decorator.Proxy `decorator:"slot"`
//		Count int              `option:"count,validate" default:"3"`
//		Rest  map[string]any   `decorator:"extra"`
//	}
//
// A *Proxy field is the injection slot, fields tagged option are options
// typed after the field and a map[string]any tagged extra receives unknown
// overrides. Other fields are plain and keep their prototype value.
//
// WithOption may refine a field option by binding name; its type and
// default win over the field's.
func Typed[A any](name string, fn func(A) (any, error), opts ...Option) (*Decorator, error) {
	b := newBuilder(name, opts)
	if b.name == "" {
		b.name = funcName(reflect.ValueOf(fn))
	}
	if fn == nil {
		return nil, newError(b.name, StageBuild, ErrTemplate, fmt.Errorf("nil template"), nil)
	}
	if b.err != nil {
		return nil, newError(b.name, StageBuild, nil, b.err, nil)
	}

	var proto A
	if b.prototype != nil {
		switch p := b.prototype.(type) {
		case A:
			proto = p
		case *A:
			proto = *p
		default:
			return nil, newError(b.name, StageBuild, ErrTemplate,
				fmt.Errorf("prototype %T is not %T", b.prototype, proto), nil)
		}
	}

	st, err := scanStruct(reflect.TypeOf((*A)(nil)).Elem(), reflect.ValueOf(proto), b.specs)
	if err != nil {
		return nil, newError(b.name, StageBuild, nil, err, nil)
	}

	b.specs = st.specs
	if st.extra >= 0 {
		b.passthrough = true
	}
	if len(b.slots) == 0 {
		b.slots = append(b.slots, slotSpec{})
	}

	return b.build(func(c *Call) (any, error) {
		args, err := bind.Build[A](c.Options,
			bind.WithDefaults(proto),
			bind.WithStrictKeys[A](),
			bind.WithSelfValidation[A](),
		)
		if err != nil {
			return nil, err
		}
		v := reflect.ValueOf(&args).Elem()
		v.Field(st.slot).Set(reflect.ValueOf(c.Fn))
		if st.extra >= 0 {
			v.Field(st.extra).Set(reflect.ValueOf(option.Merge(c.Extra)))
		}
		return fn(args)
	})
}

// MustTyped is Typed that panics on error.
func MustTyped[A any](name string, fn func(A) (any, error), opts ...Option) *Decorator {
	return Must(Typed(name, fn, opts...))
}

func scanStruct(typ reflect.Type, proto reflect.Value, declared []namedSpec) (*structTemplate, error) {
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: struct template must be a struct, got %s", ErrTemplate, typ)
	}

	byName := make(map[string]*option.Spec, len(declared))
	for _, ns := range declared {
		byName[ns.name] = ns.spec
	}
	used := map[string]bool{}

	st := &structTemplate{typ: typ, slot: -1, extra: -1}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		role := field.Tag.Get(tagDecorator)
		switch {
		case role == "slot" || (role == "" && field.Type == proxyType):
			if field.Type != proxyType {
				return nil, fmt.Errorf("%w: slot field %s must be *decorator.Proxy", ErrTemplate, field.Name)
			}
			if st.slot >= 0 {
				return nil, fmt.Errorf("%w: injection slot declared by %s and %s",
					ErrNameConflict, typ.Field(st.slot).Name, field.Name)
			}
			st.slot = i
			continue
		case role == "extra":
			if field.Type != extraType {
				return nil, fmt.Errorf("%w: extra field %s must be map[string]any", ErrTemplate, field.Name)
			}
			st.extra = i
			continue
		case role != "":
			return nil, fmt.Errorf("%w: unknown decorator role %q on %s", ErrTemplate, role, field.Name)
		}

		tag, ok := field.Tag.Lookup(bind.DefaultTagName)
		if !ok || tag == "-" {
			continue
		}
		spec, err := fieldSpec(field, tag, proto, byName)
		if err != nil {
			return nil, err
		}
		used[spec.Name()] = true
		st.specs = append(st.specs, namedSpec{name: spec.Name(), spec: spec})
	}

	if st.slot < 0 {
		return nil, ErrMissingInjectionSlot
	}
	for _, ns := range declared {
		if !used[ns.name] {
			return nil, fmt.Errorf("%w: option %q has no field", ErrTemplate, ns.name)
		}
	}
	return st, nil
}

func fieldSpec(field reflect.StructField, tag string, proto reflect.Value, declared map[string]*option.Spec) (*option.Spec, error) {
	parts := strings.Split(tag, ",")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		name = field.Name
	}

	spec, explicit := declared[name]
	if !explicit {
		value, err := fieldDefault(field, proto)
		if err != nil {
			return nil, err
		}
		spec = option.Untyped(value)
	}
	spec.SetBindingName(name)

	for _, flag := range parts[1:] {
		flag = strings.TrimSpace(flag)
		switch {
		case flag == "validate":
			spec.Apply(option.Validate())
		case flag == "coerce":
			spec.Apply(option.Coerce())
		case strings.HasPrefix(flag, "alias="):
			if spec.Alias() == "" {
				spec.Apply(option.WithAlias(strings.TrimPrefix(flag, "alias=")))
			}
		}
	}
	if doc, ok := field.Tag.Lookup(tagDoc); ok {
		spec.Apply(option.WithDoc(doc))
	}
	spec.SetType(field.Type)
	return spec, nil
}

// fieldDefault reads the default tag, then the prototype, then falls back to
// the zero value of the field.
func fieldDefault(field reflect.StructField, proto reflect.Value) (any, error) {
	if raw, ok := field.Tag.Lookup(tagDefault); ok {
		value, err := option.Convert(raw, field.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: default of %s: %w", ErrTemplate, field.Name, err)
		}
		return value, nil
	}
	if proto.IsValid() {
		if fv := proto.FieldByIndex(field.Index); !fv.IsZero() {
			return fv.Interface(), nil
		}
	}
	return reflect.Zero(field.Type).Interface(), nil
}
