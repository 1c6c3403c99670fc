package option

import (
	"fmt"
	"reflect"
	"time"

	opts "github.com/goliatone/go-options"
	"github.com/mitchellh/copystructure"
)

// NewEvaluator builds the evaluator used for WithRule expressions.
var NewEvaluator = func() opts.Evaluator {
	return opts.NewExprEvaluator()
}

// Descriptor is a frozen option: name, type and checks never change after Freeze.
type Descriptor struct {
	name        string
	alias       string
	doc         string
	typ         reflect.Type
	value       any
	lazy        func() (any, error)
	validate    bool
	coerce      bool
	validator   Validator
	rules       []string
	normalizers []StringTransformer
}

func (d *Descriptor) Name() string       { return d.name }
func (d *Descriptor) Alias() string      { return d.alias }
func (d *Descriptor) Doc() string        { return d.doc }
func (d *Descriptor) Type() reflect.Type { return d.typ }
func (d *Descriptor) Validates() bool    { return d.validate }
func (d *Descriptor) Coerces() bool      { return d.coerce }
func (d *Descriptor) IsLazy() bool       { return d.lazy != nil }

// External returns the caller facing name.
func (d *Descriptor) External() string {
	if d.alias != "" {
		return d.alias
	}
	return d.name
}

// Default returns a fresh default: lazy defaults are evaluated, anything
// mutable is deep copied so calls never share it.
func (d *Descriptor) Default() (any, error) {
	if d.lazy != nil {
		value, err := d.lazy()
		if err != nil {
			return nil, newError(d.name, ErrValidation, fmt.Errorf("lazy default: %w", err), nil)
		}
		return d.Check(value)
	}
	return cloneValue(d.value)
}

// Write runs every check a value goes through before a template sees it.
func (d *Descriptor) Write(value any) (any, error) {
	value, err := d.Check(value)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

// Check normalizes value and enforces the declared type when validation is
// enabled. Coercion runs first so "5" can satisfy an int option.
func (d *Descriptor) Check(value any) (any, error) {
	value, err := d.normalize(value)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}

	actual := reflect.TypeOf(value)
	if SameType(actual, d.typ) {
		return value, nil
	}

	var convErr error
	if d.coerce {
		converted, err := Convert(value, d.typ)
		if err == nil {
			return converted, nil
		}
		convErr = err
	}

	if !d.validate {
		return value, nil
	}

	cause := fmt.Errorf("%s != %s", typeName(actual), typeName(d.typ))
	if convErr != nil {
		cause = fmt.Errorf("%w: %w", cause, convErr)
	}
	return nil, newError(d.name, ErrTypeMismatch, cause, map[string]any{
		"got":  typeName(actual),
		"want": typeName(d.typ),
	})
}

// Validate runs the validator and rules.
func (d *Descriptor) Validate(value any) error {
	if d.validator != nil {
		if err := d.validator(value); err != nil {
			return newError(d.name, ErrValidation, err, map[string]any{
				"value": value,
			})
		}
	}
	for _, rule := range d.rules {
		if err := d.evalRule(rule, value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Descriptor) evalRule(rule string, value any) error {
	out, err := NewEvaluator().Evaluate(opts.RuleContext{
		Snapshot: map[string]any{
			"value":  value,
			"option": d.name,
		},
	}, rule)
	meta := map[string]any{"rule": rule, "value": value}
	if err != nil {
		return newError(d.name, ErrValidation, fmt.Errorf("rule %q: %w", rule, err), meta)
	}
	if ok, isBool := out.(bool); !isBool || !ok {
		return newError(d.name, ErrValidation, fmt.Errorf("rule %q rejected %v", rule, value), meta)
	}
	return nil
}

func (d *Descriptor) normalize(value any) (any, error) {
	str, ok := value.(string)
	if !ok || len(d.normalizers) == 0 {
		return value, nil
	}
	for idx, fn := range d.normalizers {
		next, err := fn(str)
		if err != nil {
			return nil, newError(d.name, ErrValidation, err, map[string]any{
				"normalizer_index": idx,
			})
		}
		str = next
	}
	return str, nil
}

// cloneValue deep copies anything that can carry shared state. Scalars and
// opaque handles (types with unexported state, such as files or clients) are
// returned as-is.
func cloneValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	t := reflect.TypeOf(value)
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return value, nil
	}
	if opaque(t, map[reflect.Type]bool{}) {
		return value, nil
	}
	return copystructure.Copy(value)
}

var timeType = reflect.TypeOf(time.Time{})

// opaque reports whether t reaches a struct with unexported fields, which
// copystructure would silently drop.
func opaque(t reflect.Type, seen map[reflect.Type]bool) bool {
	if seen[t] {
		return false
	}
	seen[t] = true

	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return opaque(t.Elem(), seen)
	case reflect.Map:
		return opaque(t.Key(), seen) || opaque(t.Elem(), seen)
	case reflect.Struct:
		if t == timeType {
			return false
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || opaque(field.Type, seen) {
				return true
			}
		}
	}
	return false
}
