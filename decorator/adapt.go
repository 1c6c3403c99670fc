package decorator

import (
	"fmt"
	"math"
	"reflect"

	"github.com/goliatone/go-decorator/option"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// reflected calls an arbitrary Go function with positional arguments.
type reflected struct {
	fn   reflect.Value
	name string
}

// Adapt turns fn into a Target. Targets and func(Args) (any, error) are used
// as-is; any other function is called through reflection: positional
// arguments map onto parameters (variadic included), a trailing error result
// becomes the call error and the first other result becomes the value.
func Adapt(fn any) (Target, error) {
	switch f := fn.(type) {
	case nil:
		return nil, ErrNilTarget
	case Target:
		if isNilTarget(f) {
			return nil, ErrNilTarget
		}
		return f, nil
	case func(Args) (any, error):
		if f == nil {
			return nil, ErrNilTarget
		}
		return Func(f), nil
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %T is not a function", ErrTarget, fn)
	}
	if v.IsNil() {
		return nil, ErrNilTarget
	}
	return &reflected{fn: v, name: funcName(v)}, nil
}

// MustAdapt is Adapt that panics on error.
func MustAdapt(fn any) Target {
	t, err := Adapt(fn)
	if err != nil {
		panic(err)
	}
	return t
}

func (r *reflected) Name() string { return r.name }
func (r *reflected) Doc() string  { return "" }

func (r *reflected) Invoke(args Args) (any, error) {
	if len(args.Named) > 0 {
		return nil, fmt.Errorf("%w: %s does not accept named arguments", ErrTarget, r.name)
	}
	in, err := r.arguments(args.Positional)
	if err != nil {
		return nil, err
	}
	return splitResults(r.fn.Call(in))
}

func (r *reflected) arguments(values []any) ([]reflect.Value, error) {
	fnType := r.fn.Type()
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	if (!variadic && len(values) != numIn) || (variadic && len(values) < numIn-1) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrTarget, r.name, numIn, len(values))
	}

	in := make([]reflect.Value, 0, len(values))
	for i, value := range values {
		var paramType reflect.Type
		if variadic && i >= numIn-1 {
			paramType = fnType.In(numIn - 1).Elem()
		} else {
			paramType = fnType.In(i)
		}
		arg, err := convertArg(value, paramType)
		if err != nil {
			return nil, fmt.Errorf("%w: %s argument %d: %w", ErrTarget, r.name, i, err)
		}
		in = append(in, arg)
	}
	return in, nil
}

func convertArg(value any, to reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(to.Kind()) {
		return convertNumber(v, to)
	}
	return reflect.Value{}, fmt.Errorf("%w: %s != %s", option.ErrTypeMismatch, v.Type(), to)
}

// convertNumber converts between numeric kinds, refusing any conversion that
// would change the value.
func convertNumber(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	lossy := func() (reflect.Value, error) {
		return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", option.ErrTypeMismatch, v.Interface(), to)
	}
	out := reflect.New(to).Elem()

	switch {
	case isInt(v.Kind()):
		n := v.Int()
		switch {
		case isInt(to.Kind()):
			if out.OverflowInt(n) {
				return lossy()
			}
		case isUint(to.Kind()):
			if n < 0 || out.OverflowUint(uint64(n)) {
				return lossy()
			}
		default:
			if out.OverflowFloat(float64(n)) || int64(float64(n)) != n {
				return lossy()
			}
		}
	case isUint(v.Kind()):
		n := v.Uint()
		switch {
		case isInt(to.Kind()):
			if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
				return lossy()
			}
		case isUint(to.Kind()):
			if out.OverflowUint(n) {
				return lossy()
			}
		default:
			if out.OverflowFloat(float64(n)) || uint64(float64(n)) != n {
				return lossy()
			}
		}
	default:
		f := v.Float()
		switch {
		case isInt(to.Kind()):
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return lossy()
			}
		case isUint(to.Kind()):
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return lossy()
			}
		default:
			if !math.IsInf(f, 0) && !math.IsNaN(f) && out.OverflowFloat(f) {
				return lossy()
			}
		}
	}
	return v.Convert(to), nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func splitResults(results []reflect.Value) (any, error) {
	if len(results) == 0 {
		return nil, nil
	}

	last := results[len(results)-1]
	if last.Type() == errorType || (last.Kind() == reflect.Interface && last.Type().Implements(errorType)) {
		var err error
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		if len(results) == 1 {
			return nil, err
		}
		return results[0].Interface(), err
	}

	return results[0].Interface(), nil
}
