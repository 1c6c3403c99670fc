package bind

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/copystructure"
)

// DefaultTagName is the struct tag read when decoding option values.
const DefaultTagName = "option"

const (
	stageDefaults = "defaults"
	stageDecode   = "decode"
	stageValidate = "validate"
)

var (
	// ErrDefaults wraps failures while cloning the prototype value.
	ErrDefaults = errors.New("bind: defaults stage failed")
	// ErrDecode wraps mapstructure decode failures.
	ErrDecode = errors.New("bind: decode stage failed")
	// ErrValidate wraps validator errors.
	ErrValidate = errors.New("bind: validate stage failed")
	// ErrOption reports a misconfigured Build option.
	ErrOption = errors.New("bind: option configuration failed")
)

// StageError describes a failure in one Build stage.
type StageError struct {
	Stage string
	Base  error
	Err   error
	Meta  map[string]any
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *StageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches either the stage sentinel or wrapped error.
func (e *StageError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if errors.Is(e.Base, target) {
		return true
	}
	return errors.Is(e.Err, target)
}

func stageError(stage string, base, err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	return &StageError{
		Stage: stage,
		Base:  base,
		Err:   err,
		Meta:  meta,
	}
}

type builder[T any] struct {
	values        map[string]any
	prototype     *T
	decodeHooks   []mapstructure.DecodeHookFunc
	decoderConfig mapstructure.DecoderConfig
	validator     Validator[T]
	useHookSet    bool
	optionErr     error
}

func newBuilder[T any](values map[string]any) *builder[T] {
	return &builder[T]{
		values: values,
		decoderConfig: mapstructure.DecoderConfig{
			TagName: DefaultTagName,
		},
		useHookSet: true,
	}
}

// Build decodes values onto a new T. Errors wrap one of ErrDefaults, ErrDecode
// or ErrValidate so callers can branch via errors.Is.
func Build[T any](values map[string]any, opts ...Option[T]) (T, error) {
	b := newBuilder[T](values)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(b)
	}
	if b.optionErr != nil {
		var zero T
		return zero, b.optionErr
	}
	return b.build()
}

func (b *builder[T]) setOptionError(format string, args ...any) {
	if b.optionErr != nil {
		return
	}
	b.optionErr = fmt.Errorf("%w: %w", ErrOption, fmt.Errorf(format, args...))
}

func (b *builder[T]) build() (T, error) {
	var zero T

	result, err := b.applyDefaults()
	if err != nil {
		return zero, err
	}

	if err := b.decode(&result); err != nil {
		return zero, err
	}

	if b.validator != nil {
		if err := b.validator(&result); err != nil {
			return zero, stageError(stageValidate, ErrValidate, err, nil)
		}
	}

	return result, nil
}

func (b *builder[T]) applyDefaults() (T, error) {
	var zero T
	if b.prototype == nil {
		return zero, nil
	}
	cloned, err := copystructure.Copy(*b.prototype)
	if err != nil {
		return zero, stageError(stageDefaults, ErrDefaults, err, map[string]any{
			"reason": "clone",
		})
	}
	casted, ok := cloned.(T)
	if !ok {
		return zero, stageError(stageDefaults, ErrDefaults,
			fmt.Errorf("cloned value is %T", cloned), map[string]any{"reason": "cast"})
	}
	return casted, nil
}

func (b *builder[T]) decode(result *T) error {
	if len(b.values) == 0 {
		return nil
	}

	config := b.decoderConfig
	config.Result = decodeTarget(result)
	config.DecodeHook = b.composeDecodeHooks()

	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		return stageError(stageDecode, ErrDecode, err, map[string]any{"reason": "decoder_config"})
	}
	if err := decoder.Decode(b.values); err != nil {
		return stageError(stageDecode, ErrDecode, err, map[string]any{
			"tag": config.TagName,
		})
	}
	return nil
}

func (b *builder[T]) composeDecodeHooks() mapstructure.DecodeHookFunc {
	hooks := make([]mapstructure.DecodeHookFunc, 0, len(b.decodeHooks)+2)
	if b.useHookSet {
		hooks = append(hooks, DefaultDecodeHooks()...)
	}
	hooks = append(hooks, b.decodeHooks...)
	switch len(hooks) {
	case 0:
		return nil
	case 1:
		return hooks[0]
	default:
		return mapstructure.ComposeDecodeHookFunc(hooks...)
	}
}

// decodeTarget allocates pointer targets so Build[*Args] works too.
func decodeTarget[T any](result *T) any {
	val := reflect.ValueOf(result).Elem()
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
		}
		return val.Interface()
	}
	return val.Addr().Interface()
}
