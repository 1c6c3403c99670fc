package option

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingType reports an option with neither an explicit nor an inferred type.
	ErrMissingType = errors.New("option: missing declared type")
	// ErrTypeMismatch reports a value whose runtime type differs from the declared type.
	ErrTypeMismatch = errors.New("option: type mismatch")
	// ErrNameConflict reports two options claiming the same external or binding name.
	ErrNameConflict = errors.New("option: name conflict")
	// ErrUnknownOption reports an override naming no declared option.
	ErrUnknownOption = errors.New("option: unknown option")
	// ErrValidation wraps validator and rule rejections.
	ErrValidation = errors.New("option: validation failed")
)

// Error ties a failure to the option it concerns.
type Error struct {
	Option string
	Base   error
	Err    error
	Meta   map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Base.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Option == "" {
		return msg
	}
	return fmt.Sprintf("%s (option %q)", msg, e.Option)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches the sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if errors.Is(e.Base, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func newError(option string, base, err error, meta map[string]any) error {
	return &Error{
		Option: option,
		Base:   base,
		Err:    err,
		Meta:   meta,
	}
}
