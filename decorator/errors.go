package decorator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-decorator/option"
)

var (
	// ErrMissingInjectionSlot reports a template that declares no proxy slot.
	ErrMissingInjectionSlot = errors.New("decorator: template declares no injection slot")
	// ErrUnboundProxy reports a proxy invoked before a target was bound.
	ErrUnboundProxy = errors.New("decorator: proxy invoked before a target was bound")
	// ErrRebind reports a second Bind on the same proxy.
	ErrRebind = errors.New("decorator: proxy target already bound")
	// ErrNilTarget reports an attempt to decorate nothing.
	ErrNilTarget = errors.New("decorator: nil target")
	// ErrTarget reports a target that cannot be adapted or called with the given arguments.
	ErrTarget = errors.New("decorator: invalid target")
	// ErrTemplate reports a malformed template declaration.
	ErrTemplate = errors.New("decorator: invalid template")

	ErrMissingType   = option.ErrMissingType
	ErrTypeMismatch  = option.ErrTypeMismatch
	ErrNameConflict  = option.ErrNameConflict
	ErrUnknownOption = option.ErrUnknownOption
	ErrValidation    = option.ErrValidation
)

const (
	StageBuild   = "build"
	StageApply   = "apply"
	StageResolve = "resolve"
	StageInvoke  = "invoke"
)

// Error describes a failure of one decorator in a given stage.
type Error struct {
	Decorator string
	Stage     string
	Base      error
	Err       error
	Meta      map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if e.Base != nil {
		parts = append(parts, e.Base.Error())
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return fmt.Sprintf("%s %q: %s", e.Stage, e.Decorator, strings.Join(parts, ": "))
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target matches either the sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if e.Base != nil && errors.Is(e.Base, target) {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

func newError(decorator, stage string, base, err error, meta map[string]any) error {
	return &Error{
		Decorator: decorator,
		Stage:     stage,
		Base:      base,
		Err:       err,
		Meta:      meta,
	}
}
