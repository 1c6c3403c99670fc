package decorator

import (
	"fmt"

	"github.com/goliatone/go-decorator/logger"
	"github.com/goliatone/go-decorator/option"
)

// Decorator is an immutable, reusable decorator built from a template.
// It is safe for concurrent use.
type Decorator struct {
	name        string
	doc         string
	options     *option.Set
	slot        slotSpec
	template    Template
	autoReturn  bool
	passthrough bool
	logger      logger.Logger
}

func (d *Decorator) Name() string          { return d.name }
func (d *Decorator) Doc() string           { return d.doc }
func (d *Decorator) Options() *option.Set  { return d.options }
func (d *Decorator) AutoReturn() bool      { return d.autoReturn }
func (d *Decorator) Passthrough() bool     { return d.passthrough }
func (d *Decorator) String() string        { return fmt.Sprintf("decorator(%s)", d.name) }
func (d *Decorator) Logger() logger.Logger { return d.logger }

// Defaults resolves every option without overrides.
func (d *Decorator) Defaults() (option.Values, error) {
	values, err := d.options.Resolve(nil)
	if err != nil {
		return nil, newError(d.name, StageResolve, nil, err, nil)
	}
	return values, nil
}

// With starts a curried application: the overrides are carried into every
// wrapper the returned Applier produces.
func (d *Decorator) With(overrides map[string]any) *Applier {
	return &Applier{decorator: d, overrides: option.Merge(overrides)}
}

// Apply is the bare application, equivalent to d.With(nil).Apply(target).
func (d *Decorator) Apply(target Target) (*Wrapper, error) {
	return d.With(nil).Apply(target)
}

// ApplyFunc adapts fn with Adapt and applies the decorator to it.
func (d *Decorator) ApplyFunc(fn any) (*Wrapper, error) {
	return d.With(nil).ApplyFunc(fn)
}

// Applier is a decorator waiting for its target.
type Applier struct {
	decorator *Decorator
	overrides map[string]any
}

func (a *Applier) Decorator() *Decorator { return a.decorator }

// Overrides returns a copy of the carried overrides.
func (a *Applier) Overrides() map[string]any {
	return option.Merge(a.overrides)
}

// With layers more overrides on top of the carried ones.
func (a *Applier) With(overrides map[string]any) *Applier {
	return &Applier{
		decorator: a.decorator,
		overrides: option.Merge(a.overrides, overrides),
	}
}

// Apply binds target and returns the wrapper. The carried overrides are
// checked here so a bad preset fails before the first call.
func (a *Applier) Apply(target Target) (*Wrapper, error) {
	d := a.decorator
	if isNilTarget(target) {
		return nil, newError(d.name, StageApply, ErrNilTarget, nil, nil)
	}
	if err := a.Check(); err != nil {
		return nil, err
	}

	w := &Wrapper{
		decorator: d,
		target:    target,
		overrides: a.Overrides(),
		name:      nameOf(target),
		doc:       docOf(target),
	}
	d.logger.Debug("%s applied to %s with overrides %v", d.name, w.name, a.overrides)
	return w, nil
}

// Check validates the carried overrides without applying.
func (a *Applier) Check() error {
	if err := a.decorator.checkOverrides(a.overrides); err != nil {
		return newError(a.decorator.name, StageApply, nil, err, nil)
	}
	return nil
}

// ApplyFunc adapts fn with Adapt and applies to it.
func (a *Applier) ApplyFunc(fn any) (*Wrapper, error) {
	target, err := Adapt(fn)
	if err != nil {
		return nil, newError(a.decorator.name, StageApply, nil, err, nil)
	}
	return a.Apply(target)
}

func (d *Decorator) checkOverrides(overrides map[string]any) error {
	known, unknown := d.options.Split(overrides)
	if len(unknown) > 0 && !d.passthrough {
		_, err := d.options.Resolve(unknown)
		return err
	}
	for name, value := range known {
		desc, _ := d.options.Lookup(name)
		if _, err := desc.Write(value); err != nil {
			return err
		}
	}
	return nil
}
