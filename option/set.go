package option

import (
	"sort"
)

// Set is an ordered collection of descriptors with unique names.
type Set struct {
	descriptors []*Descriptor
	external    map[string]*Descriptor
	binding     map[string]*Descriptor
}

// NewSet indexes descriptors, failing with ErrNameConflict when two of them
// share an external or a binding name.
func NewSet(descriptors ...*Descriptor) (*Set, error) {
	s := &Set{
		external: make(map[string]*Descriptor, len(descriptors)),
		binding:  make(map[string]*Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		if d == nil {
			continue
		}
		if _, dup := s.binding[d.name]; dup {
			return nil, newError(d.name, ErrNameConflict, nil, map[string]any{
				"kind": "binding",
			})
		}
		if other, dup := s.external[d.External()]; dup {
			return nil, newError(d.External(), ErrNameConflict, nil, map[string]any{
				"kind":     "external",
				"existing": other.name,
			})
		}
		s.binding[d.name] = d
		s.external[d.External()] = d
		s.descriptors = append(s.descriptors, d)
	}
	return s, nil
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.descriptors)
}

// Descriptors returns the descriptors in declaration order.
func (s *Set) Descriptors() []*Descriptor {
	if s == nil {
		return nil
	}
	return append([]*Descriptor(nil), s.descriptors...)
}

// Names returns the external names in declaration order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.descriptors))
	for _, d := range s.descriptors {
		names = append(names, d.External())
	}
	return names
}

// Lookup finds a descriptor by external name.
func (s *Set) Lookup(external string) (*Descriptor, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.external[external]
	return d, ok
}

// Binding translates an external name to its binding name.
func (s *Set) Binding(external string) (string, bool) {
	d, ok := s.Lookup(external)
	if !ok {
		return "", false
	}
	return d.name, true
}

// External translates a binding name to its external name.
func (s *Set) External(binding string) (string, bool) {
	if s == nil {
		return "", false
	}
	d, ok := s.binding[binding]
	if !ok {
		return "", false
	}
	return d.External(), true
}

// Split separates overrides naming a declared option from the rest.
func (s *Set) Split(overrides map[string]any) (known, unknown map[string]any) {
	known = make(map[string]any, len(overrides))
	unknown = make(map[string]any)
	for name, value := range overrides {
		if _, ok := s.Lookup(name); ok {
			known[name] = value
			continue
		}
		unknown[name] = value
	}
	return known, unknown
}

// Resolve writes every override through its descriptor and returns the value
// of every option keyed by binding name. Options without override get a fresh
// default. The set itself is never mutated.
func (s *Set) Resolve(overrides map[string]any) (Values, error) {
	if _, unknown := s.Split(overrides); len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for name := range unknown {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, newError(names[0], ErrUnknownOption, nil, map[string]any{
			"unknown": names,
			"known":   s.Names(),
		})
	}

	values := make(Values, s.Len())
	if s == nil {
		return values, nil
	}

	for _, d := range s.descriptors {
		var (
			value any
			err   error
		)
		if raw, ok := overrides[d.External()]; ok {
			value, err = cloneValue(raw)
			if err != nil {
				return nil, newError(d.name, ErrValidation, err, map[string]any{"reason": "clone"})
			}
			value, err = d.Check(value)
		} else {
			value, err = d.Default()
		}
		if err != nil {
			return nil, err
		}
		if err := d.Validate(value); err != nil {
			return nil, err
		}
		values[d.name] = value
	}
	return values, nil
}

// Merge layers override maps, later layers win. Nil layers are skipped.
func Merge(layers ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}
