package option

// Values maps binding names to resolved values for one call.
type Values map[string]any

// Get returns the raw value bound to name.
func (v Values) Get(name string) (any, bool) {
	value, ok := v[name]
	return value, ok
}

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Get returns the value bound to name converted to T. The second result is
// false when the name is missing or holds a different type.
func Get[T any](v Values, name string) (T, bool) {
	var zero T
	raw, ok := v[name]
	if !ok {
		return zero, false
	}
	if raw == nil {
		return zero, true
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
