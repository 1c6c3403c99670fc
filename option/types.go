package option

import "reflect"

// Any is the wildcard type. An option declared as Any accepts every value.
var Any = reflect.TypeOf((*any)(nil)).Elem()

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// SameType reports whether a value of type actual may be written to an option
// declared as declared. A nil actual type (nil value) always matches.
//
// Runtime types are never interface types, so an interface declaration other
// than Any matches every type implementing it.
func SameType(actual, declared reflect.Type) bool {
	if actual == nil || declared == nil {
		return true
	}
	if actual == declared || actual == Any || declared == Any {
		return true
	}
	if declared.Kind() == reflect.Interface {
		return actual.Implements(declared)
	}
	return false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t == Any {
		return "any"
	}
	return t.String()
}
