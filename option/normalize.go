package option

import "strings"

// StringTransformer rewrites a string value before it is checked.
type StringTransformer func(string) (string, error)

func TrimSpace(value string) (string, error) {
	return strings.TrimSpace(value), nil
}

func ToLower(value string) (string, error) {
	return strings.ToLower(value), nil
}

func ToUpper(value string) (string, error) {
	return strings.ToUpper(value), nil
}
