package solvers

import (
	"fmt"
	"sort"

	"github.com/knadh/koanf/v2"
)

// Solver rewrites preset values in place and reports how many keys changed.
type Solver interface {
	Solve(k *koanf.Koanf) (int, error)
}

// Policy decides what happens to a value a solver cannot resolve.
type Policy int

const (
	// Keep leaves the value untouched.
	Keep Policy = iota
	// Remove deletes the key.
	Remove
	// Fail aborts the solve with an error.
	Fail
)

type delimiters struct {
	start string
	end   string
}

// rewrite visits every string leaf in key order. fn returns the new value
// and whether it should be stored.
func rewrite(k *koanf.Koanf, fn func(key, value string) (any, bool, error)) (int, error) {
	if k == nil {
		return 0, nil
	}

	all := k.All()
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	changed := 0
	for _, key := range keys {
		str, ok := all[key].(string)
		if !ok {
			continue
		}
		next, set, err := fn(key, str)
		if err != nil {
			return changed, err
		}
		if !set {
			continue
		}
		if err := k.Set(key, next); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

func unresolved(policy Policy, k *koanf.Koanf, key string, err error) (any, bool, error) {
	switch policy {
	case Remove:
		k.Delete(key)
		return nil, false, nil
	case Fail:
		return nil, false, fmt.Errorf("solve %s: %w", key, err)
	default:
		return nil, false, nil
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
