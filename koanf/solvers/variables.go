package solvers

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

type variables struct {
	delims delimiters
	policy Policy
}

// NewVariablesSolver replaces references such as ${defaults.count} with the
// value at that key. A value made only of one reference takes the type of
// the referenced value; references embedded in text are stringified.
func NewVariablesSolver(start, end string, policy ...Policy) Solver {
	v := &variables{delims: delimiters{start: start, end: end}}
	if len(policy) > 0 {
		v.policy = policy[0]
	}
	return v
}

func (s *variables) Solve(k *koanf.Koanf) (int, error) {
	return rewrite(k, func(key, value string) (any, bool, error) {
		refs := s.references(value)
		if len(refs) == 0 {
			return nil, false, nil
		}

		if len(refs) == 1 && value == s.delims.start+refs[0]+s.delims.end {
			if refs[0] == key || !k.Exists(refs[0]) {
				return unresolved(s.policy, k, key, fmt.Errorf("unknown reference %q", refs[0]))
			}
			return k.Get(refs[0]), true, nil
		}

		out := value
		for _, ref := range refs {
			if ref == key || !k.Exists(ref) {
				return unresolved(s.policy, k, key, fmt.Errorf("unknown reference %q", ref))
			}
			out = strings.Replace(out, s.delims.start+ref+s.delims.end, toString(k.Get(ref)), 1)
		}
		return out, true, nil
	})
}

func (s *variables) references(value string) []string {
	var refs []string
	rest := value
	for {
		start := strings.Index(rest, s.delims.start)
		if start < 0 {
			return refs
		}
		rest = rest[start+len(s.delims.start):]
		end := strings.Index(rest, s.delims.end)
		if end < 0 {
			return refs
		}
		if ref := strings.TrimSpace(rest[:end]); ref != "" {
			refs = append(refs, ref)
		}
		rest = rest[end+len(s.delims.end):]
	}
}
