package solvers

import (
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/knadh/koanf/v2"
)

type expression struct {
	delims    delimiters
	evaluator opts.Evaluator
	policy    Policy
}

// NewExpressionSolver evaluates values wrapped in delimiters, e.g.
// {{ defaults.count * 2 }}. The whole preset tree is visible to the
// expression. Unresolvable expressions follow policy (Keep by default).
func NewExpressionSolver(start, end string, policy ...Policy) Solver {
	return NewExpressionSolverWithEvaluator(start, end, nil, policy...)
}

// NewExpressionSolverWithEvaluator is NewExpressionSolver with a custom evaluator.
func NewExpressionSolverWithEvaluator(start, end string, eval opts.Evaluator, policy ...Policy) Solver {
	if eval == nil {
		eval = opts.NewExprEvaluator()
	}
	if start == "" {
		start = "{{"
	}
	if end == "" {
		end = "}}"
	}
	e := &expression{delims: delimiters{start: start, end: end}, evaluator: eval}
	if len(policy) > 0 {
		e.policy = policy[0]
	}
	return e
}

func (s *expression) Solve(k *koanf.Koanf) (int, error) {
	return rewrite(k, func(key, value string) (any, bool, error) {
		if !strings.HasPrefix(value, s.delims.start) || !strings.HasSuffix(value, s.delims.end) {
			return nil, false, nil
		}
		if len(value) < len(s.delims.start)+len(s.delims.end) {
			return nil, false, nil
		}
		expr := strings.TrimSpace(value[len(s.delims.start) : len(value)-len(s.delims.end)])
		if expr == "" {
			return nil, false, nil
		}

		result, err := s.evaluator.Evaluate(opts.RuleContext{Snapshot: k.Raw()}, expr)
		if err != nil {
			return unresolved(s.policy, k, key, err)
		}
		return result, true, nil
	})
}
