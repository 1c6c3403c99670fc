package decorator

import (
	"testing"

	"github.com/goliatone/go-decorator/logger"
)

type testCase struct {
	name string
	run  func(t *testing.T)
}

func runTestCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if tc.run == nil {
				t.Skip("no-op test case")
				return
			}
			tc.run(t)
		})
	}
}

// counter is a target that records every call it receives.
type counter struct {
	calls []Args
}

func (c *counter) Invoke(args Args) (any, error) {
	c.calls = append(c.calls, args)
	return len(c.calls), nil
}

func (c *counter) Name() string { return "counter" }
func (c *counter) Doc() string  { return "counts calls" }

func quiet() Option {
	return WithLogger(logger.Nop{})
}
