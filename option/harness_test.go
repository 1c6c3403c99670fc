package option

import "testing"

// testCase standardises table-driven tests across the option package.
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

func mustFreeze(t *testing.T, name string, s *Spec) *Descriptor {
	t.Helper()
	s.SetBindingName(name)
	d, err := s.Freeze()
	if err != nil {
		t.Fatalf("freeze %s: %v", name, err)
	}
	return d
}
