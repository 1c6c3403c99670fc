package bind

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type repeatArgs struct {
	Count   int           `option:"count"`
	Label   string        `option:"label,validate"`
	Timeout time.Duration `option:"timeout"`
	Plain   string
}

func (a repeatArgs) Validate() error {
	if a.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func TestBuild(t *testing.T) {
	runTestCases(t, []testCase{
		{
			name: "value target",
			run: func(t *testing.T) {
				args, err := Build[repeatArgs](map[string]any{"count": 3, "label": "x"})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if args.Count != 3 || args.Label != "x" {
					t.Fatalf("unexpected result: %#v", args)
				}
			},
		},
		{
			name: "pointer target",
			run: func(t *testing.T) {
				args, err := Build[*repeatArgs](map[string]any{"count": 9})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if args == nil || args.Count != 9 {
					t.Fatalf("unexpected result: %#v", args)
				}
			},
		},
		{
			name: "duration hook",
			run: func(t *testing.T) {
				args, err := Build[repeatArgs](map[string]any{"timeout": "2s"})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if args.Timeout != 2*time.Second {
					t.Fatalf("expected 2s, got %s", args.Timeout)
				}
			},
		},
		{
			name: "empty values",
			run: func(t *testing.T) {
				args, err := Build[repeatArgs](nil)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if args != (repeatArgs{}) {
					t.Fatalf("expected zero value, got %#v", args)
				}
			},
		},
	})
}

func TestBuildDefaults(t *testing.T) {
	proto := repeatArgs{Count: 1, Plain: "kept"}

	args, err := Build[repeatArgs](map[string]any{"count": 4}, WithDefaults(proto))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Count != 4 || args.Plain != "kept" {
		t.Fatalf("unexpected args: %#v", args)
	}
	if proto.Count != 1 {
		t.Fatalf("prototype mutated: %#v", proto)
	}
}

func TestBuildDecodeError(t *testing.T) {
	_, err := Build[repeatArgs](map[string]any{"count": "many"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T", err)
	}
	if stageErr.Stage != "decode" {
		t.Fatalf("expected decode stage, got %q", stageErr.Stage)
	}
}

func TestBuildWeakTyping(t *testing.T) {
	args, err := Build[repeatArgs](map[string]any{"count": "5"}, WithWeakTyping[repeatArgs](true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Count != 5 {
		t.Fatalf("expected 5, got %d", args.Count)
	}
}

func TestBuildStrictKeys(t *testing.T) {
	_, err := Build[repeatArgs](map[string]any{"nope": 1}, WithStrictKeys[repeatArgs]())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestBuildSelfValidation(t *testing.T) {
	_, err := Build[repeatArgs](map[string]any{"count": -1}, WithSelfValidation[repeatArgs]())
	if !errors.Is(err, ErrValidate) {
		t.Fatalf("expected ErrValidate, got %v", err)
	}
}

func TestBuildDuplicateValidator(t *testing.T) {
	v := func(*repeatArgs) error { return nil }
	_, err := Build[repeatArgs](nil, WithValidator(v), WithValidator(v))
	if !errors.Is(err, ErrOption) {
		t.Fatalf("expected ErrOption, got %v", err)
	}
}

func ExampleBuild() {
	type Args struct {
		Count int    `option:"count"`
		Label string `option:"label"`
	}

	args, err := Build[Args](map[string]any{"count": 3, "label": "coucou"})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s x%d\n", args.Label, args.Count)
	// Output: coucou x3
}
