package decorator

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-decorator/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retryArgs struct {
	Fn      *Proxy         `decorator:"slot"`
	Times   int            `option:"times,validate,coerce" default:"3" doc:"attempts before giving up"`
	Delay   time.Duration  `option:"delay,alias=wait,coerce" default:"1ms"`
	Label   string         `option:"label"`
	Rest    map[string]any `decorator:"extra"`
	Verbose bool
}

func (a retryArgs) Validate() error {
	if a.Times < 1 {
		return fmt.Errorf("times must be positive")
	}
	return nil
}

func retry(a retryArgs) (any, error) {
	var lastErr error
	for i := 0; i < a.Times; i++ {
		out, err := a.Fn.Invoke()
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func TestTypedScansFields(t *testing.T) {
	d, err := Typed("retry", retry, quiet())
	require.NoError(t, err)

	assert.Equal(t, []string{"times", "wait", "label"}, d.Options().Names())
	assert.True(t, d.Passthrough())

	desc, ok := d.Options().Lookup("times")
	require.True(t, ok)
	assert.Equal(t, "attempts before giving up", desc.Doc())
	assert.True(t, desc.Validates())
	assert.True(t, desc.Coerces())

	values, err := d.Defaults()
	require.NoError(t, err)
	assert.Equal(t, option.Values{"times": 3, "delay": time.Millisecond, "label": ""}, values)
}

func TestTypedCall(t *testing.T) {
	d, err := Typed("retry", retry, quiet())
	require.NoError(t, err)

	attempts := 0
	target := Func(func(Args) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("not yet")
		}
		return "ok", nil
	})

	w, err := d.Apply(target)
	require.NoError(t, err)
	out, err := w.Call()
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, attempts)

	attempts = 0
	w, err = d.With(map[string]any{"times": "2", "wait": "5ms"}).Apply(target)
	require.NoError(t, err)
	_, err = w.Call()
	assert.ErrorContains(t, err, "not yet")
	assert.Equal(t, 2, attempts)
}

func TestTypedExtraAndSelfValidation(t *testing.T) {
	var got retryArgs
	d, err := Typed("inspect", func(a retryArgs) (any, error) {
		got = a
		return nil, nil
	}, WithPrototype(retryArgs{Verbose: true, Label: "proto"}), quiet())
	require.NoError(t, err)

	w, err := d.With(map[string]any{"color": "red"}).Apply(&counter{})
	require.NoError(t, err)
	_, err = w.Call()
	require.NoError(t, err)

	assert.NotNil(t, got.Fn)
	assert.True(t, got.Fn.Bound())
	assert.True(t, got.Verbose, "plain fields keep the prototype value")
	assert.Equal(t, "proto", got.Label, "prototype seeds option defaults")
	assert.Equal(t, map[string]any{"color": "red"}, got.Rest)

	_, err = w.CallWith(map[string]any{"times": 0}, Args{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "times must be positive")
}

func TestTypedWithOptionRefinesField(t *testing.T) {
	d, err := Typed("retry", retry,
		WithOption("times", option.New(5, option.WithRule("value <= 5"))),
		quiet(),
	)
	require.NoError(t, err)

	values, err := d.Defaults()
	require.NoError(t, err)
	assert.Equal(t, 5, values["times"])

	_, err = d.With(map[string]any{"times": 6}).Apply(&counter{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestTypedErrors(t *testing.T) {
	runTestCases(t, []testCase{
		{
			name: "missing slot",
			run: func(t *testing.T) {
				type noSlot struct {
					Count int `option:"count"`
				}
				_, err := Typed("noslot", func(noSlot) (any, error) { return nil, nil })
				assert.True(t, errors.Is(err, ErrMissingInjectionSlot))
			},
		},
		{
			name: "two slots",
			run: func(t *testing.T) {
				type twoSlots struct {
					A *Proxy
					B *Proxy `decorator:"slot"`
				}
				_, err := Typed("two", func(twoSlots) (any, error) { return nil, nil })
				assert.True(t, errors.Is(err, ErrNameConflict))
			},
		},
		{
			name: "slot of wrong type",
			run: func(t *testing.T) {
				type badSlot struct {
					Fn func() `decorator:"slot"`
				}
				_, err := Typed("bad", func(badSlot) (any, error) { return nil, nil })
				assert.True(t, errors.Is(err, ErrTemplate))
			},
		},
		{
			name: "option without field",
			run: func(t *testing.T) {
				_, err := Typed("retry", retry, WithOption("missing", option.New(1)))
				assert.True(t, errors.Is(err, ErrTemplate))
			},
		},
		{
			name: "bad default tag",
			run: func(t *testing.T) {
				type badDefault struct {
					Fn    *Proxy
					Count int `option:"count" default:"many"`
				}
				_, err := Typed("bad", func(badDefault) (any, error) { return nil, nil })
				assert.True(t, errors.Is(err, ErrTemplate))
			},
		},
		{
			name: "wrong prototype",
			run: func(t *testing.T) {
				_, err := Typed("retry", retry, WithPrototype("nope"))
				assert.True(t, errors.Is(err, ErrTemplate))
			},
		},
		{
			name: "not a struct",
			run: func(t *testing.T) {
				_, err := Typed("int", func(int) (any, error) { return nil, nil })
				assert.True(t, errors.Is(err, ErrTemplate))
			},
		},
	})
}
