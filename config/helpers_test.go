package config

import (
	"testing"

	"github.com/goliatone/go-decorator/decorator"
	"github.com/goliatone/go-decorator/logger"
	"github.com/goliatone/go-decorator/option"
	"github.com/goliatone/go-decorator/registry"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New(registry.WithLogger(logger.Nop{}))

	repeat, err := decorator.New("repeat", func(c *decorator.Call) (any, error) {
		for i := 0; i < decorator.Value[int](c, "count"); i++ {
			if _, err := c.Invoke(); err != nil {
				return nil, err
			}
		}
		return decorator.Value[string](c, "label"), nil
	},
		decorator.WithOption("count", option.New(3, option.Validate(), option.WithRule("value >= 0"))),
		decorator.WithOption("label", option.New("done", option.WithAlias("text"), option.WithDoc("returned label"))),
		decorator.WithSlot(),
		decorator.WithLogger(logger.Nop{}),
	)
	if err != nil {
		t.Fatalf("build repeat: %v", err)
	}

	tag, err := decorator.New("tag", func(c *decorator.Call) (any, error) {
		return c.Extra, nil
	},
		decorator.WithSlot(),
		decorator.WithPassthrough(),
		decorator.WithLogger(logger.Nop{}),
	)
	if err != nil {
		t.Fatalf("build tag: %v", err)
	}

	for _, d := range []*decorator.Decorator{repeat, tag} {
		if err := reg.Add(d); err != nil {
			t.Fatalf("register %s: %v", d.Name(), err)
		}
	}
	return reg
}

func newContainer(t *testing.T) *Container {
	t.Helper()
	return New(testRegistry(t)).WithLogger(logger.Nop{}).WithConfigPath("")
}

type counter struct{ calls int }

func (c *counter) Invoke(decorator.Args) (any, error) {
	c.calls++
	return c.calls, nil
}
