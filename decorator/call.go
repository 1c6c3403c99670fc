package decorator

import (
	"github.com/goliatone/go-decorator/bind"
	"github.com/goliatone/go-decorator/option"
)

// Call is the per-call context handed to a template. Nothing in it is
// shared with other calls.
type Call struct {
	// Fn is the injection slot: a proxy bound to the decorated target.
	Fn *Proxy
	// Options holds the resolved option values keyed by binding name.
	Options option.Values
	// Extra holds override names no option declares. Only filled when the
	// decorator was built WithPassthrough.
	Extra map[string]any
	// Args are the arguments the wrapper was called with.
	Args Args
	// Decorator and Target name the decorator and the wrapped target.
	Decorator string
	Target    string
}

// Invoke calls the decorated target through the proxy.
func (c *Call) Invoke(extra ...any) (any, error) {
	return c.Fn.Invoke(extra...)
}

// Value returns the option bound to name, or the zero value of T.
func Value[T any](c *Call, name string) T {
	v, _ := option.Get[T](c.Options, name)
	return v
}

// Bind decodes the resolved options onto T using the option struct tag.
func Bind[T any](c *Call, opts ...bind.Option[T]) (T, error) {
	return bind.Build[T](c.Options, opts...)
}
