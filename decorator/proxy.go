package decorator

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent is the result of a proxy whose target was never invoked.
var Absent any = absent{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Proxy stands in for the decorated function inside a template. It holds the
// pending call arguments, the arguments fixed when the slot was declared and
// the last result.
//
// A Proxy belongs to a single call; it is not safe for concurrent use.
type Proxy struct {
	target  Target
	fixed   Args
	pending Args
	result  any
	calls   int
}

// NewProxy creates an unbound proxy. fixed is appended to every invocation.
func NewProxy(fixed ...any) *Proxy {
	return NewProxyNamed(nil, fixed...)
}

// NewProxyNamed creates an unbound proxy with fixed positional and named
// arguments. Fixed named arguments win over call-time ones.
func NewProxyNamed(named map[string]any, fixed ...any) *Proxy {
	return &Proxy{
		fixed: Args{
			Positional: append([]any(nil), fixed...),
			Named:      mergeNamed(named),
		},
		result: Absent,
	}
}

// Bind stores the target. A proxy is bound exactly once.
func (p *Proxy) Bind(target Target) error {
	if isNilTarget(target) {
		return ErrNilTarget
	}
	if p.target != nil {
		return ErrRebind
	}
	p.target = target
	return nil
}

func (p *Proxy) Bound() bool    { return p.target != nil }
func (p *Proxy) Target() Target { return p.target }

// SetCall replaces the pending call arguments.
func (p *Proxy) SetCall(args Args) {
	p.pending = args.clone()
}

// Pending returns a copy of the pending call arguments.
func (p *Proxy) Pending() Args {
	return p.pending.clone()
}

// Invoke calls the target with extra, then the pending arguments, then the
// fixed ones.
func (p *Proxy) Invoke(extra ...any) (any, error) {
	return p.InvokeWith(Args{Positional: extra})
}

// InvokeWith is Invoke with named arguments. Named arguments are merged in
// the same order, later layers win.
func (p *Proxy) InvokeWith(extra Args) (any, error) {
	if p.target == nil {
		return nil, ErrUnboundProxy
	}

	positional := make([]any, 0, len(extra.Positional)+len(p.pending.Positional)+len(p.fixed.Positional))
	positional = append(positional, extra.Positional...)
	positional = append(positional, p.pending.Positional...)
	positional = append(positional, p.fixed.Positional...)

	result, err := p.target.Invoke(Args{
		Positional: positional,
		Named:      mergeNamed(extra.Named, p.pending.Named, p.fixed.Named),
	})
	p.calls++
	if err != nil {
		return nil, err
	}
	p.result = result
	return result, nil
}

// Result returns the last successful result, or Absent.
func (p *Proxy) Result() any { return p.result }

// Calls returns how many times the target was invoked.
func (p *Proxy) Calls() int { return p.calls }
