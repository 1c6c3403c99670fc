// Package decorator manufactures reusable, parameterizable decorators from a
// template function.
//
// A template declares named options and one injection slot. The slot
// receives a *Proxy standing in for the decorated target; the template
// decides whether and when to call it:
//
//	repeat := decorator.Must(decorator.New("repeat",
//		func(c *decorator.Call) (any, error) {
//			for i := 0; i < decorator.Value[int](c, "count"); i++ {
//				if _, err := c.Invoke(); err != nil {
//					return nil, err
//				}
//			}
//			return "done", nil
//		},
//		decorator.WithOption("count", option.New(3, option.Validate())),
//		decorator.WithSlot(),
//	))
//
//	w, _ := repeat.Apply(target)            // bare
//	w, _ = repeat.With(map[string]any{      // curried
//		"count": 5,
//	}).Apply(target)
//
// A Decorator is immutable. Every wrapper call gets its own Proxy and its
// own resolved option values, so wrappers may be called concurrently.
package decorator
