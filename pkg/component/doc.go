// Package component discovers component-tagged elements, attaches controllers
// to them, and drives the compile/diff/patch render cycle.
//
// A component is any struct embedding Base, registered against a dashed tag
// name:
//
//	type TickerClock struct {
//	    component.Base
//	    Seconds *observe.Value[int]
//	}
//
//	reg.Register("ticker-clock", func(d *component.Deps) component.Controller {
//	    return &TickerClock{Seconds: observe.NewValue(0)}
//	})
//
// The loader instantiates a controller once per host element, observes its
// cells so committed state changes re-render that element's subtree, compiles
// its Template against it, and patches the result into the live tree.
//
// Rendering is single-threaded by contract, like the event loop it models:
// callers that dispatch from multiple goroutines must serialize access to one
// Loader (the live server does this per session).
package component
