// Package observe provides the reactive cells that make controller state
// render-triggering.
//
// A controller declares its mutable state as cells:
//
//	type Ticker struct {
//	    component.Base
//	    Seconds *observe.Value[int]
//	    Items   *observe.List[string]
//	}
//
// Observe binds every cell reachable from the controller to a change
// callback. Committing a changed value through Set, Update or a container
// mutator invokes the callback synchronously; writing the current value again
// is a no-op. There is no batching: each committed write is one notification.
//
// Mutating a container's contents in place (e.g. writing through the slice
// returned by List.Get) bypasses the wrapped mutators and is not detected.
package observe
