// Package iqtest provides testing helpers for iq components.
//
// It reduces boilerplate when testing controllers end to end: mount a page
// of markup against a registry, fire events at rendered nodes, and assert
// on the resulting document.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    registry := component.NewRegistry()
//	    registry.MustRegister("my-counter", newCounter)
//
//	    doc := iqtest.Mount(t, registry, `<my-counter></my-counter>`)
//
//	    doc.Fire(doc.Query("button"), "click", nil)
//	    iqtest.ExpectContains(t, doc.HTML(), "count: 1")
//	}
//
// # Template Sources
//
// MapSource serves templates from memory for tests that exercise
// Base.LoadTemplate:
//
//	src := iqtest.MapSource{"clock.html": "<p>{{seconds}}</p>"}
//	doc := iqtest.Mount(t, registry, markup, iqtest.WithSource(src))
package iqtest
