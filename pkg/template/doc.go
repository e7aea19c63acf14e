// Package template compiles raw template markup plus a controller context
// into a fresh, unattached document fragment.
//
// The compiler walks the parsed tree pre-order and, per element, resolves the
// iteration directive (data-iq.for), the conditional directive (data-iq.if),
// component inputs (any other data-iq.* attribute), event bindings (iq:*),
// and finally {{...}} interpolation in text and plain attribute values.
//
// Directives are resolved before the text beneath them is interpolated, so
// loop variables are in scope when their references evaluate. Every
// expression failure is fail-soft: it logs, renders empty, and never stops
// sibling processing.
package template
