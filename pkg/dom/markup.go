package dom

import "strings"

// Markup namespaces of the framework's attribute surface.
const (
	// DirectivePrefix namespaces structural directives and component inputs:
	// data-iq.for, data-iq.if, data-iq.<input>.
	DirectivePrefix = "data-iq."

	// EventPrefix namespaces event bindings: iq:click="expr".
	EventPrefix = "iq:"

	// ForDirective and IfDirective are the two reserved directive names.
	// Any other name under DirectivePrefix is a component input.
	ForDirective = "for"
	IfDirective  = "if"

	// EventVar is the reserved identifier bound to the triggering event,
	// visible only inside event handler expressions.
	EventVar = "$event"
)

// ReservedAttr reports whether the attribute key belongs to the directive or
// event namespace.
func ReservedAttr(key string) bool {
	return strings.HasPrefix(key, DirectivePrefix) || strings.HasPrefix(key, EventPrefix)
}
