package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Evaluation errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryEval,
		Message:  "expression evaluation failed",
		Detail:   "The expression could not be evaluated against the controller scope. The affected binding renders empty; sibling nodes are unaffected.",
	},
	"E002": {
		Category: CategoryEval,
		Message:  "interpolation failed",
		Detail:   "One or more {{...}} expressions in a text or attribute value failed. Failing occurrences render as empty strings.",
	},
	"E003": {
		Category: CategoryEval,
		Message:  "iteration directive iterable failed",
		Detail:   "The data-iq.for iterable expression failed to evaluate. The directive renders no items for this pass.",
	},
	"E004": {
		Category: CategoryEval,
		Message:  "malformed iteration directive",
		Detail:   "data-iq.for expects the form \"var of expr\".",
	},

	// ============================================
	// Mount errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryMount,
		Message:  "unknown component tag",
		Detail:   "No factory is registered for this tag. Register one with Registry.Register at startup. The element is skipped; siblings still render.",
	},
	"E102": {
		Category: CategoryMount,
		Message:  "controller construction failed",
		Detail:   "The component factory panicked or returned nil. The element is skipped and not retried.",
	},
	"E103": {
		Category: CategoryMount,
		Message:  "controller missing base contract",
		Detail:   "The constructed controller does not embed component.Base. This usually means the factory built the wrong type.",
	},
	"E104": {
		Category: CategoryMount,
		Message:  "input assignment failed",
		Detail:   "An input value set by the parent could not be assigned to the matching controller field.",
	},

	// ============================================
	// Template errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryTemplate,
		Message:  "template parse failed",
		Detail:   "The template markup could not be parsed into a node tree.",
	},
	"E202": {
		Category: CategoryTemplate,
		Message:  "template fetch failed",
		Detail:   "The template source returned an error. The component keeps its previous template until a later fetch succeeds.",
	},

	// ============================================
	// Protocol errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryProtocol,
		Message:  "websocket write failed",
		Detail:   "A patch frame could not be delivered; the session is closed.",
	},
	"E302": {
		Category: CategoryProtocol,
		Message:  "malformed client frame",
		Detail:   "A client event frame could not be decoded and was dropped.",
	},

	// ============================================
	// Config errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryConfig,
		Message:  "invalid configuration",
		Detail:   "iq.json could not be read or contains invalid values.",
	},
}

// Lookup returns the registered template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
