// Package expr implements the restricted expression language used in iq
// templates: {{...}} interpolations, directive expressions and event handler
// expressions.
//
// Expressions are parsed once into an AST and evaluated against an explicit
// Scope. There are no ambient globals: every identifier resolves through the
// scope chain (loop variables, $event, then the controller's exported fields
// and methods) or fails.
//
// Grammar, loosely:
//
//	expr    = ternary
//	ternary = or ("?" expr ":" expr)?
//	or      = and ("||" and)*
//	and     = equality ("&&" equality)*
//	...
//	postfix = primary ("." ident | "[" expr "]" | "(" args ")")*
//	primary = number | string | true | false | nil | ident | "(" expr ")"
package expr
