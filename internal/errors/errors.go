// Package errors defines iq's structured diagnostic errors.
//
// Every failure the framework recovers from (a broken expression, a component
// that cannot mount, a template that cannot be fetched) is reported through a
// registered code so logs stay greppable and the failure boundary is obvious.
package errors

import "fmt"

// Category is the failure domain of an error code.
type Category string

const (
	CategoryEval     Category = "eval"
	CategoryMount    Category = "mount"
	CategoryTemplate Category = "template"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
)

// Error is a structured error with a registered code.
type Error struct {
	// Code is a unique error identifier (e.g. "E001").
	Code string

	// Category is the failure domain.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation with remediation hints.
	Detail string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two registry errors by code, so errors.Is works against
// sentinel instances created with New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New creates an error from a registered code. Unknown codes yield a
// placeholder error rather than panicking; they indicate a programming
// mistake, not a user condition.
func New(code string) *Error {
	if tmpl, ok := registry[code]; ok {
		return &Error{
			Code:     code,
			Category: tmpl.Category,
			Message:  tmpl.Message,
			Detail:   tmpl.Detail,
		}
	}
	return &Error{
		Code:    code,
		Message: fmt.Sprintf("unregistered error code %q", code),
	}
}

// Wrap creates a registered error wrapping a cause.
func Wrap(code string, err error) *Error {
	e := New(code)
	e.Err = err
	return e
}

// Newf creates a registered error with a formatted cause.
func Newf(code string, format string, args ...any) *Error {
	return Wrap(code, fmt.Errorf(format, args...))
}
