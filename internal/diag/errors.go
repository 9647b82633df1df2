// Package diag defines the source-level error type shared by evaluation,
// recipe application and realization.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/marq/internal/syntax"
)

// Code categorizes source-level errors.
type Code string

const (
	// CodeSyntax marks a parse error surfaced during evaluation.
	CodeSyntax Code = "SYNTAX"

	// CodeCast indicates a value could not be converted to the expected type.
	CodeCast Code = "CAST"

	// CodeType indicates an operation was applied to values of the wrong type.
	CodeType Code = "TYPE"

	// CodeUnknown indicates an unknown variable, field or node name.
	CodeUnknown Code = "UNKNOWN"

	// CodeArgs indicates a function was called with the wrong arguments.
	CodeArgs Code = "ARGS"

	// CodeImport indicates an import could not be resolved or evaluated.
	CodeImport Code = "IMPORT"

	// CodeCycle indicates a cyclic import.
	CodeCycle Code = "CYCLE"

	// CodeRecipe indicates a show rule could not be built.
	CodeRecipe Code = "RECIPE"

	// CodeLimit indicates an evaluation exceeded a resource limit.
	CodeLimit Code = "LIMIT"
)

// Error is an error tied to a location in a source file.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Span locates the error. Detached if unknown.
	Span syntax.Span

	// Message is a human-readable description.
	Message string

	// Hints are optional follow-up suggestions.
	Hints []string

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(string(e.Code))
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if !e.Span.IsDetached() {
		fmt.Fprintf(&b, " (at %s)", e.Span)
	}
	return b.String()
}

// Unwrap returns the wrapped error, if any.
func (e *Error) Unwrap() error { return e.cause }

// WithHint returns e with an added hint.
func (e *Error) WithHint(hint string) *Error {
	e.Hints = append(e.Hints, hint)
	return e
}

// Errorf creates an error at span.
func Errorf(code Code, span syntax.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error at span whose message and cause is err.
func Wrap(code Code, span syntax.Span, err error) *Error {
	return &Error{Code: code, Span: span, Message: err.Error(), cause: err}
}

// At attaches span to err unless err already carries a location.
// Returns nil for a nil error.
func At(span syntax.Span, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		if !de.Span.IsDetached() {
			return err
		}
		located := *de
		located.Span = span
		return &located
	}
	return &Error{Span: span, Message: err.Error(), cause: err}
}

// SpanOf returns the location carried by err, if any.
func SpanOf(err error) (syntax.Span, bool) {
	var de *Error
	if errors.As(err, &de) && !de.Span.IsDetached() {
		return de.Span, true
	}
	return syntax.Detached(), false
}

// Is reports whether err is a source error with the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsCastError returns true if the error is a failed conversion.
// Uses errors.As to handle wrapped errors.
func IsCastError(err error) bool {
	return Is(err, CodeCast)
}
