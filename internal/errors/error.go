package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryGraph      Category = "graph"
	CategoryDefinition Category = "definition"
	CategoryRuntime    Category = "runtime"
	CategoryTransport  Category = "transport"
	CategoryConfig     Category = "config"
	CategoryCLI        Category = "cli"
)

// UIError is a structured error with a registered code, an explanation and a
// fix suggestion, rendered by the CLI.
type UIError struct {
	// Code is a unique error identifier (e.g., "UIE201").
	Code string

	// Category is the error type (graph, definition, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names what failed: a tag, a property, a file.
	Subject string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *UIError) Error() string {
	msg := e.Message
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *UIError) Unwrap() error {
	return e.Wrapped
}

// WithSubject records what the error is about.
func (e *UIError) WithSubject(s string) *UIError {
	e.Subject = s
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *UIError) WithSuggestion(s string) *UIError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *UIError) WithExample(ex string) *UIError {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *UIError) WithDetail(d string) *UIError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *UIError) Wrap(err error) *UIError {
	e.Wrapped = err
	return e
}

// New creates a UIError from a registered error code.
func New(code string) *UIError {
	template, ok := registry[code]
	if !ok {
		return &UIError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &UIError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new UIError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *UIError {
	return &UIError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// coded is implemented by the typed errors of the reactive and component
// packages.
type coded interface {
	error
	Code() string
}

// sentinel maps package-level error values to registry codes.
var sentinel []struct {
	err  error
	code string
}

// RegisterSentinel makes FromError classify errors matching err with code.
func RegisterSentinel(err error, code string) {
	sentinel = append(sentinel, struct {
		err  error
		code string
	}{err, code})
}

// Classify returns the registry code of err: the code of the first UIError
// or coded error in its chain, then the code of a matching sentinel.
func Classify(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var ue *UIError
	if stderrors.As(err, &ue) && ue.Code != "" {
		return ue.Code, true
	}
	var c coded
	if stderrors.As(err, &c) {
		return c.Code(), true
	}
	for _, s := range sentinel {
		if stderrors.Is(err, s.err) {
			return s.code, true
		}
	}
	return "", false
}

// FromError wraps a standard error in a UIError. The code is taken from the
// error itself when it carries one, else fallback is used.
func FromError(err error, fallback string) *UIError {
	if err == nil {
		return nil
	}
	if ue, ok := err.(*UIError); ok {
		return ue
	}
	code, ok := Classify(err)
	if !ok {
		code = fallback
	}
	return New(code).Wrap(err)
}
