package component

import (
	"errors"
	"fmt"
)

// Error codes, listed in the CLI's error registry.
const (
	CodeInvalidComponentName = "UIE201"
	CodeInvalidPropertyName  = "UIE202"
	CodeInvalidSetupFunction = "UIE203"
	CodeMissingElement       = "UIE301"
	CodeInvalidCustomElement = "UIE302"
	CodeInvalidSignal        = "UIE303"
	CodeUnsafeAttribute      = "UIE304"
)

var (
	// ErrUnknownProperty is returned when writing a property that is not in
	// the property bag.
	ErrUnknownProperty = errors.New("component: unknown property")

	// ErrReadOnlyProperty is returned when writing a property backed by a
	// signal that cannot be written, such as a Computed.
	ErrReadOnlyProperty = errors.New("component: read-only property")

	// ErrUnsafeAttribute is returned by SetAttribute for event handler
	// attributes and script URLs.
	ErrUnsafeAttribute = errors.New("component: unsafe attribute value")
)

// InvalidComponentNameError reports a tag that is not a valid custom element
// name.
type InvalidComponentNameError struct {
	Tag string
}

func (e *InvalidComponentNameError) Error() string {
	return fmt.Sprintf("invalid component name %q: must be lower case and contain a hyphen, like \"my-counter\"", e.Tag)
}

// Code returns the registry code.
func (e *InvalidComponentNameError) Code() string { return CodeInvalidComponentName }

// InvalidPropertyNameError reports a property name that cannot be used.
type InvalidPropertyNameError struct {
	Tag    string
	Name   string
	Reason string
}

func (e *InvalidPropertyNameError) Error() string {
	return fmt.Sprintf("invalid property name %q for <%s>: %s", e.Name, e.Tag, e.Reason)
}

// Code returns the registry code.
func (e *InvalidPropertyNameError) Code() string { return CodeInvalidPropertyName }

// InvalidSetupFunctionError reports a missing setup function or a nil effect
// in the list it returned.
type InvalidSetupFunctionError struct {
	Tag    string
	Reason string
}

func (e *InvalidSetupFunctionError) Error() string {
	return fmt.Sprintf("invalid setup function for <%s>: %s", e.Tag, e.Reason)
}

// Code returns the registry code.
func (e *InvalidSetupFunctionError) Code() string { return CodeInvalidSetupFunction }

// MissingElementError reports a required descendant that is absent.
type MissingElementError struct {
	Host     string
	Selector string
	Message  string
}

func (e *MissingElementError) Error() string {
	msg := fmt.Sprintf("missing required element %q in <%s>", e.Selector, e.Host)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Code returns the registry code.
func (e *MissingElementError) Code() string { return CodeMissingElement }

// InvalidCustomElementError reports a target that is not a defined component
// where one is needed.
type InvalidCustomElementError struct {
	Tag    string
	Reason string
}

func (e *InvalidCustomElementError) Error() string {
	return fmt.Sprintf("<%s> is not a valid target: %s", e.Tag, e.Reason)
}

// Code returns the registry code.
func (e *InvalidCustomElementError) Code() string { return CodeInvalidCustomElement }

// InvalidSignalError reports a non-signal value passed to SetSignal.
type InvalidSignalError struct {
	Name  string
	Value any
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal for property %q: %T is not a signal", e.Name, e.Value)
}

// Code returns the registry code.
func (e *InvalidSignalError) Code() string { return CodeInvalidSignal }
