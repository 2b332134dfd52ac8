package dom

import "errors"

var (
	// ErrInvalidName is returned when defining a tag that is not a valid
	// custom element name.
	ErrInvalidName = errors.New("dom: invalid custom element name")

	// ErrAlreadyDefined is returned when a tag is defined twice in one registry.
	ErrAlreadyDefined = errors.New("dom: custom element already defined")

	// ErrNoConstructor is returned when a Definition has no New function.
	ErrNoConstructor = errors.New("dom: definition has no constructor")

	// ErrHierarchy is returned when an insertion would make a node its own
	// ancestor.
	ErrHierarchy = errors.New("dom: hierarchy request error")

	// ErrNotChild is returned when the reference node is not a child of the
	// node being modified.
	ErrNotChild = errors.New("dom: reference node is not a child")

	// ErrWrongDocument is returned when nodes from different documents are
	// combined.
	ErrWrongDocument = errors.New("dom: node belongs to another document")
)
