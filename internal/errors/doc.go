// Package errors provides coded, actionable error messages for the uielement
// command line.
//
// The typed errors of pkg/reactive and pkg/component carry a stable code
// through a Code() method. This package maps those codes, and a few sentinel
// errors, to templates with an explanation, a fix suggestion and a
// documentation link.
//
// # Error Codes
//
//   - UIE1xx: reactive graph (cycles, producer failures, flush budget)
//   - UIE2xx: component definition (names, properties, setup)
//   - UIE3xx: component runtime (missing elements, unsafe attributes, DOM)
//   - UIE4xx: transport, configuration and CLI
//
// # Usage
//
//	if _, err := component.Define(reg, "Counter", props, setup); err != nil {
//	    errors.Fprint(os.Stderr, err)
//	}
//	// Output:
//	// ERROR UIE201: Invalid component name
//	//
//	//   │ invalid component name "Counter": must be lower case and contain a hyphen, ...
//	//
//	//   Custom element names must start with a lowercase letter, ...
//	//
//	//   Hint: Use a name like "my-counter".
package errors
