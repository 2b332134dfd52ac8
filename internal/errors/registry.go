package errors

import (
	"sort"

	"github.com/vango-dev/uielement/pkg/component"
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://uielement.dev/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Graph Errors (UIE101-UIE199)
	// ============================================

	reactive.CodeCircularMutation: {
		Category:   CategoryGraph,
		Message:    "Circular dependency detected",
		Detail:     "A computed read its own value while it was being evaluated, directly or through other computeds.",
		Suggestion: "Break the cycle by reading one of the values with Peek or inside Untracked.",
		DocURL:     docBase + reactive.CodeCircularMutation,
	},
	reactive.CodeProducer: {
		Category: CategoryGraph,
		Message:  "Computed producer failed",
		Detail:   "The producer function of a computed returned an error or panicked. The last good value stays cached and the producer runs again on the next read.",
		DocURL:   docBase + reactive.CodeProducer,
	},
	reactive.CodeTypeMismatch: {
		Category: CategoryGraph,
		Message:  "Signal type mismatch",
		Detail:   "A value of the wrong type was written to a typed signal through its untyped interface.",
		DocURL:   docBase + reactive.CodeTypeMismatch,
	},
	reactive.CodeFlushBudget: {
		Category:   CategoryGraph,
		Message:    "Effects kept re-triggering each other",
		Detail:     "A single flush ran more effects than the configured budget. An effect is writing a signal it depends on, or two effects write each other's inputs.",
		Suggestion: "Raise reactive.maxEffectRunsPerFlush only if the chain is legitimate; otherwise derive the value with a computed.",
		DocURL:     docBase + reactive.CodeFlushBudget,
	},

	// ============================================
	// Definition Errors (UIE201-UIE299)
	// ============================================

	component.CodeInvalidComponentName: {
		Category:   CategoryDefinition,
		Message:    "Invalid component name",
		Detail:     "Custom element names must start with a lowercase letter, contain a hyphen and not be one of the reserved SVG or MathML names.",
		Suggestion: `Use a name like "my-counter".`,
		DocURL:     docBase + component.CodeInvalidComponentName,
	},
	component.CodeInvalidPropertyName: {
		Category:   CategoryDefinition,
		Message:    "Invalid property name",
		Detail:     "Property names must be identifiers and must not shadow element properties, lifecycle callbacks or event handlers.",
		Suggestion: `Rename the property, e.g. "label" instead of "title".`,
		DocURL:     docBase + component.CodeInvalidPropertyName,
	},
	component.CodeInvalidSetupFunction: {
		Category: CategoryDefinition,
		Message:  "Invalid setup function",
		Detail:   "The setup function is missing or returned a nil effect.",
		DocURL:   docBase + component.CodeInvalidSetupFunction,
	},

	"UIE204": {
		Category:   CategoryDefinition,
		Message:    "Component already defined",
		Detail:     "A custom element name can be defined only once per registry.",
		Suggestion: "Create a new registry per document set, or define each component once at startup.",
		DocURL:     docBase + "UIE204",
	},

	// ============================================
	// Runtime Errors (UIE301-UIE399)
	// ============================================

	component.CodeMissingElement: {
		Category: CategoryRuntime,
		Message:  "Required element missing",
		Detail:   "A selector passed to FirstRequired matched nothing inside the component.",
		DocURL:   docBase + component.CodeMissingElement,
	},
	component.CodeInvalidCustomElement: {
		Category: CategoryRuntime,
		Message:  "Target is not a component",
		Detail:   "Pass was applied to an element that is not a defined custom element.",
		DocURL:   docBase + component.CodeInvalidCustomElement,
	},
	component.CodeInvalidSignal: {
		Category: CategoryRuntime,
		Message:  "Invalid signal",
		Detail:   "SetSignal was given a value that is not a signal.",
		DocURL:   docBase + component.CodeInvalidSignal,
	},
	component.CodeUnsafeAttribute: {
		Category:   CategoryRuntime,
		Message:    "Unsafe attribute value refused",
		Detail:     "SetAttribute does not write event handler attributes or script URLs.",
		Suggestion: "Use On for event handlers and validate URLs before binding them.",
		DocURL:     docBase + component.CodeUnsafeAttribute,
	},
	"UIE305": {
		Category: CategoryRuntime,
		Message:  "Invalid DOM operation",
		Detail:   "A node was inserted into itself, into another document, or relative to a node that is not a child.",
		DocURL:   docBase + "UIE305",
	},
	"UIE306": {
		Category: CategoryRuntime,
		Message:  "Property cannot be written",
		Detail:   "The property is not declared by the component, or it is backed by a read-only signal.",
		DocURL:   docBase + "UIE306",
	},

	// ============================================
	// Transport Errors (UIE401-UIE419)
	// ============================================

	"UIE401": {
		Category: CategoryTransport,
		Message:  "Invalid live message",
		Detail:   "A message received on a live session could not be decoded.",
		DocURL:   docBase + "UIE401",
	},
	"UIE402": {
		Category: CategoryTransport,
		Message:  "Event target not found",
		Detail:   "The selector of a live event matched no element in the session document.",
		DocURL:   docBase + "UIE402",
	},

	// ============================================
	// Configuration Errors (UIE420-UIE439)
	// ============================================

	"UIE420": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "uielement.json or uielement.yaml could not be parsed.",
		DocURL:   docBase + "UIE420",
	},
	"UIE421": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
		DocURL:   docBase + "UIE421",
	},

	// ============================================
	// CLI Errors (UIE440-UIE459)
	// ============================================

	"UIE440": {
		Category: CategoryCLI,
		Message:  "Page not found",
		Detail:   "The HTML page to render does not exist.",
		DocURL:   docBase + "UIE440",
	},
	"UIE441": {
		Category: CategoryCLI,
		Message:  "Invalid event script",
		Detail:   "An --event flag must have the form selector=type.",
		DocURL:   docBase + "UIE441",
	},
	"UIE442": {
		Category: CategoryCLI,
		Message:  "Rendering failed",
		Detail:   "The page could not be parsed or one of its components failed to connect.",
		DocURL:   docBase + "UIE442",
	},
	"UIE443": {
		Category:   CategoryCLI,
		Message:    "Undefined custom element",
		Detail:     "The page uses a custom element name that no component defines. The element stays a plain element.",
		Suggestion: "Check the tag for typos or define the component before rendering.",
		DocURL:     docBase + "UIE443",
	},
}

func init() {
	RegisterSentinel(reactive.ErrTypeMismatch, reactive.CodeTypeMismatch)
	RegisterSentinel(component.ErrUnsafeAttribute, component.CodeUnsafeAttribute)
	RegisterSentinel(component.ErrUnknownProperty, "UIE306")
	RegisterSentinel(component.ErrReadOnlyProperty, "UIE306")
	RegisterSentinel(dom.ErrInvalidName, component.CodeInvalidComponentName)
	RegisterSentinel(dom.ErrAlreadyDefined, "UIE204")
	RegisterSentinel(dom.ErrHierarchy, "UIE305")
	RegisterSentinel(dom.ErrNotChild, "UIE305")
	RegisterSentinel(dom.ErrWrongDocument, "UIE305")
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
