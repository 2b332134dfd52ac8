package component

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/vango-dev/uielement/pkg/dom"
)

// SetupFunc returns the effects applied to a host each time it connects.
type SetupFunc func(host *Host) []Effect

// Props maps property names to their initializers.
type Props map[string]Initializer

// Definition is a registered component.
type Definition struct {
	tag      string
	props    Props
	names    []string
	setup    SetupFunc
	registry *dom.Registry

	// attribute name -> property name
	attrs    map[string]string
	observed []string
}

var propertyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// reservedProperties are element properties and lifecycle names a
// component property would shadow.
var reservedProperties = map[string]bool{
	"accessKey": true, "attributes": true, "baseURI": true,
	"childElementCount": true, "childNodes": true, "children": true,
	"classList": true, "className": true, "clientHeight": true,
	"clientLeft": true, "clientTop": true, "clientWidth": true,
	"constructor": true, "contentEditable": true, "dataset": true,
	"dir": true, "draggable": true, "firstChild": true,
	"firstElementChild": true, "hidden": true, "id": true,
	"inert": true, "innerHTML": true, "innerText": true,
	"isConnected": true, "lang": true, "lastChild": true,
	"lastElementChild": true, "localName": true, "namespaceURI": true,
	"nextElementSibling": true, "nextSibling": true, "nodeName": true,
	"nodeType": true, "nodeValue": true, "offsetHeight": true,
	"offsetLeft": true, "offsetParent": true, "offsetTop": true,
	"offsetWidth": true, "outerHTML": true, "outerText": true,
	"ownerDocument": true, "parentElement": true, "parentNode": true,
	"part": true, "prefix": true, "previousElementSibling": true,
	"previousSibling": true, "scrollHeight": true, "scrollLeft": true,
	"scrollTop": true, "scrollWidth": true, "shadowRoot": true,
	"slot": true, "spellcheck": true, "style": true, "tabIndex": true,
	"tagName": true, "textContent": true, "title": true, "translate": true,

	"connectedCallback": true, "disconnectedCallback": true,
	"attributeChangedCallback": true, "adoptedCallback": true,
	"observedAttributes": true,

	"onblur": true, "onchange": true, "onclick": true, "onerror": true,
	"onfocus": true, "oninput": true, "onkeydown": true, "onkeyup": true,
	"onload": true, "onmousedown": true, "onmouseup": true,
	"onmouseover": true, "onsubmit": true,
}

func validateProperty(tag, name string, init Initializer) error {
	switch {
	case init == nil:
		return &InvalidPropertyNameError{Tag: tag, Name: name, Reason: "initializer is nil"}
	case !propertyPattern.MatchString(name):
		return &InvalidPropertyNameError{Tag: tag, Name: name, Reason: "must start with a letter and contain only letters, digits, '-' or '_'"}
	case reservedProperties[name]:
		return &InvalidPropertyNameError{Tag: tag, Name: name, Reason: "shadows an element property"}
	}
	return nil
}

// Define validates and registers a component. Nothing is registered when
// validation fails.
//
// Elements with tag already present in the registry's documents are upgraded
// right away; callback errors from those upgrades are returned together with
// the Definition.
//
// Example:
//
//	component.Define(reg, "hello-world", component.Props{
//	    "name": component.Attribute(component.AsString("World")),
//	}, func(host *component.Host) []component.Effect {
//	    return []component.Effect{
//	        component.First("span", component.SetText(component.Prop[string]("name"))),
//	    }
//	})
func Define(reg *dom.Registry, tag string, props Props, setup SetupFunc) (*Definition, error) {
	if !dom.ValidName(tag) {
		return nil, &InvalidComponentNameError{Tag: tag}
	}
	if setup == nil {
		return nil, &InvalidSetupFunctionError{Tag: tag, Reason: "setup function is nil"}
	}

	def := &Definition{
		tag:      tag,
		props:    make(Props, len(props)),
		setup:    setup,
		registry: reg,
		attrs:    make(map[string]string),
	}
	for name, init := range props {
		if err := validateProperty(tag, name, init); err != nil {
			return nil, err
		}
		def.props[name] = init
		def.names = append(def.names, name)

		if init.kind() == kindAttribute {
			attr := strings.ToLower(name)
			if other, ok := def.attrs[attr]; ok {
				return nil, &InvalidPropertyNameError{Tag: tag, Name: name, Reason: "attribute " + attr + " already backs " + other}
			}
			def.attrs[attr] = name
			def.observed = append(def.observed, attr)
		}
	}
	sort.Strings(def.names)
	sort.Strings(def.observed)

	err := reg.Define(tag, dom.Definition{
		ObservedAttributes: def.observed,
		New:                func(el *dom.Element) any { return newHost(def, el) },
	})
	if err != nil {
		if errors.Is(err, dom.ErrInvalidName) || errors.Is(err, dom.ErrAlreadyDefined) || errors.Is(err, dom.ErrNoConstructor) {
			return nil, err
		}
		return def, err
	}
	return def, nil
}

// MustDefine is like Define but panics on definition errors.
func MustDefine(reg *dom.Registry, tag string, props Props, setup SetupFunc) *Definition {
	def, err := Define(reg, tag, props, setup)
	if def == nil {
		panic(err)
	}
	return def
}

// Tag returns the component's tag name.
func (d *Definition) Tag() string {
	return d.tag
}

// Properties returns the declared property names in sorted order.
func (d *Definition) Properties() []string {
	return append([]string(nil), d.names...)
}

// ObservedAttributes returns the attributes backing Attribute properties.
func (d *Definition) ObservedAttributes() []string {
	return append([]string(nil), d.observed...)
}

// CheckProperty reports whether name could be declared on a component.
// It returns nil or an *InvalidPropertyNameError.
func CheckProperty(tag, name string) error {
	return validateProperty(tag, name, Value(0))
}
