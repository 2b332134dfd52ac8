package dom

import (
	"fmt"
	"strings"
)

// PropertyHost is implemented by custom element instances that own some of
// their element's properties. SetProperty reports whether it handled name.
type PropertyHost interface {
	Property(name string) (any, bool)
	SetProperty(name string, value any) (bool, error)
}

// Property returns the named property.
//
// Instances implementing PropertyHost are asked first. A small set of
// properties reflect attributes or content (id, className, hidden, disabled,
// textContent, innerHTML, tagName); value and checked fall back to their
// attribute until first written. Everything else lives in a per-element map.
func (e *Element) Property(name string) (any, bool) {
	if h, ok := e.instance.(PropertyHost); ok {
		if v, ok := h.Property(name); ok {
			return v, true
		}
	}

	switch name {
	case "textContent":
		return e.TextContent(), true
	case "innerHTML":
		return e.InnerHTML(), true
	case "tagName":
		return strings.ToUpper(e.node.Data), true
	case "id":
		v, _ := e.GetAttribute("id")
		return v, true
	case "className":
		v, _ := e.GetAttribute("class")
		return v, true
	case "hidden", "disabled":
		return e.HasAttribute(name), true
	}

	if v, ok := e.props[name]; ok {
		return v, true
	}

	switch name {
	case "value":
		v, _ := e.GetAttribute("value")
		return v, true
	case "checked":
		return e.HasAttribute("checked"), true
	}
	return nil, false
}

// SetProperty sets the named property. See Property for which names are
// reflected.
func (e *Element) SetProperty(name string, value any) error {
	if h, ok := e.instance.(PropertyHost); ok {
		handled, err := h.SetProperty(name, value)
		if handled {
			return err
		}
	}

	switch name {
	case "textContent":
		return e.SetTextContent(stringify(value))
	case "innerHTML":
		return e.SetInnerHTML(stringify(value))
	case "id":
		return e.SetAttribute("id", stringify(value))
	case "className":
		return e.SetAttribute("class", stringify(value))
	case "hidden", "disabled":
		return e.ToggleAttribute(name, truthy(value))
	}

	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[name] = value
	return nil
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}
