package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// GetAttribute returns the value of the named attribute.
func (e *Element) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttribute reports whether the named attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// Attributes returns a copy of e's attributes in document order.
func (e *Element) Attributes() []html.Attribute {
	return append([]html.Attribute(nil), e.node.Attr...)
}

// SetAttribute sets the named attribute. Setting an attribute to its current
// value does nothing.
func (e *Element) SetAttribute(name, value string) error {
	name = strings.ToLower(name)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			if a.Val == value {
				return nil
			}
			old := a.Val
			e.node.Attr[i].Val = value
			return e.attributeChanged(name, &old, &value)
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
	return e.attributeChanged(name, nil, &value)
}

// RemoveAttribute removes the named attribute if present.
func (e *Element) RemoveAttribute(name string) error {
	name = strings.ToLower(name)
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == name {
			old := a.Val
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return e.attributeChanged(name, &old, nil)
		}
	}
	return nil
}

// ToggleAttribute adds the named boolean attribute when on is true and
// removes it otherwise.
func (e *Element) ToggleAttribute(name string, on bool) error {
	if !on {
		return e.RemoveAttribute(name)
	}
	if e.HasAttribute(name) {
		return nil
	}
	return e.SetAttribute(name, "")
}

func (e *Element) attributeChanged(name string, oldValue, newValue *string) error {
	var err error
	if e.def != nil && e.def.observes(name) {
		if cb, ok := e.instance.(AttributeChanger); ok {
			err = cb.AttributeChangedCallback(name, oldValue, newValue)
		}
	}
	e.doc.notify(MutationRecord{
		Type:          Attributes,
		Target:        e,
		AttributeName: name,
		OldValue:      oldValue,
	})
	return err
}

// ClassList returns the element's classes in order.
func (e *Element) ClassList() []string {
	v, _ := e.GetAttribute("class")
	return strings.Fields(v)
}

// HasClass reports whether class is in the class list.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.ClassList() {
		if c == class {
			return true
		}
	}
	return false
}

// ToggleClass adds class when on is true and removes it otherwise.
func (e *Element) ToggleClass(class string, on bool) error {
	classes := e.ClassList()
	out := classes[:0:0]
	found := false
	for _, c := range classes {
		if c == class {
			found = true
			if !on {
				continue
			}
		}
		out = append(out, c)
	}
	if found == on {
		return nil
	}
	if on {
		out = append(out, class)
	}
	if len(out) == 0 {
		return e.RemoveAttribute("class")
	}
	return e.SetAttribute("class", strings.Join(out, " "))
}

// Style returns the inline style value of prop, or "" when unset.
func (e *Element) Style(prop string) string {
	for _, d := range e.styleDecls() {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) error {
	if value == "" {
		return e.RemoveStyle(prop)
	}
	decls := e.styleDecls()
	found := false
	for i, d := range decls {
		if d[0] == prop {
			decls[i][1] = value
			found = true
		}
	}
	if !found {
		decls = append(decls, [2]string{prop, value})
	}
	return e.writeStyle(decls)
}

// RemoveStyle removes an inline style property.
func (e *Element) RemoveStyle(prop string) error {
	decls := e.styleDecls()
	out := decls[:0]
	for _, d := range decls {
		if d[0] != prop {
			out = append(out, d)
		}
	}
	if len(out) == len(decls) {
		return nil
	}
	return e.writeStyle(out)
}

func (e *Element) styleDecls() [][2]string {
	v, _ := e.GetAttribute("style")
	var decls [][2]string
	for _, part := range strings.Split(v, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		decls = append(decls, [2]string{prop, strings.TrimSpace(value)})
	}
	return decls
}

func (e *Element) writeStyle(decls [][2]string) error {
	if len(decls) == 0 {
		return e.RemoveAttribute("style")
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ": " + d[1] + ";"
	}
	return e.SetAttribute("style", strings.Join(parts, " "))
}
