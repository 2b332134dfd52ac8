package dom

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// Element is an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node

	props     map[string]any
	listeners map[string][]*listener

	def       *Definition
	instance  any
	upgraded  bool
	connected bool
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Node returns the underlying parser node.
func (e *Element) Node() *html.Node {
	return e.node
}

// TagName returns the lower-case tag name.
func (e *Element) TagName() string {
	return e.node.Data
}

// Instance returns the custom element instance e was upgraded to, or nil.
func (e *Element) Instance() any {
	return e.instance
}

// IsUpgraded reports whether e was upgraded to a custom element.
func (e *Element) IsUpgraded() bool {
	return e.upgraded
}

// IsConnected reports whether e is attached to its document.
func (e *Element) IsConnected() bool {
	return e.doc.contains(e.node)
}

// Parent returns the parent element, or nil for the root element and
// detached elements.
func (e *Element) Parent() *Element {
	return e.doc.wrap(e.node.Parent)
}

// Children returns the element children.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// FirstElementChild returns the first child element, or nil.
func (e *Element) FirstElementChild() *Element {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// LastElementChild returns the last child element, or nil.
func (e *Element) LastElementChild() *Element {
	for c := e.node.LastChild; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// NextElementSibling returns the next sibling element, or nil.
func (e *Element) NextElementSibling() *Element {
	for c := e.node.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// PreviousElementSibling returns the previous sibling element, or nil.
func (e *Element) PreviousElementSibling() *Element {
	for c := e.node.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for p := other.node; p != nil; p = p.Parent {
		if p == e.node {
			return true
		}
	}
	return false
}

// AppendChild inserts child as the last child of e, moving it if it already
// has a parent.
func (e *Element) AppendChild(child *Element) error {
	return e.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref appends. The returned
// error joins the lifecycle callback errors of the moved subtree.
func (e *Element) InsertBefore(child, ref *Element) error {
	if child.doc != e.doc {
		return ErrWrongDocument
	}
	if child.Contains(e) {
		return ErrHierarchy
	}
	if ref != nil && ref.node.Parent != e.node {
		return ErrNotChild
	}
	if ref == child {
		return nil
	}

	var errs []error
	if child.node.Parent != nil {
		errs = append(errs, child.detach())
	}

	var refNode *html.Node
	if ref != nil {
		refNode = ref.node
	}
	e.node.InsertBefore(child.node, refNode)

	if e.IsConnected() {
		errs = append(errs, e.doc.connectTree(child.node))
	}
	e.doc.notify(MutationRecord{Type: ChildList, Target: e})
	return errors.Join(errs...)
}

// Remove detaches e from its parent.
func (e *Element) Remove() error {
	if e.node.Parent == nil {
		return nil
	}
	return e.detach()
}

// ReplaceWith replaces e by other in e's parent.
func (e *Element) ReplaceWith(other *Element) error {
	parent := e.Parent()
	if parent == nil {
		return nil
	}
	if err := parent.InsertBefore(other, e); err != nil {
		return err
	}
	return e.Remove()
}

func (e *Element) detach() error {
	parent := e.node.Parent
	wasConnected := e.IsConnected()
	parent.RemoveChild(e.node)

	var err error
	if wasConnected {
		err = e.doc.disconnectTree(e.node)
	}
	if p := e.doc.wrap(parent); p != nil {
		e.doc.notify(MutationRecord{Type: ChildList, Target: p})
	}
	return err
}

// removeChildren detaches all child nodes without notifying observers.
func (e *Element) removeChildren() error {
	wasConnected := e.IsConnected()
	var errs []error
	for c := e.node.FirstChild; c != nil; c = e.node.FirstChild {
		e.node.RemoveChild(c)
		if wasConnected {
			errs = append(errs, e.doc.disconnectTree(c))
		}
	}
	return errors.Join(errs...)
}

// TextContent returns the concatenated text of e's descendants.
func (e *Element) TextContent() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// SetTextContent replaces e's children with a single text node.
func (e *Element) SetTextContent(text string) error {
	err := e.removeChildren()
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	e.doc.notify(MutationRecord{Type: ChildList, Target: e})
	return err
}

// AppendText appends a text node.
func (e *Element) AppendText(text string) {
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	e.doc.notify(MutationRecord{Type: ChildList, Target: e})
}

// InnerHTML serializes e's children.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// SetInnerHTML replaces e's children with the parsed fragment. Script
// elements are inserted but never executed.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}

	errs := []error{e.removeChildren()}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	if e.IsConnected() {
		for _, n := range nodes {
			errs = append(errs, e.doc.connectTree(n))
		}
	}
	e.doc.notify(MutationRecord{Type: ChildList, Target: e})
	return errors.Join(errs...)
}

// OuterHTML serializes e itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return ""
	}
	return buf.String()
}

// String returns a short description such as <my-counter id="main">.
func (e *Element) String() string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(e.node.Data)
	if id, ok := e.GetAttribute("id"); ok {
		b.WriteString(` id="`)
		b.WriteString(id)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}

// upgrade creates the custom element instance for e if its tag is defined.
// Observed attributes already present are reported to the instance.
func (e *Element) upgrade() error {
	if e.upgraded {
		return nil
	}
	def, ok := e.doc.registry.lookup(e.node.Data)
	if !ok {
		return nil
	}
	e.upgraded = true
	e.def = def
	e.instance = def.New(e)

	cb, ok := e.instance.(AttributeChanger)
	if !ok {
		return nil
	}
	var errs []error
	for _, name := range def.ObservedAttributes {
		if v, ok := e.GetAttribute(name); ok {
			if err := cb.AttributeChangedCallback(name, nil, &v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
