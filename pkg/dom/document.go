package dom

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a live HTML document.
type Document struct {
	root     *html.Node
	registry *Registry

	mu       sync.Mutex
	elements map[*html.Node]*Element

	obsMu     sync.Mutex
	observers []*observer
}

// NewDocument creates an empty document with html, head and body elements.
// reg may be nil, in which case no element is ever upgraded.
func NewDocument(reg *Registry) *Document {
	root, err := html.Parse(strings.NewReader(""))
	if err != nil {
		root = &html.Node{Type: html.DocumentNode}
	}
	return newDocument(root, reg)
}

// Parse parses an HTML document and connects its elements. Custom elements
// known to reg are upgraded in tree order.
//
// The document is returned even when lifecycle callbacks fail; the error then
// joins the callback errors.
func Parse(r io.Reader, reg *Registry) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := newDocument(root, reg)
	return d, d.connectTree(root)
}

// ParseString is Parse for an in-memory string.
func ParseString(s string, reg *Registry) (*Document, error) {
	return Parse(strings.NewReader(s), reg)
}

func newDocument(root *html.Node, reg *Registry) *Document {
	d := &Document{
		root:     root,
		registry: reg,
		elements: make(map[*html.Node]*Element),
	}
	if reg != nil {
		reg.attach(d)
	}
	return d
}

// Close detaches the document from its registry. Later definitions no longer
// upgrade its elements.
func (d *Document) Close() {
	if d.registry != nil {
		d.registry.detach(d)
	}
}

// Registry returns the registry the document upgrades against, or nil.
func (d *Document) Registry() *Registry {
	return d.registry
}

// DocumentElement returns the root <html> element.
func (d *Document) DocumentElement() *Element {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Head returns the <head> element.
func (d *Document) Head() *Element {
	return d.child(atom.Head)
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.child(atom.Body)
}

func (d *Document) child(a atom.Atom) *Element {
	root := d.DocumentElement()
	if root == nil {
		return nil
	}
	for c := root.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return d.wrap(c)
		}
	}
	return nil
}

// CreateElement creates a detached element. A defined custom element is
// upgraded immediately but only connected once inserted.
func (d *Document) CreateElement(tag string) (*Element, error) {
	tag = strings.ToLower(tag)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	el := d.wrap(n)
	return el, el.upgrade()
}

// QuerySelector returns the first element in the document matching sel.
func (d *Document) QuerySelector(sel string) (*Element, error) {
	return d.query(d.root, sel)
}

// QuerySelectorAll returns every element in the document matching sel.
func (d *Document) QuerySelectorAll(sel string) ([]*Element, error) {
	return d.queryAll(d.root, sel)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// wrap returns the Element for n, creating it on first use.
func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

// contains reports whether n is attached to the document tree.
func (d *Document) contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == d.root {
			return true
		}
	}
	return false
}

// elementsIn returns n and its element descendants in tree order.
func (d *Document) elementsIn(n *html.Node) []*Element {
	var out []*Element
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			out = append(out, d.wrap(c))
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return out
}

// connectTree upgrades and connects n's subtree. The element list is taken
// up front; elements moved out of the document by an earlier callback are
// skipped.
func (d *Document) connectTree(n *html.Node) error {
	var errs []error
	for _, el := range d.elementsIn(n) {
		if !d.contains(el.node) || el.connected {
			continue
		}
		if err := el.upgrade(); err != nil {
			errs = append(errs, err)
		}
		if el.connected || !d.contains(el.node) {
			continue
		}
		el.connected = true
		if cb, ok := el.instance.(Connector); ok {
			if err := cb.ConnectedCallback(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// disconnectTree marks n's subtree disconnected and runs the callbacks.
func (d *Document) disconnectTree(n *html.Node) error {
	var errs []error
	for _, el := range d.elementsIn(n) {
		if !el.connected || d.contains(el.node) {
			continue
		}
		el.connected = false
		if cb, ok := el.instance.(Disconnector); ok {
			if err := cb.DisconnectedCallback(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// upgradeAll upgrades the elements named tag after a late definition.
func (d *Document) upgradeAll(tag string) error {
	var errs []error
	for _, el := range d.elementsIn(d.root) {
		if el.node.Data != tag || el.upgraded {
			continue
		}
		if err := el.upgrade(); err != nil {
			errs = append(errs, err)
		}
		if !el.connected || !d.contains(el.node) {
			continue
		}
		if cb, ok := el.instance.(Connector); ok {
			if err := cb.ConnectedCallback(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
