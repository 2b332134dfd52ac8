package dom

import (
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var selectors sync.Map // string -> cascadia.Selector

func compile(sel string) (cascadia.Selector, error) {
	if s, ok := selectors.Load(sel); ok {
		return s.(cascadia.Selector), nil
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, err
	}
	selectors.Store(sel, s)
	return s, nil
}

// QuerySelector returns the first descendant of e matching sel, or nil.
func (e *Element) QuerySelector(sel string) (*Element, error) {
	return e.doc.query(e.node, sel)
}

// QuerySelectorAll returns the descendants of e matching sel in tree order.
func (e *Element) QuerySelectorAll(sel string) ([]*Element, error) {
	return e.doc.queryAll(e.node, sel)
}

// Matches reports whether e matches sel.
func (e *Element) Matches(sel string) (bool, error) {
	s, err := compile(sel)
	if err != nil {
		return false, err
	}
	return s.Match(e.node), nil
}

// Closest returns the nearest inclusive ancestor of e matching sel, or nil.
func (e *Element) Closest(sel string) (*Element, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, err
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && s.Match(n) {
			return e.doc.wrap(n), nil
		}
	}
	return nil, nil
}

func (d *Document) query(n *html.Node, sel string) (*Element, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, err
	}
	return d.wrap(cascadia.Query(n, s)), nil
}

func (d *Document) queryAll(n *html.Node, sel string) ([]*Element, error) {
	s, err := compile(sel)
	if err != nil {
		return nil, err
	}
	nodes := cascadia.QueryAll(n, s)
	out := make([]*Element, 0, len(nodes))
	for _, c := range nodes {
		out = append(out, d.wrap(c))
	}
	return out, nil
}
