// Package dom provides a live, in-process HTML document model with custom
// element support.
//
// Documents are backed by golang.org/x/net/html nodes. Element wraps a node
// and adds what the parser tree lacks: properties, event listeners, the
// connected state and the custom element instance an element was upgraded to.
//
// # Custom Elements
//
// A Registry maps valid custom element names to a Definition. Elements whose
// tag is defined are upgraded when they are created, inserted or parsed, or
// when the definition is registered after the fact. Upgraded instances
// receive lifecycle callbacks by implementing Connector, Disconnector and
// AttributeChanger:
//
//	reg := dom.NewRegistry(nil)
//	reg.Define("my-greeting", dom.Definition{
//	    ObservedAttributes: []string{"name"},
//	    New: func(el *dom.Element) any { return &greeting{el: el} },
//	})
//
// Tree mutations run callbacks synchronously and return their errors joined.
//
// # Selectors and Events
//
// QuerySelector, QuerySelectorAll, Matches and Closest accept CSS selector
// groups compiled by github.com/andybalholm/cascadia. Events are dispatched
// synchronously from the target towards the root when they bubble.
//
// # Mutation Observation
//
// Observe reports child list and attribute changes within a subtree as soon
// as the mutation and its callbacks have completed.
//
// # Concurrency
//
// A Document is not safe for concurrent mutation. Like the reactive graph it
// is bound to, it is owned by one goroutine at a time.
package dom
