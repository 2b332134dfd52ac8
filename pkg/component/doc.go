// Package component binds custom elements to reactive property bags.
//
// A component is a tag name, a set of named property Initializers and a
// setup function:
//
//	component.MustDefine(reg, "my-counter", component.Props{
//	    "count": component.Attribute(component.AsInteger(0)),
//	}, func(host *component.Host) []component.Effect {
//	    return []component.Effect{
//	        component.First("button", component.On("click", func(*dom.Event) {
//	            n, _ := component.Read[int](host, "count")
//	            host.Set("count", n+1)
//	        })),
//	        component.First(".count", component.SetText(component.Func(func(*dom.Element) string {
//	            n, _ := component.Read[int](host, "count")
//	            return strconv.Itoa(n)
//	        }))),
//	    }
//	})
//
// # Lifecycle
//
// On first connection every property is realized into a signal: Value and
// Attribute properties become States, Producers supply their own signal and
// Setup initializers run once. Then the setup function runs and each returned
// Effect is applied to the host. On disconnection the effects are cleaned up
// in reverse order. Reconnecting runs the setup function again but keeps the
// property signals and their values.
//
// # Effects
//
// SetText, SetProperty, SetAttribute, ToggleAttribute, ToggleClass,
// SetStyle, Show, DangerouslySetInnerHTML and InsertOrRemoveElement keep
// one aspect of an element in sync with a Reactive value: a host property
// (Prop), a signal (From) or a function (Func). On attaches an event
// listener and Pass hands signals to a child component. First, FirstRequired
// and All apply effects to descendants.
//
// # Contexts
//
// ProvideContexts and FromContext share signals down the tree through a
// bubbling "context-request" event.
package component
