// Package demo defines the sample components used by the uielement command
// and its live sessions.
package demo

import (
	_ "embed"
	"errors"
	"strconv"

	"github.com/vango-dev/uielement/pkg/component"
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
	"github.com/vango-dev/uielement/pkg/resource"
)

// Page is a document using every demo component.
//
//go:embed page.html
var Page string

// Register defines the demo components in reg. cache backs <remote-text>;
// when nil that component is skipped.
func Register(reg *dom.Registry, cache *resource.Cache) error {
	defs := []func(*dom.Registry) error{
		defineHelloWorld,
		defineCounter,
		defineToggle,
		defineThemeProvider,
		defineThemeLabel,
		defineTabList,
	}
	if cache != nil {
		defs = append(defs, func(reg *dom.Registry) error { return defineRemoteText(reg, cache) })
	}

	var errs []error
	for _, define := range defs {
		errs = append(errs, define(reg))
	}
	return errors.Join(errs...)
}

func str(h *component.Host, name string) string {
	v, _ := component.Read[string](h, name)
	return v
}

func num(h *component.Host, name string) int {
	v, _ := component.Read[int](h, name)
	return v
}

func flag(h *component.Host, name string) bool {
	v, _ := component.Read[bool](h, name)
	return v
}

// <hello-world name="..."> greets whoever is typed into its input.
func defineHelloWorld(reg *dom.Registry) error {
	_, err := component.Define(reg, "hello-world", component.Props{
		"name": component.Attribute(component.AsString("World")),
	}, func(h *component.Host) []component.Effect {
		return []component.Effect{
			component.First("input",
				component.On("input", func(ev *dom.Event) {
					v, _ := ev.Target().Property("value")
					_ = h.Set("name", v)
				}),
			),
			component.FirstRequired("p", "hello-world needs a <p> for the greeting",
				component.SetText(component.Func(func(*dom.Element) string {
					return "Hello, " + str(h, "name") + "!"
				})),
			),
		}
	})
	return err
}

// <my-counter count="0" step="1"> with .decrement, .value and .increment
// children. The decrement button is disabled at zero.
func defineCounter(reg *dom.Registry) error {
	_, err := component.Define(reg, "my-counter", component.Props{
		"count": component.Attribute(component.AsInteger(0)),
		"step":  component.Attribute(component.AsInteger(1)),
	}, func(h *component.Host) []component.Effect {
		add := func(sign int) func(*dom.Event) {
			return func(*dom.Event) {
				next := num(h, "count") + sign*num(h, "step")
				if next < 0 {
					next = 0
				}
				_ = h.Set("count", next)
			}
		}
		return []component.Effect{
			component.First(".value", component.SetText(component.Func(func(*dom.Element) string {
				return strconv.Itoa(num(h, "count"))
			}))),
			component.First(".increment", component.On("click", add(1))),
			component.First(".decrement",
				component.On("click", add(-1)),
				component.ToggleAttribute("disabled", component.Func(func(*dom.Element) bool {
					return num(h, "count") <= 0
				})),
			),
		}
	})
	return err
}

// <my-toggle open> shows its .content while open.
func defineToggle(reg *dom.Registry) error {
	_, err := component.Define(reg, "my-toggle", component.Props{
		"open": component.Attribute(component.AsBoolean()),
	}, func(h *component.Host) []component.Effect {
		return []component.Effect{
			component.ToggleClass("open", component.Prop[bool]("open")),
			component.First("button",
				component.On("click", func(*dom.Event) { _ = h.Set("open", !flag(h, "open")) }),
				component.SetAttribute("aria-expanded", component.Func(func(*dom.Element) string {
					return strconv.FormatBool(flag(h, "open"))
				})),
			),
			component.First(".content", component.Show(component.Prop[bool]("open"))),
		}
	})
	return err
}

// <theme-provider theme="light|dark"> provides its theme to descendants.
func defineThemeProvider(reg *dom.Registry) error {
	_, err := component.Define(reg, "theme-provider", component.Props{
		"theme": component.Attribute(component.AsEnum("light", "dark")),
	}, func(h *component.Host) []component.Effect {
		return []component.Effect{
			component.ProvideContexts("theme"),
			component.SetAttribute("data-theme", component.Prop[string]("theme")),
			component.First("button.switch", component.On("click", func(*dom.Event) {
				next := "dark"
				if str(h, "theme") == "dark" {
					next = "light"
				}
				_ = h.Set("theme", next)
			})),
		}
	})
	return err
}

// <theme-label> shows the theme of the nearest provider.
func defineThemeLabel(reg *dom.Registry) error {
	_, err := component.Define(reg, "theme-label", component.Props{
		"theme": component.FromContext("theme", "light"),
	}, func(h *component.Host) []component.Effect {
		return []component.Effect{
			component.SetText(component.Prop[string]("theme")),
			component.ToggleClass("dark", component.Func(func(*dom.Element) bool {
				return str(h, "theme") == "dark"
			})),
		}
	})
	return err
}

// <tab-list selected="id"> switches between [role=tabpanel] children. Each
// [role=tab] names its panel in aria-controls. Without a selection the first
// tab is selected.
func defineTabList(reg *dom.Registry) error {
	_, err := component.Define(reg, "tab-list", component.Props{
		"selected": component.Attribute(component.AsString("")),
		"tabs":     component.FromSelector("[role=tab]"),
	}, func(h *component.Host) []component.Effect {
		current := func() string {
			if s := str(h, "selected"); s != "" {
				return s
			}
			tabs, _ := component.Read[[]*dom.Element](h, "tabs")
			if len(tabs) == 0 {
				return ""
			}
			id, _ := tabs[0].GetAttribute("aria-controls")
			return id
		}
		return []component.Effect{
			component.On("click", func(ev *dom.Event) {
				tab, err := ev.Target().Closest("[role=tab]")
				if err != nil || tab == nil {
					return
				}
				if id, ok := tab.GetAttribute("aria-controls"); ok {
					_ = h.Set("selected", id)
				}
			}),
			component.All("[role=tab]",
				component.SetAttribute("aria-selected", component.Func(func(target *dom.Element) string {
					id, _ := target.GetAttribute("aria-controls")
					return strconv.FormatBool(id == current())
				})),
			),
			component.All("[role=tabpanel]",
				component.Show(component.Func(func(target *dom.Element) bool {
					id, _ := target.GetAttribute("id")
					return id == current()
				})),
			),
		}
	})
	return err
}

// <remote-text src="url"> shows the body fetched from src. The server
// rendered content stays until the first response arrives.
func defineRemoteText(reg *dom.Registry, cache *resource.Cache) error {
	_, err := component.Define(reg, "remote-text", component.Props{
		"src": component.Attribute(component.AsString("")),
	}, func(*component.Host) []component.Effect {
		return []component.Effect{
			func(host *component.Host, target *dom.Element) (reactive.Cleanup, error) {
				body := cache.Fetch(func() string { return str(host, "src") })
				cleanup, err := component.SetText(component.From[string](body))(host, target)
				return func() {
					if cleanup != nil {
						cleanup()
					}
					body.Dispose()
				}, err
			},
		}
	})
	return err
}
