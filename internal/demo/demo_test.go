package demo

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vango-dev/uielement/pkg/component"
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
	"github.com/vango-dev/uielement/pkg/resource"
)

func load(t *testing.T) *dom.Document {
	t.Helper()
	reg := dom.NewRegistry(nil)
	if err := Register(reg, nil); err != nil {
		t.Fatalf("Register: %v", err)
	}
	doc, err := dom.ParseString(Page, reg)
	if err != nil {
		t.Fatalf("parse demo page: %v", err)
	}
	t.Cleanup(doc.Close)
	return doc
}

func find(t *testing.T, doc *dom.Document, sel string) *dom.Element {
	t.Helper()
	el, err := doc.QuerySelector(sel)
	if err != nil || el == nil {
		t.Fatalf("query %q: %v", sel, err)
	}
	return el
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := dom.NewRegistry(nil)
	if err := Register(reg, nil); err != nil {
		t.Fatal(err)
	}
	if err := Register(reg, nil); err == nil {
		t.Error("expected redefinition to fail")
	}
}

func TestHelloWorld(t *testing.T) {
	doc := load(t)
	p := find(t, doc, "hello-world p")
	if p.TextContent() != "Hello, Gopher!" {
		t.Fatalf("unexpected greeting %q", p.TextContent())
	}

	input := find(t, doc, "hello-world input")
	_ = input.SetProperty("value", "Ada")
	input.DispatchEvent(dom.NewEvent("input", nil))
	if p.TextContent() != "Hello, Ada!" {
		t.Errorf("unexpected greeting %q", p.TextContent())
	}
}

func TestCounter(t *testing.T) {
	doc := load(t)
	value := find(t, doc, "my-counter .value")
	dec := find(t, doc, "my-counter .decrement")
	inc := find(t, doc, "my-counter .increment")

	inc.Click()
	if value.TextContent() != "4" {
		t.Fatalf("expected 4, got %q", value.TextContent())
	}
	for i := 0; i < 5; i++ {
		dec.Click()
	}
	if value.TextContent() != "0" {
		t.Errorf("expected the count to stop at 0, got %q", value.TextContent())
	}
	if !dec.HasAttribute("disabled") {
		t.Error("expected decrement to be disabled at 0")
	}

	_ = find(t, doc, "my-counter").SetAttribute("step", "5")
	inc.Click()
	if value.TextContent() != "5" || dec.HasAttribute("disabled") {
		t.Errorf("expected 5 and enabled decrement, got %q", value.TextContent())
	}
}

func TestToggle(t *testing.T) {
	doc := load(t)
	toggle := find(t, doc, "my-toggle")
	btn := find(t, doc, "my-toggle button")
	content := find(t, doc, "my-toggle .content")

	btn.Click()
	if !toggle.HasClass("open") || content.HasAttribute("hidden") {
		t.Error("expected the toggle to open")
	}
	if v, _ := btn.GetAttribute("aria-expanded"); v != "true" {
		t.Errorf("aria-expanded = %q", v)
	}

	_ = toggle.SetAttribute("open", "false")
	if toggle.HasClass("open") || !content.HasAttribute("hidden") {
		t.Error(`expected open="false" to close the toggle`)
	}
}

func TestTheme(t *testing.T) {
	doc := load(t)
	provider := find(t, doc, "theme-provider")
	label := find(t, doc, "theme-label")

	find(t, doc, "theme-provider button.switch").Click()
	if label.TextContent() != "dark" || !label.HasClass("dark") {
		t.Errorf("expected dark label, got %q", label.TextContent())
	}
	if v, _ := provider.GetAttribute("data-theme"); v != "dark" {
		t.Errorf("data-theme = %q", v)
	}

	_ = provider.SetAttribute("theme", "LIGHT")
	if label.TextContent() != "light" {
		t.Errorf("expected light label, got %q", label.TextContent())
	}
}

func TestTabList(t *testing.T) {
	doc := load(t)
	signals := find(t, doc, "#tab-signals")
	effects := find(t, doc, "#tab-effects")
	tabs, _ := doc.QuerySelectorAll("[role=tab]")

	if signals.HasAttribute("hidden") || !effects.HasAttribute("hidden") {
		t.Fatal("expected the first panel to be selected by default")
	}

	tabs[1].Click()
	if !signals.HasAttribute("hidden") || effects.HasAttribute("hidden") {
		t.Error("expected the second panel after clicking its tab")
	}
	if v, _ := tabs[1].GetAttribute("aria-selected"); v != "true" {
		t.Errorf("aria-selected = %q", v)
	}

	list := find(t, doc, "tab-list")
	extra, _ := doc.CreateElement("button")
	_ = extra.SetAttribute("role", "tab")
	_ = extra.SetAttribute("aria-controls", "tab-extra")
	panel, _ := doc.CreateElement("section")
	_ = panel.SetAttribute("role", "tabpanel")
	_ = panel.SetAttribute("id", "tab-extra")
	_ = list.AppendChild(extra)
	_ = list.AppendChild(panel)

	extra.Click()
	if panel.HasAttribute("hidden") || !effects.HasAttribute("hidden") {
		t.Error("expected tabs added later to work")
	}

	h, _ := component.HostOf(list)
	if tabs, _ := component.Read[[]*dom.Element](h, "tabs"); len(tabs) != 3 {
		t.Errorf("expected 3 tabs, got %d", len(tabs))
	}
}

func TestRemoteText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "remote "+r.URL.Path)
	}))
	defer srv.Close()

	old := reactive.SetScheduler(nil)
	defer reactive.SetScheduler(old)

	reg := dom.NewRegistry(nil)
	if err := Register(reg, resource.NewCache(resource.WithClient(srv.Client()))); err != nil {
		t.Fatal(err)
	}
	doc, err := dom.ParseString(`<remote-text src="`+srv.URL+`/a">loading</remote-text>`, reg)
	if err != nil {
		t.Fatal(err)
	}
	el := find(t, doc, "remote-text")
	if el.TextContent() != "loading" {
		t.Fatalf("expected fallback, got %q", el.TextContent())
	}

	waitDelivered(t)
	if el.TextContent() != "remote /a" {
		t.Errorf("unexpected text %q", el.TextContent())
	}
}

// waitDelivered drains queued async results on the test goroutine until one
// has been delivered.
func waitDelivered(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for reactive.Drain() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for async delivery")
		}
		time.Sleep(time.Millisecond)
	}
}
