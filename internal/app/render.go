package app

import (
	"strings"
	"time"

	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/internal/live"
	"github.com/vango-dev/uielement/pkg/dom"
)

// RenderOptions controls a one-shot render.
type RenderOptions struct {
	// Events are dispatched in order after the page connects.
	Events []live.Message

	// Wait leaves time for async computeds to resolve before the
	// document is serialized.
	Wait time.Duration

	// Full renders the whole document instead of the body contents.
	Full bool
}

// ParseEvent parses an event script of the form "selector=type". The last
// '=' separates the two, so attribute selectors may contain '='.
func ParseEvent(s string) (live.Message, error) {
	i := strings.LastIndexByte(s, '=')
	if i <= 0 || i == len(s)-1 {
		return live.Message{}, errors.New("UIE441").WithSubject(s).
			WithExample(`--event "my-counter .increment=click"`)
	}
	return live.Message{
		Type:     live.TypeEvent,
		Selector: strings.TrimSpace(s[:i]),
		Event:    strings.TrimSpace(s[i+1:]),
	}, nil
}

// ParseInput parses an input script of the form "selector=value". The
// first '=' separates the two.
func ParseInput(s string) (live.Message, error) {
	selector, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(selector) == "" {
		return live.Message{}, errors.New("UIE441").WithSubject(s).
			WithExample(`--input "hello-world input=Ada"`)
	}
	return live.Message{
		Type:     live.TypeEvent,
		Selector: strings.TrimSpace(selector),
		Event:    "input",
		Value:    &value,
	}, nil
}

// Render parses the page, connects its components, replays the events and
// returns the resulting markup. Connect errors do not stop the render; they
// are returned together with the markup.
func (a *App) Render(opts RenderOptions) (string, error) {
	var (
		doc         *dom.Document
		connectErrs error
	)
	err := a.do(func() error {
		var err error
		doc, err = dom.ParseString(a.page, a.registry)
		if doc == nil {
			return errors.New("UIE442").Wrap(err)
		}
		connectErrs = err
		return nil
	})
	if err != nil {
		return "", err
	}
	defer a.do(func() error {
		doc.Close()
		return nil
	})

	for _, ev := range opts.Events {
		if err := a.do(func() error { return live.Apply(doc, ev) }); err != nil {
			return "", err
		}
	}

	if opts.Wait > 0 {
		time.Sleep(opts.Wait)
	}

	var html string
	if err := a.do(func() error {
		html = serialize(doc, opts.Full)
		return nil
	}); err != nil {
		return "", err
	}

	if connectErrs != nil {
		return html, errors.New("UIE442").Wrap(connectErrs)
	}
	return html, nil
}

func serialize(doc *dom.Document, full bool) string {
	if !full {
		if body := doc.Body(); body != nil {
			return body.InnerHTML()
		}
	}
	return doc.String()
}

// Finding is one problem reported by Check.
type Finding struct {
	Code    string
	Subject string
	Message string
}

// Check connects the page and reports undefined custom elements and
// components that failed to connect.
func (a *App) Check() ([]Finding, error) {
	var findings []Finding
	err := a.do(func() error {
		doc, err := dom.ParseString(a.page, a.registry)
		if doc == nil {
			return errors.New("UIE442").Wrap(err)
		}
		defer doc.Close()

		for _, e := range joined(err) {
			ue := errors.FromError(e, "UIE442")
			findings = append(findings, Finding{Code: ue.Code, Subject: ue.Subject, Message: e.Error()})
		}

		all, err := doc.QuerySelectorAll("*")
		if err != nil {
			return err
		}
		seen := make(map[string]bool)
		for _, el := range all {
			tag := el.TagName()
			if seen[tag] || !dom.ValidName(tag) || a.registry.Defined(tag) {
				continue
			}
			seen[tag] = true
			findings = append(findings, Finding{
				Code:    "UIE443",
				Subject: tag,
				Message: errors.New("UIE443").Message,
			})
		}
		return nil
	})
	return findings, err
}

// joined flattens an errors.Join result.
func joined(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, joined(e)...)
		}
		return out
	}
	return []error{err}
}
