package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/uielement/internal/config"
	"github.com/vango-dev/uielement/internal/demo"
	"github.com/vango-dev/uielement/internal/errors"
	"github.com/vango-dev/uielement/internal/live"
)

func newTestApp(t *testing.T, cfg *config.Config, page string) *App {
	t.Helper()
	a, err := New(Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Page:   page,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func code(err error) string {
	c, _ := errors.Classify(err)
	return c
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in       string
		selector string
		event    string
		wantErr  bool
	}{
		{"button=click", "button", "click", false},
		{"my-counter .increment = click", "my-counter .increment", "click", false},
		{`[data-x="1"]=input`, `[data-x="1"]`, "input", false},
		{"click", "", "", true},
		{"=click", "", "", true},
		{"button=", "", "", true},
	}

	for _, tt := range tests {
		msg, err := ParseEvent(tt.in)
		if tt.wantErr {
			if code(err) != "UIE441" {
				t.Errorf("ParseEvent(%q) error = %v, want UIE441", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseEvent(%q): %v", tt.in, err)
			continue
		}
		if msg.Type != live.TypeEvent || msg.Selector != tt.selector || msg.Event != tt.event {
			t.Errorf("ParseEvent(%q) = %+v", tt.in, msg)
		}
	}
}

func TestParseInput(t *testing.T) {
	msg, err := ParseInput("hello-world input=a=b")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Selector != "hello-world input" || msg.Event != "input" || msg.Value == nil || *msg.Value != "a=b" {
		t.Errorf("unexpected message %+v", msg)
	}

	if _, err := ParseInput("no value"); code(err) != "UIE441" {
		t.Errorf("expected UIE441, got %v", err)
	}
}

func TestRenderReplaysEvents(t *testing.T) {
	a := newTestApp(t, nil, demo.Page)

	input, _ := ParseInput("hello-world input=Ada")
	click, _ := ParseEvent("my-counter .increment=click")
	html, err := a.Render(RenderOptions{Events: []live.Message{input, click, click}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "Hello, Ada!") {
		t.Errorf("greeting not updated:\n%s", html)
	}
	if !strings.Contains(html, `<span class="value">5</span>`) {
		t.Errorf("counter not updated:\n%s", html)
	}
	if strings.Contains(html, "<head>") {
		t.Error("body render should not include the head")
	}

	// Every render starts from the page.
	html, err = a.Render(RenderOptions{Full: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `<span class="value">3</span>`) || !strings.Contains(html, "<head>") {
		t.Errorf("unexpected full render:\n%s", html)
	}
}

func TestRenderErrors(t *testing.T) {
	a := newTestApp(t, nil, demo.Page)

	missing, _ := ParseEvent("x-missing=click")
	if _, err := a.Render(RenderOptions{Events: []live.Message{missing}}); code(err) != "UIE402" {
		t.Errorf("expected UIE402, got %v", err)
	}

	broken := newTestApp(t, nil, `<hello-world name="x"></hello-world>`)
	html, err := broken.Render(RenderOptions{})
	if code(err) != "UIE442" {
		t.Errorf("expected UIE442, got %v", err)
	}
	if !strings.Contains(html, "<hello-world") {
		t.Errorf("markup should still be returned, got %q", html)
	}
}

func TestCheck(t *testing.T) {
	page := `<hello-world><p></p></hello-world>
<x-unknown></x-unknown><x-unknown></x-unknown>
<hello-world></hello-world>`
	a := newTestApp(t, nil, page)

	findings, err := a.Check()
	if err != nil {
		t.Fatal(err)
	}

	var undefined, failed int
	for _, f := range findings {
		switch {
		case f.Code == "UIE443" && f.Subject == "x-unknown":
			undefined++
		case f.Code != "UIE443":
			failed++
		default:
			t.Errorf("unexpected finding %+v", f)
		}
	}
	if undefined != 1 {
		t.Errorf("expected one undefined element finding, got %d", undefined)
	}
	if failed != 1 {
		t.Errorf("expected one connect failure, got %d", failed)
	}
}

func TestNewMissingPage(t *testing.T) {
	cfg := config.New()
	cfg.Page = filepath.Join(t.TempDir(), "missing.html")

	_, err := New(Options{Config: cfg})
	if code(err) != "UIE440" {
		t.Fatalf("expected UIE440, got %v", err)
	}
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHandler(t *testing.T) {
	cfg := config.New()
	cfg.Metrics.Enabled = true
	a := newTestApp(t, cfg, demo.Page)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	if status, body := get(t, srv, "/healthz"); status != http.StatusOK || body != "ok" {
		t.Errorf("healthz: %d %q", status, body)
	}

	status, body := get(t, srv, "/")
	if status != http.StatusOK || !strings.Contains(body, `<script src="/client.js" defer></script></body>`) {
		t.Errorf("page: %d\n%s", status, body)
	}

	if status, body := get(t, srv, "/client.js"); status != http.StatusOK || !strings.Contains(body, "/live") {
		t.Errorf("client: %d", status)
	}

	status, body = get(t, srv, "/render?event="+url.QueryEscape("my-counter .increment=click"))
	if status != http.StatusOK || !strings.Contains(body, `<span class="value">4</span>`) {
		t.Errorf("render: %d\n%s", status, body)
	}

	status, body = get(t, srv, "/render?event=nonsense")
	if status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", status)
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload.Code != "UIE441" {
		t.Errorf("unexpected error body %q (%v)", body, err)
	}

	if status, _ := get(t, srv, "/render?event="+url.QueryEscape("x-missing=click")); status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", status)
	}

	status, body = get(t, srv, "/metrics")
	if status != http.StatusOK {
		t.Fatalf("metrics: %d", status)
	}
	for _, name := range []string{"uielement_effect_runs_total", "uielement_active_sessions", "go_goroutines"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestHandlerWithoutMetrics(t *testing.T) {
	a := newTestApp(t, nil, demo.Page)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	if status, _ := get(t, srv, "/metrics"); status != http.StatusNotFound {
		t.Errorf("expected 404 without metrics, got %d", status)
	}
}

func TestLiveEndpoint(t *testing.T) {
	a := newTestApp(t, nil, demo.Page)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() live.Reply {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var r live.Reply
		if err := conn.ReadJSON(&r); err != nil {
			t.Fatalf("read: %v", err)
		}
		return r
	}

	first := read()
	if first.Type != live.TypeRender || first.Session == "" {
		t.Fatalf("unexpected first reply %+v", first)
	}
	if a.Live().Count() != 1 {
		t.Errorf("expected one session, got %d", a.Live().Count())
	}

	if err := conn.WriteJSON(live.Message{Type: live.TypeEvent, Selector: "my-toggle button", Event: "click"}); err != nil {
		t.Fatal(err)
	}
	reply := read()
	if reply.Type != live.TypeRender || !strings.Contains(reply.HTML, `aria-expanded="true"`) {
		t.Errorf("unexpected reply %+v", reply)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if envCredentials() != nil {
		t.Error("expected no provider without credentials")
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	creds, err := envCredentials().Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKID" || creds.SecretAccessKey != "secret" {
		t.Errorf("unexpected credentials %+v", creds)
	}

	cfg := config.New()
	cfg.Fetch.S3.Region = "eu-west-1"
	newTestApp(t, cfg, demo.Page)
}
