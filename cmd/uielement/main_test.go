package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitThenRender(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "init", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "uielement.json") || !strings.Contains(out, "index.html") {
		t.Errorf("unexpected init output:\n%s", out)
	}

	out, err = run(t, "init", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "already exists") != 2 {
		t.Errorf("second init should skip both files:\n%s", out)
	}

	out, err = run(t, "render", "--config", dir,
		"--input", "hello-world input=Ada",
		"--event", "my-counter .increment=click",
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Hello, Ada!") || !strings.Contains(out, `<span class="value">4</span>`) {
		t.Errorf("unexpected render output:\n%s", out)
	}
}

func TestRenderToFile(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, []byte(`<my-toggle open><button></button><div class="content"></div></my-toggle>`), 0644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "out.html")

	if _, err := run(t, "render", page, "--full", "--out", target); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if !strings.Contains(html, "<html>") || !strings.Contains(html, `aria-expanded="true"`) {
		t.Errorf("unexpected output:\n%s", html)
	}
}

func TestRenderErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := run(t, "render", filepath.Join(dir, "missing.html")); err == nil || !strings.Contains(err.Error(), "UIE440") {
		t.Errorf("expected UIE440, got %v", err)
	}
	if _, err := run(t, "render", "--event", "nonsense"); err == nil || !strings.Contains(err.Error(), "UIE441") {
		t.Errorf("expected UIE441, got %v", err)
	}
	if _, err := run(t, "render", "--config", filepath.Join(dir, "nope.json")); err == nil || !strings.Contains(err.Error(), "UIE420") {
		t.Errorf("expected UIE420, got %v", err)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.html")
	bad := filepath.Join(dir, "bad.html")
	os.WriteFile(good, []byte(`<hello-world><p></p></hello-world>`), 0644)
	os.WriteFile(bad, []byte(`<hello-wrold></hello-wrold>`), 0644)

	out, err := run(t, "check", good)
	if err != nil {
		t.Fatalf("check good page: %v\n%s", err, out)
	}
	if !strings.Contains(out, "no problems") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, "check", bad)
	if err == nil {
		t.Fatal("expected check to fail")
	}
	if !strings.Contains(out, "UIE443 hello-wrold") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCheckNames(t *testing.T) {
	out, err := run(t, "check", "--tag", "my-counter", "--prop", "count")
	if err != nil {
		t.Fatalf("valid names: %v\n%s", err, out)
	}

	out, err = run(t, "check", "--tag", "counter", "--prop", "title", "--prop", "1st")
	if err == nil {
		t.Fatal("expected invalid names to fail")
	}
	for _, want := range []string{"counter", "title", "1st"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if findings := checkNames([]string{"counter"}, []string{"title", "1st"}); len(findings) != 3 {
		t.Errorf("expected 3 findings, got %d", len(findings))
	}
}

func TestLoadConfigLogLevelOverride(t *testing.T) {
	cfg, err := loadConfig(&globalFlags{logLevel: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Log.Level)
	}

	if _, err := loadConfig(&globalFlags{logLevel: "loud"}); err == nil {
		t.Error("expected an invalid log level to fail validation")
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("unexpected version output %q", out)
	}
}
