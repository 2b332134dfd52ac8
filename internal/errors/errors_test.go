package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/uielement/pkg/component"
	"github.com/vango-dev/uielement/pkg/dom"
	"github.com/vango-dev/uielement/pkg/reactive"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "graph error",
			code:    "UIE101",
			wantMsg: "Circular dependency detected",
			wantCat: CategoryGraph,
		},
		{
			name:    "definition error",
			code:    "UIE201",
			wantMsg: "Invalid component name",
			wantCat: CategoryDefinition,
		},
		{
			name:    "config error",
			code:    "UIE420",
			wantMsg: "Invalid configuration file",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "UIE999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "page.html")
	if err.Message != `file "page.html" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != `file "page.html" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUIError_Error(t *testing.T) {
	err := New("UIE440")
	if got, want := err.Error(), "UIE440: Page not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.Wrap(fmt.Errorf("open index.html: no such file"))
	if got := err.Error(); !strings.HasSuffix(got, ": open index.html: no such file") {
		t.Errorf("Error() = %q, want the cause appended", got)
	}
}

func TestUIError_Builders(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("UIE442").
		WithSubject("index.html").
		WithDetail("custom detail").
		WithSuggestion("try again").
		WithExample("uielement render index.html").
		Wrap(cause)

	if err.Subject != "index.html" || err.Detail != "custom detail" || err.Suggestion != "try again" {
		t.Errorf("builders not applied: %+v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestClassify(t *testing.T) {
	reg := dom.NewRegistry(nil)
	_, nameErr := component.Define(reg, "Counter", nil, func(*component.Host) []component.Effect { return nil })

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"component error", nameErr, component.CodeInvalidComponentName},
		{"wrapped component error", fmt.Errorf("define: %w", nameErr), component.CodeInvalidComponentName},
		{"joined errors", stderrors.Join(stderrors.New("other"), &component.MissingElementError{Selector: "p"}), component.CodeMissingElement},
		{"graph error", &reactive.CircularMutationError{Node: 1}, reactive.CodeCircularMutation},
		{"flush budget", &reactive.CircularMutationError{Node: 1, Runs: 10}, reactive.CodeFlushBudget},
		{"producer error", &reactive.ProducerError{Node: 1, Err: stderrors.New("x")}, reactive.CodeProducer},
		{"sentinel", fmt.Errorf("set attribute href: %w", component.ErrUnsafeAttribute), component.CodeUnsafeAttribute},
		{"dom sentinel", fmt.Errorf("append: %w", dom.ErrHierarchy), "UIE305"},
		{"coded UIError", fmt.Errorf("load: %w", New("UIE421")), "UIE421"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.err)
			if !ok || got != tt.want {
				t.Errorf("Classify() = %q, %v; want %q", got, ok, tt.want)
			}
		})
	}

	if _, ok := Classify(stderrors.New("plain")); ok {
		t.Error("plain errors should not classify")
	}
	if _, ok := Classify(nil); ok {
		t.Error("nil should not classify")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "UIE442") != nil {
		t.Error("FromError(nil) should return nil")
	}

	ue := New("UIE440")
	if FromError(ue, "UIE442") != ue {
		t.Error("FromError should return an existing UIError unchanged")
	}

	plain := stderrors.New("plain")
	got := FromError(plain, "UIE442")
	if got.Code != "UIE442" || got.Wrapped != plain {
		t.Errorf("expected fallback code with cause, got %+v", got)
	}

	coded := fmt.Errorf("connect: %w", &component.InvalidSetupFunctionError{Tag: "x-a", Reason: "nil"})
	if got := FromError(coded, "UIE442"); got.Code != component.CodeInvalidSetupFunction {
		t.Errorf("expected code from the error, got %s", got.Code)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("UIE201").WithSubject("Counter").Wrap(stderrors.New("first\nsecond"))
	out := err.Format()

	for _, want := range []string{
		"ERROR UIE201: Invalid component name",
		"  Counter",
		"│ first",
		"│ second",
		"Hint: Use a name like",
		"Learn more: " + docBase + "UIE201",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("expected no ANSI codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("UIE440").WithSubject("index.html")
	if got, want := err.FormatCompact(), "index.html: UIE440: Page not found"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("UIE304").Wrap(stderrors.New(`href "javascript:"`))

	var decoded map[string]string
	if e := json.Unmarshal([]byte(err.FormatJSON()), &decoded); e != nil {
		t.Fatalf("FormatJSON() is not valid JSON: %v", e)
	}
	if decoded["code"] != "UIE304" || decoded["category"] != string(CategoryRuntime) {
		t.Errorf("unexpected JSON %v", decoded)
	}
	if decoded["cause"] != `href "javascript:"` {
		t.Errorf("cause = %q", decoded["cause"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	Fprint(&b, fmt.Errorf("x: %w", component.ErrUnknownProperty))
	if !strings.Contains(b.String(), "UIE306") {
		t.Errorf("expected coded output, got %q", b.String())
	}

	b.Reset()
	Fprint(&b, stderrors.New("plain failure"))
	if !strings.Contains(b.String(), "ERROR: plain failure") {
		t.Errorf("expected plain output, got %q", b.String())
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) < 20 {
		t.Errorf("expected at least 20 codes, got %d", len(codes))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Errorf("codes not sorted: %s >= %s", codes[i-1], codes[i])
		}
	}
	for _, code := range codes {
		tmpl, _ := GetTemplate(code)
		if tmpl.DocURL != docBase+code {
			t.Errorf("%s: DocURL = %q", code, tmpl.DocURL)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("UIE998", ErrorTemplate{Category: CategoryCLI, Message: "Test error"})
	defer delete(registry, "UIE998")

	tmpl, ok := GetTemplate("UIE998")
	if !ok || tmpl.Message != "Test error" {
		t.Errorf("GetTemplate(UIE998) = %+v, %v", tmpl, ok)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  int
	}{
		{"", 10, 0},
		{"short", 10, 1},
		{"one two three four five", 10, 3},
	}
	for _, tt := range tests {
		if got := wrapText(tt.text, tt.width); len(got) != tt.want {
			t.Errorf("wrapText(%q, %d) = %v, want %d lines", tt.text, tt.width, got, tt.want)
		}
	}
}
