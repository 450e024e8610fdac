package errors

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "guard error",
			code:    "E103",
			wantMsg: "Impulse written inside a Watch computation",
			wantCat: CategoryGuard,
		},
		{
			name:    "config error",
			code:    "E204",
			wantMsg: "Invalid log level",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
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

func TestImpulseError_Error(t *testing.T) {
	err := New("E206")
	if got, want := err.Error(), "E206: Invalid guard mode"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := Newf(CategoryCLI, "bad flag %q", "x")
	if got, want := plain.Error(), `bad flag "x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestImpulseError_Wrap(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := New("E201").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Error() = %q, want it to mention the cause", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E201") != nil {
		t.Error("FromError(nil) should return nil")
	}

	original := New("E202")
	if FromError(original, "E201") != original {
		t.Error("FromError should return an *ImpulseError unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E201")
	if wrapped.Code != "E201" {
		t.Errorf("Code = %q, want E201", wrapped.Code)
	}
}

func TestWithCaller(t *testing.T) {
	err := New("E101").WithCaller(0)
	if err.Location == nil {
		t.Fatal("WithCaller should set a location")
	}
	if !strings.HasSuffix(err.Location.File, "errors_test.go") {
		t.Errorf("Location.File = %q, want errors_test.go", err.Location.File)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E103").
		WithLocation("app/counter.go", 42).
		WithSuggestion("Move the write into onChange")

	out := err.Format()
	for _, want := range []string{
		"ERROR E103: Impulse written inside a Watch computation",
		"app/counter.go:42",
		"Hint: Move the write into onChange",
		"Learn more: https://impulse.vango.dev/errors/E103",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E204").WithLocation("impulse.yaml", 3)
	if got, want := err.FormatCompact(), "impulse.yaml:3: E204: Invalid log level"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E205").Wrap(stderrors.New("got xml"))

	var decoded map[string]any
	if jerr := json.Unmarshal([]byte(err.FormatJSON()), &decoded); jerr != nil {
		t.Fatalf("FormatJSON produced invalid JSON: %v", jerr)
	}
	if decoded["code"] != "E205" {
		t.Errorf("code = %v, want E205", decoded["code"])
	}
	if decoded["category"] != string(CategoryConfig) {
		t.Errorf("category = %v, want config", decoded["category"])
	}
	if decoded["cause"] != "got xml" {
		t.Errorf("cause = %v, want got xml", decoded["cause"])
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("expected registered codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %q before %q", codes[i-1], codes[i])
		}
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || !strings.HasSuffix(tmpl.DocURL, code) {
			t.Errorf("template for %s is incomplete: %+v", code, tmpl)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("E900", ErrorTemplate{Category: CategoryCLI, Message: "custom"})
	defer delete(registry, "E900")

	if got := New("E900").Message; got != "custom" {
		t.Errorf("Message = %q, want custom", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %q", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}
