package errors

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("E122")
	if err.Code != "E122" || err.Category != CategoryConfig {
		t.Fatalf("err=%+v", err)
	}
	if err.Message != "Invalid port number" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != "E122: Invalid port number" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("E999")
	if err.Message != "Unknown error" {
		t.Errorf("Message = %q, want %q", err.Message, "Unknown error")
	}
}

func TestEveryCodeHasCategoryAndMessage(t *testing.T) {
	for code, tmpl := range registry {
		if tmpl.Category == "" || tmpl.Message == "" {
			t.Errorf("%s: incomplete template %+v", code, tmpl)
		}
		if !strings.HasPrefix(code, "E") {
			t.Errorf("%s: code must start with E", code)
		}
	}
}

func TestWrapSupportsErrorsIs(t *testing.T) {
	err := New("E141").Wrap(fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Fatal("errors.Is failed through Error")
	}
	if !strings.HasSuffix(err.Error(), fs.ErrNotExist.Error()) {
		t.Errorf("Error() = %q, want wrapped message appended", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E120") != nil {
		t.Fatal("FromError(nil) should be nil")
	}

	orig := New("E122")
	if FromError(orig, "E120") != orig {
		t.Fatal("FromError should return an *Error unchanged")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "E142")
	if got.Code != "E142" || got.Wrapped != plain {
		t.Fatalf("FromError = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E122").
		WithDetail("port 70000 is out of range").
		WithSuggestion("Use a port between 1 and 65535")

	out := err.Format()
	for _, want := range []string{
		"ERROR E122: Invalid port number",
		"port 70000 is out of range",
		"Hint: Use a port between 1 and 65535",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Format() contains color codes with colors disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	if got := New("E143").FormatCompact(); got != "E143: Unknown painter" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := Newf(CategoryCLI, "bad %s", "flag").FormatCompact(); got != "bad flag" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFprintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	FprintError(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 9)
	want := []string{"one two", "three", "four five", "six"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
