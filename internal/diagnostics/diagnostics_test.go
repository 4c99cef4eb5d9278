package diagnostics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/daniel-p-gonzalez/bon/internal/token"
)

func TestFormatWithoutColorIncludesCaret(t *testing.T) {
	d := Diagnostic{
		Severity: Error,
		Kind:     "TypeMismatch",
		Message:  "expected int, got string",
		Pos:      token.Position{File: "demo.bon", Line: 3, Column: 5},
		Source:   "    x + y",
	}
	out := d.Format(false)
	if !strings.Contains(out, "demo.bon:3:5: error: expected int, got string") {
		t.Fatalf("unexpected format output: %q", out)
	}
	if !strings.Contains(out, "    x + y") {
		t.Fatalf("expected source line to be included: %q", out)
	}
	if !strings.Contains(out, strings.Repeat(" ", 4)+"^") {
		t.Fatalf("expected caret at column 5: %q", out)
	}
}

func TestFormatSnapshot(t *testing.T) {
	d := Diagnostic{
		Severity: Warning,
		Kind:     "UnboundName",
		Message:  `unbound name "foo"`,
		Pos:      token.Position{File: "demo.bon", Line: 1, Column: 1},
		Source:   "foo()",
	}
	snaps.MatchSnapshot(t, "warning_format", d.Format(false))
}

func TestLoggerEnforcesErrorCeiling(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WithCeilings(2, 100), WithColor(false))
	pos := token.Position{File: "demo.bon", Line: 1, Column: 1}

	if err := logger.Error("TypeMismatch", "first", pos, ""); err != nil {
		t.Fatalf("unexpected error on first diagnostic: %v", err)
	}
	if err := logger.Error("TypeMismatch", "second", pos, ""); err != nil {
		t.Fatalf("unexpected error on second diagnostic: %v", err)
	}
	err := logger.Error("TypeMismatch", "third", pos, "")
	if !errors.Is(err, ErrCeilingExceeded) {
		t.Fatalf("expected ErrCeilingExceeded once past the ceiling, got %v", err)
	}
	if !logger.HadErrors() {
		t.Fatalf("expected HadErrors to be true")
	}
	if len(logger.Diagnostics()) != 3 {
		t.Fatalf("expected all 3 diagnostics to still be recorded, got %d", len(logger.Diagnostics()))
	}
}

func TestLoggerWarningCeilingIsIndependentOfErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WithCeilings(20, 1), WithColor(false))
	pos := token.Position{File: "demo.bon", Line: 1, Column: 1}

	if err := logger.Warn("UnboundName", "first warning", pos, ""); err != nil {
		t.Fatalf("unexpected error on first warning: %v", err)
	}
	err := logger.Warn("UnboundName", "second warning", pos, "")
	if !errors.Is(err, ErrCeilingExceeded) {
		t.Fatalf("expected ErrCeilingExceeded once past the warning ceiling, got %v", err)
	}
	if logger.HadErrors() {
		t.Fatalf("warnings alone should not count as errors")
	}
}

func TestFormatErrorsFramesEachErrorWithCount(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, WithCeilings(20, 100), WithColor(false))
	pos := token.Position{File: "demo.bon", Line: 1, Column: 1}
	_ = logger.Error("TypeMismatch", "bad a", pos, "")
	_ = logger.Error("TypeMismatch", "bad b", pos, "")

	out := logger.FormatErrors()
	if !strings.Contains(out, "[Error 1 of 2]") || !strings.Contains(out, "[Error 2 of 2]") {
		t.Fatalf("expected both errors to be framed with a count, got: %q", out)
	}
}
