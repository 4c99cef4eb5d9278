// Package diagnostics implements Bon's central error/warning logger:
// source-attributed, colorized one-line-plus-caret diagnostics with
// configurable error/warning ceilings. Ported from the reference
// compiler's bonLogger.h/.cc, with the caret-rendering algorithm and
// ANSI color handling adapted from go-dws's internal/errors package.
// Per the source language's own design notes, the ceiling-exceeded
// exceptions (max_errors_exception / max_warnings_exception) become an
// ordinary sentinel error here rather than being replicated as a Go
// panic/recover pair.
package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/daniel-p-gonzalez/bon/internal/token"
)

// ErrCeilingExceeded is returned once the configured error or warning
// count is exceeded; callers should stop compiling and unwind.
var ErrCeilingExceeded = errors.New("diagnostics: error/warning ceiling exceeded")

const (
	colorReset = "\033[0m"
	colorRed   = "\033[1;31m"
	colorYellow = "\033[1;33m"
	colorBlue  = "\033[1;34m"
	colorDim   = "\033[2m"
)

// Severity distinguishes the three message kinds the logger emits.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) label() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (s Severity) color() string {
	switch s {
	case Warning:
		return colorYellow
	case Error:
		return colorRed
	default:
		return colorBlue
	}
}

// Diagnostic is a single logged message with source attribution.
type Diagnostic struct {
	Severity Severity
	Kind     string // e.g. "TypeMismatch", "UnboundName" — the taxonomy in spec.md §7
	Message  string
	Pos      token.Position
	Source   string // the full text of the offending line, for caret rendering
}

// Format renders one diagnostic as "file:line:col: severity: message"
// (the Kind field is not printed), followed by the source line and a
// caret under the column, optionally colorized.
func (d Diagnostic) Format(color bool) string {
	var sb strings.Builder
	sev := d.Severity.label()
	if color {
		fmt.Fprintf(&sb, "%s%s:%d:%d: %s%s%s: %s\n", colorDim, d.Pos.File, d.Pos.Line, d.Pos.Column,
			d.Severity.color(), sev, colorReset, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: %s\n", d.Pos.File, d.Pos.Line, d.Pos.Column, sev, d.Message)
	}
	if d.Source != "" {
		sb.WriteString(d.Source)
		if !strings.HasSuffix(d.Source, "\n") {
			sb.WriteByte('\n')
		}
		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		caretLine := strings.Repeat(" ", col-1) + "^"
		if color {
			sb.WriteString(d.Severity.color())
			sb.WriteString(caretLine)
			sb.WriteString(colorReset)
		} else {
			sb.WriteString(caretLine)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Logger accumulates diagnostics and enforces configurable error/warning
// ceilings, matching the reference compiler's Logger class (current
// file/line/column, max_errors_/max_warnings_, counters).
type Logger struct {
	out    io.Writer
	color  bool

	currentFile string
	line, col   int

	maxErrors, maxWarnings int
	errorCount, warnCount  int

	diagnostics []Diagnostic
}

// Option configures a new Logger.
type Option func(*Logger)

// WithCeilings overrides the default error/warning ceilings (20/100,
// matching the reference compiler's defaults).
func WithCeilings(maxErrors, maxWarnings int) Option {
	return func(l *Logger) { l.maxErrors, l.maxWarnings = maxErrors, maxWarnings }
}

// WithColor forces color on or off, bypassing the isatty auto-detection.
func WithColor(enabled bool) Option {
	return func(l *Logger) { l.color = enabled }
}

// New creates a Logger writing to out, auto-detecting color support via
// go-isatty the same way funxy gates its own CLI output.
func New(out io.Writer, opts ...Option) *Logger {
	l := &Logger{
		out:        out,
		maxErrors:  20,
		maxWarnings: 100,
	}
	if f, ok := out.(interface{ Fd() uintptr }); ok {
		l.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetCurrentFile records the file name attributed to subsequent messages
// that don't specify their own position.
func (l *Logger) SetCurrentFile(name string) { l.currentFile = name }

// CurrentFile returns the file set by SetCurrentFile.
func (l *Logger) CurrentFile() string { return l.currentFile }

// SetLineColumn records the current cursor position for subsequent
// messages that reuse it.
func (l *Logger) SetLineColumn(line, col int) { l.line, l.col = line, col }

// HadErrors reports whether any error-severity diagnostic was logged.
func (l *Logger) HadErrors() bool { return l.errorCount > 0 }

// Diagnostics returns every diagnostic logged so far, in emission order.
func (l *Logger) Diagnostics() []Diagnostic { return l.diagnostics }

func (l *Logger) emit(sev Severity, kind, message string, pos token.Position, source string) error {
	d := Diagnostic{Severity: sev, Kind: kind, Message: message, Pos: pos, Source: source}
	l.diagnostics = append(l.diagnostics, d)
	if l.out != nil {
		fmt.Fprint(l.out, d.Format(l.color))
	}
	switch sev {
	case Warning:
		l.warnCount++
		if l.warnCount > l.maxWarnings {
			return ErrCeilingExceeded
		}
	case Error:
		l.errorCount++
		if l.errorCount > l.maxErrors {
			return ErrCeilingExceeded
		}
	}
	return nil
}

// Info logs an informational message at the current position.
func (l *Logger) Info(kind, message string) {
	l.emit(Info, kind, message, token.Position{File: l.currentFile, Line: l.line, Column: l.col}, "")
}

// Warn logs a warning at pos; returns ErrCeilingExceeded if the warning
// ceiling has now been exceeded.
func (l *Logger) Warn(kind, message string, pos token.Position, source string) error {
	return l.emit(Warning, kind, message, pos, source)
}

// Error logs an error at pos; returns ErrCeilingExceeded if the error
// ceiling has now been exceeded.
func (l *Logger) Error(kind, message string, pos token.Position, source string) error {
	return l.emit(Error, kind, message, pos, source)
}

// FormatErrors renders every logged error, framed "[Error N of M]" as
// go-dws's batch formatter does, for a final summary dump.
func (l *Logger) FormatErrors() string {
	var errs []Diagnostic
	for _, d := range l.diagnostics {
		if d.Severity == Error {
			errs = append(errs, d)
		}
	}
	var sb strings.Builder
	for i, d := range errs {
		fmt.Fprintf(&sb, "[Error %d of %d]\n%s", i+1, len(errs), d.Format(l.color))
	}
	return sb.String()
}

// Finalize prints a summary line if any errors or warnings were logged.
func (l *Logger) Finalize() {
	if l.errorCount == 0 && l.warnCount == 0 {
		return
	}
	fmt.Fprintf(l.out, "%d error(s), %d warning(s)\n", l.errorCount, l.warnCount)
}
