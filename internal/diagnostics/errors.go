package diagnostics

import (
	"fmt"

	"github.com/daniel-p-gonzalez/bon/internal/token"
)

// The error taxonomy below gives each compiler-phase failure its own Go
// type (rather than one generic string-typed error), so callers can
// distinguish them with errors.As when deciding how to recover — spec's
// §7 taxonomy: LexError, SyntaxError, TypeMismatch, UnboundName,
// ArityMismatch, NoMatchingImpl, InternalError.

type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string { return fmt.Sprintf("%s: lex error: %s", e.Pos, e.Message) }

type SyntaxError struct {
	Pos     token.Position
	Message string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Message) }

type TypeMismatch struct {
	Pos  token.Position
	Want string
	Got  string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("%s: type mismatch: expected %s, got %s", e.Pos, e.Want, e.Got)
}

type UnboundName struct {
	Pos  token.Position
	Name string
}

func (e *UnboundName) Error() string { return fmt.Sprintf("%s: unbound name %q", e.Pos, e.Name) }

type ArityMismatch struct {
	Pos      token.Position
	Name     string
	Want, Got int
}

func (e *ArityMismatch) Error() string {
	return fmt.Sprintf("%s: %q expects %d argument(s), got %d", e.Pos, e.Name, e.Want, e.Got)
}

type NoMatchingImpl struct {
	Pos      token.Position
	Method   string
	TypeDesc string
}

func (e *NoMatchingImpl) Error() string {
	return fmt.Sprintf("%s: no typeclass implementation of %q for %s", e.Pos, e.Method, e.TypeDesc)
}

type InternalError struct {
	Message string
}

func (e *InternalError) Error() string { return fmt.Sprintf("internal error: %s", e.Message) }
