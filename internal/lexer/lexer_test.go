package lexer

import (
	"testing"

	"github.com/daniel-p-gonzalez/bon/internal/token"
)

func collect(src string) []token.Type {
	l := New("test.bon", src)
	var out []token.Type
	for {
		tok := l.NextToken()
		out = append(out, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	return out
}

func assertTypes(t *testing.T, got []token.Type, want ...token.Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count mismatch: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestSimpleIndentBlock(t *testing.T) {
	src := "def f(x):\n    x + 1\n"
	got := collect(src)
	assertTypes(t, got,
		token.DEF, token.IDENT, token.LPAREN, token.IDENT, token.RPAREN, token.COLON,
		token.INDENT,
		token.IDENT, token.PLUS, token.INT,
		token.DEDENT, token.EOF,
	)
}

func TestNestedIndentDedentBalance(t *testing.T) {
	src := "def f(x):\n    if x then\n        1\n    else\n        2\n"
	got := collect(src)
	indent, dedent := 0, 0
	for _, ty := range got {
		if ty == token.INDENT {
			indent++
		}
		if ty == token.DEDENT {
			dedent++
		}
	}
	if indent != dedent {
		t.Fatalf("unbalanced indent/dedent: %d indents, %d dedents (tokens: %v)", indent, dedent, got)
	}
	if got[len(got)-1] != token.EOF {
		t.Fatalf("expected stream to end with EOF, got %v", got)
	}
}

func TestBlankAndCommentLinesIgnored(t *testing.T) {
	src := "def f(x):\n    # a comment\n\n    x\n"
	got := collect(src)
	assertTypes(t, got,
		token.DEF, token.IDENT, token.LPAREN, token.IDENT, token.RPAREN, token.COLON,
		token.INDENT, token.IDENT,
		token.DEDENT, token.EOF,
	)
}

func TestOperators(t *testing.T) {
	src := "a -> b :: c == d != e <= f >= g && h"
	got := collect(src)
	want := []token.Type{
		token.IDENT, token.ARROW, token.IDENT, token.CONS, token.IDENT,
		token.EQEQ, token.IDENT, token.NEQ,
		token.IDENT, token.LE, token.IDENT, token.GE, token.IDENT,
		token.AND, token.IDENT, token.EOF,
	}
	assertTypes(t, got, want...)
}

func TestSequencingAndMatchArrowOperators(t *testing.T) {
	src := "x; y => z"
	got := collect(src)
	want := []token.Type{
		token.IDENT, token.SEMI, token.IDENT, token.FATARROW, token.IDENT, token.EOF,
	}
	assertTypes(t, got, want...)
}

func TestNewKeywordsTokenizeAsKeywords(t *testing.T) {
	src := "do end new return\n"
	got := collect(src)
	assertTypes(t, got, token.DO, token.END, token.NEW, token.RETURN, token.EOF)
}

func TestUnitLiteralTokenizes(t *testing.T) {
	l := New("test.bon", "let u = ()\n")
	var types []token.Type
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	found := false
	for _, ty := range types {
		if ty == token.UNIT {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UNIT token in stream: %v", types)
	}
}

func TestIndentationTooDeepReportsError(t *testing.T) {
	src := ""
	indent := ""
	for i := 0; i < maxIndentDepth+2; i++ {
		indent += "    "
		src += indent + "x\n"
	}
	l := New("test.bon", src)
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected an indentation-depth error, got none")
	}
}
