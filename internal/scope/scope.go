// Package scope implements Bon's scope-analysis pass: it sets EndsScope
// on every AST node that sits at the end of a lexical scope (informing a
// backend's lifetime/ownership decisions — it has no effect on the type
// system itself). Ported from the reference compiler's
// bonScopeAnalysisPass.cc, generalized to the superset form: in addition
// to the narrower set (literals, variables, constructors, unary/call
// results, if/match arms, function bodies), this pass also marks while
// loops, sizeof, and ptr_offset as scope-ending leaves.
package scope

import (
	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/token"
)

// Analyze marks EndsScope throughout expr and everything it contains.
func Analyze(expr ast.Expr) {
	if expr == nil {
		return
	}
	switch n := expr.(type) {
	case *ast.IntLiteral, *ast.FloatLiteral, *ast.StringLiteral, *ast.BoolLiteral, *ast.UnitLiteral, *ast.Variable:
		expr.SetEndsScope(true)

	case *ast.Unary:
		Analyze(n.Operand)
		expr.SetEndsScope(true)

	case *ast.Binary:
		Analyze(n.LHS)
		Analyze(n.RHS)
		if n.Op == token.SEMI {
			// Sequencing propagates ends_scope to the RHS (the
			// statement actually ending the block) instead of treating
			// the sequencing node itself as a leaf.
			n.RHS.SetEndsScope(true)
		} else {
			expr.SetEndsScope(true)
		}

	case *ast.FieldAccess:
		Analyze(n.Receiver)
		expr.SetEndsScope(true)

	case *ast.Call:
		for _, a := range n.Args {
			Analyze(a)
		}
		expr.SetEndsScope(true)

	case *ast.ValueConstructor:
		for _, a := range n.Args {
			Analyze(a)
		}
		expr.SetEndsScope(true)

	case *ast.Tuple:
		for _, e := range n.Elems {
			Analyze(e)
		}
		expr.SetEndsScope(true)

	case *ast.If:
		Analyze(n.Cond)
		Analyze(n.Then)
		Analyze(n.Else)
		n.Then.SetEndsScope(true)
		n.Else.SetEndsScope(true)

	case *ast.Match:
		Analyze(n.Scrutinee)
		for _, c := range n.Cases {
			Analyze(c.Body)
			c.Body.SetEndsScope(true)
			c.SetEndsScope(true)
		}

	case *ast.While:
		Analyze(n.Cond)
		Analyze(n.Body)
		// Superset behavior: while loops are leaf scope-enders too, since
		// a backend needs to know the loop's own result (unit) doesn't
		// borrow from the condition or body.
		n.Body.SetEndsScope(true)
		expr.SetEndsScope(true)

	case *ast.SizeOf:
		expr.SetEndsScope(true)

	case *ast.PtrOffset:
		Analyze(n.Ptr)
		Analyze(n.Offset)
		expr.SetEndsScope(true)
	}
}

// AnalyzeFunction runs Analyze over a function's body, matching
// FunctionAST->Body propagation in the reference pass.
func AnalyzeFunction(fn *ast.FunctionDecl) {
	if fn == nil || fn.Body == nil {
		return
	}
	Analyze(fn.Body)
	fn.Body.SetEndsScope(true)
}

// AnalyzeTypeclassImpl runs Analyze over every method body of a
// typeclass implementation.
func AnalyzeTypeclassImpl(impl *ast.TypeclassImpl) {
	for _, fn := range impl.Methods {
		AnalyzeFunction(fn)
	}
}

// AnalyzeModule runs the scope pass over every function, typeclass impl,
// and top-level expression in a parsed module.
func AnalyzeModule(m *ast.Module) {
	for _, fn := range m.Functions {
		AnalyzeFunction(fn)
	}
	for _, impl := range m.TypeclassImpls {
		AnalyzeTypeclassImpl(impl)
	}
	for _, fn := range m.ToplevelExpressions {
		AnalyzeFunction(fn)
	}
}
