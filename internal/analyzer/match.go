package analyzer

import (
	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/diagnostics"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// analyzeMatch type-checks a pattern match: the scrutinee must unify
// with every arm's pattern type (each arm's constructor's parent
// variant type), each arm's bindings are bound to that constructor's
// field types within the arm's own scope, and every arm's body must
// unify to one common result type.
func (a *Analyzer) analyzeMatch(n *ast.Match) error {
	if err := a.Analyze(n.Scrutinee); err != nil {
		return err
	}

	var resultType *typesystem.TypeVariable
	for _, c := range n.Cases {
		info, ok := a.state.Constructors.GetConstructorInfo(c.Constructor)
		if !ok {
			return a.fail(c.Pos(), &diagnostics.UnboundName{Pos: c.Pos(), Name: c.Constructor})
		}
		if len(c.Bindings) != len(info.ArgTypes) {
			return a.fail(c.Pos(), &diagnostics.ArityMismatch{
				Pos: c.Pos(), Name: c.Constructor, Want: len(info.ArgTypes), Got: len(c.Bindings),
			})
		}

		ctorType := typesystem.BuildFromTypeConstructor(info.ArgTypes, info.ParentType)
		fresh := typesystem.Instantiate(ctorType)

		var fieldTypes []*typesystem.TypeVariable
		patternType := fresh
		if len(info.ArgTypes) > 0 {
			var err error
			fieldTypes, err = typesystem.GetFunctionArgTypes(fresh)
			if err != nil {
				return a.fail(c.Pos(), err)
			}
			patternType, err = typesystem.GetFunctionReturnType(fresh)
			if err != nil {
				return a.fail(c.Pos(), err)
			}
		}
		if err := typesystem.Unify(n.Scrutinee.TypeVar(), patternType); err != nil {
			return a.fail(c.Pos(), err)
		}

		bindings := map[string]*typesystem.TypeVariable{}
		for i, name := range c.Bindings {
			bindings[name] = fieldTypes[i]
		}
		a.env.Push(bindings)
		err := a.Analyze(c.Body)
		a.env.Pop()
		if err != nil {
			return err
		}
		c.SetTypeVar(c.Body.TypeVar())

		if resultType == nil {
			resultType = c.Body.TypeVar()
		} else if err := typesystem.Unify(resultType, c.Body.TypeVar()); err != nil {
			return a.fail(c.Pos(), err)
		}
	}

	if resultType == nil {
		resultType = typesystem.UnitType
	}
	n.SetTypeVar(resultType)
	return nil
}
