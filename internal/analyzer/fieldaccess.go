package analyzer

import (
	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/diagnostics"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// analyzeFieldAccess implements the spec's field-access row: resolve the
// constructor that owns the named field, unify the receiver's type
// against that constructor's parent variant, and give the access
// expression the field's own declared type. Matches
// registry.ConstructorsWithField's first-match, registration-order
// semantics used elsewhere for overload-style lookups.
func (a *Analyzer) analyzeFieldAccess(n *ast.FieldAccess) error {
	if err := a.Analyze(n.Receiver); err != nil {
		return err
	}

	candidates := a.state.Constructors.ConstructorsWithField(n.Field)
	if len(candidates) == 0 {
		return a.fail(n.Pos(), &diagnostics.UnboundName{Pos: n.Pos(), Name: n.Field})
	}
	info := candidates[0]

	if err := typesystem.Unify(n.Receiver.TypeVar(), info.ParentType); err != nil {
		return a.fail(n.Pos(), err)
	}

	idx := info.FieldIndex[n.Field]
	n.SetTypeVar(info.ArgTypes[idx])
	return nil
}
