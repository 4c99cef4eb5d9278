package typesystem

import "fmt"

// UnifyError reports a type mismatch found during unification.
type UnifyError struct {
	Left, Right *TypeVariable
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", TypeString(e.Left), TypeString(e.Right))
}

// Unify merges the equivalence classes of a and b, following the
// reference compiler's algorithm: resolve both to roots; if one root is
// an unbound variable, bind it to the other (union); if both roots carry
// operators, their constructor names and arities must match and each
// pair of arguments is unified recursively. Recursive variant types
// (e.g. a list's Cons constructor referencing the list type itself) are
// guarded against infinite recursion via an occurs-set of root pairs
// already being compared in the current call chain.
func Unify(a, b *TypeVariable) error {
	return unify(a, b, map[[2]*TypeVariable]bool{})
}

func unify(a, b *TypeVariable, seen map[[2]*TypeVariable]bool) error {
	ra, rb := Resolve(a), Resolve(b)
	if ra == rb {
		return nil
	}

	key := [2]*TypeVariable{ra, rb}
	if seen[key] {
		return nil // already unifying this pair higher up the call stack
	}
	seen[key] = true

	switch {
	case ra.Operator == nil && rb.Operator == nil:
		ra.Parent = rb
		return nil
	case ra.Operator == nil:
		ra.Parent = rb
		return nil
	case rb.Operator == nil:
		rb.Parent = ra
		return nil
	default:
		return unifyOperators(ra, rb, seen)
	}
}

func unifyOperators(ra, rb *TypeVariable, seen map[[2]*TypeVariable]bool) error {
	opA, opB := ra.Operator, rb.Operator

	if opA.Name == VariantOp && opB.Name != VariantOp {
		if sumTypeMatches(opA, opB) {
			rb.Parent = ra
			return nil
		}
		return &UnifyError{Left: ra, Right: rb}
	}
	if opB.Name == VariantOp && opA.Name != VariantOp {
		if sumTypeMatches(opB, opA) {
			ra.Parent = rb
			return nil
		}
		return &UnifyError{Left: ra, Right: rb}
	}

	if opA.Name != opB.Name || len(opA.Args) != len(opB.Args) {
		return &UnifyError{Left: ra, Right: rb}
	}
	for i := range opA.Args {
		if err := unify(opA.Args[i], opB.Args[i], seen); err != nil {
			return err
		}
	}
	// Bind one root to the other so future Resolve calls converge; keep
	// the operator on whichever side already had concrete args resolved
	// (arbitrary but consistent: prefer ra).
	rb.Parent = ra
	return nil
}

// sumTypeMatches reports whether candidate (e.g. a single constructor's
// type, or another variant) is one of variant's alternatives.
func sumTypeMatches(variant *TypeOperator, candidate *TypeOperator) bool {
	for _, alt := range variant.Args {
		altRoot := Resolve(alt)
		if altRoot.Operator == nil {
			continue
		}
		if typeOperatorsIdentical(altRoot.Operator, candidate) {
			return true
		}
	}
	return false
}

func typeOperatorsIdentical(a, b *TypeOperator) bool {
	if a.Name != b.Name || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		ra, rb := Resolve(a.Args[i]), Resolve(b.Args[i])
		if ra == rb {
			continue
		}
		if ra.Operator == nil || rb.Operator == nil {
			return false
		}
		if !typeOperatorsIdentical(ra.Operator, rb.Operator) {
			return false
		}
	}
	return true
}

// MatchTypeOperators is a non-mutating structural compatibility check:
// it reports whether a and b *could* unify, without performing any
// binding. This is the Go equivalent of the reference compiler's
// can_unify predicate (referenced by its typeclass-impl lookup but not
// itself present in the retrieved sources) — built the same way
// type_operators_match already does a read-only comparison, so impl
// resolution can probe a candidate without committing to it.
func MatchTypeOperators(a, b *TypeVariable) bool {
	ra, rb := Resolve(a), Resolve(b)
	if ra == rb {
		return true
	}
	if ra.Operator == nil || rb.Operator == nil {
		return true // an unbound variable matches anything
	}
	opA, opB := ra.Operator, rb.Operator
	if opA.Name == VariantOp && opB.Name != VariantOp {
		return sumTypeMatches(opA, opB) || matchesAnyAlt(opA, rb)
	}
	if opB.Name == VariantOp && opA.Name != VariantOp {
		return sumTypeMatches(opB, opA) || matchesAnyAlt(opB, ra)
	}
	if opA.Name != opB.Name || len(opA.Args) != len(opB.Args) {
		return false
	}
	for i := range opA.Args {
		if !MatchTypeOperators(opA.Args[i], opB.Args[i]) {
			return false
		}
	}
	return true
}

func matchesAnyAlt(variant *TypeOperator, candidate *TypeVariable) bool {
	for _, alt := range variant.Args {
		if MatchTypeOperators(alt, candidate) {
			return true
		}
	}
	return false
}
