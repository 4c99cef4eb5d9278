// Package typesystem implements Bon's Hindley-Milner type inference core:
// a union-find forest of TypeVariable nodes, TypeOperator type
// constructors, and a scoped TypeEnv stack used for let-polymorphic
// instantiation. The algorithm is ported directly from the reference bon
// compiler's bonTypesystem.h/.cc (union-find, not a substitution map),
// since that is the one part of this codebase where the available Go
// reference implementations (which use a Subst map instead) diverge from
// what the source language actually does.
package typesystem

import "fmt"

// Function, tuple, and sum-type constructor symbols, matching the
// reference compiler's operator-name conventions exactly (these strings
// also show up verbatim in rendered type names and mangled function
// names).
const (
	FuncOp    = " -> "
	TupleOp   = " * "
	VariantOp = " | "
)

// TypeOperator is a type constructor applied to an ordered list of
// argument type variables: a primitive like `int` has Name set and no
// Args; `a -> b` is TypeOperator{Name: FuncOp, Args: [a, b]}.
type TypeOperator struct {
	Name string
	Args []*TypeVariable
}

// TypeVariable is a union-find node: either an unbound variable (Parent
// and Operator both nil), a variable bound to another variable (Parent
// set, found via Resolve), or a variable resolved to a concrete
// TypeOperator (Operator set; only ever set on a union-find root).
type TypeVariable struct {
	id       int
	name     string // user-facing display name, assigned lazily
	Parent   *TypeVariable
	Operator *TypeOperator
}

var nextID int

// NewVariable allocates a fresh, unbound type variable.
func NewVariable() *TypeVariable {
	nextID++
	return &TypeVariable{id: nextID}
}

// NewOperatorVar allocates a type variable pre-resolved to the given
// operator, used for primitive types and for building compound types
// in-place.
func NewOperatorVar(name string, args ...*TypeVariable) *TypeVariable {
	tv := NewVariable()
	tv.Operator = &TypeOperator{Name: name, Args: args}
	return tv
}

// Global primitive types, matching the reference compiler's IntType,
// FloatType, StringType, BoolType, UnitType, PointerType globals.
var (
	IntType     = NewOperatorVar("int")
	FloatType   = NewOperatorVar("float")
	StringType  = NewOperatorVar("string")
	BoolType    = NewOperatorVar("bool")
	UnitType    = NewOperatorVar("()")
	PointerType = NewOperatorVar("ptr")
)

// Resolve follows union-find parent links to the representative root of
// tv's equivalence class. It does not mutate the forest (no path
// compression) so that Env.Pop's "what changed" diff stays meaningful;
// Flatten, which is used for display and is not on any hot path, does
// the eager recursive walk instead.
func Resolve(tv *TypeVariable) *TypeVariable {
	for tv.Parent != nil {
		tv = tv.Parent
	}
	return tv
}

// IsConcrete reports whether tv resolves to a fully-applied TypeOperator
// whose arguments are themselves concrete (no free, unbound variables
// anywhere in the structure).
func IsConcrete(tv *TypeVariable) bool {
	root := Resolve(tv)
	if root.Operator == nil {
		return false
	}
	for _, arg := range root.Operator.Args {
		if !IsConcrete(arg) {
			return false
		}
	}
	return true
}

// IsBoxed reports whether tv denotes a heap-allocated (pointer-sized,
// reference-counted or GC'd) representation, i.e. anything that isn't a
// primitive scalar. Sum types and tuples are boxed; int/float/bool/unit
// and pointers themselves are not.
func IsBoxed(tv *TypeVariable) bool {
	root := Resolve(tv)
	if root.Operator == nil {
		return true // unresolved: conservatively boxed
	}
	switch root.Operator.Name {
	case "int", "float", "bool", "()", "ptr":
		return false
	default:
		return true
	}
}

// IsPointerType reports whether tv resolves to the pointer type.
func IsPointerType(tv *TypeVariable) bool {
	root := Resolve(tv)
	return root.Operator != nil && root.Operator.Name == "ptr"
}

// GetTypeOfPointer returns the pointee type if tv is `ptr(elem)`-shaped;
// Bon's PointerType is nullary at the type-system level (the element
// type is tracked separately by the registry that allocated it), so this
// returns PointerType's sole argument when present or false otherwise.
func GetTypeOfPointer(tv *TypeVariable) (*TypeVariable, bool) {
	root := Resolve(tv)
	if root.Operator == nil || root.Operator.Name != "ptr" || len(root.Operator.Args) == 0 {
		return nil, false
	}
	return root.Operator.Args[0], true
}

// BuildFunctionType constructs `arg1 -> arg2 -> ... -> ret`.
func BuildFunctionType(args []*TypeVariable, ret *TypeVariable) *TypeVariable {
	all := make([]*TypeVariable, 0, len(args)+1)
	all = append(all, args...)
	all = append(all, ret)
	return NewOperatorVar(FuncOp, all...)
}

// BuildTupleType constructs `elem1 * elem2 * ...`.
func BuildTupleType(elems []*TypeVariable) *TypeVariable {
	return NewOperatorVar(TupleOp, elems...)
}

// BuildVariantType constructs the sum type over the given constructor
// types. As a special case, matching the reference compiler exactly: a
// single-constructor "sum" does not get wrapped in a VariantOp node at
// all — the variant type is unified directly with its sole constructor's
// type, so that e.g. `type Box = MkBox(int)` behaves like a plain
// one-field record rather than an always-boxed union.
func BuildVariantType(ctors []*TypeVariable) *TypeVariable {
	if len(ctors) == 1 {
		return ctors[0]
	}
	return NewOperatorVar(VariantOp, ctors...)
}

// GetFunctionReturnType returns the final argument of a `->`-operator
// type (the arrow's return type).
func GetFunctionReturnType(tv *TypeVariable) (*TypeVariable, error) {
	root := Resolve(tv)
	if root.Operator == nil || root.Operator.Name != FuncOp || len(root.Operator.Args) == 0 {
		return nil, fmt.Errorf("typesystem: %s is not a function type", TypeString(tv))
	}
	return root.Operator.Args[len(root.Operator.Args)-1], nil
}

// GetFunctionArgTypes returns all but the final argument of a
// `->`-operator type.
func GetFunctionArgTypes(tv *TypeVariable) ([]*TypeVariable, error) {
	root := Resolve(tv)
	if root.Operator == nil || root.Operator.Name != FuncOp {
		return nil, fmt.Errorf("typesystem: %s is not a function type", TypeString(tv))
	}
	return root.Operator.Args[:len(root.Operator.Args)-1], nil
}

// TypeVariableFromIdentifier maps a type-annotation identifier (as
// written in source, e.g. "int", "string", or a user type name) to its
// type variable. User-defined names are looked up in the registry by the
// caller; this only covers the built-in primitive spellings.
func TypeVariableFromIdentifier(name string) (*TypeVariable, bool) {
	switch name {
	case "int":
		return IntType, true
	case "float":
		return FloatType, true
	case "string":
		return StringType, true
	case "bool":
		return BoolType, true
	case "()":
		return UnitType, true
	case "ptr":
		return PointerType, true
	}
	return nil, false
}
