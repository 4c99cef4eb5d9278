package typesystem

import (
	"fmt"
	"strings"
)

// Flatten fully resolves tv and everything reachable from it, returning
// a freestanding copy with no remaining union-find indirection — used
// only for display and mangled-name generation, never on a path where
// further unification will occur.
func Flatten(tv *TypeVariable) *TypeVariable {
	return flatten(tv, map[*TypeVariable]*TypeVariable{})
}

func flatten(tv *TypeVariable, seen map[*TypeVariable]*TypeVariable) *TypeVariable {
	root := Resolve(tv)
	if root.Operator == nil {
		return root
	}
	if done, ok := seen[root]; ok {
		return done
	}
	placeholder := NewVariable()
	seen[root] = placeholder
	args := make([]*TypeVariable, len(root.Operator.Args))
	for i, a := range root.Operator.Args {
		args[i] = flatten(a, seen)
	}
	placeholder.Operator = &TypeOperator{Name: root.Operator.Name, Args: args}
	return placeholder
}

// displayName lazily assigns and caches a short display name for an unbound
// type variable, in the classic a, b, c, ... z, a1, b1, ... sequence.
func (tv *TypeVariable) displayName() string {
	if tv.name == "" {
		tv.name = generateLetterName(tv.id)
	}
	return tv.name
}

func generateLetterName(n int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	round := (n - 1) / len(letters)
	idx := (n - 1) % len(letters)
	if round == 0 {
		return string(letters[idx])
	}
	return fmt.Sprintf("%c%d", letters[idx], round)
}

// TypeString renders tv as a human-readable, stable type expression
// (e.g. "int -> int", "a -> a", "Option(int)"), used both for
// diagnostics and, combined with a function name, for monomorphized
// mangled names of the form "name = type-string".
func TypeString(tv *TypeVariable) string {
	return typeString(tv, map[*TypeVariable]bool{})
}

func typeString(tv *TypeVariable, guard map[*TypeVariable]bool) string {
	root := Resolve(tv)
	if root.Operator == nil {
		return root.displayName()
	}
	if guard[root] {
		return "..."
	}
	guard[root] = true
	defer delete(guard, root)

	op := root.Operator
	switch op.Name {
	case FuncOp:
		parts := make([]string, len(op.Args))
		for i, a := range op.Args {
			parts[i] = typeStringParen(a, guard, true)
		}
		return strings.Join(parts, FuncOp)
	case TupleOp:
		parts := make([]string, len(op.Args))
		for i, a := range op.Args {
			parts[i] = typeStringParen(a, guard, true)
		}
		return strings.Join(parts, TupleOp)
	case VariantOp:
		parts := make([]string, len(op.Args))
		for i, a := range op.Args {
			parts[i] = typeString(a, guard)
		}
		return strings.Join(parts, VariantOp)
	default:
		if len(op.Args) == 0 {
			return op.Name
		}
		parts := make([]string, len(op.Args))
		for i, a := range op.Args {
			parts[i] = typeString(a, guard)
		}
		return fmt.Sprintf("%s(%s)", op.Name, strings.Join(parts, ", "))
	}
}

func typeStringParen(tv *TypeVariable, guard map[*TypeVariable]bool, parenIfArrow bool) string {
	root := Resolve(tv)
	if parenIfArrow && root.Operator != nil && root.Operator.Name == FuncOp {
		return "(" + typeString(tv, guard) + ")"
	}
	return typeString(tv, guard)
}

// MangledName builds a monomorphized function name of the form
// "name = type-string", matching the reference compiler's convention
// exactly (func_name + " = " + method->type_var()->get_name()).
func MangledName(funcName string, tv *TypeVariable) string {
	return fmt.Sprintf("%s = %s", funcName, TypeString(Flatten(tv)))
}
