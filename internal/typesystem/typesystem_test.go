package typesystem

import (
	"testing"
	"time"
)

func TestUnifyPrimitivesSucceed(t *testing.T) {
	a := NewVariable()
	if err := Unify(a, IntType); err != nil {
		t.Fatalf("unify var with int: %v", err)
	}
	if Resolve(a).Operator != Resolve(IntType).Operator {
		t.Fatalf("expected a to resolve to int, got %s", TypeString(a))
	}
}

func TestUnifyMismatchedPrimitivesFails(t *testing.T) {
	if err := Unify(IntType, StringType); err == nil {
		t.Fatalf("expected unify(int, string) to fail")
	}
}

func TestUnifyFunctionTypes(t *testing.T) {
	a, b := NewVariable(), NewVariable()
	f1 := BuildFunctionType([]*TypeVariable{a}, b)
	f2 := BuildFunctionType([]*TypeVariable{IntType}, StringType)
	if err := Unify(f1, f2); err != nil {
		t.Fatalf("unify function types: %v", err)
	}
	if Resolve(a).Operator != Resolve(IntType).Operator {
		t.Fatalf("expected a unified to int, got %s", TypeString(a))
	}
	if Resolve(b).Operator != Resolve(StringType).Operator {
		t.Fatalf("expected b unified to string, got %s", TypeString(b))
	}
}

func TestUnifyArityMismatchFails(t *testing.T) {
	f1 := BuildFunctionType([]*TypeVariable{IntType}, StringType)
	f2 := BuildFunctionType([]*TypeVariable{IntType, IntType}, StringType)
	if err := Unify(f1, f2); err == nil {
		t.Fatalf("expected arity mismatch to fail unification")
	}
}

func TestUnifyIsIdempotent(t *testing.T) {
	a := NewVariable()
	if err := Unify(a, IntType); err != nil {
		t.Fatalf("first unify: %v", err)
	}
	if err := Unify(a, IntType); err != nil {
		t.Fatalf("repeated unify of already-resolved var should be a no-op: %v", err)
	}
}

func TestRecursiveVariantUnifyTerminates(t *testing.T) {
	// Build a self-referential list-like type: List = Nil | Cons(int, List)
	listVar := NewVariable()
	nilCtor := UnitType
	consCtor := BuildTupleType([]*TypeVariable{IntType, listVar})
	variant := BuildVariantType([]*TypeVariable{nilCtor, consCtor})
	if err := Unify(listVar, variant); err != nil {
		t.Fatalf("unify recursive variant with itself: %v", err)
	}

	other := NewVariable()
	otherVariant := BuildVariantType([]*TypeVariable{UnitType, BuildTupleType([]*TypeVariable{IntType, other})})
	if err := Unify(other, otherVariant); err != nil {
		t.Fatalf("unify second recursive variant: %v", err)
	}

	if err := Unify(listVar, other); err != nil {
		t.Fatalf("unify of two structurally-equal recursive variants should succeed: %v", err)
	}
}

func TestInstantiateProducesFreshButConsistentVariables(t *testing.T) {
	env := NewEnv()
	a := NewVariable()
	identity := BuildFunctionType([]*TypeVariable{a}, a)
	env.Define("id", identity)

	first, _ := env.ResolveVariable("id", true)
	second, _ := env.ResolveVariable("id", true)

	if first == second {
		t.Fatalf("expected two distinct instantiations of a generalized binding")
	}
	argsFirst, err := GetFunctionArgTypes(first)
	if err != nil {
		t.Fatalf("args of first: %v", err)
	}
	retFirst, err := GetFunctionReturnType(first)
	if err != nil {
		t.Fatalf("ret of first: %v", err)
	}
	if Resolve(argsFirst[0]) != Resolve(retFirst) {
		t.Fatalf("instantiation must keep both occurrences of 'a' identified with each other")
	}

	// Unifying the first instantiation with int must not affect the
	// second, unrelated instantiation (that's the whole point of
	// let-polymorphism).
	if err := Unify(first, BuildFunctionType([]*TypeVariable{IntType}, IntType)); err != nil {
		t.Fatalf("unify first instantiation with int->int: %v", err)
	}
	if IsConcrete(second) {
		t.Fatalf("second instantiation should remain generic, got %s", TypeString(second))
	}
}

func TestSingleConstructorVariantCollapses(t *testing.T) {
	box := BuildVariantType([]*TypeVariable{IntType})
	if Resolve(box) != Resolve(IntType) {
		t.Fatalf("single-constructor variant should collapse to its sole constructor's type")
	}
}

func TestEnvPushPopRestoresScope(t *testing.T) {
	env := NewEnv()
	env.Define("x", IntType)

	env.Push(map[string]*TypeVariable{"y": StringType})
	if _, ok := env.ResolveVariable("x", false); !ok {
		t.Fatalf("expected outer binding x to be visible in inner scope")
	}
	if _, ok := env.ResolveVariable("y", false); !ok {
		t.Fatalf("expected inner binding y to resolve")
	}
	diff := env.Pop()
	if _, ok := diff["y"]; !ok {
		t.Fatalf("expected popped frame to contain y")
	}
	if _, ok := env.ResolveVariable("y", false); ok {
		t.Fatalf("expected y to no longer be visible after pop")
	}
}

func TestMangledNameFormat(t *testing.T) {
	tv := BuildFunctionType([]*TypeVariable{IntType}, IntType)
	got := MangledName("identity", tv)
	want := "identity = int -> int"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestInstantiateTerminatesOnSelfReferentialVariant(t *testing.T) {
	// Mirrors module.State.RegisterBuiltins: List is unified with a
	// variant built from its own constructors, so listType.Operator.Args
	// eventually revisits listType itself (not just the same shape).
	listType := NewVariable()
	elem := NewVariable()

	nilCtorType := listType
	consCtorType := BuildFromTypeConstructor([]*TypeVariable{elem, listType}, listType)
	variant := BuildVariantType([]*TypeVariable{nilCtorType, consCtorType})
	if err := Unify(listType, variant); err != nil {
		t.Fatalf("unify recursive List type: %v", err)
	}

	consType := BuildFromTypeConstructor([]*TypeVariable{elem, listType}, listType)

	done := make(chan *TypeVariable, 1)
	go func() { done <- Instantiate(consType) }()
	select {
	case fresh := <-done:
		if fresh == nil {
			t.Fatalf("expected a non-nil instantiation of Cons's constructor type")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Instantiate did not terminate on a self-referential variant type")
	}
}

func TestConstructorRegistry(t *testing.T) {
	reg := NewRegistry()
	parent := NewVariable()
	if err := reg.Register("Some", parent, 1, []string{"value"}, []*TypeVariable{IntType}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := reg.GetConstructorInfo("Some"); !ok {
		t.Fatalf("expected constructor info to be found")
	}
	if tag, ok := reg.GetConstructorValue("Some"); !ok || tag != 1 {
		t.Fatalf("expected tag 1, got %d ok=%v", tag, ok)
	}
	if idx, ok := reg.GetConstructorFieldIndex("Some", "value"); !ok || idx != 0 {
		t.Fatalf("expected field index 0, got %d ok=%v", idx, ok)
	}
	if err := reg.Register("Some", parent, 2, nil, nil); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
