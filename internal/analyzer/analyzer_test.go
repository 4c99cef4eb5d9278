package analyzer

import (
	"testing"

	"github.com/daniel-p-gonzalez/bon/internal/module"
	"github.com/daniel-p-gonzalez/bon/internal/parser"
	"github.com/daniel-p-gonzalez/bon/internal/scope"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

func compile(t *testing.T, src string) (*module.State, *Analyzer) {
	t.Helper()
	state := module.New("test.bon")
	state.RegisterBuiltins()
	p := parser.New("test.bon", src, state)
	mod := p.ParseModule()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	scope.AnalyzeModule(mod)
	a := New(state, nil)
	if err := a.AnalyzeModule(mod); err != nil {
		t.Fatalf("unexpected analysis error: %v", err)
	}
	return state, a
}

func TestIdentityFunctionInfersGenericType(t *testing.T) {
	state, _ := compile(t, "def id(x): x\n")
	fn := state.AllFunctions["id"]
	argTypes, err := typesystem.GetFunctionArgTypes(fn.Proto.TypeVar)
	if err != nil {
		t.Fatalf("expected function type, got error: %v", err)
	}
	ret, err := typesystem.GetFunctionReturnType(fn.Proto.TypeVar)
	if err != nil {
		t.Fatalf("expected return type: %v", err)
	}
	if typesystem.Resolve(argTypes[0]) != typesystem.Resolve(ret) {
		t.Fatalf("expected id's argument and return type to be the same variable")
	}
	if typesystem.IsConcrete(fn.Proto.TypeVar) {
		t.Fatalf("expected id's type to remain generic absent any call site")
	}
}

func TestArithmeticTypeUnifiesWithIntSignature(t *testing.T) {
	state, _ := compile(t, "def add(x, y): x + y\n")
	fn := state.AllFunctions["add"]
	if err := typesystem.Unify(fn.Proto.TypeVar, typesystem.BuildFunctionType(
		[]*typesystem.TypeVariable{typesystem.IntType, typesystem.IntType}, typesystem.IntType)); err != nil {
		t.Fatalf("add's inferred type should be unifiable with int -> int -> int: %v", err)
	}
}

func TestTypedParameterConstrainsBody(t *testing.T) {
	state, _ := compile(t, "def show(x:int) -> int: x + 1\n")
	fn := state.AllFunctions["show"]
	argTypes, err := typesystem.GetFunctionArgTypes(fn.Proto.TypeVar)
	if err != nil {
		t.Fatalf("expected function type: %v", err)
	}
	if typesystem.Resolve(argTypes[0]) != typesystem.Resolve(typesystem.IntType) {
		t.Fatalf("expected declared parameter type to resolve to int")
	}
}

func TestValueConstructorAndMatchRoundtrip(t *testing.T) {
	src := "type Option\n  Some(value:int)\n  None\nend\n" +
		"def unwrap_or(x, default): match x\n  Some(v) => v\n  None => default\nend\n"
	state, _ := compile(t, src)
	fn := state.AllFunctions["unwrap_or"]
	if fn == nil {
		t.Fatalf("expected unwrap_or to be registered")
	}
	if !typesystem.IsConcrete(fn.Proto.TypeVar) && typesystem.Resolve(fn.Proto.TypeVar).Operator == nil {
		t.Fatalf("expected unwrap_or to at least resolve to a function operator")
	}
}

func TestFieldAccessResolvesDeclaredFieldType(t *testing.T) {
	src := "type Point\n  Point(x:int, y:int)\nend\n" +
		"def getx(p): p.x\n"
	state, _ := compile(t, src)
	fn := state.AllFunctions["getx"]
	ret, err := typesystem.GetFunctionReturnType(fn.Proto.TypeVar)
	if err != nil {
		t.Fatalf("expected function type: %v", err)
	}
	if typesystem.Resolve(ret) != typesystem.Resolve(typesystem.IntType) {
		t.Fatalf("expected p.x to resolve to int")
	}
}

func TestSequencedDoBlockTypesAsLastStatement(t *testing.T) {
	src := "def f(x): do\n  x\n  1\nend\n"
	state, _ := compile(t, src)
	fn := state.AllFunctions["f"]
	ret, err := typesystem.GetFunctionReturnType(fn.Proto.TypeVar)
	if err != nil {
		t.Fatalf("expected function type: %v", err)
	}
	if typesystem.Resolve(ret) != typesystem.Resolve(typesystem.IntType) {
		t.Fatalf("expected sequenced do-block to type as its last statement (int), got %v", typesystem.Resolve(ret))
	}
}

func TestCallSiteMonomorphizationRecordsMangledName(t *testing.T) {
	src := "def id(x): x\n" +
		"def use_id_int(y): id(1)\n"
	state, _ := compile(t, src)

	idFn := state.AllFunctions["id"]
	if typesystem.IsConcrete(idFn.Proto.TypeVar) {
		t.Fatalf("expected id's own declared type to remain generic, let-polymorphism instantiates a fresh copy per call site")
	}
	envs := state.FunctionEnvs["id"]
	if len(envs) != 1 {
		t.Fatalf("expected 1 recorded call-site environment for id, got %d", len(envs))
	}
}

func TestUnboundFunctionCallReportsError(t *testing.T) {
	state := module.New("test.bon")
	state.RegisterBuiltins()
	p := parser.New("test.bon", "def f(x): does_not_exist(x)\n", state)
	mod := p.ParseModule()
	scope.AnalyzeModule(mod)
	a := New(state, nil)
	if err := a.AnalyzeModule(mod); err == nil {
		t.Fatalf("expected an unbound-name error for does_not_exist")
	}
}

func TestArityMismatchReportsError(t *testing.T) {
	src := "def add(x, y): x + y\n" +
		"def bad(z): add(z)\n"
	state := module.New("test.bon")
	state.RegisterBuiltins()
	p := parser.New("test.bon", src, state)
	mod := p.ParseModule()
	scope.AnalyzeModule(mod)
	a := New(state, nil)
	if err := a.AnalyzeModule(mod); err == nil {
		t.Fatalf("expected an arity-mismatch error calling add with 1 argument")
	}
}

func TestUnboundFieldAccessReportsError(t *testing.T) {
	src := "type Point\n  Point(x:int, y:int)\nend\n" +
		"def getz(p): p.z\n"
	state := module.New("test.bon")
	state.RegisterBuiltins()
	p := parser.New("test.bon", src, state)
	mod := p.ParseModule()
	scope.AnalyzeModule(mod)
	a := New(state, nil)
	if err := a.AnalyzeModule(mod); err == nil {
		t.Fatalf("expected an unbound-name error for field 'z'")
	}
}
