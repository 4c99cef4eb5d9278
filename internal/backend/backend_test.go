package backend

import (
	"errors"
	"testing"

	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/module"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

type fakeEmitter struct {
	externs   []string
	functions []string
	failOn    string
}

func (f *fakeEmitter) EmitFunction(fn *ast.FunctionDecl, mangledName string) error {
	if mangledName == f.failOn {
		return errors.New("boom")
	}
	f.functions = append(f.functions, mangledName)
	return nil
}

func (f *fakeEmitter) EmitStruct(layout StructLayout) error { return nil }

func (f *fakeEmitter) EmitExtern(proto *ast.Prototype) error {
	f.externs = append(f.externs, proto.Name)
	return nil
}

func newTestState() *module.State {
	s := module.New("test.bon")
	helper := &ast.FunctionDecl{Proto: &ast.Prototype{Name: "helper", TypeVar: typesystem.NewVariable()}}
	caller := &ast.FunctionDecl{Proto: &ast.Prototype{Name: "caller", TypeVar: typesystem.NewVariable()}}
	s.RegisterFunction(helper)
	s.RegisterFunction(caller)
	s.RegisterExtern(&ast.Prototype{Name: "puts", TypeVar: typesystem.NewVariable()})
	s.OrderFunctions(map[string][]string{"caller": {"helper"}})
	return s
}

func TestEmitDrivesExternsThenOrderedFunctions(t *testing.T) {
	s := newTestState()
	b := NewBoundary(s)
	e := &fakeEmitter{}

	if err := Emit(b, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(e.externs) != 1 || e.externs[0] != "puts" {
		t.Fatalf("expected extern 'puts' to be emitted, got %v", e.externs)
	}
	if len(e.functions) != 2 || e.functions[0] != "helper" || e.functions[1] != "caller" {
		t.Fatalf("expected helper then caller, got %v", e.functions)
	}
}

func TestEmitPropagatesEmitterError(t *testing.T) {
	s := newTestState()
	b := NewBoundary(s)
	e := &fakeEmitter{failOn: "caller"}

	if err := Emit(b, e); err == nil {
		t.Fatalf("expected Emit to propagate the emitter's error")
	}
}

func TestStructMapBuildsLayoutFromRegistry(t *testing.T) {
	reg := typesystem.NewRegistry()
	parent := typesystem.NewVariable()
	elemA := typesystem.NewVariable()
	if err := reg.Register("Pair", parent, 0, []string{"fst", "snd"}, []*typesystem.TypeVariable{elemA, elemA}); err != nil {
		t.Fatalf("register: %v", err)
	}

	b := NewBoundary(module.New("test.bon"))
	layouts := b.StructMap(reg, []string{"Pair", "Missing"})
	if len(layouts) != 1 {
		t.Fatalf("expected exactly 1 layout (unregistered names skipped), got %d", len(layouts))
	}
	layout, ok := layouts["Pair"]
	if !ok {
		t.Fatalf("expected a layout for Pair")
	}
	if len(layout.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(layout.Fields))
	}
}
