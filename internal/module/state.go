// Package module holds the per-compile-unit state threaded through the
// parser and type-analysis passes: function/typeclass/extern registries,
// the constructor registry, and the final ordered function list handed
// to the code-gen boundary. Ported from the reference compiler's
// ModuleState (bonModuleState.h/.cc), dropping its LLVM-specific fields
// (llvm_context, builder, current_module, struct_map as a literal LLVM
// handle) — those live out of scope behind internal/backend instead.
package module

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// FunctionEnv records one monomorphized call site's captured type
// environment for a generic function, tagged with that instantiation's
// mangled name — matching ModuleState::function_envs's
// map<string, vector<pair<mangled_name, TypeEnv>>> shape.
type FunctionEnv struct {
	MangledName string
	Env         *typesystem.Env
}

// State is the registry threaded through parsing and type analysis for
// a single compiled module (one file plus its transitive imports).
type State struct {
	Filename string

	// FunctionEnvs maps an unmangled function name to every
	// monomorphized call-site environment recorded for it.
	FunctionEnvs map[string][]*FunctionEnv

	MethodToTypeclass map[string]string
	Typeclasses       map[string]*ast.TypeclassDecl
	TypeclassImpls    map[string][]*ast.TypeclassImpl

	AllFunctions   map[string]*ast.FunctionDecl
	FunctionProtos map[string]*ast.Prototype
	FunctionNames  []string

	ToplevelExpressions []*ast.FunctionDecl
	OrderedFunctions    []*ast.FunctionDecl

	Constructors *typesystem.Registry

	// TypeParents maps a declared type name (`type List<T> ...`) to its
	// own variant TypeVariable, so a later constructor field typed
	// `List<T>` can reference the type being built instead of allocating
	// an unconstrained fresh variable.
	TypeParents map[string]*typesystem.TypeVariable
	// TypeGenerics maps a declared type name to its generic parameter
	// names in declaration order. The parser records it but does not
	// check `Name<Arg>` references against it, so a wrong number of type
	// arguments is not reported.
	TypeGenerics map[string][]string
}

// New creates an empty module State ready to receive parser output.
func New(filename string) *State {
	return &State{
		Filename:          filename,
		FunctionEnvs:      map[string][]*FunctionEnv{},
		MethodToTypeclass: map[string]string{},
		Typeclasses:       map[string]*ast.TypeclassDecl{},
		TypeclassImpls:    map[string][]*ast.TypeclassImpl{},
		AllFunctions:      map[string]*ast.FunctionDecl{},
		FunctionProtos:    map[string]*ast.Prototype{},
		Constructors:      typesystem.NewRegistry(),
		TypeParents:       map[string]*typesystem.TypeVariable{},
		TypeGenerics:      map[string][]string{},
	}
}

// RegisterBuiltins seeds the constructor registry with the list type
// (`Nil | Cons(elem, list)`), which the parser's `[...]`/`::` sugar both
// assume exist without an explicit `type List = ...` declaration in
// source. Every other builtin (arithmetic, comparisons) is handled
// directly by the analyzer, not through the constructor registry.
func (s *State) RegisterBuiltins() {
	listType := typesystem.NewVariable()
	elem := typesystem.NewVariable()

	nilCtorType := listType
	consCtorType := typesystem.BuildFromTypeConstructor([]*typesystem.TypeVariable{elem, listType}, listType)

	variant := typesystem.BuildVariantType([]*typesystem.TypeVariable{nilCtorType, consCtorType})
	typesystem.Unify(listType, variant)

	s.Constructors.Register("Nil", listType, 0, nil, nil)
	s.Constructors.Register("Cons", listType, 1, []string{"head", "tail"}, []*typesystem.TypeVariable{elem, listType})
}

// RegisterFunction records a parsed top-level function definition.
func (s *State) RegisterFunction(fn *ast.FunctionDecl) {
	s.AllFunctions[fn.Proto.Name] = fn
	s.FunctionProtos[fn.Proto.Name] = fn.Proto
	s.FunctionNames = append(s.FunctionNames, fn.Proto.Name)
}

// RegisterExtern records a `cdef` prototype with no body.
func (s *State) RegisterExtern(p *ast.Prototype) {
	p.IsExtern = true
	s.FunctionProtos[p.Name] = p
}

// RegisterTypeclass records a typeclass declaration and its methods'
// owning typeclass, so a later method call can be routed to impl
// resolution.
func (s *State) RegisterTypeclass(tc *ast.TypeclassDecl) {
	s.Typeclasses[tc.Name] = tc
	for _, m := range tc.Methods {
		s.MethodToTypeclass[m.Name] = tc.Name
	}
}

// RegisterTypeclassImpl records one `impl Typeclass<Type>` block.
func (s *State) RegisterTypeclassImpl(impl *ast.TypeclassImpl) {
	s.TypeclassImpls[impl.TypeclassName] = append(s.TypeclassImpls[impl.TypeclassName], impl)
}

// AddAnonymousToplevelExpression wraps a bare top-level expression
// statement in a synthetic zero-argument function, named with a uuid
// suffix rather than a positional counter (so re-running the compiler on
// the same file twice never collides on name, and multiple anonymous
// expressions in concurrently-processed imports can't collide either).
func (s *State) AddAnonymousToplevelExpression(body ast.Expr) *ast.FunctionDecl {
	name := fmt.Sprintf("__toplevel_%s", uuid.NewString())
	fn := &ast.FunctionDecl{
		Proto: &ast.Prototype{Name: name, TypeVar: typesystem.NewVariable()},
		Body:  body,
	}
	s.ToplevelExpressions = append(s.ToplevelExpressions, fn)
	s.AllFunctions[name] = fn
	s.FunctionNames = append(s.FunctionNames, name)
	return fn
}

// RecordFunctionEnv appends a monomorphized call-site environment for a
// generic function, used later to drive monomorphization at the code-gen
// boundary.
func (s *State) RecordFunctionEnv(funcName, mangledName string, env *typesystem.Env) {
	s.FunctionEnvs[funcName] = append(s.FunctionEnvs[funcName], &FunctionEnv{
		MangledName: mangledName,
		Env:         env,
	})
}

// TypeclassImplFunctionNode finds the impl method whose type structurally
// matches funcTypeVar, mirroring ModuleState::get_typeclass_impl_function_node:
// iterate every impl of the typeclass owning methodName, probe each
// method's (resolved, not bound) type against funcTypeVar with a
// non-mutating structural match, and return the first that could unify.
func (s *State) TypeclassImplFunctionNode(methodName string, funcTypeVar *typesystem.TypeVariable) *ast.FunctionDecl {
	typeclassName, ok := s.MethodToTypeclass[methodName]
	if !ok {
		return nil
	}
	for _, impl := range s.TypeclassImpls[typeclassName] {
		method, ok := impl.Methods[methodName]
		if !ok || method == nil {
			continue
		}
		methodTypeVar := method.Proto.TypeVar
		if methodTypeVar == nil {
			continue
		}
		if typesystem.Resolve(methodTypeVar).Operator != nil && typesystem.Resolve(funcTypeVar).Operator != nil {
			if typesystem.MatchTypeOperators(methodTypeVar, funcTypeVar) {
				return method
			}
		}
	}
	return nil
}

// OrderFunctions topologically sorts AllFunctions into OrderedFunctions,
// matching the reference compiler's ordered_functions field (functions
// are emitted to the code-gen boundary in dependency order: callees
// before callers, falling back to declaration order for mutually
// recursive or unrelated functions).
func (s *State) OrderFunctions(callGraph map[string][]string) {
	visited := map[string]bool{}
	var order []*ast.FunctionDecl
	var visit func(name string)
	visit = func(name string) {
		if visited[name] {
			return
		}
		visited[name] = true
		for _, callee := range callGraph[name] {
			visit(callee)
		}
		if fn, ok := s.AllFunctions[name]; ok {
			order = append(order, fn)
		}
	}
	for _, name := range s.FunctionNames {
		visit(name)
	}
	s.OrderedFunctions = order
}
