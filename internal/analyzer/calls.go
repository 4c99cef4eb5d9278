package analyzer

import (
	"strconv"
	"strings"

	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/diagnostics"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// analyzeCall type-checks a function application. Mirrors
// CallExprAST::run_pass's three-way callee dispatch: a typeclass method
// (resolved against registered impls once argument types are concrete),
// a concrete top-level function (fresh-instantiated per call site for
// let-polymorphism), or an extern `cdef` prototype (never generalized,
// since foreign functions have exactly one concrete signature). The
// parser's `[e1, ...]` sugar desugars to a `vecN(...)` call before this
// pass ever sees it, so that callee shape is special-cased first.
func (a *Analyzer) analyzeCall(n *ast.Call) error {
	argTypes := make([]*typesystem.TypeVariable, len(n.Args))
	for i, arg := range n.Args {
		if err := a.Analyze(arg); err != nil {
			return err
		}
		argTypes[i] = arg.TypeVar()
	}

	if isVecCallee(n.Callee) {
		return a.analyzeVecCall(n, argTypes)
	}

	if typeclassName, ok := a.state.MethodToTypeclass[n.Callee]; ok {
		return a.analyzeTypeclassMethodCall(n, typeclassName, argTypes)
	}

	if fn, ok := a.state.AllFunctions[n.Callee]; ok {
		return a.analyzeConcreteFunctionCall(n, fn.Proto, argTypes)
	}

	if proto, ok := a.state.FunctionProtos[n.Callee]; ok {
		return a.analyzeExternCall(n, proto, argTypes)
	}

	return a.fail(n.Pos(), &diagnostics.UnboundName{Pos: n.Pos(), Name: n.Callee})
}

func (a *Analyzer) analyzeConcreteFunctionCall(n *ast.Call, proto *ast.Prototype, argTypes []*typesystem.TypeVariable) error {
	if len(argTypes) != len(proto.Params) {
		return a.fail(n.Pos(), &diagnostics.ArityMismatch{Pos: n.Pos(), Name: n.Callee, Want: len(proto.Params), Got: len(argTypes)})
	}
	fresh := typesystem.Instantiate(proto.TypeVar)
	freshArgs, err := typesystem.GetFunctionArgTypes(fresh)
	if err != nil {
		retType := fresh // nullary function: TypeVar is just the return type
		return a.finishCall(n, argTypes, nil, retType)
	}
	retType, err := typesystem.GetFunctionReturnType(fresh)
	if err != nil {
		return a.fail(n.Pos(), err)
	}
	if err := a.finishCall(n, argTypes, freshArgs, retType); err != nil {
		return err
	}

	if typesystem.IsConcrete(fresh) {
		mangled := typesystem.MangledName(n.Callee, fresh)
		a.state.RecordFunctionEnv(n.Callee, mangled, a.env)
	}
	return nil
}

func (a *Analyzer) analyzeExternCall(n *ast.Call, proto *ast.Prototype, argTypes []*typesystem.TypeVariable) error {
	if len(argTypes) != len(proto.Params) {
		return a.fail(n.Pos(), &diagnostics.ArityMismatch{Pos: n.Pos(), Name: n.Callee, Want: len(proto.Params), Got: len(argTypes)})
	}
	// Extern prototypes describe exactly one concrete signature: no
	// instantiation, unify directly against the declared type variable.
	protoArgs, err := typesystem.GetFunctionArgTypes(proto.TypeVar)
	if err != nil {
		return a.finishCall(n, argTypes, nil, proto.TypeVar)
	}
	retType, err := typesystem.GetFunctionReturnType(proto.TypeVar)
	if err != nil {
		return a.fail(n.Pos(), err)
	}
	return a.finishCall(n, argTypes, protoArgs, retType)
}

func (a *Analyzer) analyzeTypeclassMethodCall(n *ast.Call, typeclassName string, argTypes []*typesystem.TypeVariable) error {
	retType := typesystem.NewVariable()
	callType := typesystem.BuildFunctionType(argTypes, retType)

	// Deferred resolution: only attempt to pick a concrete impl once
	// every argument type is concrete; until then the call type stays as
	// an open set of constraints other call sites/unification can still
	// narrow, matching the reference compiler's "defer until argument
	// types are concrete" rule.
	allConcrete := true
	for _, at := range argTypes {
		if !typesystem.IsConcrete(at) {
			allConcrete = false
			break
		}
	}

	n.SetTypeVar(retType)
	if !allConcrete {
		return nil
	}

	impl := a.state.TypeclassImplFunctionNode(n.Callee, callType)
	if impl == nil {
		return a.fail(n.Pos(), &diagnostics.NoMatchingImpl{
			Pos:      n.Pos(),
			Method:   n.Callee,
			TypeDesc: typesystem.TypeString(callType),
		})
	}
	if err := typesystem.Unify(impl.Proto.TypeVar, callType); err != nil {
		return a.fail(n.Pos(), err)
	}
	mangled := typesystem.MangledName(n.Callee, callType)
	a.state.RecordFunctionEnv(n.Callee, mangled, a.env)
	return nil
}

func isVecCallee(name string) bool {
	if !strings.HasPrefix(name, "vec") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(name, "vec"))
	return err == nil
}

// analyzeVecCall types a desugared list literal as a homogeneous list:
// every already-analyzed argument unifies against one shared element
// type, and the call node's type becomes Cons's list type applied to
// that element.
func (a *Analyzer) analyzeVecCall(n *ast.Call, argTypes []*typesystem.TypeVariable) error {
	info, ok := a.state.Constructors.GetConstructorInfo("Cons")
	if !ok {
		return a.fail(n.Pos(), &diagnostics.InternalError{Message: "list builtins not registered"})
	}
	consType := typesystem.BuildFromTypeConstructor(info.ArgTypes, info.ParentType)
	freshCons := typesystem.Instantiate(consType)

	elemType := typesystem.NewVariable()
	listType := typesystem.Instantiate(info.ParentType)
	if consArgs, err := typesystem.GetFunctionArgTypes(freshCons); err == nil && len(consArgs) > 0 {
		elemType = consArgs[0]
	}
	if ret, err := typesystem.GetFunctionReturnType(freshCons); err == nil {
		listType = ret
	}

	for _, at := range argTypes {
		if err := typesystem.Unify(at, elemType); err != nil {
			return a.fail(n.Pos(), err)
		}
	}
	n.SetTypeVar(listType)
	return nil
}

// finishCall unifies each argument's type against the callee's declared
// parameter types (when known) and sets the call node's own type to
// retType.
func (a *Analyzer) finishCall(n *ast.Call, argTypes, paramTypes []*typesystem.TypeVariable, retType *typesystem.TypeVariable) error {
	if paramTypes != nil {
		for i, at := range argTypes {
			if err := typesystem.Unify(at, paramTypes[i]); err != nil {
				return a.fail(n.Pos(), err)
			}
		}
	}
	n.SetTypeVar(retType)
	return nil
}
