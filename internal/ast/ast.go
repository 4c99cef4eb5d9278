// Package ast defines Bon's abstract syntax tree. Each node kind is a
// concrete Go struct implementing Expr, following the reference bon
// compiler's ExprAST hierarchy (bonAST.h) rather than an open visitor
// interface: a closed type switch is exhaustive and easier to keep
// correct than virtual dispatch for a front-end of this size.
package ast

import (
	"github.com/daniel-p-gonzalez/bon/internal/token"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// Expr is satisfied by every AST expression node.
type Expr interface {
	Pos() token.Position
	TypeVar() *typesystem.TypeVariable
	SetTypeVar(*typesystem.TypeVariable)
	EndsScope() bool
	SetEndsScope(bool)
}

// base carries the fields common to every expression node.
type base struct {
	pos       token.Position
	typeVar   *typesystem.TypeVariable
	endsScope bool
}

func (b *base) Pos() token.Position                          { return b.pos }
func (b *base) TypeVar() *typesystem.TypeVariable             { return b.typeVar }
func (b *base) SetTypeVar(tv *typesystem.TypeVariable)         { b.typeVar = tv }
func (b *base) EndsScope() bool                                { return b.endsScope }
func (b *base) SetEndsScope(v bool)                             { b.endsScope = v }

func newBase(pos token.Position) base { return base{pos: pos} }

// IntLiteral is an integer literal, e.g. 42.
type IntLiteral struct {
	base
	Value int64
}

func NewIntLiteral(pos token.Position, v int64) *IntLiteral {
	return &IntLiteral{base: newBase(pos), Value: v}
}

// FloatLiteral is a floating point literal, e.g. 3.14.
type FloatLiteral struct {
	base
	Value float64
}

func NewFloatLiteral(pos token.Position, v float64) *FloatLiteral {
	return &FloatLiteral{base: newBase(pos), Value: v}
}

// StringLiteral is a string literal.
type StringLiteral struct {
	base
	Value string
}

func NewStringLiteral(pos token.Position, v string) *StringLiteral {
	return &StringLiteral{base: newBase(pos), Value: v}
}

// BoolLiteral is a boolean literal.
type BoolLiteral struct {
	base
	Value bool
}

func NewBoolLiteral(pos token.Position, v bool) *BoolLiteral {
	return &BoolLiteral{base: newBase(pos), Value: v}
}

// UnitLiteral is the unit value `()`.
type UnitLiteral struct{ base }

func NewUnitLiteral(pos token.Position) *UnitLiteral { return &UnitLiteral{base: newBase(pos)} }

// Variable is a reference to a named value in scope.
type Variable struct {
	base
	Name string
}

func NewVariable(pos token.Position, name string) *Variable {
	return &Variable{base: newBase(pos), Name: name}
}

// Unary is a prefix unary operator application.
type Unary struct {
	base
	Op      token.Type
	Operand Expr
}

func NewUnary(pos token.Position, op token.Type, operand Expr) *Unary {
	return &Unary{base: newBase(pos), Op: op, Operand: operand}
}

// Binary is an infix binary operator application.
type Binary struct {
	base
	Op               token.Type
	LHS              Expr
	RHS              Expr
	// InheritChildType mirrors the parser's inherit_child_type flag
	// (spec §4.2/§4.5): for sequencing, `and`, and `or`, the parent
	// node's type is taken from the RHS rather than unifying LHS/RHS.
	InheritChildType bool
}

// inheritChildTypeOps are the binary operators that take their result
// type from the RHS instead of unifying LHS against RHS. Cons and
// field access never reach NewBinary (they desugar to ValueConstructor
// and FieldAccess respectively), so sequencing, `and`, and `or` are the
// only members that actually arise here.
var inheritChildTypeOps = map[token.Type]bool{
	token.AND:  true,
	token.OR:   true,
	token.SEMI: true,
}

func NewBinary(pos token.Position, op token.Type, lhs, rhs Expr) *Binary {
	return &Binary{base: newBase(pos), Op: op, LHS: lhs, RHS: rhs, InheritChildType: inheritChildTypeOps[op]}
}

// FieldAccess is a bare field read `e.f` (no trailing call), resolved
// against whichever registered constructor declares a field named
// Field.
type FieldAccess struct {
	base
	Receiver Expr
	Field    string
}

func NewFieldAccess(pos token.Position, receiver Expr, field string) *FieldAccess {
	return &FieldAccess{base: newBase(pos), Receiver: receiver, Field: field}
}

// Call is a function application, either to a named callee or a
// typeclass method resolved at type-analysis time.
type Call struct {
	base
	Callee string
	Args   []Expr
}

func NewCall(pos token.Position, callee string, args []Expr) *Call {
	return &Call{base: newBase(pos), Callee: callee, Args: args}
}

// ValueConstructor builds a value of a sum type via one of its named
// constructors, e.g. Some(5).
type ValueConstructor struct {
	base
	Name string
	Args []Expr
}

func NewValueConstructor(pos token.Position, name string, args []Expr) *ValueConstructor {
	return &ValueConstructor{base: newBase(pos), Name: name, Args: args}
}

// Tuple is a parenthesized comma-separated list, e.g. (1, "a", true).
type Tuple struct {
	base
	Elems []Expr
}

func NewTuple(pos token.Position, elems []Expr) *Tuple {
	return &Tuple{base: newBase(pos), Elems: elems}
}

// If is a conditional expression.
type If struct {
	base
	Cond Expr
	Then Expr
	Else Expr
}

func NewIf(pos token.Position, cond, then, els Expr) *If {
	return &If{base: newBase(pos), Cond: cond, Then: then, Else: els}
}

// MatchCase is a single `Ctor(bindings...) => body` arm of a match
// expression.
type MatchCase struct {
	base
	Constructor string
	Bindings    []string
	Body        Expr
}

func NewMatchCase(pos token.Position, ctor string, bindings []string, body Expr) *MatchCase {
	return &MatchCase{base: newBase(pos), Constructor: ctor, Bindings: bindings, Body: body}
}

// Match is a pattern match over a sum-typed scrutinee.
type Match struct {
	base
	Scrutinee Expr
	Cases     []*MatchCase
}

func NewMatch(pos token.Position, scrutinee Expr, cases []*MatchCase) *Match {
	return &Match{base: newBase(pos), Scrutinee: scrutinee, Cases: cases}
}

// While is a while-loop, carried for side effects only (unit-typed).
type While struct {
	base
	Cond Expr
	Body Expr
}

func NewWhile(pos token.Position, cond, body Expr) *While {
	return &While{base: newBase(pos), Cond: cond, Body: body}
}

// SizeOf is the `sizeof(Type)` builtin.
type SizeOf struct {
	base
	TypeName string
}

func NewSizeOf(pos token.Position, typeName string) *SizeOf {
	return &SizeOf{base: newBase(pos), TypeName: typeName}
}

// PtrOffset is the `ptr_offset(ptr, n)` builtin.
type PtrOffset struct {
	base
	Ptr  Expr
	Offset Expr
}

func NewPtrOffset(pos token.Position, ptr, offset Expr) *PtrOffset {
	return &PtrOffset{base: newBase(pos), Ptr: ptr, Offset: offset}
}

// Param is a single named function parameter, with an optional declared
// type (`name:Type`); Declared is nil for an unannotated parameter, in
// which case the parser puts a fresh unconstrained variable in that
// parameter's slot of the prototype's function type.
type Param struct {
	Name     string
	Pos      token.Position
	Declared *typesystem.TypeVariable
}

// Prototype is a function signature: name, parameters, and return type.
// TypeVar always holds the full `(param...) -> ret` function type;
// Params[i].Declared records an explicit `:Type` annotation, and
// ReturnDeclared holds the parsed `-> RetType` annotation or, when there
// is none, a fresh variable. Both are the same variables that appear in
// TypeVar, so annotations (cdef signatures, class method prototypes)
// constrain the analyzer's unification against TypeVar.
type Prototype struct {
	Name           string
	Params         []Param
	Pos            token.Position
	TypeVar        *typesystem.TypeVariable
	ReturnDeclared *typesystem.TypeVariable
	IsExtern       bool
}

// FunctionDecl is a top-level function definition.
type FunctionDecl struct {
	Proto   *Prototype
	Body    Expr
	TypeEnv *typesystem.Env
}

// TypeCtor is one constructor line of a `type Name<T...>` declaration:
// `Ctor`, `Ctor(Type, ...)`, or `Ctor(name:Type, ...)`. FieldNames[i] is
// "" for a positional (unnamed) field, which is not reachable through
// field-access but still occupies ArgTypes[i].
type TypeCtor struct {
	Name       string
	FieldNames []string
	ArgTypes   []*typesystem.TypeVariable
}

// TypeDecl is a `type Name<T1,T2>\n  Ctor1\n  Ctor2(fields...)\nend`
// declaration. Generics names the type's own parameters (T1, T2, ...),
// each bound to a shared TypeVariable reused across every constructor's
// field-type expressions so recursive generic types (e.g. List<T> =
// Empty | Cons(T, List<T>)) unify correctly. SelfType is the variant's
// own TypeVariable, registered before constructors are parsed so a
// constructor field can reference the type being declared.
type TypeDecl struct {
	Name     string
	Generics []string
	Ctors    []TypeCtor
	Pos      token.Position
	SelfType *typesystem.TypeVariable
}

// TypeclassDecl declares a typeclass with its abstract method
// prototypes. Generics names the typeclass's own type parameters
// (e.g. the T in `class Show<T>`).
type TypeclassDecl struct {
	Name     string
	Generics []string
	Methods  []*Prototype
	Pos      token.Position
}

// TypeclassImpl implements a typeclass for a specific concrete type.
// ConcreteTypeName records the `<int>` in `impl Show<int>` for
// diagnostics; resolution itself is structural, via unification.
type TypeclassImpl struct {
	TypeclassName     string
	ConcreteTypeName  string
	Methods           map[string]*FunctionDecl
	Pos               token.Position
}

// Module is a single parsed source file's top-level declarations, in
// source order, plus an overall list of every anonymous top-level
// expression as its own zero-arg function (matching bonModuleState's
// toplevel_expressions field).
type Module struct {
	Functions          []*FunctionDecl
	Types              []*TypeDecl
	Typeclasses        []*TypeclassDecl
	TypeclassImpls     []*TypeclassImpl
	Externs            []*Prototype
	ToplevelExpressions []*FunctionDecl
}
