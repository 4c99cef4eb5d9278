// Package parser implements Bon's recursive-descent, precedence-climbing
// parser. Grounded on the reference compiler's bonParser.h method list
// (one parse_* method per construct) and bonParser.cc's precedence
// table; Go idiom (error slices rather than thrown exceptions) follows
// funvibe-funxy's internal/parser, with the whole parser in this one file.
package parser

import (
	"fmt"
	"strconv"

	"github.com/daniel-p-gonzalez/bon/internal/ast"
	"github.com/daniel-p-gonzalez/bon/internal/diagnostics"
	"github.com/daniel-p-gonzalez/bon/internal/lexer"
	"github.com/daniel-p-gonzalez/bon/internal/module"
	"github.com/daniel-p-gonzalez/bon/internal/token"
	"github.com/daniel-p-gonzalez/bon/internal/typesystem"
)

// precedence is the binary-operator precedence table, matching the
// reference compiler's binop_precedence_ map.
var precedence = map[token.Type]int{
	token.OR:      10,
	token.AND:     20,
	token.EQEQ:    30,
	token.NEQ:     30,
	token.LT:      30,
	token.LE:      30,
	token.GT:      30,
	token.GE:      30,
	token.CONS:    35,
	token.PLUS:    40,
	token.MINUS:   40,
	token.STAR:    50,
	token.SLASH:   50,
	token.PERCENT: 50,
	token.DOT:     60,
}

// maxErrorsBeforeAbort bounds how many syntax errors ParseModule
// accumulates before it stops reading top-level declarations. It is
// separate from diagnostics.Logger's own ceiling: the parser keeps its
// errors in a slice and has no Logger attached.
const maxErrorsBeforeAbort = 50

// Parser builds an ast.Module from a token stream.
type Parser struct {
	lex   *lexer.Lexer
	state *module.State

	cur, next token.Token

	errors []error

	// scopeStack mirrors the reference compiler's scope_stack_: it holds
	// the typeclass name while an impl block is parsed. Nothing reads it;
	// impl methods are stored under their unqualified names.
	scopeStack []string
}

// New creates a Parser over src, registering declarations into state.
func New(filename, src string, state *module.State) *Parser {
	p := &Parser{lex: lexer.New(filename, src), state: state}
	p.advance()
	p.advance()
	return p
}

// Errors returns every syntax error accumulated during ParseModule.
func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) advance() {
	p.cur = p.next
	p.next = p.lex.NextToken()
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errors = append(p.errors, &diagnostics.SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type == t {
		p.advance()
		return true
	}
	p.errorf(p.cur.Pos, "expected %s, got %s", t, p.cur.Type)
	return false
}

// ParseModule parses every top-level declaration in the token stream,
// registering functions/types/typeclasses/impls/externs into p.state and
// collecting bare top-level expressions as anonymous functions. Toplevel
// expression statements are `;`-separated, e.g. `id(1); id("a")`.
func (p *Parser) ParseModule() *ast.Module {
	m := &ast.Module{}
	for p.cur.Type != token.EOF && len(p.errors) < maxErrorsBeforeAbort {
		switch p.cur.Type {
		case token.NEWLINE, token.INDENT, token.DEDENT, token.SEMI:
			p.advance()
			continue
		case token.IMPORT:
			p.parseImport()
		case token.DEF:
			fn := p.parseDefinition()
			if fn != nil {
				m.Functions = append(m.Functions, fn)
				p.state.RegisterFunction(fn)
			}
		case token.EXTERN:
			proto := p.parseExtern()
			if proto != nil {
				m.Externs = append(m.Externs, proto)
				p.state.RegisterExtern(proto)
			}
		case token.TYPE:
			td := p.parseType()
			if td != nil {
				m.Types = append(m.Types, td)
				p.registerTypeDecl(td)
			}
		case token.CLASS:
			tc := p.parseTypeclass()
			if tc != nil {
				m.Typeclasses = append(m.Typeclasses, tc)
				p.state.RegisterTypeclass(tc)
			}
		case token.IMPL:
			impl := p.parseTypeclassImpl()
			if impl != nil {
				m.TypeclassImpls = append(m.TypeclassImpls, impl)
				p.state.RegisterTypeclassImpl(impl)
			}
		default:
			expr := p.parseExpression()
			if expr != nil {
				fn := p.state.AddAnonymousToplevelExpression(expr)
				m.ToplevelExpressions = append(m.ToplevelExpressions, fn)
			} else {
				p.advance()
			}
			if p.cur.Type == token.SEMI {
				p.advance()
			}
		}
	}
	return m
}

// parseImport consumes `import name` and returns the bare module name.
// ParseModule discards the result: the named module is not resolved,
// read, or parsed, so nothing it declares reaches p.state.
func (p *Parser) parseImport() string {
	p.advance() // 'import'
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected module name after 'import', got %s", p.cur.Type)
		return ""
	}
	name := p.cur.Literal
	p.advance()
	return name
}

// parseExtern parses `cdef name(arg:Type, ...) -> RetType;`.
func (p *Parser) parseExtern() *ast.Prototype {
	pos := p.cur.Pos
	p.advance() // 'cdef'
	proto := p.parsePrototypeHeader(pos)
	if proto == nil {
		return nil
	}
	proto.IsExtern = true
	p.expect(token.SEMI)
	return proto
}

// parseTypedParamList parses a parenthesized, comma-separated parameter
// list where each parameter may carry a `:Type` annotation. generics (if
// non-nil) binds in-scope generic parameter names to their shared
// TypeVariable, for class method prototypes.
func (p *Parser) parseTypedParamList(generics map[string]*typesystem.TypeVariable) []ast.Param {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var params []ast.Param
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		if p.cur.Type != token.IDENT {
			p.errorf(p.cur.Pos, "expected parameter name, got %s", p.cur.Type)
			break
		}
		param := ast.Param{Name: p.cur.Literal, Pos: p.cur.Pos}
		p.advance()
		if p.cur.Type == token.COLON {
			p.advance()
			param.Declared = p.parseTypeExprWithSelf("", nil, generics)
		}
		params = append(params, param)
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parsePrototypeHeader parses `name(params...)` with optional `:Type`
// parameter annotations and an optional `-> RetType`, shared by plain
// function definitions, extern declarations, and class method
// prototypes (via parseMethodPrototype, which adds the trailing `;`).
func (p *Parser) parsePrototypeHeader(pos token.Position) *ast.Prototype {
	return p.parsePrototypeHeaderGeneric(pos, nil)
}

func (p *Parser) parsePrototypeHeaderGeneric(pos token.Position, generics map[string]*typesystem.TypeVariable) *ast.Prototype {
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected function name, got %s", p.cur.Type)
		return nil
	}
	name := p.cur.Literal
	p.advance()

	params := p.parseTypedParamList(generics)

	var ret *typesystem.TypeVariable
	if p.cur.Type == token.ARROW {
		p.advance()
		ret = p.parseTypeExprWithSelf("", nil, generics)
	} else {
		ret = typesystem.NewVariable()
	}

	paramTypes := make([]*typesystem.TypeVariable, len(params))
	for i, pm := range params {
		if pm.Declared != nil {
			paramTypes[i] = pm.Declared
		} else {
			paramTypes[i] = typesystem.NewVariable()
		}
	}
	return &ast.Prototype{
		Name:           name,
		Params:         params,
		Pos:            pos,
		TypeVar:        typesystem.BuildFunctionType(paramTypes, ret),
		ReturnDeclared: ret,
	}
}

// parseDefinition parses `def name(params...): body`.
func (p *Parser) parseDefinition() *ast.FunctionDecl {
	pos := p.cur.Pos
	p.advance() // 'def'
	proto := p.parsePrototypeHeader(pos)
	if proto == nil {
		return nil
	}
	if !p.expect(token.COLON) {
		return nil
	}
	body := p.parseBody()
	if body == nil {
		return nil
	}
	return &ast.FunctionDecl{Proto: proto, Body: body}
}

// parseBody parses a function/if/while body: either a `do ... end`
// statement sequence or a single expression (which may itself be a
// multi-line construct like `match`/`if` that carries its own `end`).
func (p *Parser) parseBody() ast.Expr {
	if p.cur.Type == token.DO {
		return p.parseDoBlock()
	}
	return p.parseExpression()
}

// parseDoBlock parses `do` followed by an indented sequence of
// statements (one per line, optionally `;`-separated), closed by `end`.
// Sequencing is represented as right-nested Binary nodes with
// Op = token.SEMI, whose inherit_child_type flag makes the block's type
// equal to its last statement's type.
func (p *Parser) parseDoBlock() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'do'
	if !p.expect(token.INDENT) {
		return nil
	}
	var stmts []ast.Expr
	for p.cur.Type != token.DEDENT && p.cur.Type != token.EOF {
		stmt := p.parseExpression()
		if stmt != nil {
			stmts = append(stmts, stmt)
		} else {
			p.advance()
		}
		if p.cur.Type == token.SEMI {
			p.advance()
		}
	}
	p.expect(token.DEDENT)
	p.expect(token.END)

	if len(stmts) == 0 {
		return ast.NewUnitLiteral(pos)
	}
	expr := stmts[len(stmts)-1]
	for i := len(stmts) - 2; i >= 0; i-- {
		expr = ast.NewBinary(stmts[i].Pos(), token.SEMI, stmts[i], expr)
	}
	return expr
}

// parseGenericParams parses `<T1, T2, ...>`, used by `type`/`class`
// declarations to introduce their own generic parameter names.
func (p *Parser) parseGenericParams() []string {
	if !p.expect(token.LT) {
		return nil
	}
	var names []string
	for p.cur.Type != token.GT && p.cur.Type != token.EOF {
		if p.cur.Type == token.IDENT {
			names = append(names, p.cur.Literal)
			p.advance()
		}
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.GT)
	return names
}

// parseTypeExprWithSelf parses a type-annotation expression: a type name
// optionally followed by `<Arg1, Arg2, ...>`. selfName/selfType let a
// type declaration's own constructors refer back to the type being
// built (e.g. `Cons(T, List<T>)`); generics resolves the declaration's
// own generic parameter names to their shared TypeVariable. A reference
// to a previously-declared, unrelated type is given a fresh
// instantiation per the reference compiler's per-use freshening of
// generic type parameters; its own `<...>` arguments are parsed (so the
// token stream stays in sync) but not threaded through, since the
// registry does not track per-declaration generic argument slots.
func (p *Parser) parseTypeExprWithSelf(selfName string, selfType *typesystem.TypeVariable, generics map[string]*typesystem.TypeVariable) *typesystem.TypeVariable {
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected type name, got %s", p.cur.Type)
		return typesystem.NewVariable()
	}
	name := p.cur.Literal
	pos := p.cur.Pos
	p.advance()

	if p.cur.Type == token.LT {
		p.advance()
		for p.cur.Type != token.GT && p.cur.Type != token.EOF {
			p.parseTypeExprWithSelf(selfName, selfType, generics)
			if p.cur.Type == token.COMMA {
				p.advance()
			}
		}
		p.expect(token.GT)
	}

	if prim, ok := typesystem.TypeVariableFromIdentifier(name); ok {
		return prim
	}
	if name == "unit" {
		return typesystem.UnitType
	}
	if tv, ok := generics[name]; ok {
		return tv
	}
	if selfType != nil && name == selfName {
		return selfType
	}
	if parent, ok := p.state.TypeParents[name]; ok {
		return typesystem.Instantiate(parent)
	}

	p.errorf(pos, "unknown type %q", name)
	return typesystem.NewVariable()
}

func (p *Parser) registerTypeDecl(td *ast.TypeDecl) {
	ctorTypes := make([]*typesystem.TypeVariable, len(td.Ctors))
	for i, ctor := range td.Ctors {
		ctorTypes[i] = typesystem.BuildFromTypeConstructor(ctor.ArgTypes, td.SelfType)
		if err := p.state.Constructors.Register(ctor.Name, td.SelfType, i, ctor.FieldNames, ctor.ArgTypes); err != nil {
			p.errorf(td.Pos, "%s", err)
		}
	}
	variant := typesystem.BuildVariantType(ctorTypes)
	if err := typesystem.Unify(td.SelfType, variant); err != nil {
		p.errorf(td.Pos, "internal: failed to unify declared type %q: %s", td.Name, err)
	}
}

// parseType parses:
//
//	type Name<T1,T2>
//	  Ctor1
//	  Ctor2(field:Type, ...)
//	end
func (p *Parser) parseType() *ast.TypeDecl {
	pos := p.cur.Pos
	p.advance() // 'type'
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected type name, got %s", p.cur.Type)
		return nil
	}
	name := p.cur.Literal
	p.advance()

	var generics []string
	if p.cur.Type == token.LT {
		generics = p.parseGenericParams()
	}
	genericVars := map[string]*typesystem.TypeVariable{}
	for _, g := range generics {
		genericVars[g] = typesystem.NewVariable()
	}

	selfType := typesystem.NewVariable()
	p.state.TypeParents[name] = selfType
	p.state.TypeGenerics[name] = generics

	td := &ast.TypeDecl{Name: name, Generics: generics, Pos: pos, SelfType: selfType}

	if !p.expect(token.INDENT) {
		return td
	}
	for p.cur.Type != token.DEDENT && p.cur.Type != token.EOF {
		ctor := p.parseTypeCtor(name, selfType, genericVars)
		td.Ctors = append(td.Ctors, ctor)
	}
	p.expect(token.DEDENT)
	p.expect(token.END)
	return td
}

func (p *Parser) parseTypeCtor(selfName string, selfType *typesystem.TypeVariable, generics map[string]*typesystem.TypeVariable) ast.TypeCtor {
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected constructor name, got %s", p.cur.Type)
		p.advance()
		return ast.TypeCtor{}
	}
	ctor := ast.TypeCtor{Name: p.cur.Literal}
	p.advance()
	if p.cur.Type == token.LPAREN {
		p.advance()
		for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
			fieldName, argType := p.parseCtorField(selfName, selfType, generics)
			ctor.FieldNames = append(ctor.FieldNames, fieldName)
			ctor.ArgTypes = append(ctor.ArgTypes, argType)
			if p.cur.Type == token.COMMA {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
	}
	return ctor
}

// parseCtorField parses one constructor field: a bare type (positional,
// e.g. `List<T>`) or a named field (`head:T`) — distinguished by
// whether the identifier is immediately followed by `:`.
func (p *Parser) parseCtorField(selfName string, selfType *typesystem.TypeVariable, generics map[string]*typesystem.TypeVariable) (string, *typesystem.TypeVariable) {
	if p.cur.Type == token.IDENT && p.next.Type == token.COLON {
		name := p.cur.Literal
		p.advance()
		p.advance() // ':'
		return name, p.parseTypeExprWithSelf(selfName, selfType, generics)
	}
	return "", p.parseTypeExprWithSelf(selfName, selfType, generics)
}

// parseTypeclass parses:
//
//	class Show<T>
//	  def show(x:T) -> string;
//	end
func (p *Parser) parseTypeclass() *ast.TypeclassDecl {
	pos := p.cur.Pos
	p.advance() // 'class'
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected class name, got %s", p.cur.Type)
		return nil
	}
	name := p.cur.Literal
	p.advance()

	var generics []string
	if p.cur.Type == token.LT {
		generics = p.parseGenericParams()
	}
	genericVars := map[string]*typesystem.TypeVariable{}
	for _, g := range generics {
		genericVars[g] = typesystem.NewVariable()
	}

	tc := &ast.TypeclassDecl{Name: name, Generics: generics, Pos: pos}
	if !p.expect(token.INDENT) {
		return tc
	}
	for p.cur.Type == token.DEF {
		proto := p.parseMethodPrototype(genericVars)
		if proto != nil {
			tc.Methods = append(tc.Methods, proto)
		} else {
			break
		}
	}
	p.expect(token.DEDENT)
	p.expect(token.END)
	return tc
}

// parseMethodPrototype parses `def name(x:T, ...) -> RetType;`, a class
// method's abstract prototype.
func (p *Parser) parseMethodPrototype(generics map[string]*typesystem.TypeVariable) *ast.Prototype {
	pos := p.cur.Pos
	p.advance() // 'def'
	proto := p.parsePrototypeHeaderGeneric(pos, generics)
	if proto == nil {
		return nil
	}
	p.expect(token.SEMI)
	return proto
}

// parseTypeclassImpl parses:
//
//	impl Show<int>
//	  def show(x): int_to_string(x)
//	end
func (p *Parser) parseTypeclassImpl() *ast.TypeclassImpl {
	pos := p.cur.Pos
	p.advance() // 'impl'
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected typeclass name, got %s", p.cur.Type)
		return nil
	}
	typeclassName := p.cur.Literal
	p.advance()

	concreteTypeName := ""
	if p.cur.Type == token.LT {
		p.advance()
		if p.cur.Type == token.IDENT {
			concreteTypeName = p.cur.Literal
		}
		p.parseTypeExprWithSelf("", nil, nil)
		for p.cur.Type == token.COMMA {
			p.advance()
			p.parseTypeExprWithSelf("", nil, nil)
		}
		p.expect(token.GT)
	}

	impl := &ast.TypeclassImpl{TypeclassName: typeclassName, ConcreteTypeName: concreteTypeName, Methods: map[string]*ast.FunctionDecl{}, Pos: pos}
	p.scopeStack = append(p.scopeStack, typeclassName)
	defer func() { p.scopeStack = p.scopeStack[:len(p.scopeStack)-1] }()

	if !p.expect(token.INDENT) {
		return impl
	}
	for p.cur.Type == token.DEF {
		fn := p.parseDefinition()
		if fn == nil {
			break
		}
		impl.Methods[fn.Proto.Name] = fn
	}
	p.expect(token.DEDENT)
	p.expect(token.END)
	return impl
}

// parseExpression is the entry point for precedence-climbing parse.
func (p *Parser) parseExpression() ast.Expr {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	return p.parseBinOpRHS(0, lhs)
}

func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) ast.Expr {
	for {
		prec, ok := precedence[p.cur.Type]
		if !ok || prec < minPrec {
			return lhs
		}
		op := p.cur.Type
		opPos := p.cur.Pos
		p.advance()

		if op == token.DOT {
			lhs = p.parseDotExpr(lhs, opPos)
			continue
		}
		if op == token.CONS {
			rhs := p.parseUnary()
			rhs = p.parseBinOpRHS(prec+1, rhs)
			lhs = ast.NewValueConstructor(opPos, "Cons", []ast.Expr{lhs, rhs})
			continue
		}

		rhs := p.parseUnary()
		if rhs == nil {
			return lhs
		}
		for {
			nextPrec, ok := precedence[p.cur.Type]
			if !ok || nextPrec <= prec {
				break
			}
			rhs = p.parseBinOpRHS(prec+1, rhs)
		}
		lhs = ast.NewBinary(opPos, op, lhs, rhs)
	}
}

// parseDotExpr parses the RHS of an infix `.`: `recv.f(args...)`
// desugars to a method-style call `f(recv, args...)`; a bare `recv.f`
// with no trailing call is a field access.
func (p *Parser) parseDotExpr(recv ast.Expr, pos token.Position) ast.Expr {
	if p.cur.Type != token.IDENT {
		p.errorf(p.cur.Pos, "expected field or method name after '.', got %s", p.cur.Type)
		return recv
	}
	name := p.cur.Literal
	p.advance()

	if p.cur.Type != token.LPAREN {
		return ast.NewFieldAccess(pos, recv, name)
	}

	p.advance() // '('
	args := []ast.Expr{recv}
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		arg := p.parseExpression()
		if arg != nil {
			args = append(args, arg)
		}
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return ast.NewCall(pos, name, args)
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Type {
	case token.MINUS, token.NOT:
		op := p.cur.Type
		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		return ast.NewUnary(pos, op, operand)
	case token.RETURN, token.NEW:
		// Both are transparent prefixes at this semantic tier: `return x`
		// and `new x` carry no AST node of their own, they simply parse
		// through to the wrapped expression.
		p.advance()
		return p.parseExpression()
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur.Type {
	case token.INT:
		return p.parseIntegerExpr()
	case token.FLOAT:
		return p.parseNumberExpr()
	case token.STRING:
		return p.parseStringExpr()
	case token.BOOL:
		return p.parseBoolExpr()
	case token.UNIT:
		return p.parseUnitExpr()
	case token.LPAREN:
		return p.parseParenExpr()
	case token.LBRACKET:
		return p.parseListConstructor()
	case token.IF:
		return p.parseIfExpr()
	case token.MATCH:
		return p.parseMatchExpr()
	case token.WHILE:
		return p.parseWhileExpr()
	case token.SIZEOF:
		return p.parseSizeOfExpr()
	case token.PTROFFSET:
		return p.parsePtrOffsetExpr()
	case token.IDENT:
		return p.parseIdentifierExpr()
	default:
		p.errorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Type)
		p.advance()
		return nil
	}
}

func (p *Parser) parseIntegerExpr() ast.Expr {
	pos := p.cur.Pos
	v, err := strconv.ParseInt(p.cur.Literal, 10, 64)
	if err != nil {
		p.errorf(pos, "invalid integer literal %q", p.cur.Literal)
	}
	p.advance()
	return ast.NewIntLiteral(pos, v)
}

func (p *Parser) parseNumberExpr() ast.Expr {
	pos := p.cur.Pos
	v, err := strconv.ParseFloat(p.cur.Literal, 64)
	if err != nil {
		p.errorf(pos, "invalid float literal %q", p.cur.Literal)
	}
	p.advance()
	return ast.NewFloatLiteral(pos, v)
}

func (p *Parser) parseStringExpr() ast.Expr {
	pos := p.cur.Pos
	lit := p.cur.Literal
	p.advance()
	return ast.NewStringLiteral(pos, lit)
}

func (p *Parser) parseBoolExpr() ast.Expr {
	pos := p.cur.Pos
	v := p.cur.Literal == "true"
	p.advance()
	return ast.NewBoolLiteral(pos, v)
}

func (p *Parser) parseUnitExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance()
	return ast.NewUnitLiteral(pos)
}

// parseParenExpr parses `(expr)` or, with a comma inside, a tuple
// constructor `(e1, e2, ...)`.
func (p *Parser) parseParenExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // '('
	first := p.parseExpression()
	if p.cur.Type == token.COMMA {
		elems := []ast.Expr{first}
		for p.cur.Type == token.COMMA {
			p.advance()
			e := p.parseExpression()
			if e != nil {
				elems = append(elems, e)
			}
		}
		p.expect(token.RPAREN)
		return ast.NewTuple(pos, elems)
	}
	p.expect(token.RPAREN)
	return first
}

// parseListConstructor desugars `[e1, e2, ...]` into `vecN(e1, e2, ...)`.
func (p *Parser) parseListConstructor() ast.Expr {
	pos := p.cur.Pos
	p.advance() // '['
	var elems []ast.Expr
	for p.cur.Type != token.RBRACKET && p.cur.Type != token.EOF {
		e := p.parseExpression()
		if e != nil {
			elems = append(elems, e)
		}
		if p.cur.Type == token.COMMA {
			p.advance()
		}
	}
	p.expect(token.RBRACKET)
	callee := fmt.Sprintf("vec%d", len(elems))
	return ast.NewCall(pos, callee, elems)
}

func (p *Parser) parseIfExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'if'
	cond := p.parseExpression()
	p.expect(token.THEN)
	then := p.parseBody()
	p.expect(token.ELSE)
	els := p.parseBody()
	return ast.NewIf(pos, cond, then, els)
}

func (p *Parser) parseWhileExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'while'
	cond := p.parseExpression()
	body := p.parseBody()
	return ast.NewWhile(pos, cond, body)
}

func (p *Parser) parseSizeOfExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'sizeof'
	p.expect(token.LPAREN)
	typeName := ""
	if p.cur.Type == token.IDENT {
		typeName = p.cur.Literal
		p.advance()
	}
	p.expect(token.RPAREN)
	return ast.NewSizeOf(pos, typeName)
}

func (p *Parser) parsePtrOffsetExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'ptr_offset'
	p.expect(token.LPAREN)
	ptr := p.parseExpression()
	p.expect(token.COMMA)
	offset := p.parseExpression()
	p.expect(token.RPAREN)
	return ast.NewPtrOffset(pos, ptr, offset)
}

// parseMatchExpr parses:
//
//	match scrutinee
//	  Ctor(bindings...) => body
//	  ...
//	end
func (p *Parser) parseMatchExpr() ast.Expr {
	pos := p.cur.Pos
	p.advance() // 'match'
	scrutinee := p.parseExpression()
	if !p.expect(token.INDENT) {
		return ast.NewMatch(pos, scrutinee, nil)
	}
	var cases []*ast.MatchCase
	for p.cur.Type != token.DEDENT && p.cur.Type != token.EOF {
		mc := p.parseMatchCase()
		if mc != nil {
			cases = append(cases, mc)
		} else {
			p.advance()
		}
	}
	p.expect(token.DEDENT)
	p.expect(token.END)
	return ast.NewMatch(pos, scrutinee, cases)
}

func (p *Parser) parseMatchCase() *ast.MatchCase {
	pos := p.cur.Pos
	if p.cur.Type != token.IDENT {
		p.errorf(pos, "expected constructor pattern, got %s", p.cur.Type)
		return nil
	}
	ctor := p.cur.Literal
	p.advance()
	var bindings []string
	if p.cur.Type == token.LPAREN {
		p.advance()
		for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
			if p.cur.Type == token.IDENT {
				bindings = append(bindings, p.cur.Literal)
				p.advance()
			}
			if p.cur.Type == token.COMMA {
				p.advance()
			}
		}
		p.expect(token.RPAREN)
	}
	if !p.expect(token.FATARROW) {
		return nil
	}
	body := p.parseBody()
	return ast.NewMatchCase(pos, ctor, bindings, body)
}

// parseIdentifierExpr parses a bare variable reference, a call
// `name(args...)`, or a value constructor `Name(args...)` (upper-case
// leading letter, per the reference grammar's convention that
// constructor names are capitalized).
func (p *Parser) parseIdentifierExpr() ast.Expr {
	pos := p.cur.Pos
	name := p.cur.Literal
	p.advance()

	if p.cur.Type != token.LPAREN {
		return ast.NewVariable(pos, name)
	}

	p.advance() // '('
	var args []ast.Expr
	for p.cur.Type != token.RPAREN && p.cur.Type != token.EOF {
		a := p.parseExpression()
		if a != nil {
			args = append(args, a)
		}
		if p.cur.Type == token.COMMA {
			p.advance()
			continue
		}
		if p.cur.Type != token.RPAREN {
			// A continuation line inside an argument list that dedents
			// relative to the call's own line must not be treated as a
			// block boundary.
			p.lex.SkipNextDedent()
		}
	}
	p.expect(token.RPAREN)

	if isConstructorName(name) {
		return ast.NewValueConstructor(pos, name, args)
	}
	return ast.NewCall(pos, name, args)
}

func isConstructorName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}
