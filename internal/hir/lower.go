package hir

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
	"surge/internal/types"
)

// lowerer holds the read-only inputs threaded through one file's lowering:
// the fully-analyzed syntax tree and the tables sema populated over it.
// Grounded on original_source's ast_to_aast.rs TryFrom chain, restated as a
// Go struct with methods instead of a cascade of trait impls, and as
// diagnostics-and-continue instead of abort-on-first-error, so one lowering
// run surfaces every precondition violation in a file rather than only the
// first.
type lowerer struct {
	builder  *ast.Builder
	strings  *source.Interner
	typesIn  *types.Interner
	symTable *symbols.Table
	reporter diag.Reporter
	errors   int
}

// Lower transforms an analyzed ast.FileID into the annotated tree of
// spec.md §4.6, checking the three preconditions (MissingSymbolId,
// MissingScopeId, UnknownType) on every node and narrowing every literal
// along the way. ok is false if any diagnostic was reported; a caller
// should not feed a non-ok Module to codegen.
func Lower(
	builder *ast.Builder,
	strings *source.Interner,
	typesIn *types.Interner,
	symTable *symbols.Table,
	reporter diag.Reporter,
	file ast.FileID,
) (*Module, bool) {
	l := &lowerer{
		builder:  builder,
		strings:  strings,
		typesIn:  typesIn,
		symTable: symTable,
		reporter: reporter,
	}

	f := builder.Files.Get(file)
	mod := &Module{Span: f.Span}
	for _, id := range f.Stmts {
		if s := l.stmt(id); s != nil {
			mod.Stmts = append(mod.Stmts, s)
		}
	}
	return mod, l.errors == 0
}

func (l *lowerer) report(code diag.Code, sp source.Span, msg string) {
	l.errors++
	if l.reporter != nil {
		l.reporter.Report(code, diag.SevError, sp, msg, nil, nil)
	}
}

// symbolOf builds the annotated Symbol for a resolved SymbolID, reporting
// MissingSymbolId if it is still ast.NoSymbolID (the *Named* state).
func (l *lowerer) symbolOf(name source.StringID, id ast.SymbolID, sp source.Span) (Symbol, bool) {
	if !id.IsValid() {
		l.report(diag.MissingSymbolId, sp, "identifier left unresolved after name resolution")
		return Symbol{}, false
	}
	return Symbol{Name: l.strings.MustLookup(name), ID: id, Span: sp}, true
}

func (l *lowerer) stmt(id ast.StmtID) *Stmt {
	if !id.IsValid() {
		return nil
	}
	s := l.builder.Stmts.Get(id)
	if !s.Scope.IsValid() {
		l.report(diag.MissingScopeId, s.Span, "statement is missing a scope id")
		return nil
	}

	out := &Stmt{Scope: s.Scope, Span: s.Span}
	switch s.Kind {
	case ast.StmtExpr:
		e := l.builder.Stmts.ExprStmt(id)
		expr := l.expr(e.Expr)
		if expr == nil {
			return nil
		}
		out.Kind, out.ExprStmt = StmtExpr, &ExprStmt{Expr: expr}

	case ast.StmtVar:
		v := l.builder.Stmts.Var(id)
		sym, ok := l.varSymbol(id, v)
		if !ok {
			return nil
		}
		var init *Expr
		if v.Value.IsValid() {
			init = l.expr(v.Value)
			if init == nil {
				return nil
			}
		}
		ty := l.declaredType(sym.ID, v.NameSpan)
		if ty == types.NoTypeID {
			return nil
		}
		out.Kind, out.Var = StmtVar, &VarDecl{Symbol: sym, Type: ty, Init: init}

	case ast.StmtFunc:
		fn := l.builder.Stmts.Func(id)
		decl, ok := l.funcDecl(id, fn)
		if !ok {
			return nil
		}
		out.Kind, out.Func = StmtFunc, decl

	case ast.StmtStruct:
		st := l.builder.Stmts.Struct(id)
		decl, ok := l.structDecl(st)
		if !ok {
			return nil
		}
		out.Kind, out.Struct = StmtStruct, decl

	case ast.StmtReturn:
		r := l.builder.Stmts.Return(id)
		ret := &ReturnStmt{}
		if r.Value.IsValid() {
			ret.Value = l.expr(r.Value)
			if ret.Value == nil {
				return nil
			}
		}
		out.Kind, out.Return = StmtReturn, ret

	case ast.StmtWhile, ast.StmtForClassic, ast.StmtForIn, ast.StmtBreak, ast.StmtContinue:
		l.report(diag.UnsupportedConstruct, s.Span, "construct not supported by this lowering pipeline")
		return nil

	default:
		l.report(diag.UnsupportedConstruct, s.Span, "unrecognized statement kind")
		return nil
	}
	return out
}

// varSymbol resolves the symbol NameDeclaration declared for a var
// statement. Lowering has no DeclSymbol map of its own (that bridge is
// internal/sema's), so it re-finds the symbol the same way name resolution
// would: by looking the declared name up in its own owning scope.
func (l *lowerer) varSymbol(id ast.StmtID, v *ast.VarStmt) (Symbol, bool) {
	s := l.builder.Stmts.Get(id)
	symID, ok := l.symTable.Lookup(s.Scope, symbols.Value, v.Name)
	if !ok {
		l.report(diag.MissingSymbolId, v.NameSpan, "identifier left unresolved after name resolution")
		return Symbol{}, false
	}
	return l.symbolOf(v.Name, symID, v.NameSpan)
}

func (l *lowerer) declaredType(symID symbols.SymbolID, sp source.Span) types.TypeID {
	sym := l.symTable.Get(symID)
	if sym == nil || sym.DeclaredType == types.NoTypeID {
		l.report(diag.UnknownType, sp, "declaration is missing a concrete type")
		return types.NoTypeID
	}
	return sym.DeclaredType
}

func (l *lowerer) funcDecl(id ast.StmtID, fn *ast.FuncStmt) (*FuncDecl, bool) {
	s := l.builder.Stmts.Get(id)
	symID, ok := l.symTable.Lookup(s.Scope, symbols.Value, fn.Name)
	if !ok {
		l.report(diag.MissingSymbolId, fn.NameSpan, "identifier left unresolved after name resolution")
		return nil, false
	}
	sym, ok := l.symbolOf(fn.Name, symID, fn.NameSpan)
	if !ok {
		return nil, false
	}

	bodyScope := l.builder.Exprs.Get(fn.Body).Scope
	params := make([]Param, 0, len(fn.Params))
	for _, p := range fn.Params {
		pSymID, ok := l.symTable.Lookup(bodyScope, symbols.Value, p.Name)
		if !ok {
			l.report(diag.MissingSymbolId, p.NameSpan, "identifier left unresolved after name resolution")
			return nil, false
		}
		pSym, ok := l.symbolOf(p.Name, pSymID, p.NameSpan)
		if !ok {
			return nil, false
		}
		ty := l.declaredType(pSymID, p.NameSpan)
		if ty == types.NoTypeID {
			return nil, false
		}
		params = append(params, Param{Symbol: pSym, Type: ty})
	}

	body := l.expr(fn.Body)
	if body == nil {
		return nil, false
	}

	retTy := l.declaredType(symID, fn.NameSpan)
	if retTy == types.NoTypeID {
		return nil, false
	}

	return &FuncDecl{Symbol: sym, Params: params, ReturnType: retTy, Body: body}, true
}

func (l *lowerer) structDecl(st *ast.StructStmt) (*StructDecl, bool) {
	sym := Symbol{Name: l.strings.MustLookup(st.Name), Span: st.NameSpan}
	fields := make([]Field, 0, len(st.Fields))
	for _, f := range st.Fields {
		ty, ok := l.typeOf(f.Type, f.NameSpan)
		if !ok {
			return nil, false
		}
		fields = append(fields, Field{
			Symbol: Symbol{Name: l.strings.MustLookup(f.Name), Span: f.NameSpan},
			Type:   ty,
		})
	}
	return &StructDecl{Symbol: sym, Fields: fields}, true
}

// typeOf resolves a syntactic type annotation's concrete TypeID directly
// from the ast.TypeExpr tree. Struct fields never flow through the type
// cache (internal/sema never declares them as symbols - the Open Question
// decision recorded in DESIGN.md), so lowering resolves them the same way
// internal/sema's resolveTypeExpr would, minus any symbol lookup: a
// struct type symbol isn't needed to lower the declaration itself, only to
// access a field, which SPEC_FULL.md §3 keeps a Non-goal.
func (l *lowerer) typeOf(id ast.TypeID, sp source.Span) (types.TypeID, bool) {
	if !id.IsValid() {
		l.report(diag.UnknownType, sp, "field is missing a type annotation")
		return types.NoTypeID, false
	}
	te := l.builder.Types.Get(id)
	if te == nil {
		l.report(diag.UnknownType, sp, "field is missing a type annotation")
		return types.NoTypeID, false
	}

	switch te.Kind {
	case ast.TypeExprNamed:
		named, _ := l.builder.Types.Named(id)
		name := l.strings.MustLookup(named.Name)
		if t, ok := primitiveType(l.typesIn, name); ok {
			return t, true
		}
		return l.typesIn.Intern(types.MakeNamed(name, 0)), true

	case ast.TypeExprTuple:
		tup, _ := l.builder.Types.Tuple(id)
		elems := make([]types.TypeID, 0, len(tup.Elements))
		for _, el := range tup.Elements {
			t, ok := l.typeOf(el, sp)
			if !ok {
				return types.NoTypeID, false
			}
			elems = append(elems, t)
		}
		return l.typesIn.Intern(types.MakeTuple(elems)), true

	case ast.TypeExprPtr:
		ptr, _ := l.builder.Types.Ptr(id)
		inner, ok := l.typeOf(ptr.Inner, sp)
		if !ok {
			return types.NoTypeID, false
		}
		return l.typesIn.Intern(types.MakePtr(inner)), true
	}
	l.report(diag.UnknownType, sp, "unrecognized type annotation")
	return types.NoTypeID, false
}

// primitiveType mirrors internal/sema's lookup table of the same name
// (kept separate rather than shared: hir intentionally has no dependency
// on sema, only on the lower-level ast/source/symbols/types packages it
// reads already-analyzed data from).
func primitiveType(typesIn *types.Interner, name string) (types.TypeID, bool) {
	b := typesIn.Builtins()
	switch name {
	case "i8":
		return b.I8, true
	case "i16":
		return b.I16, true
	case "i32":
		return b.I32, true
	case "i64":
		return b.I64, true
	case "u8":
		return b.U8, true
	case "u16":
		return b.U16, true
	case "u32":
		return b.U32, true
	case "u64":
		return b.U64, true
	case "f32":
		return b.F32, true
	case "f64":
		return b.F64, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "string":
		return b.String, true
	case "unit":
		return b.Unit, true
	}
	return types.NoTypeID, false
}

func (l *lowerer) expr(id ast.ExprID) *Expr {
	if !id.IsValid() {
		return nil
	}
	e := l.builder.Exprs.Get(id)
	if !e.Scope.IsValid() {
		l.report(diag.MissingScopeId, e.Span, "expression is missing a scope id")
		return nil
	}
	if e.Type == types.NoTypeID {
		l.report(diag.UnknownType, e.Span, "expression is missing a concrete type")
		return nil
	}

	out := &Expr{Type: e.Type, Scope: e.Scope, Span: e.Span}
	switch e.Kind {
	case ast.ExprLiteral:
		lit, _ := l.builder.Exprs.Literal(id)
		v, ok := l.lowerLiteral(lit, e.Type, e.Span)
		if !ok {
			return nil
		}
		out.Kind, out.Lit = ExprLit, v

	case ast.ExprIdent:
		id2, _ := l.builder.Exprs.Ident(id)
		sym, ok := l.symbolOf(id2.Name, id2.Symbol, e.Span)
		if !ok {
			return nil
		}
		out.Kind, out.Ident = ExprIdent, &sym

	case ast.ExprGroup:
		g, _ := l.builder.Exprs.Group(id)
		inner := l.expr(g.Inner)
		if inner == nil {
			return nil
		}
		out.Kind, out.Group = ExprGroup, inner

	case ast.ExprBlock:
		b, _ := l.builder.Exprs.Block(id)
		block := &BlockExpr{}
		for _, st := range b.Stmts {
			ls := l.stmt(st)
			if ls == nil {
				return nil
			}
			block.Stmts = append(block.Stmts, ls)
		}
		if b.Tail.IsValid() {
			block.Tail = l.expr(b.Tail)
			if block.Tail == nil {
				return nil
			}
		}
		out.Kind, out.BlockE = ExprBlock, block

	case ast.ExprIf:
		f, _ := l.builder.Exprs.If(id)
		cond, then := l.expr(f.Cond), l.expr(f.Then)
		if cond == nil || then == nil {
			return nil
		}
		ifE := &IfExpr{Cond: cond, Then: then}
		if f.Else.IsValid() {
			ifE.Else = l.expr(f.Else)
			if ifE.Else == nil {
				return nil
			}
		}
		out.Kind, out.IfE = ExprIf, ifE

	case ast.ExprCall:
		c, _ := l.builder.Exprs.Call(id)
		callee := l.expr(c.Callee)
		if callee == nil {
			return nil
		}
		call := &CallExpr{Callee: callee}
		for _, a := range c.Args {
			arg := l.expr(a)
			if arg == nil {
				return nil
			}
			call.Args = append(call.Args, arg)
		}
		out.Kind, out.CallE = ExprCall, call

	case ast.ExprUnary:
		u, _ := l.builder.Exprs.Unary(id)
		operand := l.expr(u.Operand)
		if operand == nil {
			return nil
		}
		out.Kind, out.UnaryE = ExprUnary, &UnaryExpr{Op: u.Op, Operand: operand}

	case ast.ExprBinary:
		b, _ := l.builder.Exprs.Binary(id)
		left, right := l.expr(b.Left), l.expr(b.Right)
		if left == nil || right == nil {
			return nil
		}
		out.Kind, out.BinaryE = ExprBinary, &BinaryExpr{Op: b.Op, Left: left, Right: right}

	case ast.ExprAssign:
		a, _ := l.builder.Exprs.Assign(id)
		target, value := l.expr(a.Target), l.expr(a.Value)
		if target == nil || value == nil {
			return nil
		}
		out.Kind, out.AssignE = ExprAssign, &AssignExpr{Target: target, Value: value}

	case ast.ExprStructLit:
		// Inference already reported UnsupportedConstruct for this node;
		// lowering refuses it too as a defense-in-depth check for callers
		// that invoke Lower directly (SPEC_FULL.md §3).
		l.report(diag.UnsupportedConstruct, e.Span, "struct literals are not supported by this pipeline")
		return nil

	case ast.ExprTuple:
		// Tuples are fully scoped and type-checked (SPEC_FULL.md §3: "parsed,
		// scoped, and type-checked as tuple(types)") - only codegen, not
		// lowering, refuses to emit them.
		t, _ := l.builder.Exprs.Tuple(id)
		tup := &TupleExpr{}
		for _, elID := range t.Elements {
			el := l.expr(elID)
			if el == nil {
				return nil
			}
			tup.Elements = append(tup.Elements, el)
		}
		out.Kind, out.TupleE = ExprTuple, tup

	case ast.ExprGet:
		l.report(diag.UnsupportedConstruct, e.Span, "field access is not supported by this pipeline")
		return nil

	default:
		l.report(diag.UnsupportedConstruct, e.Span, "unrecognized expression kind")
		return nil
	}
	return out
}
