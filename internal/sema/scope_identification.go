package sema

import (
	"surge/internal/ast"
	"surge/internal/symbols"
)

// ScopeIdentification is spec.md §4.1: a depth-first traversal that assigns
// every statement and expression its enclosing ScopeId, pushing a fresh
// scope on entry to a block expression or function body and restoring the
// parent scope on return. Gating (ContinueAfterError == false): every later
// pass relies on every node already carrying a real scope id.
//
// Grounded on original_source's _01_scope_identification.rs, whose
// AstVisitor impl sets scope_id on every visited stmt/expr before
// descending into children.
type ScopeIdentification struct{}

func (ScopeIdentification) Name() string            { return "scope_identification" }
func (ScopeIdentification) ContinueAfterError() bool { return false }

func (p ScopeIdentification) Run(ctx *Context, file ast.FileID) {
	f := ctx.Builder.Files.Get(file)
	global := ctx.Scopes.Global()
	for _, stmt := range f.Stmts {
		p.stmt(ctx, global, stmt)
	}
}

func (p ScopeIdentification) stmt(ctx *Context, scope ast.ScopeID, id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	s := ctx.Builder.Stmts.Get(id)
	s.Scope = scope

	switch s.Kind {
	case ast.StmtVar:
		v := ctx.Builder.Stmts.Var(id)
		if v.Value.IsValid() {
			p.expr(ctx, scope, v.Value)
		}
	case ast.StmtFunc:
		fn := ctx.Builder.Stmts.Func(id)
		bodyScope := ctx.Scopes.New(symbols.ScopeFunction, scope)
		p.expr(ctx, bodyScope, fn.Body)
	case ast.StmtStruct:
		// Struct fields carry no expressions of their own; the struct's
		// Type-namespace symbol is declared directly into scope by
		// NameDeclaration, with no dedicated struct-body scope (see
		// DESIGN.md's struct field access Open Question decision).
	case ast.StmtReturn:
		r := ctx.Builder.Stmts.Return(id)
		if r.Value.IsValid() {
			p.expr(ctx, scope, r.Value)
		}
	case ast.StmtExpr:
		e := ctx.Builder.Stmts.ExprStmt(id)
		p.expr(ctx, scope, e.Expr)
	case ast.StmtWhile:
		w := ctx.Builder.Stmts.While(id)
		p.expr(ctx, scope, w.Cond)
		p.expr(ctx, scope, w.Body)
	case ast.StmtForClassic:
		fc := ctx.Builder.Stmts.ForClassic(id)
		if fc.Init.IsValid() {
			p.stmt(ctx, scope, fc.Init)
		}
		if fc.Cond.IsValid() {
			p.expr(ctx, scope, fc.Cond)
		}
		if fc.Post.IsValid() {
			p.expr(ctx, scope, fc.Post)
		}
		p.expr(ctx, scope, fc.Body)
	case ast.StmtForIn:
		fi := ctx.Builder.Stmts.ForIn(id)
		p.expr(ctx, scope, fi.Iterable)
		p.expr(ctx, scope, fi.Body)
	case ast.StmtBreak, ast.StmtContinue:
		// leaves, no sub-expressions.
	}
}

func (p ScopeIdentification) expr(ctx *Context, scope ast.ScopeID, id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	e := ctx.Builder.Exprs.Get(id)
	e.Scope = scope

	switch e.Kind {
	case ast.ExprLiteral, ast.ExprIdent:
		// leaves.

	case ast.ExprGroup:
		g, _ := ctx.Builder.Exprs.Group(id)
		p.expr(ctx, scope, g.Inner)

	case ast.ExprBlock:
		inner := ctx.Scopes.New(symbols.ScopeBlock, scope)
		b, _ := ctx.Builder.Exprs.Block(id)
		for _, st := range b.Stmts {
			p.stmt(ctx, inner, st)
		}
		if b.Tail.IsValid() {
			p.expr(ctx, inner, b.Tail)
		}

	case ast.ExprIf:
		f, _ := ctx.Builder.Exprs.If(id)
		p.expr(ctx, scope, f.Cond)
		p.expr(ctx, scope, f.Then)
		if f.Else.IsValid() {
			p.expr(ctx, scope, f.Else)
		}

	case ast.ExprCall:
		c, _ := ctx.Builder.Exprs.Call(id)
		p.expr(ctx, scope, c.Callee)
		for _, a := range c.Args {
			p.expr(ctx, scope, a)
		}

	case ast.ExprUnary:
		u, _ := ctx.Builder.Exprs.Unary(id)
		p.expr(ctx, scope, u.Operand)

	case ast.ExprBinary:
		b, _ := ctx.Builder.Exprs.Binary(id)
		p.expr(ctx, scope, b.Left)
		p.expr(ctx, scope, b.Right)

	case ast.ExprAssign:
		a, _ := ctx.Builder.Exprs.Assign(id)
		p.expr(ctx, scope, a.Target)
		p.expr(ctx, scope, a.Value)

	case ast.ExprStructLit:
		sl, _ := ctx.Builder.Exprs.StructLit(id)
		for _, field := range sl.Fields {
			p.expr(ctx, scope, field.Value)
		}

	case ast.ExprTuple:
		t, _ := ctx.Builder.Exprs.Tuple(id)
		for _, el := range t.Elements {
			p.expr(ctx, scope, el)
		}

	case ast.ExprGet:
		g, _ := ctx.Builder.Exprs.GetExpr(id)
		p.expr(ctx, scope, g.Target)
	}
}
