package sema

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/symbols"
)

// NameResolution is spec.md §4.3: resolves each identifier expression
// (Value namespace) and struct-literal target (Type namespace) by walking
// the symbol table from the node's own scope id outward, moving a matched
// identifier from *Named* to *Identified*. On a miss it emits
// UnresolvedIdentifier / UnresolvedType and continues to the next node
// (recoverable within the pass); the pass as a whole still gates the
// pipeline (ContinueAfterError == false) since every later pass assumes
// identifiers it needs are already resolved.
//
// Grounded on original_source's _03_name_resolution.rs. Field access
// (Get) and struct-literal field names are not resolved, matching that
// file's own commented-out / todo!() handling and DESIGN.md's struct
// field Open Question decision.
type NameResolution struct{}

func (NameResolution) Name() string            { return "name_resolution" }
func (NameResolution) ContinueAfterError() bool { return false }

func (p NameResolution) Run(ctx *Context, file ast.FileID) {
	f := ctx.Builder.Files.Get(file)
	for _, stmt := range f.Stmts {
		p.stmt(ctx, stmt)
	}
}

func (p NameResolution) stmt(ctx *Context, id ast.StmtID) {
	if !id.IsValid() {
		return
	}
	s := ctx.Builder.Stmts.Get(id)

	switch s.Kind {
	case ast.StmtVar:
		v := ctx.Builder.Stmts.Var(id)
		if v.Value.IsValid() {
			p.expr(ctx, v.Value)
		}
	case ast.StmtFunc:
		fn := ctx.Builder.Stmts.Func(id)
		p.expr(ctx, fn.Body)
	case ast.StmtReturn:
		r := ctx.Builder.Stmts.Return(id)
		if r.Value.IsValid() {
			p.expr(ctx, r.Value)
		}
	case ast.StmtExpr:
		e := ctx.Builder.Stmts.ExprStmt(id)
		p.expr(ctx, e.Expr)
	case ast.StmtWhile:
		w := ctx.Builder.Stmts.While(id)
		p.expr(ctx, w.Cond)
		p.expr(ctx, w.Body)
	case ast.StmtForClassic:
		fc := ctx.Builder.Stmts.ForClassic(id)
		if fc.Init.IsValid() {
			p.stmt(ctx, fc.Init)
		}
		if fc.Cond.IsValid() {
			p.expr(ctx, fc.Cond)
		}
		if fc.Post.IsValid() {
			p.expr(ctx, fc.Post)
		}
		p.expr(ctx, fc.Body)
	case ast.StmtForIn:
		fi := ctx.Builder.Stmts.ForIn(id)
		p.expr(ctx, fi.Iterable)
		p.expr(ctx, fi.Body)
	}
}

func (p NameResolution) expr(ctx *Context, id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	e := ctx.Builder.Exprs.Get(id)

	switch e.Kind {
	case ast.ExprIdent:
		ident, _ := ctx.Builder.Exprs.Ident(id)
		symID, ok := ctx.Symbols.Lookup(e.Scope, symbols.Value, ident.Name)
		if !ok {
			name := ctx.Strings.MustLookup(ident.Name)
			ctx.report(diag.UnresolvedIdentifier, e.Span, "unresolved identifier `"+name+"`")
			return
		}
		ident.Symbol = symID

	case ast.ExprGroup:
		g, _ := ctx.Builder.Exprs.Group(id)
		p.expr(ctx, g.Inner)

	case ast.ExprBlock:
		b, _ := ctx.Builder.Exprs.Block(id)
		for _, st := range b.Stmts {
			p.stmt(ctx, st)
		}
		if b.Tail.IsValid() {
			p.expr(ctx, b.Tail)
		}

	case ast.ExprIf:
		f, _ := ctx.Builder.Exprs.If(id)
		p.expr(ctx, f.Cond)
		p.expr(ctx, f.Then)
		if f.Else.IsValid() {
			p.expr(ctx, f.Else)
		}

	case ast.ExprCall:
		c, _ := ctx.Builder.Exprs.Call(id)
		p.expr(ctx, c.Callee)
		for _, a := range c.Args {
			p.expr(ctx, a)
		}

	case ast.ExprUnary:
		u, _ := ctx.Builder.Exprs.Unary(id)
		p.expr(ctx, u.Operand)

	case ast.ExprBinary:
		b, _ := ctx.Builder.Exprs.Binary(id)
		p.expr(ctx, b.Left)
		p.expr(ctx, b.Right)

	case ast.ExprAssign:
		a, _ := ctx.Builder.Exprs.Assign(id)
		p.expr(ctx, a.Target)
		p.expr(ctx, a.Value)

	case ast.ExprStructLit:
		sl, _ := ctx.Builder.Exprs.StructLit(id)
		if _, ok := ctx.Symbols.Lookup(e.Scope, symbols.Type, sl.Name); !ok {
			name := ctx.Strings.MustLookup(sl.Name)
			ctx.report(diag.UnresolvedType, e.Span, "unresolved type `"+name+"`")
		}
		for _, field := range sl.Fields {
			p.expr(ctx, field.Value)
		}

	case ast.ExprTuple:
		t, _ := ctx.Builder.Exprs.Tuple(id)
		for _, el := range t.Elements {
			p.expr(ctx, el)
		}

	case ast.ExprGet:
		g, _ := ctx.Builder.Exprs.GetExpr(id)
		p.expr(ctx, g.Target)
	}
}
