package sema

import (
	"surge/internal/ast"
	"surge/internal/symbols"
	"surge/internal/types"
)

// NameDeclaration is spec.md §4.2: on leaving a Var, Func, or Struct
// statement, declares its symbol into the enclosing scope's Value or Type
// namespace. Declaration never errors (shadowing is always permitted), so
// this pass can freely let the pipeline continue past it even if an
// earlier pass left errors behind.
//
// Function parameters are declared into the function's own body scope
// (the one ScopeIdentification pushed for fn.Body), not the enclosing
// scope, so they're visible only inside the body. Declared type is the
// written annotation when present, else types.NoTypeID for TypeInference
// to fill in with a fresh type variable.
//
// Grounded on original_source's _02_name_declaration.rs post-order
// declare step (struct field declaration is left unimplemented there too,
// matching DESIGN.md's struct field Open Question decision).
type NameDeclaration struct{}

func (NameDeclaration) Name() string            { return "name_declaration" }
func (NameDeclaration) ContinueAfterError() bool { return true }

func (p NameDeclaration) Run(ctx *Context, file ast.FileID) {
	f := ctx.Builder.Files.Get(file)
	for _, stmt := range f.Stmts {
		p.stmt(ctx, stmt)
	}
}

func (p NameDeclaration) stmt(ctx *Context, id ast.StmtID) {
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
		declTy, hasTy := resolveTypeExpr(ctx, s.Scope, v.Type)
		varSym := ctx.Symbols.Declare(symbols.Symbol{
			Name:         v.Name,
			Namespace:    symbols.Value,
			Kind:         symbols.KindVar,
			OwningScope:  s.Scope,
			DeclaredType: declTy,
			Decl:         id,
		})
		ctx.DeclSymbol[id] = varSym
		ctx.Entries[varSym] = declEntry(ctx, declTy, hasTy)

	case ast.StmtFunc:
		fn := ctx.Builder.Stmts.Func(id)
		bodyScope := ctx.Builder.Exprs.Get(fn.Body).Scope

		for _, param := range fn.Params {
			paramTy, hasTy := resolveTypeExpr(ctx, bodyScope, param.Type)
			paramSym := ctx.Symbols.Declare(symbols.Symbol{
				Name:         param.Name,
				Namespace:    symbols.Value,
				Kind:         symbols.KindParam,
				OwningScope:  bodyScope,
				DeclaredType: paramTy,
				Decl:         id,
			})
			ctx.Entries[paramSym] = declEntry(ctx, paramTy, hasTy)
		}

		p.expr(ctx, fn.Body)

		retTy, hasTy := resolveTypeExpr(ctx, s.Scope, fn.ReturnType)
		fnSym := ctx.Symbols.Declare(symbols.Symbol{
			Name:         fn.Name,
			Namespace:    symbols.Value,
			Kind:         symbols.KindFunc,
			OwningScope:  s.Scope,
			DeclaredType: retTy,
			Decl:         id,
		})
		ctx.DeclSymbol[id] = fnSym
		ctx.Entries[fnSym] = declEntry(ctx, retTy, hasTy)

	case ast.StmtStruct:
		st := ctx.Builder.Stmts.Struct(id)
		name := ctx.Strings.MustLookup(st.Name)
		synthesized := ctx.TypesIn.Intern(types.MakeNamed(name, 0))
		ctx.Symbols.Declare(symbols.Symbol{
			Name:         st.Name,
			Namespace:    symbols.Type,
			Kind:         symbols.KindStruct,
			OwningScope:  s.Scope,
			DeclaredType: synthesized,
			Decl:         id,
		})

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

func (p NameDeclaration) expr(ctx *Context, id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	e := ctx.Builder.Exprs.Get(id)

	switch e.Kind {
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
