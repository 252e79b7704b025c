package hir

import (
	"testing"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/sema"
	"surge/internal/source"
)

// analyze builds a file with build, then runs every sema pass over it in
// order, stopping early if a gating pass left errors - mirroring the
// pipeline driver's gating contract (spec.md §4.8) without depending on
// internal/driver itself.
func analyze(t *testing.T, build func(b *ast.Builder) ast.FileID) (*ast.Builder, ast.FileID, *sema.Context, *diag.Bag) {
	t.Helper()
	strings := source.NewInterner()
	b := ast.NewBuilder(ast.Hints{}, strings)
	file := build(b)

	bag := diag.NewBag(64)
	ctx := sema.NewContext(b, diag.BagReporter{Bag: bag})
	for _, pass := range sema.OrderedPasses() {
		pass.Run(ctx, file)
		if ctx.HasErrors() && !pass.ContinueAfterError() {
			break
		}
	}
	return b, file, ctx, bag
}

// buildSimpleFunc constructs `func main() i32 { var x: i32 = 10; return x; }`
// directly against the arena API, the way internal/ast's own arena tests do,
// rather than round-tripping through the lexer/parser.
func buildSimpleFunc(b *ast.Builder) ast.FileID {
	i32 := b.Types.NewNamed(source.Span{}, b.StringsInterner.Intern("i32"))
	ten := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern("10"), false)
	xName := b.StringsInterner.Intern("x")
	varStmt := b.Stmts.NewVar(source.Span{}, xName, source.Span{}, i32, ten)

	xRef := b.Exprs.NewIdent(source.Span{}, xName)
	retStmt := b.Stmts.NewReturn(source.Span{}, xRef)

	body := b.Exprs.NewBlock(source.Span{}, []ast.StmtID{varStmt, retStmt}, ast.NoExprID)
	fnName := b.StringsInterner.Intern("main")
	fnStmt := b.Stmts.NewFunc(source.Span{}, fnName, source.Span{}, nil, i32, body)

	file := b.Files.New(source.Span{})
	b.Files.PushStmt(file, fnStmt)
	return file
}

func TestLowerSimpleFunc(t *testing.T) {
	b, file, ctx, bag := analyze(t, buildSimpleFunc)
	if bag.HasErrors() {
		t.Fatalf("sema reported errors: %+v", bag.Items())
	}

	mod, ok := Lower(b, b.StringsInterner, ctx.TypesIn, ctx.Symbols, diag.BagReporter{Bag: bag}, file)
	if !ok {
		t.Fatalf("Lower failed: %+v", bag.Items())
	}
	if len(mod.Stmts) != 1 {
		t.Fatalf("expected 1 top-level stmt, got %d", len(mod.Stmts))
	}

	fn := mod.Stmts[0]
	if fn.Kind != StmtFunc {
		t.Fatalf("expected StmtFunc, got %v", fn.Kind)
	}
	if fn.Func.Symbol.Name != "main" {
		t.Fatalf("expected symbol name 'main', got %q", fn.Func.Symbol.Name)
	}
	if len(fn.Func.Body.BlockE.Stmts) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Func.Body.BlockE.Stmts))
	}

	varDecl := fn.Func.Body.BlockE.Stmts[0]
	if varDecl.Kind != StmtVar {
		t.Fatalf("expected StmtVar, got %v", varDecl.Kind)
	}
	if varDecl.Var.Init.Lit == nil || varDecl.Var.Init.Lit.Kind != LitInt {
		t.Fatalf("expected narrowed int literal, got %+v", varDecl.Var.Init)
	}
	if varDecl.Var.Init.Lit.IntValue != 10 {
		t.Fatalf("expected narrowed value 10, got %d", varDecl.Var.Init.Lit.IntValue)
	}
}

// buildUnresolvedIdent builds `func main() i32 { return y; }` where y is
// never declared, exercising name resolution's UnresolvedIdentifier and
// confirming Lower is never reached with a *Named* identifier left behind.
func buildUnresolvedIdent(b *ast.Builder) ast.FileID {
	i32 := b.Types.NewNamed(source.Span{}, b.StringsInterner.Intern("i32"))
	yRef := b.Exprs.NewIdent(source.Span{}, b.StringsInterner.Intern("y"))
	retStmt := b.Stmts.NewReturn(source.Span{}, yRef)
	body := b.Exprs.NewBlock(source.Span{}, []ast.StmtID{retStmt}, ast.NoExprID)
	fnStmt := b.Stmts.NewFunc(source.Span{}, b.StringsInterner.Intern("main"), source.Span{}, nil, i32, body)

	file := b.Files.New(source.Span{})
	b.Files.PushStmt(file, fnStmt)
	return file
}

func TestLowerUnresolvedIdentifierStopsPipeline(t *testing.T) {
	_, _, ctx, bag := analyze(t, buildUnresolvedIdent)
	if !bag.HasErrors() {
		t.Fatalf("expected UnresolvedIdentifier from name resolution")
	}
	// Name resolution is gating (ContinueAfterError() == false), so type
	// inference and finalization never ran and the identifier is still
	// *Named* - Lower must never be called on this tree in the real
	// pipeline driver (spec.md §4.8's gating contract).
	if ctx.ErrorCount() == 0 {
		t.Fatalf("expected at least one recorded error")
	}
}

func TestUnescapeAll(t *testing.T) {
	cases := map[string]string{
		`hello`:        "hello",
		`a\nb`:         "a\nb",
		`tab\there`:    "tab\there",
		`quote\"mark`:  `quote"mark`,
		`back\\slash`:  `back\slash`,
	}
	for in, want := range cases {
		if got := unescapeAll(in); got != want {
			t.Errorf("unescapeAll(%q) = %q, want %q", in, got, want)
		}
	}
}
