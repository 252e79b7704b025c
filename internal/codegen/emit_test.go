package codegen

import (
	"testing"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/hir"
	"surge/internal/sema"
	"surge/internal/source"
)

// analyze runs every sema pass in order, then Lower, mirroring the gating
// contract spec.md §4.8 describes for the pipeline driver.
func analyze(t *testing.T, build func(b *ast.Builder) ast.FileID) (*hir.Module, *sema.Context, *diag.Bag) {
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
	if bag.HasErrors() {
		return nil, ctx, bag
	}

	mod, ok := hir.Lower(b, b.StringsInterner, ctx.TypesIn, ctx.Symbols, diag.BagReporter{Bag: bag}, file)
	if !ok {
		return nil, ctx, bag
	}
	return mod, ctx, bag
}

// buildTopLevelVar constructs spec.md §8 scenario S1: `var a = 10;`.
func buildTopLevelVar(b *ast.Builder) ast.FileID {
	i32 := b.Types.NewNamed(source.Span{}, b.StringsInterner.Intern("i32"))
	ten := b.Exprs.NewLiteral(source.Span{}, ast.ExprLitInt, b.StringsInterner.Intern("10"), false)
	varStmt := b.Stmts.NewVar(source.Span{}, b.StringsInterner.Intern("a"), source.Span{}, i32, ten)

	file := b.Files.New(source.Span{})
	b.Files.PushStmt(file, varStmt)
	return file
}

func TestEmitTopLevelVarDecl(t *testing.T) {
	mod, ctx, bag := analyze(t, buildTopLevelVar)
	if mod == nil {
		t.Fatalf("analyze/lower failed: %+v", bag.Items())
	}

	out, ok := Emit(mod, ctx.TypesIn, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("Emit failed: %+v", bag.Items())
	}

	wantOps := []OpCode{OpConst, OpSetLocal, OpPopLocals}
	if len(out.Top.Code) != len(wantOps) {
		t.Fatalf("expected %d instructions, got %d: %+v", len(wantOps), len(out.Top.Code), out.Top.Code)
	}
	for i, op := range wantOps {
		if out.Top.Code[i].Op != op {
			t.Errorf("instruction %d: got %s, want %s", i, out.Top.Code[i].Op, op)
		}
	}
	if out.Top.Code[2].Operand != 1 {
		t.Errorf("expected PopLocals(1), got PopLocals(%d)", out.Top.Code[2].Operand)
	}

	if len(out.Top.Constants) != 1 || out.Top.Constants[0].Kind != ValueI32 {
		t.Fatalf("expected single i32 constant, got %+v", out.Top.Constants)
	}
	if int32(out.Top.Constants[0].Bits) != 10 {
		t.Errorf("expected constant value 10, got %d", out.Top.Constants[0].Bits)
	}
}

// buildOuterFunc constructs spec.md §8 scenario S4: a closure capturing an
// enclosing parameter by value.
//
//	func outer(a: i32): i32 { func inner(): i32 { a }; inner() }
func buildOuterFunc(b *ast.Builder) ast.FileID {
	i32 := b.Types.NewNamed(source.Span{}, b.StringsInterner.Intern("i32"))
	aName := b.StringsInterner.Intern("a")

	aRefInInner := b.Exprs.NewIdent(source.Span{}, aName)
	innerBody := b.Exprs.NewBlock(source.Span{}, nil, aRefInInner)
	innerName := b.StringsInterner.Intern("inner")
	innerStmt := b.Stmts.NewFunc(source.Span{}, innerName, source.Span{}, nil, i32, innerBody)

	innerRef := b.Exprs.NewIdent(source.Span{}, innerName)
	invokeInner := b.Exprs.NewCall(source.Span{}, innerRef, nil)
	invokeStmt := b.Stmts.NewExprStmt(source.Span{}, invokeInner)

	outerBody := b.Exprs.NewBlock(source.Span{}, []ast.StmtID{innerStmt, invokeStmt}, ast.NoExprID)
	outerName := b.StringsInterner.Intern("outer")
	outerStmt := b.Stmts.NewFunc(source.Span{}, outerName, source.Span{}, []ast.FnParam{{Name: aName, Type: i32}}, i32, outerBody)

	file := b.Files.New(source.Span{})
	b.Files.PushStmt(file, outerStmt)
	return file
}

func TestEmitClosureCapturesUpvalue(t *testing.T) {
	mod, ctx, bag := analyze(t, buildOuterFunc)
	if mod == nil {
		t.Fatalf("analyze/lower failed: %+v", bag.Items())
	}

	out, ok := Emit(mod, ctx.TypesIn, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("Emit failed: %+v", bag.Items())
	}

	if len(out.Functions) != 1 {
		t.Fatalf("expected exactly one nested function chunk, got %d", len(out.Functions))
	}
	inner := out.Functions[0]
	if len(inner.Upvalues) != 1 {
		t.Fatalf("expected exactly one upvalue, got %d: %+v", len(inner.Upvalues), inner.Upvalues)
	}
	if !inner.Upvalues[0].IsLocal {
		t.Errorf("expected captured upvalue to be a local of outer, got IsLocal=false")
	}

	if len(inner.Chunk.Code) == 0 || inner.Chunk.Code[0].Op != OpGetUpvalue {
		t.Fatalf("expected inner body to start with GetUpvalue, got %+v", inner.Chunk.Code)
	}
}
