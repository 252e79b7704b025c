package driver

import (
	"context"
	"testing"

	"surge/internal/codegen"
	"surge/internal/diag"
)

// TestRunSourceTopLevelVarDecl exercises spec.md §8 scenario S1 through the
// full driver pipeline: lex, parse, sema, lower, emit.
func TestRunSourceTopLevelVarDecl(t *testing.T) {
	res := RunSource("s1.luma", []byte("var a = 10;"), 0)
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}
	if res.Module == nil {
		t.Fatalf("expected a compiled module")
	}
	code := res.Module.Top.Code
	want := []codegen.OpCode{codegen.OpConst, codegen.OpSetLocal, codegen.OpPopLocals}
	if len(code) != len(want) {
		t.Fatalf("expected %d instructions, got %d: %v", len(want), len(code), code)
	}
	for i, op := range want {
		if code[i].Op != op {
			t.Errorf("instruction %d: expected %s, got %s", i, op, code[i].Op)
		}
	}
	if code[2].Operand != 1 {
		t.Errorf("expected PopLocals(1), got PopLocals(%d)", code[2].Operand)
	}
}

// TestRunSourceClosureCapturesUpvalue exercises spec.md §8 scenario S4
// through the full driver pipeline.
func TestRunSourceClosureCapturesUpvalue(t *testing.T) {
	src := "func outer(a: i32): i32 { func inner(): i32 { a }; inner() }"
	res := RunSource("s4.luma", []byte(src), 0)
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", res.Bag.Items())
	}
	if res.Module == nil {
		t.Fatalf("expected a compiled module")
	}

	var inner *codegen.FunctionChunk
	for i := range res.Module.Functions {
		if res.Module.Functions[i].Name == "inner" {
			inner = &res.Module.Functions[i]
		}
	}
	if inner == nil {
		t.Fatalf("expected a FunctionChunk named inner, got %+v", res.Module.Functions)
	}
	if len(inner.Upvalues) != 1 || !inner.Upvalues[0].IsLocal {
		t.Fatalf("expected exactly one local upvalue, got %+v", inner.Upvalues)
	}
	if len(inner.Chunk.Code) == 0 || inner.Chunk.Code[0].Op != codegen.OpGetUpvalue {
		t.Fatalf("expected inner's first instruction to be GetUpvalue, got %+v", inner.Chunk.Code)
	}
}

// TestRunSourceIntegerOverflowStopsBeforeCodegen exercises spec.md §8
// scenario S5: a type-checking failure must leave Module nil.
func TestRunSourceIntegerOverflowStopsBeforeCodegen(t *testing.T) {
	res := RunSource("s5.luma", []byte("var c: u8 = 300;"), 0)
	if !res.Bag.HasErrors() {
		t.Fatalf("expected an overflow diagnostic")
	}
	if res.Module != nil {
		t.Fatalf("expected no bytecode on a type error")
	}
}

// TestRunSourceUnresolvedIdentifierStopsPipeline exercises spec.md §8
// scenario S6: Name Resolution's failure must gate out later passes, and
// every surviving diagnostic's Stage must be set (spec.md §4.8).
func TestRunSourceUnresolvedIdentifierStopsPipeline(t *testing.T) {
	res := RunSource("s6.luma", []byte("var y = z;"), 0)
	if !res.Bag.HasErrors() {
		t.Fatalf("expected an unresolved-identifier diagnostic")
	}
	if res.Module != nil {
		t.Fatalf("expected no bytecode when name resolution fails")
	}

	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.UnresolvedIdentifier {
			found = true
			if d.Stage == "" {
				t.Errorf("expected a non-empty Stage on the unresolved-identifier diagnostic")
			}
		}
	}
	if !found {
		t.Fatalf("expected an UnresolvedIdentifier diagnostic, got %v", res.Bag.Items())
	}
}

// TestRunBatchIsIndependentPerUnit exercises RunBatch over a mix of a
// failing and a succeeding unit, confirming each unit's result is
// unaffected by the others (spec.md §4.8's single-threaded-per-unit
// concurrency model).
func TestRunBatchIsIndependentPerUnit(t *testing.T) {
	units := []Unit{
		{Path: "ok.luma", Content: []byte("var a = 10;")},
		{Path: "bad.luma", Content: []byte("var y = z;")},
	}
	results := RunBatch(context.Background(), units, 2, 0)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Bag.HasErrors() || results[0].Module == nil {
		t.Errorf("expected ok.luma to succeed, got bag=%v module=%v", results[0].Bag.Items(), results[0].Module)
	}
	if !results[1].Bag.HasErrors() || results[1].Module != nil {
		t.Errorf("expected bad.luma to fail with no module")
	}
}
