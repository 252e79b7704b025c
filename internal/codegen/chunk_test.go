package codegen

import (
	"testing"

	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
)

// TestChunkConstantDedup exercises spec.md §8's testable property 6: a
// chunk's constants contain no two bit-pattern-equal values.
func TestChunkConstantDedup(t *testing.T) {
	c := newChunk()
	report := func(diag.Code, source.Span, string) {}

	a, ok := c.addConst(float64Value(1.5), source.Span{}, report)
	if !ok {
		t.Fatalf("addConst failed")
	}
	b, ok := c.addConst(float64Value(1.5), source.Span{}, report)
	if !ok {
		t.Fatalf("addConst failed")
	}
	if a != b {
		t.Errorf("expected bit-pattern-equal floats to dedup to the same index, got %d and %d", a, b)
	}

	d, ok := c.addConst(intValue(ValueI32, 1), source.Span{}, report)
	if !ok {
		t.Fatalf("addConst failed")
	}
	if d == a {
		t.Errorf("expected a distinct kind to get a distinct constant slot")
	}
	if len(c.Constants) != 2 {
		t.Fatalf("expected 2 distinct constants, got %d", len(c.Constants))
	}
}

// TestEnvironmentResolveSymbolCapturesTransitiveUpvalue exercises spec.md
// §8's testable property 7: an upvalue two frames deep is recorded as a
// transitive forward (is_local = false) on the middle frame.
func TestEnvironmentResolveSymbolCapturesTransitiveUpvalue(t *testing.T) {
	grandparent := newEnvironment()
	sym := symbols.SymbolID(1)
	if _, ok := grandparent.addLocal(sym, source.Span{}, func(diag.Code, source.Span, string) {}); !ok {
		t.Fatalf("addLocal failed")
	}

	parent := newEnvironment()
	res, ok := parent.resolveSymbol(sym, grandparent)
	if !ok {
		t.Fatalf("expected parent to capture grandparent's local as an upvalue")
	}
	if !res.isUpvalue {
		t.Fatalf("expected an upvalue resolution")
	}

	child := newEnvironment()
	res, ok = child.resolveSymbol(sym, parent)
	if !ok {
		t.Fatalf("expected child to capture parent's upvalue transitively")
	}
	if !res.isUpvalue {
		t.Fatalf("expected a transitive upvalue resolution")
	}
}
