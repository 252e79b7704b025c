// Package sema implements the six ordered semantic-analysis passes of
// spec.md §4.1-§4.5 (scope identification, name declaration, name
// resolution, type inference, type finalization) plus the shared machinery
// they run against: a scope tree, a symbol table, and a union-find type
// cache. Grounded on original_source's
// stages/analyzer/passes/_01_ast/_0{1,2,3,4,6}_*.rs, restructured from Rust
// trait objects into a Go Pass interface per SPEC_FULL.md §4.5.
package sema

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
	"surge/internal/types"
)

// Context is the shared, single-threaded workspace threaded through every
// pass for one analyzed file: the syntax tree being annotated in place, the
// scope tree and symbol table it resolves names against, the type cache
// driving inference, and the diagnostic sink passes report through.
type Context struct {
	Builder  *ast.Builder
	Strings  *source.Interner
	Scopes   *symbols.Tree
	Symbols  *symbols.Table
	TypesIn  *types.Interner
	Cache    *types.Cache
	Reporter diag.Reporter

	// Entries holds each declared symbol's type cache entry: Concrete(T)
	// when the declaration carries a written annotation, Relative(v) for a
	// fresh type variable otherwise. NameDeclaration seeds this for every
	// var/func/param as it declares the symbol; TypeInference narrows it
	// via unification; TypeFinalization resolves it to a concrete type
	// (spec.md §4.4: "each declaration site is associated with ... a cache
	// entry").
	Entries map[symbols.SymbolID]types.CacheEntry

	// ExprEntries holds the type cache entry inference assigned to each
	// expression node, consumed by TypeFinalization to write back
	// Expr.Type. Block/Ident/Binary/etc. all populate this as they're
	// visited; a node with no entry here after inference was never reached
	// (e.g. an unsupported construct) and finalization reports
	// TypeInferenceFailure for it instead of UnknownType panic.
	ExprEntries map[ast.ExprID]types.CacheEntry

	// DeclSymbol maps a Var or Func statement to the SymbolID NameDeclaration
	// declared for it, bridging the declaration site back to its cache
	// entry in Entries during inference and finalization (the Go AST, unlike
	// original_source's, has no symbol field embedded directly on VarStmt/
	// FuncStmt).
	DeclSymbol map[ast.StmtID]symbols.SymbolID

	errorsInBuffer int
}

// NewContext builds a Context over a fresh scope tree, symbol table, and
// type cache, all owned by this analysis run. builder is the syntax tree
// being annotated; it supplies the shared string interner.
func NewContext(builder *ast.Builder, reporter diag.Reporter) *Context {
	scopes := symbols.NewTree()
	typesIn := types.NewInterner()
	return &Context{
		Builder:  builder,
		Strings:  builder.StringsInterner,
		Scopes:   scopes,
		Symbols:  symbols.NewTable(scopes),
		TypesIn:  typesIn,
		Cache:    types.NewCache(typesIn),
		Reporter:    reporter,
		Entries:     make(map[symbols.SymbolID]types.CacheEntry, 64),
		ExprEntries: make(map[ast.ExprID]types.CacheEntry, 64),
		DeclSymbol:  make(map[ast.StmtID]symbols.SymbolID, 32),
	}
}

// report emits a SevError diagnostic and marks that this pass's run saw an
// error, so the pipeline driver (spec.md §4.8) can gate subsequent passes.
func (c *Context) report(code diag.Code, sp source.Span, msg string) {
	c.errorsInBuffer++
	if c.Reporter == nil {
		return
	}
	c.Reporter.Report(code, diag.SevError, sp, msg, nil, nil)
}

// reportWithNote is report plus a single auxiliary note, used where a
// diagnostic benefits from pointing at a second span (e.g. the declaration
// site a type mismatch was inferred against).
func (c *Context) reportWithNote(code diag.Code, sp source.Span, msg string, noteSpan source.Span, noteMsg string) {
	c.errorsInBuffer++
	if c.Reporter == nil {
		return
	}
	c.Reporter.Report(code, diag.SevError, sp, msg, []diag.Note{{Span: noteSpan, Msg: noteMsg}}, nil)
}

// HasErrors reports whether any pass run on this Context has reported an
// error since the Context was created.
func (c *Context) HasErrors() bool { return c.errorsInBuffer > 0 }

// ErrorCount returns the running total of errors reported on this Context.
func (c *Context) ErrorCount() int { return c.errorsInBuffer }
