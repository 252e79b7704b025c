// Package driver implements the pipeline driver of spec.md §4.8: it runs
// the lexer, parser, internal/sema's six passes, internal/hir's lowering,
// and internal/codegen's bytecode emitter over one source unit in order,
// gating each stage on the rule `errors_in_buffer == 0 ||
// pass.continue_after_error`. Adapted from the teacher's own
// tokenize.go/parse.go/diagnose.go staging style, reduced from a
// multi-module dependency graph (the teacher analyzes a whole project tree)
// to Luma's single-file scope (SPEC_FULL.md §3).
package driver

import (
	"context"

	"surge/internal/ast"
	"surge/internal/codegen"
	"surge/internal/diag"
	"surge/internal/hir"
	"surge/internal/lexer"
	"surge/internal/observ"
	"surge/internal/parser"
	"surge/internal/sema"
	"surge/internal/source"
)

// DefaultMaxErrors caps the parser's error budget the way the teacher's own
// CLI defaults did, before the driver gives up on a file.
const DefaultMaxErrors = 64

// Result is the outcome of running the full pipeline over one source unit.
// Module is nil whenever Bag carries any error-severity diagnostic -
// callers must check Bag.HasErrors(), not Module == nil, to match
// spec.md §4.8's "returns the error list and, on success, the bytecode."
type Result struct {
	Path   string
	Bag    *diag.Bag
	Module *codegen.Module
	Timing observ.Report
}

// RunSource tokenizes, parses, analyzes, lowers, and emits bytecode for one
// in-memory source unit. Each sema pass reports through a
// diag.StageReporter tagged with that pass's Name(), and the driver stops
// advancing the moment a gating (non-ContinueAfterError) stage leaves
// errors in the bag, exactly as spec.md §4.8 describes.
func RunSource(path string, content []byte, maxErrors uint) Result {
	timer := observ.NewTimer()
	bag := diag.NewBag(256)
	result := Result{Path: path, Bag: bag}

	fileSet := source.NewFileSet()
	fileID := fileSet.AddVirtual(path, content)
	file := fileSet.Get(fileID)

	strings := source.NewInterner()
	builder := ast.NewBuilder(ast.Hints{}, strings)

	lexIdx := timer.Begin("lex")
	lx := lexer.New(file, lexer.Options{
		Reporter: diag.StageReporter{Inner: diag.BagReporter{Bag: bag}, Stage: "lex"},
	})
	timer.End(lexIdx, "")

	parseIdx := timer.Begin("parse")
	if maxErrors == 0 {
		maxErrors = DefaultMaxErrors
	}
	parseRes := parser.ParseFile(context.Background(), fileSet, lx, builder, parser.Options{
		MaxErrors: maxErrors,
		Reporter:  diag.StageReporter{Inner: diag.BagReporter{Bag: bag}, Stage: "parse"},
	})
	timer.End(parseIdx, "")

	if bag.HasErrors() {
		result.Timing = timer.Report()
		return result
	}

	ctx := sema.NewContext(builder, diag.BagReporter{Bag: bag})
	stopped := false
	for _, pass := range sema.OrderedPasses() {
		idx := timer.Begin(pass.Name())
		ctx.Reporter = diag.StageReporter{Inner: diag.BagReporter{Bag: bag}, Stage: pass.Name()}
		pass.Run(ctx, parseRes.File)
		timer.End(idx, "")
		if ctx.HasErrors() && !pass.ContinueAfterError() {
			stopped = true
			break
		}
	}
	if stopped || bag.HasErrors() {
		result.Timing = timer.Report()
		return result
	}

	lowerIdx := timer.Begin("lower")
	mod, ok := hir.Lower(builder, strings, ctx.TypesIn, ctx.Symbols,
		diag.StageReporter{Inner: diag.BagReporter{Bag: bag}, Stage: "lower"}, parseRes.File)
	timer.End(lowerIdx, "")
	if !ok {
		result.Timing = timer.Report()
		return result
	}

	codegenIdx := timer.Begin("codegen")
	bcModule, ok := codegen.Emit(mod, ctx.TypesIn,
		diag.StageReporter{Inner: diag.BagReporter{Bag: bag}, Stage: "codegen"})
	timer.End(codegenIdx, "")

	result.Timing = timer.Report()
	if !ok {
		return result
	}
	result.Module = bcModule
	appendTimingDiagnostic(bag, timingPayload{Kind: "pipeline", Path: path, TotalMS: result.Timing.TotalMS, Phases: result.Timing.Phases})
	return result
}
