package sema

import "surge/internal/ast"

// Pass is one ordered stage of the semantic pipeline (spec.md §4): a single
// traversal of a file's statements against a shared Context.
//
// ContinueAfterError reports the pass's gating policy for the pipeline
// driver (spec.md §4.8): false means the driver stops the pipeline if this
// pass's run leaves any errors in the Context, even though the pass itself
// always finishes visiting every node it can reach (recoverable errors
// never abort a pass mid-traversal, only the pipeline between passes).
type Pass interface {
	Name() string
	ContinueAfterError() bool
	Run(ctx *Context, file ast.FileID)
}

// OrderedPasses returns the five name/type passes of spec.md §4.1-§4.5 in
// pipeline order. Lowering (§4.6) lives in internal/hir and runs after
// these via the driver, since its input type (the fully annotated tree)
// differs from a Pass's in-place mutation of ast.Builder.
func OrderedPasses() []Pass {
	return []Pass{
		ScopeIdentification{},
		NameDeclaration{},
		NameResolution{},
		TypeInference{},
		TypeFinalization{},
	}
}
