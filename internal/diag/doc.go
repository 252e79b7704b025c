// Package diag defines the core diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the lexer, parser, and semantic passes.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//   - Model fix suggestions as structured edits that the driver or CLI can
//     materialise and optionally apply.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in internal/diagfmt,
// whereas orchestration and application of fixes lives in the driver layer.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity - tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code - compact numeric identifier (see codes.go) with a stable string form.
//   - Message - human oriented text; keep it short and actionable.
//   - Primary span - the canonical source.Span pointing to the issue.
//   - Notes - optional secondary spans/messages for additional context.
//   - Fixes - optional Fix records describing how to address the problem.
//
// Notes should be used sparingly: each note must add new context (e.g.
// "declared here") rather than repeating the diagnostic message.
//
// # Fix suggestions
//
// Fix represents a possible automated correction. Each fix carries:
//
//   - Title - short label used in UI listings.
//   - Kind - coarse classification (quick fix, refactor, rewrite, source action).
//   - Applicability - confidence level: AlwaysSafe, SafeWithHeuristics,
//     ManualReview.
//   - IsPreferred - optionally marks the most relevant fix when several exist.
//   - Edits - concrete text edits (Span + new/old text) to apply.
//   - Thunk - optional lazy builder for fixes that are expensive to construct.
//
// Fixes are intentionally data-only. Producers can attach thunks to defer heavy
// computation; formatters and any future fix engine call Resolve/
// MaterializeFixes to expand them deterministically.
//
// TextEdit spans are in source coordinates; OldText acts as an optional guard
// that a fix-applying tool can use to validate context before applying edits.
//
// # Emitting diagnostics
//
// Phases should use a diag.Reporter to decouple emission from storage. A
// phase constructs a ReportBuilder via NewReportBuilder (or the helper
// functions ReportError/ReportWarning/ReportInfo) and chains WithNote /
// WithFixSuggestion before calling Emit.
//
// When no additional metadata is needed, phases may call Reporter.Report(...)
// directly. diag.BagReporter aggregates diagnostics into a Bag, which
// supports sorting, deduplication, filtering, and transformation.
//
// # Consumers
//
//   - internal/diagfmt: renders Diagnostics into pretty/json output.
//   - internal/driver: coordinates bag collection per file and transports
//     diagnostic data to CLI commands.
package diag
