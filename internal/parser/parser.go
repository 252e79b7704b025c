// Package parser builds the syntax tree (internal/ast) from a token stream
// (internal/lexer), grounded on the teacher's recursive-descent /
// Pratt-precedence parser (internal/parser/parser.go, expression.go,
// op_table.go) but reduced to Luma's grammar: var/func/struct/return/expr
// statements, the parsed-but-rejected while/for/break/continue family, and
// the expression set named in spec.md §3.
package parser

import (
	"context"
	"slices"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/lexer"
	"surge/internal/source"
	"surge/internal/token"
	"surge/internal/trace"
)

// Options configures a parse run.
type Options struct {
	Trace         bool
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error budget for this parse has been spent.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is the outcome of parsing a single file.
type Result struct {
	File ast.FileID
	Bag  *diag.Bag
}

// Parser holds the per-file parsing state.
type Parser struct {
	lx       *lexer.Lexer
	arenas   *ast.Builder
	file     ast.FileID
	fs       *source.FileSet
	opts     Options
	lastSpan source.Span
	tracer   trace.Tracer
	exprDepth int
	// noStructLit suppresses struct-literal parsing in postfix position
	// while > 0, used while parsing an if/while condition so `if x {`
	// isn't misread as `if (x{}) {`.
	noStructLit int
}

// ParseFile parses a single file's token stream into arenas, returning the
// root FileID and any diagnostics collected along the way.
func ParseFile(ctx context.Context, fs *source.FileSet, lx *lexer.Lexer, arenas *ast.Builder, opts Options) Result {
	p := Parser{
		lx:       lx,
		arenas:   arenas,
		file:     arenas.NewFile(lx.EmptySpan()),
		fs:       fs,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
		tracer:   trace.FromContext(ctx),
	}

	p.parseTopLevel()

	var bag *diag.Bag
	if br, ok := opts.Reporter.(*diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{File: p.file, Bag: bag}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// IsError reports whether any error has been reported so far.
func (p *Parser) IsError() bool {
	return p.opts.CurrentErrors != 0
}

// parseTopLevel loops over top-level statements until EOF, resyncing past
// malformed ones so a single bad declaration doesn't abort the whole file.
func (p *Parser) parseTopLevel() {
	var span *trace.Span
	if p.tracer != nil && p.tracer.Level() >= trace.LevelDebug {
		span = trace.Begin(p.tracer, trace.ScopeNode, "parse_top_level", 0)
		defer span.End("")
	}

	startSpan := p.lx.Peek().Span

	for !p.at(token.EOF) {
		before := p.lx.Peek()

		stmtID, ok := p.parseTopLevelStmt()
		if !ok {
			p.resyncTop()
		} else {
			p.arenas.PushStmt(p.file, stmtID)
		}

		if !p.at(token.EOF) {
			after := p.lx.Peek()
			if after.Kind == before.Kind && after.Span == before.Span {
				p.advance()
			}
		}
	}

	file := p.arenas.Files.Get(p.file)
	file.Span = startSpan.Cover(p.lx.Peek().Span)
}

// parseTopLevelStmt parses one top-level declaration: var, func, or struct.
// A bare expression statement at file scope is rejected by resyncTop via the
// default case below, since Luma programs are declarations plus a `func
// main` entry point rather than a scripted top level.
func (p *Parser) parseTopLevelStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwVar:
		return p.parseVarStmt()
	case token.KwFunc:
		return p.parseFuncStmt()
	case token.KwStruct:
		return p.parseStructStmt()
	default:
		p.err(diag.SynUnexpectedToken, "expected 'var', 'func', or 'struct' at top level")
		return ast.NoStmtID, false
	}
}

// resyncTop recovers after a malformed top-level declaration by skipping
// ahead to the next plausible declaration starter or EOF.
func (p *Parser) resyncTop() {
	stopTokens := []token.Kind{token.Semicolon, token.KwVar, token.KwFunc, token.KwStruct}

	prev := p.lx.Peek()
	p.resyncUntil(stopTokens...)

	if !p.at(token.EOF) && p.lx.Peek().Span == prev.Span && p.lx.Peek().Kind == prev.Kind {
		p.advance()
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
}

// parseIdent expects an identifier, interns it, and reports SynExpectIdentifier
// on failure.
func (p *Parser) parseIdent() (source.StringID, source.Span, bool) {
	if p.at(token.Ident) {
		tok := p.advance()
		return p.arenas.StringsInterner.Intern(tok.Text), tok.Span, true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got \""+p.lx.Peek().Text+"\"")
	return source.NoStringID, p.currentErrorSpan(), false
}
