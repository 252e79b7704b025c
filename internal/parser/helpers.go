package parser

import (
	"slices"

	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/token"
)

// advance consumes and returns the next token, tracking its span as the
// last-eaten position for end-of-input diagnostics.
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// currentErrorSpan returns the best span to anchor an "unexpected token" or
// "expected X" diagnostic at: the upcoming token's span, or a zero-length
// span right after the last consumed token when the stream has hit EOF.
func (p *Parser) currentErrorSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect consumes the next token if it matches k, otherwise reports code/msg
// at currentErrorSpan and returns ok=false without consuming anything.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.currentErrorSpan()
	p.emitDiagnostic(code, diag.SevError, diagSpan, msg, nil)
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.lx.Peek().Text}, false
}

// err reports a SevError diagnostic at currentErrorSpan.
func (p *Parser) err(code diag.Code, msg string) {
	p.report(code, diag.SevError, p.currentErrorSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) {
	p.emitDiagnostic(code, sev, sp, msg, nil)
}

func (p *Parser) emitDiagnostic(code diag.Code, sev diag.Severity, sp source.Span, msg string, augment func(*diag.ReportBuilder)) {
	if p.opts.Reporter == nil {
		return
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return
	}
	if augment == nil {
		p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
		return
	}
	builder := diag.NewReportBuilder(p.opts.Reporter, sev, code, sp, msg)
	augment(builder)
	builder.Emit()
}

// resyncUntil consumes tokens until Peek matches one of stop or EOF. The stop
// token itself is left unconsumed.
func (p *Parser) resyncUntil(stop ...token.Kind) {
	for !p.at(token.EOF) {
		if slices.Contains(stop, p.lx.Peek().Kind) {
			return
		}
		p.advance()
	}
}

// isBlockStatementStarter reports whether kind can begin a new statement
// inside a block, used by resyncStatement to stop skipping tokens as soon as
// it plausibly reaches the next statement.
func isBlockStatementStarter(kind token.Kind) bool {
	switch kind {
	case token.LBrace, token.KwVar, token.KwReturn, token.KwIf, token.KwWhile,
		token.KwFor, token.KwBreak, token.KwContinue:
		return true
	default:
		return false
	}
}

// resyncStatement recovers after a malformed statement inside a block: skip
// ahead to ';' (depth 0), the block's closing '}', the start of the next
// statement, or EOF. Bracket depth tracking keeps it from stopping on a
// brace/paren/bracket that belongs to a nested, still-unparsed construct.
func (p *Parser) resyncStatement() {
	braceDepth, parenDepth, bracketDepth := 0, 0, 0

	for !p.at(token.EOF) {
		tok := p.lx.Peek()

		switch tok.Kind {
		case token.Semicolon:
			if braceDepth == 0 && parenDepth == 0 && bracketDepth == 0 {
				return
			}
		case token.LBrace:
			braceDepth++
		case token.RBrace:
			if braceDepth > 0 {
				braceDepth--
				break
			}
			if parenDepth == 0 && bracketDepth == 0 {
				return
			}
		case token.LParen:
			parenDepth++
		case token.RParen:
			if parenDepth > 0 {
				parenDepth--
				break
			}
			if braceDepth == 0 && bracketDepth == 0 {
				return
			}
		case token.LBracket:
			bracketDepth++
		case token.RBracket:
			if bracketDepth > 0 {
				bracketDepth--
				break
			}
			if braceDepth == 0 && parenDepth == 0 {
				return
			}
		default:
			if braceDepth == 0 && parenDepth == 0 && bracketDepth == 0 && isBlockStatementStarter(tok.Kind) {
				return
			}
		}

		p.advance()
	}
}
