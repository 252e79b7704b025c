package parser

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/token"
)

// parsePrimaryExpr dispatches to the parser for the current token's leading
// atomic expression form.
func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	switch p.lx.Peek().Kind {
	case token.Ident:
		return p.parseIdentExpr()
	case token.IntLit:
		return p.parseLiteral(ast.ExprLitInt)
	case token.FloatLit:
		return p.parseLiteral(ast.ExprLitFloat)
	case token.StringLit:
		return p.parseLiteral(ast.ExprLitString)
	case token.CharLit:
		return p.parseLiteral(ast.ExprLitChar)
	case token.KwTrue, token.KwFalse:
		return p.parseBoolLiteral()
	case token.LParen:
		return p.parseParenExpr()
	case token.LBrace:
		return p.parseBlockExpr()
	case token.KwIf:
		return p.parseIfExpr()
	default:
		p.err(diag.SynExpectExpression, "expected expression")
		return ast.NoExprID, false
	}
}

// parseIdentExpr parses a bare identifier reference, initially unresolved
// (*Named* state, resolved during name resolution per spec.md §4.3).
func (p *Parser) parseIdentExpr() (ast.ExprID, bool) {
	tok := p.advance()
	name := p.arenas.StringsInterner.Intern(tok.Text)
	return p.arenas.Exprs.NewIdent(tok.Span, name), true
}

// parseLiteral parses an int/float/string/char literal, keeping the raw
// lexeme text for lowering to interpret (narrowing, overflow, escapes).
func (p *Parser) parseLiteral(kind ast.ExprLitKind) (ast.ExprID, bool) {
	tok := p.advance()
	value := p.arenas.StringsInterner.Intern(tok.Text)
	return p.arenas.Exprs.NewLiteral(tok.Span, kind, value, false), true
}

// parseBoolLiteral parses `true` or `false`.
func (p *Parser) parseBoolLiteral() (ast.ExprID, bool) {
	tok := p.advance()
	value := p.arenas.StringsInterner.Intern(tok.Text)
	return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLitBool, value, tok.Kind == token.KwTrue), true
}

// parseParenExpr parses a parenthesized expression, disambiguating a group
// `(expr)` from a tuple `(a, b, ...)` by the presence of a comma, mirroring
// the teacher's parseParenExpr.
func (p *Parser) parseParenExpr() (ast.ExprID, bool) {
	openTok := p.advance() // '('

	if p.at(token.RParen) {
		closeTok := p.advance()
		return p.arenas.Exprs.NewTuple(openTok.Span.Cover(closeTok.Span), nil), true
	}

	first, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}

	if p.at(token.Comma) {
		elements := []ast.ExprID{first}
		for p.at(token.Comma) {
			p.advance()
			if p.at(token.RParen) {
				break
			}
			elem, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			elements = append(elements, elem)
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after tuple elements")
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewTuple(openTok.Span.Cover(closeTok.Span), elements), true
	}

	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after expression")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewGroup(openTok.Span.Cover(closeTok.Span), first), true
}

// parseBlockExpr parses `{ stmts... [tail-expr] }`. A bare expression with no
// trailing ';' right before the closing brace becomes the block's tail,
// matching the teacher's semicolon-elision rule for block-shaped statements.
func (p *Parser) parseBlockExpr() (ast.ExprID, bool) {
	openTok, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return ast.NoExprID, false
	}

	var stmts []ast.StmtID
	tail := ast.NoExprID

	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if isBlockExprLeader(p.lx.Peek().Kind) {
			expr, ok := p.parseExpr()
			if !ok {
				p.resyncStatement()
				continue
			}
			if p.at(token.Semicolon) {
				p.advance()
				span := p.arenas.Exprs.Get(expr).Span
				stmts = append(stmts, p.arenas.Stmts.NewExprStmt(span, expr))
				continue
			}
			if p.at(token.RBrace) {
				tail = expr
				break
			}
			// Block/if used as a statement without ';' stays a statement.
			node := p.arenas.Exprs.Get(expr)
			if node.Kind == ast.ExprBlock || node.Kind == ast.ExprIf {
				stmts = append(stmts, p.arenas.Stmts.NewExprStmt(node.Span, expr))
				continue
			}
			p.err(diag.SynExpectSemicolon, "expected ';' after expression")
			p.resyncStatement()
			continue
		}

		stmt, ok := p.parseBlockStmt()
		if !ok {
			p.resyncStatement()
			continue
		}
		stmts = append(stmts, stmt)
	}

	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close block")
	if !ok {
		return ast.NoExprID, false
	}

	return p.arenas.Exprs.NewBlock(openTok.Span.Cover(closeTok.Span), stmts, tail), true
}

// isBlockExprLeader reports whether kind can start a bare expression
// statement inside a block (anything that isn't a dedicated statement
// keyword).
func isBlockExprLeader(kind token.Kind) bool {
	switch kind {
	case token.KwVar, token.KwReturn, token.KwWhile, token.KwFor,
		token.KwBreak, token.KwContinue:
		return false
	default:
		return true
	}
}

// parseIfExpr parses `if cond { then } [else { else } | else if ...]`.
func (p *Parser) parseIfExpr() (ast.ExprID, bool) {
	kw := p.advance() // 'if'

	p.noStructLit++
	cond, ok := p.parseExpr()
	p.noStructLit--
	if !ok {
		return ast.NoExprID, false
	}

	then, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoExprID, false
	}

	els := ast.NoExprID
	span := kw.Span.Cover(p.arenas.Exprs.Get(then).Span)
	if p.at(token.KwElse) {
		p.advance()
		if p.at(token.KwIf) {
			els, ok = p.parseIfExpr()
		} else {
			els, ok = p.parseBlockExpr()
		}
		if !ok {
			return ast.NoExprID, false
		}
		span = span.Cover(p.arenas.Exprs.Get(els).Span)
	}

	return p.arenas.Exprs.NewIf(span, cond, then, els), true
}
