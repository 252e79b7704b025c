package parser

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/token"
)

// parseVarStmt parses `var name [: Type] = value;` (spec.md §9 examples S1/
// S2: the annotation is optional, the initializer is always required).
func (p *Parser) parseVarStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'var'

	name, nameSpan, ok := p.parseIdent()
	if !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	typ := ast.NoTypeID
	if p.at(token.Colon) {
		p.advance()
		typ, ok = p.parseTypeExpr()
		if !ok {
			p.resyncStatement()
			return ast.NoStmtID, false
		}
	}

	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in var declaration"); !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	value, ok := p.parseExpr()
	if !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after var declaration")
	if !ok {
		return ast.NoStmtID, false
	}

	span := kw.Span.Cover(semi.Span)
	return p.arenas.Stmts.NewVar(span, name, nameSpan, typ, value), true
}

// parseFuncStmt parses `func name(params) [: ReturnType] { body }`.
func (p *Parser) parseFuncStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'func'

	name, nameSpan, ok := p.parseIdent()
	if !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	var params []ast.FnParam
	if !p.at(token.RParen) {
		for {
			pname, pnameSpan, ok := p.parseIdent()
			if !ok {
				p.resyncStatement()
				return ast.NoStmtID, false
			}
			if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after parameter name"); !ok {
				p.resyncStatement()
				return ast.NoStmtID, false
			}
			ptyp, ok := p.parseTypeExpr()
			if !ok {
				p.resyncStatement()
				return ast.NoStmtID, false
			}
			params = append(params, ast.FnParam{Name: pname, NameSpan: pnameSpan, Type: ptyp})

			if p.at(token.Comma) {
				p.advance()
				if p.at(token.RParen) {
					break
				}
				continue
			}
			break
		}
	}

	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameter list"); !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	returnType := ast.NoTypeID
	if p.at(token.Colon) {
		p.advance()
		returnType, ok = p.parseTypeExpr()
		if !ok {
			p.resyncStatement()
			return ast.NoStmtID, false
		}
	}

	body, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoStmtID, false
	}

	bodySpan := p.arenas.Exprs.Get(body).Span
	span := kw.Span.Cover(bodySpan)
	return p.arenas.Stmts.NewFunc(span, name, nameSpan, params, returnType, body), true
}

// parseStructStmt parses `struct Name { field: Type, ... }`.
func (p *Parser) parseStructStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'struct'

	name, nameSpan, ok := p.parseIdent()
	if !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after struct name"); !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	var fields []ast.StructField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname, fnameSpan, ok := p.parseIdent()
		if !ok {
			p.resyncUntil(token.RBrace, token.Comma)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after field name"); !ok {
			p.resyncUntil(token.RBrace, token.Comma)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		ftyp, ok := p.parseTypeExpr()
		if !ok {
			p.resyncUntil(token.RBrace, token.Comma)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		fields = append(fields, ast.StructField{Name: fname, NameSpan: fnameSpan, Type: ftyp})

		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close struct body")
	if !ok {
		return ast.NoStmtID, false
	}

	span := kw.Span.Cover(closeTok.Span)
	return p.arenas.Stmts.NewStruct(span, name, nameSpan, fields), true
}

// parseReturnStmt parses `return [expr];`.
func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'return'

	value := ast.NoExprID
	if !p.at(token.Semicolon) {
		var ok bool
		value, ok = p.parseExpr()
		if !ok {
			p.resyncStatement()
			return ast.NoStmtID, false
		}
	}

	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return statement")
	if !ok {
		return ast.NoStmtID, false
	}

	span := kw.Span.Cover(semi.Span)
	return p.arenas.Stmts.NewReturn(span, value), true
}

// parseWhileStmt parses `while cond { body }`. Accepted by the grammar but
// rejected at lowering time with UnsupportedConstruct (see DESIGN.md).
func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'while'

	p.noStructLit++
	cond, ok := p.parseExpr()
	p.noStructLit--
	if !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	body, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoStmtID, false
	}

	bodySpan := p.arenas.Exprs.Get(body).Span
	span := kw.Span.Cover(bodySpan)
	return p.arenas.Stmts.NewWhile(span, cond, body), true
}

// parseForStmt dispatches between the for-in form and the classic C-style
// for by peeking one identifier ahead for a following 'in'.
func (p *Parser) parseForStmt() (ast.StmtID, bool) {
	kw := p.advance() // 'for'

	if p.at(token.Ident) {
		nameTok := p.lx.Peek()
		identSpan := nameTok.Span
		p.advance()
		if p.at(token.KwIn) {
			ident := p.arenas.StringsInterner.Intern(nameTok.Text)
			p.advance() // 'in'
			p.noStructLit++
			iterable, ok := p.parseExpr()
			p.noStructLit--
			if !ok {
				p.resyncStatement()
				return ast.NoStmtID, false
			}
			body, ok := p.parseBlockExpr()
			if !ok {
				return ast.NoStmtID, false
			}
			bodySpan := p.arenas.Exprs.Get(body).Span
			span := kw.Span.Cover(bodySpan)
			return p.arenas.Stmts.NewForIn(span, ident, identSpan, iterable, body), true
		}
		// Not a for-in after all: push the identifier token back so the
		// classic-for parser (whose init clause may itself start with an
		// identifier-led expression statement) sees it fresh.
		p.lx.Push(nameTok)
	}

	return p.parseForClassicStmt(kw)
}

// parseForClassicStmt parses `for [init]; cond; post { body }` once the
// leading 'for' has been consumed and for-in has been ruled out.
func (p *Parser) parseForClassicStmt(kw token.Token) (ast.StmtID, bool) {
	init := ast.NoStmtID
	if !p.at(token.Semicolon) {
		var ok bool
		if p.at(token.KwVar) {
			init, ok = p.parseVarStmt()
		} else {
			init, ok = p.parseExprStmtNoSemi()
			if ok {
				if _, semiOK := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after loop init"); !semiOK {
					return ast.NoStmtID, false
				}
			}
		}
		if !ok {
			p.resyncStatement()
			return ast.NoStmtID, false
		}
	} else {
		p.advance() // lone ';'
	}

	cond := ast.NoExprID
	if !p.at(token.Semicolon) {
		var ok bool
		p.noStructLit++
		cond, ok = p.parseExpr()
		p.noStructLit--
		if !ok {
			p.resyncStatement()
			return ast.NoStmtID, false
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after loop condition"); !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	post := ast.NoExprID
	if !p.at(token.LBrace) {
		var ok bool
		p.noStructLit++
		post, ok = p.parseExpr()
		p.noStructLit--
		if !ok {
			p.resyncStatement()
			return ast.NoStmtID, false
		}
	}

	body, ok := p.parseBlockExpr()
	if !ok {
		return ast.NoStmtID, false
	}

	bodySpan := p.arenas.Exprs.Get(body).Span
	span := kw.Span.Cover(bodySpan)
	return p.arenas.Stmts.NewForClassic(span, init, cond, post, body), true
}

// parseExprStmtNoSemi parses a bare expression statement without consuming a
// trailing ';' (used for a classic for-loop's init clause, whose ';' is
// parsed by the caller).
func (p *Parser) parseExprStmtNoSemi() (ast.StmtID, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	span := p.arenas.Exprs.Get(expr).Span
	return p.arenas.Stmts.NewExprStmt(span, expr), true
}

// parseBreakStmt parses `break;`.
func (p *Parser) parseBreakStmt() (ast.StmtID, bool) {
	kw := p.advance()
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after 'break'")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewBreak(kw.Span.Cover(semi.Span)), true
}

// parseContinueStmt parses `continue;`.
func (p *Parser) parseContinueStmt() (ast.StmtID, bool) {
	kw := p.advance()
	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after 'continue'")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewContinue(kw.Span.Cover(semi.Span)), true
}

// parseBlockStmt parses one statement inside a block body (var, return,
// while/for/break/continue, or an expression statement). Func and struct
// declarations may not nest inside a block.
func (p *Parser) parseBlockStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwVar:
		return p.parseVarStmt()
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwBreak:
		return p.parseBreakStmt()
	case token.KwContinue:
		return p.parseContinueStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseExprStmt parses an expression used as a statement, requiring a
// trailing ';' unless the expression is block-shaped (block or if) and
// immediately followed by the block's closing brace, matching the teacher's
// semicolon-elision rule for block-shaped statements.
func (p *Parser) parseExprStmt() (ast.StmtID, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		p.resyncStatement()
		return ast.NoStmtID, false
	}

	exprNode := p.arenas.Exprs.Get(expr)
	if exprNode.Kind == ast.ExprBlock || exprNode.Kind == ast.ExprIf {
		if p.at(token.Semicolon) {
			p.advance()
		}
		return p.arenas.Stmts.NewExprStmt(exprNode.Span, expr), true
	}

	semi, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression")
	if !ok {
		return ast.NoStmtID, false
	}
	span := exprNode.Span.Cover(semi.Span)
	return p.arenas.Stmts.NewExprStmt(span, expr), true
}
