package parser

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/token"
)

// parseExpr is the entry point for expression parsing: assignment wraps the
// binary-operator Pratt climb, since Luma's AST models `=` as a dedicated
// ExprAssign node rather than a binary-operator-table entry.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseAssignExpr()
}

// parseAssignExpr parses `target = value`, right-associative, falling
// through to the binary climb when no '=' follows.
func (p *Parser) parseAssignExpr() (ast.ExprID, bool) {
	left, ok := p.parseBinaryExpr(0)
	if !ok {
		return ast.NoExprID, false
	}

	if !p.at(token.Assign) {
		return left, true
	}
	p.advance()

	value, ok := p.parseAssignExpr()
	if !ok {
		return ast.NoExprID, false
	}

	leftSpan := p.arenas.Exprs.Get(left).Span
	valueSpan := p.arenas.Exprs.Get(value).Span
	return p.arenas.Exprs.NewAssign(leftSpan.Cover(valueSpan), left, value), true
}

// parseBinaryExpr implements Pratt precedence climbing for binary operators.
// minPrec is the minimum precedence accepted at this recursion level.
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		tok := p.lx.Peek()

		prec, rightAssoc := p.getBinaryOperatorPrec(tok.Kind)
		if prec < 0 || prec < minPrec {
			break
		}

		opTok := p.advance()

		nextMinPrec := prec + 1
		if rightAssoc {
			nextMinPrec = prec
		}

		right, ok := p.parseBinaryExpr(nextMinPrec)
		if !ok {
			p.err(diag.SynExpectExpression, "expected expression after binary operator")
			return ast.NoExprID, false
		}

		op := p.tokenKindToBinaryOp(opTok.Kind)
		leftSpan := p.arenas.Exprs.Get(left).Span
		rightSpan := p.arenas.Exprs.Get(right).Span
		left = p.arenas.Exprs.NewBinary(leftSpan.Cover(rightSpan), op, left, right)
	}

	return left, true
}

// parseUnaryExpr handles prefix unary operators, applied right-to-left.
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	if op, ok := p.getUnaryOperator(p.lx.Peek().Kind); ok {
		opTok := p.advance()
		operand, ok := p.parseUnaryExpr()
		if !ok {
			return ast.NoExprID, false
		}
		operandSpan := p.arenas.Exprs.Get(operand).Span
		return p.arenas.Exprs.NewUnary(opTok.Span.Cover(operandSpan), op, operand), true
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr handles call, field-access, and struct-literal postfixes
// applied in a loop to a primary expression.
func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		switch p.lx.Peek().Kind {
		case token.LParen:
			newExpr, ok := p.parseCallExpr(expr)
			if !ok {
				return ast.NoExprID, false
			}
			expr = newExpr

		case token.Dot:
			p.advance()
			if !p.at(token.Ident) {
				p.err(diag.SynExpectFieldName, "expected field name after '.'")
				return ast.NoExprID, false
			}
			fieldTok := p.advance()
			field := p.arenas.StringsInterner.Intern(fieldTok.Text)
			exprSpan := p.arenas.Exprs.Get(expr).Span
			expr = p.arenas.Exprs.NewGet(exprSpan.Cover(fieldTok.Span), expr, field)

		case token.LBrace:
			if p.noStructLit > 0 {
				return expr, true
			}
			node := p.arenas.Exprs.Get(expr)
			if node.Kind != ast.ExprIdent {
				return expr, true
			}
			ident, _ := p.arenas.Exprs.Ident(expr)
			newExpr, ok := p.parseStructLitExpr(node.Span, ident.Name)
			if !ok {
				return ast.NoExprID, false
			}
			expr = newExpr

		default:
			return expr, true
		}
	}
}

// parseCallExpr parses `callee(args, ...)` given an already-parsed callee.
func (p *Parser) parseCallExpr(callee ast.ExprID) (ast.ExprID, bool) {
	p.advance() // '('

	var args []ast.ExprID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		arg, ok := p.parseExpr()
		if !ok {
			p.resyncUntil(token.RParen, token.Comma)
		} else {
			args = append(args, arg)
		}
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close call arguments")
	if !ok {
		return ast.NoExprID, false
	}

	calleeSpan := p.arenas.Exprs.Get(callee).Span
	return p.arenas.Exprs.NewCall(calleeSpan.Cover(closeTok.Span), callee, args), true
}

// parseStructLitExpr parses `Name { field: value, ... }` given the already
// consumed type-name identifier's span and interned name.
func (p *Parser) parseStructLitExpr(nameSpan source.Span, name source.StringID) (ast.ExprID, bool) {
	p.advance() // '{'

	var fields []ast.ExprStructLitField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fieldName, _, ok := p.parseIdent()
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
		value, ok := p.parseExpr()
		if !ok {
			p.resyncUntil(token.RBrace, token.Comma)
			if p.at(token.Comma) {
				p.advance()
			}
			continue
		}
		fields = append(fields, ast.ExprStructLitField{Name: fieldName, Value: value})

		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}

	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close struct literal")
	if !ok {
		return ast.NoExprID, false
	}

	return p.arenas.Exprs.NewStructLit(nameSpan.Cover(closeTok.Span), name, fields), true
}
