package parser

import (
	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/token"
)

// parseTypeExpr parses a syntactic type annotation: a bare name, a tuple
// `(T, U, ...)`, or a pointer `*T`. Which bare name denotes a primitive vs a
// struct is resolved later, during name resolution (spec.md §4.3).
func (p *Parser) parseTypeExpr() (ast.TypeID, bool) {
	switch p.lx.Peek().Kind {
	case token.Ident:
		tok := p.advance()
		name := p.arenas.StringsInterner.Intern(tok.Text)
		return p.arenas.Types.NewNamed(tok.Span, name), true

	case token.Star:
		star := p.advance()
		inner, ok := p.parseTypeExpr()
		if !ok {
			return ast.NoTypeID, false
		}
		innerSpan := p.arenas.Types.Get(inner).Span
		return p.arenas.Types.NewPtr(star.Span.Cover(innerSpan), inner), true

	case token.LParen:
		open := p.advance()
		var elems []ast.TypeID
		for !p.at(token.RParen) && !p.at(token.EOF) {
			elem, ok := p.parseTypeExpr()
			if !ok {
				p.resyncUntil(token.RParen, token.Comma)
			} else {
				elems = append(elems, elem)
			}
			if p.at(token.Comma) {
				p.advance()
				continue
			}
			break
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close tuple type")
		if !ok {
			return ast.NoTypeID, false
		}
		return p.arenas.Types.NewTuple(open.Span.Cover(closeTok.Span), elems), true

	default:
		p.err(diag.SynExpectType, "expected a type")
		return ast.NoTypeID, false
	}
}
