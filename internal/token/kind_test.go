package token_test

import (
	"testing"

	"surge/internal/source"
	"surge/internal/token"
)

func tok(k token.Kind) token.Token {
	return token.Token{Kind: k, Span: source.Span{Start: 0, End: 0}}
}

func TestIsLiteral(t *testing.T) {
	lits := []token.Kind{
		token.IntLit, token.FloatLit, token.StringLit, token.CharLit,
		token.KwTrue, token.KwFalse,
	}
	for _, k := range lits {
		if !tok(k).IsLiteral() {
			t.Fatalf("%v should be literal", k)
		}
	}
	non := []token.Kind{token.Ident, token.KwVar, token.Plus, token.LParen}
	for _, k := range non {
		if tok(k).IsLiteral() {
			t.Fatalf("%v must NOT be literal", k)
		}
	}
}

func TestIsIdent(t *testing.T) {
	if !tok(token.Ident).IsIdent() {
		t.Fatalf("Ident should be ident")
	}
	if tok(token.KwFunc).IsIdent() {
		t.Fatalf("KwFunc must not be ident")
	}
}

func TestIsKeyword(t *testing.T) {
	keywords := []token.Kind{
		token.KwVar, token.KwFunc, token.KwStruct, token.KwReturn,
		token.KwIf, token.KwElse, token.KwWhile, token.KwFor,
		token.KwBreak, token.KwContinue, token.KwTrue, token.KwFalse,
	}
	for _, k := range keywords {
		if !tok(k).IsKeyword() {
			t.Fatalf("%v should be keyword", k)
		}
	}
	if tok(token.Ident).IsKeyword() {
		t.Fatalf("Ident must not be keyword")
	}
}

func TestKindString(t *testing.T) {
	if got := token.KwFunc.String(); got != "func" {
		t.Fatalf("KwFunc.String() = %q, want %q", got, "func")
	}
	if got := token.Plus.String(); got != "+" {
		t.Fatalf("Plus.String() = %q, want %q", got, "+")
	}
}
