package token

import "surge/internal/source"

// Token represents a single source token with its location and text.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia // comments consumed before this token
}

// IsLiteral reports whether the token is a numeric, boolean, string, or char literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, StringLit, CharLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwVar, KwFunc, KwStruct, KwReturn, KwIf, KwElse, KwWhile, KwFor,
		KwBreak, KwContinue, KwIn, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
