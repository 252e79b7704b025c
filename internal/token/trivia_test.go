package token_test

import (
	"testing"

	"surge/internal/source"
	"surge/internal/token"
)

func TestLeadingCommentTrivia(t *testing.T) {
	tv := token.Trivia{
		Kind: token.TriviaLineComment,
		Span: source.Span{Start: 0, End: 10},
		Text: "// hello",
	}
	tok := token.Token{
		Kind:    token.KwFunc,
		Span:    source.Span{Start: 42, End: 46},
		Text:    "func",
		Leading: []token.Trivia{tv},
	}
	if len(tok.Leading) != 1 || tok.Leading[0].Kind != token.TriviaLineComment {
		t.Fatalf("leading comment trivia must be preserved on the token")
	}
}
