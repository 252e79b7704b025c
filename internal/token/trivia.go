package token

import "surge/internal/source"

// TriviaKind classifies a non-code source element.
type TriviaKind uint8

const (
	// TriviaLineComment represents a "// ..." comment.
	TriviaLineComment TriviaKind = iota
	// TriviaBlockComment represents a "/* ... */" comment.
	TriviaBlockComment
)

// Trivia represents a comment attached to the token that follows it. The
// lexer collects trivia separately from the main token stream so the parser
// never has to skip over it.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}
