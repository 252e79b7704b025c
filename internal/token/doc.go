// Package token defines lexical token kinds and comment trivia for the Luma
// compiler frontend.
// Invariants:
//   - Token.Span matches Token.Text exactly (Start..End).
//   - Comments are collected as leading Trivia on the following token and
//     never appear in the main token stream.
//   - Built-in type names (int, float, bool, string, ...) are lexed as plain
//     identifiers; only the semantic layer knows they are builtins.
package token
