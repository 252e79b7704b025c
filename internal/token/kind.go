package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates a byte sequence the lexer could not classify.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// KwVar represents the 'var' keyword (variable declaration).
	KwVar
	// KwFunc represents the 'func' keyword (function declaration).
	KwFunc
	// KwStruct represents the 'struct' keyword (struct declaration).
	KwStruct
	// KwReturn represents the 'return' keyword.
	KwReturn
	// KwIf represents the 'if' keyword.
	KwIf
	// KwElse represents the 'else' keyword.
	KwElse
	// KwWhile represents the 'while' keyword. Parsed but rejected at lowering
	// time: see spec's Open Questions on loop constructs.
	KwWhile
	// KwFor represents the 'for' keyword. Parsed but rejected at lowering time.
	KwFor
	// KwBreak represents the 'break' keyword. Parsed but rejected at lowering time.
	KwBreak
	// KwContinue represents the 'continue' keyword. Parsed but rejected at lowering time.
	KwContinue
	// KwIn represents the 'in' keyword, used by the for-in loop form. Parsed
	// but rejected at lowering time along with the rest of the loop family.
	KwIn
	// KwTrue represents the boolean literal 'true'.
	KwTrue
	// KwFalse represents the boolean literal 'false'.
	KwFalse

	// IntLit represents an integer literal token, e.g. 42.
	IntLit
	// FloatLit represents a floating-point literal token, e.g. 3.14.
	FloatLit
	// StringLit represents a quoted string literal token.
	StringLit
	// CharLit represents a single-quoted character literal token.
	CharLit

	// Plus is '+'.
	Plus
	// Minus is '-'.
	Minus
	// Star is '*'.
	Star
	// Slash is '/'.
	Slash
	// Percent is '%'.
	Percent
	// Assign is '='.
	Assign
	// PlusAssign is '+='.
	PlusAssign
	// MinusAssign is '-='.
	MinusAssign
	// StarAssign is '*='.
	StarAssign
	// SlashAssign is '/='.
	SlashAssign
	// PercentAssign is '%='.
	PercentAssign
	// AmpAssign is '&='.
	AmpAssign
	// PipeAssign is '|='.
	PipeAssign
	// CaretAssign is '^='.
	CaretAssign
	// ShlAssign is '<<='.
	ShlAssign
	// ShrAssign is '>>='.
	ShrAssign
	// EqEq is '=='.
	EqEq
	// BangEq is '!='.
	BangEq
	// Lt is '<'.
	Lt
	// LtEq is '<='.
	LtEq
	// Gt is '>'.
	Gt
	// GtEq is '>='.
	GtEq
	// Shl is '<<'.
	Shl
	// Shr is '>>'.
	Shr
	// Amp is '&' (bitwise and).
	Amp
	// Pipe is '|' (bitwise or).
	Pipe
	// Caret is '^' (bitwise xor).
	Caret
	// Tilde is '~' (bitwise not).
	Tilde
	// AndAnd is '&&' (logical and).
	AndAnd
	// OrOr is '||' (logical or).
	OrOr
	// Bang is '!' (logical not).
	Bang

	// Comma is ','.
	Comma
	// Semicolon is ';'.
	Semicolon
	// Colon is ':'.
	Colon
	// Dot is '.'.
	Dot
	// Question is '?'.
	Question
	// LParen is '('.
	LParen
	// RParen is ')'.
	RParen
	// LBrace is '{'.
	LBrace
	// RBrace is '}'.
	RBrace
	// LBracket is '['.
	LBracket
	// RBracket is ']'.
	RBracket
)

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var kindNames = map[Kind]string{
	Invalid: "invalid", EOF: "eof", Ident: "identifier",
	KwVar: "var", KwFunc: "func", KwStruct: "struct", KwReturn: "return",
	KwIf: "if", KwElse: "else", KwWhile: "while", KwFor: "for",
	KwBreak: "break", KwContinue: "continue", KwIn: "in", KwTrue: "true", KwFalse: "false",
	IntLit: "integer literal", FloatLit: "float literal",
	StringLit: "string literal", CharLit: "char literal",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Assign: "=", PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=",
	SlashAssign: "/=", PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=",
	CaretAssign: "^=", ShlAssign: "<<=", ShrAssign: ">>=",
	EqEq: "==", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Shl: "<<", Shr: ">>", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	AndAnd: "&&", OrOr: "||", Bang: "!",
	Comma: ",", Semicolon: ";", Colon: ":", Dot: ".", Question: "?",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
}
