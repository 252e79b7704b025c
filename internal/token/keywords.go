package token

var keywords = map[string]Kind{
	"var":      KwVar,
	"func":     KwFunc,
	"struct":   KwStruct,
	"return":   KwReturn,
	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"for":      KwFor,
	"break":    KwBreak,
	"continue": KwContinue,
	"in":       KwIn,
	"true":     KwTrue,
	"false":    KwFalse,
}

// LookupKeyword reports the Kind of ident if it is a reserved word. Keywords
// are case-sensitive: only the lowercase spelling is recognized.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// IsAssignOp reports whether k is a compound or plain assignment operator.
func IsAssignOp(k Kind) bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign,
		AmpAssign, PipeAssign, CaretAssign, ShlAssign, ShrAssign:
		return true
	default:
		return false
	}
}
