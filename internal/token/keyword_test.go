package token

import "testing"

func TestLookupKeyword_Positive(t *testing.T) {
	cases := map[string]Kind{
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
		"true":     KwTrue,
		"false":    KwFalse,
	}

	for lexeme, want := range cases {
		got, ok := LookupKeyword(lexeme)
		if !ok {
			t.Fatalf("LookupKeyword(%q) = !ok, want %v", lexeme, want)
		}
		if got != want {
			t.Fatalf("LookupKeyword(%q) = %v, want %v", lexeme, got, want)
		}
	}
}

func TestLookupKeyword_Negative(t *testing.T) {
	notKw := []string{
		"Var", "FUNC", "Return", // case matters — lowering is the lexer's job
		"int", "int8", "uint32", "float64", // type names are plain Ident
		"identifier", "toString",
	}
	for _, s := range notKw {
		if _, ok := LookupKeyword(s); ok {
			t.Fatalf("LookupKeyword(%q) returned ok=true, want false", s)
		}
	}
}

func TestIsAssignOp(t *testing.T) {
	yes := []Kind{Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign,
		PercentAssign, AmpAssign, PipeAssign, CaretAssign, ShlAssign, ShrAssign}
	for _, k := range yes {
		if !IsAssignOp(k) {
			t.Fatalf("IsAssignOp(%v) = false, want true", k)
		}
	}
	no := []Kind{Plus, EqEq, Ident, KwIf}
	for _, k := range no {
		if IsAssignOp(k) {
			t.Fatalf("IsAssignOp(%v) = true, want false", k)
		}
	}
}
