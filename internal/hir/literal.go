package hir

import (
	"strconv"
	"strings"

	"fortio.org/safecast"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/types"
)

// LiteralKind enumerates the narrowed literal representations a concrete
// type can resolve a literal token to.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
	LitUnit
)

// Literal is a narrowed literal value (spec.md §4.6: "integer and float
// literals are narrowed to concrete sub-variants sized by the expression's
// final type"). IntValue holds the value reinterpreted as its target
// width's bit pattern; codegen reads it back through the owning Expr.Type.
type Literal struct {
	Kind        LiteralKind
	IntValue    uint64
	FloatValue  float64
	BoolValue   bool
	CharValue   rune
	StringValue string
}

// lowerLiteral narrows raw, like "10", "3.14", "\"hi\\n\"", or "'a'",
// against ty, spec.md §4.6's "literal > target::MAX" check implemented via
// fortio.org/safecast.Conv (the same bounds-checked-narrowing idiom the
// rest of this module already uses - ast/arena.go, types/interner.go,
// lexer/cursor.go). Grounded on original_source's lower_literal /
// num_pattern! macro in ast_to_aast.rs, generalized from its per-width
// match arms into one generic conversion.
func (l *lowerer) lowerLiteral(e *ast.ExprLiteralData, ty types.TypeID, sp source.Span) (*Literal, bool) {
	switch e.Kind {
	case ast.ExprLitBool:
		return &Literal{Kind: LitBool, BoolValue: e.BoolValue}, true
	case ast.ExprLitInt:
		return l.lowerIntLiteral(e, ty, sp)
	case ast.ExprLitFloat:
		return l.lowerFloatLiteral(e, ty, sp)
	case ast.ExprLitChar:
		return l.lowerCharLiteral(e, sp)
	case ast.ExprLitString:
		return l.lowerStringLiteral(e), true
	}
	l.report(diag.InvalidLiteralConversion, sp, "unsupported literal kind")
	return nil, false
}

func (l *lowerer) lowerIntLiteral(e *ast.ExprLiteralData, ty types.TypeID, sp source.Span) (*Literal, bool) {
	text := strings.ReplaceAll(l.strings.MustLookup(e.Value), "_", "")
	raw, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		l.report(diag.InvalidLiteralConversion, sp, "malformed integer literal")
		return nil, false
	}

	t, ok := l.typesIn.Lookup(ty)
	if !ok {
		l.report(diag.UnknownType, sp, "literal has no concrete type")
		return nil, false
	}

	switch t.Kind {
	case types.KindUint:
		return narrowUint(l, raw, t.Width, sp)
	case types.KindInt:
		return narrowInt(l, raw, t.Width, sp)
	case types.KindFloat:
		return narrowFloatFromInt(l, raw, t.Width, sp)
	case types.KindChar:
		v, err := safecast.Conv[uint8](raw)
		if err != nil {
			l.report(diag.InvalidCast, sp, "integer literal is not a valid char codepoint")
			return nil, false
		}
		return &Literal{Kind: LitChar, CharValue: rune(v)}, true
	default:
		l.report(diag.InvalidLiteralConversion, sp, "integer literal cannot convert to this type")
		return nil, false
	}
}

func narrowUint(l *lowerer, raw uint64, width types.Width, sp source.Span) (*Literal, bool) {
	var v uint64
	var err error
	switch width {
	case types.Width8:
		var n uint8
		n, err = safecast.Conv[uint8](raw)
		v = uint64(n)
	case types.Width16:
		var n uint16
		n, err = safecast.Conv[uint16](raw)
		v = uint64(n)
	case types.Width32:
		var n uint32
		n, err = safecast.Conv[uint32](raw)
		v = uint64(n)
	default:
		v = raw
	}
	if err != nil {
		l.report(diag.IntegerOverflow, sp, "integer literal overflows target unsigned type")
		return nil, false
	}
	return &Literal{Kind: LitInt, IntValue: v}, true
}

func narrowInt(l *lowerer, raw uint64, width types.Width, sp source.Span) (*Literal, bool) {
	var v int64
	var err error
	switch width {
	case types.Width8:
		var n int8
		n, err = safecast.Conv[int8](raw)
		v = int64(n)
	case types.Width16:
		var n int16
		n, err = safecast.Conv[int16](raw)
		v = int64(n)
	case types.Width32:
		var n int32
		n, err = safecast.Conv[int32](raw)
		v = int64(n)
	default:
		var n int64
		n, err = safecast.Conv[int64](raw)
		v = n
	}
	if err != nil {
		l.report(diag.IntegerOverflow, sp, "integer literal overflows target signed type")
		return nil, false
	}
	return &Literal{Kind: LitInt, IntValue: uint64(v)}, true
}

func narrowFloatFromInt(l *lowerer, raw uint64, width types.Width, sp source.Span) (*Literal, bool) {
	if width == types.Width32 {
		v, err := safecast.Conv[float32](raw)
		if err != nil {
			l.report(diag.IntegerOverflow, sp, "integer literal overflows target float type")
			return nil, false
		}
		return &Literal{Kind: LitFloat, FloatValue: float64(v)}, true
	}
	return &Literal{Kind: LitFloat, FloatValue: float64(raw)}, true
}

func (l *lowerer) lowerFloatLiteral(e *ast.ExprLiteralData, ty types.TypeID, sp source.Span) (*Literal, bool) {
	text := strings.ReplaceAll(l.strings.MustLookup(e.Value), "_", "")
	raw, err := strconv.ParseFloat(text, 64)
	if err != nil {
		l.report(diag.InvalidLiteralConversion, sp, "malformed float literal")
		return nil, false
	}

	t, ok := l.typesIn.Lookup(ty)
	if !ok || t.Kind != types.KindFloat {
		l.report(diag.InvalidLiteralConversion, sp, "float literal cannot convert to this type")
		return nil, false
	}

	if t.Width == types.Width32 {
		v, err := safecast.Conv[float32](raw)
		if err != nil {
			l.report(diag.FloatOverflow, sp, "float literal overflows target type")
			return nil, false
		}
		return &Literal{Kind: LitFloat, FloatValue: float64(v)}, true
	}
	return &Literal{Kind: LitFloat, FloatValue: raw}, true
}

// lowerCharLiteral unescapes a char token's body, matching scan_char's
// lexer comment: escapes are recognized but not decoded until lowering.
func (l *lowerer) lowerCharLiteral(e *ast.ExprLiteralData, sp source.Span) (*Literal, bool) {
	text := l.strings.MustLookup(e.Value)
	body := strings.TrimSuffix(strings.TrimPrefix(text, "'"), "'")
	r, ok := unescapeOne(body)
	if !ok {
		l.report(diag.InvalidLiteralConversion, sp, "malformed char literal")
		return nil, false
	}
	return &Literal{Kind: LitChar, CharValue: r}, true
}

// lowerStringLiteral unescapes a string token's body.
func (l *lowerer) lowerStringLiteral(e *ast.ExprLiteralData) *Literal {
	text := l.strings.MustLookup(e.Value)
	body := strings.TrimSuffix(strings.TrimPrefix(text, "\""), "\"")
	return &Literal{Kind: LitString, StringValue: unescapeAll(body)}
}

// unescapeOne decodes exactly one character (possibly an escape sequence)
// from a char literal's body, matching scan_char's recognized escapes: \\,
// \', \", \n, \t, \r.
func unescapeOne(body string) (rune, bool) {
	runes := []rune(unescapeAll(body))
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}

func unescapeAll(body string) string {
	var b strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		i++
		switch runes[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
