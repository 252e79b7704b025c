package codegen

import (
	"surge/internal/hir"
	"surge/internal/types"
)

// literalToValue implements original_source's literal_to_value: it reads
// the concrete type internal/hir narrowed the literal's value to and picks
// the matching Value variant. hir.Literal.IntValue/FloatValue already hold
// the narrowed bit pattern; this only needs to pick the tag.
func literalToValue(typesIn *types.Interner, e *hir.Expr) (Value, bool) {
	lit := e.Lit
	if lit == nil {
		return Value{}, false
	}

	switch lit.Kind {
	case hir.LitBool:
		return boolValue(lit.BoolValue), true
	case hir.LitString:
		return stringValue(lit.StringValue), true
	case hir.LitChar:
		return charValue(lit.CharValue), true
	case hir.LitUnit:
		return unitValue(), true
	}

	t, ok := typesIn.Lookup(e.Type)
	if !ok {
		return Value{}, false
	}

	switch lit.Kind {
	case hir.LitInt:
		switch t.Kind {
		case types.KindInt:
			switch t.Width {
			case types.Width8:
				return intValue(ValueI8, int64(int8(lit.IntValue))), true
			case types.Width16:
				return intValue(ValueI16, int64(int16(lit.IntValue))), true
			case types.Width32:
				return intValue(ValueI32, int64(int32(lit.IntValue))), true
			default:
				return intValue(ValueI64, int64(lit.IntValue)), true
			}
		case types.KindUint:
			switch t.Width {
			case types.Width8:
				return uintValue(ValueU8, uint64(uint8(lit.IntValue))), true
			case types.Width16:
				return uintValue(ValueU16, uint64(uint16(lit.IntValue))), true
			case types.Width32:
				return uintValue(ValueU32, uint64(uint32(lit.IntValue))), true
			default:
				return uintValue(ValueU64, lit.IntValue), true
			}
		case types.KindChar:
			return charValue(rune(lit.IntValue)), true
		}
	case hir.LitFloat:
		if t.Kind == types.KindFloat && t.Width == types.Width32 {
			return float32Value(float32(lit.FloatValue)), true
		}
		return float64Value(lit.FloatValue), true
	}
	return Value{}, false
}
