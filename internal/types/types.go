// Package types implements the Luma type model (spec.md §3 "Type") and the
// union-find type cache used during inference (spec.md §4.4).
package types

import "fmt"

// TypeID uniquely identifies a type inside an Interner.
type TypeID uint32

// NoTypeID marks the absence of a resolved type.
const NoTypeID TypeID = 0

// Kind enumerates the type kinds in spec.md §3: primitive numerics, bool,
// char, string, unit, tuple, ptr, and named (struct references).
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindChar
	KindString
	KindInt
	KindUint
	KindFloat
	KindTuple
	KindPtr
	KindNamed
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindTuple:
		return "tuple"
	case KindPtr:
		return "ptr"
	case KindNamed:
		return "named"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the bit width of a numeric primitive.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Type is a compact, value-comparable descriptor for any Luma type.
// Elems holds tuple member types; Elem holds a ptr's pointee type; Name
// holds a named type's declared name (struct) plus DefID, its declaring
// symbol, once known.
type Type struct {
	Kind  Kind
	Width Width // meaningful for Int/Uint/Float
	Elem  TypeID
	Elems []TypeID
	Name  string
	DefID uint32 // SymbolID of the struct declaration; 0 if unresolved
}

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type { return Type{Kind: KindInt, Width: width} }

// MakeUint describes an unsigned integer of the given width.
func MakeUint(width Width) Type { return Type{Kind: KindUint, Width: width} }

// MakeFloat describes a floating-point type of the given width.
func MakeFloat(width Width) Type { return Type{Kind: KindFloat, Width: width} }

// MakeTuple describes a tuple of the given element types.
func MakeTuple(elems []TypeID) Type {
	return Type{Kind: KindTuple, Elems: append([]TypeID(nil), elems...)}
}

// MakePtr describes a pointer to the given element type.
func MakePtr(elem TypeID) Type { return Type{Kind: KindPtr, Elem: elem} }

// MakeNamed describes a reference to a struct declaration by name.
func MakeNamed(name string, defID uint32) Type {
	return Type{Kind: KindNamed, Name: name, DefID: defID}
}

// Equal reports structural equality between two types (spec.md §3: "Types
// are value-comparable by structure").
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind || t.Width != other.Width || t.Elem != other.Elem || t.Name != other.Name {
		return false
	}
	if len(t.Elems) != len(other.Elems) {
		return false
	}
	for i := range t.Elems {
		if t.Elems[i] != other.Elems[i] {
			return false
		}
	}
	return true
}
