package ast

import "surge/internal/source"

// TypeExprKind enumerates kinds of syntactic type annotations. Primitive
// types (u8..i64, f32, f64, bool, char, string, unit) and references to
// struct declarations are both spelled as a bare name and share
// TypeExprNamed; which one a name denotes is only known after name
// resolution.
type TypeExprKind uint8

const (
	// TypeExprNamed represents a bare type name: a primitive or a struct.
	TypeExprNamed TypeExprKind = iota
	// TypeExprTuple represents a tuple type `(T, U, ...)`.
	TypeExprTuple
	// TypeExprPtr represents a pointer type `*T`.
	TypeExprPtr
)

// TypeExpr represents a type-annotation node in the syntax tree.
type TypeExpr struct {
	Kind    TypeExprKind
	Span    source.Span
	Payload PayloadID
}

// TypeNamedData holds a bare type name reference.
type TypeNamedData struct {
	Name source.StringID
}

// TypeTupleData holds a tuple type's element types.
type TypeTupleData struct {
	Elements []TypeID
}

// TypePtrData holds a pointer type's pointee.
type TypePtrData struct {
	Inner TypeID
}

// TypeExprs manages allocation of type-annotation nodes and their payloads.
type TypeExprs struct {
	Arena  *Arena[TypeExpr]
	Named  *Arena[TypeNamedData]
	Tuples *Arena[TypeTupleData]
	Ptrs   *Arena[TypePtrData]
}

// NewTypeExprs creates a TypeExprs with per-kind arenas preallocated using
// capHint as the initial capacity. If capHint is 0, a default of 1<<7 is
// used.
func NewTypeExprs(capHint uint) *TypeExprs {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &TypeExprs{
		Arena:  NewArena[TypeExpr](capHint),
		Named:  NewArena[TypeNamedData](capHint),
		Tuples: NewArena[TypeTupleData](capHint),
		Ptrs:   NewArena[TypePtrData](capHint),
	}
}

func (t *TypeExprs) new(kind TypeExprKind, span source.Span, payload PayloadID) TypeID {
	return TypeID(t.Arena.Allocate(TypeExpr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the type-annotation node with the given ID.
func (t *TypeExprs) Get(id TypeID) *TypeExpr {
	return t.Arena.Get(uint32(id))
}

// NewNamed creates a new named-type annotation.
func (t *TypeExprs) NewNamed(span source.Span, name source.StringID) TypeID {
	payload := t.Named.Allocate(TypeNamedData{Name: name})
	return t.new(TypeExprNamed, span, PayloadID(payload))
}

// Named returns the named-type data for the given TypeID.
func (t *TypeExprs) Named(id TypeID) (*TypeNamedData, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != TypeExprNamed {
		return nil, false
	}
	return t.Named.Get(uint32(typ.Payload)), true
}

// NewTuple creates a new tuple-type annotation.
func (t *TypeExprs) NewTuple(span source.Span, elements []TypeID) TypeID {
	payload := t.Tuples.Allocate(TypeTupleData{Elements: append([]TypeID(nil), elements...)})
	return t.new(TypeExprTuple, span, PayloadID(payload))
}

// Tuple returns the tuple-type data for the given TypeID.
func (t *TypeExprs) Tuple(id TypeID) (*TypeTupleData, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != TypeExprTuple {
		return nil, false
	}
	return t.Tuples.Get(uint32(typ.Payload)), true
}

// NewPtr creates a new pointer-type annotation.
func (t *TypeExprs) NewPtr(span source.Span, inner TypeID) TypeID {
	payload := t.Ptrs.Allocate(TypePtrData{Inner: inner})
	return t.new(TypeExprPtr, span, PayloadID(payload))
}

// Ptr returns the pointer-type data for the given TypeID.
func (t *TypeExprs) Ptr(id TypeID) (*TypePtrData, bool) {
	typ := t.Get(id)
	if typ == nil || typ.Kind != TypeExprPtr {
		return nil, false
	}
	return t.Ptrs.Get(uint32(typ.Payload)), true
}
