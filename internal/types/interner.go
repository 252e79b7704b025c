package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores the TypeIDs of Luma's primitive types, interned once at
// startup so every pass can refer to them by value instead of re-interning.
type Builtins struct {
	Unit   TypeID
	Bool   TypeID
	Char   TypeID
	String TypeID
	I8     TypeID
	I16    TypeID
	I32    TypeID
	I64    TypeID
	U8     TypeID
	U16    TypeID
	U32    TypeID
	U64    TypeID
	F32    TypeID
	F64    TypeID
}

// Interner provides stable TypeIDs by structural hashing, following the
// teacher's internal/types interner pattern (types.go/interner.go).
type Interner struct {
	types    []Type
	index    map[string]TypeID
	builtins Builtins
}

// NewInterner creates an Interner pre-seeded with every Luma primitive.
func NewInterner() *Interner {
	in := &Interner{index: make(map[string]TypeID, 64)}
	in.internRaw(Type{Kind: KindInvalid}) // reserve 0 == NoTypeID
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.U8 = in.Intern(MakeUint(Width8))
	in.builtins.U16 = in.Intern(MakeUint(Width16))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.U64 = in.Intern(MakeUint(Width64))
	in.builtins.F32 = in.Intern(MakeFloat(Width32))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns the interned primitive TypeIDs.
func (in *Interner) Builtins() Builtins { return in.builtins }

// Intern ensures t has a stable TypeID, reusing a prior entry when t is
// structurally equal to one already seen.
func (in *Interner) Intern(t Type) TypeID {
	key := canonicalKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: interner overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[canonicalKey(t)] = id
	return id
}

// canonicalKey renders t as a string key. Type embeds a slice (Elems), which
// makes it non-comparable and therefore unusable as a Go map key directly,
// so tuple element ids are flattened into the string instead.
func canonicalKey(t Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d|%d|%s|%d|", t.Kind, t.Width, t.Elem, t.Name, t.DefID)
	for _, e := range t.Elems {
		fmt.Fprintf(&b, "%d,", e)
	}
	return b.String()
}

// Lookup returns the descriptor for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid; used where callers already checked
// IsValid or hold an id produced by this same interner.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}
