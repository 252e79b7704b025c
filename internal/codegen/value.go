package codegen

import "math"

// ValueKind tags the active field of a Value, mirroring
// original_source's BytecodeValue enum.
type ValueKind uint8

const (
	ValueBool ValueKind = iota
	ValueString
	ValueI8
	ValueI16
	ValueI32
	ValueI64
	ValueU8
	ValueU16
	ValueU32
	ValueU64
	ValueF32
	ValueF64
	ValueFunction
	ValueChar
	ValueUnit
)

// Value is one constant pool entry. Exactly one field is meaningful,
// selected by Kind; Bits holds the raw integer/bit-pattern payload for every
// numeric and function-index kind so dedup can compare by a single
// bit-pattern-equality key (spec.md §4.7's "float equality uses bit
// patterns", generalized to every kind here).
type Value struct {
	Kind ValueKind `msgpack:"kind"`
	Bits uint64    `msgpack:"bits"`
	Str  string    `msgpack:"str,omitempty"`
}

// key is the dedup identity for the constant pool: two Values holding the
// same Kind, Bits and Str are the same constant, even when Bits is a float
// bit pattern rather than an integer.
type key struct {
	kind ValueKind
	bits uint64
	str  string
}

func (v Value) key() key {
	return key{kind: v.Kind, bits: v.Bits, str: v.Str}
}

func boolValue(b bool) Value {
	var bits uint64
	if b {
		bits = 1
	}
	return Value{Kind: ValueBool, Bits: bits}
}

func stringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func charValue(r rune) Value {
	return Value{Kind: ValueChar, Bits: uint64(r)}
}

func intValue(kind ValueKind, v int64) Value {
	return Value{Kind: kind, Bits: uint64(v)}
}

func uintValue(kind ValueKind, v uint64) Value {
	return Value{Kind: kind, Bits: v}
}

func float32Value(v float32) Value {
	return Value{Kind: ValueF32, Bits: uint64(math.Float32bits(v))}
}

func float64Value(v float64) Value {
	return Value{Kind: ValueF64, Bits: math.Float64bits(v)}
}

func functionValue(index uint32) Value {
	return Value{Kind: ValueFunction, Bits: uint64(index)}
}

func unitValue() Value {
	return Value{Kind: ValueUnit}
}
