package codegen

import (
	"fortio.org/safecast"

	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
)

// Chunk is a unit of emitted bytecode plus its constant pool (glossary:
// "Chunk"). Constants dedup by Value equality; float equality uses bit
// patterns (spec.md §4.7).
type Chunk struct {
	Code      []Instruction `msgpack:"code"`
	Constants []Value       `msgpack:"constants"`

	lookup map[key]uint16
}

func newChunk() *Chunk {
	return &Chunk{lookup: make(map[key]uint16)}
}

func (c *Chunk) emit(op OpCode, operand uint16) {
	c.Code = append(c.Code, Instruction{Op: op, Operand: operand})
}

// addConst interns v into the constant pool, reusing an existing bit-pattern
// equal entry. Fails with TooManyConstants once the pool would exceed the
// 16-bit constant index space.
func (c *Chunk) addConst(v Value, sp source.Span, report func(diag.Code, source.Span, string)) (uint16, bool) {
	k := v.key()
	if idx, ok := c.lookup[k]; ok {
		return idx, true
	}
	idx, err := safecast.Conv[uint16](len(c.Constants))
	if err != nil {
		report(diag.TooManyConstants, sp, "chunk exceeds the maximum constant pool size")
		return 0, false
	}
	c.Constants = append(c.Constants, v)
	c.lookup[k] = idx
	return idx, true
}

// Upvalue records one captured non-local variable (glossary: "Upvalue").
// IsLocal is true when the capture is a direct reference to a local of the
// immediately enclosing chunk, false when it transitively forwards an
// upvalue of that chunk.
type Upvalue struct {
	Symbol  symbols.SymbolID `msgpack:"symbol"`
	IsLocal bool             `msgpack:"is_local"`
}

// FunctionKind distinguishes an ordinary function chunk from other callable
// kinds a later extension might add; spec.md only requires Function today.
type FunctionKind uint8

const (
	FunctionKindFunction FunctionKind = iota
)

// FunctionChunk is one compiled `func` body: its own Chunk plus the
// upvalues it captures from enclosing scopes.
type FunctionChunk struct {
	Name     string       `msgpack:"name,omitempty"`
	Arity    uint8        `msgpack:"arity"`
	Kind     FunctionKind `msgpack:"kind"`
	Chunk    *Chunk       `msgpack:"chunk"`
	Upvalues []Upvalue    `msgpack:"upvalues"`
}

// Module is the bytecode output of one compiled source unit: a top-level
// chunk plus every nested function chunk it or its descendants declared.
type Module struct {
	Top       *Chunk           `msgpack:"top"`
	Functions []FunctionChunk  `msgpack:"functions"`
}
