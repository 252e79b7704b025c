package codegen

import (
	"fortio.org/safecast"

	"surge/internal/diag"
	"surge/internal/source"
	"surge/internal/symbols"
)

// environment is the emit environment per chunk (spec.md §4.7): the slot
// assignment for this chunk's locals and the upvalues it has captured so
// far. Grounded on original_source's ChunkBuilderEnvironment.
type environment struct {
	locals        map[symbols.SymbolID]uint16
	upvalues      map[symbols.SymbolID]uint16
	nextLocalSlot uint32
}

func newEnvironment() *environment {
	return &environment{
		locals:   make(map[symbols.SymbolID]uint16),
		upvalues: make(map[symbols.SymbolID]uint16),
	}
}

// resolution is which storage class a resolved symbol lives in.
type resolution struct {
	isUpvalue bool
	slot      uint16
}

func (e *environment) addLocal(id symbols.SymbolID, sp source.Span, report func(diag.Code, source.Span, string)) (uint16, bool) {
	slot, err := safecast.Conv[uint16](e.nextLocalSlot)
	if err != nil {
		report(diag.TooManyLocals, sp, "function exceeds the maximum number of locals")
		return 0, false
	}
	e.locals[id] = slot
	e.nextLocalSlot++
	return slot, true
}

func (e *environment) addUpvalue(id symbols.SymbolID) uint16 {
	idx := uint16(len(e.upvalues))
	e.upvalues[id] = idx
	return idx
}

// resolveSymbol implements spec.md §4.7's four-step lookup: local in the
// current chunk, already-recorded upvalue of this chunk, capturable from
// the parent environment (recursively, since the parent may itself need to
// capture from its own parent), or unresolved.
func (e *environment) resolveSymbol(id symbols.SymbolID, parent *environment) (resolution, bool) {
	if slot, ok := e.locals[id]; ok {
		return resolution{isUpvalue: false, slot: slot}, true
	}
	if idx, ok := e.upvalues[id]; ok {
		return resolution{isUpvalue: true, slot: idx}, true
	}
	if parent == nil {
		return resolution{}, false
	}
	if _, ok := parent.locals[id]; !ok {
		if _, ok := parent.upvalues[id]; !ok {
			return resolution{}, false
		}
	}
	return resolution{isUpvalue: true, slot: e.addUpvalue(id)}, true
}
