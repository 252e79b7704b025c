// Package symbols implements the scope tree and symbol table of spec.md §3
// ("Scope", "Symbol") and the name declaration / name resolution passes of
// spec.md §4.2-§4.3, grounded on the teacher's internal/symbols scope/symbol
// table split (scope.go, symbol.go, table.go) but reduced to Luma's three
// scope-creating constructs (block, function body, struct body).
package symbols

import "surge/internal/ast"

// ScopeID aliases ast.ScopeID so every AST node's Scope field and every
// symbol-table lookup speak the same currency without a conversion.
type ScopeID = ast.ScopeID

// NoScopeID re-exports ast.NoScopeID for callers that only import symbols.
const NoScopeID = ast.NoScopeID

// ScopeKind classifies what kind of construct opened a scope.
type ScopeKind uint8

const (
	// ScopeGlobal is scope 0, the file-level/global scope (spec.md §3:
	// "Scope 0 is global").
	ScopeGlobal ScopeKind = iota
	// ScopeFunction is a function body's scope.
	ScopeFunction
	// ScopeBlock is any other block's scope (if/while/for/bare blocks).
	ScopeBlock
	// ScopeStruct is a struct body's scope.
	ScopeStruct
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// Scope is a node in the scope tree (spec.md §3: "records parent:
// Option<ScopeId>").
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID // NoScopeID for the global scope
}

// Tree owns every scope created while walking a file. Scope 0 is always the
// global scope, created by NewTree.
type Tree struct {
	scopes []Scope
}

// NewTree creates a scope tree seeded with the global scope at id 0.
func NewTree() *Tree {
	return &Tree{scopes: []Scope{{Kind: ScopeGlobal, Parent: NoScopeID}}}
}

// Global returns the id of the global scope.
func (t *Tree) Global() ScopeID { return ScopeID(0) }

// New creates a scope nested under parent and returns its id.
func (t *Tree) New(kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, Scope{Kind: kind, Parent: parent})
	return id
}

// Get returns the scope for id, or nil if id is out of range.
func (t *Tree) Get(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// Parent returns id's parent scope and whether one exists (false for the
// global scope).
func (t *Tree) Parent(id ScopeID) (ScopeID, bool) {
	s := t.Get(id)
	if s == nil || !s.Parent.IsValid() {
		return NoScopeID, false
	}
	return s.Parent, true
}
