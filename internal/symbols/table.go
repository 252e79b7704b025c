package symbols

import "surge/internal/source"

// nameKey disambiguates a name lookup by the scope and namespace it is
// declared in.
type nameKey struct {
	scope     ScopeID
	namespace Namespace
	name      source.StringID
}

// Table is the symbol table (spec.md §3 "Symbol"): a dense array of symbols
// addressed by SymbolID, plus a per-scope-and-namespace name index used for
// declaration (shadowing) and resolution (parent-chain lookup).
type Table struct {
	symbols []Symbol // index 0 reserved, SymbolIDs are 1-based
	byName  map[nameKey][]SymbolID
	scopes  *Tree
}

// NewTable creates an empty symbol table over the given scope tree.
func NewTable(scopes *Tree) *Table {
	return &Table{
		symbols: make([]Symbol, 1, 64),
		byName:  make(map[nameKey][]SymbolID, 64),
		scopes:  scopes,
	}
}

// Declare adds a symbol to scope/namespace. Per spec.md §3 invariant 3, a
// later declaration of the same name in the same scope and namespace
// shadows the earlier one (the earlier remains addressable by its
// SymbolID but is no longer found by name in that scope).
func (t *Table) Declare(sym Symbol) SymbolID {
	id := SymbolID(len(t.symbols))
	t.symbols = append(t.symbols, sym)
	key := nameKey{scope: sym.OwningScope, namespace: sym.Namespace, name: sym.Name}
	t.byName[key] = append(t.byName[key], id)
	return id
}

// Get returns the symbol for id.
func (t *Table) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return &t.symbols[id]
}

// Lookup resolves name in namespace starting at scope and walking the
// parent chain (spec.md §3 invariant 2: "the first match in the correct
// namespace wins"). Within a scope, the most recently declared symbol for
// the name wins, implementing shadowing.
func (t *Table) Lookup(scope ScopeID, namespace Namespace, name source.StringID) (SymbolID, bool) {
	for {
		key := nameKey{scope: scope, namespace: namespace, name: name}
		if ids := t.byName[key]; len(ids) > 0 {
			return ids[len(ids)-1], true
		}
		parent, ok := t.scopes.Parent(scope)
		if !ok {
			return NoSymbolID, false
		}
		scope = parent
	}
}
