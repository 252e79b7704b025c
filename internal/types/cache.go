package types

// TypeVarID identifies a type variable in the union-find forest used by
// type inference (spec.md §3 "Type Cache entry").
type TypeVarID uint32

// NoTypeVarID marks the absence of a type variable.
const NoTypeVarID TypeVarID = 0

// EntryKind distinguishes a cache entry's two states.
type EntryKind uint8

const (
	// EntryConcrete holds an already-known concrete Type.
	EntryConcrete EntryKind = iota
	// EntryRelative holds a TypeVarID still being unified.
	EntryRelative
)

// CacheEntry is associated with a SymbolID or produced transiently during
// inference: either Concrete(Type) or Relative(TypeVarID).
type CacheEntry struct {
	Kind    EntryKind
	Type    TypeID
	TypeVar TypeVarID
}

// Concrete builds a CacheEntry pinned to a known type.
func Concrete(t TypeID) CacheEntry { return CacheEntry{Kind: EntryConcrete, Type: t} }

// Relative builds a CacheEntry still tied to a type variable.
func Relative(v TypeVarID) CacheEntry { return CacheEntry{Kind: EntryRelative, TypeVar: v} }

// Cache is the union-find forest over type variables described in spec.md
// §3: parents[r] == r iff r is a root; a root is resolved at most once; all
// members of a class share the same resolved type.
type Cache struct {
	in       *Interner
	parents  []TypeVarID // index 0 unused, variables are 1-based
	resolved map[TypeVarID]TypeID
}

// NewCache creates an empty type cache backed by interner in.
func NewCache(in *Interner) *Cache {
	return &Cache{
		in:       in,
		parents:  make([]TypeVarID, 1, 64), // reserve index 0
		resolved: make(map[TypeVarID]TypeID, 64),
	}
}

// Fresh allocates a new type variable, initially its own root.
func (c *Cache) Fresh() TypeVarID {
	id := TypeVarID(len(c.parents))
	c.parents = append(c.parents, id)
	return id
}

// Find returns the representative root of v's equivalence class, applying
// path compression along the way.
func (c *Cache) Find(v TypeVarID) TypeVarID {
	if int(v) >= len(c.parents) {
		return v
	}
	root := v
	for c.parents[root] != root {
		root = c.parents[root]
	}
	for c.parents[v] != root {
		next := c.parents[v]
		c.parents[v] = root
		v = next
	}
	return root
}

// Resolved returns the concrete type pinned to v's class, if any.
func (c *Cache) Resolved(v TypeVarID) (TypeID, bool) {
	t, ok := c.resolved[c.Find(v)]
	return t, ok
}

// Pin fixes v's equivalence class to a concrete type. Pinning a class that
// already has a different resolved type is a unification conflict; callers
// are expected to have already checked compatibility (see Unify).
func (c *Cache) Pin(v TypeVarID, t TypeID) {
	c.resolved[c.Find(v)] = t
}

// Union merges a's and b's equivalence classes. If exactly one side is
// already resolved, the merged class inherits that resolution.
func (c *Cache) Union(a, b TypeVarID) {
	ra, rb := c.Find(a), c.Find(b)
	if ra == rb {
		return
	}
	ta, aok := c.resolved[ra]
	tb, bok := c.resolved[rb]
	c.parents[rb] = ra
	switch {
	case aok:
		c.resolved[ra] = ta
		delete(c.resolved, rb)
	case bok:
		c.resolved[ra] = tb
		delete(c.resolved, rb)
	}
}

// Unify merges two cache entries, interning a when both sides are already
// concrete. It reports ok=false on a structural mismatch between two
// concrete types (a TypeMismatch diagnostic at the caller's span).
func (c *Cache) Unify(a, b CacheEntry) (CacheEntry, bool) {
	switch {
	case a.Kind == EntryConcrete && b.Kind == EntryConcrete:
		ta, _ := c.in.Lookup(a.Type)
		tb, _ := c.in.Lookup(b.Type)
		if !ta.Equal(tb) {
			return CacheEntry{}, false
		}
		return a, true
	case a.Kind == EntryConcrete:
		c.Pin(b.TypeVar, a.Type)
		return a, true
	case b.Kind == EntryConcrete:
		c.Pin(a.TypeVar, b.Type)
		return b, true
	default:
		c.Union(a.TypeVar, b.TypeVar)
		return Relative(c.Find(a.TypeVar)), true
	}
}

// Finalize resolves an entry to a concrete TypeID via the union-find forest,
// used by the type finalization pass (spec.md §4.5). ok is false when a
// Relative entry's class was never pinned (TypeInferenceFailure).
func (c *Cache) Finalize(e CacheEntry) (TypeID, bool) {
	if e.Kind == EntryConcrete {
		return e.Type, true
	}
	return c.Resolved(e.TypeVar)
}
