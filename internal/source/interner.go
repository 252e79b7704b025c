package source

import (
	"slices"
	"sync"
)

// StringID identifies an interned string (identifier text, string/char
// literal content) within an Interner.
type StringID uint32

// NoStringID marks the absence of an interned string.
const NoStringID StringID = 0

// Interner deduplicates strings behind small dense IDs. Safe for concurrent
// use, since lexing of independent source units may run in parallel.
type Interner struct {
	mu    sync.RWMutex
	byID  []string            // index -> string; byID[0] == "" for NoStringID
	index map[string]StringID // string -> id
}

// NewInterner creates an Interner pre-seeded with NoStringID -> "".
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern inserts s if not already present and returns its StringID.
func (i *Interner) Intern(s string) StringID {
	i.mu.RLock()
	if id, ok := i.index[s]; ok {
		i.mu.RUnlock()
		return id
	}
	i.mu.RUnlock()

	// Copy so the interned string doesn't keep the caller's backing array alive.
	cpy := string([]byte(s))

	i.mu.Lock()
	defer i.mu.Unlock()
	// Re-check: another goroutine may have interned the same string between
	// the RUnlock above and this Lock.
	if id, ok := i.index[cpy]; ok {
		return id
	}
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// InternBytes interns the string formed by b without requiring the caller to
// allocate a string first.
func (i *Interner) InternBytes(b []byte) StringID {
	return i.Intern(string(b))
}

// Lookup returns the string for id, or false if id is out of range.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for id, panicking if id is invalid.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("source: invalid string ID")
	}
	return s
}

// Has reports whether id refers to a string in this Interner.
func (i *Interner) Has(id StringID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) >= 0 && int(id) < len(i.byID)
}

// Len returns the number of distinct strings interned, including the
// NoStringID placeholder (so it is never less than 1).
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a copy of every interned string, indexed by StringID.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}
