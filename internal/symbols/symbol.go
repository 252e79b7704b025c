package symbols

import (
	"surge/internal/ast"
	"surge/internal/source"
	"surge/internal/types"
)

// SymbolID aliases ast.SymbolID so identifier resolution (which writes a
// SymbolID directly into ast.ExprIdentData) and the symbol table agree on
// representation without conversion.
type SymbolID = ast.SymbolID

// NoSymbolID re-exports ast.NoSymbolID.
const NoSymbolID = ast.NoSymbolID

// Namespace is one of the three disjoint namespaces symbols live in
// (spec.md §3 "Symbol").
type Namespace uint8

const (
	// Value holds variables, functions, and parameters.
	Value Namespace = iota
	// Type holds struct declarations.
	Type
	// ControlFlow holds loop/block labels (unused while while/for/break/
	// continue are parsed-but-rejected; kept so the namespace exists per
	// spec.md §3 even though nothing currently declares into it).
	ControlFlow
)

func (n Namespace) String() string {
	switch n {
	case Value:
		return "value"
	case Type:
		return "type"
	case ControlFlow:
		return "control-flow"
	default:
		return "invalid"
	}
}

// Kind classifies what a Value-namespace symbol denotes.
type Kind uint8

const (
	KindVar Kind = iota
	KindFunc
	KindParam
	KindStruct
)

// Symbol is a declared name in one of the three namespaces (spec.md §3
// "Symbol"). DeclaredType is types.NoTypeID until known (e.g. an
// unannotated `var`, filled in by type finalization).
type Symbol struct {
	Name         source.StringID
	Namespace    Namespace
	Kind         Kind
	OwningScope  ScopeID
	DeclaredType types.TypeID
	Decl         ast.StmtID // the Var/Func/Struct statement (or param owner's Func) that declared it
}
