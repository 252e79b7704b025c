package ast

type (
	// FileID identifies a parsed source file.
	FileID uint32
	// StmtID identifies a statement node.
	StmtID uint32
	// ExprID identifies an expression node.
	ExprID uint32
	// TypeID identifies a type-annotation node.
	TypeID uint32
	// PayloadID indexes auxiliary per-kind data for a Stmt, Expr, or TypeExpr.
	PayloadID uint32
)

const (
	// NoFileID indicates no file.
	NoFileID FileID = 0
	// NoStmtID indicates no statement (e.g. a bare `return;`, no else branch).
	NoStmtID StmtID = 0
	// NoExprID indicates no expression (e.g. an inferred `var` with no value, a void return).
	NoExprID ExprID = 0
	// NoTypeID indicates an omitted type annotation.
	NoTypeID TypeID = 0
	// NoPayloadID indicates a node with no auxiliary payload.
	NoPayloadID PayloadID = 0
)

// IsValid reports whether the FileID is non-zero.
func (id FileID) IsValid() bool { return id != NoFileID }

// IsValid reports whether the StmtID is non-zero.
func (id StmtID) IsValid() bool { return id != NoStmtID }

// IsValid reports whether the ExprID is non-zero.
func (id ExprID) IsValid() bool { return id != NoExprID }

// IsValid reports whether the TypeID is non-zero.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// IsValid reports whether the PayloadID is non-zero.
func (id PayloadID) IsValid() bool { return id != NoPayloadID }

// ScopeID identifies a lexical scope (spec.md §3 "Scope"). Scope 0 is the
// global scope and is itself a valid id, so the "no scope assigned yet"
// sentinel is the maximum uint32 rather than zero; every Stmt/Expr carries
// NoScopeID until the scope-identification pass assigns a real one.
type ScopeID uint32

// NoScopeID marks a node whose scope has not been assigned yet.
const NoScopeID ScopeID = ^ScopeID(0)

// IsValid reports whether a scope has been assigned.
func (id ScopeID) IsValid() bool { return id != NoScopeID }

// SymbolID identifies a declared symbol (spec.md §3 "Symbol"). Defined here
// rather than in internal/symbols so ast.Expr's identifier payload can carry
// it without an import cycle (internal/symbols imports internal/ast, not the
// reverse). An ExprIdentData with NoSymbolID is in the *Named* (pre-
// resolution) state; once name resolution assigns a real SymbolID, it is
// *Identified*.
type SymbolID uint32

// NoSymbolID marks an identifier that has not been resolved yet (the
// *Named* state of spec.md §3's two-state identifier tag).
const NoSymbolID SymbolID = 0

// IsValid reports whether the identifier has been resolved (*Identified*).
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
