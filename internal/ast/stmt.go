package ast

import "surge/internal/source"

// StmtKind enumerates the different kinds of statements. Var, Func, Struct,
// Return, and Expr are the statement kinds named directly by the tree's
// data model; While, ForClassic, ForIn, Break, and Continue are parsed so
// the grammar stays total but are rejected at lowering time with an
// UnsupportedConstruct diagnostic (see the Open Question entry in
// DESIGN.md).
type StmtKind uint8

const (
	// StmtVar represents a `var name: Type = value;` declaration.
	StmtVar StmtKind = iota
	// StmtFunc represents a `func name(params) ReturnType { body }` declaration.
	StmtFunc
	// StmtStruct represents a `struct Name { fields }` declaration.
	StmtStruct
	// StmtReturn represents a `return` statement.
	StmtReturn
	// StmtExpr represents an expression used as a statement.
	StmtExpr
	// StmtWhile represents a `while` loop.
	StmtWhile
	// StmtForClassic represents a C-style `for` loop.
	StmtForClassic
	// StmtForIn represents a `for .. in` loop.
	StmtForIn
	// StmtBreak represents a `break` statement.
	StmtBreak
	// StmtContinue represents a `continue` statement.
	StmtContinue
)

// Stmt represents a statement node in the syntax tree.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	// Scope is the id of the lexical scope this statement was parsed in.
	// It holds NoScopeID until the scope-identification pass (spec.md §4.1)
	// assigns one; every Stmt has a real scope after that pass runs.
	Scope ScopeID
	// Payload indexes the arena holding this statement's per-kind data.
	// Kinds with no auxiliary data (Break, Continue) use NoPayloadID.
	Payload PayloadID
}

// Stmts manages allocation of statements and their per-kind payloads.
type Stmts struct {
	Arena       *Arena[Stmt]
	Vars        *Arena[VarStmt]
	Funcs       *Arena[FuncStmt]
	Structs     *Arena[StructStmt]
	Returns     *Arena[ReturnStmt]
	Exprs       *Arena[ExprStmt]
	Whiles      *Arena[WhileStmt]
	ClassicFors *Arena[ForClassicStmt]
	ForIns      *Arena[ForInStmt]
}

// NewStmts creates a Stmts with per-kind arenas preallocated using capHint
// as the initial capacity. If capHint is 0, a default of 1<<8 is used.
func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:       NewArena[Stmt](capHint),
		Vars:        NewArena[VarStmt](capHint),
		Funcs:       NewArena[FuncStmt](capHint),
		Structs:     NewArena[StructStmt](capHint),
		Returns:     NewArena[ReturnStmt](capHint),
		Exprs:       NewArena[ExprStmt](capHint),
		Whiles:      NewArena[WhileStmt](capHint),
		ClassicFors: NewArena[ForClassicStmt](capHint),
		ForIns:      NewArena[ForInStmt](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Scope:   NoScopeID,
		Payload: payload,
	}))
}

// Get returns the statement with the given ID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// VarStmt represents a `var name: Type = value;` declaration. Type is
// NoTypeID when the annotation is omitted and must be inferred.
type VarStmt struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
	Value    ExprID
}

// NewVar creates a new var statement.
func (s *Stmts) NewVar(span source.Span, name source.StringID, nameSpan source.Span, typ TypeID, value ExprID) StmtID {
	payload := PayloadID(s.Vars.Allocate(VarStmt{
		Name:     name,
		NameSpan: nameSpan,
		Type:     typ,
		Value:    value,
	}))
	return s.new(StmtVar, span, payload)
}

// Var returns the var statement data for the given StmtID.
func (s *Stmts) Var(id StmtID) *VarStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtVar || !stmt.Payload.IsValid() {
		return nil
	}
	return s.Vars.Get(uint32(stmt.Payload))
}

// FnParam represents a single function parameter `name: Type`.
type FnParam struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
}

// FuncStmt represents a `func name(params) ReturnType { body }` declaration.
// ReturnType is NoTypeID for a function returning unit. Body is always an
// ExprBlock.
type FuncStmt struct {
	Name       source.StringID
	NameSpan   source.Span
	Params     []FnParam
	ReturnType TypeID
	Body       ExprID
}

// NewFunc creates a new func statement.
func (s *Stmts) NewFunc(span source.Span, name source.StringID, nameSpan source.Span, params []FnParam, returnType TypeID, body ExprID) StmtID {
	payload := PayloadID(s.Funcs.Allocate(FuncStmt{
		Name:       name,
		NameSpan:   nameSpan,
		Params:     append([]FnParam(nil), params...),
		ReturnType: returnType,
		Body:       body,
	}))
	return s.new(StmtFunc, span, payload)
}

// Func returns the func statement data for the given StmtID.
func (s *Stmts) Func(id StmtID) *FuncStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFunc || !stmt.Payload.IsValid() {
		return nil
	}
	return s.Funcs.Get(uint32(stmt.Payload))
}

// StructField represents a single `name: Type` field in a struct declaration.
type StructField struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID
}

// StructStmt represents a `struct Name { fields }` declaration.
type StructStmt struct {
	Name     source.StringID
	NameSpan source.Span
	Fields   []StructField
}

// NewStruct creates a new struct statement.
func (s *Stmts) NewStruct(span source.Span, name source.StringID, nameSpan source.Span, fields []StructField) StmtID {
	payload := PayloadID(s.Structs.Allocate(StructStmt{
		Name:     name,
		NameSpan: nameSpan,
		Fields:   append([]StructField(nil), fields...),
	}))
	return s.new(StmtStruct, span, payload)
}

// Struct returns the struct statement data for the given StmtID.
func (s *Stmts) Struct(id StmtID) *StructStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtStruct || !stmt.Payload.IsValid() {
		return nil
	}
	return s.Structs.Get(uint32(stmt.Payload))
}

// ReturnStmt represents a `return expr;` or bare `return;` statement.
type ReturnStmt struct {
	Value ExprID // NoExprID for a bare return
}

// NewReturn creates a new return statement.
func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	payload := PayloadID(s.Returns.Allocate(ReturnStmt{Value: value}))
	return s.new(StmtReturn, span, payload)
}

// Return returns the return statement data for the given StmtID.
func (s *Stmts) Return(id StmtID) *ReturnStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtReturn || !stmt.Payload.IsValid() {
		return nil
	}
	return s.Returns.Get(uint32(stmt.Payload))
}

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	Expr ExprID
}

// NewExprStmt creates a new expression statement.
func (s *Stmts) NewExprStmt(span source.Span, expr ExprID) StmtID {
	payload := PayloadID(s.Exprs.Allocate(ExprStmt{Expr: expr}))
	return s.new(StmtExpr, span, payload)
}

// ExprStmt returns the expression statement data for the given StmtID.
func (s *Stmts) ExprStmt(id StmtID) *ExprStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtExpr || !stmt.Payload.IsValid() {
		return nil
	}
	return s.Exprs.Get(uint32(stmt.Payload))
}

// WhileStmt represents a `while cond { body }` loop.
type WhileStmt struct {
	Cond ExprID
	Body ExprID // always an ExprBlock
}

// NewWhile creates a new while statement.
func (s *Stmts) NewWhile(span source.Span, cond, body ExprID) StmtID {
	payload := PayloadID(s.Whiles.Allocate(WhileStmt{Cond: cond, Body: body}))
	return s.new(StmtWhile, span, payload)
}

// While returns the while statement data for the given StmtID.
func (s *Stmts) While(id StmtID) *WhileStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtWhile || !stmt.Payload.IsValid() {
		return nil
	}
	return s.Whiles.Get(uint32(stmt.Payload))
}

// ForClassicStmt represents a C-style `for init; cond; post { body }` loop.
type ForClassicStmt struct {
	Init StmtID
	Cond ExprID
	Post ExprID
	Body ExprID
}

// NewForClassic creates a new C-style for statement.
func (s *Stmts) NewForClassic(span source.Span, init StmtID, cond, post, body ExprID) StmtID {
	payload := PayloadID(s.ClassicFors.Allocate(ForClassicStmt{
		Init: init,
		Cond: cond,
		Post: post,
		Body: body,
	}))
	return s.new(StmtForClassic, span, payload)
}

// ForClassic returns the C-style for statement data for the given StmtID.
func (s *Stmts) ForClassic(id StmtID) *ForClassicStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtForClassic || !stmt.Payload.IsValid() {
		return nil
	}
	return s.ClassicFors.Get(uint32(stmt.Payload))
}

// ForInStmt represents a `for pattern in iterable { body }` loop.
type ForInStmt struct {
	Pattern     source.StringID
	PatternSpan source.Span
	Iterable    ExprID
	Body        ExprID
}

// NewForIn creates a new for-in statement.
func (s *Stmts) NewForIn(span source.Span, pattern source.StringID, patternSpan source.Span, iterable, body ExprID) StmtID {
	payload := PayloadID(s.ForIns.Allocate(ForInStmt{
		Pattern:     pattern,
		PatternSpan: patternSpan,
		Iterable:    iterable,
		Body:        body,
	}))
	return s.new(StmtForIn, span, payload)
}

// ForIn returns the for-in statement data for the given StmtID.
func (s *Stmts) ForIn(id StmtID) *ForInStmt {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtForIn || !stmt.Payload.IsValid() {
		return nil
	}
	return s.ForIns.Get(uint32(stmt.Payload))
}

// NewBreak creates a new break statement.
func (s *Stmts) NewBreak(span source.Span) StmtID {
	return s.new(StmtBreak, span, NoPayloadID)
}

// NewContinue creates a new continue statement.
func (s *Stmts) NewContinue(span source.Span) StmtID {
	return s.new(StmtContinue, span, NoPayloadID)
}
