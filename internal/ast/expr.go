package ast

import (
	"surge/internal/source"
	"surge/internal/types"
)

// ExprKind enumerates the different kinds of expressions.
type ExprKind uint8

const (
	// ExprLiteral represents an integer, float, string, char, or bool literal.
	ExprLiteral ExprKind = iota
	// ExprIdent represents an identifier reference.
	ExprIdent
	// ExprGroup represents a parenthesized expression `(inner)`.
	ExprGroup
	// ExprBlock represents a `{ stmts; tail }` block expression.
	ExprBlock
	// ExprIf represents an `if cond { then } else { else }` expression.
	ExprIf
	// ExprCall represents a function call `callee(args)`.
	ExprCall
	// ExprUnary represents a unary operation.
	ExprUnary
	// ExprBinary represents a binary operation.
	ExprBinary
	// ExprAssign represents an assignment `target = value`.
	ExprAssign
	// ExprStructLit represents a struct literal `Name { field: value, ... }`.
	ExprStructLit
	// ExprTuple represents a tuple literal `(a, b, c)`.
	ExprTuple
	// ExprGet represents a field access `target.field`.
	ExprGet
)

// Expr represents an expression node in the syntax tree.
type Expr struct {
	Kind ExprKind
	Span source.Span
	// Scope is the id of the lexical scope this expression was parsed in.
	// Holds NoScopeID until scope identification (spec.md §4.1) runs.
	Scope ScopeID
	// Type is this expression's resolved type. Holds types.NoTypeID until
	// the type finalization pass (spec.md §4.5) writes back a concrete type.
	Type    types.TypeID
	Payload PayloadID
}

// ExprBinaryOp enumerates binary operators, matching the Binary/Comparison/
// Logical opcode groups in the bytecode instruction set one-to-one.
type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryMod
	ExprBinaryBitAnd
	ExprBinaryBitOr
	ExprBinaryBitXor
	ExprBinaryShiftLeft
	ExprBinaryShiftRight
	ExprBinaryAnd
	ExprBinaryOr
	ExprBinaryEquals
	ExprBinaryNotEquals
	ExprBinaryGreaterThan
	ExprBinaryGreaterThanEqual
	ExprBinaryLesserThan
	ExprBinaryLesserThanEqual
)

// String returns the source-level symbol for a binary operator.
func (op ExprBinaryOp) String() string {
	switch op {
	case ExprBinaryAdd:
		return "+"
	case ExprBinarySub:
		return "-"
	case ExprBinaryMul:
		return "*"
	case ExprBinaryDiv:
		return "/"
	case ExprBinaryMod:
		return "%"
	case ExprBinaryBitAnd:
		return "&"
	case ExprBinaryBitOr:
		return "|"
	case ExprBinaryBitXor:
		return "^"
	case ExprBinaryShiftLeft:
		return "<<"
	case ExprBinaryShiftRight:
		return ">>"
	case ExprBinaryAnd:
		return "&&"
	case ExprBinaryOr:
		return "||"
	case ExprBinaryEquals:
		return "=="
	case ExprBinaryNotEquals:
		return "!="
	case ExprBinaryGreaterThan:
		return ">"
	case ExprBinaryGreaterThanEqual:
		return ">="
	case ExprBinaryLesserThan:
		return "<"
	case ExprBinaryLesserThanEqual:
		return "<="
	default:
		return "?"
	}
}

// ExprUnaryOp enumerates unary operators, matching the Not/Negate/BitNot
// opcodes one-to-one.
type ExprUnaryOp uint8

const (
	ExprUnaryNegate ExprUnaryOp = iota
	ExprUnaryNot
	ExprUnaryBitNot
)

// String returns the source-level symbol for a unary operator.
func (op ExprUnaryOp) String() string {
	switch op {
	case ExprUnaryNegate:
		return "-"
	case ExprUnaryNot:
		return "!"
	case ExprUnaryBitNot:
		return "~"
	default:
		return "?"
	}
}

// ExprLitKind enumerates literal kinds.
type ExprLitKind uint8

const (
	ExprLitInt ExprLitKind = iota
	ExprLitFloat
	ExprLitString
	ExprLitChar
	ExprLitBool
)

// ExprLiteralData holds literal expression details. Value holds the raw
// lexeme text (digits, escaped string body, ...) for numeric and string/char
// literals so that narrowing and overflow checks run during lowering, not
// parsing. BoolValue is meaningful only when Kind == ExprLitBool.
type ExprLiteralData struct {
	Kind      ExprLitKind
	Value     source.StringID
	BoolValue bool
}

// ExprIdentData holds identifier expression details. Symbol holds NoSymbolID
// in the *Named* (pre-resolution) state; the name resolution pass (spec.md
// §4.3) writes the resolved SymbolID in place, moving it to *Identified*.
type ExprIdentData struct {
	Name   source.StringID
	Symbol SymbolID
}

// ExprGroupData holds parenthesized-expression details.
type ExprGroupData struct {
	Inner ExprID
}

// ExprBlockData holds block-expression details. Tail is NoExprID when the
// block's last statement is not a trailing (semicolon-less) expression, in
// which case the block's type is unit.
type ExprBlockData struct {
	Stmts []StmtID
	Tail  ExprID
}

// ExprIfData holds if-expression details. Else is NoExprID when there is no
// else branch, in which case the if expression's type is unit. Then and a
// present Else are always ExprBlock (or a nested ExprIf, for `else if`).
type ExprIfData struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

// ExprCallData holds call-expression details.
type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

// ExprUnaryData holds unary-expression details.
type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

// ExprBinaryData holds binary-expression details.
type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

// ExprAssignData holds assignment-expression details. Target must resolve
// to an ExprIdent or ExprGet during name resolution.
type ExprAssignData struct {
	Target ExprID
	Value  ExprID
}

// ExprStructLitField represents one `name: value` field initializer in a
// struct literal.
type ExprStructLitField struct {
	Name  source.StringID
	Value ExprID
}

// ExprStructLitData holds struct-literal expression details.
type ExprStructLitData struct {
	Name   source.StringID
	Fields []ExprStructLitField
}

// ExprTupleData holds tuple-literal expression details.
type ExprTupleData struct {
	Elements []ExprID
}

// ExprGetData holds field-access expression details.
type ExprGetData struct {
	Target ExprID
	Field  source.StringID
}

// Exprs manages allocation of expressions and their per-kind payloads.
type Exprs struct {
	Arena      *Arena[Expr]
	Literals   *Arena[ExprLiteralData]
	Idents     *Arena[ExprIdentData]
	Groups     *Arena[ExprGroupData]
	Blocks     *Arena[ExprBlockData]
	Ifs        *Arena[ExprIfData]
	Calls      *Arena[ExprCallData]
	Unaries    *Arena[ExprUnaryData]
	Binaries   *Arena[ExprBinaryData]
	Assigns    *Arena[ExprAssignData]
	StructLits *Arena[ExprStructLitData]
	Tuples     *Arena[ExprTupleData]
	Gets       *Arena[ExprGetData]
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using
// capHint as the initial capacity. If capHint is 0, a default of 1<<8 is
// used.
func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Literals:   NewArena[ExprLiteralData](capHint),
		Idents:     NewArena[ExprIdentData](capHint),
		Groups:     NewArena[ExprGroupData](capHint),
		Blocks:     NewArena[ExprBlockData](capHint),
		Ifs:        NewArena[ExprIfData](capHint),
		Calls:      NewArena[ExprCallData](capHint),
		Unaries:    NewArena[ExprUnaryData](capHint),
		Binaries:   NewArena[ExprBinaryData](capHint),
		Assigns:    NewArena[ExprAssignData](capHint),
		StructLits: NewArena[ExprStructLitData](capHint),
		Tuples:     NewArena[ExprTupleData](capHint),
		Gets:       NewArena[ExprGetData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Scope:   NoScopeID,
		Type:    types.NoTypeID,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID, boolValue bool) ExprID {
	payload := e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value, BoolValue: boolValue})
	return e.new(ExprLiteral, span, PayloadID(payload))
}

// Literal returns the literal expression data for the given ExprID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLiteral {
		return nil, false
	}
	return e.Literals.Get(uint32(expr.Payload)), true
}

// NewIdent creates a new identifier expression, initially in the *Named*
// (unresolved) state.
func (e *Exprs) NewIdent(span source.Span, name source.StringID) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name, Symbol: NoSymbolID})
	return e.new(ExprIdent, span, PayloadID(payload))
}

// Ident returns the identifier expression data for the given ExprID.
func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

// NewGroup creates a new parenthesized-expression node.
func (e *Exprs) NewGroup(span source.Span, inner ExprID) ExprID {
	payload := e.Groups.Allocate(ExprGroupData{Inner: inner})
	return e.new(ExprGroup, span, PayloadID(payload))
}

// Group returns the group expression data for the given ExprID.
func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprGroup {
		return nil, false
	}
	return e.Groups.Get(uint32(expr.Payload)), true
}

// NewBlock creates a new block expression.
func (e *Exprs) NewBlock(span source.Span, stmts []StmtID, tail ExprID) ExprID {
	payload := e.Blocks.Allocate(ExprBlockData{
		Stmts: append([]StmtID(nil), stmts...),
		Tail:  tail,
	})
	return e.new(ExprBlock, span, PayloadID(payload))
}

// Block returns the block expression data for the given ExprID.
func (e *Exprs) Block(id ExprID) (*ExprBlockData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBlock {
		return nil, false
	}
	return e.Blocks.Get(uint32(expr.Payload)), true
}

// NewIf creates a new if expression.
func (e *Exprs) NewIf(span source.Span, cond, then, els ExprID) ExprID {
	payload := e.Ifs.Allocate(ExprIfData{Cond: cond, Then: then, Else: els})
	return e.new(ExprIf, span, PayloadID(payload))
}

// If returns the if expression data for the given ExprID.
func (e *Exprs) If(id ExprID) (*ExprIfData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIf {
		return nil, false
	}
	return e.Ifs.Get(uint32(expr.Payload)), true
}

// NewCall creates a new call expression.
func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{
		Callee: callee,
		Args:   append([]ExprID(nil), args...),
	})
	return e.new(ExprCall, span, PayloadID(payload))
}

// Call returns the call expression data for the given ExprID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

// Unary returns the unary expression data for the given ExprID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

// Binary returns the binary expression data for the given ExprID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

// NewAssign creates a new assignment expression.
func (e *Exprs) NewAssign(span source.Span, target, value ExprID) ExprID {
	payload := e.Assigns.Allocate(ExprAssignData{Target: target, Value: value})
	return e.new(ExprAssign, span, PayloadID(payload))
}

// Assign returns the assignment expression data for the given ExprID.
func (e *Exprs) Assign(id ExprID) (*ExprAssignData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprAssign {
		return nil, false
	}
	return e.Assigns.Get(uint32(expr.Payload)), true
}

// NewStructLit creates a new struct-literal expression.
func (e *Exprs) NewStructLit(span source.Span, name source.StringID, fields []ExprStructLitField) ExprID {
	payload := e.StructLits.Allocate(ExprStructLitData{
		Name:   name,
		Fields: append([]ExprStructLitField(nil), fields...),
	})
	return e.new(ExprStructLit, span, PayloadID(payload))
}

// StructLit returns the struct-literal expression data for the given ExprID.
func (e *Exprs) StructLit(id ExprID) (*ExprStructLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprStructLit {
		return nil, false
	}
	return e.StructLits.Get(uint32(expr.Payload)), true
}

// NewTuple creates a new tuple-literal expression.
func (e *Exprs) NewTuple(span source.Span, elements []ExprID) ExprID {
	payload := e.Tuples.Allocate(ExprTupleData{
		Elements: append([]ExprID(nil), elements...),
	})
	return e.new(ExprTuple, span, PayloadID(payload))
}

// Tuple returns the tuple expression data for the given ExprID.
func (e *Exprs) Tuple(id ExprID) (*ExprTupleData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprTuple {
		return nil, false
	}
	return e.Tuples.Get(uint32(expr.Payload)), true
}

// NewGet creates a new field-access expression.
func (e *Exprs) NewGet(span source.Span, target ExprID, field source.StringID) ExprID {
	payload := e.Gets.Allocate(ExprGetData{Target: target, Field: field})
	return e.new(ExprGet, span, PayloadID(payload))
}

// Get returns the field-access expression data for the given ExprID.
func (e *Exprs) GetExpr(id ExprID) (*ExprGetData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprGet {
		return nil, false
	}
	return e.Gets.Get(uint32(expr.Payload)), true
}
