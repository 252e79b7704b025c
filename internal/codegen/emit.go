package codegen

import (
	"fortio.org/safecast"

	"surge/internal/ast"
	"surge/internal/diag"
	"surge/internal/hir"
	"surge/internal/source"
	"surge/internal/types"
)

// Emit walks an annotated module (internal/hir, the lowering target of
// spec.md §4.6) and produces its top-level Chunk plus every nested
// FunctionChunk. Grounded on original_source's ChunkBuilder::new /
// gen_statement / gen_expression cascade in
// crates/luma_codegen/src/codegen.rs.
func Emit(mod *hir.Module, typesIn *types.Interner, reporter diag.Reporter) (*Module, bool) {
	e := &emitter{typesIn: typesIn, reporter: reporter}
	top := &chunkBuilder{emitter: e, chunk: newChunk(), env: newEnvironment()}

	ok := true
	locals := 0
	for _, stmt := range mod.Stmts {
		if !top.genStatement(stmt) {
			ok = false
			continue
		}
		if stmt.Kind == hir.StmtVar {
			locals++
		}
	}
	if !ok {
		return nil, false
	}

	// The module's top level is emitted like a block body (spec.md §8's S1:
	// "PopLocals(1) at top-level"), releasing its locals once compiled.
	n, err := safecast.Conv[uint16](locals)
	if err != nil {
		top.report(diag.TooManyLocals, mod.Span, "module declares too many top-level locals")
		return nil, false
	}
	top.chunk.emit(OpPopLocals, n)

	return &Module{Top: top.chunk, Functions: e.functions}, true
}

// emitter owns the module-wide function chunk table and diagnostic sink
// shared by every chunkBuilder produced while walking the tree.
type emitter struct {
	typesIn   *types.Interner
	reporter  diag.Reporter
	functions []FunctionChunk
}

func (e *emitter) report(code diag.Code, sp source.Span, msg string) {
	e.reporter.Report(code, diag.SevError, sp, msg, nil, nil)
}

// chunkBuilder is the per-chunk emit environment of spec.md §4.7: a chunk,
// the local-slot/upvalue state for it, and a borrowed pointer to the
// enclosing chunk's environment (nil at the top level). The parent pointer
// is read-only and held only for this builder's lifetime (spec.md §9) -
// never retained past genFuncDecl returning.
type chunkBuilder struct {
	emitter *emitter
	chunk   *Chunk
	env     *environment
	parent  *environment
}

func (b *chunkBuilder) report(code diag.Code, sp source.Span, msg string) {
	b.emitter.report(code, sp, msg)
}

// MARK: Statement

func (b *chunkBuilder) genStatement(stmt *hir.Stmt) bool {
	switch stmt.Kind {
	case hir.StmtVar:
		return b.genVarDecl(stmt.Var, stmt.Span)
	case hir.StmtExpr:
		return b.genExprStmt(stmt.ExprStmt.Expr)
	case hir.StmtFunc:
		return b.genFuncDecl(stmt.Func, stmt.Span)
	case hir.StmtReturn:
		return b.genReturn(stmt.Return)
	case hir.StmtStruct:
		// Struct declarations are type-level only: nothing runtime reads a
		// struct symbol by itself (constructing or accessing one is
		// UnsupportedConstruct well before codegen sees it), so there is no
		// bytecode to emit here.
		return true
	default:
		b.report(diag.UnsupportedConstruct, stmt.Span, "unsupported statement kind reached codegen")
		return false
	}
}

func (b *chunkBuilder) genVarDecl(decl *hir.VarDecl, sp source.Span) bool {
	if !b.genExpression(decl.Init) {
		return false
	}
	slot, ok := b.env.addLocal(decl.Symbol.ID, sp, b.report)
	if !ok {
		return false
	}
	b.chunk.emit(OpSetLocal, slot)
	return true
}

func (b *chunkBuilder) genExprStmt(expr *hir.Expr) bool {
	if !b.genExpression(expr) {
		return false
	}
	b.chunk.emit(OpPop, 0)
	return true
}

func (b *chunkBuilder) genReturn(ret *hir.ReturnStmt) bool {
	if ret.Value != nil {
		if !b.genExpression(ret.Value) {
			return false
		}
	} else {
		idx, ok := b.chunk.addConst(unitValue(), source.Span{}, b.report)
		if !ok {
			return false
		}
		b.chunk.emit(OpConst, idx)
	}
	b.chunk.emit(OpReturn, 0)
	return true
}

// genFuncDecl builds a child chunk whose environment borrows b.env as its
// parent for the duration of this call only (spec.md §9). Parameters
// reserve the callee's first N local slots in declaration order; the VM's
// Call(arity) convention places arguments into those slots directly, so no
// SetLocal is emitted for them here.
func (b *chunkBuilder) genFuncDecl(decl *hir.FuncDecl, sp source.Span) bool {
	child := &chunkBuilder{emitter: b.emitter, chunk: newChunk(), env: newEnvironment(), parent: b.env}

	for _, param := range decl.Params {
		if _, ok := child.env.addLocal(param.Symbol.ID, sp, b.report); !ok {
			return false
		}
	}

	if !child.genExpression(decl.Body) {
		return false
	}
	child.chunk.emit(OpReturn, 0)

	// Upvalue indices are assigned in capture order by addUpvalue; lay them
	// out by index rather than by map iteration order so the recorded list
	// matches the indices GetUpvalue/SetUpvalue instructions already emitted
	// against.
	upvalues := make([]Upvalue, len(child.env.upvalues))
	for symID, idx := range child.env.upvalues {
		_, isLocal := b.env.locals[symID]
		upvalues[idx] = Upvalue{Symbol: symID, IsLocal: isLocal}
	}

	arity, err := safecast.Conv[uint8](len(decl.Params))
	if err != nil {
		b.report(diag.TooManyLocals, sp, "function declares too many parameters")
		return false
	}

	funcIndex, err := safecast.Conv[uint32](len(b.emitter.functions))
	if err != nil {
		b.report(diag.TooManyConstants, sp, "module declares too many functions")
		return false
	}
	b.emitter.functions = append(b.emitter.functions, FunctionChunk{
		Name:     decl.Symbol.Name,
		Arity:    arity,
		Kind:     FunctionKindFunction,
		Chunk:    child.chunk,
		Upvalues: upvalues,
	})

	constIdx, ok := b.chunk.addConst(functionValue(funcIndex), sp, b.report)
	if !ok {
		return false
	}
	b.chunk.emit(OpConst, constIdx)

	slot, ok := b.env.addLocal(decl.Symbol.ID, sp, b.report)
	if !ok {
		return false
	}
	b.chunk.emit(OpSetLocal, slot)
	return true
}

// MARK: Expression

func (b *chunkBuilder) genExpression(e *hir.Expr) bool {
	switch e.Kind {
	case hir.ExprLit:
		return b.genLiteral(e)
	case hir.ExprGroup:
		return b.genExpression(e.Group)
	case hir.ExprIdent:
		return b.genVariable(e)
	case hir.ExprAssign:
		return b.genAssign(e)
	case hir.ExprUnary:
		return b.genUnary(e)
	case hir.ExprBinary:
		return b.genBinary(e)
	case hir.ExprBlock:
		return b.genBlock(e)
	case hir.ExprIf:
		return b.genIf(e)
	case hir.ExprCall:
		return b.genCall(e)
	case hir.ExprTuple:
		b.report(diag.UnsupportedConstruct, e.Span, "tuple construction is not supported by this bytecode emitter")
		return false
	case hir.ExprStructLit, hir.ExprGet:
		b.report(diag.UnsupportedConstruct, e.Span, "struct literals and field access are not supported by this bytecode emitter")
		return false
	default:
		b.report(diag.UnsupportedConstruct, e.Span, "unsupported expression kind reached codegen")
		return false
	}
}

func (b *chunkBuilder) genLiteral(e *hir.Expr) bool {
	v, ok := literalToValue(b.emitter.typesIn, e)
	if !ok {
		b.report(diag.UnknownType, e.Span, "literal has no resolvable constant representation")
		return false
	}
	idx, ok := b.chunk.addConst(v, e.Span, b.report)
	if !ok {
		return false
	}
	b.chunk.emit(OpConst, idx)
	return true
}

func (b *chunkBuilder) genVariable(e *hir.Expr) bool {
	res, ok := b.env.resolveSymbol(e.Ident.ID, b.parent)
	if !ok {
		b.report(diag.UndefinedLocal, e.Span, "reference to undefined local '"+e.Ident.Name+"'")
		return false
	}
	if res.isUpvalue {
		b.chunk.emit(OpGetUpvalue, res.slot)
	} else {
		b.chunk.emit(OpGetLocal, res.slot)
	}
	return true
}

func (b *chunkBuilder) genAssign(e *hir.Expr) bool {
	if !b.genExpression(e.AssignE.Value) {
		return false
	}
	if e.AssignE.Target.Kind != hir.ExprIdent {
		b.report(diag.UndefinedLocal, e.Span, "assignment target is not an identifier")
		return false
	}
	res, ok := b.env.resolveSymbol(e.AssignE.Target.Ident.ID, b.parent)
	if !ok {
		b.report(diag.UnableToCaptureUpvalue, e.Span, "unable to capture upvalue for assignment target '"+e.AssignE.Target.Ident.Name+"'")
		return false
	}
	if res.isUpvalue {
		b.chunk.emit(OpSetUpvalue, res.slot)
	} else {
		b.chunk.emit(OpSetLocal, res.slot)
	}
	return true
}

func (b *chunkBuilder) genUnary(e *hir.Expr) bool {
	if !b.genExpression(e.UnaryE.Operand) {
		return false
	}
	var op OpCode
	switch e.UnaryE.Op {
	case ast.ExprUnaryNegate:
		op = OpNegate
	case ast.ExprUnaryNot:
		op = OpNot
	case ast.ExprUnaryBitNot:
		op = OpBitNot
	default:
		b.report(diag.UnsupportedConstruct, e.Span, "unsupported unary operator")
		return false
	}
	b.chunk.emit(op, 0)
	return true
}

var binaryOpcodes = map[ast.ExprBinaryOp]OpCode{
	ast.ExprBinaryAdd:                OpAdd,
	ast.ExprBinarySub:                OpSub,
	ast.ExprBinaryMul:                OpMul,
	ast.ExprBinaryDiv:                OpDiv,
	ast.ExprBinaryMod:                OpMod,
	ast.ExprBinaryBitAnd:             OpBitAnd,
	ast.ExprBinaryBitOr:              OpBitOr,
	ast.ExprBinaryBitXor:             OpBitXor,
	ast.ExprBinaryShiftLeft:          OpShiftLeft,
	ast.ExprBinaryShiftRight:         OpShiftRight,
	ast.ExprBinaryAnd:                OpAnd,
	ast.ExprBinaryOr:                 OpOr,
	ast.ExprBinaryEquals:             OpEquals,
	ast.ExprBinaryNotEquals:          OpNotEquals,
	ast.ExprBinaryGreaterThan:        OpGreaterThan,
	ast.ExprBinaryGreaterThanEqual:   OpGreaterThanEqual,
	ast.ExprBinaryLesserThan:         OpLesserThan,
	ast.ExprBinaryLesserThanEqual:    OpLesserThanEqual,
}

// genBinary emits And/Or as plain non-short-circuiting opcodes, the route
// spec.md §4.7 calls out the reference takes ("the reference takes this
// simpler route").
func (b *chunkBuilder) genBinary(e *hir.Expr) bool {
	if !b.genExpression(e.BinaryE.Left) {
		return false
	}
	if !b.genExpression(e.BinaryE.Right) {
		return false
	}
	op, ok := binaryOpcodes[e.BinaryE.Op]
	if !ok {
		b.report(diag.UnsupportedConstruct, e.Span, "unsupported binary operator")
		return false
	}
	b.chunk.emit(op, 0)
	return true
}

// genBlock emits statements in order, the tail expression (a Unit constant
// when there is none, so the block always leaves exactly one value), then
// PopLocals(n) where n is the number of Var declarations at this level
// (spec.md §4.7, testable property 8).
func (b *chunkBuilder) genBlock(e *hir.Expr) bool {
	locals := 0
	for _, stmt := range e.BlockE.Stmts {
		if !b.genStatement(stmt) {
			return false
		}
		if stmt.Kind == hir.StmtVar {
			locals++
		}
	}

	if e.BlockE.Tail != nil {
		if !b.genExpression(e.BlockE.Tail) {
			return false
		}
	} else {
		idx, ok := b.chunk.addConst(unitValue(), e.Span, b.report)
		if !ok {
			return false
		}
		b.chunk.emit(OpConst, idx)
	}

	n, err := safecast.Conv[uint16](locals)
	if err != nil {
		b.report(diag.TooManyLocals, e.Span, "block declares too many locals to release at once")
		return false
	}
	b.chunk.emit(OpPopLocals, n)
	return true
}

// genIf lowers to conditional-jump form (spec.md §9 leaves this an open
// design choice): JumpIfFalse to the else branch, the then branch, a Jump
// past it, then the else branch (a Unit constant when absent).
func (b *chunkBuilder) genIf(e *hir.Expr) bool {
	if !b.genExpression(e.IfE.Cond) {
		return false
	}

	jumpToElse := len(b.chunk.Code)
	b.chunk.emit(OpJumpIfFalse, 0)

	if !b.genExpression(e.IfE.Then) {
		return false
	}
	jumpToEnd := len(b.chunk.Code)
	b.chunk.emit(OpJump, 0)

	elseStart := len(b.chunk.Code)
	if e.IfE.Else != nil {
		if !b.genExpression(e.IfE.Else) {
			return false
		}
	} else {
		idx, ok := b.chunk.addConst(unitValue(), e.Span, b.report)
		if !ok {
			return false
		}
		b.chunk.emit(OpConst, idx)
	}
	end := len(b.chunk.Code)

	if !b.patchJump(jumpToElse, elseStart, e.Span) {
		return false
	}
	if !b.patchJump(jumpToEnd, end, e.Span) {
		return false
	}
	return true
}

func (b *chunkBuilder) patchJump(jumpIndex, target int, sp source.Span) bool {
	offset, err := safecast.Conv[uint16](target - jumpIndex - 1)
	if err != nil {
		b.report(diag.InvalidPatchPosition, sp, "jump offset does not fit in a 16-bit patch")
		return false
	}
	b.chunk.Code[jumpIndex].Operand = offset
	return true
}

func (b *chunkBuilder) genCall(e *hir.Expr) bool {
	if !b.genExpression(e.CallE.Callee) {
		return false
	}
	for _, arg := range e.CallE.Args {
		if !b.genExpression(arg) {
			return false
		}
	}
	arity, err := safecast.Conv[uint8](len(e.CallE.Args))
	if err != nil {
		b.report(diag.TooManyLocals, e.Span, "call passes too many arguments")
		return false
	}
	b.chunk.emit(OpCall, uint16(arity))
	return true
}
