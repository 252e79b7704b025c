package ast

import (
	"surge/internal/source"
)

// Hints provides capacity hints for the builder's underlying arenas.
type Hints struct{ Files, Stmts, Exprs, Types uint }

// Builder constructs a syntax tree, owning the arenas for every node kind
// plus the string interner shared with the lexer and parser.
type Builder struct {
	Files           *Files
	Stmts           *Stmts
	Exprs           *Exprs
	Types           *TypeExprs
	StringsInterner *source.Interner
}

// NewBuilder creates a Builder configured with capacity hints and a shared
// string interner. If any hint field is zero, a default capacity is applied
// (Files=64, Stmts=256, Exprs=256, Types=128). If stringsInterner is nil, a
// new interner is created.
func NewBuilder(hints Hints, stringsInterner *source.Interner) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Types == 0 {
		hints.Types = 1 << 7
	}
	if stringsInterner == nil {
		stringsInterner = source.NewInterner()
	}
	return &Builder{
		Files:           NewFiles(hints.Files),
		Stmts:           NewStmts(hints.Stmts),
		Exprs:           NewExprs(hints.Exprs),
		Types:           NewTypeExprs(hints.Types),
		StringsInterner: stringsInterner,
	}
}

// NewFile creates a new file node.
func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

// PushStmt appends a top-level statement to a file.
func (b *Builder) PushStmt(file FileID, stmt StmtID) {
	b.Files.PushStmt(file, stmt)
}
