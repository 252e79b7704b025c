package ast

import "surge/internal/source"

// File represents a parsed source file: a flat, ordered sequence of top-level
// statements (func, struct, var, or any expression statement at file scope).
type File struct {
	Span  source.Span
	Stmts []StmtID
}

// Files manages allocation of File nodes.
type Files struct {
	Arena *Arena[File]
}

// NewFiles creates a new Files arena with the given capacity hint.
func NewFiles(capHint uint) *Files {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

// New creates a new file in the arena.
func (f *Files) New(sp source.Span) FileID {
	return FileID(f.Arena.Allocate(File{
		Span:  sp,
		Stmts: make([]StmtID, 0),
	}))
}

// Get returns the file with the given ID.
func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}

// PushStmt appends a top-level statement to a file.
func (f *Files) PushStmt(id FileID, stmt StmtID) {
	file := f.Get(id)
	file.Stmts = append(file.Stmts, stmt)
}
