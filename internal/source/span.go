package source

import "fmt"

// FileID uniquely identifies a source file within a FileSet.
type FileID uint32

// NoFileID marks the absence of a file reference.
const NoFileID FileID = 0

// Span represents a contiguous range of bytes within a source file.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// Empty reports whether the span has zero length.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns the length of the span in bytes.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span that encloses both s and other. Parent AST
// nodes use this to grow their span to cover every child accepted while
// parsing.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// IsValid reports whether the span refers to a loaded file.
func (s Span) IsValid() bool { return s.File != NoFileID }

// ShiftLeft moves the span earlier by shift bytes, clamping at zero rather
// than underflowing. Used when splicing generated text ahead of a span's
// original source position.
func (s Span) ShiftLeft(shift uint32) Span {
	if shift > s.Start {
		return s
	}
	s.Start -= shift
	s.End -= shift
	return s
}

// ShiftRight moves the span later by shift bytes, refusing to shrink it below
// zero length.
func (s Span) ShiftRight(shift uint32) Span {
	if shift > s.Len() {
		return s
	}
	s.Start += shift
	s.End += shift
	return s
}

// ZeroideToStart collapses the span to a zero-length span at its start
// position, useful for diagnostics that point just before a token.
func (s Span) ZeroideToStart() Span {
	s.End = s.Start
	return s
}

// ZeroideToEnd collapses the span to a zero-length span at its end position,
// useful for diagnostics that point just after a token (e.g. "expected ;").
func (s Span) ZeroideToEnd() Span {
	s.Start = s.End
	return s
}
