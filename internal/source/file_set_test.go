package source

import (
	"os"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.sg", []byte("hello world"), 0)
	if id1 != 0 {
		t.Errorf("expected first FileID to be 0, got %d", id1)
	}

	latestID, exists := fs.GetLatest("test.sg")
	if !exists {
		t.Error("expected file to exist after Add")
	}
	if latestID != id1 {
		t.Errorf("expected latest ID to be %d, got %d", id1, latestID)
	}

	id2 := fs.Add("test.sg", []byte("hello universe"), 0)
	if id2 != 1 {
		t.Errorf("expected second FileID to be 1, got %d", id2)
	}

	latestID, exists = fs.GetLatest("test.sg")
	if !exists {
		t.Error("expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Errorf("expected latest ID to be %d, got %d", id2, latestID)
	}

	file1 := fs.Get(id1)
	if string(file1.Content) != "hello world" {
		t.Errorf("expected first file content 'hello world', got %q", string(file1.Content))
	}

	file2 := fs.Get(id2)
	if string(file2.Content) != "hello universe" {
		t.Errorf("expected second file content 'hello universe', got %q", string(file2.Content))
	}

	if file1.Path != "test.sg" || file2.Path != "test.sg" {
		t.Error("expected both versions to share the same path")
	}
}

func TestAddVirtualLineIdx(t *testing.T) {
	fs := NewFileSet()

	id := fs.AddVirtual("a.sg", []byte("a\nb\n"))
	file := fs.Get(id)

	expected := []uint32{1, 3}
	if len(file.LineIdx) != len(expected) {
		t.Errorf("expected LineIdx length %d, got %d", len(expected), len(file.LineIdx))
	}
	for i, val := range expected {
		if file.LineIdx[i] != val {
			t.Errorf("LineIdx[%d] = %d, want %d", i, file.LineIdx[i], val)
		}
	}

	if file.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}
}

func TestCRLFNormalization(t *testing.T) {
	fs := NewFileSet()

	original := []byte("a\r\nb\r\n")
	normalized, changed := normalizeCRLF(original)

	if !changed {
		t.Error("expected CRLF normalization to be detected")
	}

	expected := []byte("a\nb\n")
	if string(normalized) != string(expected) {
		t.Errorf("normalized content = %q, want %q", string(normalized), string(expected))
	}

	expectedLen := len(original) - 2 // two "\r\n" pairs collapse to "\n"
	if len(normalized) != expectedLen {
		t.Errorf("normalized length = %d, want %d", len(normalized), expectedLen)
	}

	id := fs.Add("test.sg", normalized, FileNormalizedCRLF)
	file := fs.Get(id)
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag to be set")
	}
}

func TestBOMRemoval(t *testing.T) {
	fs := NewFileSet()

	bomContent := []byte{0xEF, 0xBB, 0xBF, 'x', '\n'}
	withoutBOM, hadBOM := removeBOM(bomContent)

	if !hadBOM {
		t.Error("expected BOM to be detected")
	}

	expected := []byte{'x', '\n'}
	if string(withoutBOM) != string(expected) {
		t.Errorf("content without BOM = %q, want %q", string(withoutBOM), string(expected))
	}

	id := fs.Add("test.sg", withoutBOM, FileHadBOM)
	file := fs.Get(id)
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
}

func TestResolveUTF8(t *testing.T) {
	fs := NewFileSet()

	// "α\n": α occupies two bytes.
	content := []byte("α\n")
	id := fs.AddVirtual("test.sg", content)

	span := Span{File: id, Start: 0, End: 1}
	start, end := fs.Resolve(span)

	expectedStart := LineCol{Line: 1, Col: 1}
	expectedEnd := LineCol{Line: 1, Col: 2}

	if start != expectedStart {
		t.Errorf("start = %+v, want %+v", start, expectedStart)
	}
	if end != expectedEnd {
		t.Errorf("end = %+v, want %+v", end, expectedEnd)
	}
}

func TestEdgeCases(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.AddVirtual("empty.sg", []byte{})
	file1 := fs.Get(id1)
	if len(file1.LineIdx) != 0 {
		t.Errorf("expected empty LineIdx for an empty file, got length %d", len(file1.LineIdx))
	}

	id2 := fs.AddVirtual("no_newlines.sg", []byte("hello"))
	file2 := fs.Get(id2)
	if len(file2.LineIdx) != 0 {
		t.Errorf("expected empty LineIdx for a file without newlines, got length %d", len(file2.LineIdx))
	}

	id3 := fs.AddVirtual("only_newline.sg", []byte("\n"))
	file3 := fs.Get(id3)
	if len(file3.LineIdx) != 1 || file3.LineIdx[0] != 0 {
		t.Errorf("expected LineIdx [0] for a file with only a newline, got %v", file3.LineIdx)
	}
}

func TestLoad(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.WriteString("a\nb\n"); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err := tempFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	if _, err := fs.Load(tempFile.Name()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("file content = %q, want %q", string(file.Content), "a\nb\n")
	}
	if file.LineIdx[0] != 1 || file.LineIdx[1] != 3 {
		t.Errorf("LineIdx = %v, want [1 3]", file.LineIdx)
	}
}

func TestLoadBOM(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.WriteString("\xEF\xBB\xBFa\nb\n"); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err := tempFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	if _, err := fs.Load(tempFile.Name()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("file content = %q, want %q", string(file.Content), "a\nb\n")
	}
	if file.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag to be set")
	}
}

func TestLoadCRLF(t *testing.T) {
	fs := NewFileSet()
	tempFile, err := os.CreateTemp("", "testdata")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.WriteString("a\r\nb\r\n"); err != nil {
		t.Fatalf("failed to write to temp file: %v", err)
	}
	if err := tempFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	if _, err := fs.Load(tempFile.Name()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	file := fs.Get(0)
	if string(file.Content) != "a\nb\n" {
		t.Errorf("file content = %q, want %q", string(file.Content), "a\nb\n")
	}
	if file.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag to be set")
	}
}
