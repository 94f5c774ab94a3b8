package source

import "testing"

func TestFileSetAddAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.cir", []byte("func @main() {\nentry:\n  ret\n}\n"))

	f := fs.Get(id)
	if f == nil {
		t.Fatal("expected file for id")
	}
	if got := len(f.LineIdx); got != 5 {
		t.Errorf("expected 5 line starts, got %d", got)
	}

	path, lc := fs.Resolve(Span{File: id, Start: f.LineIdx[2], End: f.LineIdx[2] + 3})
	if path != "test.cir" {
		t.Errorf("unexpected path %q", path)
	}
	if lc.Line != 3 || lc.Col != 1 {
		t.Errorf("expected 3:1, got %d:%d", lc.Line, lc.Col)
	}
}

func TestLineSpanAndText(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("t.cir", []byte("a\nbb\nccc"))
	f := fs.Get(id)

	tests := []struct {
		line uint32
		text string
	}{
		{1, "a"},
		{2, "bb"},
		{3, "ccc"},
	}
	for _, tt := range tests {
		if got := f.LineText(tt.line); got != tt.text {
			t.Errorf("line %d: expected %q, got %q", tt.line, tt.text, got)
		}
	}

	sp := f.LineSpan(2)
	if sp.Start != 2 || sp.End != 4 {
		t.Errorf("line 2 span: expected 2-4, got %d-%d", sp.Start, sp.End)
	}
}

func TestLineColAtBoundaries(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("b.cir", []byte("xy\nz"))
	f := fs.Get(id)

	if lc := f.LineColAt(0); lc.Line != 1 || lc.Col != 1 {
		t.Errorf("offset 0: got %d:%d", lc.Line, lc.Col)
	}
	if lc := f.LineColAt(3); lc.Line != 2 || lc.Col != 1 {
		t.Errorf("offset 3: got %d:%d", lc.Line, lc.Col)
	}
}
