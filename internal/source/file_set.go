package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// FileSet manages loaded IR files and resolves spans back to positions.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores normalized content under path and returns a fresh FileID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	normalized := filepath.ToSlash(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads a file from disk, normalizes CRLF, and calls Add.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	flags := FileFlags(0)
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (tests, stdin).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil when id is out of range.
func (fs *FileSet) Get(id FileID) *File {
	if fs == nil || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// GetByPath returns the file previously loaded under path.
func (fs *FileSet) GetByPath(path string) (*File, bool) {
	id, ok := fs.index[filepath.ToSlash(path)]
	if !ok {
		return nil, false
	}
	return &fs.files[id], true
}

// Len returns the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve maps a span start offset to a 1-based line/column pair.
func (fs *FileSet) Resolve(sp Span) (path string, lc LineCol) {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>", LineCol{Line: 1, Col: 1}
	}
	return f.Path, f.LineColAt(sp.Start)
}

// LineColAt converts a byte offset into a 1-based line/column pair.
func (f *File) LineColAt(offset uint32) LineCol {
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	})
	if line == 0 {
		return LineCol{Line: 1, Col: offset + 1}
	}
	start := f.LineIdx[line-1]
	lineNo, err := safecast.Conv[uint32](line)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: lineNo, Col: offset - start + 1}
}

// LineSpan returns the span covering the given 1-based line, newline excluded.
func (f *File) LineSpan(line uint32) Span {
	if line == 0 || int(line) > len(f.LineIdx) {
		return Span{File: f.ID}
	}
	start := f.LineIdx[line-1]
	var end uint32
	if int(line) < len(f.LineIdx) {
		end = f.LineIdx[line] - 1
	} else {
		endLen, err := safecast.Conv[uint32](len(f.Content))
		if err != nil {
			panic(fmt.Errorf("content length overflow: %w", err))
		}
		end = endLen
	}
	return Span{File: f.ID, Start: start, End: end}
}

// LineText returns the text of the given 1-based line without the newline.
func (f *File) LineText(line uint32) string {
	sp := f.LineSpan(line)
	if sp.Empty() && sp.Start == 0 && line != 1 {
		return ""
	}
	return string(f.Content[sp.Start:sp.End])
}

func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 1, 16)
	idx[0] = 0
	for i, b := range content {
		if b == '\n' {
			next, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				panic(fmt.Errorf("offset overflow: %w", err))
			}
			idx = append(idx, next)
		}
	}
	return idx
}
