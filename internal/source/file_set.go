package source

import (
	"fmt"

	"fortio.org/safecast"
)

// FileSet interns the file paths referenced by source positions.
// FileID 0 is reserved for "no file".
type FileSet struct {
	files []File
	index map[string]FileID // path -> id
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: []File{{ID: NoFileID}},
		index: make(map[string]FileID),
	}
}

// Add registers path and returns its FileID. Adding the same path twice
// returns the existing id; flags from later calls are merged in.
func (fileSet *FileSet) Add(path string, flags FileFlags) FileID {
	normalized := normalizePath(path)
	if id, ok := fileSet.index[normalized]; ok {
		fileSet.files[id].Flags |= flags
		return id
	}
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:    id,
		Path:  normalized,
		Flags: flags,
	})
	fileSet.index[normalized] = id
	return id
}

// Get returns the file metadata for id, or nil when id is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if fileSet == nil || id == NoFileID || int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// Lookup returns the FileID for path.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Len reports the number of registered files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files) - 1
}

// Render prints pos the way the frontend prints locations: "path:line:col".
// Invalid positions render as the empty string.
func (fileSet *FileSet) Render(pos Pos) string {
	if !pos.IsValid() {
		return ""
	}
	f := fileSet.Get(pos.File)
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", f.Path, pos.Line, pos.Col)
}
