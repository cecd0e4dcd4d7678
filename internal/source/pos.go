package source

import "fmt"

// Pos is a resolved source position. Line and Col are 1-based; a zero Line
// means the frontend had no location for the entity.
type Pos struct {
	File FileID
	Line uint32
	Col  uint32
}

// IsValid reports whether the position points into a known file.
func (p Pos) IsValid() bool {
	return p.File != NoFileID && p.Line != 0
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d:%d", p.File, p.Line, p.Col)
}

// Before orders positions within the same file; positions in different files
// are ordered by FileID.
func (p Pos) Before(other Pos) bool {
	if p.File != other.File {
		return p.File < other.File
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
