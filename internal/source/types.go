package source

type (
	// FileID identifies a header or source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a file.
	FileFlags uint8
)

// NoFileID marks an unknown file.
const NoFileID FileID = 0

const (
	// FileSystem marks a file included from a system include directory.
	FileSystem FileFlags = 1 << iota
	// FileVirtual marks a buffer the frontend synthesized (macros, templates).
	FileVirtual
)

// File captures the metadata the frontend reported for one file.
type File struct {
	ID    FileID
	Path  string
	Flags FileFlags
}
