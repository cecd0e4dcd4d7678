package snapshot

import "fmt"

// ErrorKind classifies snapshot errors.
type ErrorKind uint8

const (
	// ErrMalformed is a snapshot that cannot be decoded or whose references
	// do not resolve.
	ErrMalformed ErrorKind = iota + 1
	// ErrVersion is a snapshot whose producer version is not accepted.
	ErrVersion
	// ErrUnknownKind is an enumerated field (access, tag, storage class, ...)
	// holding a name outside its enumeration.
	ErrUnknownKind
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMalformed:
		return "malformed"
	case ErrVersion:
		return "version"
	case ErrUnknownKind:
		return "unknown-kind"
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is returned by Decode and Load.
type Error struct {
	Kind ErrorKind
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	prefix := "snapshot"
	if e.Path != "" {
		prefix = e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t.Kind == e.Kind
}

func malformed(format string, args ...any) *Error {
	return &Error{Kind: ErrMalformed, Msg: fmt.Sprintf(format, args...)}
}
