package irgen

import (
	"errors"
	"fmt"

	"ffigen/internal/native"
)

// ErrFrontendFatal is returned by Run when the frontend recorded a fatal
// error; the unit returned alongside holds everything before that point.
var ErrFrontendFatal = errors.New("frontend reported a fatal error")

// InvalidKind tells why a declaration could not be built.
type InvalidKind uint8

const (
	// InvalidAnonymousRecord is a top-level record without a name. It is
	// emitted in place where a typedef or variable refers to it.
	InvalidAnonymousRecord InvalidKind = iota + 1
	// InvalidNoDefinition is a C++ record that is only forward-declared.
	InvalidNoDefinition
	// InvalidDefinition is a C++ record whose definition the frontend
	// marked invalid.
	InvalidDefinition
	// InvalidInternalTemplate is the injected twin of an explicitly
	// instantiated class template specialization.
	InvalidInternalTemplate
)

func (k InvalidKind) String() string {
	switch k {
	case InvalidAnonymousRecord:
		return "anonymous record"
	case InvalidNoDefinition:
		return "no definition"
	case InvalidDefinition:
		return "invalid definition"
	case InvalidInternalTemplate:
		return "internal template"
	}
	return fmt.Sprintf("InvalidKind(%d)", k)
}

// InvalidDeclError reports a declaration that is skipped instead of built.
type InvalidDeclError struct {
	Kind InvalidKind
	Decl native.Decl
}

func (e *InvalidDeclError) Error() string {
	if e == nil {
		return "<nil>"
	}
	name := ""
	if e.Decl != nil {
		name = native.QualifiedName(e.Decl)
	}
	switch e.Kind {
	case InvalidAnonymousRecord:
		return "invalid record: anonymous record at top level"
	case InvalidNoDefinition:
		return fmt.Sprintf("invalid C++ record %s: no definition", name)
	case InvalidDefinition:
		return fmt.Sprintf("invalid C++ record %s: definition is invalid", name)
	case InvalidInternalTemplate:
		return fmt.Sprintf("internal template twin %s", name)
	}
	return fmt.Sprintf("invalid declaration %s", name)
}

// Is matches another *InvalidDeclError of the same kind; a zero Kind
// matches every kind.
func (e *InvalidDeclError) Is(target error) bool {
	t, ok := target.(*InvalidDeclError)
	return ok && e != nil && (t.Kind == 0 || t.Kind == e.Kind)
}

type errUnsupportedCharWidth uint8

func (w errUnsupportedCharWidth) Error() string {
	return fmt.Sprintf("unsupported string literal code unit width %d", uint8(w))
}
