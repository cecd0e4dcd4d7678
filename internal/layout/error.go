package layout

import (
	"fmt"
	"strings"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursiveUnsized indicates a record containing itself by value.
	LayoutErrRecursiveUnsized LayoutErrorKind = iota + 1
	// LayoutErrIncomplete is a type without a definition (forward-declared
	// record, function type, Objective-C object).
	LayoutErrIncomplete
	// LayoutErrDependent is a type that still depends on a template parameter.
	LayoutErrDependent
	// LayoutErrUnknownType is a type class the engine cannot size.
	LayoutErrUnknownType
	LayoutErrOverflow
)

func (k LayoutErrorKind) String() string {
	switch k {
	case LayoutErrRecursiveUnsized:
		return "recursive"
	case LayoutErrIncomplete:
		return "incomplete"
	case LayoutErrDependent:
		return "dependent"
	case LayoutErrUnknownType:
		return "unknown"
	case LayoutErrOverflow:
		return "overflow"
	}
	return fmt.Sprintf("LayoutErrorKind(%d)", k)
}

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  string   // printed type
	Cycle []string // for LayoutErrRecursiveUnsized
	Err   error    // for LayoutErrOverflow
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursiveUnsized:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive value type has infinite size (%s)", e.Type)
		}
		return fmt.Sprintf("recursive value type has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrIncomplete:
		return fmt.Sprintf("incomplete type %s has no layout", e.Type)
	case LayoutErrDependent:
		return fmt.Sprintf("dependent type %s has no layout", e.Type)
	case LayoutErrUnknownType:
		return fmt.Sprintf("cannot lay out type %s", e.Type)
	case LayoutErrOverflow:
		if e.Err != nil {
			return fmt.Sprintf("size of %s overflows: %v", e.Type, e.Err)
		}
		return fmt.Sprintf("size of %s overflows", e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d %s", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *LayoutError of the same kind, so callers can test
// with errors.Is(err, &LayoutError{Kind: LayoutErrIncomplete}).
func (e *LayoutError) Is(target error) bool {
	t, ok := target.(*LayoutError)
	return ok && e != nil && t.Kind == e.Kind
}
