package mangle

import (
	"fmt"

	"ffigen/internal/diag"
)

// ErrorKind enumerates the reasons a declaration has no flat identifier.
type ErrorKind uint8

const (
	KindAnonymousNamespace ErrorKind = iota + 1
	KindAnonymousRecord
	KindInFunction
	KindAnonymousDecl
)

func (k ErrorKind) String() string {
	switch k {
	case KindAnonymousNamespace:
		return "anonymous namespace"
	case KindAnonymousRecord:
		return "anonymous struct or class"
	case KindInFunction:
		return "declaration inside a function"
	case KindAnonymousDecl:
		return "anonymous declaration"
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Code maps the kind to its diagnostic code.
func (k ErrorKind) Code() diag.Code {
	switch k {
	case KindAnonymousNamespace:
		return diag.MangleAnonymousNamespace
	case KindAnonymousRecord:
		return diag.MangleAnonymousRecord
	case KindInFunction:
		return diag.MangleInFunction
	case KindAnonymousDecl:
		return diag.MangleAnonymousDecl
	}
	return diag.MangleInfo
}

// Error reports a declaration that cannot be given a flat identifier.
// Qualified is the C++ name of the declaration, for messages.
type Error struct {
	Kind      ErrorKind
	Qualified string
}

var (
	ErrAnonymousNamespace = &Error{Kind: KindAnonymousNamespace}
	ErrAnonymousRecord    = &Error{Kind: KindAnonymousRecord}
	ErrInFunction         = &Error{Kind: KindInFunction}
	ErrAnonymousDecl      = &Error{Kind: KindAnonymousDecl}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Qualified == "" {
		return "cannot mangle: " + e.Kind.String()
	}
	return fmt.Sprintf("cannot mangle %s: %s", e.Qualified, e.Kind.String())
}

// Is matches any *Error of the same kind, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t.Kind == e.Kind
}
