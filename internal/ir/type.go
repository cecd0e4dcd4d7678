package ir

import "ffigen/internal/native"

// Node is implemented by every type and declaration variant.
type Node interface {
	node()
}

// Type is one of the IR type variants.
type Type interface {
	Node
	Base() *TypeBase
	isType()
}

// TypeBase holds the attributes every IR type has. Layout facts are in
// bits and are only filled where the producer knows them (builtins and
// field types).
type TypeBase struct {
	// Orig is the native type this node was reduced from; for diagnostics
	// and mangling only.
	Orig         native.Type
	BitOffset    uint64
	BitSize      uint64
	BitAlignment uint64
	// ID is the registry ID of a referenced declaration, 0 when none.
	ID uint32
}

func (b *TypeBase) Base() *TypeBase { return b }
func (b *TypeBase) node()           {}
func (b *TypeBase) isType()         {}

// SetLayout records the layout facts of a field or builtin type.
func (b *TypeBase) SetLayout(offset, size, align uint64) {
	b.BitOffset = offset
	b.BitSize = size
	b.BitAlignment = align
}

// SimpleType is a type identified by its name alone: ":void", ":function",
// Objective-C interfaces and the placeholders for unsupported types.
type SimpleType struct {
	TypeBase
	Name string
}

// TypedefType refers to a typedef by name. NS is the registry ID of the
// typedef's enclosing scope. Under is the reduced underlying type.
type TypedefType struct {
	TypeBase
	Name  string
	NS    uint32
	Under Type
}

// BasicType is a builtin scalar (":int", ":unsigned-long").
type BasicType struct {
	TypeBase
	Name string
	Kind native.BuiltinKind
}

// BitfieldType wraps the declared type of a bit-field member.
type BitfieldType struct {
	TypeBase
	Under Type
	Width uint32
}

// PointerType points at Pointee.
type PointerType struct {
	TypeBase
	Pointee Type
}

// IsString reports whether the pointee is a character builtin.
func (t *PointerType) IsString() bool { return isCharacter(t.Pointee) }

// ReferenceType is a C++ reference. It carries nothing beyond the pointee.
type ReferenceType struct {
	TypeBase
	Pointee Type
}

// ArrayType is a fixed-size array of Size elements.
type ArrayType struct {
	TypeBase
	Elem Type
	Size uint64
}

// TemplateArg is one argument of a specialization. Type is set for type
// arguments; Value holds the printed form of non-type arguments.
type TemplateArg struct {
	Type  Type
	Value string
}

// RecordType refers to a struct, class or union emitted elsewhere.
type RecordType struct {
	TypeBase
	Name         string
	Union        bool
	Class        bool
	TemplateArgs []TemplateArg
}

// EnumType refers to an enumeration emitted elsewhere. ID is only set for
// anonymous enums.
type EnumType struct {
	TypeBase
	Name string
}

// ComplexType is a _Complex of Elem.
type ComplexType struct {
	TypeBase
	Elem Type
}

// IsString reports whether the element is a character builtin.
func (t *ComplexType) IsString() bool { return isCharacter(t.Elem) }

// DeclType carries a nested declaration that is written in place of a
// reference: anonymous and embedded records and enums.
type DeclType struct {
	TypeBase
	Decl Decl
}

func isCharacter(t Type) bool {
	b, ok := t.(*BasicType)
	return ok && b.Kind.IsCharacter()
}
