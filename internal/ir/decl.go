package ir

import "ffigen/internal/native"

// Decl is one of the IR declaration variants.
type Decl interface {
	Node
	Base() *DeclBase
	isDecl()
}

// DeclBase holds the attributes every declaration has.
type DeclBase struct {
	Name     string
	Location string
	// ID is the registry ID, 0 for declarations never registered.
	ID uint32
	// NS is the registry ID of the enclosing named scope, 0 at file scope.
	NS uint32
	// Orig is the native declaration, kept for identifier mangling.
	Orig native.Decl
}

func (b *DeclBase) Base() *DeclBase { return b }
func (b *DeclBase) node()           {}
func (b *DeclBase) isDecl()         {}

// Field is a named, owned type: record fields and function parameters.
type Field struct {
	Name string
	Type Type
}

// UnhandledDecl stands for declaration kinds without a mapping.
type UnhandledDecl struct {
	DeclBase
	Kind string
}

// VarDecl is a variable or a macro carrier. Value is the evaluated
// initializer, empty when there was none.
type VarDecl struct {
	DeclBase
	Type     Type
	Value    string
	Extern   bool
	IsString bool
}

// TypedefDecl names Type.
type TypedefDecl struct {
	DeclBase
	Type Type
}

// Linkage is the language linkage of a function.
type Linkage uint8

const (
	LinkC Linkage = iota
	LinkCXX
	LinkCXX11
	LinkCXX14
)

func (l Linkage) String() string {
	switch l {
	case LinkCXX:
		return "C++"
	case LinkCXX11:
		return "C++11"
	case LinkCXX14:
		return "C++14"
	default:
		return "C"
	}
}

// FunctionDecl is a free function or an Objective-C method.
type FunctionDecl struct {
	DeclBase
	Return       Type
	Params       []Field
	Variadic     bool
	Inline       bool
	ObjCMethod   bool
	ClassMethod  bool
	Linkage      Linkage
	StorageClass string
	TemplateArgs []TemplateArg
}

// RecordDecl is a C struct or union.
type RecordDecl struct {
	DeclBase
	Fields       []Field
	Union        bool
	BitSize      uint64
	BitAlignment uint64
}

// EnumField is one enumerator.
type EnumField struct {
	Name  string
	Value int64
}

// EnumDecl is an enumeration.
type EnumDecl struct {
	DeclBase
	Fields []EnumField
}

// Access is the access level of a base class.
type Access uint8

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "public"
	}
}

// Parent is a direct base class. Offset is in bytes.
type Parent struct {
	Name    string
	Access  Access
	Offset  int64
	Virtual bool
}

// CXXFunctionDecl is a C++ member function.
type CXXFunctionDecl struct {
	FunctionDecl
	Static  bool
	Virtual bool
	Const   bool
	Pure    bool
	Ctor    bool
	Dtor    bool
}

// CXXRecordDecl is a C++ class, struct or union.
type CXXRecordDecl struct {
	RecordDecl
	Methods      []*CXXFunctionDecl
	Parents      []Parent
	Class        bool
	Abstract     bool
	TemplateArgs []TemplateArg
}

// CXXNamespaceDecl is a named C++ namespace.
type CXXNamespaceDecl struct {
	DeclBase
}

// ObjCInterfaceDecl is an Objective-C @interface.
type ObjCInterfaceDecl struct {
	DeclBase
	Super     string
	Forward   bool
	Protocols []string
	Fields    []Field
	Functions []*FunctionDecl
}

// ObjCCategoryDecl is an Objective-C category; Name is the extended class.
type ObjCCategoryDecl struct {
	DeclBase
	Category  string
	Functions []*FunctionDecl
}

// ObjCProtocolDecl is an Objective-C @protocol.
type ObjCProtocolDecl struct {
	DeclBase
	Functions []*FunctionDecl
}
