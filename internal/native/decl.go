package native

import (
	"fmt"

	"ffigen/internal/source"
)

// DeclKind enumerates the declaration kinds the model distinguishes.
type DeclKind uint8

const (
	KindInvalid DeclKind = iota
	KindNamespace
	KindLinkageSpec
	KindRecord
	KindField
	KindFunction
	KindMethod
	KindParam
	KindVar
	KindTypedef
	KindEnum
	KindEnumConstant
	KindObjCInterface
	KindObjCCategory
	KindObjCProtocol
	KindObjCMethod
	KindTemplate
	KindOther
)

var declKindNames = [...]string{
	KindInvalid:       "Invalid",
	KindNamespace:     "Namespace",
	KindLinkageSpec:   "LinkageSpec",
	KindRecord:        "Record",
	KindField:         "Field",
	KindFunction:      "Function",
	KindMethod:        "CXXMethod",
	KindParam:         "ParmVar",
	KindVar:           "Var",
	KindTypedef:       "Typedef",
	KindEnum:          "Enum",
	KindEnumConstant:  "EnumConstant",
	KindObjCInterface: "ObjCInterface",
	KindObjCCategory:  "ObjCCategory",
	KindObjCProtocol:  "ObjCProtocol",
	KindObjCMethod:    "ObjCMethod",
	KindTemplate:      "Template",
	KindOther:         "Other",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return fmt.Sprintf("DeclKind(%d)", k)
}

// AccessSpec is a C++ member access specifier. AccessNone is what plain C
// struct members and namespace-scope declarations carry.
type AccessSpec uint8

const (
	AccessNone AccessSpec = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a AccessSpec) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "none"
	}
}

// IsExposed reports whether members with this access belong to the public
// ABI surface.
func (a AccessSpec) IsExposed() bool {
	return a == AccessPublic || a == AccessNone
}

// Decl is a node of the frontend's declaration graph.
type Decl interface {
	Kind() DeclKind
	// Name is the declared identifier; empty for anonymous declarations.
	Name() string
	// DisplayName is what the frontend would print for a declaration
	// without an ordinary identifier (operators, conversion functions).
	DisplayName() string
	// Parent is the enclosing declaration context; nil at file scope.
	Parent() Decl
	Pos() source.Pos
	Access() AccessSpec
	IsInvalid() bool
	Base() *DeclBase
}

// DeclBase carries the attributes every declaration has.
type DeclBase struct {
	Ident      string
	Printed    string
	Context    Decl
	Loc        source.Pos
	Visibility AccessSpec
	Invalid    bool
}

func (d *DeclBase) Name() string { return d.Ident }
func (d *DeclBase) DisplayName() string {
	if d.Printed != "" {
		return d.Printed
	}
	return d.Ident
}
func (d *DeclBase) Parent() Decl       { return d.Context }
func (d *DeclBase) Pos() source.Pos    { return d.Loc }
func (d *DeclBase) Access() AccessSpec { return d.Visibility }
func (d *DeclBase) IsInvalid() bool    { return d.Invalid }
func (d *DeclBase) Base() *DeclBase    { return d }

// NamespaceDecl is a C++ namespace. An empty Ident is an anonymous namespace.
type NamespaceDecl struct {
	DeclBase
	Inline bool
	Decls  []Decl
}

func (d *NamespaceDecl) Kind() DeclKind { return KindNamespace }

// IsAnonymous reports whether the namespace has no name.
func (d *NamespaceDecl) IsAnonymous() bool { return d.Ident == "" }

// Language is the language named by a linkage specification.
type Language uint8

const (
	LanguageC Language = iota
	LanguageCXX
)

// LinkageSpecDecl is an extern "C" / extern "C++" block. It is a transparent
// context: it has no name and does not contribute to qualified names.
type LinkageSpecDecl struct {
	DeclBase
	Lang  Language
	Decls []Decl
}

func (d *LinkageSpecDecl) Kind() DeclKind { return KindLinkageSpec }

// TagKind distinguishes struct, class and union records.
type TagKind uint8

const (
	TagStruct TagKind = iota
	TagClass
	TagUnion
)

func (k TagKind) String() string {
	switch k {
	case TagClass:
		return "class"
	case TagUnion:
		return "union"
	default:
		return "struct"
	}
}

// SpecializationKind tells how a class template specialization came to be.
type SpecializationKind uint8

const (
	SpecUndeclared SpecializationKind = iota
	SpecImplicitInstantiation
	SpecExplicitSpecialization
	SpecExplicitInstantiationDeclaration
	SpecExplicitInstantiationDefinition
)

// Specialization is attached to records that are class template
// specializations.
type Specialization struct {
	Args []TemplateArg
	Kind SpecializationKind
}

// BaseSpec is a direct base class of a C++ record.
type BaseSpec struct {
	Type    Type
	Virtual bool
	Access  AccessSpec
}

// Decl returns the record the base names.
func (b BaseSpec) Decl() *RecordDecl {
	rd, _ := AsRecordDecl(b.Type)
	return rd
}

// RecordLayout is a layout computed by the frontend. Sizes and field
// offsets are in bits; base offsets are in bytes.
type RecordLayout struct {
	Size         uint64
	Align        uint64
	FieldOffsets []uint64
	BaseOffsets  map[*RecordDecl]int64
	VBaseOffsets map[*RecordDecl]int64
}

// RecordDecl is a struct, class or union declaration in C or C++.
type RecordDecl struct {
	DeclBase
	Tag TagKind
	// CXX marks records declared in C++ code.
	CXX          bool
	IsDefinition bool
	// Def links a forward declaration to the definition, when one exists.
	Def *RecordDecl
	// EmbeddedInDeclarator is set for definitions written inside another
	// declaration, e.g. "typedef struct { ... } T;".
	EmbeddedInDeclarator bool
	Fields               []*FieldDecl
	Methods              []*MethodDecl
	Bases                []BaseSpec
	// Decls holds other member declarations (nested types, typedefs).
	Decls          []Decl
	Specialization *Specialization
	Dependent      bool
	Layout         *RecordLayout
}

func (d *RecordDecl) Kind() DeclKind { return KindRecord }

// Definition returns the defining declaration, or nil for incomplete types.
func (d *RecordDecl) Definition() *RecordDecl {
	if d.IsDefinition {
		return d
	}
	return d.Def
}

func (d *RecordDecl) IsUnion() bool { return d.Tag == TagUnion }
func (d *RecordDecl) IsClass() bool { return d.Tag == TagClass }

// IsSpecialization reports whether d is a class template specialization.
func (d *RecordDecl) IsSpecialization() bool { return d.Specialization != nil }

// IsAbstract reports whether the record declares a pure virtual method.
func (d *RecordDecl) IsAbstract() bool {
	for _, m := range d.Methods {
		if m.Pure {
			return true
		}
	}
	return false
}

// IsDynamic reports whether objects of the record carry a vtable pointer.
func (d *RecordDecl) IsDynamic() bool {
	for _, m := range d.Methods {
		if m.Virtual {
			return true
		}
	}
	for _, b := range d.Bases {
		if b.Virtual {
			return true
		}
		if rd := b.Decl(); rd != nil && rd != d {
			if def := rd.Definition(); def != nil && def.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// FieldIndex returns the position of f among the record's fields, or -1.
func (d *RecordDecl) FieldIndex(f *FieldDecl) int {
	for i, x := range d.Fields {
		if x == f {
			return i
		}
	}
	return -1
}

// FieldDecl is a record field or an Objective-C instance variable.
type FieldDecl struct {
	DeclBase
	Type     Type
	BitField bool
	BitWidth uint32
}

func (d *FieldDecl) Kind() DeclKind { return KindField }

// StorageClass is the storage class written on a function or variable.
type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageExtern
	StorageStatic
	StoragePrivateExtern
	StorageAuto
	StorageRegister
)

// ParamDecl is a function parameter. Type is the type as written, before
// array/function decay.
type ParamDecl struct {
	DeclBase
	Type Type
}

func (d *ParamDecl) Kind() DeclKind { return KindParam }

// FunctionDecl is a free function.
type FunctionDecl struct {
	DeclBase
	Result          Type
	Params          []*ParamDecl
	Variadic        bool
	InlineSpecified bool
	Storage         StorageClass
	// TemplateArgs is set for function template specializations.
	TemplateArgs []TemplateArg
}

func (d *FunctionDecl) Kind() DeclKind { return KindFunction }

// MethodDecl is a C++ member function, including constructors and
// destructors.
type MethodDecl struct {
	FunctionDecl
	Static  bool
	Virtual bool
	Const   bool
	Pure    bool
	Ctor    bool
	Dtor    bool
}

func (d *MethodDecl) Kind() DeclKind { return KindMethod }

// VarDecl is a variable. Init holds the frontend's evaluation of the
// initializer, nil when there is none or it could not be evaluated.
type VarDecl struct {
	DeclBase
	Type          Type
	Extern        bool
	HasInit       bool
	Init          *Value
	DependentType bool
}

func (d *VarDecl) Kind() DeclKind { return KindVar }

// TypedefDecl is a typedef or alias declaration.
type TypedefDecl struct {
	DeclBase
	Underlying Type
	Alias      bool
}

func (d *TypedefDecl) Kind() DeclKind { return KindTypedef }

// EnumDecl is an enumeration.
type EnumDecl struct {
	DeclBase
	Scoped               bool
	IsDefinition         bool
	EmbeddedInDeclarator bool
	Integer              Type
	Enumerators          []*EnumConstantDecl
}

func (d *EnumDecl) Kind() DeclKind { return KindEnum }

// EnumConstantDecl is one enumerator.
type EnumConstantDecl struct {
	DeclBase
	Value int64
}

func (d *EnumConstantDecl) Kind() DeclKind { return KindEnumConstant }

// ObjCInterfaceDecl is an Objective-C @interface.
type ObjCInterfaceDecl struct {
	DeclBase
	Super     string
	Forward   bool
	Protocols []string
	Ivars     []*FieldDecl
	Methods   []*ObjCMethodDecl
}

func (d *ObjCInterfaceDecl) Kind() DeclKind { return KindObjCInterface }

// ObjCCategoryDecl is an Objective-C category. Ident is the extended
// interface's name.
type ObjCCategoryDecl struct {
	DeclBase
	Category string
	Methods  []*ObjCMethodDecl
}

func (d *ObjCCategoryDecl) Kind() DeclKind { return KindObjCCategory }

// ObjCProtocolDecl is an Objective-C @protocol.
type ObjCProtocolDecl struct {
	DeclBase
	Methods []*ObjCMethodDecl
}

func (d *ObjCProtocolDecl) Kind() DeclKind { return KindObjCProtocol }

// ObjCMethodDecl is an Objective-C method.
type ObjCMethodDecl struct {
	DeclBase
	Result      Type
	Params      []*ParamDecl
	Variadic    bool
	ClassMethod bool
}

func (d *ObjCMethodDecl) Kind() DeclKind { return KindObjCMethod }

// TemplateDecl is a class, function or alias template. TemplateKind is the
// frontend kind name ("ClassTemplate", "FunctionTemplate", ...).
type TemplateDecl struct {
	DeclBase
	TemplateKind    string
	Specializations []*RecordDecl
}

func (d *TemplateDecl) Kind() DeclKind { return KindTemplate }

// OtherDecl stands for declaration kinds the model does not spell out
// (using-declarations, static_asserts, friend declarations, ...).
type OtherDecl struct {
	DeclBase
	KindName string
}

func (d *OtherDecl) Kind() DeclKind { return KindOther }

// KindName returns the frontend's kind name for d.
func KindName(d Decl) string {
	switch dd := d.(type) {
	case *OtherDecl:
		if dd.KindName != "" {
			return dd.KindName
		}
	case *TemplateDecl:
		if dd.TemplateKind != "" {
			return dd.TemplateKind
		}
	case *RecordDecl:
		if dd.IsSpecialization() {
			return "ClassTemplateSpecialization"
		}
		if dd.CXX {
			return "CXXRecord"
		}
	case *MethodDecl:
		switch {
		case dd.Ctor:
			return "CXXConstructor"
		case dd.Dtor:
			return "CXXDestructor"
		}
	}
	return d.Kind().String()
}

// Children returns the declarations directly contained in a context, in
// source order.
func Children(d Decl) []Decl {
	switch dd := d.(type) {
	case *NamespaceDecl:
		return dd.Decls
	case *LinkageSpecDecl:
		return dd.Decls
	case *RecordDecl:
		return dd.Decls
	}
	return nil
}

// IsFunctionContext reports whether d is a function or method body.
func IsFunctionContext(d Decl) bool {
	switch d.(type) {
	case *FunctionDecl, *MethodDecl, *ObjCMethodDecl:
		return true
	}
	return false
}

// EnclosingLinkage returns the language of the nearest enclosing linkage
// specification, or ok=false when there is none.
func EnclosingLinkage(d Decl) (Language, bool) {
	for p := d.Parent(); p != nil; p = p.Parent() {
		if ls, ok := p.(*LinkageSpecDecl); ok {
			return ls.Lang, true
		}
	}
	return LanguageC, false
}
