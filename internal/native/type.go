package native

import "fmt"

// TypeClass mirrors the frontend's type class of a type node.
type TypeClass uint8

const (
	ClassInvalid TypeClass = iota
	ClassBuiltin
	ClassTypedef
	ClassSubstTemplateTypeParm
	ClassElaborated
	ClassParen
	ClassAttributed
	ClassDecayed
	ClassPointer
	ClassLValueReference
	ClassRValueReference
	ClassFunctionProto
	ClassFunctionNoProto
	ClassRecord
	ClassEnum
	ClassTemplateSpecialization
	ClassConstantArray
	ClassIncompleteArray
	ClassObjCObjectPointer
	ClassObjCObject
	ClassComplex
	ClassOther
)

var classNames = [...]string{
	ClassInvalid:                "Invalid",
	ClassBuiltin:                "Builtin",
	ClassTypedef:                "Typedef",
	ClassSubstTemplateTypeParm:  "SubstTemplateTypeParm",
	ClassElaborated:             "Elaborated",
	ClassParen:                  "Paren",
	ClassAttributed:             "Attributed",
	ClassDecayed:                "Decayed",
	ClassPointer:                "Pointer",
	ClassLValueReference:        "LValueReference",
	ClassRValueReference:        "RValueReference",
	ClassFunctionProto:          "FunctionProto",
	ClassFunctionNoProto:        "FunctionNoProto",
	ClassRecord:                 "Record",
	ClassEnum:                   "Enum",
	ClassTemplateSpecialization: "TemplateSpecialization",
	ClassConstantArray:          "ConstantArray",
	ClassIncompleteArray:        "IncompleteArray",
	ClassObjCObjectPointer:      "ObjCObjectPointer",
	ClassObjCObject:             "ObjCObject",
	ClassComplex:                "Complex",
	ClassOther:                  "Other",
}

func (c TypeClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("TypeClass(%d)", c)
}

// ClassByName maps a frontend type class name to a TypeClass. Unknown names
// map to ClassOther.
func ClassByName(name string) TypeClass {
	for c, n := range classNames {
		if n == name {
			return TypeClass(c)
		}
	}
	return ClassOther
}

// Type is a node of the frontend's type graph.
type Type interface {
	Class() TypeClass
	// ClassName is the frontend's type class name, used in diagnostics
	// and placeholder names.
	ClassName() string
	// Desugar strips one level of sugar. Non-sugar types return themselves.
	Desugar() Type
}

// BuiltinType is a scalar type built into the language.
type BuiltinType struct {
	Kind BuiltinKind
}

func (t *BuiltinType) Class() TypeClass  { return ClassBuiltin }
func (t *BuiltinType) ClassName() string { return ClassBuiltin.String() }
func (t *BuiltinType) Desugar() Type     { return t }

// TypedefType names a typedef (or alias) declaration.
type TypedefType struct {
	Decl *TypedefDecl
}

func (t *TypedefType) Class() TypeClass  { return ClassTypedef }
func (t *TypedefType) ClassName() string { return ClassTypedef.String() }
func (t *TypedefType) Desugar() Type {
	if t.Decl == nil || t.Decl.Underlying == nil {
		return t
	}
	return t.Decl.Underlying
}

// SubstTemplateTypeParmType records that a template parameter was replaced by
// a concrete type during instantiation.
type SubstTemplateTypeParmType struct {
	Param       string
	Replacement Type
}

func (t *SubstTemplateTypeParmType) Class() TypeClass  { return ClassSubstTemplateTypeParm }
func (t *SubstTemplateTypeParmType) ClassName() string { return ClassSubstTemplateTypeParm.String() }
func (t *SubstTemplateTypeParmType) Desugar() Type {
	if t.Replacement == nil {
		return t
	}
	return t.Replacement
}

// ElaboratedType is a type written with a keyword or qualifier
// ("struct S", "A::B").
type ElaboratedType struct {
	Keyword string
	Named   Type
}

func (t *ElaboratedType) Class() TypeClass  { return ClassElaborated }
func (t *ElaboratedType) ClassName() string { return ClassElaborated.String() }
func (t *ElaboratedType) Desugar() Type {
	if t.Named == nil {
		return t
	}
	return t.Named
}

// SugarType covers the remaining purely syntactic wrappers (Paren,
// Attributed, Decayed).
type SugarType struct {
	Sugar TypeClass
	Under Type
}

func (t *SugarType) Class() TypeClass  { return t.Sugar }
func (t *SugarType) ClassName() string { return t.Sugar.String() }
func (t *SugarType) Desugar() Type {
	if t.Under == nil {
		return t
	}
	return t.Under
}

// PointerType is a C pointer.
type PointerType struct {
	Pointee Type
}

func (t *PointerType) Class() TypeClass  { return ClassPointer }
func (t *PointerType) ClassName() string { return ClassPointer.String() }
func (t *PointerType) Desugar() Type     { return t }

// ReferenceType is a C++ lvalue or rvalue reference.
type ReferenceType struct {
	Pointee Type
	RValue  bool
}

func (t *ReferenceType) Class() TypeClass {
	if t.RValue {
		return ClassRValueReference
	}
	return ClassLValueReference
}
func (t *ReferenceType) ClassName() string { return t.Class().String() }
func (t *ReferenceType) Desugar() Type     { return t }

// FunctionType is a function signature. NoProto marks K&R declarations.
type FunctionType struct {
	Result   Type
	Params   []Type
	Variadic bool
	NoProto  bool
}

func (t *FunctionType) Class() TypeClass {
	if t.NoProto {
		return ClassFunctionNoProto
	}
	return ClassFunctionProto
}
func (t *FunctionType) ClassName() string { return t.Class().String() }
func (t *FunctionType) Desugar() Type     { return t }

// RecordType refers to a struct, class or union declaration. Decl is the
// definition when one exists.
type RecordType struct {
	Decl *RecordDecl
}

func (t *RecordType) Class() TypeClass  { return ClassRecord }
func (t *RecordType) ClassName() string { return ClassRecord.String() }
func (t *RecordType) Desugar() Type     { return t }

// EnumType refers to an enumeration declaration.
type EnumType struct {
	Decl *EnumDecl
}

func (t *EnumType) Class() TypeClass  { return ClassEnum }
func (t *EnumType) ClassName() string { return ClassEnum.String() }
func (t *EnumType) Desugar() Type     { return t }

// TemplateSpecializationType is the sugar for a template-id ("B<int>").
// Aliased is the type it names, usually a RecordType of the specialization.
type TemplateSpecializationType struct {
	Template string
	Args     []TemplateArg
	Aliased  Type
}

func (t *TemplateSpecializationType) Class() TypeClass  { return ClassTemplateSpecialization }
func (t *TemplateSpecializationType) ClassName() string { return ClassTemplateSpecialization.String() }
func (t *TemplateSpecializationType) Desugar() Type {
	if t.Aliased == nil {
		return t
	}
	return t.Aliased
}

// ConstantArrayType is an array with a known element count.
type ConstantArrayType struct {
	Elem Type
	Size uint64
}

func (t *ConstantArrayType) Class() TypeClass  { return ClassConstantArray }
func (t *ConstantArrayType) ClassName() string { return ClassConstantArray.String() }
func (t *ConstantArrayType) Desugar() Type     { return t }

// IncompleteArrayType is an array of unknown bound ("int a[]").
type IncompleteArrayType struct {
	Elem Type
}

func (t *IncompleteArrayType) Class() TypeClass  { return ClassIncompleteArray }
func (t *IncompleteArrayType) ClassName() string { return ClassIncompleteArray.String() }
func (t *IncompleteArrayType) Desugar() Type     { return t }

// ObjCObjectPointerType is a pointer to an Objective-C object.
type ObjCObjectPointerType struct {
	Pointee Type
}

func (t *ObjCObjectPointerType) Class() TypeClass  { return ClassObjCObjectPointer }
func (t *ObjCObjectPointerType) ClassName() string { return ClassObjCObjectPointer.String() }
func (t *ObjCObjectPointerType) Desugar() Type     { return t }

// ObjCObjectType is an Objective-C object (interface) type.
type ObjCObjectType struct {
	Interface *ObjCInterfaceDecl
}

func (t *ObjCObjectType) Class() TypeClass  { return ClassObjCObject }
func (t *ObjCObjectType) ClassName() string { return ClassObjCObject.String() }
func (t *ObjCObjectType) Desugar() Type     { return t }

// ComplexType is a C99 _Complex type.
type ComplexType struct {
	Elem Type
}

func (t *ComplexType) Class() TypeClass  { return ClassComplex }
func (t *ComplexType) ClassName() string { return ClassComplex.String() }
func (t *ComplexType) Desugar() Type     { return t }

// OtherType stands for any type class this model does not spell out
// (vectors, member pointers, block pointers, atomic, ...). Name is the
// frontend's type class name.
type OtherType struct {
	Name string
}

func (t *OtherType) Class() TypeClass { return ClassOther }
func (t *OtherType) ClassName() string {
	if t.Name == "" {
		return ClassOther.String()
	}
	return t.Name
}
func (t *OtherType) Desugar() Type { return t }
