package ir

import "fmt"

// Writer receives every variant. Output drivers implement it; WriteType and
// WriteDecl pick the method.
type Writer interface {
	WriteSimpleType(*SimpleType)
	WriteTypedefType(*TypedefType)
	WriteBasicType(*BasicType)
	WriteBitfieldType(*BitfieldType)
	WritePointerType(*PointerType)
	WriteReferenceType(*ReferenceType)
	WriteArrayType(*ArrayType)
	WriteRecordType(*RecordType)
	WriteEnumType(*EnumType)
	WriteComplexType(*ComplexType)
	WriteDeclType(*DeclType)

	WriteUnhandledDecl(*UnhandledDecl)
	WriteVarDecl(*VarDecl)
	WriteTypedefDecl(*TypedefDecl)
	WriteFunctionDecl(*FunctionDecl)
	WriteRecordDecl(*RecordDecl)
	WriteEnumDecl(*EnumDecl)
	WriteCXXRecordDecl(*CXXRecordDecl)
	WriteCXXFunctionDecl(*CXXFunctionDecl)
	WriteCXXNamespaceDecl(*CXXNamespaceDecl)
	WriteObjCInterfaceDecl(*ObjCInterfaceDecl)
	WriteObjCCategoryDecl(*ObjCCategoryDecl)
	WriteObjCProtocolDecl(*ObjCProtocolDecl)
}

// WriteType dispatches t to the matching Writer method.
func WriteType(w Writer, t Type) {
	switch tt := t.(type) {
	case *SimpleType:
		w.WriteSimpleType(tt)
	case *TypedefType:
		w.WriteTypedefType(tt)
	case *BasicType:
		w.WriteBasicType(tt)
	case *BitfieldType:
		w.WriteBitfieldType(tt)
	case *PointerType:
		w.WritePointerType(tt)
	case *ReferenceType:
		w.WriteReferenceType(tt)
	case *ArrayType:
		w.WriteArrayType(tt)
	case *RecordType:
		w.WriteRecordType(tt)
	case *EnumType:
		w.WriteEnumType(tt)
	case *ComplexType:
		w.WriteComplexType(tt)
	case *DeclType:
		w.WriteDeclType(tt)
	default:
		panic(fmt.Sprintf("ir: unexpected type variant %T", t))
	}
}

// WriteDecl dispatches d to the matching Writer method.
func WriteDecl(w Writer, d Decl) {
	switch dd := d.(type) {
	case *UnhandledDecl:
		w.WriteUnhandledDecl(dd)
	case *VarDecl:
		w.WriteVarDecl(dd)
	case *TypedefDecl:
		w.WriteTypedefDecl(dd)
	case *FunctionDecl:
		w.WriteFunctionDecl(dd)
	case *RecordDecl:
		w.WriteRecordDecl(dd)
	case *EnumDecl:
		w.WriteEnumDecl(dd)
	case *CXXRecordDecl:
		w.WriteCXXRecordDecl(dd)
	case *CXXFunctionDecl:
		w.WriteCXXFunctionDecl(dd)
	case *CXXNamespaceDecl:
		w.WriteCXXNamespaceDecl(dd)
	case *ObjCInterfaceDecl:
		w.WriteObjCInterfaceDecl(dd)
	case *ObjCCategoryDecl:
		w.WriteObjCCategoryDecl(dd)
	case *ObjCProtocolDecl:
		w.WriteObjCProtocolDecl(dd)
	default:
		panic(fmt.Sprintf("ir: unexpected decl variant %T", d))
	}
}
