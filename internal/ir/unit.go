package ir

// Unit is the ordered list of top-level declarations produced from one
// translation unit.
type Unit struct {
	// Source is the path of the main file the declarations came from.
	Source string
	Decls  []Decl
}

// ByID returns the top-level declaration registered under id. Nested
// declarations are searched too, since anonymous records are emitted in
// place.
func (u *Unit) ByID(id uint32) Decl {
	if u == nil || id == 0 {
		return nil
	}
	var found Decl
	for _, d := range u.Decls {
		Walk(d, func(n Node) bool {
			if found != nil {
				return false
			}
			if dd, ok := n.(Decl); ok && dd.Base().ID == id {
				found = dd
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Walk traverses n depth first, calling fn for n and every owned child.
// When fn returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	walkType := func(t Type) {
		if t != nil {
			Walk(t, fn)
		}
	}
	walkFields := func(fs []Field) {
		for _, f := range fs {
			walkType(f.Type)
		}
	}
	walkArgs := func(args []TemplateArg) {
		for _, a := range args {
			walkType(a.Type)
		}
	}
	walkFunc := func(f *FunctionDecl) {
		walkType(f.Return)
		walkFields(f.Params)
		walkArgs(f.TemplateArgs)
	}
	switch x := n.(type) {
	case *TypedefType:
		walkType(x.Under)
	case *BitfieldType:
		walkType(x.Under)
	case *PointerType:
		walkType(x.Pointee)
	case *ReferenceType:
		walkType(x.Pointee)
	case *ArrayType:
		walkType(x.Elem)
	case *RecordType:
		walkArgs(x.TemplateArgs)
	case *ComplexType:
		walkType(x.Elem)
	case *DeclType:
		if x.Decl != nil {
			Walk(x.Decl, fn)
		}
	case *VarDecl:
		walkType(x.Type)
	case *TypedefDecl:
		walkType(x.Type)
	case *FunctionDecl:
		walkFunc(x)
	case *CXXFunctionDecl:
		walkFunc(&x.FunctionDecl)
	case *RecordDecl:
		walkFields(x.Fields)
	case *CXXRecordDecl:
		walkFields(x.Fields)
		for _, m := range x.Methods {
			Walk(m, fn)
		}
		walkArgs(x.TemplateArgs)
	case *ObjCInterfaceDecl:
		walkFields(x.Fields)
		for _, f := range x.Functions {
			Walk(f, fn)
		}
	case *ObjCCategoryDecl:
		for _, f := range x.Functions {
			Walk(f, fn)
		}
	case *ObjCProtocolDecl:
		for _, f := range x.Functions {
			Walk(f, fn)
		}
	}
}
