package native

// maxSugarDepth bounds desugaring of malformed graphs with sugar cycles.
const maxSugarDepth = 64

// Canonical strips all top-level sugar from t. Nested types (pointees,
// elements) keep their sugar.
func Canonical(t Type) Type {
	for range maxSugarDepth {
		if t == nil {
			return nil
		}
		next := t.Desugar()
		if next == t {
			return t
		}
		t = next
	}
	return t
}

// IsVoid reports whether t is void after desugaring.
func IsVoid(t Type) bool {
	b, ok := Canonical(t).(*BuiltinType)
	return ok && b.Kind == BuiltinVoid
}

// AsBuiltin returns the canonical builtin behind t.
func AsBuiltin(t Type) (*BuiltinType, bool) {
	b, ok := Canonical(t).(*BuiltinType)
	return b, ok
}

// IsFunction reports whether t is a function type after desugaring.
func IsFunction(t Type) bool {
	_, ok := Canonical(t).(*FunctionType)
	return ok
}

// IsFunctionPointer reports whether t is a pointer to a function type.
func IsFunctionPointer(t Type) bool {
	p, ok := Canonical(t).(*PointerType)
	return ok && IsFunction(p.Pointee)
}

// AsPointer returns the canonical pointer behind t.
func AsPointer(t Type) (*PointerType, bool) {
	p, ok := Canonical(t).(*PointerType)
	return p, ok
}

// AsReference returns the canonical reference behind t.
func AsReference(t Type) (*ReferenceType, bool) {
	r, ok := Canonical(t).(*ReferenceType)
	return r, ok
}

// AsRecordDecl returns the record declaration t names, if any.
func AsRecordDecl(t Type) (*RecordDecl, bool) {
	r, ok := Canonical(t).(*RecordType)
	if !ok || r.Decl == nil {
		return nil, false
	}
	return r.Decl, true
}

// IsDependent reports whether t still depends on an unsubstituted template
// parameter.
func IsDependent(t Type) bool {
	switch tt := Canonical(t).(type) {
	case nil:
		return false
	case *BuiltinType:
		return tt.Kind == BuiltinDependent
	case *TemplateSpecializationType:
		return tt.Aliased == nil
	case *SubstTemplateTypeParmType:
		return tt.Replacement == nil
	case *PointerType:
		return IsDependent(tt.Pointee)
	case *ReferenceType:
		return IsDependent(tt.Pointee)
	case *ConstantArrayType:
		return IsDependent(tt.Elem)
	case *IncompleteArrayType:
		return IsDependent(tt.Elem)
	case *RecordType:
		return tt.Decl != nil && tt.Decl.Dependent
	}
	return false
}
