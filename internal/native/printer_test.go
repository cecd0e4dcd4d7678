package native

import "testing"

func TestQualifiedName(t *testing.T) {
	a := &NamespaceDecl{DeclBase: DeclBase{Ident: "A"}}
	ext := &LinkageSpecDecl{DeclBase: DeclBase{Context: a}, Lang: LanguageC}
	anon := &NamespaceDecl{DeclBase: DeclBase{Context: ext}}
	enum := &EnumDecl{DeclBase: DeclBase{Ident: "Color", Context: anon}}
	red := &EnumConstantDecl{DeclBase: DeclBase{Ident: "Red", Context: enum}}

	if got := QualifiedName(red); got != "A::(anonymous namespace)::Red" {
		t.Fatalf("unexpected qualified name %q", got)
	}
	enum.Scoped = true
	if got := QualifiedName(red); got != "A::(anonymous namespace)::Color::Red" {
		t.Fatalf("unexpected qualified name %q", got)
	}
}

func TestQualifiedNameSpecializationContext(t *testing.T) {
	a := &NamespaceDecl{DeclBase: DeclBase{Ident: "A"}}
	spec := &RecordDecl{
		DeclBase:       DeclBase{Ident: "B", Context: a},
		CXX:            true,
		IsDefinition:   true,
		Specialization: &Specialization{Args: []TemplateArg{TypeArg(&BuiltinType{Kind: BuiltinInt})}},
	}
	m := &MethodDecl{FunctionDecl: FunctionDecl{DeclBase: DeclBase{Ident: "get", Context: spec}}}
	if got := QualifiedName(m); got != "A::B<int>::get" {
		t.Fatalf("unexpected qualified name %q", got)
	}
	if got := QualifiedName(spec); got != "A::B" {
		t.Fatalf("specialization name should not carry its own args, got %q", got)
	}
}

func TestTypeString(t *testing.T) {
	intT := &BuiltinType{Kind: BuiltinInt}
	cases := []struct {
		typ  Type
		want string
	}{
		{intT, "int"},
		{&BuiltinType{Kind: BuiltinBool}, "bool"},
		{&PointerType{Pointee: &PointerType{Pointee: &BuiltinType{Kind: BuiltinCharS}}}, "char **"},
		{&PointerType{Pointee: &FunctionType{Result: &BuiltinType{Kind: BuiltinVoid}, Params: []Type{intT}}}, "void (*)(int)"},
		{&ConstantArrayType{Elem: intT, Size: 4}, "int [4]"},
		{&ReferenceType{Pointee: intT, RValue: true}, "int &&"},
		{&ElaboratedType{Keyword: "struct", Named: &RecordType{Decl: &RecordDecl{DeclBase: DeclBase{Ident: "S"}}}}, "S"},
	}
	for _, tc := range cases {
		if got := TypeString(tc.typ); got != tc.want {
			t.Fatalf("TypeString: expected %q, got %q", tc.want, got)
		}
	}
}

func TestPrintTemplateArgs(t *testing.T) {
	args := []TemplateArg{
		TypeArg(&BuiltinType{Kind: BuiltinUInt}),
		IntArg(3, nil),
		IntArg(1, &BuiltinType{Kind: BuiltinBool}),
		{Kind: ArgPack},
		{Kind: ArgPack, Pack: []TemplateArg{IntArg(1, nil), IntArg(2, nil)}},
	}
	if got := PrintTemplateArgs(args); got != "<unsigned int, 3, true, 1, 2>" {
		t.Fatalf("unexpected args %q", got)
	}
}

func TestCanonicalStripsSugar(t *testing.T) {
	intT := &BuiltinType{Kind: BuiltinInt}
	td := &TypedefDecl{DeclBase: DeclBase{Ident: "myint"}, Underlying: intT}
	sugared := &SugarType{Sugar: ClassParen, Under: &ElaboratedType{Named: &TypedefType{Decl: td}}}
	if Canonical(sugared) != Type(intT) {
		t.Fatal("expected canonical type to be the builtin")
	}
	fp := &TypedefType{Decl: &TypedefDecl{Underlying: &PointerType{Pointee: &FunctionType{Result: intT}}}}
	if !IsFunctionPointer(fp) {
		t.Fatal("expected typedef of function pointer to be a function pointer")
	}
	if IsVoid(intT) || !IsVoid(&BuiltinType{Kind: BuiltinVoid}) {
		t.Fatal("IsVoid misclassified")
	}
}

func TestFatalIndex(t *testing.T) {
	tu := NewTranslationUnit(LangC, "")
	if tu.FatalIndex() != -1 || tu.HasErrors() {
		t.Fatal("fresh unit should have no errors")
	}
	tu.Diagnostics = append(tu.Diagnostics,
		Diagnostic{Severity: DiagError, DeclIndex: 1},
		Diagnostic{Severity: DiagFatal, DeclIndex: 4},
	)
	if !tu.HasErrors() || tu.FatalIndex() != 4 {
		t.Fatalf("expected fatal index 4, got %d", tu.FatalIndex())
	}
}
