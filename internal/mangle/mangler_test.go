package mangle_test

import (
	"errors"
	"strings"
	"testing"

	"ffigen/internal/mangle"
	"ffigen/internal/native"
)

func namespace(name string, parent native.Decl) *native.NamespaceDecl {
	return &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: name, Context: parent}}
}

func class(name string, parent native.Decl) *native.RecordDecl {
	return &native.RecordDecl{DeclBase: native.DeclBase{Ident: name, Context: parent}, CXX: true, Tag: native.TagClass, IsDefinition: true}
}

func method(name string, parent native.Decl) *native.MethodDecl {
	return &native.MethodDecl{FunctionDecl: native.FunctionDecl{DeclBase: native.DeclBase{Ident: name, Context: parent}}}
}

func mustIdentifier(t *testing.T, m *mangle.Mangler, d native.Decl) mangle.Identifier {
	t.Helper()
	id, err := m.Identifier(d)
	if err != nil {
		t.Fatalf("identifier of %s: %v", d.Name(), err)
	}
	return id
}

func TestNamespacedMethod(t *testing.T) {
	a := namespace("A", nil)
	e := namespace("E", a)
	c := class("C", e)
	get := method("get", c)

	id := mustIdentifier(t, mangle.New(mangle.DefaultConfig()), get)
	if id.C != "upp_A_E_C_get" {
		t.Fatalf("flat name %q", id.C)
	}
	if id.Cpp != "A::E::C::get" {
		t.Fatalf("qualified name %q", id.Cpp)
	}
}

func TestLinkageBlocksAreTransparent(t *testing.T) {
	block := &native.LinkageSpecDecl{Lang: native.LanguageC}
	fn := &native.FunctionDecl{DeclBase: native.DeclBase{Ident: "puts", Context: block}}
	id := mustIdentifier(t, mangle.New(mangle.Config{}), fn)
	if id.C != "upp_puts" || id.Cpp != "puts" {
		t.Fatalf("got %+v", id)
	}
}

func TestOperatorsAreSanitized(t *testing.T) {
	m := mangle.New(mangle.DefaultConfig())
	c := class("Vec", nil)
	cases := map[string]string{
		"operator+":  "upp_Vec_operator_add_",
		"operator()": "upp_Vec_operator_call_",
		"operator[]": "upp_Vec_operator_idx_",
		"operator-=": "upp_Vec_operator_sub__set_",
		"operator*":  "upp_Vec_operator_mul_",
	}
	for name, want := range cases {
		got := mustIdentifier(t, m, method(name, c))
		if got.C != want {
			t.Fatalf("%s: got %q, want %q", name, got.C, want)
		}
		if got.Cpp != "Vec::"+name {
			t.Fatalf("%s: qualified %q", name, got.Cpp)
		}
	}
}

func TestCustomSeparator(t *testing.T) {
	m := mangle.New(mangle.Config{RootPrefix: "ns__", CSeparator: "__"})
	c := class("Vec", namespace("geo", nil))
	got := mustIdentifier(t, m, method("operator+", c))
	if got.C != "ns__geo__Vec__operator__add__" {
		t.Fatalf("got %q", got.C)
	}
}

func TestSpecializations(t *testing.T) {
	a := namespace("A", nil)
	intT := &native.BuiltinType{Kind: native.BuiltinInt}
	uintT := &native.BuiltinType{Kind: native.BuiltinUInt}

	b := class("B", a)
	b.Specialization = &native.Specialization{Args: []native.TemplateArg{native.TypeArg(intT)}}
	get := method("get", b)

	m := mangle.New(mangle.DefaultConfig())
	id := mustIdentifier(t, m, b)
	if id.C != "upp_A_B_int" || id.Cpp != "A::B<int>" {
		t.Fatalf("specialization: %+v", id)
	}
	id = mustIdentifier(t, m, get)
	if id.C != "upp_A_B_int_get" || id.Cpp != "A::B<int>::get" {
		t.Fatalf("member of specialization: %+v", id)
	}

	tuple := class("tuple", nil)
	tuple.Specialization = &native.Specialization{Args: []native.TemplateArg{
		{Kind: native.ArgPack, Pack: []native.TemplateArg{native.TypeArg(uintT), native.IntArg(4, intT)}},
	}}
	id = mustIdentifier(t, m, tuple)
	if id.C != "upp_tuple_unsigned__int_4" {
		t.Fatalf("pack: %q", id.C)
	}
	if id.Cpp != "tuple<unsigned int, 4>" {
		t.Fatalf("pack qualified: %q", id.Cpp)
	}
}

func TestEnumScopes(t *testing.T) {
	a := namespace("A", nil)
	plain := &native.EnumDecl{DeclBase: native.DeclBase{Ident: "Color", Context: a}}
	scoped := &native.EnumDecl{DeclBase: native.DeclBase{Ident: "Mode", Context: a}, Scoped: true}
	red := &native.EnumConstantDecl{DeclBase: native.DeclBase{Ident: "RED", Context: plain}}
	fast := &native.EnumConstantDecl{DeclBase: native.DeclBase{Ident: "FAST", Context: scoped}}

	m := mangle.New(mangle.DefaultConfig())
	if id := mustIdentifier(t, m, red); id.C != "upp_A_RED" || id.Cpp != "A::RED" {
		t.Fatalf("unscoped enumerator: %+v", id)
	}
	if id := mustIdentifier(t, m, fast); id.C != "upp_A_Mode_FAST" || id.Cpp != "A::Mode::FAST" {
		t.Fatalf("scoped enumerator: %+v", id)
	}
}

func TestManglingErrors(t *testing.T) {
	anonNS := namespace("", nil)
	fn := &native.FunctionDecl{DeclBase: native.DeclBase{Ident: "f"}}
	anonRec := &native.RecordDecl{DeclBase: native.DeclBase{}, IsDefinition: true}
	nested := &native.RecordDecl{DeclBase: native.DeclBase{Context: fn}}
	local := class("Local", nested)

	cases := []struct {
		desc string
		decl native.Decl
		want error
		code string
	}{
		{"anonymous namespace", class("Hidden", anonNS), mangle.ErrAnonymousNamespace, "MangleAnonymousNamespace"},
		{"function body", &native.VarDecl{DeclBase: native.DeclBase{Ident: "x", Context: fn}}, mangle.ErrInFunction, "MangleInFunction"},
		{"function further out", local, mangle.ErrInFunction, "MangleInFunction"},
		{"anonymous record", &native.FieldDecl{DeclBase: native.DeclBase{Ident: "x", Context: anonRec}}, mangle.ErrAnonymousRecord, "MangleAnonymousRecord"},
		{"anonymous decl", anonRec, mangle.ErrAnonymousDecl, "MangleAnonymousDecl"},
	}
	m := mangle.New(mangle.DefaultConfig())
	for _, tc := range cases {
		_, err := m.Identifier(tc.decl)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.desc, tc.want, err)
		}
		var me *mangle.Error
		if !errors.As(err, &me) {
			t.Fatalf("%s: not a *mangle.Error", tc.desc)
		}
		if me.Kind.Code().Title() == "" || !strings.Contains(err.Error(), "cannot mangle") {
			t.Fatalf("%s: unexpected error text %q", tc.desc, err)
		}
	}
	if errors.Is(mangle.ErrInFunction, mangle.ErrAnonymousDecl) {
		t.Fatalf("different kinds must not match")
	}
}

func TestCacheAndReset(t *testing.T) {
	m := mangle.New(mangle.DefaultConfig())
	fn := &native.FunctionDecl{DeclBase: native.DeclBase{Ident: "first"}}
	if id := mustIdentifier(t, m, fn); id.C != "upp_first" {
		t.Fatalf("got %q", id.C)
	}
	fn.Ident = "second"
	if id := mustIdentifier(t, m, fn); id.C != "upp_first" {
		t.Fatalf("cached identifier not reused: %q", id.C)
	}
	m.Reset()
	if id := mustIdentifier(t, m, fn); id.C != "upp_second" {
		t.Fatalf("reset did not clear the cache: %q", id.C)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := mangle.Config{Ctor: "_make"}.WithDefaults()
	if cfg.Ctor != "_make" || cfg.Dtor != "_delete" || cfg.StructSuffix != "_struct_" || cfg.CppSeparator != "::" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
