package irgen

import (
	"context"
	"errors"
	"testing"

	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/native"
)

// namespace A {
//   typedef struct { int q; } D_t;
//   template<class T> class B { public: B(T v); T m; };
//   typedef B<int> B_int;
// }
func TestHarvestNamespaceTemplateTypedefs(t *testing.T) {
	f := newFixture(native.LangCXX11)
	intT := builtin(native.BuiltinInt)

	nsA := &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: "A", Loc: f.pos(1)}}

	anon := &native.RecordDecl{
		DeclBase:             native.DeclBase{Context: nsA, Loc: f.pos(2)},
		CXX:                  true,
		IsDefinition:         true,
		EmbeddedInDeclarator: true,
		Fields:               []*native.FieldDecl{field("q", intT)},
	}
	anon.Fields[0].Context = anon
	dT := &native.TypedefDecl{
		DeclBase:   native.DeclBase{Ident: "D_t", Context: nsA, Loc: f.pos(2)},
		Underlying: &native.ElaboratedType{Named: &native.RecordType{Decl: anon}},
	}

	tParam := &native.SubstTemplateTypeParmType{Param: "T", Replacement: intT}
	bInt := &native.RecordDecl{
		DeclBase:     native.DeclBase{Ident: "B", Context: nsA, Loc: f.pos(3)},
		Tag:          native.TagClass,
		CXX:          true,
		IsDefinition: true,
		Specialization: &native.Specialization{
			Args: []native.TemplateArg{native.TypeArg(intT)},
			Kind: native.SpecImplicitInstantiation,
		},
	}
	m := field("m", tParam)
	m.Context, m.Visibility = bInt, native.AccessPublic
	bInt.Fields = []*native.FieldDecl{m}
	ctor := &native.MethodDecl{
		FunctionDecl: native.FunctionDecl{
			DeclBase: native.DeclBase{Ident: "B", Context: bInt, Visibility: native.AccessPublic},
			Result:   builtin(native.BuiltinVoid),
			Params:   []*native.ParamDecl{{DeclBase: native.DeclBase{Ident: "v"}, Type: tParam}},
		},
		Ctor: true,
	}
	bInt.Methods = []*native.MethodDecl{ctor}
	tmpl := &native.TemplateDecl{
		DeclBase:        native.DeclBase{Ident: "B", Context: nsA, Loc: f.pos(3)},
		TemplateKind:    "ClassTemplate",
		Specializations: []*native.RecordDecl{bInt},
	}
	bIntT := &native.TypedefDecl{
		DeclBase: native.DeclBase{Ident: "B_int", Context: nsA, Loc: f.pos(4)},
		Underlying: &native.TemplateSpecializationType{
			Template: "B",
			Args:     []native.TemplateArg{native.TypeArg(intT)},
			Aliased:  &native.RecordType{Decl: bInt},
		},
	}
	nsA.Decls = []native.Decl{anon, dT, tmpl, bIntT}
	f.add(nsA)

	unit := f.run(t)

	if len(unit.Decls) != 4 {
		for _, d := range unit.Decls {
			t.Logf("%T %q", d, d.Base().Name)
		}
		t.Fatalf("expected namespace, two typedefs and B<int>, got %d decls", len(unit.Decls))
	}
	ns, ok := unit.Decls[0].(*ir.CXXNamespaceDecl)
	if !ok || ns.Name != "A" || ns.ID == 0 {
		t.Fatalf("first decl should be namespace A with an id")
	}
	if ns.Location != "test.h:1:1" {
		t.Fatalf("namespace location %q", ns.Location)
	}

	dtd := unit.Decls[1].(*ir.TypedefDecl)
	if dtd.Name != "D_t" || dtd.NS != ns.ID {
		t.Fatalf("D_t: name=%q ns=%d", dtd.Name, dtd.NS)
	}
	inline, ok := dtd.Type.(*ir.DeclType)
	if !ok {
		t.Fatalf("D_t should carry its anonymous struct in place, got %T", dtd.Type)
	}
	anonIR := inline.Decl.(*ir.CXXRecordDecl)
	if anonIR.Name != "" || len(anonIR.Fields) != 1 || anonIR.Fields[0].Name != "q" || anonIR.NS != ns.ID {
		t.Fatalf("unexpected anonymous record %#v", anonIR)
	}

	btd := unit.Decls[2].(*ir.TypedefDecl)
	ref, ok := btd.Type.(*ir.RecordType)
	if !ok || btd.Name != "B_int" {
		t.Fatalf("B_int should reference the specialization by name, got %T", btd.Type)
	}
	if !ref.Class || len(ref.TemplateArgs) != 1 {
		t.Fatalf("unexpected reference %#v", ref)
	}

	spec := unit.Decls[3].(*ir.CXXRecordDecl)
	if spec.ID != ref.ID || spec.ID == 0 {
		t.Fatalf("B<int> id %d, typedef refers to %d", spec.ID, ref.ID)
	}
	if len(spec.Methods) != 1 || !spec.Methods[0].Ctor {
		t.Fatalf("expected one constructor, got %#v", spec.Methods)
	}
	if len(spec.Fields) != 1 || spec.Fields[0].Name != "m" {
		t.Fatalf("expected public field m, got %#v", spec.Fields)
	}
	if bt, ok := spec.Fields[0].Type.(*ir.BasicType); !ok || bt.Name != ":int" {
		t.Fatalf("m should be :int, got %T", spec.Fields[0].Type)
	}
	if len(spec.TemplateArgs) != 1 {
		t.Fatalf("expected one template argument")
	}
	if f.bag.Count(diag.DeclInvalid) != 1 {
		t.Fatalf("top-level anonymous record should be reported once: %v", f.bag.Items())
	}
}

func TestFatalDiagnosticStopsHarvest(t *testing.T) {
	f := newFixture(native.LangC)
	for _, name := range []string{"a", "b", "c"} {
		f.add(&native.VarDecl{DeclBase: native.DeclBase{Ident: name}, Type: builtin(native.BuiltinInt)})
	}
	f.tu.Diagnostics = []native.Diagnostic{{Severity: native.DiagFatal, Message: "boom", DeclIndex: 1}}

	unit, err := f.harvester().Run(context.Background())
	if !errors.Is(err, ErrFrontendFatal) {
		t.Fatalf("expected ErrFrontendFatal, got %v", err)
	}
	if len(unit.Decls) != 1 || unit.Decls[0].Base().Name != "a" {
		t.Fatalf("expected only a, got %d decls", len(unit.Decls))
	}
	if f.bag.Count(diag.FrontendFatal) != 1 {
		t.Fatalf("fatal diagnostic not forwarded")
	}
}

func TestCancelledRunReturnsContextError(t *testing.T) {
	f := newFixture(native.LangC)
	f.add(&native.VarDecl{DeclBase: native.DeclBase{Ident: "a"}, Type: builtin(native.BuiltinInt)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.harvester().Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDuplicateDeclIsSkipped(t *testing.T) {
	f := newFixture(native.LangC)
	s := record("S", field("x", builtin(native.BuiltinInt)))
	f.add(s, s)

	unit := f.run(t)
	if len(unit.Decls) != 1 {
		t.Fatalf("expected S once, got %d decls", len(unit.Decls))
	}
	if f.bag.Count(diag.DeclDuplicate) != 1 {
		t.Fatalf("duplicate not reported")
	}
}

func TestInvalidCXXRecords(t *testing.T) {
	f := newFixture(native.LangCXX14)
	fwd := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "Fwd"}, CXX: true}
	broken := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "Broken", Invalid: true}, CXX: true, IsDefinition: true}

	spec := &native.RecordDecl{
		DeclBase:     native.DeclBase{Ident: "V"},
		CXX:          true,
		IsDefinition: true,
		Specialization: &native.Specialization{
			Args: []native.TemplateArg{native.IntArg(3, builtin(native.BuiltinInt))},
			Kind: native.SpecExplicitInstantiationDefinition,
		},
	}
	twin := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "V", Context: spec}, CXX: true, IsDefinition: true}
	spec.Decls = []native.Decl{twin}
	f.add(fwd, broken, twin)

	unit := f.run(t)
	if len(unit.Decls) != 0 {
		t.Fatalf("expected nothing emitted, got %d decls", len(unit.Decls))
	}
	if f.bag.Count(diag.DeclInvalid) != 2 || f.bag.Count(diag.DeclInternalTemplate) != 1 {
		t.Fatalf("unexpected diagnostics %v", f.bag.Items())
	}

	h := f.harvester()
	_, err := h.MakeDecl(fwd, true)
	if !errors.Is(err, &InvalidDeclError{Kind: InvalidNoDefinition}) {
		t.Fatalf("expected no-definition error, got %v", err)
	}
	_, err = h.MakeDecl(twin, true)
	if !errors.Is(err, &InvalidDeclError{}) {
		t.Fatalf("twin error does not match the wildcard kind: %v", err)
	}
}

func TestForwardCXXRecordReferenceFallsBackToName(t *testing.T) {
	f := newFixture(native.LangCXX11)
	fwd := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "Impl"}, CXX: true, Tag: native.TagClass}
	v := &native.VarDecl{DeclBase: native.DeclBase{Ident: "impl"}, Type: &native.PointerType{Pointee: &native.RecordType{Decl: fwd}}}
	f.add(v)

	unit := f.run(t)
	rt, ok := unit.Decls[0].(*ir.VarDecl).Type.(*ir.PointerType).Pointee.(*ir.RecordType)
	if !ok || rt.Name != "Impl" || !rt.Class || rt.ID == 0 {
		t.Fatalf("expected a named reference to Impl")
	}
}

func TestCXXRecordMembersAndParents(t *testing.T) {
	f := newFixture(native.LangCXX11)
	intT := builtin(native.BuiltinInt)

	base := record("Base", field("b", intT))
	base.CXX = true
	base.Fields[0].Visibility = native.AccessPublic

	derived := record("Derived", field("pub", intT), field("priv", intT))
	derived.CXX = true
	derived.Tag = native.TagClass
	derived.Fields[0].Visibility = native.AccessPublic
	derived.Fields[1].Visibility = native.AccessPrivate
	derived.Bases = []native.BaseSpec{{Type: &native.RecordType{Decl: base}, Access: native.AccessPublic}}
	method := func(name string, access native.AccessSpec) *native.MethodDecl {
		return &native.MethodDecl{FunctionDecl: native.FunctionDecl{
			DeclBase: native.DeclBase{Ident: name, Context: derived, Visibility: access},
			Result:   intT,
		}}
	}
	get := method("get", native.AccessPublic)
	get.Const = true
	draw := method("draw", native.AccessPublic)
	draw.Virtual, draw.Pure = true, true
	hidden := method("hidden", native.AccessPrivate)
	derived.Methods = []*native.MethodDecl{get, draw, hidden}
	f.add(base, derived)

	unit := f.run(t)
	rd := findDecl(unit, "Derived").(*ir.CXXRecordDecl)
	if !rd.Class || !rd.Abstract {
		t.Fatalf("Derived should be an abstract class")
	}
	if len(rd.Fields) != 1 || rd.Fields[0].Name != "pub" {
		t.Fatalf("only public fields expected, got %#v", rd.Fields)
	}
	if len(rd.Methods) != 2 || !rd.Methods[0].Const || !rd.Methods[1].Pure {
		t.Fatalf("unexpected methods %#v", rd.Methods)
	}
	if rd.Methods[0].NS != rd.ID {
		t.Fatalf("method ns %d, record id %d", rd.Methods[0].NS, rd.ID)
	}
	if rd.Methods[0].Linkage != ir.LinkCXX11 {
		t.Fatalf("method linkage %s", rd.Methods[0].Linkage)
	}
	if len(rd.Parents) != 1 || rd.Parents[0].Name != "Base" || rd.Parents[0].Access != ir.AccessPublic {
		t.Fatalf("unexpected parents %#v", rd.Parents)
	}
	// vptr first, then the base subobject.
	if rd.Parents[0].Offset != 8 {
		t.Fatalf("base offset %d, want 8", rd.Parents[0].Offset)
	}
}

func TestFunctionLinkageAndStorage(t *testing.T) {
	f := newFixture(native.LangCXX17)
	intT := builtin(native.BuiltinInt)
	block := &native.LinkageSpecDecl{Lang: native.LanguageC}
	cfn := &native.FunctionDecl{
		DeclBase: native.DeclBase{Ident: "c_fn", Context: block},
		Result:   intT,
		Params:   []*native.ParamDecl{{DeclBase: native.DeclBase{Ident: "fmt"}, Type: &native.PointerType{Pointee: builtin(native.BuiltinCharS)}}},
		Variadic: true,
		Storage:  native.StorageExtern,
	}
	block.Decls = []native.Decl{cfn}
	cxxfn := &native.FunctionDecl{
		DeclBase:        native.DeclBase{Ident: "cxx_fn"},
		Result:          intT,
		InlineSpecified: true,
		Storage:         native.StorageStatic,
	}
	reg := &native.FunctionDecl{DeclBase: native.DeclBase{Ident: "odd"}, Result: intT, Storage: native.StorageRegister}
	f.add(block, cxxfn, reg)

	unit := f.run(t)
	c := findDecl(unit, "c_fn").(*ir.FunctionDecl)
	if c.Linkage != ir.LinkC || c.StorageClass != "extern" || !c.Variadic || len(c.Params) != 1 {
		t.Fatalf("unexpected c_fn %#v", c)
	}
	if !c.Params[0].Type.(*ir.PointerType).IsString() {
		t.Fatalf("char* parameter should be a string")
	}
	x := findDecl(unit, "cxx_fn").(*ir.FunctionDecl)
	if x.Linkage != ir.LinkCXX14 || x.StorageClass != "static" || !x.Inline {
		t.Fatalf("unexpected cxx_fn %#v", x)
	}
	if odd := findDecl(unit, "odd").(*ir.FunctionDecl); odd.StorageClass != "unknown" {
		t.Fatalf("register storage should be unknown, got %q", odd.StorageClass)
	}
}

func TestVariableValues(t *testing.T) {
	f := newFixture(native.LangC)
	f.tu.Macros["VERSION"] = f.pos(7)

	charPtr := &native.PointerType{Pointee: builtin(native.BuiltinCharS)}
	vars := []*native.VarDecl{
		{DeclBase: native.DeclBase{Ident: "__c2ffi_VERSION", Loc: f.pos(100)}, Type: builtin(native.BuiltinInt), HasInit: true, Init: native.IntValue(-3)},
		{DeclBase: native.DeclBase{Ident: "big"}, Type: builtin(native.BuiltinULongLong), HasInit: true, Init: native.UintValue(18446744073709551615)},
		{DeclBase: native.DeclBase{Ident: "ratio"}, Type: builtin(native.BuiltinFloat), HasInit: true, Init: native.FloatValue(float64(float32(0.1)), 32)},
		{DeclBase: native.DeclBase{Ident: "name"}, Type: charPtr, HasInit: true, Init: native.StringValue(1, []byte("lib"))},
		{DeclBase: native.DeclBase{Ident: "wide"}, Type: charPtr, HasInit: true, Init: native.StringValue(2, []byte{'h', 0, 'i', 0})},
		{DeclBase: native.DeclBase{Ident: "wide32"}, Type: charPtr, HasInit: true, Init: native.StringValue(4, []byte{0x3a, 0xf6, 0x01, 0x00})},
		{DeclBase: native.DeclBase{Ident: "dep"}, Type: builtin(native.BuiltinInt), HasInit: true, DependentType: true, Init: native.IntValue(1)},
		{DeclBase: native.DeclBase{Ident: "noinit"}, Type: builtin(native.BuiltinInt), Extern: true},
	}
	for _, v := range vars {
		f.add(v)
	}

	unit := f.run(t)
	want := map[string]struct {
		value    string
		isString bool
	}{
		"VERSION": {"-3", false},
		"big":     {"18446744073709551615", false},
		"ratio":   {"0.1", false},
		"name":    {"lib", true},
		"wide":    {"hi", true},
		"wide32":  {"\U0001F63A", true},
		"dep":     {"", false},
		"noinit":  {"", false},
	}
	for name, w := range want {
		d := findDecl(unit, name)
		if d == nil {
			t.Fatalf("%s not emitted", name)
		}
		v := d.(*ir.VarDecl)
		if v.Value != w.value || v.IsString != w.isString {
			t.Fatalf("%s: value=%q string=%v, want %q %v", name, v.Value, v.IsString, w.value, w.isString)
		}
	}
	if loc := findDecl(unit, "VERSION").Base().Location; loc != "test.h:7:1" {
		t.Fatalf("macro carrier should use the macro location, got %q", loc)
	}
	if !findDecl(unit, "noinit").(*ir.VarDecl).Extern {
		t.Fatalf("extern flag lost")
	}
}

func TestObjCContainers(t *testing.T) {
	f := newFixture(native.LangObjC)
	idT := builtin(native.BuiltinObjCID)
	alloc := &native.ObjCMethodDecl{DeclBase: native.DeclBase{Ident: "alloc"}, Result: idT, ClassMethod: true}
	length := &native.ObjCMethodDecl{DeclBase: native.DeclBase{Ident: "length"}, Result: builtin(native.BuiltinULong)}
	iface := &native.ObjCInterfaceDecl{
		DeclBase:  native.DeclBase{Ident: "NSString"},
		Super:     "NSObject",
		Protocols: []string{"NSCopying"},
		Ivars: []*native.FieldDecl{
			{DeclBase: native.DeclBase{Ident: "_len", Visibility: native.AccessPublic}, Type: builtin(native.BuiltinULong)},
			{DeclBase: native.DeclBase{Ident: "_priv", Visibility: native.AccessPrivate}, Type: builtin(native.BuiltinInt)},
		},
		Methods: []*native.ObjCMethodDecl{alloc, length},
	}
	cat := &native.ObjCCategoryDecl{DeclBase: native.DeclBase{Ident: "NSString"}, Category: "Extras", Methods: []*native.ObjCMethodDecl{length}}
	proto := &native.ObjCProtocolDecl{DeclBase: native.DeclBase{Ident: "NSCopying"}}
	other := &native.OtherDecl{DeclBase: native.DeclBase{Ident: "assert"}, KindName: "StaticAssert"}
	f.add(iface, cat, proto, other)

	unit := f.run(t)
	oi := unit.Decls[0].(*ir.ObjCInterfaceDecl)
	if oi.Super != "NSObject" || len(oi.Fields) != 1 || len(oi.Functions) != 2 {
		t.Fatalf("unexpected interface %#v", oi)
	}
	if !oi.Functions[0].ObjCMethod || !oi.Functions[0].ClassMethod || oi.Functions[1].ClassMethod {
		t.Fatalf("method flags wrong")
	}
	if oi.Functions[0].StorageClass != "none" {
		t.Fatalf("objc method storage %q", oi.Functions[0].StorageClass)
	}
	if oc := unit.Decls[1].(*ir.ObjCCategoryDecl); oc.Category != "Extras" || len(oc.Functions) != 1 {
		t.Fatalf("unexpected category %#v", oc)
	}
	if _, ok := unit.Decls[2].(*ir.ObjCProtocolDecl); !ok {
		t.Fatalf("expected protocol")
	}
	if u, ok := unit.Decls[3].(*ir.UnhandledDecl); !ok || u.Kind != "StaticAssert" {
		t.Fatalf("expected unhandled StaticAssert")
	}
}

func TestUnknownTargetFallsBackToX86_64(t *testing.T) {
	f := newFixture(native.LangC)
	f.tu.Target = "pdp11-unknown-none"
	f.add(record("S", field("p", &native.PointerType{Pointee: builtin(native.BuiltinVoid)})))

	unit := f.run(t)
	if f.bag.Count(diag.TargetUnknown) != 1 {
		t.Fatalf("expected one unknown-target warning: %v", f.bag.Items())
	}
	rd := unit.Decls[0].(*ir.RecordDecl)
	if rd.BitSize != 64 || rd.BitAlignment != 64 {
		t.Fatalf("expected x86_64 pointer layout, got size=%d align=%d", rd.BitSize, rd.BitAlignment)
	}
}

func TestParentUsesUnqualifiedName(t *testing.T) {
	f := newFixture(native.LangCXX11)
	ns := &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: "geo"}}
	base := record("Shape", field("id", builtin(native.BuiltinInt)))
	base.CXX = true
	base.Context = ns
	circle := record("Circle", field("r", builtin(native.BuiltinDouble)))
	circle.CXX = true
	circle.Context = ns
	circle.Bases = []native.BaseSpec{{Type: &native.RecordType{Decl: base}, Access: native.AccessPublic}}
	ns.Decls = []native.Decl{base, circle}
	f.add(ns)

	unit := f.run(t)
	var rd *ir.CXXRecordDecl
	for _, d := range unit.Decls {
		if c, ok := d.(*ir.CXXRecordDecl); ok && c.Name == "Circle" {
			rd = c
		}
	}
	if rd == nil {
		t.Fatalf("Circle not emitted: %d decls", len(unit.Decls))
	}
	if len(rd.Parents) != 1 || rd.Parents[0].Name != "Shape" {
		t.Fatalf("expected parent named Shape, got %#v", rd.Parents)
	}
}
