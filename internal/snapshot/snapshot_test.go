package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ffigen/internal/native"
	"ffigen/internal/source"
)

func sampleUnit() *native.TranslationUnit {
	tu := native.NewTranslationUnit(native.LangCXX11, "x86_64-linux-gnu")
	file := tu.Files.Add("test.hpp", 0)
	at := func(line uint32) source.Pos { return source.Pos{File: file, Line: line, Col: 1} }
	intT := &native.BuiltinType{Kind: native.BuiltinInt}

	ns := &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: "A", Loc: at(1)}}
	rec := &native.RecordDecl{
		DeclBase:     native.DeclBase{Ident: "Point", Context: ns, Loc: at(2)},
		Tag:          native.TagClass,
		CXX:          true,
		IsDefinition: true,
		Layout:       &native.RecordLayout{Size: 64, Align: 32, FieldOffsets: []uint64{0, 32}},
	}
	x := &native.FieldDecl{DeclBase: native.DeclBase{Ident: "x", Context: rec, Visibility: native.AccessPublic}, Type: intT}
	y := &native.FieldDecl{DeclBase: native.DeclBase{Ident: "y", Context: rec, Visibility: native.AccessPrivate}, Type: intT, BitField: true, BitWidth: 3}
	rec.Fields = []*native.FieldDecl{x, y}
	rec.Decls = []native.Decl{x, y}

	td := &native.TypedefDecl{DeclBase: native.DeclBase{Ident: "point_t", Context: ns, Loc: at(5)}, Underlying: &native.RecordType{Decl: rec}}
	p := &native.ParamDecl{DeclBase: native.DeclBase{Ident: "p"}, Type: &native.PointerType{Pointee: &native.TypedefType{Decl: td}}}
	fn := &native.FunctionDecl{
		DeclBase: native.DeclBase{Ident: "norm", Context: ns, Loc: at(6)},
		Result:   &native.BuiltinType{Kind: native.BuiltinDouble},
		Params:   []*native.ParamDecl{p},
		Storage:  native.StorageStatic,
	}
	p.Context = fn
	ns.Decls = []native.Decl{rec, td, fn}

	greeting := &native.VarDecl{
		DeclBase: native.DeclBase{Ident: "greeting", Loc: at(8)},
		Type:     &native.PointerType{Pointee: &native.BuiltinType{Kind: native.BuiltinCharS}},
		HasInit:  true,
		Init:     native.StringValue(1, []byte("hi")),
	}
	tu.Decls = []native.Decl{ns, greeting}
	tu.Macros["FOO"] = at(10)
	tu.Diagnostics = []native.Diagnostic{{Severity: native.DiagWarning, Pos: at(3), Message: "unused", DeclIndex: 1}}
	return tu
}

func TestEncodeDecodeMsgpack(t *testing.T) {
	data, err := Marshal(Encode(sampleUnit()), EncodingMsgpack)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	snap, err := Unmarshal(data, EncodingMsgpack)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	tu, err := Decode(snap, Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if tu.Lang != native.LangCXX11 || tu.Target != "x86_64-linux-gnu" {
		t.Fatalf("unexpected unit header: %v %q", tu.Lang, tu.Target)
	}
	if len(tu.Decls) != 2 {
		t.Fatalf("expected 2 top-level decls, got %d", len(tu.Decls))
	}
	ns, ok := tu.Decls[0].(*native.NamespaceDecl)
	if !ok || ns.Name() != "A" || len(ns.Decls) != 3 {
		t.Fatalf("unexpected namespace %#v", tu.Decls[0])
	}
	rec, ok := ns.Decls[0].(*native.RecordDecl)
	if !ok || !rec.CXX || !rec.IsClass() || rec.Parent() != ns {
		t.Fatalf("unexpected record %#v", ns.Decls[0])
	}
	if rec.Layout == nil || rec.Layout.Size != 64 || rec.Fields[1].BitWidth != 3 || rec.Fields[1].Access() != native.AccessPrivate {
		t.Fatalf("record details lost: %#v", rec)
	}

	fn := ns.Decls[2].(*native.FunctionDecl)
	if fn.Storage != native.StorageStatic || len(fn.Params) != 1 || fn.Params[0].Parent() != fn {
		t.Fatalf("function details lost: %#v", fn)
	}
	ptr := fn.Params[0].Type.(*native.PointerType)
	tdt := ptr.Pointee.(*native.TypedefType)
	if tdt.Decl != ns.Decls[1] {
		t.Fatal("typedef type must point at the decoded typedef decl")
	}
	if rt := tdt.Decl.Underlying.(*native.RecordType); rt.Decl != rec {
		t.Fatal("record type must point at the decoded record decl")
	}

	v := tu.Decls[1].(*native.VarDecl)
	if v.Init == nil || v.Init.Kind != native.ValueString || string(v.Init.Str.Bytes) != "hi" {
		t.Fatalf("initializer lost: %#v", v.Init)
	}
	if got := tu.Files.Render(v.Pos()); got != "test.hpp:8:1" {
		t.Fatalf("position = %q", got)
	}
	if pos, ok := tu.Macros["FOO"]; !ok || pos.Line != 10 {
		t.Fatalf("macro position lost: %v", tu.Macros)
	}
	if len(tu.Diagnostics) != 1 || tu.Diagnostics[0].Severity != native.DiagWarning || tu.Diagnostics[0].DeclIndex != 1 {
		t.Fatalf("diagnostics lost: %#v", tu.Diagnostics)
	}
}

const fixtureJSON = `{
  "producer": "clang-plugin",
  "version": "1.2.0",
  "lang": "c",
  "files": [{"path": "/usr/include/x.h", "system": true}],
  "types": [
    {"class": "Builtin", "builtin": "UInt"},
    {"class": "Enum", "decl": 2}
  ],
  "decls": [
    {"kind": "Var", "name": "mode", "type": 2, "pos": {"file": 1, "line": 4, "col": 12}, "extern": true},
    {"kind": "Enum", "name": "mode_t", "type": 1, "definition": true, "enumerators": [3]},
    {"kind": "EnumConstant", "name": "MODE_A", "parent": 2, "value": -1},
    {"kind": "StaticAssert"}
  ],
  "top": [2, 1, 4],
  "diagnostics": [{"severity": "fatal", "message": "boom", "decl_index": 2}]
}`

func TestLoadJSONFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	if err := os.WriteFile(path, []byte(fixtureJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	tu, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tu.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(tu.Decls))
	}
	enum := tu.Decls[0].(*native.EnumDecl)
	if enum.Enumerators[0].Value != -1 || enum.Enumerators[0].Parent() != enum {
		t.Fatalf("enumerator lost: %#v", enum.Enumerators[0])
	}
	v := tu.Decls[1].(*native.VarDecl)
	if et, ok := v.Type.(*native.EnumType); !ok || et.Decl != enum {
		t.Fatalf("variable type must reference the enum, got %#v", v.Type)
	}
	if f := tu.Files.Get(v.Pos().File); f == nil || f.Flags&source.FileSystem == 0 {
		t.Fatal("system flag lost")
	}
	if other, ok := tu.Decls[2].(*native.OtherDecl); !ok || native.KindName(other) != "StaticAssert" {
		t.Fatalf("unknown kinds should decode as OtherDecl, got %#v", tu.Decls[2])
	}
	if tu.FatalIndex() != 2 {
		t.Fatalf("fatal index = %d", tu.FatalIndex())
	}
}

func TestDecodeRejectsVersion(t *testing.T) {
	snap := Encode(sampleUnit())
	snap.Version = "2.0.0"
	_, err := Decode(snap, Options{})
	if !errors.Is(err, &Error{Kind: ErrVersion}) {
		t.Fatalf("expected version error, got %v", err)
	}
	if _, err := Decode(snap, Options{ProducerVersion: ">= 2.0.0"}); err != nil {
		t.Fatalf("constraint override should accept 2.0.0: %v", err)
	}
	snap.Version = "not-a-version"
	if _, err := Decode(snap, Options{}); !errors.Is(err, &Error{Kind: ErrVersion}) {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestDecodeRejectsBadReferences(t *testing.T) {
	snap := &Snapshot{
		Version: SchemaVersion,
		Lang:    "c",
		Types:   []TypeRecord{{Class: "Pointer", Inner: 1}},
		Decls:   []DeclRecord{{Kind: "Var", Name: "v", Type: 1}},
		Top:     []Ref{1},
	}
	if _, err := Decode(snap, Options{}); !errors.Is(err, &Error{Kind: ErrMalformed}) {
		t.Fatalf("expected malformed error for a type cycle, got %v", err)
	}

	snap.Types = []TypeRecord{{Class: "Record", Decl: 1}}
	if _, err := Decode(snap, Options{}); !errors.Is(err, &Error{Kind: ErrMalformed}) {
		t.Fatalf("expected malformed error for a record type naming a var, got %v", err)
	}

	snap.Types = nil
	snap.Decls[0].Access = "friend"
	if _, err := Decode(snap, Options{}); !errors.Is(err, &Error{Kind: ErrUnknownKind}) {
		t.Fatalf("expected unknown-kind error, got %v", err)
	}

	snap.Decls = []DeclRecord{
		{Kind: "Namespace", Name: "A", Parent: 2},
		{Kind: "Namespace", Name: "B", Parent: 1},
	}
	if _, err := Decode(snap, Options{}); !errors.Is(err, &Error{Kind: ErrMalformed}) {
		t.Fatalf("expected malformed error for a context cycle, got %v", err)
	}
	snap.Decls = []DeclRecord{{Kind: "Namespace", Name: "A", Parent: 1}}
	if _, err := Decode(snap, Options{}); !errors.Is(err, &Error{Kind: ErrMalformed}) {
		t.Fatalf("expected malformed error for a self-parented decl, got %v", err)
	}
}

func TestDetectEncoding(t *testing.T) {
	if DetectEncoding("a.astpack", []byte("{")) != EncodingMsgpack {
		t.Fatal("extension should win")
	}
	if DetectEncoding("a.bin", []byte("  {\"lang\":\"c\"}")) != EncodingJSON {
		t.Fatal("JSON sniffing failed")
	}
}
