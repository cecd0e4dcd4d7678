package irgen

import (
	"testing"

	"ffigen/internal/native"
)

func TestRegistryIDsAreStable(t *testing.T) {
	r := NewRegistry()
	a := &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: "a"}}
	b := &native.EnumDecl{DeclBase: native.DeclBase{Ident: "b"}}

	if id := r.AddDecl(nil); id != 0 {
		t.Fatalf("file scope: expected id 0, got %d", id)
	}
	if id := r.DeclID(a); id != 0 {
		t.Fatalf("unregistered decl: expected id 0, got %d", id)
	}
	ida := r.AddDecl(a)
	idb := r.AddDecl(b)
	if ida != 1 || idb != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", ida, idb)
	}
	if again := r.AddDecl(a); again != ida {
		t.Fatalf("AddDecl is not idempotent: %d then %d", ida, again)
	}
	if r.DeclID(b) != idb {
		t.Fatalf("DeclID(b) = %d, want %d", r.DeclID(b), idb)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", r.Len())
	}
}

func TestRegistryRecordsShareDefinitionEntry(t *testing.T) {
	r := NewRegistry()
	def := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "S"}, IsDefinition: true}
	fwd := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "S"}, Def: def}

	if r.AddDecl(fwd) != r.AddDecl(def) {
		t.Fatalf("forward declaration and definition got different ids")
	}
	r.MarkEmitted(def)
	if !r.Emitted(fwd) {
		t.Fatalf("emitted flag not shared through the definition")
	}
}

func TestRegistryMarkEmittedDoesNotAssignID(t *testing.T) {
	r := NewRegistry()
	fn := &native.FunctionDecl{DeclBase: native.DeclBase{Ident: "f"}}
	r.MarkEmitted(fn)
	if !r.Emitted(fn) {
		t.Fatalf("expected f to be emitted")
	}
	if r.DeclID(fn) != 0 {
		t.Fatalf("MarkEmitted assigned id %d", r.DeclID(fn))
	}
	if r.AddDecl(fn) != 1 {
		t.Fatalf("expected first id to be 1")
	}
}

func TestRegistryConstructionStack(t *testing.T) {
	r := NewRegistry()
	outer := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "outer"}, IsDefinition: true}
	inner := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "inner"}, IsDefinition: true}

	if r.IsCurDecl(outer) || r.Current() != nil {
		t.Fatalf("empty stack reports a current decl")
	}
	r.Begin(outer)
	r.Begin(inner)
	if !r.IsCurDecl(outer) || !r.IsCurDecl(inner) {
		t.Fatalf("both decls should be under construction")
	}
	if r.Current() != inner {
		t.Fatalf("innermost decl should be current")
	}
	r.End(inner)
	if r.IsCurDecl(inner) {
		t.Fatalf("inner still reported after End")
	}
	r.End(outer)

	defer func() {
		if recover() == nil {
			t.Fatalf("unbalanced End did not panic")
		}
	}()
	r.End(outer)
}
