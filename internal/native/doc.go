// Package native models the declaration and type graph handed over by the
// compiler frontend.
//
// The frontend has already run full semantic analysis: every type is
// resolved, template specializations are instantiated, constant initializers
// are evaluated and source locations are known. This package only describes
// that result; it performs no analysis of its own beyond desugaring and
// printing.
//
// Node identity is pointer identity. A *RecordDecl reached through two
// different RecordType nodes is the same declaration, which is what the
// declaration registry keys on.
//
// Graphs are built either by the snapshot loader or directly in Go:
//
//	ns := &native.NamespaceDecl{DeclBase: native.DeclBase{Ident: "A"}}
//	rec := &native.RecordDecl{DeclBase: native.DeclBase{Ident: "S", Context: ns}, Tag: native.TagStruct}
//	ns.Decls = append(ns.Decls, rec)
package native
