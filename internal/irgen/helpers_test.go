package irgen

import (
	"context"
	"testing"

	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/native"
	"ffigen/internal/source"
)

type fixture struct {
	tu   *native.TranslationUnit
	file source.FileID
	bag  *diag.Bag
}

func newFixture(lang native.LangStandard) *fixture {
	tu := native.NewTranslationUnit(lang, "x86_64-linux-gnu")
	tu.MainFile = "test.h"
	return &fixture{
		tu:   tu,
		file: tu.Files.Add("test.h", 0),
		bag:  diag.NewBag(100),
	}
}

func (f *fixture) pos(line uint32) source.Pos {
	return source.Pos{File: f.file, Line: line, Col: 1}
}

func (f *fixture) add(ds ...native.Decl) {
	f.tu.Decls = append(f.tu.Decls, ds...)
}

func (f *fixture) harvester() *Harvester {
	return New(f.tu, nil, diag.BagReporter{Bag: f.bag})
}

func (f *fixture) run(t *testing.T) *ir.Unit {
	t.Helper()
	unit, err := f.harvester().Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return unit
}

func builtin(k native.BuiltinKind) *native.BuiltinType { return &native.BuiltinType{Kind: k} }

func field(name string, t native.Type) *native.FieldDecl {
	return &native.FieldDecl{DeclBase: native.DeclBase{Ident: name}, Type: t}
}

func record(name string, fields ...*native.FieldDecl) *native.RecordDecl {
	rd := &native.RecordDecl{DeclBase: native.DeclBase{Ident: name}, IsDefinition: true, Fields: fields}
	for _, f := range fields {
		f.Context = rd
	}
	return rd
}

func findDecl(u *ir.Unit, name string) ir.Decl {
	for _, d := range u.Decls {
		if d.Base().Name == name {
			return d
		}
	}
	return nil
}
