package snapshot

import (
	"ffigen/internal/native"
	"ffigen/internal/source"
)

// Encode flattens a native translation unit into a Snapshot. Declarations
// and types are numbered in the order they are first reached from the
// top-level declarations.
func Encode(tu *native.TranslationUnit) *Snapshot {
	e := &encoder{
		tu:    tu,
		decls: make(map[native.Decl]Ref),
		types: make(map[native.Type]Ref),
		files: make(map[source.FileID]uint32),
		snap: &Snapshot{
			Producer: Producer,
			Version:  SchemaVersion,
			Lang:     tu.Lang.String(),
			Target:   tu.Target,
			MainFile: tu.MainFile,
		},
	}
	for _, d := range tu.Decls {
		e.snap.Top = append(e.snap.Top, e.decl(d))
	}
	for name, pos := range tu.Macros {
		e.snap.Macros = append(e.snap.Macros, MacroRecord{Name: name, Pos: e.pos(pos)})
	}
	sortMacros(e.snap.Macros)
	for _, diag := range tu.Diagnostics {
		e.snap.Diagnostics = append(e.snap.Diagnostics, DiagRecord{
			Severity:  diag.Severity.String(),
			Pos:       e.pos(diag.Pos),
			Message:   diag.Message,
			DeclIndex: diag.DeclIndex,
		})
	}
	return e.snap
}

type encoder struct {
	tu    *native.TranslationUnit
	snap  *Snapshot
	decls map[native.Decl]Ref
	types map[native.Type]Ref
	files map[source.FileID]uint32
}

func (e *encoder) pos(p source.Pos) PosRecord {
	if p.File == source.NoFileID {
		return PosRecord{}
	}
	idx, ok := e.files[p.File]
	if !ok {
		f := e.tu.Files.Get(p.File)
		if f == nil {
			return PosRecord{}
		}
		e.snap.Files = append(e.snap.Files, FileRecord{
			Path:    f.Path,
			System:  f.Flags&source.FileSystem != 0,
			Virtual: f.Flags&source.FileVirtual != 0,
		})
		idx = refOf(len(e.snap.Files))
		e.files[p.File] = idx
	}
	return PosRecord{File: idx, Line: p.Line, Col: p.Col}
}

func (e *encoder) decl(d native.Decl) Ref {
	if d == nil {
		return 0
	}
	if ref, ok := e.decls[d]; ok {
		return ref
	}
	e.snap.Decls = append(e.snap.Decls, DeclRecord{})
	ref := refOf(len(e.snap.Decls))
	e.decls[d] = ref
	rec := e.declRecord(d)
	e.snap.Decls[ref-1] = rec
	return ref
}

func declRefs[T native.Decl](e *encoder, ds []T) []Ref {
	if len(ds) == 0 {
		return nil
	}
	out := make([]Ref, 0, len(ds))
	for _, d := range ds {
		out = append(out, e.decl(d))
	}
	return out
}

func (e *encoder) declRecord(d native.Decl) DeclRecord {
	base := d.Base()
	rec := DeclRecord{
		Kind:    native.KindName(d),
		Name:    base.Ident,
		Display: base.Printed,
		Parent:  e.decl(base.Context),
		Pos:     e.pos(base.Loc),
		Access:  accessName(base.Visibility),
		Invalid: base.Invalid,
	}
	switch dd := d.(type) {
	case *native.NamespaceDecl:
		rec.Inline = dd.Inline
		rec.Children = declRefs(e, dd.Decls)
	case *native.LinkageSpecDecl:
		rec.Lang = languageName(dd.Lang)
		rec.Children = declRefs(e, dd.Decls)
	case *native.RecordDecl:
		e.record(&rec, dd)
	case *native.FieldDecl:
		rec.Type = e.typ(dd.Type)
		rec.BitField = dd.BitField
		rec.BitWidth = dd.BitWidth
	case *native.ParamDecl:
		rec.Type = e.typ(dd.Type)
	case *native.FunctionDecl:
		e.function(&rec, dd)
	case *native.MethodDecl:
		e.function(&rec, &dd.FunctionDecl)
		rec.Static = dd.Static
		rec.Virtual = dd.Virtual
		rec.Const = dd.Const
		rec.Pure = dd.Pure
		rec.Ctor = dd.Ctor
		rec.Dtor = dd.Dtor
	case *native.VarDecl:
		rec.Type = e.typ(dd.Type)
		rec.Extern = dd.Extern
		rec.HasInit = dd.HasInit
		rec.DependentType = dd.DependentType
		rec.Init = valueRecord(dd.Init)
	case *native.TypedefDecl:
		rec.Type = e.typ(dd.Underlying)
		rec.Alias = dd.Alias
	case *native.EnumDecl:
		rec.Type = e.typ(dd.Integer)
		rec.Scoped = dd.Scoped
		rec.Definition = dd.IsDefinition
		rec.Embedded = dd.EmbeddedInDeclarator
		rec.Enumerators = declRefs(e, dd.Enumerators)
	case *native.EnumConstantDecl:
		rec.Value = dd.Value
	case *native.ObjCInterfaceDecl:
		rec.Super = dd.Super
		rec.Forward = dd.Forward
		rec.Protocols = dd.Protocols
		rec.Fields = declRefs(e, dd.Ivars)
		rec.Methods = declRefs(e, dd.Methods)
	case *native.ObjCCategoryDecl:
		rec.Category = dd.Category
		rec.Methods = declRefs(e, dd.Methods)
	case *native.ObjCProtocolDecl:
		rec.Methods = declRefs(e, dd.Methods)
	case *native.ObjCMethodDecl:
		rec.Type = e.typ(dd.Result)
		rec.Params = declRefs(e, dd.Params)
		rec.Variadic = dd.Variadic
		rec.ClassMethod = dd.ClassMethod
	case *native.TemplateDecl:
		rec.TemplateKind = dd.TemplateKind
		rec.Specializations = declRefs(e, dd.Specializations)
	case *native.OtherDecl:
		rec.KindName = dd.KindName
	}
	return rec
}

func (e *encoder) record(rec *DeclRecord, rd *native.RecordDecl) {
	rec.Tag = rd.Tag.String()
	rec.CXX = rd.CXX
	rec.Definition = rd.IsDefinition
	if rd.Def != nil {
		rec.Def = e.decl(rd.Def)
	}
	rec.Embedded = rd.EmbeddedInDeclarator
	rec.Dependent = rd.Dependent
	rec.Fields = declRefs(e, rd.Fields)
	rec.Methods = declRefs(e, rd.Methods)
	rec.Children = declRefs(e, rd.Decls)
	for _, b := range rd.Bases {
		rec.Bases = append(rec.Bases, BaseRecord{Type: e.typ(b.Type), Virtual: b.Virtual, Access: accessName(b.Access)})
	}
	if rd.Specialization != nil {
		rec.Spec = &SpecRecord{
			Kind: specKindNames[rd.Specialization.Kind],
			Args: e.args(rd.Specialization.Args),
		}
	}
	if rd.Layout != nil {
		lay := &LayoutRecord{
			Size:         rd.Layout.Size,
			Align:        rd.Layout.Align,
			FieldOffsets: rd.Layout.FieldOffsets,
		}
		// Bases in declaration order keep the output deterministic.
		for _, b := range rd.Bases {
			bd := b.Decl()
			if bd == nil {
				continue
			}
			if off, ok := rd.Layout.BaseOffsets[bd]; ok {
				lay.Bases = append(lay.Bases, BaseOffsetRecord{Decl: e.decl(bd), Offset: off})
			}
			if off, ok := rd.Layout.VBaseOffsets[bd]; ok {
				lay.Bases = append(lay.Bases, BaseOffsetRecord{Decl: e.decl(bd), Offset: off, Virtual: true})
			}
		}
		rec.Layout = lay
	}
}

func (e *encoder) function(rec *DeclRecord, fd *native.FunctionDecl) {
	rec.Type = e.typ(fd.Result)
	rec.Params = declRefs(e, fd.Params)
	rec.Variadic = fd.Variadic
	rec.Inline = fd.InlineSpecified
	rec.Storage = storageNames[fd.Storage]
	rec.TemplateArgs = e.args(fd.TemplateArgs)
}

func (e *encoder) args(args []native.TemplateArg) []ArgRecord {
	if len(args) == 0 {
		return nil
	}
	out := make([]ArgRecord, 0, len(args))
	for _, a := range args {
		out = append(out, ArgRecord{
			Kind:  argKindNames[a.Kind],
			Type:  e.typ(a.Type),
			Value: a.Value,
			Text:  a.Text,
			Pack:  e.args(a.Pack),
		})
	}
	return out
}

func valueRecord(v *native.Value) *ValueRecord {
	if v == nil {
		return nil
	}
	rec := &ValueRecord{
		Kind:      v.Kind.String(),
		Int:       v.Int,
		Uint:      v.Uint,
		Signed:    v.Signed,
		Float:     v.Float,
		FloatBits: v.FloatBits,
	}
	if v.Str != nil {
		rec.CharWidth = v.Str.CharWidth
		rec.Bytes = v.Str.Bytes
	}
	return rec
}

func (e *encoder) typ(t native.Type) Ref {
	if t == nil {
		return 0
	}
	if ref, ok := e.types[t]; ok {
		return ref
	}
	e.snap.Types = append(e.snap.Types, TypeRecord{})
	ref := refOf(len(e.snap.Types))
	e.types[t] = ref
	rec := e.typeRecord(t)
	e.snap.Types[ref-1] = rec
	return ref
}

func (e *encoder) typeRecord(t native.Type) TypeRecord {
	rec := TypeRecord{Class: t.ClassName()}
	switch tt := t.(type) {
	case *native.BuiltinType:
		rec.Builtin = tt.Kind.KindName()
	case *native.TypedefType:
		if tt.Decl != nil {
			rec.Decl = e.decl(tt.Decl)
		}
	case *native.SubstTemplateTypeParmType:
		rec.Param = tt.Param
		rec.Inner = e.typ(tt.Replacement)
	case *native.ElaboratedType:
		rec.Keyword = tt.Keyword
		rec.Inner = e.typ(tt.Named)
	case *native.SugarType:
		rec.Inner = e.typ(tt.Under)
	case *native.PointerType:
		rec.Inner = e.typ(tt.Pointee)
	case *native.ReferenceType:
		rec.Inner = e.typ(tt.Pointee)
	case *native.FunctionType:
		rec.Inner = e.typ(tt.Result)
		rec.Variadic = tt.Variadic
		for _, p := range tt.Params {
			rec.Params = append(rec.Params, e.typ(p))
		}
	case *native.RecordType:
		if tt.Decl != nil {
			rec.Decl = e.decl(tt.Decl)
		}
	case *native.EnumType:
		if tt.Decl != nil {
			rec.Decl = e.decl(tt.Decl)
		}
	case *native.TemplateSpecializationType:
		rec.Template = tt.Template
		rec.Args = e.args(tt.Args)
		rec.Inner = e.typ(tt.Aliased)
	case *native.ConstantArrayType:
		rec.Inner = e.typ(tt.Elem)
		rec.Size = tt.Size
	case *native.IncompleteArrayType:
		rec.Inner = e.typ(tt.Elem)
	case *native.ObjCObjectPointerType:
		rec.Inner = e.typ(tt.Pointee)
	case *native.ObjCObjectType:
		if tt.Interface != nil {
			rec.Decl = e.decl(tt.Interface)
		}
	case *native.ComplexType:
		rec.Inner = e.typ(tt.Elem)
	}
	return rec
}
