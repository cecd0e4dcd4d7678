package irgen

import (
	"fmt"
	"strings"

	"ffigen/internal/ir"
	"ffigen/internal/native"
)

// macroPrefix marks variables the frontend synthesized to evaluate object
// like macros.
const macroPrefix = "__c2ffi_"

// MakeDecl builds the IR declaration for d. toplevel is false for records
// and enums synthesized in place of a type reference.
//
// Only invalid C and C++ records fail, with an *InvalidDeclError; kinds
// without a mapping become ir.UnhandledDecl.
func (h *Harvester) MakeDecl(d native.Decl, toplevel bool) (ir.Decl, error) {
	if err := checkDecl(d, toplevel); err != nil {
		return nil, err
	}
	h.reg.Begin(d)
	defer h.reg.End(d)

	// IDs follow visitation order: take ours before reducing members.
	var id uint32
	if registered(d) {
		id = h.reg.AddDecl(d)
	}
	out := h.makeDecl(d)
	b := out.Base()
	b.Orig = d
	if b.Location == "" {
		b.Location = h.location(d.Pos())
	}
	b.NS = h.reg.AddDecl(scopeOf(d))
	b.ID = id
	return out, nil
}

// checkDecl rejects records that cannot be written: anonymous top-level
// records and C++ records without a usable definition.
func checkDecl(d native.Decl, toplevel bool) error {
	rd, ok := d.(*native.RecordDecl)
	if !ok {
		return nil
	}
	if rd.CXX {
		def := rd.Definition()
		switch {
		case def == nil:
			return &InvalidDeclError{Kind: InvalidNoDefinition, Decl: rd}
		case def.IsInvalid():
			return &InvalidDeclError{Kind: InvalidDefinition, Decl: rd}
		case isInstantiationTwin(rd):
			return &InvalidDeclError{Kind: InvalidInternalTemplate, Decl: rd}
		}
	}
	if toplevel && rd.Name() == "" {
		return &InvalidDeclError{Kind: InvalidAnonymousRecord, Decl: rd}
	}
	return nil
}

// registered reports whether declarations of d's kind carry a registry ID.
func registered(d native.Decl) bool {
	switch d.(type) {
	case *native.RecordDecl, *native.EnumDecl, *native.NamespaceDecl:
		return true
	}
	return false
}

func (h *Harvester) makeDecl(d native.Decl) ir.Decl {
	switch dd := d.(type) {
	case *native.VarDecl:
		return h.varDecl(dd)
	case *native.TypedefDecl:
		return &ir.TypedefDecl{
			DeclBase: ir.DeclBase{Name: dd.Name()},
			Type:     h.MakeType(dd.Underlying),
		}
	case *native.MethodDecl:
		// Methods reached outside their class (out-of-line definitions)
		// are written as plain functions.
		return h.functionDecl(&dd.FunctionDecl)
	case *native.FunctionDecl:
		return h.functionDecl(dd)
	case *native.RecordDecl:
		if dd.CXX {
			return h.cxxRecordDecl(dd)
		}
		return h.recordDecl(dd)
	case *native.EnumDecl:
		return h.enumDecl(dd)
	case *native.NamespaceDecl:
		return &ir.CXXNamespaceDecl{DeclBase: ir.DeclBase{Name: dd.Name()}}
	case *native.ObjCInterfaceDecl:
		return h.objcInterfaceDecl(dd)
	case *native.ObjCCategoryDecl:
		return &ir.ObjCCategoryDecl{
			DeclBase:  ir.DeclBase{Name: dd.Name()},
			Category:  dd.Category,
			Functions: h.objcMethods(dd.Methods),
		}
	case *native.ObjCProtocolDecl:
		return &ir.ObjCProtocolDecl{
			DeclBase:  ir.DeclBase{Name: dd.Name()},
			Functions: h.objcMethods(dd.Methods),
		}
	case *native.ObjCMethodDecl:
		return h.objcMethod(dd)
	}
	return &ir.UnhandledDecl{
		DeclBase: ir.DeclBase{Name: d.DisplayName()},
		Kind:     native.KindName(d),
	}
}

func (h *Harvester) varDecl(vd *native.VarDecl) *ir.VarDecl {
	out := &ir.VarDecl{
		DeclBase: ir.DeclBase{Name: vd.DisplayName()},
		Type:     h.MakeType(vd.Type),
		Extern:   vd.Extern,
	}
	if name, ok := strings.CutPrefix(out.Name, macroPrefix); ok {
		out.Name = name
		if pos, found := h.tu.Macros[name]; found {
			out.Location = h.location(pos)
		}
	}
	out.Value, out.IsString = h.initValue(vd)
	return out
}

func (h *Harvester) functionDecl(fd *native.FunctionDecl) *ir.FunctionDecl {
	out := &ir.FunctionDecl{
		DeclBase:     ir.DeclBase{Name: fd.DisplayName()},
		Return:       h.MakeType(fd.Result),
		Params:       h.params(fd.Params),
		Variadic:     fd.Variadic,
		Inline:       fd.InlineSpecified,
		Linkage:      h.linkage(fd),
		StorageClass: storageName(fd.Storage),
		TemplateArgs: h.templateArgs(fd.TemplateArgs),
	}
	return out
}

func (h *Harvester) params(ps []*native.ParamDecl) []ir.Field {
	if len(ps) == 0 {
		return nil
	}
	out := make([]ir.Field, 0, len(ps))
	for _, p := range ps {
		out = append(out, ir.Field{Name: p.Name(), Type: h.MakeType(p.Type)})
	}
	return out
}

// linkage is C inside extern "C" blocks and in C or Objective-C units;
// otherwise it follows the C++ standard of the unit.
func (h *Harvester) linkage(d native.Decl) ir.Linkage {
	if lang, ok := native.EnclosingLinkage(d); ok && lang == native.LanguageC {
		return ir.LinkC
	}
	switch h.tu.Lang {
	case native.LangCXX98, native.LangObjCXX:
		return ir.LinkCXX
	case native.LangCXX11:
		return ir.LinkCXX11
	case native.LangCXX14, native.LangCXX17, native.LangCXX20:
		return ir.LinkCXX14
	}
	return ir.LinkC
}

func storageName(sc native.StorageClass) string {
	switch sc {
	case native.StorageNone:
		return "none"
	case native.StorageExtern:
		return "extern"
	case native.StorageStatic:
		return "static"
	case native.StoragePrivateExtern:
		return "private_extern"
	}
	return "unknown"
}

func (h *Harvester) recordDecl(rd *native.RecordDecl) *ir.RecordDecl {
	def := definitionOf(rd)
	out := &ir.RecordDecl{
		DeclBase: ir.DeclBase{Name: rd.Name()},
		Union:    rd.IsUnion(),
	}
	if def.IsDefinition && !def.Dependent {
		out.BitSize, out.BitAlignment = h.sizeAlign(&native.RecordType{Decl: def})
		out.Fields = h.fields(def)
	}
	return out
}

// fields reduces the exposed fields of def. Layout facts come from the
// declared field type; the offset from the record layout.
func (h *Harvester) fields(def *native.RecordDecl) []ir.Field {
	var out []ir.Field
	for i, f := range def.Fields {
		if !f.Access().IsExposed() {
			continue
		}
		t := h.MakeType(f.Type)
		size, align := h.sizeAlign(f.Type)
		var offset uint64
		if !def.Dependent {
			if off, err := h.layout.FieldOffset(def, i); err == nil {
				offset = off
			}
		}
		if f.BitField {
			t = &ir.BitfieldType{Under: t, Width: f.BitWidth}
		}
		t.Base().SetLayout(offset, size, align)
		out = append(out, ir.Field{Name: f.Name(), Type: t})
	}
	return out
}

// cxxRecordDecl expects a record that passed checkDecl.
func (h *Harvester) cxxRecordDecl(rd *native.RecordDecl) *ir.CXXRecordDecl {
	def := rd.Definition()
	rec := h.recordDecl(rd)
	out := &ir.CXXRecordDecl{
		RecordDecl: *rec,
		Class:      rd.IsClass(),
		Abstract:   def.IsAbstract(),
	}
	for _, m := range def.Methods {
		if !m.Access().IsExposed() {
			continue
		}
		out.Methods = append(out.Methods, h.cxxMethod(m))
	}
	if !def.Dependent {
		out.Parents = h.parents(def)
	}
	if def.IsSpecialization() {
		out.TemplateArgs = h.templateArgs(def.Specialization.Args)
	}
	return out
}

// isInstantiationTwin reports whether rd is the class name the frontend
// injects into an explicitly instantiated specialization.
func isInstantiationTwin(rd *native.RecordDecl) bool {
	parent, ok := rd.Parent().(*native.RecordDecl)
	if !ok || parent.Specialization == nil {
		return false
	}
	return parent.Name() == rd.Name() &&
		parent.Specialization.Kind == native.SpecExplicitInstantiationDefinition
}

func (h *Harvester) cxxMethod(m *native.MethodDecl) *ir.CXXFunctionDecl {
	fn := h.functionDecl(&m.FunctionDecl)
	fn.Orig = m
	fn.Location = h.location(m.Pos())
	fn.NS = h.reg.AddDecl(scopeOf(m))
	return &ir.CXXFunctionDecl{
		FunctionDecl: *fn,
		Static:       m.Static,
		Virtual:      m.Virtual,
		Const:        m.Const,
		Pure:         m.Pure,
		Ctor:         m.Ctor,
		Dtor:         m.Dtor,
	}
}

func (h *Harvester) parents(def *native.RecordDecl) []ir.Parent {
	var out []ir.Parent
	for _, b := range def.Bases {
		base := b.Decl()
		if base == nil {
			continue
		}
		p := ir.Parent{
			Name:    base.Name(),
			Access:  baseAccess(b.Access),
			Virtual: b.Virtual,
		}
		var err error
		if b.Virtual {
			p.Offset, err = h.layout.VBaseOffset(def, base)
		} else {
			p.Offset, err = h.layout.BaseOffset(def, base)
		}
		if err != nil {
			h.layoutWarning(fmt.Errorf("base %s of %s: %w", p.Name, def.Name(), err))
		}
		out = append(out, p)
	}
	return out
}

func baseAccess(a native.AccessSpec) ir.Access {
	switch a {
	case native.AccessProtected:
		return ir.AccessProtected
	case native.AccessPrivate:
		return ir.AccessPrivate
	}
	return ir.AccessPublic
}

func (h *Harvester) enumDecl(ed *native.EnumDecl) *ir.EnumDecl {
	out := &ir.EnumDecl{DeclBase: ir.DeclBase{Name: ed.Name()}}
	for _, c := range ed.Enumerators {
		out.Fields = append(out.Fields, ir.EnumField{Name: c.Name(), Value: c.Value})
	}
	return out
}

func (h *Harvester) objcInterfaceDecl(d *native.ObjCInterfaceDecl) *ir.ObjCInterfaceDecl {
	out := &ir.ObjCInterfaceDecl{
		DeclBase:  ir.DeclBase{Name: d.Name()},
		Super:     d.Super,
		Forward:   d.Forward,
		Protocols: append([]string(nil), d.Protocols...),
		Functions: h.objcMethods(d.Methods),
	}
	for _, iv := range d.Ivars {
		if !iv.Access().IsExposed() {
			continue
		}
		t := h.MakeType(iv.Type)
		if iv.BitField {
			t = &ir.BitfieldType{Under: t, Width: iv.BitWidth}
		}
		out.Fields = append(out.Fields, ir.Field{Name: iv.Name(), Type: t})
	}
	return out
}

func (h *Harvester) objcMethods(ms []*native.ObjCMethodDecl) []*ir.FunctionDecl {
	if len(ms) == 0 {
		return nil
	}
	out := make([]*ir.FunctionDecl, 0, len(ms))
	for _, m := range ms {
		out = append(out, h.objcMethod(m))
	}
	return out
}

func (h *Harvester) objcMethod(m *native.ObjCMethodDecl) *ir.FunctionDecl {
	return &ir.FunctionDecl{
		DeclBase: ir.DeclBase{
			Name:     m.DisplayName(),
			Location: h.location(m.Pos()),
			Orig:     m,
		},
		Return:       h.MakeType(m.Result),
		Params:       h.params(m.Params),
		Variadic:     m.Variadic,
		ObjCMethod:   true,
		ClassMethod:  m.ClassMethod,
		Linkage:      ir.LinkC,
		StorageClass: "none",
	}
}
