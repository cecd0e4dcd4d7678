package irgen

import (
	"errors"
	"strings"

	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/layout"
	"ffigen/internal/native"
)

// MakeType reduces a native type to IR. It never fails: types it cannot
// express become a SimpleType placeholder and a TypeUnsupported warning.
//
// The order of the checks matters; sugar is peeled one layer at a time so
// that typedef names survive while canonical properties (void, builtin,
// pointer, function) are tested on the desugared type.
func (h *Harvester) MakeType(t native.Type) ir.Type {
	if t == nil {
		return h.placeholder(nil, "<unknown-type:None>")
	}

	if native.IsVoid(t) {
		return &ir.SimpleType{TypeBase: ir.TypeBase{Orig: t}, Name: ":void"}
	}

	if td, ok := t.(*native.TypedefType); ok && td.Decl != nil {
		return h.typedefType(td)
	}

	if st, ok := t.(*native.SubstTemplateTypeParmType); ok && st.Replacement != nil {
		return h.MakeType(st.Replacement)
	}

	if _, ok := native.AsBuiltin(t); ok {
		bt, direct := t.(*native.BuiltinType)
		if !direct {
			return h.placeholder(t, "<unknown-builtin-type:"+t.ClassName()+">")
		}
		return h.basicType(bt)
	}

	if et, ok := t.(*native.ElaboratedType); ok && et.Named != nil {
		return h.MakeType(et.Named)
	}

	if native.IsFunctionPointer(t) {
		return &ir.SimpleType{TypeBase: ir.TypeBase{Orig: t}, Name: ":function-pointer"}
	}
	if native.IsFunction(t) {
		return &ir.SimpleType{TypeBase: ir.TypeBase{Orig: t}, Name: ":function"}
	}

	if p, ok := native.AsPointer(t); ok {
		return &ir.PointerType{TypeBase: ir.TypeBase{Orig: t}, Pointee: h.MakeType(p.Pointee)}
	}
	if r, ok := native.AsReference(t); ok {
		return &ir.ReferenceType{TypeBase: ir.TypeBase{Orig: t}, Pointee: h.MakeType(r.Pointee)}
	}

	switch tt := t.(type) {
	case *native.RecordType:
		return h.recordType(tt)
	case *native.TemplateSpecializationType:
		if tt.Aliased != nil {
			return h.MakeType(tt.Aliased)
		}
	case *native.EnumType:
		if tt.Decl != nil {
			return h.enumType(tt)
		}
	case *native.ConstantArrayType:
		return &ir.ArrayType{TypeBase: ir.TypeBase{Orig: t}, Elem: h.MakeType(tt.Elem), Size: tt.Size}
	case *native.IncompleteArrayType:
		return &ir.PointerType{TypeBase: ir.TypeBase{Orig: t}, Pointee: h.MakeType(tt.Elem)}
	case *native.ObjCObjectPointerType:
		return &ir.PointerType{TypeBase: ir.TypeBase{Orig: t}, Pointee: h.MakeType(tt.Pointee)}
	case *native.ObjCObjectType:
		if tt.Interface != nil {
			return &ir.SimpleType{TypeBase: ir.TypeBase{Orig: t}, Name: tt.Interface.Name()}
		}
	case *native.ComplexType:
		return &ir.ComplexType{TypeBase: ir.TypeBase{Orig: t}, Elem: h.MakeType(tt.Elem)}
	}

	return h.placeholder(t, "<unknown-type:"+t.ClassName()+">")
}

func (h *Harvester) placeholder(t native.Type, name string) *ir.SimpleType {
	diag.ReportWarning(h.reporter, diag.TypeUnsupported, h.currentPos(), "unsupported type "+name).Emit()
	return &ir.SimpleType{TypeBase: ir.TypeBase{Orig: t}, Name: name}
}

func (h *Harvester) typedefType(td *native.TypedefType) *ir.TypedefType {
	out := &ir.TypedefType{
		TypeBase: ir.TypeBase{Orig: td},
		Name:     td.Decl.Name(),
		NS:       h.reg.AddDecl(scopeOf(td.Decl)),
	}
	// The underlying type is informational; whatever it names is emitted
	// by the typedef declaration itself.
	saved := h.refOnly
	h.refOnly = true
	out.Under = h.MakeType(td.Decl.Underlying)
	h.refOnly = saved
	return out
}

// BuiltinName is the IR name of a builtin: its C spelling with a leading
// colon and dashes for spaces.
func BuiltinName(k native.BuiltinKind) string {
	return ":" + strings.ReplaceAll(k.Name(), " ", "-")
}

func (h *Harvester) basicType(bt *native.BuiltinType) *ir.BasicType {
	out := &ir.BasicType{TypeBase: ir.TypeBase{Orig: bt}, Name: BuiltinName(bt.Kind), Kind: bt.Kind}
	size, align := h.sizeAlign(bt)
	out.BitSize = size
	out.BitAlignment = align
	return out
}

// sizeAlign returns the size and alignment of t in bits, or zeros when t
// has no layout. Failures other than incomplete or dependent types are
// reported.
func (h *Harvester) sizeAlign(t native.Type) (uint64, uint64) {
	l, err := h.layout.LayoutOf(t)
	if err != nil {
		h.layoutWarning(err)
		return 0, 0
	}
	return l.Size * 8, l.Align * 8
}

// layoutWarning reports err unless it only says the type has no layout
// yet.
func (h *Harvester) layoutWarning(err error) {
	var le *layout.LayoutError
	if errors.As(err, &le) && (le.Kind == layout.LayoutErrIncomplete || le.Kind == layout.LayoutErrDependent) {
		return
	}
	diag.ReportWarning(h.reporter, diag.TypeLayout, h.currentPos(), err.Error()).Emit()
}

func (h *Harvester) recordType(rt *native.RecordType) ir.Type {
	if rt.Decl == nil || rt.Decl.IsInvalid() {
		return h.placeholder(rt, "<invalid-type:"+rt.ClassName()+">")
	}
	rd := definitionOf(rt.Decl)
	id := h.reg.AddDecl(rd)
	isSpec := rd.IsSpecialization()

	inlineCandidate := (rd.IsDefinition && rd.EmbeddedInDeclarator) || !rd.IsDefinition
	if inlineCandidate && !isSpec && !h.refOnly && !h.reg.IsCurDecl(rd) && !h.reg.Emitted(rd) {
		nd, err := h.MakeDecl(rd, false)
		if err == nil {
			h.reg.MarkEmitted(rd)
			return &ir.DeclType{TypeBase: ir.TypeBase{Orig: rt}, Decl: nd}
		}
		// Not expressible in place (e.g. a forward-declared C++ class):
		// fall back to a named reference.
	}

	if isSpec && !h.reg.Emitted(rd) {
		h.queueSpecialization(rd)
	}
	out := &ir.RecordType{
		TypeBase: ir.TypeBase{Orig: rt, ID: id},
		Name:     rd.Name(),
		Union:    rd.IsUnion(),
		Class:    rd.IsClass(),
	}
	if isSpec {
		out.TemplateArgs = h.templateArgs(rd.Specialization.Args)
	}
	return out
}

func (h *Harvester) enumType(et *native.EnumType) ir.Type {
	ed := et.Decl
	if ed.IsDefinition && !h.refOnly && !h.reg.IsCurDecl(ed) && !h.reg.Emitted(ed) {
		nd, err := h.MakeDecl(ed, false)
		if err == nil {
			h.reg.MarkEmitted(ed)
			return &ir.DeclType{TypeBase: ir.TypeBase{Orig: et}, Decl: nd}
		}
	}
	out := &ir.EnumType{TypeBase: ir.TypeBase{Orig: et}, Name: ed.Name()}
	if ed.Name() == "" {
		out.ID = h.reg.DeclID(ed)
	}
	return out
}

// templateArgs converts specialization arguments. Packs are flattened.
func (h *Harvester) templateArgs(args []native.TemplateArg) []ir.TemplateArg {
	if len(args) == 0 {
		return nil
	}
	out := make([]ir.TemplateArg, 0, len(args))
	for _, a := range args {
		switch a.Kind {
		case native.ArgType:
			out = append(out, ir.TemplateArg{Type: h.MakeType(a.Type)})
		case native.ArgPack:
			out = append(out, h.templateArgs(a.Pack)...)
		default:
			out = append(out, ir.TemplateArg{Value: a.String()})
		}
	}
	return out
}
