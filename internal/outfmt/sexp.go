package outfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ffigen/internal/ir"
)

// SexpDriver writes one S-expression form per declaration:
//
//	(function "puts" (("s" (:pointer :char))) :int)
type SexpDriver struct {
	out   *sink
	depth int
	val   string
}

// NewSexp returns an S-expression driver writing to w.
func NewSexp(w io.Writer) *SexpDriver {
	return &SexpDriver{out: newSink(w)}
}

func (d *SexpDriver) WriteHeader() {}
func (d *SexpDriver) WriteNamespace(ns string) {
	d.out.printf("(in-package :%s)\n\n", ns)
}
func (d *SexpDriver) WriteBetween() {}
func (d *SexpDriver) WriteFooter()  {}
func (d *SexpDriver) Close() error  { return d.out.flush() }

func (d *SexpDriver) typ(t ir.Type) string {
	if t == nil {
		return ":void"
	}
	d.depth++
	ir.WriteType(d, t)
	d.depth--
	return d.val
}

func (d *SexpDriver) decl(x ir.Decl) string {
	d.depth++
	ir.WriteDecl(d, x)
	d.depth--
	return d.val
}

func (d *SexpDriver) set(form string) {
	if d.depth > 0 {
		d.val = form
		return
	}
	d.out.WriteString(form)
	d.out.WriteString("\n")
}

func quote(s string) string { return strconv.Quote(s) }

func form(parts ...string) string {
	return "(" + strings.Join(parts, " ") + ")"
}

func (d *SexpDriver) WriteSimpleType(t *ir.SimpleType)   { d.set(t.Name) }
func (d *SexpDriver) WriteTypedefType(t *ir.TypedefType) { d.set(quote(t.Name)) }
func (d *SexpDriver) WriteBasicType(t *ir.BasicType)     { d.set(t.Name) }

func (d *SexpDriver) WriteBitfieldType(t *ir.BitfieldType) {
	d.set(form(":bitfield", d.typ(t.Under), strconv.FormatUint(uint64(t.Width), 10)))
}

func (d *SexpDriver) WritePointerType(t *ir.PointerType) {
	d.set(form(":pointer", d.typ(t.Pointee)))
}

func (d *SexpDriver) WriteReferenceType(t *ir.ReferenceType) {
	d.set(form(":reference", d.typ(t.Pointee)))
}

func (d *SexpDriver) WriteArrayType(t *ir.ArrayType) {
	d.set(form(":array", d.typ(t.Elem), strconv.FormatUint(t.Size, 10)))
}

func (d *SexpDriver) WriteRecordType(t *ir.RecordType) {
	parts := []string{":" + recordTag(t.Union, t.Class), quote(t.Name)}
	if len(t.TemplateArgs) > 0 {
		parts = append(parts, d.args(t.TemplateArgs))
	}
	d.set(form(parts...))
}

func (d *SexpDriver) WriteEnumType(t *ir.EnumType) {
	d.set(form(":enum", quote(t.Name)))
}

func (d *SexpDriver) WriteComplexType(t *ir.ComplexType) {
	d.set(form(":complex", d.typ(t.Elem)))
}

func (d *SexpDriver) WriteDeclType(t *ir.DeclType) { d.set(d.decl(t.Decl)) }

func (d *SexpDriver) args(args []ir.TemplateArg) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a.Type != nil {
			parts = append(parts, d.typ(a.Type))
		} else {
			parts = append(parts, quote(a.Value))
		}
	}
	return form(parts...)
}

func (d *SexpDriver) fields(fs []ir.Field) string {
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, form(quote(f.Name), d.typ(f.Type)))
	}
	return form(parts...)
}

func (d *SexpDriver) WriteUnhandledDecl(x *ir.UnhandledDecl) {
	d.set(form("unhandled", quote(x.Name), quote(x.Kind)))
}

func (d *SexpDriver) WriteVarDecl(x *ir.VarDecl) {
	if x.Extern {
		d.set(form("extern", quote(x.Name), d.typ(x.Type)))
		return
	}
	value := x.Value
	if x.IsString {
		value = quote(value)
	} else if value == "" {
		value = "nil"
	}
	d.set(form("const", quote(x.Name), d.typ(x.Type), value))
}

func (d *SexpDriver) WriteTypedefDecl(x *ir.TypedefDecl) {
	d.set(form("typedef", quote(x.Name), d.typ(x.Type)))
}

func (d *SexpDriver) function(tag string, x *ir.FunctionDecl) string {
	parts := []string{tag, quote(x.Name), d.fields(x.Params), d.typ(x.Return)}
	if x.Variadic {
		parts = append(parts, ":variadic")
	}
	if x.ClassMethod {
		parts = append(parts, ":class")
	}
	return form(parts...)
}

func (d *SexpDriver) WriteFunctionDecl(x *ir.FunctionDecl) {
	d.set(d.function("function", x))
}

func (d *SexpDriver) record(tag string, x *ir.RecordDecl) []string {
	parts := []string{tag, quote(x.Name)}
	for _, f := range x.Fields {
		parts = append(parts, form(quote(f.Name), d.typ(f.Type)))
	}
	return parts
}

func (d *SexpDriver) WriteRecordDecl(x *ir.RecordDecl) {
	d.set(form(d.record(recordTag(x.Union, false), x)...))
}

func (d *SexpDriver) WriteEnumDecl(x *ir.EnumDecl) {
	parts := make([]string, 0, len(x.Fields))
	for _, f := range x.Fields {
		parts = append(parts, form(":"+f.Name, strconv.FormatInt(f.Value, 10)))
	}
	d.set(form("enum", quote(x.Name), form(parts...)))
}

func (d *SexpDriver) WriteCXXRecordDecl(x *ir.CXXRecordDecl) {
	parts := d.record(recordTag(x.Union, x.Class), &x.RecordDecl)
	for _, p := range x.Parents {
		parts = append(parts, fmt.Sprintf("(:parent %s :%s %d%s)", quote(p.Name), p.Access, p.Offset, virtualSuffix(p.Virtual)))
	}
	for _, m := range x.Methods {
		parts = append(parts, d.decl(m))
	}
	d.set(form(parts...))
}

func virtualSuffix(v bool) string {
	if v {
		return " :virtual"
	}
	return ""
}

func (d *SexpDriver) WriteCXXFunctionDecl(x *ir.CXXFunctionDecl) {
	f := d.function("method", &x.FunctionDecl)
	var flags []string
	for _, fl := range []struct {
		set  bool
		name string
	}{{x.Static, ":static"}, {x.Virtual, ":virtual"}, {x.Const, ":const"}, {x.Pure, ":pure"}, {x.Ctor, ":constructor"}, {x.Dtor, ":destructor"}} {
		if fl.set {
			flags = append(flags, fl.name)
		}
	}
	if len(flags) > 0 {
		f = strings.TrimSuffix(f, ")") + " " + strings.Join(flags, " ") + ")"
	}
	d.set(f)
}

func (d *SexpDriver) WriteCXXNamespaceDecl(x *ir.CXXNamespaceDecl) {
	d.set(form("namespace", quote(x.Name)))
}

func (d *SexpDriver) methods(fs []*ir.FunctionDecl) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, d.function("method", f))
	}
	return out
}

func (d *SexpDriver) WriteObjCInterfaceDecl(x *ir.ObjCInterfaceDecl) {
	parts := []string{"objc-interface", quote(x.Name), quote(x.Super), d.fields(x.Fields)}
	d.set(form(append(parts, d.methods(x.Functions)...)...))
}

func (d *SexpDriver) WriteObjCCategoryDecl(x *ir.ObjCCategoryDecl) {
	parts := []string{"objc-category", quote(x.Name), quote(x.Category)}
	d.set(form(append(parts, d.methods(x.Functions)...)...))
}

func (d *SexpDriver) WriteObjCProtocolDecl(x *ir.ObjCProtocolDecl) {
	parts := []string{"objc-protocol", quote(x.Name)}
	d.set(form(append(parts, d.methods(x.Functions)...)...))
}
