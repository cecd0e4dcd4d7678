package outfmt

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ffigen/internal/diag"
	"ffigen/internal/ir"
	"ffigen/internal/mangle"
	"ffigen/internal/native"
	"ffigen/internal/source"
)

// CLibDriver writes a C header declaring a flat C API for the unit and a
// C++ source implementing it by forwarding to the original declarations.
//
// Only functions, typedefs, records and C++ classes are written. A
// declaration whose names cannot be mangled is skipped with a diagnostic.
type CLibDriver struct {
	hdr, src  *sink
	inHeader  string
	outHeader string
	cfg       mangle.Config
	mangler   *mangle.Mangler
	reporter  diag.Reporter

	// The current declaration is built in these buffers and only copied
	// to the sinks when every name in it could be mangled.
	h, s *strings.Builder
	cur  *strings.Builder
	err  error
}

// NewCLib returns a C library driver. opts.Out receives the header and
// opts.Source the C++ source.
func NewCLib(opts Options) *CLibDriver {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	m := mangle.New(opts.Mangle)
	return &CLibDriver{
		hdr:       newSink(opts.Out),
		src:       newSink(opts.Source),
		inHeader:  opts.InHeader,
		outHeader: opts.OutHeader,
		cfg:       m.Config(),
		mangler:   m,
		reporter:  reporter,
	}
}

func (d *CLibDriver) guard() string {
	base := filepath.Base(d.inHeader)
	return d.mangler.Sanitize(strings.TrimSuffix(base, filepath.Ext(base))) + "_CIFGEN_H"
}

func (d *CLibDriver) WriteHeader() {
	guard := d.guard()
	d.hdr.printf("/*\n * This header file was generated automatically by ffigen.\n */\n")
	d.hdr.printf("#ifndef %s\n#define %s\n", guard, guard)
	d.hdr.printf("#ifdef __cplusplus\n#include %q\nextern \"C\" {\n#endif\n\n", d.inHeader)

	d.src.printf("/*\n * This source file was generated automatically by ffigen.\n */\n")
	d.src.printf("#include %q\n\n", d.outHeader)
}

func (d *CLibDriver) WriteNamespace(string) {}
func (d *CLibDriver) WriteBetween()         {}

func (d *CLibDriver) WriteFooter() {
	d.hdr.printf("#ifdef __cplusplus\n} // extern \"C\"\n#endif // __cplusplus\n")
	d.hdr.printf("#endif // %s\n", d.guard())
}

// Close flushes both outputs and returns the first error.
func (d *CLibDriver) Close() error {
	return errors.Join(d.hdr.flush(), d.src.flush())
}

// section runs fn with fresh buffers and commits them unless a name could
// not be mangled. It reports whether the section was written.
func (d *CLibDriver) section(orig native.Decl, fn func()) bool {
	d.h, d.s, d.err = &strings.Builder{}, &strings.Builder{}, nil
	defer func() { d.h, d.s, d.cur, d.err = nil, nil, nil, nil }()
	fn()
	if d.err != nil {
		d.skip(orig, d.err)
		return false
	}
	d.hdr.WriteString(d.h.String())
	d.src.WriteString(d.s.String())
	return true
}

func (d *CLibDriver) skip(orig native.Decl, err error) {
	code := diag.MangleInfo
	var me *mangle.Error
	if errors.As(err, &me) {
		code = me.Kind.Code()
	}
	pos := source.Pos{}
	if orig != nil {
		pos = orig.Pos()
	}
	diag.ReportWarning(d.reporter, code, pos, "clib: skipped: "+err.Error()).Emit()
}

// ident mangles nd; a failure is remembered for the current section.
func (d *CLibDriver) ident(nd native.Decl) mangle.Identifier {
	if nd == nil {
		d.fail(fmt.Errorf("declaration without a native origin"))
		return mangle.Identifier{}
	}
	id, err := d.mangler.Identifier(nd)
	if err != nil {
		d.fail(err)
	}
	return id
}

func (d *CLibDriver) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// both writes to the header and the source buffer.
func (d *CLibDriver) both(format string, args ...any) {
	fmt.Fprintf(d.h, format, args...)
	fmt.Fprintf(d.s, format, args...)
}

func (d *CLibDriver) typeString(t ir.Type) string {
	var b strings.Builder
	saved := d.cur
	d.cur = &b
	ir.WriteType(d, t)
	d.cur = saved
	return b.String()
}

func (d *CLibDriver) WriteSimpleType(t *ir.SimpleType) {
	d.cur.WriteString(strings.TrimPrefix(t.Name, ":"))
}

func (d *CLibDriver) WriteTypedefType(t *ir.TypedefType) {
	if td, ok := t.Orig.(*native.TypedefType); ok && td.Decl != nil {
		d.cur.WriteString(d.ident(td.Decl).C)
		return
	}
	d.cur.WriteString(t.Name)
}

func (d *CLibDriver) WriteBasicType(t *ir.BasicType) {
	d.cur.WriteString(t.Kind.Name())
}

func (d *CLibDriver) WritePointerType(t *ir.PointerType) {
	d.cur.WriteString(d.typeString(t.Pointee))
	d.cur.WriteString("*")
}

func (d *CLibDriver) WriteRecordType(t *ir.RecordType) {
	if rt, ok := t.Orig.(*native.RecordType); ok && rt.Decl != nil {
		d.cur.WriteString(d.ident(rt.Decl).C)
		return
	}
	d.cur.WriteString(t.Name)
}

// Types the C API does not spell.
func (d *CLibDriver) WriteBitfieldType(*ir.BitfieldType)           {}
func (d *CLibDriver) WriteReferenceType(*ir.ReferenceType)         {}
func (d *CLibDriver) WriteArrayType(*ir.ArrayType)                 {}
func (d *CLibDriver) WriteEnumType(*ir.EnumType)                   {}
func (d *CLibDriver) WriteComplexType(*ir.ComplexType)             {}
func (d *CLibDriver) WriteDeclType(*ir.DeclType)                   {}
func (d *CLibDriver) WriteUnhandledDecl(*ir.UnhandledDecl)         {}
func (d *CLibDriver) WriteVarDecl(*ir.VarDecl)                     {}
func (d *CLibDriver) WriteEnumDecl(*ir.EnumDecl)                   {}
func (d *CLibDriver) WriteCXXNamespaceDecl(*ir.CXXNamespaceDecl)   {}
func (d *CLibDriver) WriteObjCInterfaceDecl(*ir.ObjCInterfaceDecl) {}
func (d *CLibDriver) WriteObjCCategoryDecl(*ir.ObjCCategoryDecl)   {}
func (d *CLibDriver) WriteObjCProtocolDecl(*ir.ObjCProtocolDecl)   {}

// byPointer reports parameters passed through a pointer in the C API:
// records and references, also behind typedefs.
func byPointer(t ir.Type) bool {
	switch tt := t.(type) {
	case *ir.TypedefType:
		return tt.Under != nil && byPointer(tt.Under)
	case *ir.ReferenceType, *ir.RecordType:
		return true
	}
	return false
}

func (d *CLibDriver) params(b *strings.Builder, fields []ir.Field, withTypes bool, this string) {
	b.WriteString("(")
	first := true
	if this != "" {
		if withTypes {
			b.WriteString(this + "* ")
		}
		b.WriteString(d.cfg.This)
		first = false
	}
	for _, f := range fields {
		if !first {
			b.WriteString(", ")
		}
		if withTypes {
			b.WriteString(d.typeString(f.Type))
			b.WriteString(" ")
		}
		if byPointer(f.Type) {
			b.WriteString("*")
		}
		b.WriteString(f.Name)
		first = false
	}
	b.WriteString(")")
}

// function writes a prototype and its forwarding stub. parent is the
// class of a method; ctor selects the constructor form.
func (d *CLibDriver) function(x *ir.FunctionDecl, kind string, parent *mangle.Identifier, ctor bool) {
	id := d.ident(x.Orig)
	this := ""
	if parent != nil {
		this = parent.C
	}
	d.both("// location: %s\n// %s %s\n", x.Location, kind, id.Cpp)

	var sig strings.Builder
	if ctor {
		sig.WriteString(this + "* " + this + d.cfg.Ctor)
		this = ""
	} else {
		sig.WriteString(d.typeString(x.Return) + " " + id.C)
	}
	d.params(&sig, x.Params, true, this)
	d.h.WriteString(sig.String() + ";\n\n")
	d.s.WriteString(sig.String() + " {\n  return ")

	switch {
	case ctor:
		d.s.WriteString("new " + parent.Cpp)
	case this != "":
		d.s.WriteString(d.cfg.This + "->" + id.Cpp)
	default:
		d.s.WriteString(id.Cpp)
	}
	var call strings.Builder
	d.params(&call, x.Params, false, "")
	d.s.WriteString(call.String() + ";\n}\n\n")
}

func (d *CLibDriver) WriteFunctionDecl(x *ir.FunctionDecl) {
	d.section(x.Orig, func() { d.function(x, "Function", nil, false) })
}

func (d *CLibDriver) WriteTypedefDecl(x *ir.TypedefDecl) {
	d.section(x.Orig, func() {
		id := d.ident(x.Orig)
		fmt.Fprintf(d.h, "// location: %s\n#ifdef __cplusplus\n", x.Location)
		if id.Cpp == id.C {
			d.h.WriteString("// ")
		}
		fmt.Fprintf(d.h, "typedef %s %s;\n#else\n", id.Cpp, id.C)
		// A struct target may not be declared yet in C.
		switch x.Type.(type) {
		case *ir.RecordType:
			fmt.Fprintf(d.h, "typedef struct %s%s %s;\n", d.typeString(x.Type), d.cfg.StructSuffix, id.C)
		case *ir.DeclType:
			fmt.Fprintf(d.h, "typedef struct %s%s %s;\n", id.C, d.cfg.StructSuffix, id.C)
		default:
			fmt.Fprintf(d.h, "typedef %s %s;\n", d.typeString(x.Type), id.C)
		}
		d.h.WriteString("#endif // __cplusplus\n\n")
	})
}

func (d *CLibDriver) WriteRecordDecl(x *ir.RecordDecl) {
	d.section(x.Orig, func() {
		id := d.ident(x.Orig)
		fmt.Fprintf(d.h, "// location: %s\n#ifdef __cplusplus\ntypedef %s %s;\n#else\nstruct %s;\n#endif // __cplusplus\n",
			x.Location, id.Cpp, id.C, id.C)
	})
}

func (d *CLibDriver) WriteCXXRecordDecl(x *ir.CXXRecordDecl) {
	written := d.section(x.Orig, func() {
		id := d.ident(x.Orig)
		fmt.Fprintf(d.h, "// location: %s\n#ifdef __cplusplus\ntypedef %s %s;\n#else\ntypedef struct %s%s %s;\n#endif // __cplusplus\n\n",
			x.Location, id.Cpp, id.C, id.C, d.cfg.StructSuffix, id.C)
		fmt.Fprintf(d.s, "// location: %s\n// Stubs for C++ struct: %s\n\n", x.Location, id.Cpp)
	})
	if !written {
		return
	}
	// Methods are committed one by one so that one unmangleable method
	// does not drop the class.
	for _, m := range x.Methods {
		ir.WriteDecl(d, m)
	}
	d.section(x.Orig, func() {
		id := d.ident(x.Orig)
		d.both("// Destructor of %s\n", id.Cpp)
		fmt.Fprintf(d.h, "void %s%s(%s* %s);\n\n", id.C, d.cfg.Dtor, id.C, d.cfg.This)
		fmt.Fprintf(d.s, "void %s%s(%s* %s) {\n  delete %s;\n}\n\n", id.C, d.cfg.Dtor, id.C, d.cfg.This, d.cfg.This)
	})
}

func (d *CLibDriver) WriteCXXFunctionDecl(x *ir.CXXFunctionDecl) {
	// The destructor is written with its class.
	if x.Dtor || strings.HasPrefix(x.Name, "~") {
		return
	}
	d.section(x.Orig, func() {
		if x.Orig == nil || x.Orig.Parent() == nil {
			d.fail(fmt.Errorf("method %s has no class", x.Name))
			return
		}
		parentDecl := x.Orig.Parent()
		parent := d.ident(parentDecl)
		if x.Ctor || x.Name == parentDecl.Name() {
			d.function(&x.FunctionDecl, "Constructor", &parent, true)
			return
		}
		d.function(&x.FunctionDecl, "Method", &parent, false)
	})
}
