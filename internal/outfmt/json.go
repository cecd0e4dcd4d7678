package outfmt

import (
	"bytes"
	"encoding/json"
	"io"

	"ffigen/internal/ir"
)

// object is a JSON object that keeps its keys in insertion order.
type object []member

type member struct {
	key   string
	value any
}

func (o object) with(key string, value any) object {
	return append(o, member{key, value})
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONDriver writes the unit as an array with one object per top-level
// declaration.
type JSONDriver struct {
	out *sink
	// depth counts nested typ and decl calls; at depth 0 a finished
	// object is a top-level declaration and goes to out.
	depth int
	val   object
}

// NewJSON returns a JSON driver writing to w.
func NewJSON(w io.Writer) *JSONDriver {
	return &JSONDriver{out: newSink(w)}
}

func (d *JSONDriver) WriteHeader()          { d.out.WriteString("[\n") }
func (d *JSONDriver) WriteNamespace(string) {}
func (d *JSONDriver) WriteBetween()         { d.out.WriteString(",\n") }
func (d *JSONDriver) WriteFooter()          { d.out.WriteString("\n]\n") }
func (d *JSONDriver) Close() error          { return d.out.flush() }

func (d *JSONDriver) typ(t ir.Type) object {
	if t == nil {
		return object{{"tag", ":void"}}
	}
	d.depth++
	ir.WriteType(d, t)
	d.depth--
	return d.val
}

func (d *JSONDriver) decl(x ir.Decl) object {
	d.depth++
	ir.WriteDecl(d, x)
	d.depth--
	return d.val
}

func (d *JSONDriver) set(o object) {
	if d.depth > 0 {
		d.val = o
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		if d.out.err == nil {
			d.out.err = err
		}
		return
	}
	d.out.WriteString(string(b))
}

func sized(o object, b *ir.TypeBase) object {
	if b.BitSize == 0 && b.BitAlignment == 0 {
		return o
	}
	return o.with("bit-size", b.BitSize).with("bit-alignment", b.BitAlignment)
}

func (d *JSONDriver) WriteSimpleType(t *ir.SimpleType) { d.set(object{{"tag", t.Name}}) }

func (d *JSONDriver) WriteTypedefType(t *ir.TypedefType) {
	d.set(object{{"tag", t.Name}})
}

func (d *JSONDriver) WriteBasicType(t *ir.BasicType) {
	d.set(sized(object{{"tag", t.Name}}, &t.TypeBase))
}

func (d *JSONDriver) WriteBitfieldType(t *ir.BitfieldType) {
	d.set(object{{"tag", ":bitfield"}, {"type", d.typ(t.Under)}, {"width", t.Width}})
}

func (d *JSONDriver) WritePointerType(t *ir.PointerType) {
	d.set(object{{"tag", ":pointer"}, {"type", d.typ(t.Pointee)}})
}

func (d *JSONDriver) WriteReferenceType(t *ir.ReferenceType) {
	d.set(object{{"tag", ":reference"}, {"type", d.typ(t.Pointee)}})
}

func (d *JSONDriver) WriteArrayType(t *ir.ArrayType) {
	d.set(object{{"tag", ":array"}, {"type", d.typ(t.Elem)}, {"size", t.Size}})
}

func recordTag(union, class bool) string {
	switch {
	case union:
		return "union"
	case class:
		return "class"
	}
	return "struct"
}

func (d *JSONDriver) args(args []ir.TemplateArg) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		if a.Type != nil {
			out = append(out, d.typ(a.Type))
			continue
		}
		out = append(out, object{{"tag", ":value"}, {"value", a.Value}})
	}
	return out
}

func (d *JSONDriver) WriteRecordType(t *ir.RecordType) {
	o := object{{"tag", ":" + recordTag(t.Union, t.Class)}, {"name", t.Name}, {"id", t.ID}}
	if len(t.TemplateArgs) > 0 {
		o = o.with("template-args", d.args(t.TemplateArgs))
	}
	d.set(o)
}

func (d *JSONDriver) WriteEnumType(t *ir.EnumType) {
	d.set(object{{"tag", ":enum"}, {"name", t.Name}, {"id", t.ID}})
}

func (d *JSONDriver) WriteComplexType(t *ir.ComplexType) {
	d.set(object{{"tag", ":complex"}, {"type", d.typ(t.Elem)}})
}

func (d *JSONDriver) WriteDeclType(t *ir.DeclType) {
	d.set(d.decl(t.Decl))
}

func head(tag string, b *ir.DeclBase) object {
	o := object{{"tag", tag}, {"name", b.Name}, {"ns", b.NS}}
	if b.ID != 0 {
		o = o.with("id", b.ID)
	}
	return o.with("location", b.Location)
}

func (d *JSONDriver) fields(tag string, fs []ir.Field) []object {
	out := make([]object, 0, len(fs))
	for _, f := range fs {
		o := object{{"tag", tag}, {"name", f.Name}}
		if tag == "field" {
			b := f.Type.Base()
			o = o.with("bit-offset", b.BitOffset).with("bit-size", b.BitSize).with("bit-alignment", b.BitAlignment)
		}
		out = append(out, o.with("type", d.typ(f.Type)))
	}
	return out
}

func (d *JSONDriver) WriteUnhandledDecl(x *ir.UnhandledDecl) {
	d.set(head("unhandled", &x.DeclBase).with("kind", x.Kind))
}

func (d *JSONDriver) WriteVarDecl(x *ir.VarDecl) {
	tag := "const"
	if x.Extern {
		tag = "extern"
	}
	o := head(tag, &x.DeclBase).with("type", d.typ(x.Type))
	if x.Value != "" || x.IsString {
		o = o.with("value", x.Value)
	}
	d.set(o)
}

func (d *JSONDriver) WriteTypedefDecl(x *ir.TypedefDecl) {
	d.set(head("typedef", &x.DeclBase).with("type", d.typ(x.Type)))
}

func (d *JSONDriver) function(tag string, x *ir.FunctionDecl) object {
	o := head(tag, &x.DeclBase).
		with("variadic", x.Variadic).
		with("inline", x.Inline).
		with("storage-class", x.StorageClass).
		with("linkage", x.Linkage.String())
	if x.ObjCMethod {
		o = o.with("class-method", x.ClassMethod)
	}
	if len(x.TemplateArgs) > 0 {
		o = o.with("template-args", d.args(x.TemplateArgs))
	}
	return o.with("parameters", d.fields("parameter", x.Params)).
		with("return-type", d.typ(x.Return))
}

func (d *JSONDriver) WriteFunctionDecl(x *ir.FunctionDecl) {
	d.set(d.function("function", x))
}

func (d *JSONDriver) record(tag string, x *ir.RecordDecl) object {
	return head(tag, &x.DeclBase).
		with("bit-size", x.BitSize).
		with("bit-alignment", x.BitAlignment).
		with("fields", d.fields("field", x.Fields))
}

func (d *JSONDriver) WriteRecordDecl(x *ir.RecordDecl) {
	d.set(d.record(recordTag(x.Union, false), x))
}

func (d *JSONDriver) WriteEnumDecl(x *ir.EnumDecl) {
	fields := make([]object, 0, len(x.Fields))
	for _, f := range x.Fields {
		fields = append(fields, object{{"tag", "field"}, {"name", f.Name}, {"value", f.Value}})
	}
	d.set(head("enum", &x.DeclBase).with("fields", fields))
}

func (d *JSONDriver) WriteCXXRecordDecl(x *ir.CXXRecordDecl) {
	o := d.record(recordTag(x.Union, x.Class), &x.RecordDecl).with("abstract", x.Abstract)
	parents := make([]object, 0, len(x.Parents))
	for _, p := range x.Parents {
		parents = append(parents, object{
			{"name", p.Name}, {"access", p.Access.String()}, {"offset", p.Offset}, {"virtual", p.Virtual},
		})
	}
	methods := make([]object, 0, len(x.Methods))
	for _, m := range x.Methods {
		methods = append(methods, d.decl(m))
	}
	o = o.with("parents", parents).with("methods", methods)
	if len(x.TemplateArgs) > 0 {
		o = o.with("template-args", d.args(x.TemplateArgs))
	}
	d.set(o)
}

func (d *JSONDriver) WriteCXXFunctionDecl(x *ir.CXXFunctionDecl) {
	o := d.function("method", &x.FunctionDecl).
		with("static", x.Static).
		with("virtual", x.Virtual).
		with("const", x.Const).
		with("pure", x.Pure)
	if x.Ctor {
		o = o.with("constructor", true)
	}
	if x.Dtor {
		o = o.with("destructor", true)
	}
	d.set(o)
}

func (d *JSONDriver) WriteCXXNamespaceDecl(x *ir.CXXNamespaceDecl) {
	d.set(head("namespace", &x.DeclBase))
}

func (d *JSONDriver) methods(fs []*ir.FunctionDecl) []object {
	out := make([]object, 0, len(fs))
	for _, f := range fs {
		out = append(out, d.function("method", f))
	}
	return out
}

func (d *JSONDriver) WriteObjCInterfaceDecl(x *ir.ObjCInterfaceDecl) {
	protocols := x.Protocols
	if protocols == nil {
		protocols = []string{}
	}
	d.set(head("@interface", &x.DeclBase).
		with("superclass", x.Super).
		with("forward", x.Forward).
		with("protocols", protocols).
		with("ivars", d.fields("field", x.Fields)).
		with("methods", d.methods(x.Functions)))
}

func (d *JSONDriver) WriteObjCCategoryDecl(x *ir.ObjCCategoryDecl) {
	d.set(head("@category", &x.DeclBase).
		with("category", x.Category).
		with("methods", d.methods(x.Functions)))
}

func (d *JSONDriver) WriteObjCProtocolDecl(x *ir.ObjCProtocolDecl) {
	d.set(head("@protocol", &x.DeclBase).with("methods", d.methods(x.Functions)))
}
