package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"ffigen/internal/native"
	"ffigen/internal/source"
)

// Encoding is the serialization of a snapshot file.
type Encoding uint8

const (
	EncodingAuto Encoding = iota
	EncodingMsgpack
	EncodingJSON
)

func (e Encoding) String() string {
	switch e {
	case EncodingMsgpack:
		return "msgpack"
	case EncodingJSON:
		return "json"
	default:
		return "auto"
	}
}

// DetectEncoding picks the encoding from the file extension, falling back
// to sniffing the first non-space byte.
func DetectEncoding(path string, data []byte) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return EncodingJSON
	case ".astpack", ".msgpack", ".mp":
		return EncodingMsgpack
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return EncodingJSON
	}
	return EncodingMsgpack
}

// Unmarshal decodes raw bytes into a Snapshot without resolving references.
func Unmarshal(data []byte, enc Encoding) (*Snapshot, error) {
	var snap Snapshot
	switch enc {
	case EncodingJSON:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "invalid JSON", Err: err}
		}
	case EncodingMsgpack:
		if err := msgpack.Unmarshal(data, &snap); err != nil {
			return nil, &Error{Kind: ErrMalformed, Msg: "invalid msgpack", Err: err}
		}
	default:
		return nil, malformed("unknown encoding %s", enc)
	}
	return &snap, nil
}

// Marshal serializes a Snapshot.
func Marshal(snap *Snapshot, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingJSON:
		return json.MarshalIndent(snap, "", "  ")
	case EncodingMsgpack:
		var buf bytes.Buffer
		e := msgpack.NewEncoder(&buf)
		e.SetOmitEmpty(true)
		if err := e.Encode(snap); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown encoding %s", enc)
	}
}

// Options controls how snapshots are accepted.
type Options struct {
	// ProducerVersion is a semver constraint the snapshot's Version must
	// satisfy; empty means DefaultProducerConstraint.
	ProducerVersion string
}

// Load reads, checks and decodes the snapshot at path.
func Load(path string, opts Options) (*native.TranslationUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap, err := Unmarshal(data, DetectEncoding(path, data))
	if err != nil {
		return nil, withPath(err, path)
	}
	tu, err := Decode(snap, opts)
	if err != nil {
		return nil, withPath(err, path)
	}
	return tu, nil
}

func withPath(err error, path string) error {
	if se, ok := err.(*Error); ok && se.Path == "" {
		se.Path = path
	}
	return err
}

// Decode checks the producer version and builds the native graph.
func Decode(snap *Snapshot, opts Options) (*native.TranslationUnit, error) {
	if err := CheckVersion(snap.Version, opts.ProducerVersion); err != nil {
		return nil, err
	}
	d := newDecoder(snap)
	return d.unit()
}

type decoder struct {
	snap  *Snapshot
	tu    *native.TranslationUnit
	files []source.FileID
	decls []native.Decl
	types []native.Type
	// busy marks type records being resolved, to reject reference cycles.
	busy []bool
}

func newDecoder(snap *Snapshot) *decoder {
	return &decoder{
		snap:  snap,
		decls: make([]native.Decl, len(snap.Decls)+1),
		types: make([]native.Type, len(snap.Types)+1),
		busy:  make([]bool, len(snap.Types)+1),
	}
}

func (d *decoder) unit() (*native.TranslationUnit, error) {
	lang, ok := native.LangByName(d.snap.Lang)
	if !ok {
		return nil, &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown language %q", d.snap.Lang)}
	}
	d.tu = native.NewTranslationUnit(lang, d.snap.Target)
	d.tu.MainFile = d.snap.MainFile

	d.files = make([]source.FileID, len(d.snap.Files)+1)
	for i, f := range d.snap.Files {
		var flags source.FileFlags
		if f.System {
			flags |= source.FileSystem
		}
		if f.Virtual {
			flags |= source.FileVirtual
		}
		d.files[i+1] = d.tu.Files.Add(f.Path, flags)
	}

	// Allocate every declaration first so references resolve to stable
	// pointers regardless of record order.
	for i := range d.snap.Decls {
		d.decls[i+1] = allocDecl(&d.snap.Decls[i])
	}
	if err := d.checkContexts(); err != nil {
		return nil, err
	}
	for i := range d.snap.Decls {
		if err := d.fillDecl(d.decls[i+1], &d.snap.Decls[i]); err != nil {
			return nil, fmt.Errorf("decl #%d (%s %q): %w", i+1, d.snap.Decls[i].Kind, d.snap.Decls[i].Name, err)
		}
	}

	for _, ref := range d.snap.Top {
		decl, err := d.decl(ref)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			d.tu.Decls = append(d.tu.Decls, decl)
		}
	}
	for _, m := range d.snap.Macros {
		pos, err := d.pos(m.Pos)
		if err != nil {
			return nil, err
		}
		d.tu.Macros[m.Name] = pos
	}
	for _, rec := range d.snap.Diagnostics {
		sev, ok := severityByName(rec.Severity)
		if !ok {
			return nil, &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown diagnostic severity %q", rec.Severity)}
		}
		pos, err := d.pos(rec.Pos)
		if err != nil {
			return nil, err
		}
		d.tu.Diagnostics = append(d.tu.Diagnostics, native.Diagnostic{
			Severity:  sev,
			Pos:       pos,
			Message:   rec.Message,
			DeclIndex: rec.DeclIndex,
		})
	}
	return d.tu, nil
}

func allocDecl(rec *DeclRecord) native.Decl {
	kind, ok := declKindByName(rec.Kind)
	if !ok {
		return &native.OtherDecl{KindName: rec.Kind}
	}
	switch kind {
	case native.KindNamespace:
		return &native.NamespaceDecl{}
	case native.KindLinkageSpec:
		return &native.LinkageSpecDecl{}
	case native.KindRecord:
		return &native.RecordDecl{}
	case native.KindField:
		return &native.FieldDecl{}
	case native.KindFunction:
		return &native.FunctionDecl{}
	case native.KindMethod:
		return &native.MethodDecl{}
	case native.KindParam:
		return &native.ParamDecl{}
	case native.KindVar:
		return &native.VarDecl{}
	case native.KindTypedef:
		return &native.TypedefDecl{}
	case native.KindEnum:
		return &native.EnumDecl{}
	case native.KindEnumConstant:
		return &native.EnumConstantDecl{}
	case native.KindObjCInterface:
		return &native.ObjCInterfaceDecl{}
	case native.KindObjCCategory:
		return &native.ObjCCategoryDecl{}
	case native.KindObjCProtocol:
		return &native.ObjCProtocolDecl{}
	case native.KindObjCMethod:
		return &native.ObjCMethodDecl{}
	case native.KindTemplate:
		return &native.TemplateDecl{}
	default:
		return &native.OtherDecl{KindName: rec.Kind}
	}
}

func (d *decoder) pos(p PosRecord) (source.Pos, error) {
	if p.File == 0 {
		return source.Pos{}, nil
	}
	if int(p.File) >= len(d.files) {
		return source.Pos{}, malformed("file index %d out of range", p.File)
	}
	return source.Pos{File: d.files[p.File], Line: p.Line, Col: p.Col}, nil
}

func (d *decoder) decl(ref Ref) (native.Decl, error) {
	if ref == 0 {
		return nil, nil
	}
	if int(ref) >= len(d.decls) {
		return nil, malformed("decl reference %d out of range", ref)
	}
	return d.decls[ref], nil
}

func (d *decoder) declList(refs []Ref) ([]native.Decl, error) {
	out := make([]native.Decl, 0, len(refs))
	for _, ref := range refs {
		decl, err := d.decl(ref)
		if err != nil {
			return nil, err
		}
		if decl != nil {
			out = append(out, decl)
		}
	}
	return out, nil
}

// declAs resolves ref and checks that the declaration has the expected Go
// type.
func declAs[T native.Decl](d *decoder, ref Ref, what string) (T, error) {
	var zero T
	decl, err := d.decl(ref)
	if err != nil || decl == nil {
		return zero, err
	}
	t, ok := decl.(T)
	if !ok {
		return zero, malformed("reference %d is a %s, expected %s", ref, native.KindName(decl), what)
	}
	return t, nil
}

func declsAs[T native.Decl](d *decoder, refs []Ref, what string) ([]T, error) {
	out := make([]T, 0, len(refs))
	for _, ref := range refs {
		t, err := declAs[T](d, ref, what)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// checkContexts rejects parent chains that loop back on themselves; every
// declaration must reach the translation unit.
func (d *decoder) checkContexts() error {
	const (
		unseen = iota
		walking
		rooted
	)
	state := make([]uint8, len(d.snap.Decls)+1)
	for start := 1; start < len(state); start++ {
		ref := start
		var path []int
		for ref > 0 && ref < len(state) && state[ref] != rooted {
			if state[ref] == walking {
				return malformed("declaration context cycle through #%d", ref)
			}
			state[ref] = walking
			path = append(path, ref)
			ref = int(d.snap.Decls[ref-1].Parent)
		}
		for _, r := range path {
			state[r] = rooted
		}
	}
	return nil
}

func (d *decoder) fillDecl(decl native.Decl, rec *DeclRecord) error {
	base := decl.Base()
	base.Ident = rec.Name
	if rec.Display != rec.Name {
		base.Printed = rec.Display
	}
	base.Invalid = rec.Invalid
	parent, err := d.decl(rec.Parent)
	if err != nil {
		return err
	}
	base.Context = parent
	if base.Loc, err = d.pos(rec.Pos); err != nil {
		return err
	}
	access, ok := accessNames[rec.Access]
	if !ok {
		return &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown access %q", rec.Access)}
	}
	base.Visibility = access

	switch dd := decl.(type) {
	case *native.NamespaceDecl:
		dd.Inline = rec.Inline
		dd.Decls, err = d.declList(rec.Children)
	case *native.LinkageSpecDecl:
		if rec.Lang == "C++" {
			dd.Lang = native.LanguageCXX
		}
		dd.Decls, err = d.declList(rec.Children)
	case *native.RecordDecl:
		err = d.fillRecord(dd, rec)
	case *native.FieldDecl:
		dd.BitField = rec.BitField
		dd.BitWidth = rec.BitWidth
		dd.Type, err = d.typ(rec.Type)
	case *native.ParamDecl:
		dd.Type, err = d.typ(rec.Type)
	case *native.FunctionDecl:
		err = d.fillFunction(dd, rec)
	case *native.MethodDecl:
		dd.Static = rec.Static
		dd.Virtual = rec.Virtual
		dd.Const = rec.Const
		dd.Pure = rec.Pure
		dd.Ctor = rec.Ctor || rec.Kind == "CXXConstructor"
		dd.Dtor = rec.Dtor || rec.Kind == "CXXDestructor"
		err = d.fillFunction(&dd.FunctionDecl, rec)
	case *native.VarDecl:
		dd.Extern = rec.Extern
		dd.HasInit = rec.HasInit
		dd.DependentType = rec.DependentType
		if dd.Type, err = d.typ(rec.Type); err != nil {
			return err
		}
		dd.Init, err = valueOf(rec.Init)
	case *native.TypedefDecl:
		dd.Alias = rec.Alias || rec.Kind == "TypeAlias"
		dd.Underlying, err = d.typ(rec.Type)
	case *native.EnumDecl:
		dd.Scoped = rec.Scoped
		dd.IsDefinition = rec.Definition
		dd.EmbeddedInDeclarator = rec.Embedded
		if dd.Integer, err = d.typ(rec.Type); err != nil {
			return err
		}
		dd.Enumerators, err = declsAs[*native.EnumConstantDecl](d, rec.Enumerators, "enumerator")
	case *native.EnumConstantDecl:
		dd.Value = rec.Value
	case *native.ObjCInterfaceDecl:
		dd.Super = rec.Super
		dd.Forward = rec.Forward
		dd.Protocols = rec.Protocols
		if dd.Ivars, err = declsAs[*native.FieldDecl](d, rec.Fields, "ivar"); err != nil {
			return err
		}
		dd.Methods, err = declsAs[*native.ObjCMethodDecl](d, rec.Methods, "ObjC method")
	case *native.ObjCCategoryDecl:
		dd.Category = rec.Category
		dd.Methods, err = declsAs[*native.ObjCMethodDecl](d, rec.Methods, "ObjC method")
	case *native.ObjCProtocolDecl:
		dd.Methods, err = declsAs[*native.ObjCMethodDecl](d, rec.Methods, "ObjC method")
	case *native.ObjCMethodDecl:
		dd.Variadic = rec.Variadic
		dd.ClassMethod = rec.ClassMethod
		if dd.Result, err = d.typ(rec.Type); err != nil {
			return err
		}
		dd.Params, err = declsAs[*native.ParamDecl](d, rec.Params, "parameter")
	case *native.TemplateDecl:
		dd.TemplateKind = rec.TemplateKind
		if dd.TemplateKind == "" && rec.Kind != native.KindTemplate.String() {
			dd.TemplateKind = rec.Kind
		}
		dd.Specializations, err = declsAs[*native.RecordDecl](d, rec.Specializations, "record")
	case *native.OtherDecl:
		if rec.KindName != "" {
			dd.KindName = rec.KindName
		}
	}
	return err
}

func (d *decoder) fillRecord(rd *native.RecordDecl, rec *DeclRecord) error {
	tag, ok := tagNames[rec.Tag]
	if !ok {
		return &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown record tag %q", rec.Tag)}
	}
	rd.Tag = tag
	rd.CXX = rec.CXX || rec.Kind == "CXXRecord" || rec.Kind == "ClassTemplateSpecialization" ||
		rec.Kind == "ClassTemplatePartialSpecialization"
	rd.IsDefinition = rec.Definition
	rd.EmbeddedInDeclarator = rec.Embedded
	rd.Dependent = rec.Dependent || rec.Kind == "ClassTemplatePartialSpecialization"

	var err error
	if rd.Def, err = declAs[*native.RecordDecl](d, rec.Def, "record"); err != nil {
		return err
	}
	if rd.Fields, err = declsAs[*native.FieldDecl](d, rec.Fields, "field"); err != nil {
		return err
	}
	if rd.Methods, err = declsAs[*native.MethodDecl](d, rec.Methods, "method"); err != nil {
		return err
	}
	if rd.Decls, err = d.declList(rec.Children); err != nil {
		return err
	}
	for _, b := range rec.Bases {
		t, err := d.typ(b.Type)
		if err != nil {
			return err
		}
		access, ok := accessNames[b.Access]
		if !ok {
			return &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown base access %q", b.Access)}
		}
		rd.Bases = append(rd.Bases, native.BaseSpec{Type: t, Virtual: b.Virtual, Access: access})
	}
	if rec.Spec != nil {
		kind, ok := specKindByName(rec.Spec.Kind)
		if !ok {
			return &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown specialization kind %q", rec.Spec.Kind)}
		}
		args, err := d.args(rec.Spec.Args)
		if err != nil {
			return err
		}
		rd.Specialization = &native.Specialization{Args: args, Kind: kind}
	}
	if rec.Layout != nil {
		lay := &native.RecordLayout{
			Size:         rec.Layout.Size,
			Align:        rec.Layout.Align,
			FieldOffsets: rec.Layout.FieldOffsets,
		}
		for _, b := range rec.Layout.Bases {
			base, err := declAs[*native.RecordDecl](d, b.Decl, "record")
			if err != nil {
				return err
			}
			if base == nil {
				continue
			}
			m := &lay.BaseOffsets
			if b.Virtual {
				m = &lay.VBaseOffsets
			}
			if *m == nil {
				*m = make(map[*native.RecordDecl]int64)
			}
			(*m)[base] = b.Offset
		}
		rd.Layout = lay
	}
	return nil
}

func (d *decoder) fillFunction(fd *native.FunctionDecl, rec *DeclRecord) error {
	fd.Variadic = rec.Variadic
	fd.InlineSpecified = rec.Inline
	storage, ok := storageByName(rec.Storage)
	if !ok {
		return &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown storage class %q", rec.Storage)}
	}
	fd.Storage = storage
	var err error
	if fd.Result, err = d.typ(rec.Type); err != nil {
		return err
	}
	if fd.Params, err = declsAs[*native.ParamDecl](d, rec.Params, "parameter"); err != nil {
		return err
	}
	fd.TemplateArgs, err = d.args(rec.TemplateArgs)
	return err
}

func (d *decoder) args(recs []ArgRecord) ([]native.TemplateArg, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	out := make([]native.TemplateArg, 0, len(recs))
	for _, r := range recs {
		kind, ok := argKindByName(r.Kind)
		if !ok {
			return nil, &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown template argument kind %q", r.Kind)}
		}
		t, err := d.typ(r.Type)
		if err != nil {
			return nil, err
		}
		pack, err := d.args(r.Pack)
		if err != nil {
			return nil, err
		}
		out = append(out, native.TemplateArg{Kind: kind, Type: t, Value: r.Value, Text: r.Text, Pack: pack})
	}
	return out, nil
}

func valueOf(r *ValueRecord) (*native.Value, error) {
	if r == nil {
		return nil, nil
	}
	kind, ok := valueKindByName(r.Kind)
	if !ok {
		return nil, &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown value kind %q", r.Kind)}
	}
	v := &native.Value{
		Kind:      kind,
		Int:       r.Int,
		Uint:      r.Uint,
		Signed:    r.Signed,
		Float:     r.Float,
		FloatBits: r.FloatBits,
	}
	if kind == native.ValueString {
		width := r.CharWidth
		if width == 0 {
			width = 1
		}
		v.Str = &native.StringLiteral{CharWidth: width, Bytes: r.Bytes}
	}
	return v, nil
}

func (d *decoder) typ(ref Ref) (native.Type, error) {
	if ref == 0 {
		return nil, nil
	}
	if int(ref) >= len(d.types) {
		return nil, malformed("type reference %d out of range", ref)
	}
	if t := d.types[ref]; t != nil {
		return t, nil
	}
	if d.busy[ref] {
		return nil, malformed("type reference cycle through #%d", ref)
	}
	d.busy[ref] = true
	defer func() { d.busy[ref] = false }()

	t, err := d.buildType(&d.snap.Types[ref-1])
	if err != nil {
		return nil, fmt.Errorf("type #%d (%s): %w", ref, d.snap.Types[ref-1].Class, err)
	}
	d.types[ref] = t
	return t, nil
}

func (d *decoder) buildType(rec *TypeRecord) (native.Type, error) {
	class := native.ClassByName(rec.Class)
	inner := func() (native.Type, error) { return d.typ(rec.Inner) }

	switch class {
	case native.ClassBuiltin:
		kind, ok := native.BuiltinByKindName(rec.Builtin)
		if !ok {
			return nil, &Error{Kind: ErrUnknownKind, Msg: fmt.Sprintf("unknown builtin %q", rec.Builtin)}
		}
		return &native.BuiltinType{Kind: kind}, nil
	case native.ClassTypedef:
		td, err := declAs[*native.TypedefDecl](d, rec.Decl, "typedef")
		if err != nil {
			return nil, err
		}
		return &native.TypedefType{Decl: td}, nil
	case native.ClassSubstTemplateTypeParm:
		repl, err := inner()
		return &native.SubstTemplateTypeParmType{Param: rec.Param, Replacement: repl}, err
	case native.ClassElaborated:
		named, err := inner()
		return &native.ElaboratedType{Keyword: rec.Keyword, Named: named}, err
	case native.ClassParen, native.ClassAttributed, native.ClassDecayed:
		under, err := inner()
		return &native.SugarType{Sugar: class, Under: under}, err
	case native.ClassPointer:
		p, err := inner()
		return &native.PointerType{Pointee: p}, err
	case native.ClassLValueReference, native.ClassRValueReference:
		p, err := inner()
		return &native.ReferenceType{Pointee: p, RValue: class == native.ClassRValueReference}, err
	case native.ClassFunctionProto, native.ClassFunctionNoProto:
		result, err := inner()
		if err != nil {
			return nil, err
		}
		ft := &native.FunctionType{Result: result, Variadic: rec.Variadic, NoProto: class == native.ClassFunctionNoProto}
		for _, p := range rec.Params {
			pt, err := d.typ(p)
			if err != nil {
				return nil, err
			}
			ft.Params = append(ft.Params, pt)
		}
		return ft, nil
	case native.ClassRecord:
		rd, err := declAs[*native.RecordDecl](d, rec.Decl, "record")
		return &native.RecordType{Decl: rd}, err
	case native.ClassEnum:
		ed, err := declAs[*native.EnumDecl](d, rec.Decl, "enum")
		return &native.EnumType{Decl: ed}, err
	case native.ClassTemplateSpecialization:
		aliased, err := inner()
		if err != nil {
			return nil, err
		}
		args, err := d.args(rec.Args)
		return &native.TemplateSpecializationType{Template: rec.Template, Args: args, Aliased: aliased}, err
	case native.ClassConstantArray:
		elem, err := inner()
		return &native.ConstantArrayType{Elem: elem, Size: rec.Size}, err
	case native.ClassIncompleteArray:
		elem, err := inner()
		return &native.IncompleteArrayType{Elem: elem}, err
	case native.ClassObjCObjectPointer:
		p, err := inner()
		return &native.ObjCObjectPointerType{Pointee: p}, err
	case native.ClassObjCObject:
		iface, err := declAs[*native.ObjCInterfaceDecl](d, rec.Decl, "ObjC interface")
		return &native.ObjCObjectType{Interface: iface}, err
	case native.ClassComplex:
		elem, err := inner()
		return &native.ComplexType{Elem: elem}, err
	default:
		return &native.OtherType{Name: rec.Class}, nil
	}
}

// refOf converts a table length into the next reference.
func refOf(n int) Ref {
	ref, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("snapshot table overflow: %w", err))
	}
	return ref
}
