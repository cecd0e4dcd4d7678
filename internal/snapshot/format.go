package snapshot

// Ref is a 1-based index into Snapshot.Types or Snapshot.Decls. Zero means
// no type or declaration.
type Ref = uint32

// Snapshot is the serialized form of a native.TranslationUnit.
type Snapshot struct {
	Producer    string        `msgpack:"producer" json:"producer"`
	Version     string        `msgpack:"version" json:"version"`
	Lang        string        `msgpack:"lang" json:"lang"`
	Target      string        `msgpack:"target,omitempty" json:"target,omitempty"`
	MainFile    string        `msgpack:"main_file,omitempty" json:"main_file,omitempty"`
	Files       []FileRecord  `msgpack:"files,omitempty" json:"files,omitempty"`
	Types       []TypeRecord  `msgpack:"types,omitempty" json:"types,omitempty"`
	Decls       []DeclRecord  `msgpack:"decls,omitempty" json:"decls,omitempty"`
	Top         []Ref         `msgpack:"top,omitempty" json:"top,omitempty"`
	Macros      []MacroRecord `msgpack:"macros,omitempty" json:"macros,omitempty"`
	Diagnostics []DiagRecord  `msgpack:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// FileRecord is one entry of the file table; PosRecord.File indexes it
// 1-based.
type FileRecord struct {
	Path    string `msgpack:"path" json:"path"`
	System  bool   `msgpack:"system,omitempty" json:"system,omitempty"`
	Virtual bool   `msgpack:"virtual,omitempty" json:"virtual,omitempty"`
}

type PosRecord struct {
	File uint32 `msgpack:"file,omitempty" json:"file,omitempty"`
	Line uint32 `msgpack:"line,omitempty" json:"line,omitempty"`
	Col  uint32 `msgpack:"col,omitempty" json:"col,omitempty"`
}

type MacroRecord struct {
	Name string    `msgpack:"name" json:"name"`
	Pos  PosRecord `msgpack:"pos" json:"pos"`
}

type DiagRecord struct {
	Severity  string    `msgpack:"severity" json:"severity"`
	Pos       PosRecord `msgpack:"pos,omitempty" json:"pos,omitempty"`
	Message   string    `msgpack:"message" json:"message"`
	DeclIndex int       `msgpack:"decl_index" json:"decl_index"`
}

// TypeRecord is one node of the type graph. Class is the frontend's type
// class name; which of the other fields are meaningful depends on it:
//
//	Builtin                  Builtin
//	Typedef, Record, Enum    Decl
//	ObjCObject               Decl (interface)
//	SubstTemplateTypeParm    Param, Inner (replacement)
//	Elaborated               Keyword, Inner (named type)
//	Paren, Attributed, ...   Inner
//	Pointer, *Reference      Inner (pointee)
//	FunctionProto/NoProto    Inner (result), Params, Variadic
//	TemplateSpecialization   Template, Args, Inner (aliased type)
//	ConstantArray            Inner (element), Size
//	IncompleteArray, Complex Inner (element)
//	ObjCObjectPointer        Inner (pointee)
type TypeRecord struct {
	Class    string      `msgpack:"class" json:"class"`
	Builtin  string      `msgpack:"builtin,omitempty" json:"builtin,omitempty"`
	Decl     Ref         `msgpack:"decl,omitempty" json:"decl,omitempty"`
	Inner    Ref         `msgpack:"inner,omitempty" json:"inner,omitempty"`
	Params   []Ref       `msgpack:"params,omitempty" json:"params,omitempty"`
	Variadic bool        `msgpack:"variadic,omitempty" json:"variadic,omitempty"`
	Size     uint64      `msgpack:"size,omitempty" json:"size,omitempty"`
	Keyword  string      `msgpack:"keyword,omitempty" json:"keyword,omitempty"`
	Param    string      `msgpack:"param,omitempty" json:"param,omitempty"`
	Template string      `msgpack:"template,omitempty" json:"template,omitempty"`
	Args     []ArgRecord `msgpack:"args,omitempty" json:"args,omitempty"`
}

// ArgRecord is a template argument. Kind is one of type, integral, pack,
// other.
type ArgRecord struct {
	Kind  string      `msgpack:"kind" json:"kind"`
	Type  Ref         `msgpack:"type,omitempty" json:"type,omitempty"`
	Value int64       `msgpack:"value,omitempty" json:"value,omitempty"`
	Text  string      `msgpack:"text,omitempty" json:"text,omitempty"`
	Pack  []ArgRecord `msgpack:"pack,omitempty" json:"pack,omitempty"`
}

// ValueRecord is an evaluated constant initializer. Kind is one of int,
// float, string, other.
type ValueRecord struct {
	Kind      string  `msgpack:"kind" json:"kind"`
	Int       int64   `msgpack:"int,omitempty" json:"int,omitempty"`
	Uint      uint64  `msgpack:"uint,omitempty" json:"uint,omitempty"`
	Signed    bool    `msgpack:"signed,omitempty" json:"signed,omitempty"`
	Float     float64 `msgpack:"float,omitempty" json:"float,omitempty"`
	FloatBits uint16  `msgpack:"float_bits,omitempty" json:"float_bits,omitempty"`
	CharWidth uint8   `msgpack:"char_width,omitempty" json:"char_width,omitempty"`
	Bytes     []byte  `msgpack:"bytes,omitempty" json:"bytes,omitempty"`
}

type BaseRecord struct {
	Type    Ref    `msgpack:"type" json:"type"`
	Virtual bool   `msgpack:"virtual,omitempty" json:"virtual,omitempty"`
	Access  string `msgpack:"access,omitempty" json:"access,omitempty"`
}

type SpecRecord struct {
	Kind string      `msgpack:"kind" json:"kind"`
	Args []ArgRecord `msgpack:"args,omitempty" json:"args,omitempty"`
}

// LayoutRecord is a record layout computed by the frontend. Size, Align and
// FieldOffsets are in bits; base offsets in bytes.
type LayoutRecord struct {
	Size         uint64             `msgpack:"size" json:"size"`
	Align        uint64             `msgpack:"align" json:"align"`
	FieldOffsets []uint64           `msgpack:"field_offsets,omitempty" json:"field_offsets,omitempty"`
	Bases        []BaseOffsetRecord `msgpack:"bases,omitempty" json:"bases,omitempty"`
}

type BaseOffsetRecord struct {
	Decl    Ref   `msgpack:"decl" json:"decl"`
	Offset  int64 `msgpack:"offset" json:"offset"`
	Virtual bool  `msgpack:"virtual,omitempty" json:"virtual,omitempty"`
}

// DeclRecord is one declaration. Kind is the frontend's declaration kind
// name (see native.DeclKind). Type is the field/param/variable type, the
// typedef's underlying type, the function result or the enum's integer type.
// Children lists the members of namespaces, linkage blocks and records.
type DeclRecord struct {
	Kind     string    `msgpack:"kind" json:"kind"`
	Name     string    `msgpack:"name,omitempty" json:"name,omitempty"`
	Display  string    `msgpack:"display,omitempty" json:"display,omitempty"`
	Parent   Ref       `msgpack:"parent,omitempty" json:"parent,omitempty"`
	Pos      PosRecord `msgpack:"pos,omitempty" json:"pos,omitempty"`
	Access   string    `msgpack:"access,omitempty" json:"access,omitempty"`
	Invalid  bool      `msgpack:"invalid,omitempty" json:"invalid,omitempty"`
	Children []Ref     `msgpack:"children,omitempty" json:"children,omitempty"`
	Type     Ref       `msgpack:"type,omitempty" json:"type,omitempty"`

	// namespaces, linkage specs
	Inline bool   `msgpack:"inline,omitempty" json:"inline,omitempty"`
	Lang   string `msgpack:"lang,omitempty" json:"lang,omitempty"`

	// records
	Tag        string        `msgpack:"tag,omitempty" json:"tag,omitempty"`
	CXX        bool          `msgpack:"cxx,omitempty" json:"cxx,omitempty"`
	Definition bool          `msgpack:"definition,omitempty" json:"definition,omitempty"`
	Def        Ref           `msgpack:"def,omitempty" json:"def,omitempty"`
	Embedded   bool          `msgpack:"embedded,omitempty" json:"embedded,omitempty"`
	Fields     []Ref         `msgpack:"fields,omitempty" json:"fields,omitempty"`
	Methods    []Ref         `msgpack:"methods,omitempty" json:"methods,omitempty"`
	Bases      []BaseRecord  `msgpack:"bases,omitempty" json:"bases,omitempty"`
	Spec       *SpecRecord   `msgpack:"spec,omitempty" json:"spec,omitempty"`
	Dependent  bool          `msgpack:"dependent,omitempty" json:"dependent,omitempty"`
	Layout     *LayoutRecord `msgpack:"layout,omitempty" json:"layout,omitempty"`

	// fields
	BitField bool   `msgpack:"bit_field,omitempty" json:"bit_field,omitempty"`
	BitWidth uint32 `msgpack:"bit_width,omitempty" json:"bit_width,omitempty"`

	// functions, methods
	Params       []Ref       `msgpack:"params,omitempty" json:"params,omitempty"`
	Variadic     bool        `msgpack:"variadic,omitempty" json:"variadic,omitempty"`
	Storage      string      `msgpack:"storage,omitempty" json:"storage,omitempty"`
	TemplateArgs []ArgRecord `msgpack:"template_args,omitempty" json:"template_args,omitempty"`
	Static       bool        `msgpack:"static,omitempty" json:"static,omitempty"`
	Virtual      bool        `msgpack:"virtual,omitempty" json:"virtual,omitempty"`
	Const        bool        `msgpack:"const,omitempty" json:"const,omitempty"`
	Pure         bool        `msgpack:"pure,omitempty" json:"pure,omitempty"`
	Ctor         bool        `msgpack:"ctor,omitempty" json:"ctor,omitempty"`
	Dtor         bool        `msgpack:"dtor,omitempty" json:"dtor,omitempty"`

	// variables
	Extern        bool         `msgpack:"extern,omitempty" json:"extern,omitempty"`
	HasInit       bool         `msgpack:"has_init,omitempty" json:"has_init,omitempty"`
	Init          *ValueRecord `msgpack:"init,omitempty" json:"init,omitempty"`
	DependentType bool         `msgpack:"dependent_type,omitempty" json:"dependent_type,omitempty"`

	// typedefs, enums
	Alias       bool  `msgpack:"alias,omitempty" json:"alias,omitempty"`
	Scoped      bool  `msgpack:"scoped,omitempty" json:"scoped,omitempty"`
	Enumerators []Ref `msgpack:"enumerators,omitempty" json:"enumerators,omitempty"`
	Value       int64 `msgpack:"value,omitempty" json:"value,omitempty"`

	// Objective-C
	Super       string   `msgpack:"super,omitempty" json:"super,omitempty"`
	Forward     bool     `msgpack:"forward,omitempty" json:"forward,omitempty"`
	Protocols   []string `msgpack:"protocols,omitempty" json:"protocols,omitempty"`
	Category    string   `msgpack:"category,omitempty" json:"category,omitempty"`
	ClassMethod bool     `msgpack:"class_method,omitempty" json:"class_method,omitempty"`

	// templates, other
	TemplateKind    string `msgpack:"template_kind,omitempty" json:"template_kind,omitempty"`
	Specializations []Ref  `msgpack:"specializations,omitempty" json:"specializations,omitempty"`
	KindName        string `msgpack:"kind_name,omitempty" json:"kind_name,omitempty"`
}
