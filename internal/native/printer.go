package native

import (
	"strconv"
	"strings"
)

// QualifiedName prints the fully scope-qualified name of d: named contexts
// joined by "::", specialization contexts with their arguments, unscoped
// enums left out and linkage specifications transparent. The arguments of
// d itself are not appended.
func QualifiedName(d Decl) string {
	if d == nil {
		return ""
	}
	var parts []string
	for ctx := d.Parent(); ctx != nil; ctx = ctx.Parent() {
		part, ok := contextName(ctx)
		if !ok {
			continue
		}
		parts = append(parts, part)
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString(parts[i])
		sb.WriteString("::")
	}
	sb.WriteString(declName(d))
	return sb.String()
}

func contextName(ctx Decl) (string, bool) {
	switch c := ctx.(type) {
	case *LinkageSpecDecl:
		return "", false
	case *NamespaceDecl:
		if c.IsAnonymous() {
			return "(anonymous namespace)", true
		}
		return c.Ident, true
	case *EnumDecl:
		if !c.Scoped {
			return "", false
		}
		return c.Ident, true
	case *RecordDecl:
		if c.Ident == "" {
			return "(anonymous " + c.Tag.String() + ")", true
		}
		if c.Specialization != nil {
			return c.Ident + PrintTemplateArgs(c.Specialization.Args), true
		}
		return c.Ident, true
	case *FunctionDecl:
		return c.Ident + paramList(c.Params, c.Variadic), true
	case *MethodDecl:
		return c.Ident + paramList(c.Params, c.Variadic), true
	}
	return declName(ctx), true
}

func declName(d Decl) string {
	if n := d.Name(); n != "" {
		return n
	}
	if n := d.DisplayName(); n != "" {
		return n
	}
	return "(anonymous)"
}

func paramList(params []*ParamDecl, variadic bool) string {
	parts := make([]string, 0, len(params)+1)
	for _, p := range params {
		parts = append(parts, TypeString(p.Type))
	}
	if variadic {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// TypeString prints t in C++ source syntax, the way template arguments
// are spelled.
func TypeString(t Type) string {
	return typeString(t, "")
}

// typeString prints t around the declarator inner, which already holds any
// pointer or array suffixes of the enclosing types.
func typeString(t Type, inner string) string {
	join := func(base string) string {
		if inner == "" {
			return base
		}
		return base + " " + inner
	}
	switch tt := t.(type) {
	case nil:
		return join("<null>")
	case *BuiltinType:
		if tt.Kind == BuiltinBool {
			return join("bool")
		}
		return join(tt.Kind.Name())
	case *TypedefType:
		if tt.Decl == nil {
			return join("<typedef>")
		}
		return join(QualifiedName(tt.Decl))
	case *SubstTemplateTypeParmType:
		if tt.Replacement == nil {
			return join(tt.Param)
		}
		return typeString(tt.Replacement, inner)
	case *ElaboratedType:
		return typeString(tt.Named, inner)
	case *SugarType:
		return typeString(tt.Under, inner)
	case *PointerType:
		return typeString(tt.Pointee, wrapDeclarator(tt.Pointee, "*"+inner))
	case *ReferenceType:
		op := "&"
		if tt.RValue {
			op = "&&"
		}
		return typeString(tt.Pointee, wrapDeclarator(tt.Pointee, op+inner))
	case *FunctionType:
		return typeString(tt.Result, inner+funcParams(tt))
	case *RecordType:
		if tt.Decl == nil {
			return join("<record>")
		}
		name := QualifiedName(tt.Decl)
		if tt.Decl.Specialization != nil {
			name += PrintTemplateArgs(tt.Decl.Specialization.Args)
		}
		return join(name)
	case *EnumType:
		if tt.Decl == nil {
			return join("<enum>")
		}
		return join(QualifiedName(tt.Decl))
	case *TemplateSpecializationType:
		return join(tt.Template + PrintTemplateArgs(tt.Args))
	case *ConstantArrayType:
		return typeString(tt.Elem, inner+"["+strconv.FormatUint(tt.Size, 10)+"]")
	case *IncompleteArrayType:
		return typeString(tt.Elem, inner+"[]")
	case *ObjCObjectPointerType:
		return typeString(tt.Pointee, "*"+inner)
	case *ObjCObjectType:
		if tt.Interface == nil {
			return join("id")
		}
		return join(tt.Interface.Ident)
	case *ComplexType:
		return join("_Complex " + TypeString(tt.Elem))
	}
	return join("<" + t.ClassName() + ">")
}

// wrapDeclarator parenthesizes a pointer declarator that applies to an
// array or function type: "int (*)[4]", "void (*)(int)".
func wrapDeclarator(pointee Type, decl string) string {
	switch pointee.(type) {
	case *FunctionType, *ConstantArrayType, *IncompleteArrayType:
		return "(" + decl + ")"
	}
	return decl
}

func funcParams(ft *FunctionType) string {
	parts := make([]string, 0, len(ft.Params)+1)
	for _, p := range ft.Params {
		parts = append(parts, TypeString(p))
	}
	if ft.Variadic {
		parts = append(parts, "...")
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
