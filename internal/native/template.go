package native

import (
	"strconv"
	"strings"
)

// TemplateArgKind classifies a template argument.
type TemplateArgKind uint8

const (
	ArgType TemplateArgKind = iota
	ArgIntegral
	ArgPack
	// ArgOther covers declarations, null pointers, templates and
	// expressions; Text holds the frontend's spelling.
	ArgOther
)

// TemplateArg is one argument of a template specialization.
type TemplateArg struct {
	Kind  TemplateArgKind
	Type  Type
	Value int64
	Text  string
	Pack  []TemplateArg
}

// TypeArg returns a type template argument.
func TypeArg(t Type) TemplateArg { return TemplateArg{Kind: ArgType, Type: t} }

// IntArg returns an integral template argument of type t (may be nil).
func IntArg(v int64, t Type) TemplateArg {
	return TemplateArg{Kind: ArgIntegral, Value: v, Type: t}
}

// String prints the argument the way it appears between angle brackets.
// Packs print their elements separated by ", ".
func (a TemplateArg) String() string {
	switch a.Kind {
	case ArgType:
		return TypeString(a.Type)
	case ArgIntegral:
		if b, ok := AsBuiltin(a.Type); ok && b.Kind == BuiltinBool {
			if a.Value != 0 {
				return "true"
			}
			return "false"
		}
		return strconv.FormatInt(a.Value, 10)
	case ArgPack:
		parts := make([]string, 0, len(a.Pack))
		for _, p := range a.Pack {
			parts = append(parts, p.String())
		}
		return strings.Join(parts, ", ")
	default:
		return a.Text
	}
}

// PrintTemplateArgs renders args as "<a, b>".
func PrintTemplateArgs(args []TemplateArg) string {
	var sb strings.Builder
	sb.WriteByte('<')
	first := true
	for _, a := range args {
		if a.Kind == ArgPack && len(a.Pack) == 0 {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
		first = false
	}
	sb.WriteByte('>')
	return sb.String()
}
