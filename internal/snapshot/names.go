package snapshot

import (
	"sort"

	"ffigen/internal/native"
)

// Small string tables for the enums the schema spells out by name. Lookups
// return ok=false for unknown names so the decoder can report them.

var accessNames = map[string]native.AccessSpec{
	"":          native.AccessNone,
	"none":      native.AccessNone,
	"public":    native.AccessPublic,
	"protected": native.AccessProtected,
	"private":   native.AccessPrivate,
}

func accessName(a native.AccessSpec) string {
	if a == native.AccessNone {
		return ""
	}
	return a.String()
}

var tagNames = map[string]native.TagKind{
	"":       native.TagStruct,
	"struct": native.TagStruct,
	"class":  native.TagClass,
	"union":  native.TagUnion,
}

var storageNames = [...]string{
	native.StorageNone:          "",
	native.StorageExtern:        "extern",
	native.StorageStatic:        "static",
	native.StoragePrivateExtern: "private_extern",
	native.StorageAuto:          "auto",
	native.StorageRegister:      "register",
}

func storageByName(s string) (native.StorageClass, bool) {
	if s == "none" {
		return native.StorageNone, true
	}
	for i, n := range storageNames {
		if n == s {
			return native.StorageClass(i), true
		}
	}
	return native.StorageNone, false
}

var specKindNames = [...]string{
	native.SpecUndeclared:                       "undeclared",
	native.SpecImplicitInstantiation:            "implicit_instantiation",
	native.SpecExplicitSpecialization:           "explicit_specialization",
	native.SpecExplicitInstantiationDeclaration: "explicit_instantiation_declaration",
	native.SpecExplicitInstantiationDefinition:  "explicit_instantiation_definition",
}

func specKindByName(s string) (native.SpecializationKind, bool) {
	for i, n := range specKindNames {
		if n == s {
			return native.SpecializationKind(i), true
		}
	}
	return native.SpecUndeclared, false
}

var argKindNames = [...]string{
	native.ArgType:     "type",
	native.ArgIntegral: "integral",
	native.ArgPack:     "pack",
	native.ArgOther:    "other",
}

func argKindByName(s string) (native.TemplateArgKind, bool) {
	for i, n := range argKindNames {
		if n == s {
			return native.TemplateArgKind(i), true
		}
	}
	return native.ArgOther, false
}

func valueKindByName(s string) (native.ValueKind, bool) {
	for _, k := range []native.ValueKind{native.ValueNone, native.ValueInt, native.ValueFloat, native.ValueString, native.ValueOther} {
		if k.String() == s {
			return k, true
		}
	}
	return native.ValueNone, false
}

func severityByName(s string) (native.DiagSeverity, bool) {
	for _, sev := range []native.DiagSeverity{native.DiagNote, native.DiagWarning, native.DiagError, native.DiagFatal} {
		if sev.String() == s {
			return sev, true
		}
	}
	return native.DiagNote, false
}

func languageName(l native.Language) string {
	if l == native.LanguageCXX {
		return "C++"
	}
	return "C"
}

func declKindByName(s string) (native.DeclKind, bool) {
	switch s {
	// frontend spellings that share a model kind
	case "CXXRecord", "ClassTemplateSpecialization", "ClassTemplatePartialSpecialization":
		return native.KindRecord, true
	case "CXXConstructor", "CXXDestructor", "CXXConversion":
		return native.KindMethod, true
	case "ClassTemplate", "FunctionTemplate", "TypeAliasTemplate", "VarTemplate":
		return native.KindTemplate, true
	case "TypeAlias":
		return native.KindTypedef, true
	}
	for k := native.KindNamespace; k <= native.KindOther; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return native.KindInvalid, false
}

func sortMacros(ms []MacroRecord) {
	sort.Slice(ms, func(i, j int) bool { return ms[i].Name < ms[j].Name })
}
