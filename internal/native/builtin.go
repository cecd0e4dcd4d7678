package native

import "fmt"

// BuiltinKind enumerates the frontend's builtin scalar types.
type BuiltinKind uint8

const (
	BuiltinInvalid BuiltinKind = iota
	BuiltinVoid
	BuiltinBool
	BuiltinCharU // plain char on targets where char is unsigned
	BuiltinUChar
	BuiltinWCharU
	BuiltinChar8
	BuiltinChar16
	BuiltinChar32
	BuiltinUShort
	BuiltinUInt
	BuiltinULong
	BuiltinULongLong
	BuiltinUInt128
	BuiltinCharS // plain char on targets where char is signed
	BuiltinSChar
	BuiltinWCharS
	BuiltinShort
	BuiltinInt
	BuiltinLong
	BuiltinLongLong
	BuiltinInt128
	BuiltinHalf
	BuiltinFloat
	BuiltinDouble
	BuiltinLongDouble
	BuiltinFloat128
	BuiltinNullPtr
	BuiltinObjCID
	BuiltinObjCClass
	BuiltinObjCSel
	BuiltinDependent
)

var builtinNames = [...]string{
	BuiltinInvalid:    "<invalid>",
	BuiltinVoid:       "void",
	BuiltinBool:       "_Bool",
	BuiltinCharU:      "char",
	BuiltinUChar:      "unsigned char",
	BuiltinWCharU:     "wchar_t",
	BuiltinChar8:      "char8_t",
	BuiltinChar16:     "char16_t",
	BuiltinChar32:     "char32_t",
	BuiltinUShort:     "unsigned short",
	BuiltinUInt:       "unsigned int",
	BuiltinULong:      "unsigned long",
	BuiltinULongLong:  "unsigned long long",
	BuiltinUInt128:    "unsigned __int128",
	BuiltinCharS:      "char",
	BuiltinSChar:      "signed char",
	BuiltinWCharS:     "wchar_t",
	BuiltinShort:      "short",
	BuiltinInt:        "int",
	BuiltinLong:       "long",
	BuiltinLongLong:   "long long",
	BuiltinInt128:     "__int128",
	BuiltinHalf:       "__fp16",
	BuiltinFloat:      "float",
	BuiltinDouble:     "double",
	BuiltinLongDouble: "long double",
	BuiltinFloat128:   "__float128",
	BuiltinNullPtr:    "std::nullptr_t",
	BuiltinObjCID:     "id",
	BuiltinObjCClass:  "Class",
	BuiltinObjCSel:    "SEL",
	BuiltinDependent:  "<dependent type>",
}

// Name returns the spelling the frontend prints for k under its default
// (C) printing policy.
func (k BuiltinKind) Name() string {
	if int(k) < len(builtinNames) {
		return builtinNames[k]
	}
	return fmt.Sprintf("BuiltinKind(%d)", k)
}

func (k BuiltinKind) String() string { return k.Name() }

// IsCharacter reports whether k is a narrow or wide character kind.
func (k BuiltinKind) IsCharacter() bool {
	switch k {
	case BuiltinCharU, BuiltinUChar, BuiltinChar16, BuiltinChar32,
		BuiltinCharS, BuiltinSChar, BuiltinWCharS, BuiltinWCharU:
		return true
	}
	return false
}

// IsSigned reports whether k is a signed integer kind.
func (k BuiltinKind) IsSigned() bool {
	switch k {
	case BuiltinCharS, BuiltinSChar, BuiltinWCharS, BuiltinShort, BuiltinInt,
		BuiltinLong, BuiltinLongLong, BuiltinInt128:
		return true
	}
	return false
}

// IsFloating reports whether k is a floating point kind.
func (k BuiltinKind) IsFloating() bool {
	switch k {
	case BuiltinHalf, BuiltinFloat, BuiltinDouble, BuiltinLongDouble, BuiltinFloat128:
		return true
	}
	return false
}

// BuiltinByName maps a spelling back to its kind. Plain char maps to the
// signed variant; callers on unsigned-char targets adjust.
func BuiltinByName(name string) (BuiltinKind, bool) {
	switch name {
	case "bool":
		return BuiltinBool, true
	case "char":
		return BuiltinCharS, true
	case "wchar_t":
		return BuiltinWCharS, true
	}
	for k, n := range builtinNames {
		if n == name && k != int(BuiltinInvalid) {
			return BuiltinKind(k), true
		}
	}
	return BuiltinInvalid, false
}

var builtinKindNames = [...]string{
	BuiltinInvalid:    "Invalid",
	BuiltinVoid:       "Void",
	BuiltinBool:       "Bool",
	BuiltinCharU:      "Char_U",
	BuiltinUChar:      "UChar",
	BuiltinWCharU:     "WChar_U",
	BuiltinChar8:      "Char8",
	BuiltinChar16:     "Char16",
	BuiltinChar32:     "Char32",
	BuiltinUShort:     "UShort",
	BuiltinUInt:       "UInt",
	BuiltinULong:      "ULong",
	BuiltinULongLong:  "ULongLong",
	BuiltinUInt128:    "UInt128",
	BuiltinCharS:      "Char_S",
	BuiltinSChar:      "SChar",
	BuiltinWCharS:     "WChar_S",
	BuiltinShort:      "Short",
	BuiltinInt:        "Int",
	BuiltinLong:       "Long",
	BuiltinLongLong:   "LongLong",
	BuiltinInt128:     "Int128",
	BuiltinHalf:       "Half",
	BuiltinFloat:      "Float",
	BuiltinDouble:     "Double",
	BuiltinLongDouble: "LongDouble",
	BuiltinFloat128:   "Float128",
	BuiltinNullPtr:    "NullPtr",
	BuiltinObjCID:     "ObjCId",
	BuiltinObjCClass:  "ObjCClass",
	BuiltinObjCSel:    "ObjCSel",
	BuiltinDependent:  "Dependent",
}

// KindName returns the frontend's enumerator name for k (Char_S, WChar_U,
// ...), which unlike Name is unique per kind.
func (k BuiltinKind) KindName() string {
	if int(k) < len(builtinKindNames) {
		return builtinKindNames[k]
	}
	return fmt.Sprintf("BuiltinKind(%d)", k)
}

// BuiltinByKindName is the inverse of KindName.
func BuiltinByKindName(name string) (BuiltinKind, bool) {
	for k, n := range builtinKindNames {
		if n == name {
			return BuiltinKind(k), true
		}
	}
	return BuiltinInvalid, false
}
