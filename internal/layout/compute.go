package layout

import (
	"math/bits"

	"ffigen/internal/native"
)

func (e *LayoutEngine) computeLayout(t native.Type, state *layoutState) (TypeLayout, *LayoutError) {
	switch tt := t.(type) {
	case nil:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: "<nil>"}

	case *native.BuiltinType:
		return e.builtinLayout(tt)

	case *native.PointerType, *native.ReferenceType, *native.ObjCObjectPointerType:
		return e.ptrLayout(), nil

	case *native.EnumType:
		if tt.Decl == nil || tt.Decl.Integer == nil {
			return scalarLayoutBytes(4), nil
		}
		return e.layoutOf(tt.Decl.Integer, state)

	case *native.ConstantArrayType:
		el, err := e.layoutOf(tt.Elem, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		hi, size := bits.Mul64(el.Size, tt.Size)
		if hi != 0 {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrOverflow, Type: native.TypeString(t)}
		}
		return TypeLayout{Size: size, Align: el.Align}, nil

	case *native.IncompleteArrayType:
		// flexible array member: no storage of its own
		el, err := e.layoutOf(tt.Elem, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		return TypeLayout{Size: 0, Align: el.Align}, nil

	case *native.ComplexType:
		el, err := e.layoutOf(tt.Elem, state)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
		return TypeLayout{Size: 2 * el.Size, Align: el.Align}, nil

	case *native.FunctionType, *native.ObjCObjectType:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: native.TypeString(t)}

	case *native.SubstTemplateTypeParmType, *native.TemplateSpecializationType:
		// Canonical only stops at these when nothing was substituted.
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrDependent, Type: native.TypeString(t)}

	default:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: t.ClassName()}
	}
}

func (e *LayoutEngine) builtinLayout(b *native.BuiltinType) (TypeLayout, *LayoutError) {
	switch b.Kind {
	case native.BuiltinVoid:
		return TypeLayout{Size: 0, Align: 1}, nil
	case native.BuiltinBool, native.BuiltinCharU, native.BuiltinUChar, native.BuiltinCharS,
		native.BuiltinSChar, native.BuiltinChar8:
		return scalarLayoutBytes(1), nil
	case native.BuiltinChar16, native.BuiltinShort, native.BuiltinUShort, native.BuiltinHalf:
		return scalarLayoutBytes(2), nil
	case native.BuiltinChar32, native.BuiltinInt, native.BuiltinUInt, native.BuiltinFloat:
		return scalarLayoutBytes(4), nil
	case native.BuiltinWCharS, native.BuiltinWCharU:
		return scalarLayoutBytes(e.Target.WCharSize), nil
	case native.BuiltinLong, native.BuiltinULong:
		return scalarLayoutBytes(e.Target.LongSize), nil
	case native.BuiltinLongLong, native.BuiltinULongLong, native.BuiltinDouble:
		return TypeLayout{Size: 8, Align: nonZero(e.Target.Int64Align, 8)}, nil
	case native.BuiltinInt128, native.BuiltinUInt128, native.BuiltinFloat128:
		return scalarLayoutBytes(16), nil
	case native.BuiltinLongDouble:
		return TypeLayout{Size: e.Target.LongDoubleSize, Align: nonZero(e.Target.LongDoubleAlign, 8)}, nil
	case native.BuiltinNullPtr, native.BuiltinObjCID, native.BuiltinObjCClass, native.BuiltinObjCSel:
		return e.ptrLayout(), nil
	case native.BuiltinDependent:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrDependent, Type: b.Kind.Name()}
	}
	return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrUnknownType, Type: b.Kind.Name()}
}

func (e *LayoutEngine) ptrLayout() TypeLayout {
	ptrSize := nonZero(e.Target.PtrSize, 8)
	return TypeLayout{Size: ptrSize, Align: nonZero(e.Target.PtrAlign, ptrSize)}
}

func scalarLayoutBytes(size uint64) TypeLayout {
	if size == 0 {
		return TypeLayout{Size: 0, Align: 1}
	}
	return TypeLayout{Size: size, Align: size}
}

func nonZero(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func roundUp(n, align uint64) uint64 {
	if align <= 1 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}

func ceilBytes(bitsN uint64) uint64 {
	return (bitsN + 7) / 8
}
