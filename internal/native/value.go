package native

import "fmt"

// ValueKind classifies an evaluated initializer.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueString
	// ValueOther covers evaluated results this model does not carry
	// (aggregates, member pointers, non-literal lvalues).
	ValueOther
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueOther:
		return "other"
	default:
		return "none"
	}
}

// StringLiteral is the raw storage of a string literal the way the
// frontend keeps it: code units of CharWidth bytes each, in target byte
// order, without the terminating null.
type StringLiteral struct {
	CharWidth uint8
	Bytes     []byte
}

// Value is the frontend's evaluation of a constant initializer.
type Value struct {
	Kind ValueKind
	// Int holds signed integers, Uint unsigned ones; Signed tells which.
	Int    int64
	Uint   uint64
	Signed bool
	Float  float64
	// FloatBits is the bit width of the evaluated floating value (32, 64,
	// 80, 128); 0 means 64.
	FloatBits uint16
	Str       *StringLiteral
}

// IntValue returns a signed integer value.
func IntValue(v int64) *Value {
	return &Value{Kind: ValueInt, Int: v, Signed: true}
}

// UintValue returns an unsigned integer value.
func UintValue(v uint64) *Value {
	return &Value{Kind: ValueInt, Uint: v}
}

// FloatValue returns a floating value of the given bit width.
func FloatValue(v float64, bits uint16) *Value {
	return &Value{Kind: ValueFloat, Float: v, FloatBits: bits}
}

// StringValue returns a string literal value.
func StringValue(width uint8, raw []byte) *Value {
	return &Value{Kind: ValueString, Str: &StringLiteral{CharWidth: width, Bytes: raw}}
}

func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case ValueInt:
		if v.Signed {
			return fmt.Sprintf("%d", v.Int)
		}
		return fmt.Sprintf("%d", v.Uint)
	case ValueFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValueString:
		if v.Str == nil {
			return `""`
		}
		return fmt.Sprintf("%q (width %d)", v.Str.Bytes, v.Str.CharWidth)
	}
	return v.Kind.String()
}
