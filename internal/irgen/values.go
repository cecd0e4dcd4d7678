package irgen

import (
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"ffigen/internal/native"
)

// initValue renders the evaluated initializer of vd. The second result
// reports a string literal. Dependent variables and initializers the
// frontend could not evaluate give "".
func (h *Harvester) initValue(vd *native.VarDecl) (string, bool) {
	if vd.DependentType || native.IsDependent(vd.Type) || !vd.HasInit || vd.Init == nil {
		return "", false
	}
	v := vd.Init
	switch v.Kind {
	case native.ValueInt:
		if v.Signed {
			return strconv.FormatInt(v.Int, 10), false
		}
		return strconv.FormatUint(v.Uint, 10), false
	case native.ValueFloat:
		bits := 64
		if v.FloatBits == 32 {
			bits = 32
		}
		return strconv.FormatFloat(v.Float, 'g', -1, bits), false
	case native.ValueString:
		if v.Str == nil {
			return "", true
		}
		s, err := h.decodeString(v.Str)
		if err != nil {
			return "", true
		}
		return s, true
	}
	return "", false
}

// decodeString converts a string literal of 1, 2 or 4 byte code units to
// UTF-8 using the byte order of the target.
func (h *Harvester) decodeString(lit *native.StringLiteral) (string, error) {
	var enc encoding.Encoding
	bigEndian := h.layout.Target.BigEndian
	switch lit.CharWidth {
	case 0, 1:
		return string(lit.Bytes), nil
	case 2:
		order := unicode.LittleEndian
		if bigEndian {
			order = unicode.BigEndian
		}
		enc = unicode.UTF16(order, unicode.IgnoreBOM)
	case 4:
		order := utf32.LittleEndian
		if bigEndian {
			order = utf32.BigEndian
		}
		enc = utf32.UTF32(order, utf32.IgnoreBOM)
	default:
		return "", errUnsupportedCharWidth(lit.CharWidth)
	}
	out, err := enc.NewDecoder().Bytes(lit.Bytes)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
