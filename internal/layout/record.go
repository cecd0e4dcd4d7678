package layout

import (
	"ffigen/internal/native"
)

// recordBuilder lays out one record definition. offset is the end of the
// data placed so far, in bits.
type recordBuilder struct {
	e     *LayoutEngine
	state *layoutState
	rd    *native.RecordDecl

	offset uint64
	align  uint64

	fieldOffsets []uint64
	bases        map[*native.RecordDecl]int64
	vbases       map[*native.RecordDecl]int64

	// Microsoft bit-field run: a storage unit of runSize bytes starting at
	// runStart bits, of which runUsed bits are taken.
	inRun    bool
	runStart uint64
	runSize  uint64
	runUsed  uint64
}

func (e *LayoutEngine) recordLayout(rd *native.RecordDecl, state *layoutState) (TypeLayout, *LayoutError) {
	b := &recordBuilder{
		e:            e,
		state:        state,
		rd:           rd,
		align:        1,
		fieldOffsets: make([]uint64, len(rd.Fields)),
		bases:        make(map[*native.RecordDecl]int64),
		vbases:       make(map[*native.RecordDecl]int64),
	}
	if rd.CXX {
		if err := b.layoutNonVirtualBases(); err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
	}
	if err := b.layoutFields(); err != nil {
		return TypeLayout{Size: 0, Align: 1}, err
	}
	dataSize := ceilBytes(b.offset)
	if rd.CXX {
		if err := b.layoutVirtualBases(); err != nil {
			return TypeLayout{Size: 0, Align: 1}, err
		}
	}

	size := roundUp(ceilBytes(b.offset), b.align)
	empty := false
	if rd.CXX && size == 0 {
		// C++ objects have nonzero size; C keeps the GNU zero-size struct.
		size = 1
		empty = true
	}
	if !rd.CXX || rd.IsUnion() || isLayoutPOD(rd) {
		dataSize = size
	}
	return TypeLayout{
		Size:         size,
		Align:        b.align,
		FieldOffsets: b.fieldOffsets,
		BaseOffsets:  b.bases,
		VBaseOffsets: b.vbases,
		Empty:        empty,
		DataSize:     dataSize,
	}, nil
}

// primaryBase is the first non-virtual dynamic base, which shares the
// vtable pointer of the derived class.
func primaryBase(rd *native.RecordDecl) (native.BaseSpec, bool) {
	for _, base := range rd.Bases {
		if base.Virtual {
			continue
		}
		bd := definitionOf(base.Decl())
		if bd != nil && bd.IsDynamic() {
			return base, true
		}
	}
	return native.BaseSpec{}, false
}

// isLayoutPOD reports whether rd is a POD in the C++03 sense the Itanium
// ABI uses for layout. Only non-POD records lend their tail padding to
// later bases.
func isLayoutPOD(rd *native.RecordDecl) bool {
	if rd.IsDynamic() || len(rd.Bases) > 0 {
		return false
	}
	for _, m := range rd.Methods {
		if m.Ctor || m.Dtor {
			return false
		}
	}
	for _, f := range rd.Fields {
		if !f.Access().IsExposed() {
			return false
		}
		if fd, ok := native.AsRecordDecl(f.Type); ok {
			if def := definitionOf(fd); def.CXX && def != rd && !isLayoutPOD(def) {
				return false
			}
		}
	}
	return true
}

// layoutNonVirtualBases places the primary base at offset 0, then the
// other non-virtual bases in declaration order. Each base after the
// primary starts at the data size of what precedes it.
func (b *recordBuilder) layoutNonVirtualBases() *LayoutError {
	primary, hasPrimary := primaryBase(b.rd)
	var primaryDecl *native.RecordDecl
	if hasPrimary {
		primaryDecl = definitionOf(primary.Decl())
		pl, err := b.e.layoutOf(primary.Type, b.state)
		if err != nil {
			return err
		}
		b.align = max(b.align, pl.Align)
		b.bases[primaryDecl] = 0
		b.offset = pl.dataSize() * 8
	} else if b.rd.IsDynamic() {
		ptr := b.e.ptrLayout()
		b.offset = ptr.Size * 8
		b.align = max(b.align, ptr.Align)
	}
	for _, base := range b.rd.Bases {
		if base.Virtual {
			continue
		}
		bd := definitionOf(base.Decl())
		if bd == nil {
			return &LayoutError{Kind: LayoutErrIncomplete, Type: native.TypeString(base.Type)}
		}
		if bd == primaryDecl {
			continue
		}
		bl, err := b.e.layoutOf(base.Type, b.state)
		if err != nil {
			return err
		}
		b.align = max(b.align, bl.Align)
		if bl.Empty {
			b.bases[bd] = 0
			continue
		}
		off := roundUp(ceilBytes(b.offset), bl.Align)
		v, lerr := bytesToInt64(off, native.QualifiedName(bd))
		if lerr != nil {
			return lerr
		}
		b.bases[bd] = v
		b.offset = (off + bl.dataSize()) * 8
	}
	return nil
}

// virtualBases collects the virtual bases of rd and of its bases, each
// once, in depth-first declaration order.
func virtualBases(rd *native.RecordDecl, seen map[*native.RecordDecl]bool, out []native.BaseSpec) []native.BaseSpec {
	for _, base := range rd.Bases {
		bd := definitionOf(base.Decl())
		if bd == nil {
			continue
		}
		if base.Virtual && !seen[bd] {
			seen[bd] = true
			out = append(out, base)
		}
		if bd != rd {
			out = virtualBases(bd, seen, out)
		}
	}
	return out
}

func (b *recordBuilder) layoutVirtualBases() *LayoutError {
	for _, base := range virtualBases(b.rd, make(map[*native.RecordDecl]bool), nil) {
		bd := definitionOf(base.Decl())
		bl, err := b.e.layoutOf(base.Type, b.state)
		if err != nil {
			return err
		}
		b.align = max(b.align, bl.Align)
		if bl.Empty {
			b.vbases[bd] = 0
			continue
		}
		off := roundUp(ceilBytes(b.offset), bl.Align)
		v, lerr := bytesToInt64(off, native.QualifiedName(bd))
		if lerr != nil {
			return lerr
		}
		b.vbases[bd] = v
		b.offset = (off + bl.Size) * 8
	}
	return nil
}

func (b *recordBuilder) layoutFields() *LayoutError {
	for i, f := range b.rd.Fields {
		fl, err := b.e.layoutOf(f.Type, b.state)
		if err != nil {
			return err
		}
		switch {
		case b.rd.IsUnion():
			b.fieldOffsets[i] = 0
			size := fl.Size * 8
			if f.BitField {
				size = uint64(f.BitWidth)
			}
			b.offset = max(b.offset, size)
			if !f.BitField || f.Ident != "" {
				b.align = max(b.align, fl.Align)
			}
		case f.BitField && b.e.Target.MSVC:
			b.placeBitFieldMS(i, f, fl)
		case f.BitField:
			b.placeBitField(i, f, fl)
		default:
			b.endRun()
			off := roundUp(ceilBytes(b.offset), fl.Align)
			b.fieldOffsets[i] = off * 8
			b.offset = (off + fl.Size) * 8
			b.align = max(b.align, fl.Align)
		}
	}
	b.endRun()
	return nil
}

// placeBitField follows the System V rule: a bit-field may not straddle an
// aligned storage unit of its declared type.
func (b *recordBuilder) placeBitField(i int, f *native.FieldDecl, fl TypeLayout) {
	width := uint64(f.BitWidth)
	unitBits := fl.Size * 8
	alignBits := fl.Align * 8
	if width == 0 {
		b.offset = roundUp(b.offset, alignBits)
		b.fieldOffsets[i] = b.offset
		return
	}
	if unitBits > 0 && b.offset/unitBits != (b.offset+width-1)/unitBits {
		b.offset = roundUp(b.offset, alignBits)
	}
	b.fieldOffsets[i] = b.offset
	b.offset += width
	if f.Ident != "" {
		b.align = max(b.align, fl.Align)
	}
}

// placeBitFieldMS follows the Microsoft rule: consecutive bit-fields share
// a storage unit only when their declared types have the same size.
func (b *recordBuilder) placeBitFieldMS(i int, f *native.FieldDecl, fl TypeLayout) {
	width := uint64(f.BitWidth)
	if width == 0 {
		b.endRun()
		b.fieldOffsets[i] = b.offset
		return
	}
	if !b.inRun || b.runSize != fl.Size || b.runUsed+width > fl.Size*8 {
		b.endRun()
		b.runStart = roundUp(ceilBytes(b.offset), fl.Align) * 8
		b.runSize = fl.Size
		b.runUsed = 0
		b.inRun = true
	}
	b.fieldOffsets[i] = b.runStart + b.runUsed
	b.runUsed += width
	b.offset = b.runStart + b.runSize*8
	b.align = max(b.align, fl.Align)
}

func (b *recordBuilder) endRun() {
	if !b.inRun {
		return
	}
	b.offset = b.runStart + b.runSize*8
	b.inRun = false
}
