package layout

import (
	"fortio.org/safecast"

	"ffigen/internal/native"
)

// TypeLayout is the ABI layout of a type for a specific Target. Size and
// Align are in bytes.
type TypeLayout struct {
	Size  uint64
	Align uint64

	// Record-only:
	FieldOffsets []uint64                     // bits, indexed like RecordDecl.Fields
	BaseOffsets  map[*native.RecordDecl]int64 // bytes
	VBaseOffsets map[*native.RecordDecl]int64 // bytes
	// Empty marks C++ records without data that take no space as a base.
	Empty bool
	// DataSize is the non-virtual size without tail padding, in bytes.
	// Bases placed after this record may reuse the padding. It equals Size
	// for POD records.
	DataSize uint64
}

func (l TypeLayout) dataSize() uint64 {
	if l.DataSize == 0 {
		return l.Size
	}
	return l.DataSize
}

// LayoutEngine answers layout queries for native types. Layouts recorded by
// the frontend win; otherwise the C and Itanium C++ rules of Target are
// applied.
type LayoutEngine struct {
	Target Target

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		cache:  newCache(),
	}
}

type layoutState struct {
	stack []*native.RecordDecl
	index map[*native.RecordDecl]int
}

func newLayoutState() *layoutState {
	return &layoutState{
		stack: nil,
		index: make(map[*native.RecordDecl]int, 32),
	}
}

// LayoutOf computes the layout of a type. Record layouts are cached.
func (e *LayoutEngine) LayoutOf(t native.Type) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	layout, err := e.layoutOf(t, newLayoutState())
	if err != nil {
		return layout, err
	}
	return layout, nil
}

// RecordLayout returns the layout of a record definition.
func (e *LayoutEngine) RecordLayout(rd *native.RecordDecl) (TypeLayout, error) {
	return e.LayoutOf(&native.RecordType{Decl: rd})
}

// TypeSize returns the size of t in bits.
func (e *LayoutEngine) TypeSize(t native.Type) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Size * 8, err
}

// TypeAlign returns the alignment of t in bits.
func (e *LayoutEngine) TypeAlign(t native.Type) (uint64, error) {
	l, err := e.LayoutOf(t)
	return l.Align * 8, err
}

// FieldOffset returns the bit offset of field idx of rd.
func (e *LayoutEngine) FieldOffset(rd *native.RecordDecl, fieldIdx int) (uint64, error) {
	l, err := e.RecordLayout(rd)
	if err != nil {
		return 0, err
	}
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0, nil
	}
	return l.FieldOffsets[fieldIdx], nil
}

// BaseOffset returns the byte offset of the non-virtual base within rd.
func (e *LayoutEngine) BaseOffset(rd, base *native.RecordDecl) (int64, error) {
	l, err := e.RecordLayout(rd)
	if err != nil {
		return 0, err
	}
	return l.BaseOffsets[definitionOf(base)], nil
}

// VBaseOffset returns the byte offset of the virtual base within rd.
func (e *LayoutEngine) VBaseOffset(rd, base *native.RecordDecl) (int64, error) {
	l, err := e.RecordLayout(rd)
	if err != nil {
		return 0, err
	}
	return l.VBaseOffsets[definitionOf(base)], nil
}

func definitionOf(rd *native.RecordDecl) *native.RecordDecl {
	if rd == nil {
		return nil
	}
	if def := rd.Definition(); def != nil {
		return def
	}
	return rd
}

func (e *LayoutEngine) layoutOf(t native.Type, state *layoutState) (TypeLayout, *LayoutError) {
	canon := native.Canonical(t)
	rt, ok := canon.(*native.RecordType)
	if !ok {
		return e.computeLayout(canon, state)
	}
	if rt.Decl == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: native.TypeString(t)}
	}
	def := rt.Decl.Definition()
	if def == nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrIncomplete, Type: native.TypeString(t)}
	}
	if def.Dependent {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrDependent, Type: native.TypeString(t)}
	}
	if cached, ok := e.cache.get(def); ok {
		return cached.Layout, cached.Err
	}

	if idx, ok := state.index[def]; ok {
		cycleDecls := append([]*native.RecordDecl(nil), state.stack[idx:]...)
		cycleDecls = append(cycleDecls, def)
		cycle := make([]string, 0, len(cycleDecls))
		for _, d := range cycleDecls {
			cycle = append(cycle, native.QualifiedName(d))
		}
		err := &LayoutError{
			Kind:  LayoutErrRecursiveUnsized,
			Type:  native.QualifiedName(def),
			Cycle: cycle,
		}
		e.cache.put(def, &cacheEntry{Layout: TypeLayout{Size: 0, Align: 1}, Err: err})
		return TypeLayout{Size: 0, Align: 1}, err
	}

	state.index[def] = len(state.stack)
	state.stack = append(state.stack, def)
	var (
		layout TypeLayout
		err    *LayoutError
	)
	if def.Layout != nil {
		layout = frontendLayout(def.Layout)
	} else {
		layout, err = e.recordLayout(def, state)
	}
	state.stack = state.stack[:len(state.stack)-1]
	delete(state.index, def)

	e.cache.put(def, &cacheEntry{Layout: layout, Err: err})
	return layout, err
}

func frontendLayout(rl *native.RecordLayout) TypeLayout {
	align := rl.Align / 8
	if align == 0 {
		align = 1
	}
	l := TypeLayout{
		Size:         rl.Size / 8,
		Align:        align,
		FieldOffsets: append([]uint64(nil), rl.FieldOffsets...),
		BaseOffsets:  make(map[*native.RecordDecl]int64, len(rl.BaseOffsets)),
		VBaseOffsets: make(map[*native.RecordDecl]int64, len(rl.VBaseOffsets)),
	}
	for rd, off := range rl.BaseOffsets {
		l.BaseOffsets[definitionOf(rd)] = off
	}
	for rd, off := range rl.VBaseOffsets {
		l.VBaseOffsets[definitionOf(rd)] = off
	}
	return l
}

func bytesToInt64(n uint64, what string) (int64, *LayoutError) {
	v, err := safecast.Conv[int64](n)
	if err != nil {
		return 0, &LayoutError{Kind: LayoutErrOverflow, Type: what, Err: err}
	}
	return v, nil
}
