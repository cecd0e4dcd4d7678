package irgen

import (
	"fmt"

	"fortio.org/safecast"

	"ffigen/internal/native"
)

type entry struct {
	id      uint32
	emitted bool
}

// Registry maps native declarations to IDs and tracks which ones were
// already emitted. Records are keyed by their definition, so a forward
// declaration and its definition share one entry.
//
// The Registry also holds the stack of declarations under construction;
// IsCurDecl consults it to break self-references.
type Registry struct {
	entries  map[native.Decl]*entry
	next     uint32
	building []native.Decl
}

// NewRegistry returns an empty registry. The first ID it hands out is 1.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[native.Decl]*entry)}
}

func key(d native.Decl) native.Decl {
	if rd, ok := d.(*native.RecordDecl); ok {
		if def := rd.Definition(); def != nil {
			return def
		}
	}
	return d
}

func (r *Registry) lookup(d native.Decl) *entry {
	if d == nil {
		return nil
	}
	return r.entries[key(d)]
}

func (r *Registry) ensure(d native.Decl) *entry {
	k := key(d)
	e := r.entries[k]
	if e == nil {
		e = &entry{}
		r.entries[k] = e
	}
	return e
}

// AddDecl registers d and returns its ID. Calling it again for the same
// declaration returns the same ID. A nil declaration stands for file scope
// and yields 0.
func (r *Registry) AddDecl(d native.Decl) uint32 {
	if d == nil {
		return 0
	}
	e := r.ensure(d)
	if e.id == 0 {
		r.next++
		e.id = r.next
	}
	return e.id
}

// DeclID returns the ID of d without registering it; 0 when d was never
// registered.
func (r *Registry) DeclID(d native.Decl) uint32 {
	if e := r.lookup(d); e != nil {
		return e.id
	}
	return 0
}

// IsCurDecl reports whether d is currently being constructed.
func (r *Registry) IsCurDecl(d native.Decl) bool {
	if d == nil {
		return false
	}
	k := key(d)
	for _, b := range r.building {
		if b == k {
			return true
		}
	}
	return false
}

// Begin pushes d onto the construction stack.
func (r *Registry) Begin(d native.Decl) {
	r.building = append(r.building, key(d))
}

// End pops d from the construction stack. Calls must nest.
func (r *Registry) End(d native.Decl) {
	n := len(r.building)
	if n == 0 || r.building[n-1] != key(d) {
		panic(fmt.Sprintf("irgen: unbalanced End for %s", native.KindName(d)))
	}
	r.building = r.building[:n-1]
}

// Current returns the innermost declaration under construction, or nil.
func (r *Registry) Current() native.Decl {
	if len(r.building) == 0 {
		return nil
	}
	return r.building[len(r.building)-1]
}

// MarkEmitted records that the body of d has been written. It does not
// assign an ID.
func (r *Registry) MarkEmitted(d native.Decl) {
	if d == nil {
		return
	}
	r.ensure(d).emitted = true
}

// Emitted reports whether MarkEmitted was called for d.
func (r *Registry) Emitted(d native.Decl) bool {
	e := r.lookup(d)
	return e != nil && e.emitted
}

// Len returns the number of IDs handed out.
func (r *Registry) Len() int {
	n, err := safecast.Conv[int](r.next)
	if err != nil {
		panic(fmt.Errorf("registry size overflow: %w", err))
	}
	return n
}
