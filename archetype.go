package facet

import (
	"reflect"
	"unsafe"
)

// compSpec bundles a component type's ID, reflect.Type, byte size and storage
// backend.
type compSpec struct {
	typ  reflect.Type
	size uintptr
	id   uint8
	kind StorageKind
}

// archetype holds storage for one unique component-set mask. The mask covers
// both storage backends, but only table-backend components occupy columns
// here; sparse-backend component data lives in the World's sparse sets.
type archetype struct {
	compPointers [MaxComponentTypes]unsafe.Pointer
	addedTicks   [MaxComponentTypes][]Tick
	changedTicks [MaxComponentTypes][]Tick
	compSizes    [MaxComponentTypes]uintptr
	entities     []Entity
	tableOrder   []uint8 // table-backend component IDs in this archetype
	sparseOrder  []uint8 // sparse-backend component IDs in this archetype
	mask         bitmask256
	index        int // position in world.archetypes
	size         int // current entity count
	cap          int // allocated rows in every column
}

// hasColumn reports whether this archetype stores a column for the component.
// Sparse-backend components are part of the mask but never have a column.
func (a *archetype) hasColumn(id uint8) bool {
	return a.mask.containsBit(id) && a.compPointers[id] != nil
}

// ptrAt computes the byte address of one component inside a column:
// base + row*size. The caller must ensure the row is in bounds and the
// component is table-backed in this archetype.
func (a *archetype) ptrAt(id uint8, row int) unsafe.Pointer {
	return unsafe.Add(a.compPointers[id], uintptr(row)*a.compSizes[id])
}

// ensureCap grows every column (and the parallel tick arrays) so that at
// least n rows fit. Columns are allocated through reflect.MakeSlice so the
// garbage collector keeps scanning pointer-bearing components; only the
// unsafe base address is retained for row arithmetic.
func (a *archetype) ensureCap(w *World, n int) {
	if n <= a.cap {
		return
	}
	newCap := a.cap * 2
	if newCap < 8 {
		newCap = 8
	}
	for newCap < n {
		newCap *= 2
	}
	for _, id := range a.tableOrder {
		typ := w.components.compIDToType[id]
		slice := reflect.MakeSlice(reflect.SliceOf(typ), newCap, newCap)
		base := slice.UnsafePointer()
		if a.size > 0 {
			memCopy(base, a.compPointers[id], uintptr(a.size)*a.compSizes[id])
		}
		a.compPointers[id] = base

		added := make([]Tick, newCap)
		copy(added, a.addedTicks[id][:a.size])
		a.addedTicks[id] = added
		changed := make([]Tick, newCap)
		copy(changed, a.changedTicks[id][:a.size])
		a.changedTicks[id] = changed
	}
	ents := make([]Entity, newCap)
	copy(ents, a.entities[:a.size])
	a.entities = ents
	a.cap = newCap
}
