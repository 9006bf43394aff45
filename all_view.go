package facet

import "unsafe"

// ReadTraits is a per-entity view over every implementation of I the entity
// holds. Iteration visits table-backed implementations first, then
// sparse-backed ones, each sublist in registration order. The view is cheap
// to copy and valid only while the owning query stays on this entity.
type ReadTraits[I any] struct {
	world  *World
	reg    *traitRegistry[I]
	arch   *archetype
	entity Entity
	window tickWindow
	row    int
}

// Iter returns an iterator over all of the entity's implementations.
func (v ReadTraits[I]) Iter() RefIter[I] {
	return RefIter[I]{view: v, idx: -1, mode: modeAll}
}

// IterAdded returns an iterator over the implementations added within the
// owning query's tick window.
func (v ReadTraits[I]) IterAdded() RefIter[I] {
	return RefIter[I]{view: v, idx: -1, mode: modeAdded}
}

// IterChanged returns an iterator over the implementations added or mutated
// within the owning query's tick window.
func (v ReadTraits[I]) IterChanged() RefIter[I] {
	return RefIter[I]{view: v, idx: -1, mode: modeChanged}
}

// Count returns how many implementations of I the entity holds.
func (v ReadTraits[I]) Count() int {
	return v.reg.mask.intersectionCount(v.arch.mask)
}

// Entity returns the entity this view covers.
func (v ReadTraits[I]) Entity() Entity {
	return v.entity
}

// viewImpl resolves the idx-th implementation present on the viewed entity,
// counting through the table sublist and then the sparse sublist. It
// reports the slot pointer's ticks alongside.
func viewImpl[I any](world *World, reg *traitRegistry[I], arch *archetype, row int, entity Entity, idx int) (im *implMeta[I], added, changed Tick, addedPtr, changedPtr *Tick, ok bool) {
	seen := 0
	for i := range reg.tableImpls {
		cand := &reg.tableImpls[i]
		if !arch.mask.containsBit(cand.id) {
			continue
		}
		if seen == idx {
			return cand,
				arch.addedTicks[cand.id][row], arch.changedTicks[cand.id][row],
				&arch.addedTicks[cand.id][row], &arch.changedTicks[cand.id][row],
				true
		}
		seen++
	}
	for i := range reg.sparseImpls {
		cand := &reg.sparseImpls[i]
		if !arch.mask.containsBit(cand.id) {
			continue
		}
		if seen == idx {
			set := world.sparse.get(cand.id)
			if set == nil {
				return nil, 0, 0, nil, nil, false
			}
			_, ap, cp := set.getWithTicks(entity)
			if ap == nil {
				return nil, 0, 0, nil, nil, false
			}
			return cand, *ap, *cp, ap, cp, true
		}
		seen++
	}
	return nil, 0, 0, nil, nil, false
}

// RefIter walks the implementations of one entity, yielding read-only
// handles.
type RefIter[I any] struct {
	view ReadTraits[I]
	cur  Ref[I]
	idx  int
	mode fetchMode
}

// Next advances to the entity's next implementation.
func (it *RefIter[I]) Next() bool {
	v := it.view
	for {
		it.idx++
		im, added, changed, _, _, ok := viewImpl(v.world, v.reg, v.arch, v.row, v.entity, it.idx)
		if !ok {
			return false
		}
		switch it.mode {
		case modeAdded:
			if !added.isNewerThan(v.window.lastRun, v.window.thisRun) {
				continue
			}
		case modeChanged:
			if !changed.isNewerThan(v.window.lastRun, v.window.thisRun) {
				continue
			}
		}
		var p unsafe.Pointer
		if im.kind == StorageSparse {
			p = v.world.sparse.get(im.id).get(v.entity)
		} else {
			p = v.arch.ptrAt(im.id, v.row)
		}
		it.cur = Ref[I]{value: im.ctor(p), added: added, changed: changed, window: v.window}
		return true
	}
}

// Get returns the current handle. Valid only after Next has returned true.
func (it *RefIter[I]) Get() Ref[I] {
	return it.cur
}

// WriteTraits is the writable per-entity view over every implementation of
// I the entity holds. Iteration order matches ReadTraits.
type WriteTraits[I any] struct {
	world  *World
	reg    *traitRegistry[I]
	arch   *archetype
	entity Entity
	window tickWindow
	row    int
}

// Iter returns a read-only iterator over the entity's implementations.
// Reading through a writable view does not stamp any ticks.
func (v WriteTraits[I]) Iter() RefIter[I] {
	return RefIter[I]{view: ReadTraits[I](v), idx: -1, mode: modeAll}
}

// IterMut returns a writable iterator over all of the entity's
// implementations.
func (v WriteTraits[I]) IterMut() MutIter[I] {
	return MutIter[I]{view: v, idx: -1, mode: modeAll}
}

// IterMutAdded returns a writable iterator over the implementations added
// within the owning query's tick window.
func (v WriteTraits[I]) IterMutAdded() MutIter[I] {
	return MutIter[I]{view: v, idx: -1, mode: modeAdded}
}

// IterMutChanged returns a writable iterator over the implementations added
// or mutated within the owning query's tick window.
func (v WriteTraits[I]) IterMutChanged() MutIter[I] {
	return MutIter[I]{view: v, idx: -1, mode: modeChanged}
}

// Count returns how many implementations of I the entity holds.
func (v WriteTraits[I]) Count() int {
	return v.reg.mask.intersectionCount(v.arch.mask)
}

// Entity returns the entity this view covers.
func (v WriteTraits[I]) Entity() Entity {
	return v.entity
}

// MutIter walks the implementations of one entity, yielding writable
// handles.
type MutIter[I any] struct {
	view WriteTraits[I]
	cur  Mut[I]
	idx  int
	mode fetchMode
}

// Next advances to the entity's next implementation.
func (it *MutIter[I]) Next() bool {
	v := it.view
	for {
		it.idx++
		im, added, changed, ap, cp, ok := viewImpl(v.world, v.reg, v.arch, v.row, v.entity, it.idx)
		if !ok {
			return false
		}
		switch it.mode {
		case modeAdded:
			if !added.isNewerThan(v.window.lastRun, v.window.thisRun) {
				continue
			}
		case modeChanged:
			if !changed.isNewerThan(v.window.lastRun, v.window.thisRun) {
				continue
			}
		}
		var p unsafe.Pointer
		if im.kind == StorageSparse {
			p = v.world.sparse.get(im.id).get(v.entity)
		} else {
			p = v.arch.ptrAt(im.id, v.row)
		}
		it.cur = Mut[I]{value: im.ctor(p), added: ap, changed: cp, window: v.window}
		return true
	}
}

// Get returns the current handle. Valid only after Next has returned true.
func (it *MutIter[I]) Get() Mut[I] {
	return it.cur
}
