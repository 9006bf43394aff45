package facet

import "unsafe"

// SetComponent adds or replaces the component of type T on an entity. Adding
// a component the entity does not yet have moves it to a new archetype; the
// slot's added and changed ticks are stamped with the current change tick.
// Replacing an existing value stamps only the changed tick. Invalid entities
// are ignored.
func SetComponent[T any](w *World, e Entity, value T) {
	if !w.IsValid(e) {
		return
	}
	id := componentID[T](w)
	now := w.changeTick
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]

	if w.components.compIDToKind[id] == StorageSparse {
		set := w.sparse.getOrCreate(id, w.components.compIDToType[id], w.components.compIDToSize[id])
		had := set.has(e)
		p := set.alloc(e, now)
		*(*T)(p) = value
		if !had {
			newMask := a.mask
			newMask.set(id)
			target := w.getOrCreateArchetype(newMask, w.specsFor(newMask))
			w.moveEntity(e, meta, target)
		}
		return
	}

	if a.mask.containsBit(id) {
		*(*T)(a.ptrAt(id, meta.index)) = value
		a.changedTicks[id][meta.index] = now
		return
	}
	newMask := a.mask
	newMask.set(id)
	target := w.getOrCreateArchetype(newMask, w.specsFor(newMask))
	row := w.moveEntity(e, meta, target)
	*(*T)(target.ptrAt(id, row)) = value
	target.addedTicks[id][row] = now
	target.changedTicks[id][row] = now
}

// GetComponent returns a pointer to the entity's component of type T, or
// false if the entity is dead or lacks the component. Writes through the
// pointer are not tick-stamped; use SetComponent or a mutable query when
// change detection matters.
func GetComponent[T any](w *World, e Entity) (*T, bool) {
	if !w.IsValid(e) {
		return nil, false
	}
	id, ok := lookupComponentID[T](w)
	if !ok {
		return nil, false
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return nil, false
	}
	if w.components.compIDToKind[id] == StorageSparse {
		set := w.sparse.get(id)
		if set == nil {
			return nil, false
		}
		p := set.get(e)
		if p == nil {
			return nil, false
		}
		return (*T)(p), true
	}
	return (*T)(a.ptrAt(id, meta.index)), true
}

// MarkChanged stamps the entity's component of type T as changed at the
// current tick without touching its value.
func MarkChanged[T any](w *World, e Entity) {
	if !w.IsValid(e) {
		return
	}
	id, ok := lookupComponentID[T](w)
	if !ok {
		return
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return
	}
	if w.components.compIDToKind[id] == StorageSparse {
		if set := w.sparse.get(id); set != nil {
			if slot := set.slot(e); slot >= 0 {
				set.changed[slot] = w.changeTick
			}
		}
		return
	}
	a.changedTicks[id][meta.index] = w.changeTick
}

// componentTicks returns the added and changed stamps for the entity's
// component, with ok false if absent.
func componentTicks(w *World, e Entity, id uint8) (added, changed Tick, ok bool) {
	if !w.IsValid(e) {
		return 0, 0, false
	}
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return 0, 0, false
	}
	if w.components.compIDToKind[id] == StorageSparse {
		set := w.sparse.get(id)
		if set == nil {
			return 0, 0, false
		}
		slot := set.slot(e)
		if slot < 0 {
			return 0, 0, false
		}
		return set.added[slot], set.changed[slot], true
	}
	return a.addedTicks[id][meta.index], a.changedTicks[id][meta.index], true
}

// RemoveComponent removes the component of type T from an entity, moving it
// to the archetype without that component. Entities without the component
// are left untouched.
func RemoveComponent[T any](w *World, e Entity) {
	if !w.IsValid(e) {
		return
	}
	id, ok := lookupComponentID[T](w)
	if !ok {
		return
	}
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return
	}
	if w.components.compIDToKind[id] == StorageSparse {
		if set := w.sparse.get(id); set != nil {
			set.remove(e)
		}
	}
	newMask := a.mask
	newMask.unset(id)
	target := w.getOrCreateArchetype(newMask, w.specsFor(newMask))
	w.moveEntity(e, meta, target)
}

// componentPtr returns the raw storage slot for an entity's component in
// either backend, or nil if absent. Internal helper for the interface
// fetches.
func componentPtr(w *World, e Entity, id uint8) unsafe.Pointer {
	meta := w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !a.mask.containsBit(id) {
		return nil
	}
	if w.components.compIDToKind[id] == StorageSparse {
		set := w.sparse.get(id)
		if set == nil {
			return nil
		}
		return set.get(e)
	}
	return a.ptrAt(id, meta.index)
}
