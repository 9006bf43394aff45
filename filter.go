package facet

import "unsafe"

// Filter iterates all entities that have the component T, regardless of
// which backend stores it. Iteration follows the Next/Get protocol:
//
//	f := NewFilter[Position](world)
//	for f.Next() {
//		pos := f.Get()
//		...
//	}
//
// A filter caches the matching archetype list and refreshes it lazily when
// new archetypes appear.
type Filter[T any] struct {
	world    *World
	matching []*archetype
	current  *archetype
	id       uint8
	sparse   bool
	arcIdx   int
	row      int
	version  uint32
}

// NewFilter creates a Filter over all entities carrying component T.
func NewFilter[T any](w *World) *Filter[T] {
	id := componentID[T](w)
	f := &Filter[T]{
		world:  w,
		id:     id,
		sparse: w.components.compIDToKind[id] == StorageSparse,
	}
	f.Reset()
	return f
}

// Reset rewinds the filter to the beginning, refreshing the archetype list
// if the world grew new archetypes since the last pass.
func (f *Filter[T]) Reset() {
	w := f.world
	if f.version != w.archetypes.archetypeVersion || f.matching == nil {
		f.matching = f.matching[:0]
		for _, a := range w.archetypes.archetypes {
			if a.mask.containsBit(f.id) {
				f.matching = append(f.matching, a)
			}
		}
		f.version = w.archetypes.archetypeVersion
	}
	f.arcIdx = 0
	f.row = -1
	f.current = nil
}

// Next advances to the next matching entity. It returns false when the
// iteration is exhausted.
func (f *Filter[T]) Next() bool {
	for {
		if f.current == nil {
			if f.arcIdx >= len(f.matching) {
				return false
			}
			f.current = f.matching[f.arcIdx]
			f.arcIdx++
			f.row = -1
		}
		f.row++
		if f.row < f.current.size {
			return true
		}
		f.current = nil
	}
}

// Get returns a pointer to the current entity's T component. Valid only
// after Next has returned true.
func (f *Filter[T]) Get() *T {
	if f.sparse {
		set := f.world.sparse.get(f.id)
		return (*T)(set.get(f.current.entities[f.row]))
	}
	return (*T)(f.current.ptrAt(f.id, f.row))
}

// GetPtr returns the raw storage slot for the current entity's component.
func (f *Filter[T]) GetPtr() unsafe.Pointer {
	if f.sparse {
		return f.world.sparse.get(f.id).get(f.current.entities[f.row])
	}
	return f.current.ptrAt(f.id, f.row)
}

// Entity returns the entity at the current iteration position.
func (f *Filter[T]) Entity() Entity {
	return f.current.entities[f.row]
}

// Count returns the number of entities the filter currently matches.
func (f *Filter[T]) Count() int {
	f.Reset()
	total := 0
	for _, a := range f.matching {
		total += a.size
	}
	return total
}
