package facet

// allBase carries the shared machinery of the multi-implementation queries:
// entities match when their archetype holds at least one registered
// implementation of I.
type allBase[I any] struct {
	world    *World
	reg      *traitRegistry[I]
	matching []*archetype
	current  *archetype
	window   tickWindow
	lastPass Tick
	version  uint32
	arcIdx   int
	row      int
}

func newAllBase[I any](w *World) allBase[I] {
	b := allBase[I]{
		world: w,
		reg:   planQuery[I](w),
	}
	b.Reset()
	return b
}

// Reset rewinds the query and advances its change-detection window: the
// interval becomes (previous Reset's tick, current tick].
func (b *allBase[I]) Reset() {
	w := b.world
	if b.version != w.archetypes.archetypeVersion || b.matching == nil {
		b.matching = b.matching[:0]
		for _, a := range w.archetypes.archetypes {
			if b.reg.matchesAny(a.mask) {
				b.matching = append(b.matching, a)
			}
		}
		b.version = w.archetypes.archetypeVersion
	}
	b.window.lastRun = b.lastPass
	b.window.thisRun = w.changeTick
	b.lastPass = w.changeTick
	b.arcIdx = 0
	b.row = -1
	b.current = nil
}

// SetWindow pins the change-detection interval to (lastRun, thisRun] and
// rewinds the query without advancing its internal pass marker: the next
// plain Reset computes its window as if this pass never ran.
func (b *allBase[I]) SetWindow(lastRun, thisRun Tick) {
	saved := b.lastPass
	b.Reset()
	b.lastPass = saved
	b.window = tickWindow{lastRun: lastRun, thisRun: thisRun}
}

// Next advances to the next matching entity.
func (b *allBase[I]) Next() bool {
	for {
		if b.current == nil {
			if b.arcIdx >= len(b.matching) {
				return false
			}
			b.current = b.matching[b.arcIdx]
			b.arcIdx++
			b.row = -1
		}
		b.row++
		if b.row < b.current.size {
			return true
		}
		b.current = nil
	}
}

// Entity returns the entity at the current iteration position.
func (b *allBase[I]) Entity() Entity {
	return b.current.entities[b.row]
}

// Count returns the number of entities whose archetype holds at least one
// implementation of I. It rewinds the query and ignores any added/changed
// filtering applied by the view iterators.
func (b *allBase[I]) Count() int {
	b.Reset()
	total := 0
	for _, a := range b.matching {
		total += a.size
	}
	return total
}

// All iterates every entity holding at least one registered implementation
// of interface I. Get returns a per-entity view over all of the entity's
// implementations:
//
//	q := NewAll[Messenger](world)
//	for q.Next() {
//		it := q.Get().Iter()
//		for it.Next() {
//			it.Get().Value().Send("hello")
//		}
//	}
type All[I any] struct {
	allBase[I]
}

// NewAll creates a query over entities with one or more implementations of
// I. Constructing it seals I's registry and declares read access to every
// registered implementation in a fresh access set.
func NewAll[I any](w *World) *All[I] {
	return NewAllWith[I](w, &Access{})
}

// NewAllWith is NewAll declaring into a caller-owned access set, so several
// queries of one signature share conflict tracking. It panics if the read
// claim overlaps a write already declared in a.
func NewAllWith[I any](w *World, a *Access) *All[I] {
	DeclareRead[I](w, a)
	return &All[I]{newAllBase[I](w)}
}

// Get returns the read view over the current entity's implementations.
// Valid only after Next has returned true.
func (q *All[I]) Get() ReadTraits[I] {
	return ReadTraits[I]{
		world:  q.world,
		reg:    q.reg,
		arch:   q.current,
		row:    q.row,
		entity: q.current.entities[q.row],
		window: q.window,
	}
}

// AllMut is the writable counterpart of All; its views yield Mut handles.
type AllMut[I any] struct {
	allBase[I]
}

// NewAllMut creates a writable query over entities with one or more
// implementations of I, declaring write access to every registered
// implementation in a fresh access set.
func NewAllMut[I any](w *World) *AllMut[I] {
	return NewAllMutWith[I](w, &Access{})
}

// NewAllMutWith is NewAllMut declaring into a caller-owned access set. It
// panics if the write claim overlaps any access already declared in a.
func NewAllMutWith[I any](w *World, a *Access) *AllMut[I] {
	DeclareWrite[I](w, a)
	return &AllMut[I]{newAllBase[I](w)}
}

// Get returns the writable view over the current entity's implementations.
// Valid only after Next has returned true.
func (q *AllMut[I]) Get() WriteTraits[I] {
	return WriteTraits[I]{
		world:  q.world,
		reg:    q.reg,
		arch:   q.current,
		row:    q.row,
		entity: q.current.entities[q.row],
		window: q.window,
	}
}
