package facet

import (
	"fmt"
	"reflect"
)

// fetchMode selects which rows an interface query yields.
type fetchMode uint8

const (
	modeAll fetchMode = iota
	modeAdded
	modeChanged
)

// sourceKind records where one archetype's single implementation of an
// interface lives.
type sourceKind uint8

const (
	srcUninit sourceKind = iota
	srcTable
	srcSparse
	srcNone
)

// oneSource caches the resolved storage location of the one implementation
// an archetype holds. Resolved lazily on first visit and reused for every
// row of the archetype.
type oneSource[I any] struct {
	ctor ctorFunc[I]
	set  *sparseSet
	size uintptr
	id   uint8
	kind sourceKind
}

// oneBase carries the shared machinery of the single-implementation
// queries: the archetype list, per-archetype source cache and the
// change-detection window.
type oneBase[I any] struct {
	world    *World
	reg      *traitRegistry[I]
	matching []*archetype
	sources  []oneSource[I]
	current  *archetype
	src      *oneSource[I]
	window   tickWindow
	lastPass Tick
	version  uint32
	mode     fetchMode
	arcIdx   int
	row      int
}

func newOneBase[I any](w *World, mode fetchMode) oneBase[I] {
	b := oneBase[I]{
		world: w,
		reg:   planQuery[I](w),
		mode:  mode,
	}
	b.Reset()
	return b
}

// Reset rewinds the query and advances its change-detection window: the
// interval becomes (previous Reset's tick, current tick].
func (b *oneBase[I]) Reset() {
	w := b.world
	if b.version != w.archetypes.archetypeVersion || b.matching == nil {
		b.matching = b.matching[:0]
		b.sources = b.sources[:0]
		for _, a := range w.archetypes.archetypes {
			if b.reg.matchesExactlyOne(a.mask) {
				b.matching = append(b.matching, a)
				b.sources = append(b.sources, oneSource[I]{kind: srcUninit})
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
	b.src = nil
}

// SetWindow pins the change-detection interval to (lastRun, thisRun] and
// rewinds the query without advancing its internal pass marker: the next
// plain Reset computes its window as if this pass never ran.
func (b *oneBase[I]) SetWindow(lastRun, thisRun Tick) {
	saved := b.lastPass
	b.Reset()
	b.lastPass = saved
	b.window = tickWindow{lastRun: lastRun, thisRun: thisRun}
}

// locate resolves where archetype a stores its implementation of I. Table
// sublists are searched before sparse sublists, in registration order.
func (b *oneBase[I]) locate(a *archetype, src *oneSource[I]) {
	for i := range b.reg.tableImpls {
		im := &b.reg.tableImpls[i]
		if a.mask.containsBit(im.id) {
			src.kind = srcTable
			src.id = im.id
			src.size = im.size
			src.ctor = im.ctor
			return
		}
	}
	for i := range b.reg.sparseImpls {
		im := &b.reg.sparseImpls[i]
		if a.mask.containsBit(im.id) {
			src.kind = srcSparse
			src.id = im.id
			src.size = im.size
			src.ctor = im.ctor
			src.set = b.world.sparse.get(im.id)
			if src.set != nil {
				return
			}
			break
		}
	}
	if b.world.debugChecks {
		panic(fmt.Sprintf("facet: archetype matched %s but no implementation column was found",
			reflect.TypeFor[I]()))
	}
	src.kind = srcNone
}

// Next advances to the next matching entity, returning false when the
// iteration is exhausted. Added/changed variants skip rows whose stamps
// fall outside the window.
func (b *oneBase[I]) Next() bool {
	for {
		if b.current == nil {
			if b.arcIdx >= len(b.matching) {
				return false
			}
			b.current = b.matching[b.arcIdx]
			b.src = &b.sources[b.arcIdx]
			if b.src.kind == srcUninit {
				b.locate(b.current, b.src)
			}
			b.arcIdx++
			b.row = -1
			if b.src.kind == srcNone {
				b.current = nil
				continue
			}
		}
		b.row++
		if b.row >= b.current.size {
			b.current = nil
			continue
		}
		if b.mode == modeAll || b.rowPasses() {
			return true
		}
	}
}

// rowPasses applies the added/changed filter to the current row.
func (b *oneBase[I]) rowPasses() bool {
	added, changed := b.rowTicks()
	switch b.mode {
	case modeAdded:
		return added.isNewerThan(b.window.lastRun, b.window.thisRun)
	case modeChanged:
		return changed.isNewerThan(b.window.lastRun, b.window.thisRun)
	}
	return true
}

// rowTicks reads the current row's stamps from whichever backend holds it.
func (b *oneBase[I]) rowTicks() (added, changed Tick) {
	if b.src.kind == srcSparse {
		slot := b.src.set.slot(b.current.entities[b.row])
		if slot < 0 {
			return 0, 0
		}
		return b.src.set.added[slot], b.src.set.changed[slot]
	}
	id := b.src.id
	return b.current.addedTicks[id][b.row], b.current.changedTicks[id][b.row]
}

// Entity returns the entity at the current iteration position.
func (b *oneBase[I]) Entity() Entity {
	return b.current.entities[b.row]
}

// Count returns the number of entities whose archetype holds exactly one
// implementation of I. It rewinds the query. Count ignores added/changed
// filtering: it reports the full candidate set, not the rows a filtered
// Next would yield.
func (b *oneBase[I]) Count() int {
	b.Reset()
	total := 0
	for _, a := range b.matching {
		total += a.size
	}
	return total
}

// One iterates every entity holding exactly one registered implementation
// of interface I, yielding read-only handles. Entities whose archetype
// holds zero or several implementations are excluded.
//
//	q := NewOne[Messenger](world)
//	for q.Next() {
//		ref := q.Get()
//		ref.Value().Send("hello")
//	}
type One[I any] struct {
	oneBase[I]
}

// NewOne creates a query over entities with exactly one implementation of I.
// Constructing it seals I's registry and declares read access to every
// registered implementation in a fresh access set.
func NewOne[I any](w *World) *One[I] {
	return NewOneWith[I](w, &Access{})
}

// NewOneWith is NewOne declaring into a caller-owned access set, so several
// queries of one signature share conflict tracking. It panics if the read
// claim overlaps a write already declared in a.
func NewOneWith[I any](w *World, a *Access) *One[I] {
	DeclareRead[I](w, a)
	return &One[I]{newOneBase[I](w, modeAll)}
}

// NewOneAdded creates a One query that yields only entities whose
// implementation was added within the query's tick window.
func NewOneAdded[I any](w *World) *One[I] {
	return NewOneAddedWith[I](w, &Access{})
}

// NewOneAddedWith is NewOneAdded declaring into a caller-owned access set.
func NewOneAddedWith[I any](w *World, a *Access) *One[I] {
	DeclareRead[I](w, a)
	return &One[I]{newOneBase[I](w, modeAdded)}
}

// NewOneChanged creates a One query that yields only entities whose
// implementation was added or mutated within the query's tick window.
func NewOneChanged[I any](w *World) *One[I] {
	return NewOneChangedWith[I](w, &Access{})
}

// NewOneChangedWith is NewOneChanged declaring into a caller-owned access
// set.
func NewOneChangedWith[I any](w *World, a *Access) *One[I] {
	DeclareRead[I](w, a)
	return &One[I]{newOneBase[I](w, modeChanged)}
}

// Get returns the read-only handle for the current entity's implementation.
// Valid only after Next has returned true.
func (q *One[I]) Get() Ref[I] {
	added, changed := q.rowTicks()
	var value I
	if q.src.kind == srcSparse {
		value = q.src.ctor(q.src.set.get(q.current.entities[q.row]))
	} else {
		value = q.src.ctor(q.current.ptrAt(q.src.id, q.row))
	}
	return Ref[I]{value: value, added: added, changed: changed, window: q.window}
}

// OneMut is the writable counterpart of One. Handles obtained through Get
// stamp their slot's changed tick when the value is accessed via Value.
type OneMut[I any] struct {
	oneBase[I]
}

// NewOneMut creates a writable query over entities with exactly one
// implementation of I, declaring write access to every registered
// implementation in a fresh access set.
func NewOneMut[I any](w *World) *OneMut[I] {
	return NewOneMutWith[I](w, &Access{})
}

// NewOneMutWith is NewOneMut declaring into a caller-owned access set. It
// panics if the write claim overlaps any access already declared in a.
func NewOneMutWith[I any](w *World, a *Access) *OneMut[I] {
	DeclareWrite[I](w, a)
	return &OneMut[I]{newOneBase[I](w, modeAll)}
}

// NewOneMutAdded creates a writable One query filtered to entities whose
// implementation was added within the tick window.
func NewOneMutAdded[I any](w *World) *OneMut[I] {
	return NewOneMutAddedWith[I](w, &Access{})
}

// NewOneMutAddedWith is NewOneMutAdded declaring into a caller-owned access
// set.
func NewOneMutAddedWith[I any](w *World, a *Access) *OneMut[I] {
	DeclareWrite[I](w, a)
	return &OneMut[I]{newOneBase[I](w, modeAdded)}
}

// NewOneMutChanged creates a writable One query filtered to entities whose
// implementation changed within the tick window.
func NewOneMutChanged[I any](w *World) *OneMut[I] {
	return NewOneMutChangedWith[I](w, &Access{})
}

// NewOneMutChangedWith is NewOneMutChanged declaring into a caller-owned
// access set.
func NewOneMutChangedWith[I any](w *World, a *Access) *OneMut[I] {
	DeclareWrite[I](w, a)
	return &OneMut[I]{newOneBase[I](w, modeChanged)}
}

// Get returns the writable handle for the current entity's implementation.
// Valid only after Next has returned true.
func (q *OneMut[I]) Get() Mut[I] {
	if q.src.kind == srcSparse {
		p, added, changed := q.src.set.getWithTicks(q.current.entities[q.row])
		return Mut[I]{value: q.src.ctor(p), added: added, changed: changed, window: q.window}
	}
	id := q.src.id
	return Mut[I]{
		value:   q.src.ctor(q.current.ptrAt(id, q.row)),
		added:   &q.current.addedTicks[id][q.row],
		changed: &q.current.changedTicks[id][q.row],
		window:  q.window,
	}
}

// HasAny reports whether the entity holds at least one registered
// implementation of I.
func HasAny[I any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	reg := planQuery[I](w)
	meta := w.entities.metas[e.ID]
	return reg.matchesAny(w.archetypes.archetypes[meta.archetypeIndex].mask)
}

// HasExactlyOne reports whether the entity holds exactly one registered
// implementation of I.
func HasExactlyOne[I any](w *World, e Entity) bool {
	if !w.IsValid(e) {
		return false
	}
	reg := planQuery[I](w)
	meta := w.entities.metas[e.ID]
	return reg.matchesExactlyOne(w.archetypes.archetypes[meta.archetypeIndex].mask)
}
