package facet

// Without iterates every entity holding no implementation of interface I,
// the complement of All. It yields entities only; there is no data to
// fetch.
type Without[I any] struct {
	world    *World
	reg      *traitRegistry[I]
	matching []*archetype
	current  *archetype
	version  uint32
	arcIdx   int
	row      int
}

// NewWithout creates a query over entities with no implementation of I.
// Constructing it seals I's registry.
func NewWithout[I any](w *World) *Without[I] {
	q := &Without[I]{
		world: w,
		reg:   planQuery[I](w),
	}
	q.Reset()
	return q
}

// Reset rewinds the query, refreshing the archetype list if the world grew
// new archetypes.
func (q *Without[I]) Reset() {
	w := q.world
	if q.version != w.archetypes.archetypeVersion || q.matching == nil {
		q.matching = q.matching[:0]
		for _, a := range w.archetypes.archetypes {
			if !q.reg.matchesAny(a.mask) {
				q.matching = append(q.matching, a)
			}
		}
		q.version = w.archetypes.archetypeVersion
	}
	q.arcIdx = 0
	q.row = -1
	q.current = nil
}

// Next advances to the next matching entity.
func (q *Without[I]) Next() bool {
	for {
		if q.current == nil {
			if q.arcIdx >= len(q.matching) {
				return false
			}
			q.current = q.matching[q.arcIdx]
			q.arcIdx++
			q.row = -1
		}
		q.row++
		if q.row < q.current.size {
			return true
		}
		q.current = nil
	}
}

// Entity returns the entity at the current iteration position.
func (q *Without[I]) Entity() Entity {
	return q.current.entities[q.row]
}

// Count returns the number of entities with no implementation of I. It
// rewinds the query.
func (q *Without[I]) Count() int {
	q.Reset()
	total := 0
	for _, a := range q.matching {
		total += a.size
	}
	return total
}
