package facet

import (
	"reflect"

	"github.com/rs/zerolog"
)

// componentRegistry maps component types to their IDs, sizes and storage
// backends.
type componentRegistry struct {
	compIDToType   [MaxComponentTypes]reflect.Type
	compTypeMap    map[reflect.Type]uint8
	compIDToSize   [MaxComponentTypes]uintptr
	compIDToKind   [MaxComponentTypes]StorageKind
	nextCompTypeID uint16 // counter for assigning new component type IDs
}

// entityRegistry tracks entity IDs, versions and locations.
type entityRegistry struct {
	freeIDs         []uint32     // stack of recycled entity IDs
	metas           []entityMeta // stores metadata for each entity, indexed by entity ID
	capacity        int          // current maximum number of entities
	initialCapacity int          // initial capacity, used for expansion
	nextEntityVer   uint32       // version for the next created entity
}

// archetypeRegistry tracks every archetype in the world.
type archetypeRegistry struct {
	maskToArcIndex   map[bitmask256]int // lookup mask -> archetype index
	archetypes       []*archetype       // list of all archetypes in the world
	archetypeVersion uint32             // incremented when a new archetype is created
}

// World owns all entities, component storage and interface registries.
type World struct {
	resources   *Resources
	archetypes  archetypeRegistry
	entities    entityRegistry
	components  componentRegistry
	sparse      sparseStore
	logger      zerolog.Logger
	changeTick  Tick
	debugChecks bool
}

// WorldOption configures a World during construction.
type WorldOption func(*World)

// WithLogger attaches a zerolog logger to the world. Registration events and
// diagnostics are emitted through it; the default logger discards everything.
func WithLogger(l zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = l
	}
}

// WithDebugChecks toggles internal-consistency panics. When enabled, a query
// driven over an archetype that violates its matching invariant panics
// instead of skipping the archetype. Enabled by default.
func WithDebugChecks(enabled bool) WorldOption {
	return func(w *World) {
		w.debugChecks = enabled
	}
}

// NewWorld creates and initializes a new World with a specified initial
// capacity for entities. It pre-allocates memory for the entity metadata and
// free ID list to optimize performance.
//
// Parameters:
//   - initialCapacity: The number of entities to pre-allocate memory for.
//     Choosing a suitable capacity can prevent re-allocations during runtime.
//   - opts: Optional configuration (WithLogger, WithDebugChecks).
//
// Returns:
//   - A pointer to the newly created World.
func NewWorld(initialCapacity int, opts ...WorldOption) *World {
	w := &World{
		resources: &Resources{},
		components: componentRegistry{
			compTypeMap: make(map[reflect.Type]uint8, 16),
		},
		entities: entityRegistry{
			capacity:        initialCapacity,
			initialCapacity: initialCapacity,
			freeIDs:         make([]uint32, initialCapacity),
			metas:           make([]entityMeta, initialCapacity),
			nextEntityVer:   1,
		},
		archetypes: archetypeRegistry{
			maskToArcIndex: make(map[bitmask256]int),
			archetypes:     make([]*archetype, 0, 16),
		},
		logger:      zerolog.Nop(),
		changeTick:  1,
		debugChecks: true,
	}
	for i := range w.entities.freeIDs {
		w.entities.freeIDs[i] = uint32(initialCapacity - 1 - i)
	}
	for i := range w.entities.metas {
		w.entities.metas[i].archetypeIndex = -1
		w.entities.metas[i].index = -1
		w.entities.metas[i].version = 0
	}
	for _, opt := range opts {
		opt(w)
	}
	// Pre-create the empty archetype
	var emptyMask bitmask256
	w.getOrCreateArchetype(emptyMask, nil)
	return w
}

// ChangeTick returns the current value of the world's generation clock.
func (w *World) ChangeTick() Tick {
	return w.changeTick
}

// AdvanceTick moves the generation clock forward by one. The host scheduler
// calls this between execution waves; components written afterwards are
// stamped with the new tick.
func (w *World) AdvanceTick() Tick {
	w.changeTick++
	return w.changeTick
}

// IsValid checks if the entity is currently alive in the world. An entity is
// valid if its ID is within bounds and its version matches the world's
// current version for that ID. This prevents "stale" entity references from
// accessing incorrect data after an entity has been deleted and its ID
// recycled.
func (w *World) IsValid(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// Resources returns the world's resource store. It holds global singleton
// values keyed by type; the interface registries live here as well.
func (w *World) Resources() *Resources {
	return w.resources
}

// getOrCreateArchetype returns an archetype for the given mask; if missing,
// records the component layout for it. Column memory is allocated lazily on
// first entity placement.
func (w *World) getOrCreateArchetype(mask bitmask256, specs []compSpec) *archetype {
	if idx, ok := w.archetypes.maskToArcIndex[mask]; ok {
		return w.archetypes.archetypes[idx]
	}
	a := &archetype{
		index: len(w.archetypes.archetypes),
		mask:  mask,
	}
	for _, sp := range specs {
		a.compSizes[sp.id] = sp.size
		switch sp.kind {
		case StorageSparse:
			a.sparseOrder = append(a.sparseOrder, sp.id)
		default:
			a.tableOrder = append(a.tableOrder, sp.id)
		}
	}
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.maskToArcIndex[mask] = a.index
	w.archetypes.archetypeVersion++
	return a
}

// specsFor collects the component specs for every ID set in a mask.
func (w *World) specsFor(mask bitmask256) []compSpec {
	specs := make([]compSpec, 0, 8)
	for id := 0; id < int(w.components.nextCompTypeID); id++ {
		if !mask.containsBit(uint8(id)) {
			continue
		}
		specs = append(specs, compSpec{
			id:   uint8(id),
			typ:  w.components.compIDToType[id],
			size: w.components.compIDToSize[id],
			kind: w.components.compIDToKind[id],
		})
	}
	return specs
}

// expand automatically increases entity capacity when full.
func (w *World) expand(additional int) {
	oldCap := w.entities.capacity
	newCap := oldCap * 2
	if newCap == 0 {
		newCap = 1
	}
	if newCap < oldCap+additional {
		newCap = oldCap + additional
	}
	delta := newCap - oldCap
	newMetas := make([]entityMeta, delta)
	for i := range newMetas {
		newMetas[i].archetypeIndex = -1
		newMetas[i].index = -1
		newMetas[i].version = 0
	}
	w.entities.metas = append(w.entities.metas, newMetas...)
	newFree := make([]uint32, delta)
	for i := range delta {
		newFree[i] = uint32(newCap - 1 - i)
	}
	w.entities.freeIDs = append(w.entities.freeIDs, newFree...)
	w.entities.capacity = newCap
}

// createEntity places a new entity into the given archetype.
func (w *World) createEntity(a *archetype) Entity {
	if len(w.entities.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.entities.freeIDs) - 1
	id := w.entities.freeIDs[last]
	w.entities.freeIDs = w.entities.freeIDs[:last]
	a.ensureCap(w, a.size+1)
	meta := &w.entities.metas[id]
	meta.archetypeIndex = a.index
	meta.index = a.size
	meta.version = w.entities.nextEntityVer
	ent := Entity{ID: id, Version: meta.version}
	a.entities[a.size] = ent
	a.size++
	w.entities.nextEntityVer++
	return ent
}

// CreateEntity creates a new entity with no components.
func (w *World) CreateEntity() Entity {
	var emptyMask bitmask256
	idx, ok := w.archetypes.maskToArcIndex[emptyMask]
	if !ok {
		panic("facet: empty archetype not found")
	}
	return w.createEntity(w.archetypes.archetypes[idx])
}

// CreateEntities creates a batch of entities with no components.
func (w *World) CreateEntities(count int) []Entity {
	ents := make([]Entity, count)
	for i := range ents {
		ents[i] = w.CreateEntity()
	}
	return ents
}

// RemoveEntity deletes an entity, dropping its components in both storage
// backends and recycling its ID. Stale or dead entities are ignored.
func (w *World) RemoveEntity(e Entity) {
	if !w.IsValid(e) {
		return
	}
	meta := &w.entities.metas[e.ID]
	a := w.archetypes.archetypes[meta.archetypeIndex]
	for _, id := range a.sparseOrder {
		if set := w.sparse.get(id); set != nil {
			set.remove(e)
		}
	}
	w.removeFromArchetype(a, meta)
	meta.archetypeIndex = -1
	meta.index = -1
	meta.version = 0
	w.entities.freeIDs = append(w.entities.freeIDs, e.ID)
}

// RemoveEntities removes a batch of entities.
func (w *World) RemoveEntities(ents []Entity) {
	for _, e := range ents {
		w.RemoveEntity(e)
	}
}

// removeFromArchetype removes the entity's row, swapping the last row into
// its place. Component bytes and tick stamps move together.
func (w *World) removeFromArchetype(a *archetype, meta *entityMeta) {
	idx := meta.index
	lastIdx := a.size - 1
	if idx < lastIdx {
		lastEnt := a.entities[lastIdx]
		a.entities[idx] = lastEnt
		for _, id := range a.tableOrder {
			memCopy(a.ptrAt(id, idx), a.ptrAt(id, lastIdx), a.compSizes[id])
			a.addedTicks[id][idx] = a.addedTicks[id][lastIdx]
			a.changedTicks[id][idx] = a.changedTicks[id][lastIdx]
		}
		w.entities.metas[lastEnt.ID].index = idx
	}
	a.size--
}

// moveEntity transfers an entity to a target archetype, copying the table
// components (and their ticks) present in both masks. Returns the entity's
// new row in the target.
func (w *World) moveEntity(e Entity, meta *entityMeta, target *archetype) int {
	src := w.archetypes.archetypes[meta.archetypeIndex]
	target.ensureCap(w, target.size+1)
	newIdx := target.size
	target.entities[newIdx] = e
	target.size++
	for _, id := range src.tableOrder {
		if !target.mask.containsBit(id) {
			continue
		}
		memCopy(target.ptrAt(id, newIdx), src.ptrAt(id, meta.index), src.compSizes[id])
		target.addedTicks[id][newIdx] = src.addedTicks[id][meta.index]
		target.changedTicks[id][newIdx] = src.changedTicks[id][meta.index]
	}
	w.removeFromArchetype(src, meta)
	meta.archetypeIndex = target.index
	meta.index = newIdx
	return newIdx
}
