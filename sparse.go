package facet

import (
	"reflect"
	"unsafe"
)

// sparseSet stores every instance of one sparse-backend component type,
// densely packed and addressed per entity. Each dense slot carries its own
// added/changed ticks, mirroring the tick arrays of table columns.
type sparseSet struct {
	typ     reflect.Type
	base    unsafe.Pointer // dense component storage
	size    uintptr
	cap     int
	dense   []Entity
	added   []Tick
	changed []Tick
	index   []int32 // entity ID -> dense slot, -1 if absent
}

func newSparseSet(typ reflect.Type, size uintptr) *sparseSet {
	return &sparseSet{typ: typ, size: size}
}

// has reports whether the entity owns an instance of this component.
func (s *sparseSet) has(e Entity) bool {
	return int(e.ID) < len(s.index) && s.index[e.ID] >= 0
}

// get returns the byte address of the entity's component, or nil.
func (s *sparseSet) get(e Entity) unsafe.Pointer {
	if !s.has(e) {
		return nil
	}
	return unsafe.Add(s.base, uintptr(s.index[e.ID])*s.size)
}

// getWithTicks returns the byte address of the entity's component along with
// pointers to its added/changed tick slots, or nil if absent.
func (s *sparseSet) getWithTicks(e Entity) (unsafe.Pointer, *Tick, *Tick) {
	if !s.has(e) {
		return nil, nil, nil
	}
	slot := s.index[e.ID]
	return unsafe.Add(s.base, uintptr(slot)*s.size), &s.added[slot], &s.changed[slot]
}

// slot returns the entity's dense slot index, or -1.
func (s *sparseSet) slot(e Entity) int32 {
	if int(e.ID) >= len(s.index) {
		return -1
	}
	return s.index[e.ID]
}

// alloc reserves a dense slot for the entity and returns its byte address.
// The caller writes the component value and the set stamps both ticks with
// the given tick. Allocating for an entity that already has a slot returns
// the existing address and leaves the added tick alone.
func (s *sparseSet) alloc(e Entity, now Tick) unsafe.Pointer {
	if int(e.ID) >= len(s.index) {
		grown := make([]int32, int(e.ID)+1)
		copy(grown, s.index)
		for i := len(s.index); i < len(grown); i++ {
			grown[i] = -1
		}
		s.index = grown
	}
	if slot := s.index[e.ID]; slot >= 0 {
		s.changed[slot] = now
		return unsafe.Add(s.base, uintptr(slot)*s.size)
	}
	if len(s.dense) == s.cap {
		s.grow()
	}
	slot := len(s.dense)
	s.dense = append(s.dense, e)
	s.added = append(s.added, now)
	s.changed = append(s.changed, now)
	s.index[e.ID] = int32(slot)
	return unsafe.Add(s.base, uintptr(slot)*s.size)
}

// remove drops the entity's component, swap-filling the dense hole.
func (s *sparseSet) remove(e Entity) bool {
	if !s.has(e) {
		return false
	}
	slot := s.index[e.ID]
	last := int32(len(s.dense) - 1)
	if slot < last {
		memCopy(
			unsafe.Add(s.base, uintptr(slot)*s.size),
			unsafe.Add(s.base, uintptr(last)*s.size),
			s.size,
		)
		moved := s.dense[last]
		s.dense[slot] = moved
		s.added[slot] = s.added[last]
		s.changed[slot] = s.changed[last]
		s.index[moved.ID] = slot
	}
	s.dense = s.dense[:last]
	s.added = s.added[:last]
	s.changed = s.changed[:last]
	s.index[e.ID] = -1
	return true
}

// grow doubles the dense storage, preserving existing component bytes.
func (s *sparseSet) grow() {
	newCap := s.cap * 2
	if newCap < 8 {
		newCap = 8
	}
	slice := reflect.MakeSlice(reflect.SliceOf(s.typ), newCap, newCap)
	base := slice.UnsafePointer()
	if len(s.dense) > 0 {
		memCopy(base, s.base, uintptr(len(s.dense))*s.size)
	}
	s.base = base
	s.cap = newCap
}

// sparseStore owns one sparse set per sparse-backend component type.
type sparseStore struct {
	sets [MaxComponentTypes]*sparseSet
}

// get returns the sparse set for a component ID, or nil if the component is
// not sparse-backed or has never been stored.
func (st *sparseStore) get(id uint8) *sparseSet {
	return st.sets[id]
}

func (st *sparseStore) getOrCreate(id uint8, typ reflect.Type, size uintptr) *sparseSet {
	if st.sets[id] == nil {
		st.sets[id] = newSparseSet(typ, size)
	}
	return st.sets[id]
}
