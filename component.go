package facet

import (
	"fmt"
	"reflect"
)

// StorageKind selects the backend a component type is stored in.
type StorageKind uint8

const (
	// StorageTable keeps component values in per-archetype columns. Iteration
	// over tables is a linear walk, the fastest access pattern.
	StorageTable StorageKind = iota
	// StorageSparse keeps component values in a per-type sparse set, indexed
	// by entity. Adding and removing a sparse component does not copy the
	// entity's other components.
	StorageSparse
)

// registerComponentType assigns an ID to typ under the given backend, or
// returns the existing ID. Registering the same type under two different
// backends panics.
func registerComponentType(w *World, typ reflect.Type, kind StorageKind) uint8 {
	if id, ok := w.components.compTypeMap[typ]; ok {
		if w.components.compIDToKind[id] != kind {
			panic(fmt.Sprintf("facet: component %s already registered with a different storage backend", typ))
		}
		return id
	}
	if w.components.nextCompTypeID >= MaxComponentTypes {
		panic("facet: too many component types")
	}
	id := uint8(w.components.nextCompTypeID)
	w.components.nextCompTypeID++
	w.components.compTypeMap[typ] = id
	w.components.compIDToType[id] = typ
	w.components.compIDToSize[id] = typ.Size()
	w.components.compIDToKind[id] = kind
	w.logger.Debug().
		Str("component", typ.String()).
		Uint8("id", id).
		Str("storage", storageName(kind)).
		Msg("component registered")
	return id
}

func storageName(kind StorageKind) string {
	if kind == StorageSparse {
		return "sparse"
	}
	return "table"
}

// RegisterComponent registers T as a table component and returns its ID.
// Registration is idempotent.
func RegisterComponent[T any](w *World) uint8 {
	return registerComponentType(w, reflect.TypeFor[T](), StorageTable)
}

// RegisterSparseComponent registers T as a sparse component and returns its
// ID. Sparse components still participate in archetype masks, so queries
// match on their presence, but their values live outside the tables.
func RegisterSparseComponent[T any](w *World) uint8 {
	return registerComponentType(w, reflect.TypeFor[T](), StorageSparse)
}

// componentID returns the registered ID for T under whichever backend it
// was registered with, registering it as a table component if unseen.
func componentID[T any](w *World) uint8 {
	if id, ok := w.components.compTypeMap[reflect.TypeFor[T]()]; ok {
		return id
	}
	return registerComponentType(w, reflect.TypeFor[T](), StorageTable)
}

// lookupComponentID returns T's ID without registering, with ok reporting
// whether it was found.
func lookupComponentID[T any](w *World) (uint8, bool) {
	id, ok := w.components.compTypeMap[reflect.TypeFor[T]()]
	return id, ok
}
