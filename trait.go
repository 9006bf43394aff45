package facet

import (
	"fmt"
	"reflect"
	"unsafe"
)

// ctorFunc turns a raw component slot into an interface value of type I.
// The pointer must reference a live slot of the implementation's concrete
// type.
type ctorFunc[I any] func(unsafe.Pointer) I

// implMeta describes one concrete component type registered as an
// implementation of interface I.
type implMeta[I any] struct {
	typ  reflect.Type
	ctor ctorFunc[I]
	size uintptr
	id   uint8
	kind StorageKind
}

// makeCtor builds the slot-to-interface constructor for *C implementing I.
// It panics at registration time if *C does not satisfy I, so queries never
// see a failing assertion.
func makeCtor[I any, C any]() ctorFunc[I] {
	var probe any = (*C)(nil)
	if _, ok := probe.(I); !ok {
		panic(fmt.Sprintf("facet: *%s does not implement %s",
			reflect.TypeFor[C](), reflect.TypeFor[I]()))
	}
	return func(p unsafe.Pointer) I {
		return any((*C)(p)).(I)
	}
}

// RegisterAs records component type C as an implementation of interface I.
// C is registered as a table component if it has no storage registration
// yet; register it with RegisterSparseComponent first to keep it sparse.
//
// Registration is idempotent for the same (I, C) pair. Registering a new
// implementation after a query over I has been constructed panics, because
// query plans snapshot the implementation list.
func RegisterAs[I any, C any](w *World) {
	reg := getRegistry[I](w)
	id := componentID[C](w)
	reg.register(w, implMeta[I]{
		typ:  reflect.TypeFor[C](),
		ctor: makeCtor[I, C](),
		size: w.components.compIDToSize[id],
		id:   id,
		kind: w.components.compIDToKind[id],
	})
}

// TraitsOf collects every implementation of I present on the entity, in
// registration order with table-backed implementations first. It returns
// nil for dead entities or entities with no implementation.
func TraitsOf[I any](w *World, e Entity) []I {
	if !w.IsValid(e) {
		return nil
	}
	reg := planQuery[I](w)
	var out []I
	for i := range reg.tableImpls {
		im := &reg.tableImpls[i]
		if p := componentPtr(w, e, im.id); p != nil {
			out = append(out, im.ctor(p))
		}
	}
	for i := range reg.sparseImpls {
		im := &reg.sparseImpls[i]
		if p := componentPtr(w, e, im.id); p != nil {
			out = append(out, im.ctor(p))
		}
	}
	return out
}
