package facet

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// traitRegistry holds every component type registered as an implementation
// of interface I. Implementations are kept in registration order, split
// into the table-backed and sparse-backed sublists that queries walk.
//
// The registry seals when the first query over I builds its plan; later
// registrations panic so no plan can go stale.
type traitRegistry[I any] struct {
	impls       []implMeta[I] // full registration order
	tableImpls  []implMeta[I]
	sparseImpls []implMeta[I]
	mask        bitmask256 // union of all implementation component bits
	sealed      bool
	warned      bool
}

// getRegistry returns the registry for I stored in the world's resources,
// creating it on first use.
func getRegistry[I any](w *World) *traitRegistry[I] {
	key := reflect.TypeFor[traitRegistry[I]]()
	if v, ok := w.resources.get(key); ok {
		return v.(*traitRegistry[I])
	}
	reg := &traitRegistry[I]{}
	w.resources.set(key, reg)
	return reg
}

// register appends an implementation unless its component is already
// present. Registering a new component into a sealed registry panics.
func (r *traitRegistry[I]) register(w *World, im implMeta[I]) {
	if r.mask.containsBit(im.id) {
		return
	}
	if r.sealed {
		panic(eris.Wrapf(ErrRegistrySealed,
			"cannot register %s as %s after queries were built",
			im.typ, reflect.TypeFor[I]()))
	}
	r.impls = append(r.impls, im)
	if im.kind == StorageSparse {
		r.sparseImpls = append(r.sparseImpls, im)
	} else {
		r.tableImpls = append(r.tableImpls, im)
	}
	r.mask.set(im.id)
	w.logger.Debug().
		Str("interface", reflect.TypeFor[I]().String()).
		Str("component", im.typ.String()).
		Str("storage", storageName(im.kind)).
		Msg("implementation registered")
}

// seal freezes the registry. Idempotent.
func (r *traitRegistry[I]) seal() {
	r.sealed = true
}

// matchesAny reports whether an archetype holds at least one
// implementation of I.
func (r *traitRegistry[I]) matchesAny(mask bitmask256) bool {
	return r.mask.intersects(mask)
}

// matchesExactlyOne reports whether an archetype holds exactly one
// implementation of I.
func (r *traitRegistry[I]) matchesExactlyOne(mask bitmask256) bool {
	return r.mask.intersectionCount(mask) == 1
}

// planQuery seals the registry for I and returns it. Worlds where nothing
// implements I get a one-time warning; queries over such a registry match
// no entities.
func planQuery[I any](w *World) *traitRegistry[I] {
	reg := getRegistry[I](w)
	reg.seal()
	if len(reg.impls) == 0 && !reg.warned {
		reg.warned = true
		w.logger.Warn().
			Str("interface", reflect.TypeFor[I]().String()).
			Msg("query over interface with no registered implementations")
	}
	return reg
}
