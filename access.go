package facet

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Access accumulates the component reads and writes a unit of work declares.
// A scheduler can run two units concurrently only when their accesses are
// compatible. Declarations over an interface claim every registered
// implementation at once.
type Access struct {
	reads  bitmask256
	writes bitmask256
}

// DeclareRead adds read access to every component registered as an
// implementation of I. It panics if any of those components is already
// declared for writing.
func DeclareRead[I any](w *World, a *Access) {
	reg := planQuery[I](w)
	if a.writes.intersects(reg.mask) {
		panic(eris.Wrapf(ErrAccessConflict,
			"read of %s overlaps a declared write", reflect.TypeFor[I]()))
	}
	for i := 0; i < maskWords; i++ {
		a.reads[i] |= reg.mask[i]
	}
}

// DeclareWrite adds write access to every component registered as an
// implementation of I. It panics if any of those components is already
// declared for reading or writing.
func DeclareWrite[I any](w *World, a *Access) {
	reg := planQuery[I](w)
	if a.reads.intersects(reg.mask) || a.writes.intersects(reg.mask) {
		panic(eris.Wrapf(ErrAccessConflict,
			"write of %s overlaps a declared access", reflect.TypeFor[I]()))
	}
	for i := 0; i < maskWords; i++ {
		a.writes[i] |= reg.mask[i]
	}
}

// DeclareReadComponent adds read access to the single component type T.
func DeclareReadComponent[T any](w *World, a *Access) {
	id := componentID[T](w)
	if a.writes.containsBit(id) {
		panic(eris.Wrapf(ErrAccessConflict,
			"read of %s overlaps a declared write", reflect.TypeFor[T]()))
	}
	a.reads.set(id)
}

// DeclareWriteComponent adds write access to the single component type T.
func DeclareWriteComponent[T any](w *World, a *Access) {
	id := componentID[T](w)
	if a.reads.containsBit(id) || a.writes.containsBit(id) {
		panic(eris.Wrapf(ErrAccessConflict,
			"write of %s overlaps a declared access", reflect.TypeFor[T]()))
	}
	a.writes.set(id)
}

// CompatibleWith reports whether two access sets can run concurrently:
// neither may write what the other reads or writes.
func (a *Access) CompatibleWith(other *Access) bool {
	if a.writes.intersects(other.writes) {
		return false
	}
	if a.writes.intersects(other.reads) {
		return false
	}
	if a.reads.intersects(other.writes) {
		return false
	}
	return true
}
