package facet

import (
	"reflect"
	"sync"
)

// Resources is a type-keyed store for global singleton values. Each type has
// at most one value; the interface registries are kept here alongside user
// resources.
type Resources struct {
	mu     sync.RWMutex
	values map[reflect.Type]any
}

func (r *Resources) set(key reflect.Type, value any) {
	r.mu.Lock()
	if r.values == nil {
		r.values = make(map[reflect.Type]any, 8)
	}
	r.values[key] = value
	r.mu.Unlock()
}

func (r *Resources) get(key reflect.Type) (any, bool) {
	r.mu.RLock()
	v, ok := r.values[key]
	r.mu.RUnlock()
	return v, ok
}

// AddResource stores value as the singleton resource of type T, replacing
// any previous value.
func AddResource[T any](w *World, value *T) {
	w.resources.set(reflect.TypeFor[T](), value)
}

// GetResource returns the resource of type T, or nil if absent.
func GetResource[T any](w *World) *T {
	v, ok := w.resources.get(reflect.TypeFor[T]())
	if !ok {
		return nil
	}
	return v.(*T)
}

// RemoveResource deletes the resource of type T.
func RemoveResource[T any](w *World) {
	w.resources.mu.Lock()
	delete(w.resources.values, reflect.TypeFor[T]())
	w.resources.mu.Unlock()
}
