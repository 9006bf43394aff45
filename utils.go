package facet

import "unsafe"

// memCopy copies size bytes from src to dst. Both pointers must reference
// allocations obtained through reflect.MakeSlice so the garbage collector
// keeps scanning any pointers the bytes contain.
func memCopy(dst, src unsafe.Pointer, size uintptr) {
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}
