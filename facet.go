// Package facet extends an archetype-based Entity-Component-System with
// interface queries: a single Go interface can be queried across many
// concrete component types without the caller naming them.
//
// Features:
// - Archetype-based columnar storage with max 256 component types.
// - Optional sparse-set storage for rarely-held component types.
// - Bitmask for fast archetype lookup.
// - Unsafe pointers for zero-GC overhead on component access.
// - Per-slot change ticks with added/changed detection.
// - Interface (trait) registry: register concrete types once, then query
//   them through One (exactly one impl per entity) or All (every impl per
//   entity) iterators, in read or write mode, with optional added/changed
//   filtering.
package facet

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered in a World. This value is fixed at 256.
const MaxComponentTypes = 256

const (
	bitsPerWord = 64
	maskWords   = 4
)
