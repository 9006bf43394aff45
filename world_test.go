package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct {
	X, Y float64
}

type tag struct {
	Name string
}

type stun struct {
	Turns int
}

func TestCreateAndRemoveEntity(t *testing.T) {
	w := NewWorld(4)

	e := w.CreateEntity()
	assert.True(t, w.IsValid(e))

	w.RemoveEntity(e)
	assert.False(t, w.IsValid(e))

	// a recycled ID gets a fresh version, the stale handle stays dead
	e2 := w.CreateEntity()
	assert.True(t, w.IsValid(e2))
	assert.False(t, w.IsValid(e))
}

func TestEntityCapacityExpansion(t *testing.T) {
	w := NewWorld(2)
	ents := w.CreateEntities(100)
	assert.Len(t, ents, 100)
	for _, e := range ents {
		assert.True(t, w.IsValid(e))
	}
}

func TestSetGetRemoveComponent(t *testing.T) {
	w := NewWorld(8)
	e := w.CreateEntity()

	SetComponent(w, e, position{X: 1, Y: 2})
	p, ok := GetComponent[position](w, e)
	require.True(t, ok)
	assert.Equal(t, position{X: 1, Y: 2}, *p)

	// replacing keeps the entity in place
	SetComponent(w, e, position{X: 3, Y: 4})
	p, _ = GetComponent[position](w, e)
	assert.Equal(t, position{X: 3, Y: 4}, *p)

	RemoveComponent[position](w, e)
	_, ok = GetComponent[position](w, e)
	assert.False(t, ok)
}

func TestComponentSurvivesArchetypeMove(t *testing.T) {
	w := NewWorld(8)
	e := w.CreateEntity()

	SetComponent(w, e, tag{Name: "alpha"})
	SetComponent(w, e, position{X: 9})

	tg, ok := GetComponent[tag](w, e)
	require.True(t, ok)
	assert.Equal(t, "alpha", tg.Name)

	RemoveComponent[position](w, e)
	tg, ok = GetComponent[tag](w, e)
	require.True(t, ok)
	assert.Equal(t, "alpha", tg.Name)
}

func TestSwapRemoveKeepsOtherEntitiesIntact(t *testing.T) {
	w := NewWorld(8)
	var ents []Entity
	for i := 0; i < 5; i++ {
		e := w.CreateEntity()
		SetComponent(w, e, position{X: float64(i)})
		ents = append(ents, e)
	}

	w.RemoveEntity(ents[1])

	for i, e := range ents {
		if i == 1 {
			continue
		}
		p, ok := GetComponent[position](w, e)
		require.True(t, ok)
		assert.Equal(t, float64(i), p.X)
	}
}

func TestSparseComponentLifecycle(t *testing.T) {
	w := NewWorld(8)
	RegisterSparseComponent[stun](w)

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	SetComponent(w, e1, stun{Turns: 2})
	SetComponent(w, e2, stun{Turns: 5})

	s, ok := GetComponent[stun](w, e1)
	require.True(t, ok)
	assert.Equal(t, 2, s.Turns)

	// swap-fill in the dense storage must not corrupt the survivor
	RemoveComponent[stun](w, e1)
	_, ok = GetComponent[stun](w, e1)
	assert.False(t, ok)
	s, ok = GetComponent[stun](w, e2)
	require.True(t, ok)
	assert.Equal(t, 5, s.Turns)
}

func TestSparseBackendSurvivesImplicitLookup(t *testing.T) {
	w := NewWorld(8)
	id := RegisterSparseComponent[stun](w)

	// set/get/filter must resolve the existing sparse registration
	// instead of re-registering the type as a table component
	var e Entity
	assert.NotPanics(t, func() {
		e = w.CreateEntity()
		SetComponent(w, e, stun{Turns: 3})
		f := NewFilter[stun](w)
		for f.Next() {
			f.Get().Turns++
		}
	})
	assert.Equal(t, StorageSparse, w.components.compIDToKind[id])

	s, ok := GetComponent[stun](w, e)
	require.True(t, ok)
	assert.Equal(t, 4, s.Turns)
}

func TestMixedBackendRegistrationPanics(t *testing.T) {
	w := NewWorld(8)
	RegisterComponent[position](w)
	assert.Panics(t, func() {
		RegisterSparseComponent[position](w)
	})
}

func TestFilterIteratesBothBackends(t *testing.T) {
	w := NewWorld(8)
	RegisterSparseComponent[stun](w)

	e1 := w.CreateEntity()
	SetComponent(w, e1, stun{Turns: 1})
	e2 := w.CreateEntity()
	SetComponent(w, e2, stun{Turns: 2})
	SetComponent(w, e2, position{X: 1})

	f := NewFilter[stun](w)
	total := 0
	seen := 0
	for f.Next() {
		total += f.Get().Turns
		seen++
	}
	assert.Equal(t, 2, seen)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, f.Count())
}

func TestFilterSeesNewArchetypesAfterReset(t *testing.T) {
	w := NewWorld(8)
	e1 := w.CreateEntity()
	SetComponent(w, e1, position{X: 1})

	f := NewFilter[position](w)
	count := 0
	for f.Next() {
		count++
	}
	assert.Equal(t, 1, count)

	e2 := w.CreateEntity()
	SetComponent(w, e2, position{X: 2})
	SetComponent(w, e2, tag{Name: "b"})

	f.Reset()
	count = 0
	for f.Next() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestResources(t *testing.T) {
	w := NewWorld(4)

	type gravity struct{ G float64 }
	AddResource(w, &gravity{G: 9.81})
	g := GetResource[gravity](w)
	require.NotNil(t, g)
	assert.Equal(t, 9.81, g.G)

	RemoveResource[gravity](w)
	assert.Nil(t, GetResource[gravity](w))
}

func TestChangeTickClock(t *testing.T) {
	w := NewWorld(4)
	start := w.ChangeTick()
	assert.Equal(t, start+1, w.AdvanceTick())
	assert.Equal(t, start+1, w.ChangeTick())
}

func TestComponentTickStamps(t *testing.T) {
	w := NewWorld(4)
	id := RegisterComponent[position](w)

	e := w.CreateEntity()
	SetComponent(w, e, position{X: 1})
	addTick := w.ChangeTick()

	added, changed, ok := componentTicks(w, e, id)
	require.True(t, ok)
	assert.Equal(t, addTick, added)
	assert.Equal(t, addTick, changed)

	w.AdvanceTick()
	SetComponent(w, e, position{X: 2})
	added, changed, _ = componentTicks(w, e, id)
	assert.Equal(t, addTick, added)
	assert.Equal(t, w.ChangeTick(), changed)

	w.AdvanceTick()
	MarkChanged[position](w, e)
	_, changed, _ = componentTicks(w, e, id)
	assert.Equal(t, w.ChangeTick(), changed)
}
