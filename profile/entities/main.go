// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/edwinsyarief/facet"
	"github.com/pkg/profile"
)

type Mover interface {
	Advance()
}

type velocity struct {
	X, Y float64
	PX   float64
	PY   float64
}

func (v *velocity) Advance() {
	v.PX += v.X
	v.PY += v.Y
}

func main() {
	count := 50
	iters := 10000
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(count, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		w := facet.NewWorld(numEntities)
		facet.RegisterAs[Mover, velocity](w)
		query := facet.NewOneMut[Mover](w)

		for range iters {
			ents := []facet.Entity{}
			for i := range numEntities {
				e := w.CreateEntity()
				facet.SetComponent(w, e, velocity{X: float64(i), Y: 1})
			}
			query.Reset()
			for query.Next() {
				ents = append(ents, query.Entity())
				query.Get().Value().Advance()
			}
			for _, e := range ents {
				w.RemoveEntity(e)
			}
		}
	}
}
