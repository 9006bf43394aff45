// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query mem.pprof

package main

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/edwinsyarief/facet"
)

type Damage interface {
	Amount() int64
}

type fire struct {
	Strength int64
}

func (f *fire) Amount() int64 {
	return f.Strength
}

type poison struct {
	PerTick int64
	Ticks   int64
}

func (p *poison) Amount() int64 {
	return p.PerTick * p.Ticks
}

func main() {
	// CPU Profiling
	f, _ := os.Create("cpu.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	count := 50
	iters := 10000
	entities := 100000
	run(count, iters, entities)

	// Memory Profiling
	memFile, _ := os.Create("mem.prof")
	defer memFile.Close()
	runtime.GC() // Trigger garbage collection
	_ = pprof.WriteHeapProfile(memFile)
}

func run(rounds, iters, numEntities int) {
	var sink int64
	for range rounds {
		w := facet.NewWorld(numEntities)
		facet.RegisterAs[Damage, fire](w)
		facet.RegisterAs[Damage, poison](w)

		for i := range numEntities {
			e := w.CreateEntity()
			if i%2 == 0 {
				facet.SetComponent(w, e, fire{Strength: int64(i)})
			} else {
				facet.SetComponent(w, e, poison{PerTick: int64(i), Ticks: 3})
			}
		}

		query := facet.NewOne[Damage](w)
		for range iters {
			query.Reset()
			for query.Next() {
				sink += query.Get().Value().Amount()
			}
		}
	}
	runtime.KeepAlive(sink)
}
