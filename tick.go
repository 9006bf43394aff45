package facet

// Tick is a monotonically increasing generation stamp. The World advances its
// clock once per execution wave; every stored component slot carries the tick
// at which it was added and the tick at which it was last changed.
type Tick uint32

// maxChangeAge clamps tick age so that wrapped-around clocks still compare
// sanely. A slot older than this is treated as maximally old.
const maxChangeAge = 1<<31 - 1

// isNewerThan reports whether the stamp is newer than the observation window's
// lower bound `last`, relative to the current tick `this`. Comparison is done
// on wrapping distances so the clock may overflow uint32 without corrupting
// results.
func (t Tick) isNewerThan(last, this Tick) bool {
	sinceStamp := uint32(this - t)
	if sinceStamp > maxChangeAge {
		sinceStamp = maxChangeAge
	}
	sinceLast := uint32(this - last)
	if sinceLast > maxChangeAge {
		sinceLast = maxChangeAge
	}
	return sinceStamp < sinceLast
}
