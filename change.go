package facet

// tickWindow bounds the change-detection interval a query evaluates against.
// A stamp counts as new when it falls in the half-open interval
// (lastRun, thisRun].
type tickWindow struct {
	lastRun Tick
	thisRun Tick
}

// Ref is a read-only handle to one implementation instance, carrying the
// change-detection state of its storage slot.
type Ref[I any] struct {
	value   I
	added   Tick
	changed Tick
	window  tickWindow
}

// Value returns the interface handle. Method calls on it dispatch to the
// concrete component in place; the component itself is not copied.
func (r Ref[I]) Value() I {
	return r.value
}

// IsAdded reports whether the component was added within the query's tick
// window.
func (r Ref[I]) IsAdded() bool {
	return r.added.isNewerThan(r.window.lastRun, r.window.thisRun)
}

// IsChanged reports whether the component was added or mutated within the
// query's tick window.
func (r Ref[I]) IsChanged() bool {
	return r.changed.isNewerThan(r.window.lastRun, r.window.thisRun)
}

// AddedTick returns the raw tick at which the component was added.
func (r Ref[I]) AddedTick() Tick {
	return r.added
}

// ChangedTick returns the raw tick of the component's last recorded
// mutation.
func (r Ref[I]) ChangedTick() Tick {
	return r.changed
}

// Mut is a writable handle to one implementation instance. Obtaining the
// value through Value stamps the slot's changed tick; Bypass grants the
// same access without a stamp, for callers that decide afterwards whether
// they mutated anything.
type Mut[I any] struct {
	value   I
	added   *Tick
	changed *Tick
	window  tickWindow
}

// Value stamps the slot as changed at the window's current tick and returns
// the interface handle for mutation.
func (m Mut[I]) Value() I {
	*m.changed = m.window.thisRun
	return m.value
}

// Bypass returns the interface handle without recording a change.
func (m Mut[I]) Bypass() I {
	return m.value
}

// SetChanged stamps the slot as changed at the window's current tick.
func (m Mut[I]) SetChanged() {
	*m.changed = m.window.thisRun
}

// IsAdded reports whether the component was added within the query's tick
// window.
func (m Mut[I]) IsAdded() bool {
	return m.added.isNewerThan(m.window.lastRun, m.window.thisRun)
}

// IsChanged reports whether the component was added or mutated within the
// query's tick window.
func (m Mut[I]) IsChanged() bool {
	return m.changed.isNewerThan(m.window.lastRun, m.window.thisRun)
}
