package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessReadsAreShareable(t *testing.T) {
	w := newMailboxWorld(t)

	var a, b Access
	DeclareRead[Mailbox](w, &a)
	DeclareRead[Mailbox](w, &b)
	assert.True(t, a.CompatibleWith(&b))
}

func TestAccessWriteConflicts(t *testing.T) {
	w := newMailboxWorld(t)

	var a, b Access
	DeclareWrite[Mailbox](w, &a)
	DeclareRead[Mailbox](w, &b)
	assert.False(t, a.CompatibleWith(&b))
	assert.False(t, b.CompatibleWith(&a))

	var c Access
	DeclareWrite[Mailbox](w, &c)
	assert.False(t, a.CompatibleWith(&c))
}

func TestAccessConflictWithinOneSetPanics(t *testing.T) {
	w := newMailboxWorld(t)

	var a Access
	DeclareWrite[Mailbox](w, &a)
	assert.Panics(t, func() {
		DeclareRead[Mailbox](w, &a)
	})
	assert.Panics(t, func() {
		DeclareWrite[Mailbox](w, &a)
	})
}

func TestInterfaceAccessCoversComponentAccess(t *testing.T) {
	w := newMailboxWorld(t)

	// a write on the interface claims every implementation's component
	var a Access
	DeclareWrite[Mailbox](w, &a)
	assert.Panics(t, func() {
		DeclareReadComponent[colMailbox](w, &a)
	})
	assert.Panics(t, func() {
		DeclareWriteComponent[sparseMailbox](w, &a)
	})

	// unrelated components stay free
	assert.NotPanics(t, func() {
		DeclareWriteComponent[position](w, &a)
	})
}

func TestConstructorsDeclareIntoSharedAccess(t *testing.T) {
	w := newMailboxWorld(t)

	// a write query followed by any other query over the same interface
	// conflicts within one signature
	var a Access
	_ = NewAllMutWith[Mailbox](w, &a)
	assert.Panics(t, func() {
		_ = NewOneWith[Mailbox](w, &a)
	})

	var b Access
	_ = NewOneMutWith[Mailbox](w, &b)
	assert.Panics(t, func() {
		_ = NewAllMutWith[Mailbox](w, &b)
	})

	// reads coexist in one signature
	var c Access
	assert.NotPanics(t, func() {
		_ = NewOneWith[Mailbox](w, &c)
		_ = NewAllWith[Mailbox](w, &c)
		_ = NewOneChangedWith[Mailbox](w, &c)
	})

	// the implementation components are claimed, not just the interface
	assert.Panics(t, func() {
		DeclareWriteComponent[colMailbox](w, &c)
	})
}

func TestPlainConstructorsUseFreshAccess(t *testing.T) {
	w := newMailboxWorld(t)

	// separate signatures each get their own tracker, so constructing two
	// write queries back to back stays legal
	assert.NotPanics(t, func() {
		_ = NewAllMut[Mailbox](w)
		_ = NewOneMut[Mailbox](w)
	})
}

func TestDisjointAccessesAreCompatible(t *testing.T) {
	w := newMailboxWorld(t)

	var a, b Access
	DeclareWrite[Mailbox](w, &a)
	DeclareWriteComponent[position](w, &b)
	assert.True(t, a.CompatibleWith(&b))
}
