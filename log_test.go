package facet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEmptyRegistryWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWorld(4, WithLogger(zerolog.New(&buf)))

	_ = NewOne[Mailbox](w)
	_ = NewAll[Mailbox](w)
	_ = NewOne[Mailbox](w)

	warnings := strings.Count(buf.String(), "no registered implementations")
	assert.Equal(t, 1, warnings)
}

func TestRegistrationIsLogged(t *testing.T) {
	var buf bytes.Buffer
	w := NewWorld(4, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	RegisterSparseComponent[sparseMailbox](w)
	RegisterAs[Mailbox, sparseMailbox](w)

	out := buf.String()
	assert.Contains(t, out, "implementation registered")
	assert.Contains(t, out, "sparse")
}
