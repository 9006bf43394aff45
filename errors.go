package facet

import "github.com/rotisserie/eris"

var (
	// ErrRegistrySealed reports a registration attempted after an interface
	// registry was frozen by its first query plan.
	ErrRegistrySealed = eris.New("interface registry is sealed")

	// ErrAccessConflict reports two access declarations that cannot coexist
	// in one query, such as a write overlapping another write or a read.
	ErrAccessConflict = eris.New("conflicting component access")
)
