package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// DataIntegrityError reports a broken reference inside the hierarchy: a line
// pointing at an appendix, or an appendix at a contract, that the snapshot
// does not contain. It is the only error the engine produces; every business
// outcome is expressed through reason codes instead.
type DataIntegrityError struct {
	Entity string
	ID     uuid.UUID
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("hierarchy integrity: %s %s not found", e.Entity, e.ID)
}
