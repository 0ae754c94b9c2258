package models

import (
	"github.com/google/uuid"
)

// ensureID assigns a v4 id when the caller left it blank. Postgres has a column
// default too, sqlite does not.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
