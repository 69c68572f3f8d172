package utils

import (
	"github.com/google/uuid"
)

// GenerateUUIDv7 returns a time-ordered id. Used for every row the backend
// creates so primary keys sort by insertion time.
func GenerateUUIDv7() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the entropy source does; fall back to v4.
		return uuid.New()
	}
	return id
}
