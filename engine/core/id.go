package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the canonical identifier type for entities and tracker objects.
type ID string

func (i ID) String() string {
	return string(i)
}

func (i ID) IsZero() bool {
	return i == ""
}

// NewID generates a new random ID.
func NewID() (ID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return ID(id.String()), nil
}

// MustNewID generates a new ID and panics on failure.
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}
