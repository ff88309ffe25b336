package domain

import "github.com/google/uuid"

// NewID returns a fresh identifier. Each call generates a new value; entities
// never share a default id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
