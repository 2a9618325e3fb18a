package utils

import "github.com/google/uuid"

// UUIDGenerator produces string identifiers for tasks. UUIDv7 is preferred
// because its time-ordered prefix keeps identifiers roughly sortable by
// creation moment, which also makes temporary client-side IDs monotonic.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
