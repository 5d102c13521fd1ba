package valuegen

import (
	"context"

	"github.com/google/uuid"
)

// TemporaryUUIDGenerator hands out placeholders that the server overwrites.
type TemporaryUUIDGenerator struct{}

var _ Generator = TemporaryUUIDGenerator{}

func (TemporaryUUIDGenerator) Next(_ context.Context) (any, error) {
	return uuid.New(), nil
}

func (TemporaryUUIDGenerator) GeneratesTemporaryValues() bool {
	return true
}

// PermanentUUIDGenerator hands out time-ordered UUIDv7 values that are
// stored as is.
type PermanentUUIDGenerator struct{}

var _ Generator = PermanentUUIDGenerator{}

func (PermanentUUIDGenerator) Next(_ context.Context) (any, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return id, nil
}

func (PermanentUUIDGenerator) GeneratesTemporaryValues() bool {
	return false
}
