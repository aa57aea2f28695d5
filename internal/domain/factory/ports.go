package factory

import (
	"context"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// FactoryRepository defines persistence operations for factories
type FactoryRepository interface {
	// Get returns the factory or a FACTORY_NOT_FOUND error
	Get(ctx context.Context, id string) (*Factory, error)

	// List returns every factory ordered by id
	List(ctx context.Context) ([]*Factory, error)

	// ListByOwner returns the factories owned by player ordered by id
	ListByOwner(ctx context.Context, player shared.PlayerID) ([]*Factory, error)

	// Save inserts or replaces a factory
	Save(ctx context.Context, f *Factory) error

	// Delete removes a factory. Deleting a missing factory is not an error.
	Delete(ctx context.Context, id string) error
}
