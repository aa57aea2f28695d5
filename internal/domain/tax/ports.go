package tax

import (
	"context"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// RecordRepository persists one tax record per factory
type RecordRepository interface {
	Get(ctx context.Context, factoryID string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	ListByOwner(ctx context.Context, owner shared.PlayerID) ([]*Record, error)
	Save(ctx context.Context, record *Record) error
	Delete(ctx context.Context, factoryID string) error
}

// PaymentRepository is the append-only receipt history
type PaymentRepository interface {
	Append(ctx context.Context, payment *Payment) error

	// ListByOwner returns receipts newest first
	ListByOwner(ctx context.Context, owner shared.PlayerID) ([]*Payment, error)
}
