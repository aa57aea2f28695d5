package tax

import (
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Payment is an append-only receipt of a settled tax balance
type Payment struct {
	ID        uuid.UUID
	FactoryID string
	Owner     shared.PlayerID
	Amount    shared.Money
	Timestamp time.Time
}

// NewPayment creates a receipt with a fresh id
func NewPayment(factoryID string, owner shared.PlayerID, amount shared.Money, at time.Time) *Payment {
	return &Payment{
		ID:        uuid.New(),
		FactoryID: factoryID,
		Owner:     owner,
		Amount:    amount,
		Timestamp: at,
	}
}
