package invoice

import (
	"context"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Filter narrows an owner's invoice listing. Nil fields match everything.
type Filter struct {
	Type *Type
	Paid *bool
}

// Matches reports whether inv passes the filter
func (f Filter) Matches(inv *Invoice) bool {
	if f.Type != nil && inv.Type() != *f.Type {
		return false
	}
	if f.Paid != nil && inv.Paid() != *f.Paid {
		return false
	}
	return true
}

// InvoiceRepository stores invoices. Invoices are never deleted.
type InvoiceRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// ListByOwner returns matching invoices ordered by due date
	ListByOwner(ctx context.Context, owner shared.PlayerID, filter Filter) ([]*Invoice, error)

	Save(ctx context.Context, inv *Invoice) error
}
