package invoice

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Invoice is a single recurring charge. Once paid it never changes again.
type Invoice struct {
	id        uuid.UUID
	owner     shared.PlayerID
	typ       Type
	factoryID string
	amount    shared.Money
	dueDate   time.Time
	paid      bool
	paidAt    *time.Time
	createdAt time.Time
}

// NewInvoice creates an unpaid invoice due duePeriod after now
func NewInvoice(typ Type, owner shared.PlayerID, factoryID string, amount shared.Money, now time.Time, duePeriod time.Duration) (*Invoice, error) {
	if !typ.IsValid() {
		return nil, fmt.Errorf("invalid invoice type: %s", typ)
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("invoice requires an owner")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError(shared.CodeInvalidAmount, "invoice amount must be positive, got %s", amount)
	}

	return &Invoice{
		id:        uuid.New(),
		owner:     owner,
		typ:       typ,
		factoryID: factoryID,
		amount:    amount,
		dueDate:   now.Add(duePeriod),
		createdAt: now,
	}, nil
}

// ReconstructInvoice rebuilds an invoice from persistence
func ReconstructInvoice(
	id uuid.UUID,
	owner shared.PlayerID,
	typ Type,
	factoryID string,
	amount shared.Money,
	dueDate time.Time,
	paid bool,
	paidAt *time.Time,
	createdAt time.Time,
) *Invoice {
	return &Invoice{
		id:        id,
		owner:     owner,
		typ:       typ,
		factoryID: factoryID,
		amount:    amount,
		dueDate:   dueDate,
		paid:      paid,
		paidAt:    paidAt,
		createdAt: createdAt,
	}
}

func (i *Invoice) ID() uuid.UUID          { return i.id }
func (i *Invoice) Owner() shared.PlayerID { return i.owner }
func (i *Invoice) Type() Type             { return i.typ }
func (i *Invoice) FactoryID() string      { return i.factoryID }
func (i *Invoice) Amount() shared.Money   { return i.amount }
func (i *Invoice) DueDate() time.Time     { return i.dueDate }
func (i *Invoice) Paid() bool             { return i.paid }
func (i *Invoice) PaidAt() *time.Time     { return i.paidAt }
func (i *Invoice) CreatedAt() time.Time   { return i.createdAt }

// IsOverdue reports whether an unpaid invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return !i.paid && now.After(i.dueDate)
}

// MarkPaid flips the invoice to paid. There is no way back.
func (i *Invoice) MarkPaid(now time.Time) error {
	if i.paid {
		return NewAlreadyPaidError(i.id)
	}
	i.paid = true
	i.paidAt = &now
	return nil
}
