package tax

import (
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Record is the single running tax liability of one factory.
//
// AmountDue accumulates across assessments and only returns to zero on payment.
// LateFeeApplied implies Overdue and a positive AmountDue, and is cleared on payment.
type Record struct {
	factoryID      string
	owner          shared.PlayerID
	amountDue      shared.Money
	lastAssessment time.Time
	dueDate        time.Time
	overdue        bool
	lateFeeApplied bool
}

// NewRecord creates an empty record for a factory owned by owner
func NewRecord(factoryID string, owner shared.PlayerID) (*Record, error) {
	if factoryID == "" {
		return nil, fmt.Errorf("tax record requires a factory id")
	}
	if owner.IsZero() {
		return nil, fmt.Errorf("tax record requires an owner")
	}
	return &Record{factoryID: factoryID, owner: owner, amountDue: shared.Zero}, nil
}

// ReconstructRecord rebuilds a record from persistence
func ReconstructRecord(
	factoryID string,
	owner shared.PlayerID,
	amountDue shared.Money,
	lastAssessment, dueDate time.Time,
	overdue, lateFeeApplied bool,
) *Record {
	return &Record{
		factoryID:      factoryID,
		owner:          owner,
		amountDue:      amountDue,
		lastAssessment: lastAssessment,
		dueDate:        dueDate,
		overdue:        overdue,
		lateFeeApplied: lateFeeApplied,
	}
}

func (r *Record) FactoryID() string         { return r.factoryID }
func (r *Record) Owner() shared.PlayerID    { return r.owner }
func (r *Record) AmountDue() shared.Money   { return r.amountDue }
func (r *Record) LastAssessment() time.Time { return r.lastAssessment }
func (r *Record) DueDate() time.Time        { return r.dueDate }
func (r *Record) Overdue() bool             { return r.overdue }
func (r *Record) LateFeeApplied() bool      { return r.lateFeeApplied }

// HasBalance reports whether anything is owed
func (r *Record) HasBalance() bool {
	return r.amountDue.IsPositive()
}

// State reports where the record sits in the current/overdue/settled cycle
func (r *Record) State() State {
	switch {
	case r.overdue && r.HasBalance():
		return StateOverdue
	case r.HasBalance():
		return StateCurrent
	default:
		return StateSettled
	}
}

// AddCharge adds an assessed amount on top of whatever is still owed and moves
// the due date. The overdue episode, if any, is left untouched until payment.
func (r *Record) AddCharge(amount shared.Money, now time.Time, duePeriod time.Duration) error {
	if amount.IsNegative() {
		return shared.NewValidationError(shared.CodeInvalidAmount, "tax charge cannot be negative: %s", amount)
	}
	r.amountDue = r.amountDue.Add(amount)
	r.lastAssessment = now
	r.dueDate = now.Add(duePeriod)
	return nil
}

// MarkOverdue flags a record past its due date and charges the late fee once per
// episode. It returns the fee charged by this call (zero when none).
func (r *Record) MarkOverdue(now time.Time, lateFeeRate shared.Money) shared.Money {
	if !r.HasBalance() || !now.After(r.dueDate) {
		return shared.Zero
	}

	r.overdue = true
	if r.lateFeeApplied {
		return shared.Zero
	}

	fee := shared.RoundCents(r.amountDue.Mul(lateFeeRate))
	r.amountDue = r.amountDue.Add(fee)
	r.lateFeeApplied = true
	return fee
}

// Settle clears the balance after a full payment and returns the amount settled
func (r *Record) Settle() shared.Money {
	paid := r.amountDue
	r.amountDue = shared.Zero
	r.overdue = false
	r.lateFeeApplied = false
	return paid
}

// Heal clears flags that contradict a zero balance. Returns true when it changed anything.
func (r *Record) Heal() bool {
	if r.HasBalance() {
		if r.lateFeeApplied && !r.overdue {
			r.overdue = true
			return true
		}
		return false
	}
	if r.amountDue.IsNegative() || r.overdue || r.lateFeeApplied {
		r.amountDue = shared.Zero
		r.overdue = false
		r.lateFeeApplied = false
		return true
	}
	return false
}

// Transfer reassigns the record to a new owner. Only valid once settled.
func (r *Record) Transfer(owner shared.PlayerID) error {
	if r.HasBalance() {
		return fmt.Errorf("cannot transfer tax record for %s with %s outstanding", r.factoryID, r.amountDue.StringFixed(2))
	}
	r.owner = owner
	return nil
}
