package ports

import (
	"context"
	"time"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// The engine never owns money, labor or storage. It reaches the host game through
// the interfaces below, which live in the domain so that adapters depend inward:
//
//	┌─────────────────────────┐
//	│  Application engines    │
//	│  (production, tax, ...) │
//	└───────────┬─────────────┘
//	            │ depends on
//	            ↓
//	┌─────────────────────────┐
//	│  Domain Ports           │  ← These interfaces
//	└───────────┬─────────────┘
//	            ↑
//	            │ implements
//	┌─────────────────────────┐
//	│  Adapters               │
//	│  (inmemory, notify)     │
//	└─────────────────────────┘

// Ledger is the host economy. Calls are synchronous; a failed call must leave the
// balance untouched.
type Ledger interface {
	HasFunds(ctx context.Context, player shared.PlayerID, amount shared.Money) (bool, error)
	Withdraw(ctx context.Context, player shared.PlayerID, amount shared.Money) error
	Deposit(ctx context.Context, player shared.PlayerID, amount shared.Money) error
	Balance(ctx context.Context, player shared.PlayerID) (shared.Money, error)
}

// LaborService reports the employees working a factory
type LaborService interface {
	HasLaborAssigned(ctx context.Context, factoryID string) (bool, error)

	// TimeReductionFor returns a fraction in [0, 1] taken off production time
	TimeReductionFor(ctx context.Context, factoryID string) (float64, error)

	// WageFor returns the wage owed for one salary period (zero when nobody works there)
	WageFor(ctx context.Context, factoryID string) (shared.Money, error)
}

// StorageService holds a factory's input and output stock
type StorageService interface {
	CreditOutput(ctx context.Context, factoryID, resourceID string, qty int) error
	HasInput(ctx context.Context, factoryID, resourceID string, qty int) (bool, error)
	ConsumeInput(ctx context.Context, factoryID, resourceID string, qty int) error

	// RestoreInput puts back inputs taken by a start that could not complete
	RestoreInput(ctx context.Context, factoryID, resourceID string, qty int) error

	// Clear empties both stores, used when a factory changes hands or is removed
	Clear(ctx context.Context, factoryID string) error
}

// ProgressTracker receives achievement and quest progress
type ProgressTracker interface {
	RecordProduction(ctx context.Context, player shared.PlayerID, recipeID string, outputs int) error
}

// EventKind names a notification sent to a player
type EventKind string

const (
	EventProductionStarted   EventKind = "production_started"
	EventProductionProgress  EventKind = "production_progress"
	EventProductionCompleted EventKind = "production_completed"
	EventProductionNoParts   EventKind = "production_no_parts"
	EventUpgradeStarted      EventKind = "upgrade_started"
	EventUpgradeCompleted    EventKind = "upgrade_completed"
	EventTaxAssessed         EventKind = "tax_assessed"
	EventTaxOverdue          EventKind = "tax_overdue"
	EventLateFeeApplied      EventKind = "late_fee_applied"
	EventTaxPaid             EventKind = "tax_paid"
	EventInvoiceIssued       EventKind = "invoice_issued"
	EventInvoicePaid         EventKind = "invoice_paid"
	EventFactoryPurchased    EventKind = "factory_purchased"
	EventFactorySold         EventKind = "factory_sold"
	EventRewardPaid          EventKind = "reward_paid"
)

// Notification is a single message for a player
type Notification struct {
	Player    shared.PlayerID
	Kind      EventKind
	Payload   map[string]any
	Timestamp time.Time
}

// Notifier is fire-and-forget: the engine never inspects delivery
type Notifier interface {
	Notify(ctx context.Context, player shared.PlayerID, kind EventKind, payload map[string]any)
}
