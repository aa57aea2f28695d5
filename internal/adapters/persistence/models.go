package persistence

import (
	"time"

	"github.com/shopspring/decimal"
)

// FactoryModel represents the factories table. Production, upgrade and the
// fast-travel anchor are embedded as nullable columns.
type FactoryModel struct {
	ID      string          `gorm:"column:id;primaryKey"`
	Zone    string          `gorm:"column:zone"`
	Type    string          `gorm:"column:type;not null"`
	OwnerID *string         `gorm:"column:owner_id;index"`
	Price   decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null"`
	Level   int             `gorm:"column:level;not null;default:1"`
	Status  string          `gorm:"column:status;not null"`

	AnchorWorld *string  `gorm:"column:anchor_world"`
	AnchorX     *float64 `gorm:"column:anchor_x"`
	AnchorY     *float64 `gorm:"column:anchor_y"`
	AnchorZ     *float64 `gorm:"column:anchor_z"`
	AnchorYaw   *float32 `gorm:"column:anchor_yaw"`
	AnchorPitch *float32 `gorm:"column:anchor_pitch"`

	ProductionRecipeID   *string    `gorm:"column:production_recipe_id"`
	ProductionStartedAt  *time.Time `gorm:"column:production_started_at"`
	ProductionDurationMs *int64     `gorm:"column:production_duration_ms"`

	UpgradeTargetLevel *int       `gorm:"column:upgrade_target_level"`
	UpgradeStartedAt   *time.Time `gorm:"column:upgrade_started_at"`
	UpgradeDurationMs  *int64     `gorm:"column:upgrade_duration_ms"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (FactoryModel) TableName() string {
	return "factories"
}

// TaxRecordModel represents the tax_records table
type TaxRecordModel struct {
	FactoryID      string          `gorm:"column:factory_id;primaryKey"`
	OwnerID        string          `gorm:"column:owner_id;not null;index"`
	AmountDue      decimal.Decimal `gorm:"column:amount_due;type:decimal(20,2);not null"`
	LastAssessment time.Time       `gorm:"column:last_assessment"`
	DueDate        time.Time       `gorm:"column:due_date"`
	Overdue        bool            `gorm:"column:overdue;not null;default:false"`
	LateFeeApplied bool            `gorm:"column:late_fee_applied;not null;default:false"`
}

func (TaxRecordModel) TableName() string {
	return "tax_records"
}

// TaxPaymentModel represents the append-only tax_payments table
type TaxPaymentModel struct {
	ID        string          `gorm:"column:id;primaryKey"`
	FactoryID string          `gorm:"column:factory_id;not null"`
	OwnerID   string          `gorm:"column:owner_id;not null;index"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null"`
	Timestamp time.Time       `gorm:"column:timestamp;not null"`
}

func (TaxPaymentModel) TableName() string {
	return "tax_payments"
}

// InvoiceModel represents the invoices table
type InvoiceModel struct {
	ID        string          `gorm:"column:id;primaryKey"`
	OwnerID   string          `gorm:"column:owner_id;not null;index"`
	Type      string          `gorm:"column:type;not null"`
	FactoryID string          `gorm:"column:factory_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null"`
	DueDate   time.Time       `gorm:"column:due_date;not null"`
	Paid      bool            `gorm:"column:paid;not null;default:false"`
	PaidAt    *time.Time      `gorm:"column:paid_at"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

// SchedulerCursorModel represents the scheduler_cursors table
type SchedulerCursorModel struct {
	Name    string    `gorm:"column:name;primaryKey"`
	LastRun time.Time `gorm:"column:last_run;not null"`
}

func (SchedulerCursorModel) TableName() string {
	return "scheduler_cursors"
}

// AllModels lists every table for AutoMigrate
func AllModels() []interface{} {
	return []interface{}{
		&FactoryModel{},
		&TaxRecordModel{},
		&TaxPaymentModel{},
		&InvoiceModel{},
		&SchedulerCursorModel{},
	}
}
