package filestore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// Documents are meant to be edited by hand, so amounts are decimal strings and
// durations use Go duration syntax.

type productionDocument struct {
	RecipeID  string    `yaml:"recipe_id"`
	StartedAt time.Time `yaml:"started_at"`
	Duration  string    `yaml:"duration"`
}

type upgradeDocument struct {
	TargetLevel int       `yaml:"target_level"`
	StartedAt   time.Time `yaml:"started_at"`
	Duration    string    `yaml:"duration"`
}

type factoryDocument struct {
	ID         string              `yaml:"id"`
	Zone       string              `yaml:"zone,omitempty"`
	Type       string              `yaml:"type"`
	Owner      string              `yaml:"owner,omitempty"`
	Price      string              `yaml:"price"`
	Level      int                 `yaml:"level"`
	Status     string              `yaml:"status"`
	Anchor     *factory.Location   `yaml:"anchor,omitempty"`
	Production *productionDocument `yaml:"production,omitempty"`
	Upgrade    *upgradeDocument    `yaml:"upgrade,omitempty"`
	CreatedAt  time.Time           `yaml:"created_at"`
	UpdatedAt  time.Time           `yaml:"updated_at"`
}

type taxRecordDocument struct {
	FactoryID      string    `yaml:"factory_id"`
	Owner          string    `yaml:"owner"`
	AmountDue      string    `yaml:"amount_due"`
	LastAssessment time.Time `yaml:"last_assessment"`
	DueDate        time.Time `yaml:"due_date"`
	Overdue        bool      `yaml:"overdue"`
	LateFeeApplied bool      `yaml:"late_fee_applied"`
}

type paymentDocument struct {
	ID        string    `yaml:"id"`
	FactoryID string    `yaml:"factory_id"`
	Owner     string    `yaml:"owner"`
	Amount    string    `yaml:"amount"`
	Timestamp time.Time `yaml:"timestamp"`
}

type invoiceDocument struct {
	ID        string     `yaml:"id"`
	Owner     string     `yaml:"owner"`
	Type      string     `yaml:"type"`
	FactoryID string     `yaml:"factory_id,omitempty"`
	Amount    string     `yaml:"amount"`
	DueDate   time.Time  `yaml:"due_date"`
	Paid      bool       `yaml:"paid"`
	PaidAt    *time.Time `yaml:"paid_at,omitempty"`
	CreatedAt time.Time  `yaml:"created_at"`
}

type cursorsDocument struct {
	Cursors map[string]time.Time `yaml:"cursors"`
}

func newFactoryDocument(f *factory.Factory) *factoryDocument {
	doc := &factoryDocument{
		ID:        f.ID(),
		Zone:      f.Zone(),
		Type:      f.Type().String(),
		Price:     f.Price().String(),
		Level:     f.Level(),
		Status:    f.Status().String(),
		Anchor:    f.Anchor(),
		CreatedAt: f.CreatedAt(),
		UpdatedAt: f.UpdatedAt(),
	}
	if owner := f.Owner(); owner != nil {
		doc.Owner = owner.String()
	}
	if task := f.Production(); task != nil {
		doc.Production = &productionDocument{
			RecipeID:  task.RecipeID(),
			StartedAt: task.StartedAt(),
			Duration:  task.Duration().String(),
		}
	}
	if up := f.Upgrade(); up != nil {
		doc.Upgrade = &upgradeDocument{
			TargetLevel: up.TargetLevel(),
			StartedAt:   up.StartedAt(),
			Duration:    up.Duration().String(),
		}
	}
	return doc
}

func (d *factoryDocument) toDomain() (*factory.Factory, error) {
	typ, err := factory.ParseType(d.Type)
	if err != nil {
		return nil, err
	}
	price, err := shared.ParseMoney(d.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", d.Price, err)
	}

	var owner *shared.PlayerID
	if d.Owner != "" {
		id, err := shared.ParsePlayerID(d.Owner)
		if err != nil {
			return nil, err
		}
		owner = &id
	}

	var production *factory.ProductionTask
	if d.Production != nil {
		duration, err := time.ParseDuration(d.Production.Duration)
		if err != nil {
			return nil, fmt.Errorf("invalid production duration: %w", err)
		}
		production = factory.ReconstructProductionTask(d.Production.RecipeID, d.Production.StartedAt, duration)
	}

	var upgrade *factory.UpgradeState
	if d.Upgrade != nil {
		duration, err := time.ParseDuration(d.Upgrade.Duration)
		if err != nil {
			return nil, fmt.Errorf("invalid upgrade duration: %w", err)
		}
		upgrade = factory.ReconstructUpgradeState(d.Upgrade.StartedAt, duration, d.Upgrade.TargetLevel)
	}

	level := d.Level
	if level < 1 {
		level = 1
	}

	return factory.ReconstructFactory(
		d.ID, d.Zone, typ, owner, price, level, factory.Status(d.Status),
		d.Anchor, production, upgrade, d.CreatedAt, d.UpdatedAt,
	), nil
}

func newTaxRecordDocument(r *tax.Record) *taxRecordDocument {
	return &taxRecordDocument{
		FactoryID:      r.FactoryID(),
		Owner:          r.Owner().String(),
		AmountDue:      r.AmountDue().String(),
		LastAssessment: r.LastAssessment(),
		DueDate:        r.DueDate(),
		Overdue:        r.Overdue(),
		LateFeeApplied: r.LateFeeApplied(),
	}
}

func (d *taxRecordDocument) toDomain() (*tax.Record, error) {
	owner, err := shared.ParsePlayerID(d.Owner)
	if err != nil {
		return nil, err
	}
	amount, err := shared.ParseMoney(d.AmountDue)
	if err != nil {
		return nil, fmt.Errorf("invalid amount_due %q: %w", d.AmountDue, err)
	}
	return tax.ReconstructRecord(d.FactoryID, owner, amount, d.LastAssessment, d.DueDate, d.Overdue, d.LateFeeApplied), nil
}

func newPaymentDocument(p *tax.Payment) *paymentDocument {
	return &paymentDocument{
		ID:        p.ID.String(),
		FactoryID: p.FactoryID,
		Owner:     p.Owner.String(),
		Amount:    p.Amount.String(),
		Timestamp: p.Timestamp,
	}
}

func (d *paymentDocument) toDomain() (*tax.Payment, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := shared.ParsePlayerID(d.Owner)
	if err != nil {
		return nil, err
	}
	amount, err := shared.ParseMoney(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", d.Amount, err)
	}
	return &tax.Payment{ID: id, FactoryID: d.FactoryID, Owner: owner, Amount: amount, Timestamp: d.Timestamp}, nil
}

func newInvoiceDocument(inv *invoice.Invoice) *invoiceDocument {
	return &invoiceDocument{
		ID:        inv.ID().String(),
		Owner:     inv.Owner().String(),
		Type:      inv.Type().String(),
		FactoryID: inv.FactoryID(),
		Amount:    inv.Amount().String(),
		DueDate:   inv.DueDate(),
		Paid:      inv.Paid(),
		PaidAt:    inv.PaidAt(),
		CreatedAt: inv.CreatedAt(),
	}
}

func (d *invoiceDocument) toDomain() (*invoice.Invoice, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	owner, err := shared.ParsePlayerID(d.Owner)
	if err != nil {
		return nil, err
	}
	typ, err := invoice.ParseType(d.Type)
	if err != nil {
		return nil, err
	}
	amount, err := shared.ParseMoney(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", d.Amount, err)
	}
	return invoice.ReconstructInvoice(id, owner, typ, d.FactoryID, amount, d.DueDate, d.Paid, d.PaidAt, d.CreatedAt), nil
}

func cursorsFromDocument(d *cursorsDocument) []schedule.Cursor {
	cursors := make([]schedule.Cursor, 0, len(d.Cursors))
	for name, lastRun := range d.Cursors {
		cursors = append(cursors, schedule.Cursor{Name: name, LastRun: lastRun})
	}
	return cursors
}
