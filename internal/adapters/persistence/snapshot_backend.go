package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
)

// GormSnapshotBackend persists the entity store into relational tables
type GormSnapshotBackend struct {
	db *gorm.DB
}

// NewGormSnapshotBackend creates a new GORM snapshot backend
func NewGormSnapshotBackend(db *gorm.DB) *GormSnapshotBackend {
	return &GormSnapshotBackend{db: db}
}

// Load reads every table into a snapshot
func (b *GormSnapshotBackend) Load(ctx context.Context) (*memstore.Snapshot, error) {
	db := b.db.WithContext(ctx)
	snapshot := &memstore.Snapshot{}

	var factories []FactoryModel
	if err := db.Order("id").Find(&factories).Error; err != nil {
		return nil, fmt.Errorf("failed to load factories: %w", err)
	}
	for i := range factories {
		f, err := modelToFactory(&factories[i])
		if err != nil {
			return nil, err
		}
		snapshot.Factories = append(snapshot.Factories, f)
	}

	var records []TaxRecordModel
	if err := db.Order("factory_id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load tax records: %w", err)
	}
	for i := range records {
		r, err := modelToRecord(&records[i])
		if err != nil {
			return nil, err
		}
		snapshot.TaxRecords = append(snapshot.TaxRecords, r)
	}

	var payments []TaxPaymentModel
	if err := db.Order("timestamp").Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to load tax payments: %w", err)
	}
	for i := range payments {
		p, err := modelToPayment(&payments[i])
		if err != nil {
			return nil, err
		}
		snapshot.Payments = append(snapshot.Payments, p)
	}

	var invoices []InvoiceModel
	if err := db.Order("due_date").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	for i := range invoices {
		inv, err := modelToInvoice(&invoices[i])
		if err != nil {
			return nil, err
		}
		snapshot.Invoices = append(snapshot.Invoices, inv)
	}

	var cursors []SchedulerCursorModel
	if err := db.Find(&cursors).Error; err != nil {
		return nil, fmt.Errorf("failed to load scheduler cursors: %w", err)
	}
	for i := range cursors {
		snapshot.Cursors = append(snapshot.Cursors, modelToCursor(&cursors[i]))
	}

	return snapshot, nil
}

// Apply writes a change set in one transaction
func (b *GormSnapshotBackend) Apply(ctx context.Context, changes *memstore.Changes) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, f := range changes.Factories {
			if err := upsert(tx, factoryToModel(f)); err != nil {
				return fmt.Errorf("failed to save factory %s: %w", f.ID(), err)
			}
		}
		if len(changes.DeletedFactories) > 0 {
			if err := tx.Where("id IN ?", changes.DeletedFactories).Delete(&FactoryModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete factories: %w", err)
			}
		}

		for _, r := range changes.TaxRecords {
			if err := upsert(tx, recordToModel(r)); err != nil {
				return fmt.Errorf("failed to save tax record %s: %w", r.FactoryID(), err)
			}
		}
		if len(changes.DeletedTaxRecords) > 0 {
			if err := tx.Where("factory_id IN ?", changes.DeletedTaxRecords).Delete(&TaxRecordModel{}).Error; err != nil {
				return fmt.Errorf("failed to delete tax records: %w", err)
			}
		}

		for _, p := range changes.Payments {
			// Receipts are immutable; a replayed flush must not fail on the duplicate key
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(paymentToModel(p)).Error; err != nil {
				return fmt.Errorf("failed to append tax payment %s: %w", p.ID, err)
			}
		}

		for _, inv := range changes.Invoices {
			if err := upsert(tx, invoiceToModel(inv)); err != nil {
				return fmt.Errorf("failed to save invoice %s: %w", inv.ID(), err)
			}
		}

		for _, c := range changes.Cursors {
			if err := upsert(tx, cursorToModel(c)); err != nil {
				return fmt.Errorf("failed to save cursor %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func upsert(tx *gorm.DB, model interface{}) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error
}
