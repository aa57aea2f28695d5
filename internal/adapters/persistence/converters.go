package persistence

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

func factoryToModel(f *factory.Factory) *FactoryModel {
	model := &FactoryModel{
		ID:        f.ID(),
		Zone:      f.Zone(),
		Type:      f.Type().String(),
		Price:     f.Price(),
		Level:     f.Level(),
		Status:    f.Status().String(),
		CreatedAt: f.CreatedAt(),
		UpdatedAt: f.UpdatedAt(),
	}

	if owner := f.Owner(); owner != nil {
		id := owner.String()
		model.OwnerID = &id
	}

	if a := f.Anchor(); a != nil {
		world, x, y, z, yaw, pitch := a.World, a.X, a.Y, a.Z, a.Yaw, a.Pitch
		model.AnchorWorld = &world
		model.AnchorX, model.AnchorY, model.AnchorZ = &x, &y, &z
		model.AnchorYaw, model.AnchorPitch = &yaw, &pitch
	}

	if task := f.Production(); task != nil {
		recipeID := task.RecipeID()
		startedAt := task.StartedAt()
		ms := task.Duration().Milliseconds()
		model.ProductionRecipeID = &recipeID
		model.ProductionStartedAt = &startedAt
		model.ProductionDurationMs = &ms
	}

	if up := f.Upgrade(); up != nil {
		target := up.TargetLevel()
		startedAt := up.StartedAt()
		ms := up.Duration().Milliseconds()
		model.UpgradeTargetLevel = &target
		model.UpgradeStartedAt = &startedAt
		model.UpgradeDurationMs = &ms
	}

	return model
}

// modelToFactory rebuilds the factory. Unknown status strings are kept as-is so
// the engine heals them on the next tick instead of failing the load.
func modelToFactory(model *FactoryModel) (*factory.Factory, error) {
	typ, err := factory.ParseType(model.Type)
	if err != nil {
		return nil, fmt.Errorf("factory %s: %w", model.ID, err)
	}

	var owner *shared.PlayerID
	if model.OwnerID != nil && *model.OwnerID != "" {
		id, err := shared.ParsePlayerID(*model.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("factory %s: %w", model.ID, err)
		}
		owner = &id
	}

	var anchor *factory.Location
	if model.AnchorWorld != nil {
		anchor = &factory.Location{World: *model.AnchorWorld}
		if model.AnchorX != nil {
			anchor.X = *model.AnchorX
		}
		if model.AnchorY != nil {
			anchor.Y = *model.AnchorY
		}
		if model.AnchorZ != nil {
			anchor.Z = *model.AnchorZ
		}
		if model.AnchorYaw != nil {
			anchor.Yaw = *model.AnchorYaw
		}
		if model.AnchorPitch != nil {
			anchor.Pitch = *model.AnchorPitch
		}
	}

	var production *factory.ProductionTask
	if model.ProductionRecipeID != nil && model.ProductionStartedAt != nil && model.ProductionDurationMs != nil {
		production = factory.ReconstructProductionTask(
			*model.ProductionRecipeID,
			*model.ProductionStartedAt,
			time.Duration(*model.ProductionDurationMs)*time.Millisecond,
		)
	}

	var upgrade *factory.UpgradeState
	if model.UpgradeTargetLevel != nil && model.UpgradeStartedAt != nil && model.UpgradeDurationMs != nil {
		upgrade = factory.ReconstructUpgradeState(
			*model.UpgradeStartedAt,
			time.Duration(*model.UpgradeDurationMs)*time.Millisecond,
			*model.UpgradeTargetLevel,
		)
	}

	return factory.ReconstructFactory(
		model.ID, model.Zone, typ, owner, model.Price, model.Level,
		factory.Status(model.Status), anchor, production, upgrade,
		model.CreatedAt, model.UpdatedAt,
	), nil
}

func recordToModel(r *tax.Record) *TaxRecordModel {
	return &TaxRecordModel{
		FactoryID:      r.FactoryID(),
		OwnerID:        r.Owner().String(),
		AmountDue:      r.AmountDue(),
		LastAssessment: r.LastAssessment(),
		DueDate:        r.DueDate(),
		Overdue:        r.Overdue(),
		LateFeeApplied: r.LateFeeApplied(),
	}
}

func modelToRecord(model *TaxRecordModel) (*tax.Record, error) {
	owner, err := shared.ParsePlayerID(model.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("tax record %s: %w", model.FactoryID, err)
	}
	return tax.ReconstructRecord(
		model.FactoryID, owner, model.AmountDue,
		model.LastAssessment, model.DueDate,
		model.Overdue, model.LateFeeApplied,
	), nil
}

func paymentToModel(p *tax.Payment) *TaxPaymentModel {
	return &TaxPaymentModel{
		ID:        p.ID.String(),
		FactoryID: p.FactoryID,
		OwnerID:   p.Owner.String(),
		Amount:    p.Amount,
		Timestamp: p.Timestamp,
	}
}

func modelToPayment(model *TaxPaymentModel) (*tax.Payment, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("tax payment %s: %w", model.ID, err)
	}
	owner, err := shared.ParsePlayerID(model.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("tax payment %s: %w", model.ID, err)
	}
	return &tax.Payment{
		ID:        id,
		FactoryID: model.FactoryID,
		Owner:     owner,
		Amount:    model.Amount,
		Timestamp: model.Timestamp,
	}, nil
}

func invoiceToModel(inv *invoice.Invoice) *InvoiceModel {
	return &InvoiceModel{
		ID:        inv.ID().String(),
		OwnerID:   inv.Owner().String(),
		Type:      inv.Type().String(),
		FactoryID: inv.FactoryID(),
		Amount:    inv.Amount(),
		DueDate:   inv.DueDate(),
		Paid:      inv.Paid(),
		PaidAt:    inv.PaidAt(),
		CreatedAt: inv.CreatedAt(),
	}
}

func modelToInvoice(model *InvoiceModel) (*invoice.Invoice, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", model.ID, err)
	}
	owner, err := shared.ParsePlayerID(model.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", model.ID, err)
	}
	typ, err := invoice.ParseType(model.Type)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", model.ID, err)
	}
	return invoice.ReconstructInvoice(
		id, owner, typ, model.FactoryID, model.Amount,
		model.DueDate, model.Paid, model.PaidAt, model.CreatedAt,
	), nil
}

func cursorToModel(c schedule.Cursor) *SchedulerCursorModel {
	return &SchedulerCursorModel{Name: c.Name, LastRun: c.LastRun}
}

func modelToCursor(model *SchedulerCursorModel) schedule.Cursor {
	return schedule.Cursor{Name: model.Name, LastRun: model.LastRun}
}
