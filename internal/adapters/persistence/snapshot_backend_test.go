package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/adapters/persistence"
	"github.com/andrescamacho/factory-economy/internal/application/production/commands"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

func TestSnapshotBackend_TimersSurviveReload(t *testing.T) {
	// Arrange
	backend := persistence.NewGormSnapshotBackend(helpers.NewTestDB(t))
	h := helpers.NewHarness(t, helpers.WithBackend(backend))
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 0)
	h.Host.Storage().AddInput("F-1", "ore", 2)
	_, err := mediator.Dispatch[*commands.StartProductionResponse](h.Ctx, h.Mediator, &commands.StartProductionCommand{
		PlayerID:  helpers.Alice,
		FactoryID: "F-1",
		RecipeID:  "widget",
	})
	require.NoError(t, err)

	// Act
	h.Advance(40 * time.Second)
	h.Tick(t)

	reloaded := memstore.New(backend)
	require.NoError(t, reloaded.Load(context.Background()))

	// Assert
	f, err := reloaded.Factories().Get(context.Background(), "F-1")
	require.NoError(t, err)
	assert.Equal(t, factory.StatusRunning, f.Status())
	assert.True(t, f.IsOwnedBy(helpers.Alice))
	require.NotNil(t, f.Production())
	assert.Equal(t, "widget", f.Production().RecipeID())
	assert.Equal(t, 80*time.Second, f.Production().Remaining(h.Clock.Now()))
}

func TestSnapshotBackend_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	backend := persistence.NewGormSnapshotBackend(helpers.NewTestDB(t))
	store := memstore.New(backend)
	now := helpers.T0
	owner := helpers.Alice

	upgrade := factory.ReconstructUpgradeState(now, time.Hour, 3)
	anchor := &factory.Location{World: "overworld", X: 1.5, Y: 64, Z: -20, Yaw: 90}
	f := factory.ReconstructFactory("F-1", "zone-1", factory.TypeRefinery, &owner, shared.NewMoney(2500.75),
		2, factory.StatusNoParts, anchor, nil, upgrade, now, now)
	require.NoError(t, store.Factories().Save(ctx, f))

	record := tax.ReconstructRecord("F-1", owner, shared.NewMoney(131.25), now, now.Add(72*time.Hour), true, true)
	require.NoError(t, store.TaxRecords().Save(ctx, record))

	payment := tax.NewPayment("F-1", owner, shared.NewMoney(50), now)
	require.NoError(t, store.Payments().Append(ctx, payment))

	inv, err := invoice.NewInvoice(invoice.TypeSalary, owner, "F-1", shared.NewMoney(12.5), now, time.Hour)
	require.NoError(t, err)
	require.NoError(t, inv.MarkPaid(now.Add(time.Minute)))
	require.NoError(t, store.Invoices().Save(ctx, inv))

	require.NoError(t, store.Cursors().Save(ctx, schedule.Cursor{Name: schedule.PassOverdueCheck, LastRun: now}))

	// Act
	n, err := store.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	reloaded := memstore.New(backend)
	require.NoError(t, reloaded.Load(ctx))

	// Assert
	gotFactory, err := reloaded.Factories().Get(ctx, "F-1")
	require.NoError(t, err)
	assert.Equal(t, factory.TypeRefinery, gotFactory.Type())
	assert.Equal(t, 2, gotFactory.Level())
	assert.Equal(t, factory.StatusNoParts, gotFactory.Status())
	assert.Equal(t, "2500.75", gotFactory.Price().StringFixed(2))
	require.NotNil(t, gotFactory.Anchor())
	assert.Equal(t, *anchor, *gotFactory.Anchor())
	require.NotNil(t, gotFactory.Upgrade())
	assert.Equal(t, 3, gotFactory.Upgrade().TargetLevel())
	assert.True(t, gotFactory.Upgrade().StartedAt().Equal(now))

	gotRecord, err := reloaded.TaxRecords().Get(ctx, "F-1")
	require.NoError(t, err)
	assert.Equal(t, "131.25", gotRecord.AmountDue().StringFixed(2))
	assert.True(t, gotRecord.Overdue())
	assert.True(t, gotRecord.LateFeeApplied())
	assert.True(t, gotRecord.DueDate().Equal(now.Add(72*time.Hour)))

	payments, err := reloaded.Payments().ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, payment.ID, payments[0].ID)

	gotInvoice, err := reloaded.Invoices().Get(ctx, inv.ID())
	require.NoError(t, err)
	assert.True(t, gotInvoice.Paid())
	require.NotNil(t, gotInvoice.PaidAt())
	assert.True(t, gotInvoice.PaidAt().Equal(now.Add(time.Minute)))

	cursor, ok, err := reloaded.Cursors().Get(ctx, schedule.PassOverdueCheck)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cursor.LastRun.Equal(now))
}

func TestSnapshotBackend_AppliesDeletes(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewGormSnapshotBackend(helpers.NewTestDB(t))
	store := memstore.New(backend)
	f, err := factory.NewFactory("F-1", "zone-1", factory.TypeMill, shared.NewMoney(10), helpers.T0)
	require.NoError(t, err)
	require.NoError(t, store.Factories().Save(ctx, f))
	_, err = store.Flush(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Factories().Delete(ctx, "F-1"))
	_, err = store.Flush(ctx)
	require.NoError(t, err)

	snapshot, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Factories)
}
