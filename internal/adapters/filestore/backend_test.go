package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/filestore"
	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

func TestBackend_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	root := t.TempDir()
	store := memstore.New(filestore.NewBackend(root))
	now := helpers.T0
	owner := helpers.Bob

	task, err := factory.NewProductionTask("widget", now, 120*time.Second)
	require.NoError(t, err)
	f := factory.ReconstructFactory("F-7", "zone-2", factory.TypeSmelter, &owner, shared.NewMoney(800),
		3, factory.StatusRunning, nil, task, nil, now, now)
	require.NoError(t, store.Factories().Save(ctx, f))
	require.NoError(t, store.TaxRecords().Save(ctx,
		tax.ReconstructRecord("F-7", owner, shared.NewMoney(44.4), now, now.Add(72*time.Hour), false, false)))
	inv, err := invoice.NewInvoice(invoice.TypeSalary, owner, "F-7", shared.NewMoney(30), now, 72*time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Invoices().Save(ctx, inv))
	require.NoError(t, store.Cursors().Save(ctx, schedule.Cursor{Name: schedule.PassSalaryRun, LastRun: now}))

	// Act
	_, err = store.Flush(ctx)
	require.NoError(t, err)

	reloaded := memstore.New(filestore.NewBackend(root))
	require.NoError(t, reloaded.Load(ctx))

	// Assert
	assert.FileExists(t, filepath.Join(root, "factories", "F-7.yaml"))
	assert.FileExists(t, filepath.Join(root, "cursors.yaml"))

	got, err := reloaded.Factories().Get(ctx, "F-7")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Level())
	assert.Equal(t, factory.StatusRunning, got.Status())
	require.NotNil(t, got.Production())
	assert.Equal(t, 90*time.Second, got.Production().Remaining(now.Add(30*time.Second)))

	record, err := reloaded.TaxRecords().Get(ctx, "F-7")
	require.NoError(t, err)
	assert.Equal(t, "44.40", record.AmountDue().StringFixed(2))
	assert.True(t, record.Owner().Equals(owner))

	gotInvoice, err := reloaded.Invoices().Get(ctx, inv.ID())
	require.NoError(t, err)
	assert.Equal(t, invoice.TypeSalary, gotInvoice.Type())
	assert.False(t, gotInvoice.Paid())

	cursor, ok, err := reloaded.Cursors().Get(ctx, schedule.PassSalaryRun)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cursor.LastRun.Equal(now))
}

func TestBackend_DeleteRemovesDocument(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := memstore.New(filestore.NewBackend(root))
	f, err := factory.NewFactory("F-1", "zone-1", factory.TypeMill, shared.NewMoney(10), helpers.T0)
	require.NoError(t, err)
	require.NoError(t, store.Factories().Save(ctx, f))
	_, err = store.Flush(ctx)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(root, "factories", "F-1.yaml"))

	require.NoError(t, store.Factories().Delete(ctx, "F-1"))
	_, err = store.Flush(ctx)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(root, "factories", "F-1.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBackend_RejectsPathEscapingIDs(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(filestore.NewBackend(t.TempDir()))
	f, err := factory.NewFactory("../escape", "zone-1", factory.TypeMill, shared.NewMoney(10), helpers.T0)
	require.NoError(t, err)
	require.NoError(t, store.Factories().Save(ctx, f))

	_, err = store.Flush(ctx)

	assert.Error(t, err)
	assert.Equal(t, 1, store.Dirty())
}

func TestBackend_LoadEmptyRoot(t *testing.T) {
	snapshot, err := filestore.NewBackend(t.TempDir()).Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snapshot.Factories)
	assert.Empty(t, snapshot.Cursors)
}
