package memstore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
)

var (
	owner = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")
	t0    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fakeBackend struct {
	mu       sync.Mutex
	snapshot *memstore.Snapshot
	applied  []*memstore.Changes
	failures int
}

func (b *fakeBackend) Load(ctx context.Context) (*memstore.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snapshot == nil {
		return &memstore.Snapshot{}, nil
	}
	return b.snapshot, nil
}

func (b *fakeBackend) Apply(ctx context.Context, changes *memstore.Changes) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		return errors.New("disk full")
	}
	b.applied = append(b.applied, changes)
	return nil
}

func newFactory(t *testing.T, id string) *factory.Factory {
	t.Helper()
	f, err := factory.NewFactory(id, "zone-1", factory.TypeSmelter, shared.NewMoney(100), t0)
	require.NoError(t, err)
	return f
}

func TestFlush_WritesOnlyDirtyRecords(t *testing.T) {
	// Arrange
	ctx := context.Background()
	backend := &fakeBackend{}
	store := memstore.New(backend)
	require.NoError(t, store.Factories().Save(ctx, newFactory(t, "F-1")))
	require.NoError(t, store.Cursors().Save(ctx, schedule.Cursor{Name: schedule.PassSalaryRun, LastRun: t0}))

	// Act
	n, err := store.Flush(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, store.Dirty())

	n, err = store.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, backend.applied, 1)
}

func TestFlush_FailureKeepsRecordsDirty(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{failures: 3}
	store := memstore.New(backend)
	require.NoError(t, store.Factories().Save(ctx, newFactory(t, "F-1")))

	_, err := store.Flush(ctx)

	require.Error(t, err)
	assert.Equal(t, 1, store.Dirty())

	n, err := store.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, backend.applied, 1)
	assert.Equal(t, "F-1", backend.applied[0].Factories[0].ID())
}

func TestFlush_RetriesTransientFailure(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{failures: 1}
	store := memstore.New(backend)
	require.NoError(t, store.Factories().Save(ctx, newFactory(t, "F-1")))

	n, err := store.Flush(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFlush_DeletesAreCarried(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	store := memstore.New(backend)
	record, err := tax.NewRecord("F-1", owner)
	require.NoError(t, err)
	require.NoError(t, store.TaxRecords().Save(ctx, record))
	_, err = store.Flush(ctx)
	require.NoError(t, err)

	require.NoError(t, store.TaxRecords().Delete(ctx, "F-1"))
	_, err = store.Flush(ctx)

	require.NoError(t, err)
	require.Len(t, backend.applied, 2)
	assert.Equal(t, []string{"F-1"}, backend.applied[1].DeletedTaxRecords)
	_, err = store.TaxRecords().Get(ctx, "F-1")
	assert.ErrorIs(t, err, tax.ErrRecordNotFound)
}

func TestFlush_WithoutBackendKeepsMarks(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(nil)
	require.NoError(t, store.Factories().Save(ctx, newFactory(t, "F-1")))

	n, err := store.Flush(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, store.Dirty())
}

func TestLoad_ReplacesState(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{snapshot: &memstore.Snapshot{
		Factories: []*factory.Factory{newFactory(t, "F-2"), newFactory(t, "F-1")},
		Cursors:   []schedule.Cursor{{Name: schedule.PassTaxAssessment, LastRun: t0}},
	}}
	store := memstore.New(backend)
	require.NoError(t, store.Factories().Save(ctx, newFactory(t, "stale")))

	require.NoError(t, store.Load(ctx))

	factories, err := store.Factories().List(ctx)
	require.NoError(t, err)
	require.Len(t, factories, 2)
	assert.Equal(t, "F-1", factories[0].ID())
	assert.Equal(t, 0, store.Dirty())

	cursor, ok, err := store.Cursors().Get(ctx, schedule.PassTaxAssessment)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, t0, cursor.LastRun)
}

func TestRepositories_ListByOwner(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(nil)
	owned := newFactory(t, "F-2")
	require.NoError(t, owned.AssignOwner(owner, t0))
	require.NoError(t, store.Factories().Save(ctx, owned))
	require.NoError(t, store.Factories().Save(ctx, newFactory(t, "F-1")))

	mine, err := store.Factories().ListByOwner(ctx, owner)

	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "F-2", mine[0].ID())
}
