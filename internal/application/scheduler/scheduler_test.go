package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/application/scheduler"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

type countingBackend struct {
	mu      sync.Mutex
	applied int
}

func (b *countingBackend) Load(ctx context.Context) (*memstore.Snapshot, error) {
	return &memstore.Snapshot{}, nil
}

func (b *countingBackend) Apply(ctx context.Context, changes *memstore.Changes) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.applied += changes.Len()
	return nil
}

func (b *countingBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applied
}

func TestRunOnce_FreshCursorsWaitAFullInterval(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)

	// Act
	h.Tick(t)

	// Assert
	cursor, ok, err := h.Store.Cursors().Get(h.Ctx, schedule.PassTaxAssessment)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, helpers.T0, cursor.LastRun)

	due, err := h.Container.Taxes.Outstanding(h.Ctx, "F-1")
	require.NoError(t, err)
	assert.True(t, due.IsZero())
}

func TestRunOnce_MissedRunsCollapse(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 10)
	h.Tick(t)

	// Act
	h.Advance(72 * time.Hour)
	h.Tick(t)

	// Assert
	assert.Equal(t, "50.00", h.Record(t, "F-1").AmountDue().StringFixed(2))
	invoices, err := h.Container.Invoices.List(h.Ctx, helpers.Alice, domainInvoice.Filter{})
	require.NoError(t, err)
	assert.Len(t, invoices, 1)

	cursor, _, err := h.Store.Cursors().Get(h.Ctx, schedule.PassTaxAssessment)
	require.NoError(t, err)
	assert.Equal(t, helpers.T0.Add(72*time.Hour), cursor.LastRun)
}

func TestRunOnce_AssessmentsAccumulateDaily(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Tick(t)

	for i := 0; i < 4; i++ {
		h.Advance(24 * time.Hour)
		h.Tick(t)
	}

	record := h.Record(t, "F-1")
	// each assessment pushes the due date out again
	assert.Equal(t, "200.00", record.AmountDue().StringFixed(2))
	assert.Equal(t, helpers.T0.Add(168*time.Hour), record.DueDate())
	assert.False(t, record.Overdue())
}

func TestRunOnce_FlushesThroughBackend(t *testing.T) {
	backend := &countingBackend{}
	h := helpers.NewHarness(t, helpers.WithBackend(backend))
	h.CreateFactory(t, "F-1", factory.TypeSmelter, 1000)

	h.Tick(t)

	assert.Equal(t, 4, backend.count())
	assert.Equal(t, 0, h.Store.Dirty())
}

func TestDo_RunsOnTheLoop(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	s := h.Container.Scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()
	require.Eventually(t, func() bool {
		return s.Status() == shared.LifecycleStatusRunning
	}, time.Second, 5*time.Millisecond)

	// Act
	var nested bool
	err := s.Do(context.Background(), func(ctx context.Context) error {
		return s.Do(ctx, func(ctx context.Context) error {
			nested = true
			return nil
		})
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, nested)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.Do(context.Background(), func(ctx context.Context) error { return boom }), boom)

	s.Stop()
	require.NoError(t, <-runErr)
	assert.Equal(t, shared.LifecycleStatusStopped, s.Status())
	assert.ErrorIs(t, s.Do(context.Background(), func(ctx context.Context) error { return nil }), scheduler.ErrStopped)
}

func TestDo_CancelledContextNeverRuns(t *testing.T) {
	h := helpers.NewHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := h.Container.Scheduler.Do(ctx, func(ctx context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	h := helpers.NewHarness(t)
	s := h.Container.Scheduler
	ctx, cancel := context.WithCancel(context.Background())

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()
	require.Eventually(t, func() bool {
		return s.Status() == shared.LifecycleStatusRunning
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, shared.LifecycleStatusStopped, s.Status())
}

func TestRun_RejectsSecondStart(t *testing.T) {
	h := helpers.NewHarness(t)
	s := h.Container.Scheduler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = s.Run(ctx) }()
	require.Eventually(t, func() bool {
		return s.Status() == shared.LifecycleStatusRunning
	}, time.Second, 5*time.Millisecond)

	assert.Error(t, s.Run(ctx))
	s.Stop()
}
