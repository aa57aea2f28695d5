package shared_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

func TestLifecycleStateMachine_StartStop(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	sm := shared.NewLifecycleStateMachine(clock)
	assert.Equal(t, shared.LifecycleStatusPending, sm.Status())
	assert.Zero(t, sm.RuntimeDuration())

	require.NoError(t, sm.Start())
	assert.True(t, sm.IsRunning())
	clock.Advance(5 * time.Minute)
	assert.Equal(t, 5*time.Minute, sm.RuntimeDuration())

	require.NoError(t, sm.Stop())
	clock.Advance(time.Hour)
	assert.True(t, sm.IsFinished())
	assert.Equal(t, 5*time.Minute, sm.RuntimeDuration())

	assert.Error(t, sm.Start(), "a stopped loop is not restartable")
}

func TestLifecycleStateMachine_Fail(t *testing.T) {
	sm := shared.NewLifecycleStateMachine(nil)
	boom := errors.New("boom")

	assert.Error(t, sm.Fail(boom), "cannot fail before starting")
	require.NoError(t, sm.Start())
	require.NoError(t, sm.Fail(boom))

	assert.Equal(t, shared.LifecycleStatusFailed, sm.Status())
	assert.ErrorIs(t, sm.LastError(), boom)
	assert.Error(t, sm.Stop())
}
