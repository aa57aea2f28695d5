package shared

import (
	"fmt"
	"time"
)

// LifecycleStatus is the state of a long-running loop such as the scheduler
type LifecycleStatus string

const (
	// LifecycleStatusPending means the loop has not started yet
	LifecycleStatusPending LifecycleStatus = "PENDING"

	// LifecycleStatusRunning means the loop is accepting work
	LifecycleStatusRunning LifecycleStatus = "RUNNING"

	// LifecycleStatusStopped means the loop exited on request
	LifecycleStatusStopped LifecycleStatus = "STOPPED"

	// LifecycleStatusFailed means the loop exited with an error
	LifecycleStatusFailed LifecycleStatus = "FAILED"
)

// LifecycleStateMachine tracks PENDING → RUNNING → STOPPED/FAILED.
// It is not safe for concurrent use; owners guard it themselves.
type LifecycleStateMachine struct {
	status    LifecycleStatus
	startedAt *time.Time
	stoppedAt *time.Time
	lastError error
	clock     Clock
}

// NewLifecycleStateMachine creates a machine in PENDING state
func NewLifecycleStateMachine(clock Clock) *LifecycleStateMachine {
	if clock == nil {
		clock = NewRealClock()
	}
	return &LifecycleStateMachine{
		status: LifecycleStatusPending,
		clock:  clock,
	}
}

func (sm *LifecycleStateMachine) Status() LifecycleStatus { return sm.status }
func (sm *LifecycleStateMachine) StartedAt() *time.Time   { return sm.startedAt }
func (sm *LifecycleStateMachine) StoppedAt() *time.Time   { return sm.stoppedAt }
func (sm *LifecycleStateMachine) LastError() error        { return sm.lastError }

// Start transitions from PENDING to RUNNING. A stopped loop is not restartable.
func (sm *LifecycleStateMachine) Start() error {
	if sm.status != LifecycleStatusPending {
		return fmt.Errorf("cannot start from %s state", sm.status)
	}
	now := sm.clock.Now()
	sm.status = LifecycleStatusRunning
	sm.startedAt = &now
	return nil
}

// Stop transitions from RUNNING to STOPPED
func (sm *LifecycleStateMachine) Stop() error {
	if sm.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot stop from %s state", sm.status)
	}
	now := sm.clock.Now()
	sm.status = LifecycleStatusStopped
	sm.stoppedAt = &now
	return nil
}

// Fail transitions from RUNNING to FAILED and keeps err
func (sm *LifecycleStateMachine) Fail(err error) error {
	if sm.status != LifecycleStatusRunning {
		return fmt.Errorf("cannot fail from %s state", sm.status)
	}
	now := sm.clock.Now()
	sm.status = LifecycleStatusFailed
	sm.lastError = err
	sm.stoppedAt = &now
	return nil
}

// IsRunning reports whether the loop accepts work
func (sm *LifecycleStateMachine) IsRunning() bool {
	return sm.status == LifecycleStatusRunning
}

// IsFinished reports whether the loop has exited
func (sm *LifecycleStateMachine) IsFinished() bool {
	return sm.status == LifecycleStatusStopped || sm.status == LifecycleStatusFailed
}

// RuntimeDuration returns how long the loop has been (or was) running
func (sm *LifecycleStateMachine) RuntimeDuration() time.Duration {
	if sm.startedAt == nil {
		return 0
	}
	end := sm.clock.Now()
	if sm.stoppedAt != nil {
		end = *sm.stoppedAt
	}
	return end.Sub(*sm.startedAt)
}
