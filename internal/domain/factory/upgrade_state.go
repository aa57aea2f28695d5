package factory

import (
	"fmt"
	"time"
)

// UpgradeState is a timed level-up in progress. Once started it always completes
// on a later tick unless the factory is sold or removed.
type UpgradeState struct {
	startedAt   time.Time
	duration    time.Duration
	targetLevel int
}

// NewUpgradeState creates an upgrade towards targetLevel
func NewUpgradeState(startedAt time.Time, duration time.Duration, targetLevel int) (*UpgradeState, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("upgrade duration must be positive, got %s", duration)
	}
	if targetLevel < 2 {
		return nil, fmt.Errorf("upgrade target level must be at least 2, got %d", targetLevel)
	}
	return &UpgradeState{startedAt: startedAt, duration: duration, targetLevel: targetLevel}, nil
}

// ReconstructUpgradeState rebuilds an upgrade from persistence without validation
func ReconstructUpgradeState(startedAt time.Time, duration time.Duration, targetLevel int) *UpgradeState {
	return &UpgradeState{startedAt: startedAt, duration: duration, targetLevel: targetLevel}
}

func (u *UpgradeState) StartedAt() time.Time    { return u.startedAt }
func (u *UpgradeState) Duration() time.Duration { return u.duration }
func (u *UpgradeState) TargetLevel() int        { return u.targetLevel }

// Complete reports whether the upgrade timer has run out
func (u *UpgradeState) Complete(now time.Time) bool {
	return now.Sub(u.startedAt) >= u.duration
}

// Remaining returns the time left until the level increments
func (u *UpgradeState) Remaining(now time.Time) time.Duration {
	remaining := u.duration - now.Sub(u.startedAt)
	if remaining < 0 {
		return 0
	}
	if remaining > u.duration {
		return u.duration
	}
	return remaining
}
