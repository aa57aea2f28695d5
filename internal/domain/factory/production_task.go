package factory

import (
	"fmt"
	"time"
)

// ProductionTask is a single in-flight recipe run. It is immutable once created;
// progress is derived from the start time so timers survive restarts untouched.
type ProductionTask struct {
	recipeID  string
	startedAt time.Time
	duration  time.Duration
}

// NewProductionTask creates a task whose duration has already been adjusted for level and buffs
func NewProductionTask(recipeID string, startedAt time.Time, duration time.Duration) (*ProductionTask, error) {
	if recipeID == "" {
		return nil, fmt.Errorf("production task requires a recipe")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("production duration must be positive, got %s", duration)
	}
	return &ProductionTask{recipeID: recipeID, startedAt: startedAt, duration: duration}, nil
}

// ReconstructProductionTask rebuilds a task from persistence without validation
func ReconstructProductionTask(recipeID string, startedAt time.Time, duration time.Duration) *ProductionTask {
	return &ProductionTask{recipeID: recipeID, startedAt: startedAt, duration: duration}
}

func (t *ProductionTask) RecipeID() string        { return t.recipeID }
func (t *ProductionTask) StartedAt() time.Time    { return t.startedAt }
func (t *ProductionTask) Duration() time.Duration { return t.duration }

// Elapsed returns time since start, never negative
func (t *ProductionTask) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(t.startedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Progress returns completion in [0, 1]
func (t *ProductionTask) Progress(now time.Time) float64 {
	p := float64(t.Elapsed(now)) / float64(t.duration)
	if p > 1 {
		return 1
	}
	return p
}

// Complete reports whether the full duration has elapsed
func (t *ProductionTask) Complete(now time.Time) bool {
	return t.Elapsed(now) >= t.duration
}

// Remaining returns the time left until completion
func (t *ProductionTask) Remaining(now time.Time) time.Duration {
	remaining := t.duration - t.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompletesAt returns the wall-clock completion time
func (t *ProductionTask) CompletesAt() time.Time {
	return t.startedAt.Add(t.duration)
}
