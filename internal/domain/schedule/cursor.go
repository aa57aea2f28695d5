package schedule

import (
	"context"
	"time"
)

// Pass names for periodic scheduler work
const (
	PassTaxAssessment = "tax_assessment"
	PassOverdueCheck  = "overdue_check"
	PassSalaryRun     = "salary_run"
)

// Cursor remembers when a periodic pass last ran so its cadence survives restarts
type Cursor struct {
	Name    string
	LastRun time.Time
}

// Due reports whether interval has elapsed since the last run
func (c Cursor) Due(now time.Time, interval time.Duration) bool {
	return !now.Before(c.LastRun.Add(interval))
}

// CursorRepository stores cursors by pass name
type CursorRepository interface {
	// Get returns the cursor and whether it exists
	Get(ctx context.Context, name string) (Cursor, bool, error)
	Save(ctx context.Context, cursor Cursor) error
}
