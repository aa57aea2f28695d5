package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
)

func TestCursor_Due(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cursor := schedule.Cursor{Name: schedule.PassTaxAssessment, LastRun: t0}

	assert.False(t, cursor.Due(t0.Add(23*time.Hour), 24*time.Hour))
	assert.True(t, cursor.Due(t0.Add(24*time.Hour), 24*time.Hour))
	assert.True(t, cursor.Due(t0.Add(240*time.Hour), 24*time.Hour))
}
