package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
)

func TestProductionDuration(t *testing.T) {
	tests := []struct {
		name     string
		base     time.Duration
		level    int
		labor    float64
		research float64
		want     time.Duration
	}{
		{"level one is unchanged", 120 * time.Second, 1, 0, 0, 120 * time.Second},
		{"level two takes ten percent off", 120 * time.Second, 2, 0, 0, 108 * time.Second},
		{"reductions multiply", 100 * time.Second, 3, 0.5, 0.1, 36 * time.Second},
		{"floor of one second", 2 * time.Second, 1, 0.9, 0.9, time.Second},
		{"reductions are clamped", 60 * time.Second, 1, -0.5, 0, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := factory.ProductionDuration(tt.base, tt.level, 0.10, tt.labor, tt.research)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpgradeDuration(t *testing.T) {
	assert.Equal(t, 54*time.Minute, factory.UpgradeDuration(time.Hour, 0.10))
	assert.Equal(t, time.Second, factory.UpgradeDuration(time.Hour, 1))
}

func TestProductionTask_Progress(t *testing.T) {
	task := newTask(t, 100*time.Second)

	assert.Equal(t, 0.0, task.Progress(t0.Add(-time.Second)))
	assert.InDelta(t, 0.4, task.Progress(t0.Add(40*time.Second)), 1e-9)
	assert.Equal(t, 60*time.Second, task.Remaining(t0.Add(40*time.Second)))
	assert.Equal(t, 1.0, task.Progress(t0.Add(time.Hour)))
	assert.Equal(t, t0.Add(100*time.Second), task.CompletesAt())
}
