package helpers

import (
	"context"
	"errors"
	"sync"

	"github.com/andrescamacho/factory-economy/internal/application/setup"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
)

// ErrLaborDown is returned by a FailingLabor once tripped
var ErrLaborDown = errors.New("labor service unavailable")

// ErrStorageDown is returned by a FailingStorage for its broken resource
var ErrStorageDown = errors.New("storage unavailable")

// FailingLabor wraps a labor service and fails bonus lookups while tripped.
// HasLaborAssigned keeps answering so starts get past the staffing check.
type FailingLabor struct {
	ports.LaborService

	mu      sync.Mutex
	tripped bool
}

// Trip makes every following TimeReductionFor fail
func (l *FailingLabor) Trip() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tripped = true
}

func (l *FailingLabor) TimeReductionFor(ctx context.Context, factoryID string) (float64, error) {
	l.mu.Lock()
	tripped := l.tripped
	l.mu.Unlock()
	if tripped {
		return 0, ErrLaborDown
	}
	return l.LaborService.TimeReductionFor(ctx, factoryID)
}

// WithFailingLabor routes labor calls through labor, wrapping the harness host labor
func WithFailingLabor(labor *FailingLabor) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		labor.LaborService = deps.Labor
		deps.Labor = labor
	}
}

// FailingStorage wraps a storage service and refuses to consume one resource.
// HasInput still reports the stock so the failure surfaces mid-consumption.
type FailingStorage struct {
	ports.StorageService

	mu     sync.Mutex
	broken string
}

// Break makes ConsumeInput fail for resourceID
func (s *FailingStorage) Break(resourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken = resourceID
}

func (s *FailingStorage) ConsumeInput(ctx context.Context, factoryID, resourceID string, qty int) error {
	s.mu.Lock()
	broken := s.broken
	s.mu.Unlock()
	if broken != "" && broken == resourceID {
		return ErrStorageDown
	}
	return s.StorageService.ConsumeInput(ctx, factoryID, resourceID, qty)
}

// WithFailingStorage routes storage calls through storage, wrapping the harness host storage
func WithFailingStorage(storage *FailingStorage) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		storage.StorageService = deps.Storage
		deps.Storage = storage
	}
}

// WithUpgradeLevel replaces the settings of one upgrade level
func WithUpgradeLevel(level int, ls upgrade.LevelSettings) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		levels := make(map[int]upgrade.LevelSettings, len(settings.Upgrade.Levels))
		for k, v := range settings.Upgrade.Levels {
			levels[k] = v
		}
		levels[level] = ls
		settings.Upgrade.Levels = levels
	}
}
