package buff

import (
	"context"
	"log/slog"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ResearchService reports how far a player has researched each buff line
type ResearchService interface {
	CompletedLevel(ctx context.Context, player shared.PlayerID, key Key) (int, error)
}

// PerLevelSource supplies the per-level value of each key. It is read on every
// lookup so reloaded configuration applies on the next calculation.
type PerLevelSource interface {
	PerLevel(key Key) float64
}

// StaticPerLevel is a fixed PerLevelSource
type StaticPerLevel map[Key]float64

func (s StaticPerLevel) PerLevel(key Key) float64 {
	return s[key]
}

// Resolver computes buff values from research progress. It holds no state of its
// own and never caches, so research changes apply on the next calculation.
type Resolver struct {
	research ResearchService
	perLevel PerLevelSource
	logger   *slog.Logger
}

// NewResolver creates a resolver. A nil research service resolves every buff to zero.
func NewResolver(research ResearchService, perLevel PerLevelSource, logger *slog.Logger) *Resolver {
	if perLevel == nil {
		perLevel = StaticPerLevel{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{research: research, perLevel: perLevel, logger: logger}
}

// Value returns completedLevel(player, key) x perLevel(key). Lookup failures
// resolve to zero so a research outage never blocks a tick.
func (r *Resolver) Value(ctx context.Context, player shared.PlayerID, key Key) float64 {
	if r == nil || r.research == nil {
		return 0
	}

	level, err := r.research.CompletedLevel(ctx, player, key)
	if err != nil {
		r.logger.WarnContext(ctx, "buff lookup failed, using zero",
			"player", player.String(), "buff", string(key), "error", err)
		return 0
	}
	if level <= 0 {
		return 0
	}
	return float64(level) * r.perLevel.PerLevel(key)
}

// Fraction returns Value clamped to [0, 1] for use as a percentage reduction
func (r *Resolver) Fraction(ctx context.Context, player shared.PlayerID, key Key) float64 {
	v := r.Value(ctx, player, key)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
