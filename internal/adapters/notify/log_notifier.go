package notify

import (
	"context"
	"log/slog"

	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// LogNotifier writes every notification to the log. Progress ticks go to debug.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, player shared.PlayerID, kind ports.EventKind, payload map[string]any) {
	level := slog.LevelInfo
	if kind == ports.EventProductionProgress {
		level = slog.LevelDebug
	}
	n.logger.Log(ctx, level, "notification",
		"player_id", player.String(),
		"kind", string(kind),
		"payload", payload,
	)
}

// FanOut delivers each notification to every notifier in order
type FanOut []ports.Notifier

func (f FanOut) Notify(ctx context.Context, player shared.PlayerID, kind ports.EventKind, payload map[string]any) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, player, kind, payload)
		}
	}
}
