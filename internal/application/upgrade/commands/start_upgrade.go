package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// StartUpgradeCommand starts the next level-up of a factory
type StartUpgradeCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
}

// StartUpgradeResponse describes the started upgrade
type StartUpgradeResponse struct {
	FactoryID   string
	TargetLevel int
	Duration    time.Duration
	CompletesAt time.Time
}

// StartUpgradeHandler handles the StartUpgrade command
type StartUpgradeHandler struct {
	factories  factory.FactoryRepository
	engine     *upgrade.Engine
	serializer common.Serializer
}

func NewStartUpgradeHandler(factories factory.FactoryRepository, engine *upgrade.Engine, serializer common.Serializer) *StartUpgradeHandler {
	return &StartUpgradeHandler{factories: factories, engine: engine, serializer: serializer}
}

func (h *StartUpgradeHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartUpgradeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartUpgradeCommand")
	}

	var response *StartUpgradeResponse
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		f, err := h.factories.Get(ctx, cmd.FactoryID)
		if err != nil {
			return err
		}
		if err := f.EnsureOwnedBy(cmd.PlayerID); err != nil {
			return err
		}

		state, err := h.engine.StartUpgrade(ctx, f)
		if err != nil {
			return err
		}

		response = &StartUpgradeResponse{
			FactoryID:   f.ID(),
			TargetLevel: state.TargetLevel(),
			Duration:    state.Duration(),
			CompletesAt: state.StartedAt().Add(state.Duration()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}
