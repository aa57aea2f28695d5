package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/production"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// StartProductionCommand starts a recipe on a factory owned by the player
type StartProductionCommand struct {
	PlayerID  shared.PlayerID
	FactoryID string
	RecipeID  string
}

// StartProductionResponse describes the started task
type StartProductionResponse struct {
	FactoryID   string
	RecipeID    string
	Duration    time.Duration
	CompletesAt time.Time
}

// StartProductionHandler checks ownership, recipe, labor and inputs before it
// consumes anything, then hands the planned task to the production engine.
// A shortfall of inputs leaves the factory in NO_PARTS.
type StartProductionHandler struct {
	factories  factory.FactoryRepository
	catalog    factory.RecipeCatalog
	storage    ports.StorageService
	notifier   ports.Notifier
	engine     *production.Engine
	serializer common.Serializer
	clock      shared.Clock
}

// NewStartProductionHandler creates a new StartProductionHandler
func NewStartProductionHandler(
	factories factory.FactoryRepository,
	catalog factory.RecipeCatalog,
	storage ports.StorageService,
	notifier ports.Notifier,
	engine *production.Engine,
	serializer common.Serializer,
	clock shared.Clock,
) *StartProductionHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &StartProductionHandler{
		factories:  factories,
		catalog:    catalog,
		storage:    storage,
		notifier:   notifier,
		engine:     engine,
		serializer: serializer,
		clock:      clock,
	}
}

// Handle executes the StartProduction command
func (h *StartProductionHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*StartProductionCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *StartProductionCommand")
	}

	var response *StartProductionResponse
	err := h.serializer.Do(ctx, func(ctx context.Context) error {
		f, err := h.factories.Get(ctx, cmd.FactoryID)
		if err != nil {
			return err
		}
		if err := f.EnsureOwnedBy(cmd.PlayerID); err != nil {
			return err
		}

		recipe, err := h.catalog.Find(cmd.RecipeID)
		if err != nil {
			return err
		}
		if !recipe.AllowedFor(f.Type()) {
			return factory.NewRecipeNotAllowedError(recipe.ID, f.Type())
		}

		task, err := h.engine.PlanProduction(ctx, f, recipe)
		if err != nil {
			return err
		}

		missing, err := h.missingInputs(ctx, f.ID(), recipe)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return h.stall(ctx, f, missing)
		}

		if err := common.ConsumeAll(ctx, h.storage, f.ID(), recipe.Inputs); err != nil {
			return err
		}
		if err := h.engine.BeginProduction(ctx, f, task); err != nil {
			common.RestoreAll(ctx, h.storage, f.ID(), recipe.Inputs)
			return err
		}

		response = &StartProductionResponse{
			FactoryID:   f.ID(),
			RecipeID:    recipe.ID,
			Duration:    task.Duration(),
			CompletesAt: task.CompletesAt(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (h *StartProductionHandler) missingInputs(ctx context.Context, factoryID string, recipe *factory.Recipe) ([]factory.ResourceAmount, error) {
	var missing []factory.ResourceAmount
	for _, in := range recipe.Inputs {
		has, err := h.storage.HasInput(ctx, factoryID, in.ResourceID, in.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s for factory %s: %w", in.ResourceID, factoryID, err)
		}
		if !has {
			missing = append(missing, in)
		}
	}
	return missing, nil
}

// stall records NO_PARTS and returns the InsufficientInputs error for the caller
func (h *StartProductionHandler) stall(ctx context.Context, f *factory.Factory, missing []factory.ResourceAmount) error {
	inputsErr := factory.NewInsufficientInputsError(f.ID(), missing)

	if err := f.MarkNoParts(h.clock.Now()); err != nil {
		return err
	}
	if err := h.factories.Save(ctx, f); err != nil {
		return fmt.Errorf("failed to save factory %s: %w", f.ID(), err)
	}

	h.notifier.Notify(ctx, *f.Owner(), ports.EventProductionNoParts, map[string]any{
		"factory_id": f.ID(),
		"missing":    missing,
	})
	return inputsErr
}
