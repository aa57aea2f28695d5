package production

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// Settings tunes production durations
type Settings struct {
	// LevelTimeReduction is taken off the base duration per level above 1
	LevelTimeReduction float64
}

// Engine runs the production state machine of every factory
type Engine struct {
	factories factory.FactoryRepository
	catalog   factory.RecipeCatalog
	labor     ports.LaborService
	storage   ports.StorageService
	notifier  ports.Notifier
	progress  ports.ProgressTracker
	buffs     *buff.Resolver
	hooks     *Hooks
	settings  Settings
	clock     shared.Clock
}

// NewEngine creates a production engine. progress and hooks may be nil.
func NewEngine(
	factories factory.FactoryRepository,
	catalog factory.RecipeCatalog,
	labor ports.LaborService,
	storage ports.StorageService,
	notifier ports.Notifier,
	progress ports.ProgressTracker,
	buffs *buff.Resolver,
	hooks *Hooks,
	settings Settings,
	clock shared.Clock,
) *Engine {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if hooks == nil {
		hooks = NewHooks()
	}
	return &Engine{
		factories: factories,
		catalog:   catalog,
		labor:     labor,
		storage:   storage,
		notifier:  notifier,
		progress:  progress,
		buffs:     buffs,
		hooks:     hooks,
		settings:  settings,
		clock:     clock,
	}
}

// CanStart checks the preconditions that do not involve inputs
func (e *Engine) CanStart(ctx context.Context, f *factory.Factory) error {
	if f.IsRunning() {
		return factory.NewAlreadyProducingError(f.ID())
	}

	assigned, err := e.labor.HasLaborAssigned(ctx, f.ID())
	if err != nil {
		return fmt.Errorf("failed to check labor for factory %s: %w", f.ID(), err)
	}
	if !assigned {
		return factory.NewNoEmployeeAssignedError(f.ID())
	}
	return nil
}

// EffectiveDuration computes the adjusted duration of recipe on f right now
func (e *Engine) EffectiveDuration(ctx context.Context, f *factory.Factory, recipe *factory.Recipe) (time.Duration, error) {
	laborReduction, err := e.labor.TimeReductionFor(ctx, f.ID())
	if err != nil {
		return 0, fmt.Errorf("failed to get labor bonus for factory %s: %w", f.ID(), err)
	}

	var researchReduction float64
	if owner := f.Owner(); owner != nil {
		researchReduction = e.buffs.Fraction(ctx, *owner, buff.KeyProductionTime)
	}

	return factory.ProductionDuration(
		recipe.BaseDuration,
		f.Level(),
		e.settings.LevelTimeReduction,
		laborReduction,
		researchReduction,
	), nil
}

// PlanProduction runs every check and lookup a start needs and returns the task
// it would begin. Nothing is mutated, so the caller can still back out.
func (e *Engine) PlanProduction(ctx context.Context, f *factory.Factory, recipe *factory.Recipe) (*factory.ProductionTask, error) {
	if err := e.CanStart(ctx, f); err != nil {
		return nil, err
	}

	duration, err := e.EffectiveDuration(ctx, f, recipe)
	if err != nil {
		return nil, err
	}

	return factory.NewProductionTask(recipe.ID, e.clock.Now(), duration)
}

// BeginProduction moves the factory to RUNNING with a planned task.
// Inputs must already have been consumed by the caller.
func (e *Engine) BeginProduction(ctx context.Context, f *factory.Factory, task *factory.ProductionTask) error {
	logger := common.LoggerFromContext(ctx)

	if err := f.StartProduction(task, task.StartedAt()); err != nil {
		return err
	}

	// the in-memory factory is authoritative until the next flush
	if err := e.factories.Save(ctx, f); err != nil {
		logger.ErrorContext(ctx, "failed to save started factory", "factory_id", f.ID(), "error", err)
	}

	logger.InfoContext(ctx, "production started",
		"factory_id", f.ID(), "recipe_id", task.RecipeID(), "duration", task.Duration().String())

	if owner := f.Owner(); owner != nil {
		e.notifier.Notify(ctx, *owner, ports.EventProductionStarted, map[string]any{
			"factory_id":   f.ID(),
			"recipe_id":    task.RecipeID(),
			"duration_sec": task.Duration().Seconds(),
			"completes_at": task.CompletesAt(),
		})
	}
	return nil
}

// Tick advances one factory. Non-running factories are left alone; a RUNNING
// factory without a task is healed back to STOPPED; a finished task is completed
// exactly once. It reports whether the factory changed.
func (e *Engine) Tick(ctx context.Context, f *factory.Factory) (bool, error) {
	logger := common.LoggerFromContext(ctx)
	now := e.clock.Now()

	if f.Heal(now) {
		logger.WarnContext(ctx, "healed inconsistent production state",
			"factory_id", f.ID(), "status", f.Status().String())
		metrics.RecordHeal("factory")
		if err := e.factories.Save(ctx, f); err != nil {
			return true, fmt.Errorf("failed to save healed factory %s: %w", f.ID(), err)
		}
		return true, nil
	}

	if !f.IsRunning() {
		return false, nil
	}

	task := f.Production()
	if !task.Complete(now) {
		if owner := f.Owner(); owner != nil {
			e.notifier.Notify(ctx, *owner, ports.EventProductionProgress, map[string]any{
				"factory_id":    f.ID(),
				"recipe_id":     task.RecipeID(),
				"progress":      task.Progress(now),
				"remaining_sec": task.Remaining(now).Seconds(),
			})
		}
		return false, nil
	}

	// Detach the task before crediting so a repeated tick has nothing to complete
	finished, err := f.CompleteProduction(now)
	if err != nil {
		return false, err
	}
	if err := e.factories.Save(ctx, f); err != nil {
		logger.ErrorContext(ctx, "failed to save completed factory",
			"factory_id", f.ID(), "error", err)
	}

	e.complete(ctx, f, finished)
	return true, nil
}

func (e *Engine) complete(ctx context.Context, f *factory.Factory, task *factory.ProductionTask) {
	logger := common.LoggerFromContext(ctx)

	recipe, err := e.catalog.Find(task.RecipeID())
	if err != nil {
		logger.WarnContext(ctx, "completed task references unknown recipe, nothing credited",
			"factory_id", f.ID(), "recipe_id", task.RecipeID(), "error", err)
		return
	}

	credited := 0
	for _, out := range recipe.Outputs {
		if err := e.storage.CreditOutput(ctx, f.ID(), out.ResourceID, out.Quantity); err != nil {
			logger.ErrorContext(ctx, "failed to credit output",
				"factory_id", f.ID(), "resource", out.ResourceID, "quantity", out.Quantity, "error", err)
			continue
		}
		credited += out.Quantity
	}

	owner := f.Owner()
	if owner != nil {
		for _, name := range recipe.Hooks {
			hc := HookContext{Factory: f, Owner: *owner, Recipe: recipe, Task: task}
			if err := e.hooks.Run(ctx, name, hc); err != nil {
				logger.ErrorContext(ctx, "completion hook failed",
					"factory_id", f.ID(), "hook", name, "error", err)
			}
		}

		e.notifier.Notify(ctx, *owner, ports.EventProductionCompleted, map[string]any{
			"factory_id": f.ID(),
			"recipe_id":  recipe.ID,
			"outputs":    recipe.Outputs,
		})

		if e.progress != nil {
			if err := e.progress.RecordProduction(ctx, *owner, recipe.ID, credited); err != nil {
				logger.WarnContext(ctx, "failed to record production progress",
					"factory_id", f.ID(), "error", err)
			}
		}
	}

	metrics.RecordProductionCompleted(f.Type().String(), recipe.ID)
	logger.InfoContext(ctx, "production completed",
		"factory_id", f.ID(), "recipe_id", recipe.ID, "credited", credited)
}

// TickAll advances every factory and returns how many changed. Failures on one
// factory are logged and do not stop the pass.
func (e *Engine) TickAll(ctx context.Context) (int, error) {
	factories, err := e.factories.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list factories: %w", err)
	}

	changed := 0
	for _, f := range factories {
		ok, err := e.Tick(ctx, f)
		if err != nil {
			common.LoggerFromContext(ctx).ErrorContext(ctx, "production tick failed",
				"factory_id", f.ID(), "error", err)
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}
