package upgrade

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

// LevelSettings is the requirement table entry for reaching one level
type LevelSettings struct {
	Duration  time.Duration
	Materials []factory.ResourceAmount
}

// Settings tunes upgrades
type Settings struct {
	MaxLevel   int
	CostFactor shared.Money

	// Levels is keyed by target level
	Levels map[int]LevelSettings
}

// Quote is the price of the next upgrade of a factory
type Quote struct {
	TargetLevel int
	Cost        shared.Money
	Duration    time.Duration
	Materials   []factory.ResourceAmount
}

// Engine runs the upgrade state machine
type Engine struct {
	factories factory.FactoryRepository
	ledger    ports.Ledger
	storage   ports.StorageService
	notifier  ports.Notifier
	buffs     *buff.Resolver
	settings  Settings
	clock     shared.Clock
}

func NewEngine(
	factories factory.FactoryRepository,
	ledger ports.Ledger,
	storage ports.StorageService,
	notifier ports.Notifier,
	buffs *buff.Resolver,
	settings Settings,
	clock shared.Clock,
) *Engine {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Engine{
		factories: factories,
		ledger:    ledger,
		storage:   storage,
		notifier:  notifier,
		buffs:     buffs,
		settings:  settings,
		clock:     clock,
	}
}

// MaxLevel returns the configured level cap
func (e *Engine) MaxLevel() int {
	return e.settings.MaxLevel
}

// Quote prices the next upgrade: cost = price x costFactor x level x (1 - cost buff)
func (e *Engine) Quote(ctx context.Context, f *factory.Factory) (*Quote, error) {
	if err := f.CanUpgrade(e.settings.MaxLevel); err != nil {
		return nil, err
	}

	target := f.Level() + 1
	level, ok := e.settings.Levels[target]
	if !ok {
		return nil, factory.NewUpgradeNotConfiguredError(target)
	}

	var costReduction, timeReduction float64
	if owner := f.Owner(); owner != nil {
		costReduction = e.buffs.Fraction(ctx, *owner, buff.KeyUpgradeCost)
		timeReduction = e.buffs.Fraction(ctx, *owner, buff.KeyUpgradeTime)
	}

	cost := f.Price().
		Mul(e.settings.CostFactor).
		Mul(shared.NewMoney(float64(f.Level()))).
		Mul(shared.NewMoney(1).Sub(shared.Fraction(costReduction)))

	return &Quote{
		TargetLevel: target,
		Cost:        shared.RoundCents(cost),
		Duration:    factory.UpgradeDuration(level.Duration, timeReduction),
		Materials:   level.Materials,
	}, nil
}

// StartUpgrade checks funds and materials, then takes both, then starts the timer.
// If any step fails, whatever was already taken is given back.
func (e *Engine) StartUpgrade(ctx context.Context, f *factory.Factory) (*factory.UpgradeState, error) {
	logger := common.LoggerFromContext(ctx)

	owner := f.Owner()
	if owner == nil {
		return nil, factory.NewNotOwnedError(f.ID())
	}

	quote, err := e.Quote(ctx, f)
	if err != nil {
		return nil, err
	}

	hasFunds, err := e.ledger.HasFunds(ctx, *owner, quote.Cost)
	if err != nil {
		return nil, fmt.Errorf("failed to check funds: %w", err)
	}
	if !hasFunds {
		return nil, shared.NewInsufficientFundsError(*owner, quote.Cost)
	}

	var missing []factory.ResourceAmount
	for _, m := range quote.Materials {
		has, err := e.storage.HasInput(ctx, f.ID(), m.ResourceID, m.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s for factory %s: %w", m.ResourceID, f.ID(), err)
		}
		if !has {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		return nil, factory.NewInsufficientResourcesError(f.ID(), missing)
	}

	now := e.clock.Now()
	state, err := factory.NewUpgradeState(now, quote.Duration, quote.TargetLevel)
	if err != nil {
		return nil, err
	}

	if quote.Cost.IsPositive() {
		if err := e.ledger.Withdraw(ctx, *owner, quote.Cost); err != nil {
			return nil, fmt.Errorf("failed to withdraw upgrade cost: %w", err)
		}
	}

	if err := common.ConsumeAll(ctx, e.storage, f.ID(), quote.Materials); err != nil {
		e.refund(ctx, *owner, quote.Cost)
		return nil, err
	}

	if err := f.StartUpgrade(state, e.settings.MaxLevel, now); err != nil {
		common.RestoreAll(ctx, e.storage, f.ID(), quote.Materials)
		e.refund(ctx, *owner, quote.Cost)
		return nil, err
	}

	// the in-memory factory is authoritative until the next flush
	if err := e.factories.Save(ctx, f); err != nil {
		logger.ErrorContext(ctx, "failed to save upgrading factory", "factory_id", f.ID(), "error", err)
	}

	logger.InfoContext(ctx, "upgrade started",
		"factory_id", f.ID(), "target_level", quote.TargetLevel,
		"cost", quote.Cost.StringFixed(2), "duration", quote.Duration.String())

	e.notifier.Notify(ctx, *owner, ports.EventUpgradeStarted, map[string]any{
		"factory_id":   f.ID(),
		"target_level": quote.TargetLevel,
		"cost":         quote.Cost.StringFixed(2),
		"completes_at": now.Add(quote.Duration),
	})

	return state, nil
}

func (e *Engine) refund(ctx context.Context, owner shared.PlayerID, amount shared.Money) {
	if !amount.IsPositive() {
		return
	}
	if err := e.ledger.Deposit(ctx, owner, amount); err != nil {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "failed to refund upgrade cost",
			"player", owner.String(), "amount", amount.StringFixed(2), "error", err)
	}
}

// Tick applies a finished upgrade. It reports whether the factory changed.
func (e *Engine) Tick(ctx context.Context, f *factory.Factory) (bool, error) {
	if !f.CompleteUpgrade(e.clock.Now()) {
		return false, nil
	}

	if err := e.factories.Save(ctx, f); err != nil {
		return true, fmt.Errorf("failed to save upgraded factory %s: %w", f.ID(), err)
	}

	common.LoggerFromContext(ctx).InfoContext(ctx, "upgrade completed",
		"factory_id", f.ID(), "level", f.Level())
	metrics.RecordUpgradeCompleted(f.Level())

	if owner := f.Owner(); owner != nil {
		e.notifier.Notify(ctx, *owner, ports.EventUpgradeCompleted, map[string]any{
			"factory_id": f.ID(),
			"level":      f.Level(),
		})
	}
	return true, nil
}
