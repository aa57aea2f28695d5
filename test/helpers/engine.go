package helpers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/andrescamacho/factory-economy/internal/adapters/catalog"
	"github.com/andrescamacho/factory-economy/internal/adapters/inmemory"
	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	appFactory "github.com/andrescamacho/factory-economy/internal/application/factory"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/production"
	"github.com/andrescamacho/factory-economy/internal/application/scheduler"
	"github.com/andrescamacho/factory-economy/internal/application/setup"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// Player fixtures
var (
	Alice = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")
	Bob   = shared.MustParsePlayerID("0b9e8d7c-6a5f-4e3d-8c2b-1a0f9e8d7c6b")
)

// T0 is the wall-clock start of every engine test
var T0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// DefaultSettings returns the economy used by engine tests
func DefaultSettings() setup.Settings {
	return setup.Settings{
		Production: production.Settings{LevelTimeReduction: 0.10},
		Upgrade: upgrade.Settings{
			MaxLevel:   5,
			CostFactor: shared.Fraction(0.5),
			Levels: map[int]upgrade.LevelSettings{
				2: {Duration: time.Hour, Materials: []factory.ResourceAmount{{ResourceID: "iron_ingot", Quantity: 10}}},
				3: {Duration: 4 * time.Hour},
				4: {Duration: 12 * time.Hour},
				5: {Duration: 24 * time.Hour},
			},
		},
		Tax: tax.StaticSettings{
			Policy:    domainTax.NewPolicy(0.05, 0.025, 0.05),
			DuePeriod: 72 * time.Hour,
		},
		Buffs: buff.StaticPerLevel{
			buff.KeyProductionTime: 0.05,
			buff.KeyUpgradeTime:    0.05,
			buff.KeyUpgradeCost:    0.05,
			buff.KeyTaxReduction:   0.02,
		},
		Market: appFactory.MarketSettings{
			SellRefundRate: shared.Fraction(0.5),
		},
		SalaryDuePeriod: 72 * time.Hour,
		Scheduler: scheduler.Settings{
			TickInterval:         time.Second,
			TaxAssessInterval:    24 * time.Hour,
			OverdueCheckInterval: 10 * time.Minute,
			SalaryInterval:       24 * time.Hour,
		},
	}
}

// TestCatalog holds the recipes used by engine tests
func TestCatalog() *catalog.Catalog {
	recipes, err := catalog.New(
		&factory.Recipe{
			ID:           "widget",
			Name:         "Widget",
			FactoryTypes: []factory.Type{factory.TypeSmelter},
			Inputs:       []factory.ResourceAmount{{ResourceID: "ore", Quantity: 2}},
			Outputs:      []factory.ResourceAmount{{ResourceID: "widget", Quantity: 1}},
			BaseDuration: 120 * time.Second,
		},
		&factory.Recipe{
			ID:           "alloy",
			Name:         "Alloy",
			FactoryTypes: []factory.Type{factory.TypeSmelter},
			Inputs: []factory.ResourceAmount{
				{ResourceID: "ore", Quantity: 3},
				{ResourceID: "coal", Quantity: 1},
			},
			Outputs:      []factory.ResourceAmount{{ResourceID: "alloy", Quantity: 1}},
			BaseDuration: 5 * time.Minute,
		},
		&factory.Recipe{
			ID:           "trophy",
			Name:         "Trophy",
			Outputs:      []factory.ResourceAmount{{ResourceID: "trophy", Quantity: 1}},
			BaseDuration: time.Minute,
			Hooks:        []string{production.HookRewardName},
			Reward:       shared.NewMoney(25),
		},
	)
	if err != nil {
		panic(err)
	}
	return recipes
}

// Harness is a fully wired engine over an in-memory store and host
type Harness struct {
	Ctx       context.Context
	Store     *memstore.Store
	Host      *inmemory.Host
	Clock     *shared.MockClock
	Notifier  *RecordingNotifier
	Container *setup.Container
	Mediator  mediator.Mediator
}

// HarnessOption adjusts settings or dependencies before wiring
type HarnessOption func(deps *setup.Dependencies, settings *setup.Settings)

// WithBackend persists the store through backend
func WithBackend(backend memstore.Backend) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		store := memstore.New(backend)
		deps.Factories = store.Factories()
		deps.TaxRecords = store.TaxRecords()
		deps.Payments = store.Payments()
		deps.Invoices = store.Invoices()
		deps.Cursors = store.Cursors()
		deps.Flusher = store
	}
}

// WithTaxSettings replaces the tax settings source
func WithTaxSettings(source tax.SettingsSource) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		settings.Tax = source
	}
}

// WithMaxFactories caps how many factories one player may own
func WithMaxFactories(limit int) HarnessOption {
	return func(deps *setup.Dependencies, settings *setup.Settings) {
		settings.Market.MaxFactoriesPerPlayer = limit
	}
}

// NewHarness wires an engine at T0 with DefaultSettings
func NewHarness(t testing.TB, opts ...HarnessOption) *Harness {
	t.Helper()
	h, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return h
}

// NewEngine is NewHarness for callers without a testing.TB, such as godog steps
func NewEngine(opts ...HarnessOption) (*Harness, error) {
	h := &Harness{
		Ctx:      context.Background(),
		Store:    memstore.New(nil),
		Host:     inmemory.NewHost(),
		Clock:    shared.NewMockClock(T0),
		Notifier: NewRecordingNotifier(),
	}

	deps := setup.Dependencies{
		Factories:  h.Store.Factories(),
		TaxRecords: h.Store.TaxRecords(),
		Payments:   h.Store.Payments(),
		Invoices:   h.Store.Invoices(),
		Cursors:    h.Store.Cursors(),
		Flusher:    h.Store,
		Catalog:    TestCatalog(),
		Ledger:     h.Host.Ledger(),
		Labor:      h.Host.Labor(),
		Research:   h.Host.Research(),
		Storage:    h.Host.Storage(),
		Progress:   h.Host.Progress(),
		Notifier:   h.Notifier,
		Clock:      h.Clock,
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&deps, &settings)
	}
	if store, ok := deps.Flusher.(*memstore.Store); ok {
		h.Store = store
	}

	container, err := setup.NewContainer(deps, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to wire engine: %w", err)
	}
	h.Container = container

	med, err := setup.NewHandlerRegistry(container, common.NewMutexSerializer(), nil, nil).CreateConfiguredMediator()
	if err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}
	h.Mediator = med

	return h, nil
}

// Advance moves the clock forward
func (h *Harness) Advance(d time.Duration) {
	h.Clock.Advance(d)
}

// CreateFactory registers an unowned factory
func (h *Harness) CreateFactory(t testing.TB, id string, typ factory.Type, price float64) *factory.Factory {
	t.Helper()
	f, err := h.Container.Factories.Create(h.Ctx, id, "zone-1", typ, shared.NewMoney(price))
	if err != nil {
		t.Fatalf("failed to create factory %s: %v", id, err)
	}
	return f
}

// OwnedFactory creates a factory already bought by player. The purchase price is
// deposited first so the player's balance is unchanged afterwards.
func (h *Harness) OwnedFactory(t testing.TB, player shared.PlayerID, id string, typ factory.Type, price float64) *factory.Factory {
	t.Helper()
	h.CreateFactory(t, id, typ, price)
	if err := h.Host.Ledger().Deposit(h.Ctx, player, shared.NewMoney(price)); err != nil {
		t.Fatalf("failed to fund purchase: %v", err)
	}
	f, err := h.Container.Factories.Buy(h.Ctx, player, id)
	if err != nil {
		t.Fatalf("failed to buy factory %s: %v", id, err)
	}
	return f
}

// Staff assigns one worker with the given time reduction and wage
func (h *Harness) Staff(factoryID string, reduction float64, wage float64) {
	h.Host.Labor().Assign(factoryID, inmemory.LaborAssignment{
		Workers:       1,
		TimeReduction: reduction,
		Wage:          shared.NewMoney(wage),
	})
}

// SetBalance overwrites a player's balance
func (h *Harness) SetBalance(player shared.PlayerID, amount float64) {
	h.Host.Ledger().SetBalance(player, shared.NewMoney(amount))
}

// Balance returns a player's balance
func (h *Harness) Balance(t testing.TB, player shared.PlayerID) shared.Money {
	t.Helper()
	balance, err := h.Host.Ledger().Balance(h.Ctx, player)
	if err != nil {
		t.Fatalf("failed to read balance: %v", err)
	}
	return balance
}

// Factory reloads a factory from the store
func (h *Harness) Factory(t testing.TB, id string) *factory.Factory {
	t.Helper()
	f, err := h.Store.Factories().Get(h.Ctx, id)
	if err != nil {
		t.Fatalf("failed to load factory %s: %v", id, err)
	}
	return f
}

// Record loads a tax record from the store
func (h *Harness) Record(t testing.TB, factoryID string) *domainTax.Record {
	t.Helper()
	r, err := h.Store.TaxRecords().Get(h.Ctx, factoryID)
	if err != nil {
		t.Fatalf("failed to load tax record %s: %v", factoryID, err)
	}
	return r
}

// Tick runs one scheduler step outside the loop. Cursors are initialised first,
// so periodic passes wait a full interval like they do in the daemon.
func (h *Harness) Tick(t testing.TB) {
	t.Helper()
	if err := h.Container.Scheduler.RunOnce(h.Ctx); err != nil {
		t.Fatalf("scheduler step failed: %v", err)
	}
}
