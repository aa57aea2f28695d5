package setup

import (
	"fmt"
	"log/slog"
	"time"

	appFactory "github.com/andrescamacho/factory-economy/internal/application/factory"
	"github.com/andrescamacho/factory-economy/internal/application/invoice"
	"github.com/andrescamacho/factory-economy/internal/application/production"
	"github.com/andrescamacho/factory-economy/internal/application/scheduler"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	domainFactory "github.com/andrescamacho/factory-economy/internal/domain/factory"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/schedule"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// Dependencies are the stores and host collaborators the engine runs against
type Dependencies struct {
	Factories  domainFactory.FactoryRepository
	TaxRecords domainTax.RecordRepository
	Payments   domainTax.PaymentRepository
	Invoices   domainInvoice.InvoiceRepository
	Cursors    schedule.CursorRepository
	Flusher    scheduler.Flusher // optional
	Catalog    domainFactory.RecipeCatalog

	Ledger   ports.Ledger
	Labor    ports.LaborService
	Research buff.ResearchService
	Storage  ports.StorageService
	Progress ports.ProgressTracker // optional
	Notifier ports.Notifier

	Clock  shared.Clock
	Logger *slog.Logger
}

// Settings gathers the tunables of every engine
type Settings struct {
	Production      production.Settings
	Upgrade         upgrade.Settings
	Tax             tax.SettingsSource
	Buffs           buff.PerLevelSource
	Market          appFactory.MarketSettings
	SalaryDuePeriod time.Duration
	Scheduler       scheduler.Settings
}

// Container owns the wired engines
type Container struct {
	Deps       Dependencies
	Buffs      *buff.Resolver
	Hooks      *production.Hooks
	Production *production.Engine
	Upgrades   *upgrade.Engine
	Taxes      *tax.Engine
	Invoices   *invoice.Ledger
	Factories  *appFactory.Service
	Scheduler  *scheduler.Scheduler
}

// NewContainer wires every engine from deps and settings
func NewContainer(deps Dependencies, settings Settings) (*Container, error) {
	if deps.Clock == nil {
		deps.Clock = shared.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if settings.Tax == nil {
		return nil, fmt.Errorf("tax settings are required")
	}
	if settings.Buffs == nil {
		settings.Buffs = buff.StaticPerLevel{}
	}

	c := &Container{Deps: deps}

	c.Buffs = buff.NewResolver(deps.Research, settings.Buffs, deps.Logger)

	c.Hooks = production.NewHooks()
	if err := c.Hooks.Register(production.HookRewardName, production.RewardHook(deps.Ledger, deps.Notifier)); err != nil {
		return nil, err
	}

	c.Production = production.NewEngine(
		deps.Factories, deps.Catalog, deps.Labor, deps.Storage, deps.Notifier,
		deps.Progress, c.Buffs, c.Hooks, settings.Production, deps.Clock,
	)
	c.Upgrades = upgrade.NewEngine(
		deps.Factories, deps.Ledger, deps.Storage, deps.Notifier, c.Buffs, settings.Upgrade, deps.Clock,
	)
	c.Taxes = tax.NewEngine(
		deps.Factories, deps.TaxRecords, deps.Payments, deps.Ledger, deps.Notifier, c.Buffs, settings.Tax, deps.Clock,
	)
	c.Invoices = invoice.NewLedger(
		deps.Invoices, deps.Factories, deps.Labor, deps.Ledger, deps.Notifier, settings.SalaryDuePeriod, deps.Clock,
	)
	c.Factories = appFactory.NewService(
		deps.Factories, c.Taxes, deps.Ledger, deps.Storage, deps.Notifier,
		settings.Market, settings.Upgrade.MaxLevel, deps.Clock,
	)
	c.Scheduler = scheduler.New(
		deps.Factories, c.Production, c.Upgrades, c.Taxes, c.Invoices,
		deps.Cursors, deps.Flusher, settings.Scheduler, deps.Clock, deps.Logger,
	)
	return c, nil
}
