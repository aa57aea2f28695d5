package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/andrescamacho/factory-economy/internal/adapters/catalog"
	"github.com/andrescamacho/factory-economy/internal/adapters/filestore"
	"github.com/andrescamacho/factory-economy/internal/adapters/inmemory"
	"github.com/andrescamacho/factory-economy/internal/adapters/memstore"
	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/adapters/notify"
	"github.com/andrescamacho/factory-economy/internal/adapters/persistence"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/setup"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/config"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/database"
)

// Runtime is one fully wired engine: snapshot store, host services, engines
// and the mediator in front of them.
type Runtime struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *memstore.Store
	Host      *inmemory.Host
	Container *setup.Container
	Mediator  mediator.Mediator

	// Hub is set for daemon runtimes only
	Hub *notify.Hub

	db *gorm.DB
}

type runtimeOptions struct {
	daemon  bool
	economy *config.EconomyHolder
	clock   shared.Clock
}

// newRuntime opens the configured backend, loads every record and wires the
// engines. Daemon runtimes serialize through the scheduler loop and publish
// notifications on the websocket hub; one-shot runtimes use a mutex.
func newRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runtimeOptions) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger}

	backend, err := rt.openBackend()
	if err != nil {
		return nil, err
	}

	rt.Store = memstore.New(backend)
	if err := rt.Store.Load(ctx); err != nil {
		rt.closeDB()
		return nil, fmt.Errorf("failed to load engine state: %w", err)
	}

	rt.Host = inmemory.NewHost()
	if err := rt.Host.LoadFile(cfg.Host.StateFile); err != nil {
		rt.closeDB()
		return nil, err
	}

	recipes, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		rt.closeDB()
		return nil, err
	}

	economy := opts.economy
	if economy == nil {
		economy = config.NewEconomyHolder(cfg.Economy)
	}

	var notifier ports.Notifier = notify.NewLogNotifier(logger)
	if opts.daemon && cfg.Daemon.NotifyAddress != "" {
		rt.Hub = notify.NewHub(logger, opts.clock)
		notifier = notify.FanOut{notifier, rt.Hub}
	}

	var commandMetrics *metrics.CommandMetricsCollector
	if opts.daemon && cfg.Metrics.Enabled {
		if commandMetrics, err = registerMetrics(); err != nil {
			rt.closeDB()
			return nil, err
		}
	}

	container, err := setup.NewContainer(setup.Dependencies{
		Factories:  rt.Store.Factories(),
		TaxRecords: rt.Store.TaxRecords(),
		Payments:   rt.Store.Payments(),
		Invoices:   rt.Store.Invoices(),
		Cursors:    rt.Store.Cursors(),
		Flusher:    rt.Store,
		Catalog:    recipes,
		Ledger:     rt.Host.Ledger(),
		Labor:      rt.Host.Labor(),
		Research:   rt.Host.Research(),
		Storage:    rt.Host.Storage(),
		Progress:   rt.Host.Progress(),
		Notifier:   notifier,
		Clock:      opts.clock,
		Logger:     logger,
	}, setup.Settings{
		Production:      cfg.Economy.ProductionSettings(),
		Upgrade:         cfg.Economy.UpgradeSettings(),
		Tax:             economy,
		Buffs:           economy,
		Market:          cfg.Economy.MarketSettings(),
		SalaryDuePeriod: cfg.Economy.Salary.DuePeriod,
		Scheduler:       cfg.SchedulerSettings(),
	})
	if err != nil {
		rt.closeDB()
		return nil, err
	}
	rt.Container = container

	var serializer common.Serializer = common.NewMutexSerializer()
	if opts.daemon {
		serializer = container.Scheduler
	}
	limiter := common.NewActionLimiter(cfg.Actions.PerSecond, cfg.Actions.Burst)

	med, err := setup.NewHandlerRegistry(container, serializer, limiter, commandMetrics).CreateConfiguredMediator()
	if err != nil {
		rt.closeDB()
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}
	rt.Mediator = med

	return rt, nil
}

func (rt *Runtime) openBackend() (memstore.Backend, error) {
	switch rt.Config.Storage.Driver {
	case "yaml":
		backend := filestore.NewBackend(rt.Config.Storage.Root)
		if err := backend.Initialize(); err != nil {
			return nil, err
		}
		return backend, nil
	case "gorm", "":
		db, err := database.NewConnection(&rt.Config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		rt.db = db
		return persistence.NewGormSnapshotBackend(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", rt.Config.Storage.Driver)
	}
}

func registerMetrics() (*metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()

	engine := metrics.NewEngineMetricsCollector()
	if err := engine.Register(); err != nil {
		return nil, fmt.Errorf("failed to register engine metrics: %w", err)
	}
	metrics.SetGlobalEngineCollector(engine)

	settlement := metrics.NewSettlementMetricsCollector()
	if err := settlement.Register(); err != nil {
		return nil, fmt.Errorf("failed to register settlement metrics: %w", err)
	}
	metrics.SetGlobalSettlementCollector(settlement)

	commands := metrics.NewCommandMetricsCollector()
	if err := commands.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	return commands, nil
}

// Close flushes dirty records, saves the host state and releases the database
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if _, err := rt.Store.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush engine state: %w", err))
	}
	if err := rt.Host.SaveFile(rt.Config.Host.StateFile); err != nil {
		errs = append(errs, err)
	}
	if err := rt.closeDB(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (rt *Runtime) closeDB() error {
	if rt.db == nil {
		return nil
	}
	err := database.Close(rt.db)
	rt.db = nil
	return err
}
