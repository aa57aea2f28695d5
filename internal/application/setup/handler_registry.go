package setup

import (
	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/application/auth"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	factoryCommands "github.com/andrescamacho/factory-economy/internal/application/factory/commands"
	factoryQueries "github.com/andrescamacho/factory-economy/internal/application/factory/queries"
	invoiceCommands "github.com/andrescamacho/factory-economy/internal/application/invoice/commands"
	invoiceQueries "github.com/andrescamacho/factory-economy/internal/application/invoice/queries"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	productionCommands "github.com/andrescamacho/factory-economy/internal/application/production/commands"
	taxCommands "github.com/andrescamacho/factory-economy/internal/application/tax/commands"
	taxQueries "github.com/andrescamacho/factory-economy/internal/application/tax/queries"
	upgradeCommands "github.com/andrescamacho/factory-economy/internal/application/upgrade/commands"
	upgradeQueries "github.com/andrescamacho/factory-economy/internal/application/upgrade/queries"
)

// HandlerRegistry registers every command and query handler of the engine
type HandlerRegistry struct {
	container      *Container
	serializer     common.Serializer
	limiter        *common.ActionLimiter
	commandMetrics *metrics.CommandMetricsCollector
}

// NewHandlerRegistry creates a registry. Mutating handlers run through serializer;
// the daemon passes its scheduler, one-shot runs a MutexSerializer.
// limiter and commandMetrics may be nil.
func NewHandlerRegistry(
	container *Container,
	serializer common.Serializer,
	limiter *common.ActionLimiter,
	commandMetrics *metrics.CommandMetricsCollector,
) *HandlerRegistry {
	if serializer == nil {
		serializer = common.NewMutexSerializer()
	}
	return &HandlerRegistry{
		container:      container,
		serializer:     serializer,
		limiter:        limiter,
		commandMetrics: commandMetrics,
	}
}

// RegisterFactoryHandlers registers market, admin and read handlers for factories
func (r *HandlerRegistry) RegisterFactoryHandlers(m mediator.Mediator) error {
	c := r.container
	registrations := []func() error{
		func() error {
			return mediator.RegisterHandler[*factoryCommands.CreateFactoryCommand](m, factoryCommands.NewCreateFactoryHandler(c.Factories, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*factoryCommands.RemoveFactoryCommand](m, factoryCommands.NewRemoveFactoryHandler(c.Factories, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*factoryCommands.SetFactoryLevelCommand](m, factoryCommands.NewSetFactoryLevelHandler(c.Factories, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*factoryCommands.SetFastTravelCommand](m, factoryCommands.NewSetFastTravelHandler(c.Factories, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*factoryCommands.BuyFactoryCommand](m, factoryCommands.NewBuyFactoryHandler(c.Factories, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*factoryCommands.SellFactoryCommand](m, factoryCommands.NewSellFactoryHandler(c.Factories, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*factoryQueries.GetFactoryQuery](m, factoryQueries.NewGetFactoryHandler(c.Deps.Factories, c.Deps.Clock))
		},
		func() error {
			return mediator.RegisterHandler[*factoryQueries.ListFactoriesQuery](m, factoryQueries.NewListFactoriesHandler(c.Deps.Factories, c.Deps.Clock))
		},
	}
	return runAll(registrations)
}

// RegisterProductionHandlers registers production and upgrade handlers
func (r *HandlerRegistry) RegisterProductionHandlers(m mediator.Mediator) error {
	c := r.container
	registrations := []func() error{
		func() error {
			return mediator.RegisterHandler[*productionCommands.StartProductionCommand](m, productionCommands.NewStartProductionHandler(
				c.Deps.Factories, c.Deps.Catalog, c.Deps.Storage, c.Deps.Notifier, c.Production, r.serializer, c.Deps.Clock,
			))
		},
		func() error {
			return mediator.RegisterHandler[*upgradeCommands.StartUpgradeCommand](m, upgradeCommands.NewStartUpgradeHandler(c.Deps.Factories, c.Upgrades, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*upgradeQueries.GetUpgradeQuoteQuery](m, upgradeQueries.NewGetUpgradeQuoteHandler(c.Deps.Factories, c.Upgrades))
		},
	}
	return runAll(registrations)
}

// RegisterSettlementHandlers registers tax and invoice handlers
func (r *HandlerRegistry) RegisterSettlementHandlers(m mediator.Mediator) error {
	c := r.container
	registrations := []func() error{
		func() error {
			return mediator.RegisterHandler[*taxCommands.PayTaxCommand](m, taxCommands.NewPayTaxHandler(c.Taxes, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*taxCommands.PayAllTaxesCommand](m, taxCommands.NewPayAllTaxesHandler(c.Taxes, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*taxCommands.RunAssessmentCommand](m, taxCommands.NewRunAssessmentHandler(c.Taxes, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*taxCommands.RunOverdueCheckCommand](m, taxCommands.NewRunOverdueCheckHandler(c.Taxes, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*taxQueries.GetTaxRecordQuery](m, taxQueries.NewGetTaxRecordHandler(c.Deps.TaxRecords))
		},
		func() error {
			return mediator.RegisterHandler[*taxQueries.ListTaxRecordsQuery](m, taxQueries.NewListTaxRecordsHandler(c.Deps.TaxRecords))
		},
		func() error {
			return mediator.RegisterHandler[*taxQueries.GetPaymentHistoryQuery](m, taxQueries.NewGetPaymentHistoryHandler(c.Deps.Payments))
		},
		func() error {
			return mediator.RegisterHandler[*invoiceCommands.PayInvoiceCommand](m, invoiceCommands.NewPayInvoiceHandler(c.Invoices, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*invoiceCommands.RunSalaryCommand](m, invoiceCommands.NewRunSalaryHandler(c.Invoices, r.serializer))
		},
		func() error {
			return mediator.RegisterHandler[*invoiceQueries.ListInvoicesQuery](m, invoiceQueries.NewListInvoicesHandler(c.Deps.Invoices))
		},
		func() error {
			return mediator.RegisterHandler[*invoiceQueries.ListLiabilitiesQuery](m, invoiceQueries.NewListLiabilitiesHandler(c.Deps.TaxRecords, c.Deps.Invoices, c.Deps.Clock))
		},
	}
	return runAll(registrations)
}

// CreateConfiguredMediator creates a mediator with the player middleware, the
// command metrics middleware and every handler registered
func (r *HandlerRegistry) CreateConfiguredMediator() (mediator.Mediator, error) {
	m := mediator.NewMediator()
	m.RegisterMiddleware(metrics.PrometheusMiddleware(r.commandMetrics))
	m.RegisterMiddleware(auth.PlayerMiddleware(r.limiter))

	if err := r.RegisterFactoryHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterProductionHandlers(m); err != nil {
		return nil, err
	}
	if err := r.RegisterSettlementHandlers(m); err != nil {
		return nil, err
	}
	return m, nil
}

func runAll(registrations []func() error) error {
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}
