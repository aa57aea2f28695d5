package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// SalaryReport summarizes one salary run
type SalaryReport struct {
	Issued int
	Total  shared.Money
}

// Ledger issues recurring charges and settles them
type Ledger struct {
	invoices  domainInvoice.InvoiceRepository
	factories factory.FactoryRepository
	labor     ports.LaborService
	ledger    ports.Ledger
	notifier  ports.Notifier
	clock     shared.Clock

	salaryDuePeriod time.Duration
}

func NewLedger(
	invoices domainInvoice.InvoiceRepository,
	factories factory.FactoryRepository,
	labor ports.LaborService,
	ledger ports.Ledger,
	notifier ports.Notifier,
	salaryDuePeriod time.Duration,
	clock shared.Clock,
) *Ledger {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Ledger{
		invoices:        invoices,
		factories:       factories,
		labor:           labor,
		ledger:          ledger,
		notifier:        notifier,
		clock:           clock,
		salaryDuePeriod: salaryDuePeriod,
	}
}

// Generate creates a new unpaid invoice
func (l *Ledger) Generate(
	ctx context.Context,
	typ domainInvoice.Type,
	owner shared.PlayerID,
	factoryID string,
	amount shared.Money,
	duePeriod time.Duration,
) (*domainInvoice.Invoice, error) {
	inv, err := domainInvoice.NewInvoice(typ, owner, factoryID, amount, l.clock.Now(), duePeriod)
	if err != nil {
		return nil, err
	}
	if err := l.invoices.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	metrics.RecordInvoiceIssued(typ.String(), amount.InexactFloat64())
	l.notifier.Notify(ctx, owner, ports.EventInvoiceIssued, map[string]any{
		"invoice_id": inv.ID().String(),
		"type":       typ.String(),
		"amount":     amount.StringFixed(2),
		"due_date":   inv.DueDate(),
	})
	return inv, nil
}

// Pay withdraws the invoice amount and marks it paid for good
func (l *Ledger) Pay(ctx context.Context, owner shared.PlayerID, id uuid.UUID) (*domainInvoice.Invoice, error) {
	inv, err := l.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !inv.Owner().Equals(owner) {
		return nil, shared.NewNotOwnerError("invoice", id.String(), owner)
	}
	if inv.Paid() {
		return nil, domainInvoice.NewAlreadyPaidError(id)
	}

	hasFunds, err := l.ledger.HasFunds(ctx, owner, inv.Amount())
	if err != nil {
		return nil, fmt.Errorf("failed to check funds: %w", err)
	}
	if !hasFunds {
		return nil, shared.NewInsufficientFundsError(owner, inv.Amount())
	}
	if err := l.ledger.Withdraw(ctx, owner, inv.Amount()); err != nil {
		return nil, fmt.Errorf("failed to withdraw invoice payment: %w", err)
	}

	if err := inv.MarkPaid(l.clock.Now()); err != nil {
		return nil, err
	}
	if err := l.invoices.Save(ctx, inv); err != nil {
		common.LoggerFromContext(ctx).ErrorContext(ctx, "failed to save paid invoice",
			"invoice_id", id.String(), "error", err)
	}

	metrics.RecordInvoicePaid(inv.Type().String(), inv.Amount().InexactFloat64())
	l.notifier.Notify(ctx, owner, ports.EventInvoicePaid, map[string]any{
		"invoice_id": id.String(),
		"type":       inv.Type().String(),
		"amount":     inv.Amount().StringFixed(2),
	})
	return inv, nil
}

// SalaryRun issues one SALARY invoice per owned factory that pays a wage
func (l *Ledger) SalaryRun(ctx context.Context) (*SalaryReport, error) {
	logger := common.LoggerFromContext(ctx)

	factories, err := l.factories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list factories: %w", err)
	}

	report := &SalaryReport{Total: shared.Zero}
	for _, f := range factories {
		owner := f.Owner()
		if owner == nil {
			continue
		}

		wage, err := l.labor.WageFor(ctx, f.ID())
		if err != nil {
			logger.WarnContext(ctx, "failed to get wage", "factory_id", f.ID(), "error", err)
			continue
		}
		if !wage.IsPositive() {
			continue
		}

		if _, err := l.Generate(ctx, domainInvoice.TypeSalary, *owner, f.ID(), wage, l.salaryDuePeriod); err != nil {
			logger.ErrorContext(ctx, "failed to issue salary invoice", "factory_id", f.ID(), "error", err)
			continue
		}
		report.Issued++
		report.Total = report.Total.Add(wage)
	}

	logger.InfoContext(ctx, "salary run complete", "issued", report.Issued, "total", report.Total.StringFixed(2))
	return report, nil
}

// List returns an owner's invoices matching filter
func (l *Ledger) List(ctx context.Context, owner shared.PlayerID, filter domainInvoice.Filter) ([]*domainInvoice.Invoice, error) {
	return l.invoices.ListByOwner(ctx, owner, filter)
}
