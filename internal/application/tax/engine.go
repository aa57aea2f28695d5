package tax

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/andrescamacho/factory-economy/internal/adapters/metrics"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// AssessReport summarizes one assessment pass
type AssessReport struct {
	Assessed int
	Total    shared.Money
}

// OverdueReport summarizes one overdue check
type OverdueReport struct {
	NewlyOverdue int
	LateFees     int
	Healed       int
	Outstanding  shared.Money
}

// PayFailure is a record PayAllTaxes could not settle
type PayFailure struct {
	FactoryID string
	Err       error
}

// PayAllResult is the per-record outcome of PayAllTaxes
type PayAllResult struct {
	Paid     []*domainTax.Payment
	Failures []PayFailure
}

// TotalPaid sums the settled amounts
func (r *PayAllResult) TotalPaid() shared.Money {
	total := shared.Zero
	for _, p := range r.Paid {
		total = total.Add(p.Amount)
	}
	return total
}

// Engine assesses, penalises and settles factory tax
type Engine struct {
	factories factory.FactoryRepository
	records   domainTax.RecordRepository
	payments  domainTax.PaymentRepository
	ledger    ports.Ledger
	notifier  ports.Notifier
	buffs     *buff.Resolver
	settings  SettingsSource
	clock     shared.Clock
}

func NewEngine(
	factories factory.FactoryRepository,
	records domainTax.RecordRepository,
	payments domainTax.PaymentRepository,
	ledger ports.Ledger,
	notifier ports.Notifier,
	buffs *buff.Resolver,
	settings SettingsSource,
	clock shared.Clock,
) *Engine {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Engine{
		factories: factories,
		records:   records,
		payments:  payments,
		ledger:    ledger,
		notifier:  notifier,
		buffs:     buffs,
		settings:  settings,
		clock:     clock,
	}
}

// Assess adds one period's tax to the record of every owned factory
func (e *Engine) Assess(ctx context.Context) (*AssessReport, error) {
	logger := common.LoggerFromContext(ctx)
	settings := e.settings.TaxSettings()
	now := e.clock.Now()

	factories, err := e.factories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list factories: %w", err)
	}

	report := &AssessReport{Total: shared.Zero}
	for _, f := range factories {
		owner := f.Owner()
		if owner == nil {
			continue
		}

		record, err := e.recordFor(ctx, f.ID(), *owner)
		if err != nil {
			logger.ErrorContext(ctx, "skipping tax assessment", "factory_id", f.ID(), "error", err)
			continue
		}

		reduction := e.buffs.Fraction(ctx, *owner, buff.KeyTaxReduction)
		amount := settings.Policy.Assess(f.Price(), f.Level(), reduction)

		if err := record.AddCharge(amount, now, settings.DuePeriod); err != nil {
			logger.ErrorContext(ctx, "invalid tax charge", "factory_id", f.ID(), "error", err)
			continue
		}
		if err := e.records.Save(ctx, record); err != nil {
			logger.ErrorContext(ctx, "failed to save tax record", "factory_id", f.ID(), "error", err)
			continue
		}

		report.Assessed++
		report.Total = report.Total.Add(amount)
		metrics.RecordTaxAssessed(amount.InexactFloat64())

		e.notifier.Notify(ctx, *owner, ports.EventTaxAssessed, map[string]any{
			"factory_id": f.ID(),
			"amount":     amount.StringFixed(2),
			"amount_due": record.AmountDue().StringFixed(2),
			"due_date":   record.DueDate(),
		})
	}

	logger.InfoContext(ctx, "tax assessment complete",
		"assessed", report.Assessed, "total", report.Total.StringFixed(2))
	return report, nil
}

// recordFor loads or creates the record of an owned factory
func (e *Engine) recordFor(ctx context.Context, factoryID string, owner shared.PlayerID) (*domainTax.Record, error) {
	record, err := e.records.Get(ctx, factoryID)
	if errors.Is(err, domainTax.ErrRecordNotFound) {
		return domainTax.NewRecord(factoryID, owner)
	}
	if err != nil {
		return nil, err
	}

	if !record.Owner().Equals(owner) {
		if err := record.Transfer(owner); err != nil {
			return nil, err
		}
	}
	return record, nil
}

// CheckOverdue flags records past their due date and charges each overdue
// episode's late fee once
func (e *Engine) CheckOverdue(ctx context.Context) (*OverdueReport, error) {
	logger := common.LoggerFromContext(ctx)
	settings := e.settings.TaxSettings()
	now := e.clock.Now()

	records, err := e.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax records: %w", err)
	}

	report := &OverdueReport{Outstanding: shared.Zero}
	overdueCount := 0
	for _, record := range records {
		changed := false

		if record.Heal() {
			logger.WarnContext(ctx, "healed inconsistent tax record", "factory_id", record.FactoryID())
			metrics.RecordHeal("tax_record")
			report.Healed++
			changed = true
		}

		wasOverdue := record.Overdue()
		fee := record.MarkOverdue(now, settings.Policy.LateFeeRate)

		if record.Overdue() && !wasOverdue {
			report.NewlyOverdue++
			changed = true
			e.notifier.Notify(ctx, record.Owner(), ports.EventTaxOverdue, map[string]any{
				"factory_id": record.FactoryID(),
				"amount_due": record.AmountDue().StringFixed(2),
				"due_date":   record.DueDate(),
			})
		}

		if fee.IsPositive() {
			report.LateFees++
			changed = true
			metrics.RecordLateFee(fee.InexactFloat64())
			logger.InfoContext(ctx, "late fee applied",
				"factory_id", record.FactoryID(), "fee", fee.StringFixed(2),
				"amount_due", record.AmountDue().StringFixed(2))
			e.notifier.Notify(ctx, record.Owner(), ports.EventLateFeeApplied, map[string]any{
				"factory_id": record.FactoryID(),
				"fee":        fee.StringFixed(2),
				"amount_due": record.AmountDue().StringFixed(2),
			})
		}

		if changed {
			if err := e.records.Save(ctx, record); err != nil {
				logger.ErrorContext(ctx, "failed to save tax record", "factory_id", record.FactoryID(), "error", err)
			}
		}

		if record.Overdue() {
			overdueCount++
		}
		report.Outstanding = report.Outstanding.Add(record.AmountDue())
	}

	metrics.RecordOutstandingTax(report.Outstanding.InexactFloat64(), overdueCount)
	return report, nil
}

// PayTax settles the full balance of one factory's record
func (e *Engine) PayTax(ctx context.Context, owner shared.PlayerID, factoryID string) (*domainTax.Payment, error) {
	logger := common.LoggerFromContext(ctx)

	f, err := e.factories.Get(ctx, factoryID)
	if err != nil {
		return nil, err
	}
	if err := f.EnsureOwnedBy(owner); err != nil {
		return nil, err
	}

	record, err := e.records.Get(ctx, factoryID)
	if errors.Is(err, domainTax.ErrRecordNotFound) {
		return nil, domainTax.NewNothingDueError(factoryID)
	}
	if err != nil {
		return nil, err
	}
	if !record.HasBalance() {
		return nil, domainTax.NewNothingDueError(factoryID)
	}

	amount := record.AmountDue()
	hasFunds, err := e.ledger.HasFunds(ctx, owner, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to check funds: %w", err)
	}
	if !hasFunds {
		return nil, shared.NewInsufficientFundsError(owner, amount)
	}
	if err := e.ledger.Withdraw(ctx, owner, amount); err != nil {
		return nil, fmt.Errorf("failed to withdraw tax payment: %w", err)
	}

	now := e.clock.Now()
	record.Settle()
	if err := e.records.Save(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to save settled tax record", "factory_id", factoryID, "error", err)
	}

	payment := domainTax.NewPayment(factoryID, owner, amount, now)
	if err := e.payments.Append(ctx, payment); err != nil {
		logger.ErrorContext(ctx, "failed to append tax receipt", "factory_id", factoryID, "error", err)
	}

	metrics.RecordTaxPaid(amount.InexactFloat64())
	logger.InfoContext(ctx, "tax paid",
		"factory_id", factoryID, "player", owner.String(), "amount", amount.StringFixed(2))

	e.notifier.Notify(ctx, owner, ports.EventTaxPaid, map[string]any{
		"factory_id": factoryID,
		"amount":     amount.StringFixed(2),
		"payment_id": payment.ID.String(),
	})
	return payment, nil
}

// PayAllTaxes pays each outstanding record of owner in due-date order. It is not
// atomic: a failure on one record is recorded and the next one is still tried.
func (e *Engine) PayAllTaxes(ctx context.Context, owner shared.PlayerID) (*PayAllResult, error) {
	records, err := e.records.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax records: %w", err)
	}

	outstanding := make([]*domainTax.Record, 0, len(records))
	for _, r := range records {
		if r.HasBalance() {
			outstanding = append(outstanding, r)
		}
	}
	sort.SliceStable(outstanding, func(i, j int) bool {
		if !outstanding[i].DueDate().Equal(outstanding[j].DueDate()) {
			return outstanding[i].DueDate().Before(outstanding[j].DueDate())
		}
		return outstanding[i].FactoryID() < outstanding[j].FactoryID()
	})

	result := &PayAllResult{}
	for _, r := range outstanding {
		payment, err := e.PayTax(ctx, owner, r.FactoryID())
		if err != nil {
			result.Failures = append(result.Failures, PayFailure{FactoryID: r.FactoryID(), Err: err})
			continue
		}
		result.Paid = append(result.Paid, payment)
	}
	return result, nil
}

// Outstanding returns what a factory still owes, zero when it has no record
func (e *Engine) Outstanding(ctx context.Context, factoryID string) (shared.Money, error) {
	record, err := e.records.Get(ctx, factoryID)
	if errors.Is(err, domainTax.ErrRecordNotFound) {
		return shared.Zero, nil
	}
	if err != nil {
		return shared.Zero, err
	}
	return record.AmountDue(), nil
}

// Forget drops the record of a factory that was sold or removed
func (e *Engine) Forget(ctx context.Context, factoryID string) error {
	return e.records.Delete(ctx, factoryID)
}
