package tax_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/application/tax/commands"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

// switchableSettings lets a test swap rates between passes
type switchableSettings struct {
	mu       sync.Mutex
	settings tax.Settings
}

func (s *switchableSettings) TaxSettings() tax.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *switchableSettings) set(settings tax.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

func assess(t *testing.T, h *helpers.Harness) *tax.AssessReport {
	t.Helper()
	report, err := h.Container.Taxes.Assess(h.Ctx)
	require.NoError(t, err)
	return report
}

func TestAssess_LevelMultiplier(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 10000)
	_, err := h.Container.Factories.SetLevel(h.Ctx, "F-1", 3)
	require.NoError(t, err)
	h.CreateFactory(t, "F-unowned", factory.TypeMill, 5000)

	// Act
	report := assess(t, h)

	// Assert
	assert.Equal(t, 1, report.Assessed)
	assert.Equal(t, "1000.00", report.Total.StringFixed(2))
	record := h.Record(t, "F-1")
	assert.Equal(t, "1000.00", record.AmountDue().StringFixed(2))
	assert.Equal(t, helpers.T0.Add(72*time.Hour), record.DueDate())
	assert.Equal(t, 1, h.Notifier.Count(ports.EventTaxAssessed))

	_, err = h.Store.TaxRecords().Get(h.Ctx, "F-unowned")
	assert.ErrorIs(t, err, domainTax.ErrRecordNotFound)
}

func TestAssess_AccumulatesUntilPaid(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)

	for i := 0; i < 3; i++ {
		assess(t, h)
		h.Advance(24 * time.Hour)
	}

	assert.Equal(t, "150.00", h.Record(t, "F-1").AmountDue().StringFixed(2))
}

func TestAssess_ResearchReduction(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Host.Research().SetLevel(helpers.Alice, buff.KeyTaxReduction, 5)

	assess(t, h)

	assert.Equal(t, "45.00", h.Record(t, "F-1").AmountDue().StringFixed(2))
}

func TestAssess_ReloadedRatesApplyNextPass(t *testing.T) {
	source := &switchableSettings{settings: tax.Settings{
		Policy:    domainTax.NewPolicy(0.05, 0, 0.05),
		DuePeriod: 72 * time.Hour,
	}}
	h := helpers.NewHarness(t, helpers.WithTaxSettings(source))
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)

	assess(t, h)
	source.set(tax.Settings{Policy: domainTax.NewPolicy(0.10, 0, 0.05), DuePeriod: 24 * time.Hour})
	assess(t, h)

	record := h.Record(t, "F-1")
	assert.Equal(t, "150.00", record.AmountDue().StringFixed(2))
	assert.Equal(t, helpers.T0.Add(24*time.Hour), record.DueDate())
}

func TestCheckOverdue_LateFeeOnce(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 4000)
	assess(t, h)
	require.Equal(t, "200.00", h.Record(t, "F-1").AmountDue().StringFixed(2))

	// Act
	h.Advance(73 * time.Hour)
	first, err := h.Container.Taxes.CheckOverdue(h.Ctx)
	require.NoError(t, err)
	second, err := h.Container.Taxes.CheckOverdue(h.Ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, first.NewlyOverdue)
	assert.Equal(t, 1, first.LateFees)
	assert.Equal(t, 0, second.NewlyOverdue)
	assert.Equal(t, 0, second.LateFees)
	assert.Equal(t, "210.00", second.Outstanding.StringFixed(2))

	record := h.Record(t, "F-1")
	assert.Equal(t, "210.00", record.AmountDue().StringFixed(2))
	assert.True(t, record.Overdue())
	assert.True(t, record.LateFeeApplied())
	assert.Equal(t, 1, h.Notifier.Count(ports.EventTaxOverdue))
	assert.Equal(t, 1, h.Notifier.Count(ports.EventLateFeeApplied))
}

func TestCheckOverdue_NewAssessmentKeepsEpisode(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 4000)
	assess(t, h)
	h.Advance(73 * time.Hour)
	_, err := h.Container.Taxes.CheckOverdue(h.Ctx)
	require.NoError(t, err)

	assess(t, h)
	h.Advance(73 * time.Hour)
	report, err := h.Container.Taxes.CheckOverdue(h.Ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, report.LateFees)
	assert.Equal(t, "410.00", h.Record(t, "F-1").AmountDue().StringFixed(2))
}

func TestCheckOverdue_HealsContradictoryRecord(t *testing.T) {
	h := helpers.NewHarness(t)
	broken := domainTax.ReconstructRecord("F-1", helpers.Alice, shared.Zero, helpers.T0, helpers.T0, true, true)
	require.NoError(t, h.Store.TaxRecords().Save(h.Ctx, broken))

	report, err := h.Container.Taxes.CheckOverdue(h.Ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Healed)
	assert.False(t, h.Record(t, "F-1").Overdue())
}

func TestPayTax_ExactBalance(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 4000)
	assess(t, h)
	h.Advance(73 * time.Hour)
	_, err := h.Container.Taxes.CheckOverdue(h.Ctx)
	require.NoError(t, err)
	h.SetBalance(helpers.Alice, 210)

	// Act
	resp, err := mediator.Dispatch[*commands.PayTaxResponse](h.Ctx, h.Mediator, &commands.PayTaxCommand{
		PlayerID:  helpers.Alice,
		FactoryID: "F-1",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "210.00", resp.Payment.Amount.StringFixed(2))
	assert.True(t, h.Balance(t, helpers.Alice).IsZero())

	record := h.Record(t, "F-1")
	assert.True(t, record.AmountDue().IsZero())
	assert.False(t, record.Overdue())
	assert.False(t, record.LateFeeApplied())

	history, err := h.Store.Payments().ListByOwner(h.Ctx, helpers.Alice)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resp.Payment.ID, history[0].ID)
}

func TestPayTax_Rejections(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)

	_, err := h.Container.Taxes.PayTax(h.Ctx, helpers.Alice, "F-1")
	assert.ErrorIs(t, err, domainTax.ErrNothingDue)

	assess(t, h)
	h.SetBalance(helpers.Alice, 49.99)

	_, err = h.Container.Taxes.PayTax(h.Ctx, helpers.Alice, "F-1")
	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	assert.Equal(t, "49.99", h.Balance(t, helpers.Alice).StringFixed(2))
	assert.Equal(t, "50.00", h.Record(t, "F-1").AmountDue().StringFixed(2))

	_, err = h.Container.Taxes.PayTax(h.Ctx, helpers.Bob, "F-1")
	assert.ErrorIs(t, err, shared.ErrNotOwner)
}

func TestPayTax_LedgerFailureLeavesRecord(t *testing.T) {
	ledger := helpers.NewFailingLedger(nil)
	h := helpers.NewHarness(t, helpers.WithFailingLedger(ledger))
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	assess(t, h)
	h.SetBalance(helpers.Alice, 500)
	ledger.Trip()

	_, err := h.Container.Taxes.PayTax(h.Ctx, helpers.Alice, "F-1")

	assert.ErrorIs(t, err, helpers.ErrLedgerDown)
	assert.Equal(t, 1, ledger.Withdraws())
	assert.Equal(t, "500.00", h.Balance(t, helpers.Alice).StringFixed(2))
	assert.Equal(t, "50.00", h.Record(t, "F-1").AmountDue().StringFixed(2))

	history, err := h.Store.Payments().ListByOwner(h.Ctx, helpers.Alice)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPayAllTaxes_ContinuesPastFailures(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "A", factory.TypeSmelter, 1000)
	assess(t, h)
	h.Advance(time.Hour)
	h.OwnedFactory(t, helpers.Alice, "B", factory.TypeSmelter, 4000)
	h.OwnedFactory(t, helpers.Alice, "C", factory.TypeSmelter, 600)
	assess(t, h)
	// A: 100, B: 200, C: 30
	h.SetBalance(helpers.Alice, 150)

	// Act
	result, err := mediator.Dispatch[*tax.PayAllResult](h.Ctx, h.Mediator, &commands.PayAllTaxesCommand{PlayerID: helpers.Alice})

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Paid, 2)
	assert.Equal(t, "A", result.Paid[0].FactoryID)
	assert.Equal(t, "C", result.Paid[1].FactoryID)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "B", result.Failures[0].FactoryID)
	assert.ErrorIs(t, result.Failures[0].Err, shared.ErrInsufficientFunds)
	assert.Equal(t, "130.00", result.TotalPaid().StringFixed(2))
	assert.Equal(t, "20.00", h.Balance(t, helpers.Alice).StringFixed(2))
	assert.Equal(t, "200.00", h.Record(t, "B").AmountDue().StringFixed(2))
}

func TestOutstanding_ZeroWithoutRecord(t *testing.T) {
	h := helpers.NewHarness(t)

	due, err := h.Container.Taxes.Outstanding(h.Ctx, "missing")

	require.NoError(t, err)
	assert.True(t, due.IsZero())
}
