package tax_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/domain/tax"
)

var (
	owner = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")
	t0    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newRecord(t *testing.T, amount float64) *tax.Record {
	t.Helper()
	record, err := tax.NewRecord("F-1", owner)
	require.NoError(t, err)
	require.NoError(t, record.AddCharge(shared.NewMoney(amount), t0, 72*time.Hour))
	return record
}

func TestPolicy_AssessScalesWithLevel(t *testing.T) {
	policy := tax.NewPolicy(0.05, 0.025, 0.05)

	amount := policy.Assess(shared.NewMoney(10000), 3, 0)

	assert.Equal(t, "1000.00", amount.StringFixed(2))
}

func TestPolicy_AssessAppliesReduction(t *testing.T) {
	policy := tax.NewPolicy(0.05, 0.025, 0.05)

	assert.Equal(t, "45.00", policy.Assess(shared.NewMoney(1000), 1, 0.10).StringFixed(2))
	assert.Equal(t, "0.00", policy.Assess(shared.NewMoney(1000), 1, 1.5).StringFixed(2))
	assert.Equal(t, "50.00", policy.Assess(shared.NewMoney(1000), 0, -0.2).StringFixed(2))
}

func TestPolicy_AssessRoundsToCents(t *testing.T) {
	policy := tax.NewPolicy(0.05, 0, 0)

	amount := policy.Assess(shared.NewMoney(333.33), 1, 0)

	assert.Equal(t, "16.67", amount.String())
}

func TestRecord_ChargesAccumulate(t *testing.T) {
	record := newRecord(t, 50)

	require.NoError(t, record.AddCharge(shared.NewMoney(50), t0.Add(24*time.Hour), 72*time.Hour))

	assert.Equal(t, "100.00", record.AmountDue().StringFixed(2))
	assert.Equal(t, t0.Add(96*time.Hour), record.DueDate())
	assert.Equal(t, tax.StateCurrent, record.State())
}

func TestRecord_NegativeChargeRejected(t *testing.T) {
	record := newRecord(t, 50)

	err := record.AddCharge(shared.NewMoney(-1), t0, time.Hour)

	require.Error(t, err)
	assert.Equal(t, shared.CodeInvalidAmount, shared.CodeOf(err))
	assert.Equal(t, "50.00", record.AmountDue().StringFixed(2))
}

func TestRecord_NotOverdueBeforeDueDate(t *testing.T) {
	record := newRecord(t, 200)

	fee := record.MarkOverdue(t0.Add(72*time.Hour), shared.Fraction(0.05))

	assert.True(t, fee.IsZero())
	assert.False(t, record.Overdue())
}

func TestRecord_LateFeeChargedOncePerEpisode(t *testing.T) {
	// Arrange
	record := newRecord(t, 200)
	late := t0.Add(73 * time.Hour)

	// Act
	first := record.MarkOverdue(late, shared.Fraction(0.05))
	second := record.MarkOverdue(late.Add(time.Hour), shared.Fraction(0.05))

	// Assert
	assert.Equal(t, "10.00", first.StringFixed(2))
	assert.True(t, second.IsZero())
	assert.Equal(t, "210.00", record.AmountDue().StringFixed(2))
	assert.True(t, record.Overdue())
	assert.True(t, record.LateFeeApplied())
	assert.Equal(t, tax.StateOverdue, record.State())
}

func TestRecord_SettleStartsNewEpisode(t *testing.T) {
	record := newRecord(t, 200)
	record.MarkOverdue(t0.Add(73*time.Hour), shared.Fraction(0.05))

	paid := record.Settle()

	assert.Equal(t, "210.00", paid.StringFixed(2))
	assert.True(t, record.AmountDue().IsZero())
	assert.False(t, record.Overdue())
	assert.False(t, record.LateFeeApplied())
	assert.Equal(t, tax.StateSettled, record.State())

	require.NoError(t, record.AddCharge(shared.NewMoney(100), t0.Add(80*time.Hour), 72*time.Hour))
	fee := record.MarkOverdue(t0.Add(200*time.Hour), shared.Fraction(0.05))
	assert.Equal(t, "5.00", fee.StringFixed(2))
}

func TestRecord_HealClearsFlagsOnZeroBalance(t *testing.T) {
	record := tax.ReconstructRecord("F-1", owner, shared.Zero, t0, t0, true, true)

	changed := record.Heal()

	assert.True(t, changed)
	assert.False(t, record.Overdue())
	assert.False(t, record.LateFeeApplied())
	assert.False(t, record.Heal())
}

func TestRecord_HealRestoresOverdueWhenFeeApplied(t *testing.T) {
	record := tax.ReconstructRecord("F-1", owner, shared.NewMoney(105), t0, t0, false, true)

	assert.True(t, record.Heal())
	assert.True(t, record.Overdue())
}

func TestRecord_TransferRequiresSettledBalance(t *testing.T) {
	record := newRecord(t, 10)
	buyer := shared.MustParsePlayerID("0b9e8d7c-6a5f-4e3d-8c2b-1a0f9e8d7c6b")

	require.Error(t, record.Transfer(buyer))

	record.Settle()
	require.NoError(t, record.Transfer(buyer))
	assert.True(t, record.Owner().Equals(buyer))
}
