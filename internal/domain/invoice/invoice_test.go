package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

var (
	owner = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")
	t0    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestNewInvoice_RequiresPositiveAmount(t *testing.T) {
	_, err := invoice.NewInvoice(invoice.TypeSalary, owner, "F-1", shared.Zero, t0, time.Hour)
	assert.Equal(t, shared.CodeInvalidAmount, shared.CodeOf(err))

	_, err = invoice.NewInvoice(invoice.Type("RENT"), owner, "F-1", shared.NewMoney(5), t0, time.Hour)
	assert.Error(t, err)

	_, err = invoice.NewInvoice(invoice.TypeSalary, shared.PlayerID{}, "F-1", shared.NewMoney(5), t0, time.Hour)
	assert.Error(t, err)
}

func TestInvoice_PayOnce(t *testing.T) {
	// Arrange
	inv, err := invoice.NewInvoice(invoice.TypeSalary, owner, "F-1", shared.NewMoney(40), t0, 72*time.Hour)
	require.NoError(t, err)

	// Act
	require.NoError(t, inv.MarkPaid(t0.Add(time.Hour)))
	err = inv.MarkPaid(t0.Add(2 * time.Hour))

	// Assert
	assert.ErrorIs(t, err, invoice.ErrAlreadyPaid)
	assert.True(t, inv.Paid())
	require.NotNil(t, inv.PaidAt())
	assert.Equal(t, t0.Add(time.Hour), *inv.PaidAt())
}

func TestInvoice_IsOverdue(t *testing.T) {
	inv, err := invoice.NewInvoice(invoice.TypeTax, owner, "F-1", shared.NewMoney(40), t0, 72*time.Hour)
	require.NoError(t, err)

	assert.False(t, inv.IsOverdue(t0.Add(72*time.Hour)))
	assert.True(t, inv.IsOverdue(t0.Add(73*time.Hour)))

	require.NoError(t, inv.MarkPaid(t0.Add(80*time.Hour)))
	assert.False(t, inv.IsOverdue(t0.Add(100*time.Hour)))
}

func TestParseType(t *testing.T) {
	typ, err := invoice.ParseType("SALARY")
	require.NoError(t, err)
	assert.Equal(t, "Salary", typ.Label())

	_, err = invoice.ParseType("salary")
	assert.Error(t, err)

	assert.Equal(t, "BONUS", invoice.Type("BONUS").Label())
}
