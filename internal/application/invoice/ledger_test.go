package invoice_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/application/invoice/commands"
	"github.com/andrescamacho/factory-economy/internal/application/invoice/queries"
	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	domainInvoice "github.com/andrescamacho/factory-economy/internal/domain/invoice"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

func TestSalaryRun_OneInvoicePerPayingFactory(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.OwnedFactory(t, helpers.Alice, "F-2", factory.TypeMill, 1000)
	h.OwnedFactory(t, helpers.Bob, "F-3", factory.TypeMill, 1000)
	h.CreateFactory(t, "F-4", factory.TypeMill, 1000)
	h.Staff("F-1", 0, 40)
	h.Staff("F-3", 0, 15.5)
	h.Staff("F-4", 0, 99)

	// Act
	report, err := h.Container.Invoices.SalaryRun(h.Ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, report.Issued)
	assert.Equal(t, "55.50", report.Total.StringFixed(2))

	invoices, err := h.Container.Invoices.List(h.Ctx, helpers.Alice, domainInvoice.Filter{})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, domainInvoice.TypeSalary, invoices[0].Type())
	assert.Equal(t, "F-1", invoices[0].FactoryID())
	assert.Equal(t, helpers.T0.Add(72*time.Hour), invoices[0].DueDate())
	assert.Equal(t, 2, h.Notifier.Count(ports.EventInvoiceIssued))
}

func TestPayInvoice(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	inv, err := h.Container.Invoices.Generate(h.Ctx, domainInvoice.TypeSalary, helpers.Alice, "F-1", shared.NewMoney(40), time.Hour)
	require.NoError(t, err)
	h.SetBalance(helpers.Alice, 40)

	// Act
	resp, err := mediator.Dispatch[*commands.PayInvoiceResponse](h.Ctx, h.Mediator, &commands.PayInvoiceCommand{
		PlayerID:  helpers.Alice,
		InvoiceID: inv.ID(),
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, resp.Invoice.Paid())
	assert.True(t, h.Balance(t, helpers.Alice).IsZero())

	h.SetBalance(helpers.Alice, 100)
	_, err = h.Container.Invoices.Pay(h.Ctx, helpers.Alice, inv.ID())
	assert.ErrorIs(t, err, domainInvoice.ErrAlreadyPaid)
	assert.Equal(t, "100.00", h.Balance(t, helpers.Alice).StringFixed(2))
}

func TestPayInvoice_Rejections(t *testing.T) {
	h := helpers.NewHarness(t)
	inv, err := h.Container.Invoices.Generate(h.Ctx, domainInvoice.TypeSalary, helpers.Alice, "F-1", shared.NewMoney(40), time.Hour)
	require.NoError(t, err)
	h.SetBalance(helpers.Alice, 39.99)
	h.SetBalance(helpers.Bob, 1000)

	_, err = h.Container.Invoices.Pay(h.Ctx, helpers.Bob, inv.ID())
	assert.ErrorIs(t, err, shared.ErrNotOwner)

	_, err = h.Container.Invoices.Pay(h.Ctx, helpers.Alice, inv.ID())
	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	assert.False(t, inv.Paid())

	_, err = h.Container.Invoices.Pay(h.Ctx, helpers.Alice, uuid.New())
	assert.ErrorIs(t, err, domainInvoice.ErrInvoiceNotFound)
}

func TestListInvoices_Filters(t *testing.T) {
	h := helpers.NewHarness(t)
	paid, err := h.Container.Invoices.Generate(h.Ctx, domainInvoice.TypeSalary, helpers.Alice, "F-1", shared.NewMoney(10), time.Hour)
	require.NoError(t, err)
	_, err = h.Container.Invoices.Generate(h.Ctx, domainInvoice.TypeSalary, helpers.Alice, "F-1", shared.NewMoney(20), 2*time.Hour)
	require.NoError(t, err)
	h.SetBalance(helpers.Alice, 10)
	_, err = h.Container.Invoices.Pay(h.Ctx, helpers.Alice, paid.ID())
	require.NoError(t, err)

	unpaid := false
	salary := domainInvoice.TypeSalary
	invoices, err := mediator.Dispatch[[]*domainInvoice.Invoice](h.Ctx, h.Mediator, &queries.ListInvoicesQuery{
		Owner: helpers.Alice,
		Type:  &salary,
		Paid:  &unpaid,
	})

	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "20.00", invoices[0].Amount().StringFixed(2))
}

func TestListLiabilities_MergesTaxRecords(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	_, err := h.Container.Taxes.Assess(h.Ctx)
	require.NoError(t, err)
	_, err = h.Container.Invoices.Generate(h.Ctx, domainInvoice.TypeSalary, helpers.Alice, "F-1", shared.NewMoney(40), time.Hour)
	require.NoError(t, err)

	// Act
	resp, err := mediator.Dispatch[*queries.ListLiabilitiesResponse](h.Ctx, h.Mediator, &queries.ListLiabilitiesQuery{
		Owner:      helpers.Alice,
		UnpaidOnly: true,
	})

	// Assert
	require.NoError(t, err)
	require.Len(t, resp.Liabilities, 2)
	assert.Equal(t, domainInvoice.TypeSalary, resp.Liabilities[0].Type)
	assert.Equal(t, queries.SourceInvoice, resp.Liabilities[0].Source)
	assert.Equal(t, domainInvoice.TypeTax, resp.Liabilities[1].Type)
	assert.Equal(t, queries.SourceTaxRecord, resp.Liabilities[1].Source)
	assert.Equal(t, "90.00", resp.TotalUnpaid.StringFixed(2))
}
