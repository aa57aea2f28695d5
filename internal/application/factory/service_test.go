package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/application/factory/commands"
	domainFactory "github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

func TestCreate_RejectsDuplicateID(t *testing.T) {
	h := helpers.NewHarness(t)
	h.CreateFactory(t, "F-1", domainFactory.TypeSmelter, 1000)

	_, err := h.Container.Factories.Create(h.Ctx, "F-1", "zone-2", domainFactory.TypeMill, shared.NewMoney(5))

	assert.ErrorIs(t, err, domainFactory.ErrFactoryExists)
}

func TestBuy(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.CreateFactory(t, "F-1", domainFactory.TypeSmelter, 1000)
	h.SetBalance(helpers.Alice, 1200)

	// Act
	_, err := h.Mediator.Send(h.Ctx, &commands.BuyFactoryCommand{PlayerID: helpers.Alice, FactoryID: "F-1"})

	// Assert
	require.NoError(t, err)
	assert.True(t, h.Factory(t, "F-1").IsOwnedBy(helpers.Alice))
	assert.Equal(t, "200.00", h.Balance(t, helpers.Alice).StringFixed(2))
	assert.Equal(t, 1, h.Notifier.Count(ports.EventFactoryPurchased))

	h.SetBalance(helpers.Bob, 5000)
	_, err = h.Container.Factories.Buy(h.Ctx, helpers.Bob, "F-1")
	assert.ErrorIs(t, err, domainFactory.ErrAlreadyOwned)
	assert.Equal(t, "5000.00", h.Balance(t, helpers.Bob).StringFixed(2))
}

func TestBuy_InsufficientFunds(t *testing.T) {
	h := helpers.NewHarness(t)
	h.CreateFactory(t, "F-1", domainFactory.TypeSmelter, 1000)
	h.SetBalance(helpers.Alice, 999)

	_, err := h.Container.Factories.Buy(h.Ctx, helpers.Alice, "F-1")

	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	assert.False(t, h.Factory(t, "F-1").IsOwned())
}

func TestBuy_FactoryLimit(t *testing.T) {
	h := helpers.NewHarness(t, helpers.WithMaxFactories(1))
	h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 100)
	h.CreateFactory(t, "F-2", domainFactory.TypeSmelter, 100)
	h.SetBalance(helpers.Alice, 1000)

	_, err := h.Container.Factories.Buy(h.Ctx, helpers.Alice, "F-2")

	assert.ErrorIs(t, err, domainFactory.ErrFactoryLimitReached)
	assert.Equal(t, "1000.00", h.Balance(t, helpers.Alice).StringFixed(2))
}

func TestSell_RefusedWhileTaxesOutstanding(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 1000)
	_, err := h.Container.Taxes.Assess(h.Ctx)
	require.NoError(t, err)

	_, err = h.Container.Factories.Sell(h.Ctx, helpers.Alice, "F-1")

	assert.ErrorIs(t, err, domainFactory.ErrTaxesOutstanding)
	assert.True(t, h.Factory(t, "F-1").IsOwnedBy(helpers.Alice))
}

func TestSell_RefundsAndWipes(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 0)
	h.Host.Storage().AddInput("F-1", "ore", 4)
	_, err := h.Container.Taxes.Assess(h.Ctx)
	require.NoError(t, err)
	h.SetBalance(helpers.Alice, 50)
	_, err = h.Container.Taxes.PayTax(h.Ctx, helpers.Alice, "F-1")
	require.NoError(t, err)

	// Act
	_, err = h.Mediator.Send(h.Ctx, &commands.SellFactoryCommand{PlayerID: helpers.Alice, FactoryID: "F-1"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "500.00", h.Balance(t, helpers.Alice).StringFixed(2))
	assert.False(t, h.Factory(t, "F-1").IsOwned())
	assert.Equal(t, 0, h.Host.Storage().Input("F-1", "ore"))
	_, err = h.Store.TaxRecords().Get(h.Ctx, "F-1")
	assert.ErrorIs(t, err, domainTax.ErrRecordNotFound)
}

func TestSell_CancelsRunningWork(t *testing.T) {
	h := helpers.NewHarness(t)
	f := h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 1000)
	task, err := domainFactory.NewProductionTask("widget", helpers.T0, time.Minute)
	require.NoError(t, err)
	require.NoError(t, f.StartProduction(task, helpers.T0))

	_, err = h.Container.Factories.Sell(h.Ctx, helpers.Alice, "F-1")

	require.NoError(t, err)
	sold := h.Factory(t, "F-1")
	assert.Equal(t, domainFactory.StatusStopped, sold.Status())
	assert.Nil(t, sold.Production())
}

func TestSell_NotOwner(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 1000)

	_, err := h.Container.Factories.Sell(h.Ctx, helpers.Bob, "F-1")

	assert.ErrorIs(t, err, shared.ErrNotOwner)
}

func TestRemove(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 1000)
	_, err := h.Container.Taxes.Assess(h.Ctx)
	require.NoError(t, err)

	require.NoError(t, h.Container.Factories.Remove(h.Ctx, "F-1"))

	_, err = h.Store.Factories().Get(h.Ctx, "F-1")
	assert.ErrorIs(t, err, domainFactory.ErrFactoryNotFound)
	_, err = h.Store.TaxRecords().Get(h.Ctx, "F-1")
	assert.ErrorIs(t, err, domainTax.ErrRecordNotFound)
	assert.ErrorIs(t, h.Container.Factories.Remove(h.Ctx, "F-1"), domainFactory.ErrFactoryNotFound)
}

func TestSetFastTravel(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", domainFactory.TypeSmelter, 1000)
	anchor := &domainFactory.Location{World: "overworld", X: 10, Y: 64, Z: -3}

	f, err := h.Container.Factories.SetFastTravel(h.Ctx, helpers.Alice, "F-1", anchor)

	require.NoError(t, err)
	require.NotNil(t, f.Anchor())
	assert.Equal(t, *anchor, *f.Anchor())

	_, err = h.Container.Factories.SetFastTravel(h.Ctx, helpers.Bob, "F-1", nil)
	assert.ErrorIs(t, err, shared.ErrNotOwner)
}
