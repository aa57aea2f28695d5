package inmemory_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/inmemory"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

var alice = shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")

func TestLedger_WithdrawLeavesBalanceOnFailure(t *testing.T) {
	ctx := context.Background()
	host := inmemory.NewHost()
	host.Ledger().SetBalance(alice, shared.NewMoney(100))

	err := host.Ledger().Withdraw(ctx, alice, shared.NewMoney(100.01))

	assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
	balance, _ := host.Ledger().Balance(ctx, alice)
	assert.Equal(t, "100.00", balance.StringFixed(2))

	require.NoError(t, host.Ledger().Withdraw(ctx, alice, shared.NewMoney(100)))
	balance, _ = host.Ledger().Balance(ctx, alice)
	assert.True(t, balance.IsZero())
}

func TestLedger_RejectsNegativeAmounts(t *testing.T) {
	ctx := context.Background()
	host := inmemory.NewHost()

	assert.Error(t, host.Ledger().Deposit(ctx, alice, shared.NewMoney(-1)))
	assert.Error(t, host.Ledger().Withdraw(ctx, alice, shared.NewMoney(-1)))
}

func TestLabor_UnstaffedFactory(t *testing.T) {
	ctx := context.Background()
	host := inmemory.NewHost()
	host.Labor().Assign("F-1", inmemory.LaborAssignment{Workers: 2, TimeReduction: 0.3, Wage: shared.NewMoney(15)})
	host.Labor().Assign("F-1", inmemory.LaborAssignment{Workers: 0})

	assigned, err := host.Labor().HasLaborAssigned(ctx, "F-1")
	require.NoError(t, err)
	assert.False(t, assigned)
	wage, err := host.Labor().WageFor(ctx, "F-1")
	require.NoError(t, err)
	assert.True(t, wage.IsZero())
}

func TestStorage_ConsumeAndClear(t *testing.T) {
	ctx := context.Background()
	host := inmemory.NewHost()
	storage := host.Storage()
	storage.AddInput("F-1", "ore", 3)

	ok, err := storage.HasInput(ctx, "F-1", "ore", 4)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, storage.ConsumeInput(ctx, "F-1", "ore", 4))
	assert.Equal(t, 3, storage.Input("F-1", "ore"))

	require.NoError(t, storage.ConsumeInput(ctx, "F-1", "ore", 2))
	require.NoError(t, storage.CreditOutput(ctx, "F-1", "ingot", 1))
	assert.Equal(t, 1, storage.Input("F-1", "ore"))
	assert.Equal(t, 1, storage.Output("F-1", "ingot"))

	require.NoError(t, storage.RestoreInput(ctx, "F-1", "ore", 2))
	assert.Equal(t, 3, storage.Input("F-1", "ore"))

	require.NoError(t, storage.Clear(ctx, "F-1"))
	assert.Zero(t, storage.Input("F-1", "ore"))
	assert.Zero(t, storage.Output("F-1", "ingot"))
}

func TestHost_StateFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "host.yaml")

	host := inmemory.NewHost()
	host.Ledger().SetBalance(alice, shared.NewMoney(1234.5))
	host.Labor().Assign("F-1", inmemory.LaborAssignment{Workers: 3, TimeReduction: 0.25, Wage: shared.NewMoney(40)})
	host.Research().SetLevel(alice, buff.KeyTaxReduction, 2)
	host.Storage().AddInput("F-1", "ore", 7)
	require.NoError(t, host.Progress().RecordProduction(ctx, alice, "widget", 4))
	require.NoError(t, host.SaveFile(path))

	loaded := inmemory.NewHost()
	require.NoError(t, loaded.LoadFile(path))

	balance, _ := loaded.Ledger().Balance(ctx, alice)
	assert.Equal(t, "1234.50", balance.StringFixed(2))
	reduction, _ := loaded.Labor().TimeReductionFor(ctx, "F-1")
	assert.Equal(t, 0.25, reduction)
	wage, _ := loaded.Labor().WageFor(ctx, "F-1")
	assert.Equal(t, "40.00", wage.StringFixed(2))
	level, _ := loaded.Research().CompletedLevel(ctx, alice, buff.KeyTaxReduction)
	assert.Equal(t, 2, level)
	assert.Equal(t, 7, loaded.Storage().Input("F-1", "ore"))
	assert.Equal(t, 4, loaded.Progress().Count(alice, "widget"))
}

func TestHost_LoadMissingFileKeepsEmptyState(t *testing.T) {
	host := inmemory.NewHost()

	require.NoError(t, host.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))

	balance, _ := host.Ledger().Balance(context.Background(), alice)
	assert.True(t, balance.IsZero())
}
