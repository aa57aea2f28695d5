package production_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/application/mediator"
	"github.com/andrescamacho/factory-economy/internal/application/production/commands"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/ports"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/test/helpers"
)

func start(h *helpers.Harness, factoryID, recipeID string) (*commands.StartProductionResponse, error) {
	return mediator.Dispatch[*commands.StartProductionResponse](h.Ctx, h.Mediator, &commands.StartProductionCommand{
		PlayerID:  helpers.Alice,
		FactoryID: factoryID,
		RecipeID:  recipeID,
	})
}

func TestStartProduction_LevelReducesDuration(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 0)
	_, err := h.Container.Factories.SetLevel(h.Ctx, "F-1", 2)
	require.NoError(t, err)
	h.Host.Storage().AddInput("F-1", "ore", 2)

	// Act
	resp, err := start(h, "F-1", "widget")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 108*time.Second, resp.Duration)
	assert.Equal(t, helpers.T0.Add(108*time.Second), resp.CompletesAt)
	assert.Equal(t, 0, h.Host.Storage().Input("F-1", "ore"))
	assert.Equal(t, factory.StatusRunning, h.Factory(t, "F-1").Status())
	assert.Equal(t, 1, h.Notifier.Count(ports.EventProductionStarted))
}

func TestStartProduction_LaborAndResearchStack(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0.5, 0)
	h.Host.Research().SetLevel(helpers.Alice, buff.KeyProductionTime, 2)
	h.Host.Storage().AddInput("F-1", "ore", 2)

	resp, err := start(h, "F-1", "widget")

	require.NoError(t, err)
	assert.Equal(t, 54*time.Second, resp.Duration)
}

func TestStartProduction_MissingInputsStalls(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 0)
	h.Host.Storage().AddInput("F-1", "ore", 1)

	// Act
	_, err := start(h, "F-1", "widget")

	// Assert
	require.ErrorIs(t, err, factory.ErrInsufficientInputs)
	assert.Equal(t, factory.StatusNoParts, h.Factory(t, "F-1").Status())
	assert.Equal(t, 1, h.Host.Storage().Input("F-1", "ore"))
	assert.Equal(t, 1, h.Notifier.Count(ports.EventProductionNoParts))

	h.Host.Storage().AddInput("F-1", "ore", 1)
	_, err = start(h, "F-1", "widget")
	require.NoError(t, err)
	assert.Equal(t, factory.StatusRunning, h.Factory(t, "F-1").Status())
}

func TestStartProduction_Rejections(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.OwnedFactory(t, helpers.Alice, "M-1", factory.TypeMill, 1000)
	h.OwnedFactory(t, helpers.Bob, "B-1", factory.TypeSmelter, 1000)
	h.Host.Storage().AddInput("F-1", "ore", 10)

	_, err := start(h, "F-1", "widget")
	assert.ErrorIs(t, err, factory.ErrNoEmployeeAssigned)

	h.Staff("M-1", 0, 0)
	_, err = start(h, "M-1", "widget")
	assert.ErrorIs(t, err, factory.ErrRecipeNotAllowed)

	_, err = start(h, "B-1", "widget")
	assert.ErrorIs(t, err, shared.ErrNotOwner)

	_, err = start(h, "F-1", "unobtainium")
	assert.ErrorIs(t, err, factory.ErrRecipeNotFound)

	_, err = start(h, "nope", "widget")
	assert.ErrorIs(t, err, factory.ErrFactoryNotFound)

	h.Staff("F-1", 0, 0)
	_, err = start(h, "F-1", "widget")
	require.NoError(t, err)
	_, err = start(h, "F-1", "widget")
	assert.ErrorIs(t, err, factory.ErrAlreadyProducing)
	assert.Equal(t, 8, h.Host.Storage().Input("F-1", "ore"))
}

func TestStartProduction_LaborOutageConsumesNothing(t *testing.T) {
	// Arrange
	labor := &helpers.FailingLabor{}
	h := helpers.NewHarness(t, helpers.WithFailingLabor(labor))
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0.2, 0)
	h.Host.Storage().AddInput("F-1", "ore", 2)
	labor.Trip()

	// Act
	_, err := start(h, "F-1", "widget")

	// Assert
	require.ErrorIs(t, err, helpers.ErrLaborDown)
	assert.Equal(t, 2, h.Host.Storage().Input("F-1", "ore"))
	f := h.Factory(t, "F-1")
	assert.Equal(t, factory.StatusStopped, f.Status())
	assert.Nil(t, f.Production())
	assert.Zero(t, h.Notifier.Count(ports.EventProductionStarted))
}

func TestStartProduction_ConsumeFailureRestoresEarlierInputs(t *testing.T) {
	storage := &helpers.FailingStorage{}
	h := helpers.NewHarness(t, helpers.WithFailingStorage(storage))
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 0)
	h.Host.Storage().AddInput("F-1", "ore", 3)
	h.Host.Storage().AddInput("F-1", "coal", 1)
	storage.Break("coal")

	_, err := start(h, "F-1", "alloy")

	require.ErrorIs(t, err, helpers.ErrStorageDown)
	assert.Equal(t, 3, h.Host.Storage().Input("F-1", "ore"))
	assert.Equal(t, 1, h.Host.Storage().Input("F-1", "coal"))
	assert.Equal(t, factory.StatusStopped, h.Factory(t, "F-1").Status())
}

func TestTick_CompletesExactlyOnce(t *testing.T) {
	// Arrange
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeSmelter, 1000)
	h.Staff("F-1", 0, 0)
	h.Host.Storage().AddInput("F-1", "ore", 2)
	_, err := start(h, "F-1", "widget")
	require.NoError(t, err)

	// Act - before the timer runs out
	h.Advance(119 * time.Second)
	h.Tick(t)

	// Assert
	assert.Equal(t, 0, h.Host.Storage().Output("F-1", "widget"))
	assert.Equal(t, factory.StatusRunning, h.Factory(t, "F-1").Status())
	assert.GreaterOrEqual(t, h.Notifier.Count(ports.EventProductionProgress), 1)

	// Act - past the timer, ticked repeatedly
	h.Advance(2 * time.Second)
	h.Tick(t)
	h.Tick(t)
	h.Advance(time.Hour)
	h.Tick(t)

	// Assert
	assert.Equal(t, 1, h.Host.Storage().Output("F-1", "widget"))
	assert.Equal(t, 1, h.Notifier.Count(ports.EventProductionCompleted))
	assert.Equal(t, 1, h.Host.Progress().Count(helpers.Alice, "widget"))
	f := h.Factory(t, "F-1")
	assert.Equal(t, factory.StatusStopped, f.Status())
	assert.Nil(t, f.Production())
}

func TestTick_RewardHookPaysOnce(t *testing.T) {
	h := helpers.NewHarness(t)
	h.OwnedFactory(t, helpers.Alice, "F-1", factory.TypeAssembly, 1000)
	h.Staff("F-1", 0, 0)
	_, err := start(h, "F-1", "trophy")
	require.NoError(t, err)

	h.Advance(2 * time.Minute)
	h.Tick(t)
	h.Tick(t)

	assert.Equal(t, "25.00", h.Balance(t, helpers.Alice).StringFixed(2))
	assert.Equal(t, 1, h.Notifier.Count(ports.EventRewardPaid))
	assert.Equal(t, 1, h.Host.Storage().Output("F-1", "trophy"))
}

func TestTick_HealsRunningWithoutTask(t *testing.T) {
	h := helpers.NewHarness(t)
	owner := helpers.Alice
	broken := factory.ReconstructFactory("F-9", "zone-1", factory.TypeSmelter, &owner, shared.NewMoney(100),
		1, factory.StatusRunning, nil, nil, nil, helpers.T0, helpers.T0)
	require.NoError(t, h.Store.Factories().Save(h.Ctx, broken))

	changed, err := h.Container.Production.Tick(h.Ctx, broken)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, factory.StatusStopped, h.Factory(t, "F-9").Status())
}

func TestHooks_RegisterRejectsDuplicates(t *testing.T) {
	h := helpers.NewHarness(t)

	err := h.Container.Hooks.Register("reward", nil)

	assert.Error(t, err)
	assert.Equal(t, []string{"reward"}, h.Container.Hooks.Names())
}
