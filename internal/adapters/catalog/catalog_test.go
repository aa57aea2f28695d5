package catalog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/adapters/catalog"
	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

const sampleCatalog = `
recipes:
  - id: gear
    name: Gear
    factory_types: [WORKSHOP]
    inputs:
      - resource: iron_ingot
        quantity: 3
    outputs:
      - resource: gear
        quantity: 2
    duration: 90s
  - id: medal
    outputs:
      - resource: medal
        quantity: 1
    duration: 1m
    hooks: [reward]
    reward: "12.50"
`

func TestParse(t *testing.T) {
	c, err := catalog.Parse([]byte(sampleCatalog))
	require.NoError(t, err)

	gear, err := c.Find("gear")
	require.NoError(t, err)
	assert.Equal(t, "Gear", gear.Name)
	assert.Equal(t, 90*time.Second, gear.BaseDuration)
	assert.True(t, gear.AllowedFor(factory.TypeWorkshop))
	assert.False(t, gear.AllowedFor(factory.TypeMill))
	assert.Equal(t, []factory.ResourceAmount{{ResourceID: "iron_ingot", Quantity: 3}}, gear.Inputs)

	medal, err := c.Find("medal")
	require.NoError(t, err)
	assert.Equal(t, "medal", medal.Name)
	assert.True(t, medal.AllowedFor(factory.TypeSmelter))
	assert.Equal(t, []string{"reward"}, medal.Hooks)
	assert.Equal(t, "12.50", medal.Reward.StringFixed(2))

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "gear", all[0].ID)
	assert.Equal(t, "medal", all[1].ID)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad duration", "recipes:\n  - id: a\n    outputs: [{resource: a, quantity: 1}]\n    duration: soon\n"},
		{"unknown type", "recipes:\n  - id: a\n    factory_types: [FOUNDRY]\n    outputs: [{resource: a, quantity: 1}]\n    duration: 1s\n"},
		{"no outputs", "recipes:\n  - id: a\n    duration: 1s\n"},
		{"zero quantity", "recipes:\n  - id: a\n    outputs: [{resource: a, quantity: 0}]\n    duration: 1s\n"},
		{"negative reward", "recipes:\n  - id: a\n    outputs: [{resource: a, quantity: 1}]\n    duration: 1s\n    reward: \"-1\"\n"},
		{"duplicate id", "recipes:\n  - id: a\n    outputs: [{resource: a, quantity: 1}]\n    duration: 1s\n  - id: a\n    outputs: [{resource: a, quantity: 1}]\n    duration: 2s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestFind_UnknownRecipe(t *testing.T) {
	_, err := catalog.Default().Find("unobtainium")

	require.Error(t, err)
	assert.ErrorIs(t, err, factory.ErrRecipeNotFound)
	assert.Equal(t, factory.CodeRecipeNotFound, shared.CodeOf(err))
}

func TestLoadFile(t *testing.T) {
	t.Run("empty path uses built-in recipes", func(t *testing.T) {
		c, err := catalog.LoadFile("")
		require.NoError(t, err)
		_, err = c.Find("iron_ingot")
		assert.NoError(t, err)
	})

	t.Run("reads yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recipes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o600))

		c, err := catalog.LoadFile(path)
		require.NoError(t, err)
		assert.Len(t, c.All(), 2)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := catalog.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
