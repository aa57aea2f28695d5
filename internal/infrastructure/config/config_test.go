package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	"github.com/andrescamacho/factory-economy/internal/infrastructure/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_EconomyValues(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 0.05, cfg.Economy.Tax.BaseRate)
	assert.Equal(t, 0.025, cfg.Economy.Tax.LevelMultiplier)
	assert.Equal(t, 0.05, cfg.Economy.Tax.LateFeeRate)
	assert.Equal(t, 72*time.Hour, cfg.Economy.Tax.DuePeriod)
	assert.Equal(t, 5, cfg.Economy.Upgrade.MaxLevel)
	assert.Equal(t, "gorm", cfg.Storage.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Type)

	upgrade := cfg.Economy.UpgradeSettings()
	require.Contains(t, upgrade.Levels, 2)
	assert.Equal(t, time.Hour, upgrade.Levels[2].Duration)
	require.Len(t, upgrade.Levels[2].Materials, 1)
	assert.Equal(t, "iron_ingot", upgrade.Levels[2].Materials[0].ResourceID)
	assert.Equal(t, 10, upgrade.Levels[2].Materials[0].Quantity)
	assert.Len(t, upgrade.Levels, 4)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: yaml
  root: /var/lib/factories
economy:
  tax:
    base_rate: 0.1
    due_period: 48h
  upgrade:
    max_level: 3
    levels:
      - level: 2
        duration: 30m
      - level: 3
        duration: 2h
        materials:
          - resource: plank
            quantity: 4
`)

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Storage.Driver)
	assert.Equal(t, 0.1, cfg.Economy.Tax.BaseRate)
	assert.Equal(t, 0.05, cfg.Economy.Tax.LateFeeRate)
	assert.Equal(t, 48*time.Hour, cfg.Economy.Tax.DuePeriod)
	assert.Equal(t, 3, cfg.Economy.Upgrade.MaxLevel)
	require.Len(t, cfg.Economy.Upgrade.Levels, 2)
	assert.Equal(t, 30*time.Minute, cfg.Economy.Upgrade.Levels[0].Duration)
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, "economy:\n  tax:\n    late_fee_rate: 0.2\n")
	t.Setenv("FE_ECONOMY_TAX_LATE_FEE_RATE", "0.1")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 0.1, cfg.Economy.Tax.LateFeeRate)
}

func TestLoadConfig_RejectsInvalidEconomy(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "rate above one",
			body: "economy:\n  tax:\n    base_rate: 1.5\n",
		},
		{
			name: "level above max",
			body: "economy:\n  upgrade:\n    max_level: 2\n    levels:\n      - level: 3\n        duration: 1h\n",
		},
		{
			name: "duplicate level",
			body: "economy:\n  upgrade:\n    levels:\n      - level: 2\n        duration: 1h\n      - level: 2\n        duration: 2h\n",
		},
		{
			name: "unknown storage driver",
			body: "storage:\n  driver: redis\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestSchedulerSettings_SalaryDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Economy.Salary.Enabled = false

	s := cfg.SchedulerSettings()

	assert.Equal(t, time.Duration(0), s.SalaryInterval)
	assert.Equal(t, 24*time.Hour, s.TaxAssessInterval)
	assert.Equal(t, 10*time.Minute, s.OverdueCheckInterval)
}

func TestEconomyHolder_ServesLatestSettings(t *testing.T) {
	economy := config.Default().Economy
	holder := config.NewEconomyHolder(economy)

	assert.Equal(t, "0.05", holder.TaxSettings().Policy.BaseRate.String())
	assert.Equal(t, 0.02, holder.PerLevel(buff.KeyTaxReduction))

	economy.Tax.BaseRate = 0.08
	economy.Buffs.TaxReduction = 0.04
	holder.Store(economy)

	assert.Equal(t, "0.08", holder.TaxSettings().Policy.BaseRate.String())
	assert.Equal(t, 0.04, holder.PerLevel(buff.KeyTaxReduction))
}

func TestUserConfigHandler_DefaultPlayer(t *testing.T) {
	handler, err := config.NewUserConfigHandlerAt(t.TempDir())
	require.NoError(t, err)

	_, ok, err := handler.DefaultPlayer()
	require.NoError(t, err)
	assert.False(t, ok)

	player := shared.MustParsePlayerID("6f1c3e4a-5b2d-4c8e-9a7f-1d2e3f4a5b6c")
	require.NoError(t, handler.SetDefaultPlayer(player))

	got, ok, err := handler.DefaultPlayer()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, got.Equals(player))

	require.NoError(t, handler.ClearDefaultPlayer())
	_, ok, err = handler.DefaultPlayer()
	require.NoError(t, err)
	assert.False(t, ok)
}
