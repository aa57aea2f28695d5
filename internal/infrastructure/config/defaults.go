package config

import (
	"time"

	"github.com/spf13/viper"
)

// registerDefaults seeds viper with the economy and loop defaults. These keys
// accept zero as a real value, so they cannot be filled in after decoding.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("economy.production.level_time_reduction", 0.10)

	v.SetDefault("economy.upgrade.max_level", 5)
	v.SetDefault("economy.upgrade.cost_factor", 0.5)
	v.SetDefault("economy.upgrade.levels", []map[string]any{
		{"level": 2, "duration": "1h", "materials": []map[string]any{
			{"resource": "iron_ingot", "quantity": 10},
		}},
		{"level": 3, "duration": "4h", "materials": []map[string]any{
			{"resource": "iron_ingot", "quantity": 25},
			{"resource": "plank", "quantity": 20},
		}},
		{"level": 4, "duration": "12h", "materials": []map[string]any{
			{"resource": "iron_ingot", "quantity": 50},
			{"resource": "tool_kit", "quantity": 5},
		}},
		{"level": 5, "duration": "24h", "materials": []map[string]any{
			{"resource": "iron_ingot", "quantity": 100},
			{"resource": "tool_kit", "quantity": 15},
		}},
	})

	v.SetDefault("economy.tax.base_rate", 0.05)
	v.SetDefault("economy.tax.level_multiplier", 0.025)
	v.SetDefault("economy.tax.late_fee_rate", 0.05)
	v.SetDefault("economy.tax.due_period", 72*time.Hour)
	v.SetDefault("economy.tax.assess_interval", 24*time.Hour)
	v.SetDefault("economy.tax.overdue_check_interval", 10*time.Minute)

	v.SetDefault("economy.salary.enabled", true)
	v.SetDefault("economy.salary.interval", 24*time.Hour)
	v.SetDefault("economy.salary.due_period", 72*time.Hour)

	v.SetDefault("economy.market.sell_refund_rate", 0.5)
	v.SetDefault("economy.market.max_factories_per_player", 0)

	v.SetDefault("economy.buffs.production_time", 0.05)
	v.SetDefault("economy.buffs.upgrade_time", 0.05)
	v.SetDefault("economy.buffs.upgrade_cost", 0.05)
	v.SetDefault("economy.buffs.tax_reduction", 0.02)

	v.SetDefault("scheduler.tick_interval", time.Second)
	v.SetDefault("scheduler.flush_interval", 0)

	v.SetDefault("actions.per_second", 5.0)
	v.SetDefault("actions.burst", 10)

	v.SetDefault("metrics.enabled", false)
}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "factory-economy.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "factory"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "factory_economy"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Storage defaults
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "gorm"
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = "data"
	}

	// Loop defaults
	if cfg.Scheduler.TickInterval == 0 {
		cfg.Scheduler.TickInterval = time.Second
	}
	if cfg.Economy.Upgrade.MaxLevel == 0 {
		cfg.Economy.Upgrade.MaxLevel = 5
	}
	if cfg.Economy.Tax.DuePeriod == 0 {
		cfg.Economy.Tax.DuePeriod = 72 * time.Hour
	}
	if cfg.Economy.Salary.DuePeriod == 0 {
		cfg.Economy.Salary.DuePeriod = 72 * time.Hour
	}
	if cfg.Actions.Burst == 0 {
		cfg.Actions.Burst = 10
	}

	// Host defaults
	if cfg.Host.StateFile == "" {
		cfg.Host.StateFile = "host-state.yaml"
	}

	// Daemon defaults
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/factoryd.pid"
	}
	if cfg.Daemon.APIAddress == "" {
		cfg.Daemon.APIAddress = "127.0.0.1:7420"
	}
	if cfg.Daemon.NotifyPath == "" {
		cfg.Daemon.NotifyPath = "/ws"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
