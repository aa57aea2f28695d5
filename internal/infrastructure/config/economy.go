package config

import "time"

// EconomyConfig holds every tunable of the factory economy
type EconomyConfig struct {
	Production ProductionConfig `mapstructure:"production"`
	Upgrade    UpgradeConfig    `mapstructure:"upgrade"`
	Tax        TaxConfig        `mapstructure:"tax"`
	Salary     SalaryConfig     `mapstructure:"salary"`
	Market     MarketConfig     `mapstructure:"market"`
	Buffs      BuffsConfig      `mapstructure:"buffs"`
}

type ProductionConfig struct {
	// Fraction taken off production time per level above 1
	LevelTimeReduction float64 `mapstructure:"level_time_reduction" validate:"gte=0,lte=1"`
}

type UpgradeConfig struct {
	MaxLevel int `mapstructure:"max_level" validate:"min=1"`

	// Upgrade cost = price x cost_factor x current level
	CostFactor float64 `mapstructure:"cost_factor" validate:"gte=0"`

	Levels []UpgradeLevelConfig `mapstructure:"levels" validate:"unique_levels,dive"`
}

// UpgradeLevelConfig is the requirement to reach Level
type UpgradeLevelConfig struct {
	Level     int              `mapstructure:"level" validate:"min=2"`
	Duration  time.Duration    `mapstructure:"duration" validate:"gt=0"`
	Materials []MaterialConfig `mapstructure:"materials" validate:"dive"`
}

type MaterialConfig struct {
	Resource string `mapstructure:"resource" validate:"required"`
	Quantity int    `mapstructure:"quantity" validate:"min=1"`
}

type TaxConfig struct {
	BaseRate             float64       `mapstructure:"base_rate" validate:"gte=0,lte=1"`
	LevelMultiplier      float64       `mapstructure:"level_multiplier" validate:"gte=0,lte=1"`
	LateFeeRate          float64       `mapstructure:"late_fee_rate" validate:"gte=0,lte=1"`
	DuePeriod            time.Duration `mapstructure:"due_period" validate:"gt=0"`
	AssessInterval       time.Duration `mapstructure:"assess_interval" validate:"gte=0"`
	OverdueCheckInterval time.Duration `mapstructure:"overdue_check_interval" validate:"gte=0"`
}

type SalaryConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval" validate:"gte=0"`
	DuePeriod time.Duration `mapstructure:"due_period" validate:"gt=0"`
}

type MarketConfig struct {
	// Share of the purchase price refunded on sale
	SellRefundRate float64 `mapstructure:"sell_refund_rate" validate:"gte=0,lte=1"`

	// 0 means unlimited
	MaxFactoriesPerPlayer int `mapstructure:"max_factories_per_player" validate:"gte=0"`
}

// BuffsConfig is the bonus granted per completed research level
type BuffsConfig struct {
	ProductionTime float64 `mapstructure:"production_time" validate:"gte=0,lte=1"`
	UpgradeTime    float64 `mapstructure:"upgrade_time" validate:"gte=0,lte=1"`
	UpgradeCost    float64 `mapstructure:"upgrade_cost" validate:"gte=0,lte=1"`
	TaxReduction   float64 `mapstructure:"tax_reduction" validate:"gte=0,lte=1"`
}

// SchedulerConfig controls the engine loop
type SchedulerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval" validate:"gt=0"`

	// 0 flushes dirty records after every tick
	FlushInterval time.Duration `mapstructure:"flush_interval" validate:"gte=0"`
}

// StorageConfig selects the snapshot backend
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=gorm yaml"`

	// Root directory of the YAML backend
	Root string `mapstructure:"root"`
}

// ActionsConfig throttles player actions per owner
type ActionsConfig struct {
	PerSecond float64 `mapstructure:"per_second" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"min=1"`
}

// CatalogConfig points at the recipe catalog. Empty uses the built-in recipes.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// HostConfig locates the state file of the bundled host services
// (balances, labor, research, storage) used when the engine runs standalone.
type HostConfig struct {
	StateFile string `mapstructure:"state_file"`
}
