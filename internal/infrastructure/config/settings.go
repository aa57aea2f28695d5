package config

import (
	"github.com/andrescamacho/factory-economy/internal/application/factory"
	"github.com/andrescamacho/factory-economy/internal/application/production"
	"github.com/andrescamacho/factory-economy/internal/application/scheduler"
	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/application/upgrade"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
	domainFactory "github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// ProductionSettings converts the production section
func (c EconomyConfig) ProductionSettings() production.Settings {
	return production.Settings{LevelTimeReduction: c.Production.LevelTimeReduction}
}

// UpgradeSettings converts the upgrade section
func (c EconomyConfig) UpgradeSettings() upgrade.Settings {
	levels := make(map[int]upgrade.LevelSettings, len(c.Upgrade.Levels))
	for _, l := range c.Upgrade.Levels {
		materials := make([]domainFactory.ResourceAmount, 0, len(l.Materials))
		for _, m := range l.Materials {
			materials = append(materials, domainFactory.ResourceAmount{ResourceID: m.Resource, Quantity: m.Quantity})
		}
		levels[l.Level] = upgrade.LevelSettings{Duration: l.Duration, Materials: materials}
	}
	return upgrade.Settings{
		MaxLevel:   c.Upgrade.MaxLevel,
		CostFactor: shared.Fraction(c.Upgrade.CostFactor),
		Levels:     levels,
	}
}

// TaxSettings converts the tax section
func (c EconomyConfig) TaxSettings() tax.Settings {
	return tax.Settings{
		Policy:    domainTax.NewPolicy(c.Tax.BaseRate, c.Tax.LevelMultiplier, c.Tax.LateFeeRate),
		DuePeriod: c.Tax.DuePeriod,
	}
}

// MarketSettings converts the market section
func (c EconomyConfig) MarketSettings() factory.MarketSettings {
	return factory.MarketSettings{
		SellRefundRate:        shared.Fraction(c.Market.SellRefundRate),
		MaxFactoriesPerPlayer: c.Market.MaxFactoriesPerPlayer,
	}
}

// PerLevel implements buff.PerLevelSource
func (c EconomyConfig) PerLevel(key buff.Key) float64 {
	switch key {
	case buff.KeyProductionTime:
		return c.Buffs.ProductionTime
	case buff.KeyUpgradeTime:
		return c.Buffs.UpgradeTime
	case buff.KeyUpgradeCost:
		return c.Buffs.UpgradeCost
	case buff.KeyTaxReduction:
		return c.Buffs.TaxReduction
	default:
		return 0
	}
}

// SchedulerSettings merges the loop cadence with the periodic pass intervals
func (c *Config) SchedulerSettings() scheduler.Settings {
	s := scheduler.Settings{
		TickInterval:         c.Scheduler.TickInterval,
		FlushInterval:        c.Scheduler.FlushInterval,
		TaxAssessInterval:    c.Economy.Tax.AssessInterval,
		OverdueCheckInterval: c.Economy.Tax.OverdueCheckInterval,
	}
	if c.Economy.Salary.Enabled {
		s.SalaryInterval = c.Economy.Salary.Interval
	}
	return s
}
