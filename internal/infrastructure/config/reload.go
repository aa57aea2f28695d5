package config

import (
	"log/slog"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/andrescamacho/factory-economy/internal/application/tax"
	"github.com/andrescamacho/factory-economy/internal/domain/buff"
)

// EconomyHolder serves the tax policy and buff table from the latest valid
// configuration. Engines read it once per calculation, so a reload applies
// from the next pass on.
type EconomyHolder struct {
	current atomic.Pointer[EconomyConfig]
}

func NewEconomyHolder(initial EconomyConfig) *EconomyHolder {
	h := &EconomyHolder{}
	h.Store(initial)
	return h
}

func (h *EconomyHolder) Store(cfg EconomyConfig) {
	h.current.Store(&cfg)
}

func (h *EconomyHolder) Economy() EconomyConfig {
	return *h.current.Load()
}

// TaxSettings implements tax.SettingsSource
func (h *EconomyHolder) TaxSettings() tax.Settings {
	return h.Economy().TaxSettings()
}

// PerLevel implements buff.PerLevelSource
func (h *EconomyHolder) PerLevel(key buff.Key) float64 {
	return h.Economy().PerLevel(key)
}

// LoadAndWatch loads configuration and keeps holder in sync with the config
// file. Only the tax and buff sections take effect without a restart; an
// invalid edit is logged and ignored.
func LoadAndWatch(configPath string, logger *slog.Logger) (*Config, *EconomyHolder, error) {
	cfg, v, err := load(configPath)
	if err != nil {
		return nil, nil, err
	}
	holder := NewEconomyHolder(cfg.Economy)

	if v.ConfigFileUsed() == "" {
		return cfg, holder, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(v)
		if err != nil {
			logger.Warn("ignoring invalid configuration change", "file", e.Name, "error", err)
			return
		}
		economy := holder.Economy()
		economy.Tax = next.Economy.Tax
		economy.Buffs = next.Economy.Buffs
		holder.Store(economy)
		logger.Info("economy configuration reloaded", "file", e.Name,
			"tax_base_rate", economy.Tax.BaseRate,
			"late_fee_rate", economy.Tax.LateFeeRate,
		)
	})
	v.WatchConfig()

	return cfg, holder, nil
}

var (
	_ tax.SettingsSource  = (*EconomyHolder)(nil)
	_ buff.PerLevelSource = (*EconomyHolder)(nil)
)
