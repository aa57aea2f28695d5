package tax

import (
	"time"

	domainTax "github.com/andrescamacho/factory-economy/internal/domain/tax"
)

// Settings are the tax rates and due period in force for one pass
type Settings struct {
	Policy    domainTax.Policy
	DuePeriod time.Duration
}

// SettingsSource returns the current settings. Read once per pass so a config
// reload applies from the next pass on.
type SettingsSource interface {
	TaxSettings() Settings
}

// StaticSettings is a SettingsSource that never changes
type StaticSettings Settings

func (s StaticSettings) TaxSettings() Settings {
	return Settings(s)
}
