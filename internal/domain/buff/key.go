package buff

import "fmt"

// Key identifies a research line that modifies an engine calculation
type Key string

const (
	KeyProductionTime Key = "production_time"
	KeyUpgradeTime    Key = "upgrade_time"
	KeyUpgradeCost    Key = "upgrade_cost"
	KeyTaxReduction   Key = "tax_reduction"
)

// AllKeys returns every buff key
func AllKeys() []Key {
	return []Key{KeyProductionTime, KeyUpgradeTime, KeyUpgradeCost, KeyTaxReduction}
}

func (k Key) String() string {
	return string(k)
}

func (k Key) IsValid() bool {
	switch k {
	case KeyProductionTime, KeyUpgradeTime, KeyUpgradeCost, KeyTaxReduction:
		return true
	default:
		return false
	}
}

// ParseKey parses a string into a Key
func ParseKey(s string) (Key, error) {
	k := Key(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid buff key: %s", s)
	}
	return k, nil
}
