package invoice

import "fmt"

// Type identifies what a liability was raised for
type Type string

const (
	TypeTax    Type = "TAX"
	TypeSalary Type = "SALARY"
)

// AllTypes returns every invoice type
func AllTypes() []Type {
	return []Type{TypeTax, TypeSalary}
}

func (t Type) String() string {
	return string(t)
}

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeTax, TypeSalary:
		return true
	default:
		return false
	}
}

// Label returns the display name used in liability listings
func (t Type) Label() string {
	switch t {
	case TypeTax:
		return "Tax"
	case TypeSalary:
		return "Salary"
	default:
		return string(t)
	}
}

// ParseType parses a string into an invoice Type
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid invoice type: %s", s)
	}
	return t, nil
}
