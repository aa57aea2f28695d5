package factory

import "fmt"

// Type is the kind of production facility, which decides the recipes it may run
type Type string

const (
	TypeSmelter  Type = "SMELTER"
	TypeMill     Type = "MILL"
	TypeRefinery Type = "REFINERY"
	TypeWorkshop Type = "WORKSHOP"
	TypeAssembly Type = "ASSEMBLY"
)

// AllTypes returns all valid factory types
func AllTypes() []Type {
	return []Type{TypeSmelter, TypeMill, TypeRefinery, TypeWorkshop, TypeAssembly}
}

func (t Type) String() string {
	return string(t)
}

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeSmelter, TypeMill, TypeRefinery, TypeWorkshop, TypeAssembly:
		return true
	default:
		return false
	}
}

// ParseType parses a string into a Type
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid factory type: %s", s)
	}
	return t, nil
}
