package factory

import (
	"fmt"
	"time"

	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ResourceAmount is a quantity of a stored resource
type ResourceAmount struct {
	ResourceID string `yaml:"resource"`
	Quantity   int    `yaml:"quantity"`
}

// Recipe converts stored inputs into outputs over a base duration
type Recipe struct {
	ID           string
	Name         string
	FactoryTypes []Type
	Inputs       []ResourceAmount
	Outputs      []ResourceAmount
	BaseDuration time.Duration

	// Hooks names one-shot side effects run once when a task for this recipe completes
	Hooks []string

	// Reward is paid to the owner by the "reward" completion hook
	Reward shared.Money
}

// Validate checks the recipe definition
func (r *Recipe) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("recipe id is required")
	}
	if r.BaseDuration <= 0 {
		return fmt.Errorf("recipe %s: base duration must be positive", r.ID)
	}
	if len(r.Outputs) == 0 {
		return fmt.Errorf("recipe %s: at least one output is required", r.ID)
	}
	for _, t := range r.FactoryTypes {
		if !t.IsValid() {
			return fmt.Errorf("recipe %s: invalid factory type %s", r.ID, t)
		}
	}
	for _, in := range append(append([]ResourceAmount{}, r.Inputs...), r.Outputs...) {
		if in.ResourceID == "" || in.Quantity <= 0 {
			return fmt.Errorf("recipe %s: resource amounts need an id and a positive quantity", r.ID)
		}
	}
	if r.Reward.IsNegative() {
		return fmt.Errorf("recipe %s: reward cannot be negative", r.ID)
	}
	return nil
}

// AllowedFor reports whether a factory of type t may run this recipe.
// A recipe with no listed types runs anywhere.
func (r *Recipe) AllowedFor(t Type) bool {
	if len(r.FactoryTypes) == 0 {
		return true
	}
	for _, allowed := range r.FactoryTypes {
		if allowed == t {
			return true
		}
	}
	return false
}

// RecipeCatalog provides read access to the configured recipes
type RecipeCatalog interface {
	Find(id string) (*Recipe, error)
	All() []*Recipe
}
