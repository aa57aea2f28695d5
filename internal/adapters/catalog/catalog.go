// Package catalog loads the recipe definitions factories can run.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/factory-economy/internal/domain/factory"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

type recipeDocument struct {
	ID           string                   `yaml:"id"`
	Name         string                   `yaml:"name"`
	FactoryTypes []string                 `yaml:"factory_types,omitempty"`
	Inputs       []factory.ResourceAmount `yaml:"inputs,omitempty"`
	Outputs      []factory.ResourceAmount `yaml:"outputs"`
	Duration     string                   `yaml:"duration"`
	Hooks        []string                 `yaml:"hooks,omitempty"`
	Reward       string                   `yaml:"reward,omitempty"`
}

type catalogDocument struct {
	Recipes []recipeDocument `yaml:"recipes"`
}

// Catalog is an immutable set of recipes keyed by id
type Catalog struct {
	recipes map[string]*factory.Recipe
}

// New validates recipes and indexes them. Duplicate ids are rejected.
func New(recipes ...*factory.Recipe) (*Catalog, error) {
	c := &Catalog{recipes: make(map[string]*factory.Recipe, len(recipes))}
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.recipes[r.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %s", r.ID)
		}
		c.recipes[r.ID] = r
	}
	return c, nil
}

// LoadFile reads a YAML catalog. An empty path returns the built-in recipes.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recipe catalog: %w", err)
	}

	recipes := make([]*factory.Recipe, 0, len(doc.Recipes))
	for _, d := range doc.Recipes {
		r, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return New(recipes...)
}

func (d recipeDocument) toDomain() (*factory.Recipe, error) {
	duration, err := time.ParseDuration(d.Duration)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: invalid duration %q: %w", d.ID, d.Duration, err)
	}

	types := make([]factory.Type, 0, len(d.FactoryTypes))
	for _, s := range d.FactoryTypes {
		t, err := factory.ParseType(s)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", d.ID, err)
		}
		types = append(types, t)
	}

	reward := shared.Zero
	if d.Reward != "" {
		reward, err = shared.ParseMoney(d.Reward)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: invalid reward: %w", d.ID, err)
		}
	}

	name := d.Name
	if name == "" {
		name = d.ID
	}

	return &factory.Recipe{
		ID:           d.ID,
		Name:         name,
		FactoryTypes: types,
		Inputs:       d.Inputs,
		Outputs:      d.Outputs,
		BaseDuration: duration,
		Hooks:        d.Hooks,
		Reward:       reward,
	}, nil
}

// Find returns the recipe or a RECIPE_NOT_FOUND error
func (c *Catalog) Find(id string) (*factory.Recipe, error) {
	r, ok := c.recipes[id]
	if !ok {
		return nil, factory.NewRecipeNotFoundError(id)
	}
	return r, nil
}

// All returns the recipes ordered by id
func (c *Catalog) All() []*factory.Recipe {
	out := make([]*factory.Recipe, 0, len(c.recipes))
	for _, r := range c.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Default returns a small starter catalog
func Default() *Catalog {
	c, err := New(
		&factory.Recipe{
			ID:           "iron_ingot",
			Name:         "Iron Ingot",
			FactoryTypes: []factory.Type{factory.TypeSmelter},
			Inputs:       []factory.ResourceAmount{{ResourceID: "iron_ore", Quantity: 2}},
			Outputs:      []factory.ResourceAmount{{ResourceID: "iron_ingot", Quantity: 1}},
			BaseDuration: 100 * time.Second,
		},
		&factory.Recipe{
			ID:           "planks",
			Name:         "Planks",
			FactoryTypes: []factory.Type{factory.TypeMill},
			Inputs:       []factory.ResourceAmount{{ResourceID: "log", Quantity: 1}},
			Outputs:      []factory.ResourceAmount{{ResourceID: "plank", Quantity: 4}},
			BaseDuration: 60 * time.Second,
		},
		&factory.Recipe{
			ID:           "fuel",
			Name:         "Fuel",
			FactoryTypes: []factory.Type{factory.TypeRefinery},
			Inputs:       []factory.ResourceAmount{{ResourceID: "crude_oil", Quantity: 3}},
			Outputs:      []factory.ResourceAmount{{ResourceID: "fuel", Quantity: 2}},
			BaseDuration: 5 * time.Minute,
		},
		&factory.Recipe{
			ID:           "tool_kit",
			Name:         "Tool Kit",
			FactoryTypes: []factory.Type{factory.TypeWorkshop, factory.TypeAssembly},
			Inputs: []factory.ResourceAmount{
				{ResourceID: "iron_ingot", Quantity: 2},
				{ResourceID: "plank", Quantity: 1},
			},
			Outputs:      []factory.ResourceAmount{{ResourceID: "tool_kit", Quantity: 1}},
			BaseDuration: 10 * time.Minute,
			Hooks:        []string{"reward"},
			Reward:       shared.NewMoney(25),
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
