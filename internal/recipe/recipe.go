// Package recipe defines the recipe catalog and the search filter over it.
package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("recipe not found")
	ErrDuplicateID   = errors.New("duplicate recipe id")
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// Recipe is a single catalog entry.
type Recipe struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
	Time        string   `json:"time" yaml:"time"`
	Serves      int      `json:"serves" yaml:"serves"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
	Steps       []string `json:"steps" yaml:"steps"`
}

// Fragment returns the location fragment that opens this recipe.
func (r Recipe) Fragment() string {
	return "#/recipe/" + r.ID
}

func (r Recipe) clone() Recipe {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Steps = append([]string(nil), r.Steps...)
	return r
}

// Catalog is an ordered, read-only set of recipes. It is built once at
// startup and never mutated afterwards.
type Catalog struct {
	recipes []Recipe
	byID    map[string]int
}

// NewCatalog validates recipes and builds a catalog preserving their order.
func NewCatalog(recipes []Recipe) (*Catalog, error) {
	c := &Catalog{
		recipes: make([]Recipe, 0, len(recipes)),
		byID:    make(map[string]int, len(recipes)),
	}
	for i, r := range recipes {
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrInvalidRecipe, i)
		}
		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("%w: recipe %q has no title", ErrInvalidRecipe, r.ID)
		}
		if r.Serves < 0 {
			return nil, fmt.Errorf("%w: recipe %q serves %d", ErrInvalidRecipe, r.ID, r.Serves)
		}
		if _, exists := c.byID[r.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, r.ID)
		}
		c.byID[r.ID] = len(c.recipes)
		c.recipes = append(c.recipes, r.clone())
	}
	return c, nil
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}

// All returns a copy of the recipes in catalog order.
func (c *Catalog) All() []Recipe {
	if c == nil {
		return nil
	}
	out := make([]Recipe, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.clone()
	}
	return out
}

// Get returns the recipe with the given id.
func (c *Catalog) Get(id string) (Recipe, bool) {
	if c == nil {
		return Recipe{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[idx].clone(), true
}

// Lookup is Get with an error for callers that propagate failures.
func (c *Catalog) Lookup(id string) (Recipe, error) {
	r, ok := c.Get(id)
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return r, nil
}
