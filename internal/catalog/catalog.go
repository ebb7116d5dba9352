// Package catalog holds the immutable reference data the engine consumes:
// item definitions, recipes, loot tables, task definitions, and floor
// configs. The catalog is populated once before gameplay and never mutated
// at runtime; every orchestrator resolves identifiers through it.
package catalog

import (
	"sort"

	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
)

// Catalog is the read-only lookup over all definition data
type Catalog struct {
	items      map[string]*entities.ItemDefinition
	recipes    map[string]*entities.Recipe
	lootTables map[string]*entities.LootTable
	tasks      map[string]*entities.TaskDefinition
	floors     map[int]*entities.FloorConfig
}

// Item returns the item definition for the given ID
func (c *Catalog) Item(id string) (*entities.ItemDefinition, error) {
	if id == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}
	item, ok := c.items[id]
	if !ok {
		return nil, errors.NotFoundf("item %s not found in catalog", id)
	}
	return item, nil
}

// Recipe returns the recipe for the given ID
func (c *Catalog) Recipe(id string) (*entities.Recipe, error) {
	if id == "" {
		return nil, errors.InvalidArgument("recipe ID cannot be empty")
	}
	recipe, ok := c.recipes[id]
	if !ok {
		return nil, errors.NotFoundf("recipe %s not found in catalog", id)
	}
	return recipe, nil
}

// LootTable returns the loot table for the given ID
func (c *Catalog) LootTable(id string) (*entities.LootTable, error) {
	if id == "" {
		return nil, errors.InvalidArgument("loot table ID cannot be empty")
	}
	table, ok := c.lootTables[id]
	if !ok {
		return nil, errors.NotFoundf("loot table %s not found in catalog", id)
	}
	return table, nil
}

// TaskDefinition returns the task definition for the given ID
func (c *Catalog) TaskDefinition(id string) (*entities.TaskDefinition, error) {
	if id == "" {
		return nil, errors.InvalidArgument("task definition ID cannot be empty")
	}
	task, ok := c.tasks[id]
	if !ok {
		return nil, errors.NotFoundf("task definition %s not found in catalog", id)
	}
	return task, nil
}

// Floor returns the floor config for the given depth
func (c *Catalog) Floor(depth int) (*entities.FloorConfig, error) {
	floor, ok := c.floors[depth]
	if !ok {
		return nil, errors.NotFoundf("no floor configured for depth %d", depth)
	}
	return floor, nil
}

// Items returns every item definition in stable ID order
func (c *Catalog) Items() []*entities.ItemDefinition {
	out := make([]*entities.ItemDefinition, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Recipes returns every recipe in stable ID order
func (c *Catalog) Recipes() []*entities.Recipe {
	out := make([]*entities.Recipe, 0, len(c.recipes))
	for _, recipe := range c.recipes {
		out = append(out, recipe)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
