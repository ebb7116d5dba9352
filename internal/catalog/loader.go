package catalog

import (
	"encoding/json"
	"os"
	"time"

	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
)

// document is the on-disk catalog format. Recipe durations are authored in
// seconds; everything else maps onto the entity types directly.
type document struct {
	Items      []*entities.ItemDefinition `json:"items"`
	Recipes    []recipeDoc                `json:"recipes"`
	LootTables []*entities.LootTable      `json:"loot_tables"`
	Tasks      []*entities.TaskDefinition `json:"tasks"`
	Floors     []*entities.FloorConfig    `json:"floors"`
}

type recipeDoc struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	ResultItemID      string                 `json:"result_item_id"`
	ResultQuantity    int                    `json:"result_quantity"`
	Requirements      []entities.Requirement `json:"requirements"`
	UnlockedByDefault bool                   `json:"unlocked_by_default"`
	DurationSeconds   float64                `json:"duration_seconds"`
}

// Load parses and validates a catalog document
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse catalog")
	}

	c := &Catalog{
		items:      make(map[string]*entities.ItemDefinition, len(doc.Items)),
		recipes:    make(map[string]*entities.Recipe, len(doc.Recipes)),
		lootTables: make(map[string]*entities.LootTable, len(doc.LootTables)),
		tasks:      make(map[string]*entities.TaskDefinition, len(doc.Tasks)),
		floors:     make(map[int]*entities.FloorConfig, len(doc.Floors)),
	}

	for _, item := range doc.Items {
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if _, ok := c.items[item.ID]; ok {
			return nil, errors.AlreadyExistsf("duplicate item ID %s", item.ID)
		}
		c.items[item.ID] = item
	}

	for _, rd := range doc.Recipes {
		recipe := &entities.Recipe{
			ID:                rd.ID,
			Name:              rd.Name,
			ResultItemID:      rd.ResultItemID,
			ResultQuantity:    rd.ResultQuantity,
			Requirements:      rd.Requirements,
			UnlockedByDefault: rd.UnlockedByDefault,
			Duration:          time.Duration(rd.DurationSeconds * float64(time.Second)),
		}
		if err := c.validateRecipe(recipe); err != nil {
			return nil, err
		}
		if _, ok := c.recipes[recipe.ID]; ok {
			return nil, errors.AlreadyExistsf("duplicate recipe ID %s", recipe.ID)
		}
		c.recipes[recipe.ID] = recipe
	}

	for _, table := range doc.LootTables {
		if err := c.validateLootTable(table); err != nil {
			return nil, err
		}
		if _, ok := c.lootTables[table.ID]; ok {
			return nil, errors.AlreadyExistsf("duplicate loot table ID %s", table.ID)
		}
		c.lootTables[table.ID] = table
	}

	for _, task := range doc.Tasks {
		if err := c.validateTask(task); err != nil {
			return nil, err
		}
		if _, ok := c.tasks[task.ID]; ok {
			return nil, errors.AlreadyExistsf("duplicate task definition ID %s", task.ID)
		}
		c.tasks[task.ID] = task
	}

	for _, floor := range doc.Floors {
		if err := c.validateFloor(floor); err != nil {
			return nil, err
		}
		if _, ok := c.floors[floor.Depth]; ok {
			return nil, errors.AlreadyExistsf("duplicate floor config for depth %d", floor.Depth)
		}
		c.floors[floor.Depth] = floor
	}

	return c, nil
}

// LoadFile reads and parses a catalog file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304 // catalog path is operator-supplied
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog file %s", path)
	}
	return Load(data)
}

func validateItem(item *entities.ItemDefinition) error {
	vb := errors.NewValidationBuilder()
	if item.ID == "" {
		vb.RequiredField("id")
	}
	if !item.Rarity.Valid() {
		vb.InvalidField("rarity", string(item.Rarity))
	}
	if item.Stackable && item.MaxStackSize <= 0 {
		vb.Fieldf("max_stack_size", "stackable item %s must have a positive max stack size", item.ID)
	}
	if item.BaseDropRate < 0 || item.BaseDropRate > 1 {
		vb.Fieldf("base_drop_rate", "must be in [0,1], got %g", item.BaseDropRate)
	}
	return vb.Build()
}

func (c *Catalog) validateRecipe(recipe *entities.Recipe) error {
	vb := errors.NewValidationBuilder()
	if recipe.ID == "" {
		vb.RequiredField("id")
	}
	vb.PositiveField("result_quantity", recipe.ResultQuantity)
	if _, ok := c.items[recipe.ResultItemID]; !ok {
		vb.Fieldf("result_item_id", "recipe %s references unknown item %s", recipe.ID, recipe.ResultItemID)
	}
	if len(recipe.Requirements) == 0 {
		vb.Field("requirements", "recipe must have at least one requirement")
	}
	for _, req := range recipe.Requirements {
		if _, ok := c.items[req.ItemID]; !ok {
			vb.Fieldf("requirements", "recipe %s references unknown item %s", recipe.ID, req.ItemID)
		}
		if req.Quantity <= 0 {
			vb.Fieldf("requirements", "requirement %s must have a positive quantity", req.ItemID)
		}
	}
	if recipe.Duration < 0 {
		vb.Field("duration_seconds", "must not be negative")
	}
	return vb.Build()
}

func (c *Catalog) validateLootTable(table *entities.LootTable) error {
	vb := errors.NewValidationBuilder()
	if table.ID == "" {
		vb.RequiredField("id")
	}
	for _, entry := range table.Entries {
		if _, ok := c.items[entry.ItemID]; !ok {
			vb.Fieldf("entries", "table %s references unknown item %s", table.ID, entry.ItemID)
		}
		if entry.BaseChance < 0 || entry.BaseChance > 1 {
			vb.Fieldf("entries", "entry %s base chance must be in [0,1], got %g", entry.ItemID, entry.BaseChance)
		}
		if entry.MinQuantity <= 0 || entry.MaxQuantity < entry.MinQuantity {
			vb.Fieldf("entries", "entry %s has invalid quantity range [%d,%d]",
				entry.ItemID, entry.MinQuantity, entry.MaxQuantity)
		}
		if !entry.MinRarity.Valid() {
			vb.Fieldf("entries", "entry %s has invalid min rarity %q", entry.ItemID, entry.MinRarity)
		}
	}
	if table.MinDrops < 0 {
		vb.Field("min_drops", "must not be negative")
	}
	if table.MaxDrops < 0 {
		vb.Field("max_drops", "must not be negative")
	}
	if table.MaxDrops > 0 && table.MinDrops > table.MaxDrops {
		vb.Fieldf("min_drops", "exceeds max_drops (%d > %d)", table.MinDrops, table.MaxDrops)
	}
	return vb.Build()
}

func (c *Catalog) validateTask(task *entities.TaskDefinition) error {
	vb := errors.NewValidationBuilder()
	if task.ID == "" {
		vb.RequiredField("id")
	}
	switch task.Type {
	case entities.TaskKill, entities.TaskGather, entities.TaskCraft, entities.TaskReach:
	default:
		vb.InvalidField("type", string(task.Type))
	}
	vb.PositiveField("required_amount", task.RequiredAmount)
	for _, reward := range task.Rewards {
		if _, ok := c.items[reward.ItemID]; !ok {
			vb.Fieldf("rewards", "task %s references unknown item %s", task.ID, reward.ItemID)
		}
		if reward.Quantity <= 0 {
			vb.Fieldf("rewards", "reward %s must have a positive quantity", reward.ItemID)
		}
	}
	return vb.Build()
}

func (c *Catalog) validateFloor(floor *entities.FloorConfig) error {
	vb := errors.NewValidationBuilder()
	vb.PositiveField("depth", floor.Depth)
	if !floor.LootTier.Valid() {
		vb.InvalidField("loot_tier", string(floor.LootTier))
	}
	if floor.DropRateScaling < 0 {
		vb.Field("drop_rate_scaling", "must not be negative")
	}
	if floor.LootTableID != "" {
		if _, ok := c.lootTables[floor.LootTableID]; !ok {
			vb.Fieldf("loot_table_id", "floor %d references unknown loot table %s", floor.Depth, floor.LootTableID)
		}
	}
	for _, taskID := range floor.TaskDefinitionIDs {
		if _, ok := c.tasks[taskID]; !ok {
			vb.Fieldf("task_definition_ids", "floor %d references unknown task %s", floor.Depth, taskID)
		}
	}
	return vb.Build()
}
