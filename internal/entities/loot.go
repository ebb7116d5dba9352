package entities

// LootEntry is one candidate drop in a loot table
type LootEntry struct {
	ItemID      string  `json:"item_id"`
	BaseChance  float64 `json:"base_chance"`
	MinQuantity int     `json:"min_quantity"`
	MaxQuantity int     `json:"max_quantity"`
	MinRarity   Rarity  `json:"min_rarity"`
	Guaranteed  bool    `json:"guaranteed"`
}

// LootTable is a named collection of loot entries with table-level drop
// count bounds. MaxDrops of zero means unbounded.
type LootTable struct {
	ID       string      `json:"id"`
	Entries  []LootEntry `json:"entries"`
	MinDrops int         `json:"min_drops"`
	MaxDrops int         `json:"max_drops"`
}

// GetID returns the table's identifier
func (t *LootTable) GetID() string {
	return t.ID
}

// GetType returns the entity type for toolkit interop
func (t *LootTable) GetType() string {
	return "loot_table"
}

// FloorConfig is the per-depth mission configuration supplied by the
// mission driver: which loot table and tasks apply, how loot chance scales,
// and which rarities the floor's loot tier admits.
type FloorConfig struct {
	Depth             int      `json:"depth"`
	LootTier          Rarity   `json:"loot_tier"`
	DropRateScaling   float64  `json:"drop_rate_scaling"`
	LootTableID       string   `json:"loot_table_id"`
	TaskDefinitionIDs []string `json:"task_definition_ids"`
}
