// Package entities defines the domain types of the economy engine: items,
// recipes, loot tables, tasks, loadouts, and the progression record.
// Catalog-owned types are immutable after load; runtime state lives in the
// orchestrators that own it.
package entities

// Rarity is the ordinal quality classification of an item. It gates loot
// eligibility against a floor's loot tier.
type Rarity string

// Rarity constants, lowest tier first
const (
	RarityCommon    Rarity = "RARITY_COMMON"
	RarityUncommon  Rarity = "RARITY_UNCOMMON"
	RarityRare      Rarity = "RARITY_RARE"
	RarityEpic      Rarity = "RARITY_EPIC"
	RarityLegendary Rarity = "RARITY_LEGENDARY"
)

var rarityTiers = map[Rarity]int{
	RarityCommon:    0,
	RarityUncommon:  1,
	RarityRare:      2,
	RarityEpic:      3,
	RarityLegendary: 4,
}

// Tier returns the ordinal position of the rarity. Unknown rarities sort
// below common so malformed catalog data never out-gates real entries.
func (r Rarity) Tier() int {
	if tier, ok := rarityTiers[r]; ok {
		return tier
	}
	return -1
}

// Valid reports whether the rarity is one of the known constants
func (r Rarity) Valid() bool {
	_, ok := rarityTiers[r]
	return ok
}

// AtLeast reports whether r meets the given minimum rarity
func (r Rarity) AtLeast(minimum Rarity) bool {
	return r.Tier() >= minimum.Tier()
}

// EquipmentCategory classifies which slot family an item can occupy
type EquipmentCategory string

// Equipment category constants
const (
	CategoryNone      EquipmentCategory = "CATEGORY_NONE"
	CategoryWeapon    EquipmentCategory = "CATEGORY_WEAPON"
	CategoryHead      EquipmentCategory = "CATEGORY_HEAD"
	CategoryChest     EquipmentCategory = "CATEGORY_CHEST"
	CategoryLegs      EquipmentCategory = "CATEGORY_LEGS"
	CategoryAccessory EquipmentCategory = "CATEGORY_ACCESSORY"
)

// ItemDefinition is the immutable catalog definition of an item
type ItemDefinition struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Stackable    bool              `json:"stackable"`
	MaxStackSize int               `json:"max_stack_size"`
	Rarity       Rarity            `json:"rarity"`
	Category     EquipmentCategory `json:"category"`
	BaseDropRate float64           `json:"base_drop_rate"`
}

// GetID returns the item's identifier
func (d *ItemDefinition) GetID() string {
	return d.ID
}

// GetType returns the entity type for toolkit interop
func (d *ItemDefinition) GetType() string {
	return "item"
}

// ItemStack is one ledger entry: an item identity and its owned quantity.
// SlotIndex is the consumable reservation index, -1 when unreserved.
type ItemStack struct {
	ItemID    string `json:"item_id"`
	Quantity  int    `json:"quantity"`
	Equipped  bool   `json:"equipped"`
	SlotIndex int    `json:"slot_index"`
}
