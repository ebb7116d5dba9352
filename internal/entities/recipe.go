package entities

import "time"

// Requirement is one (item, quantity) input of a recipe
type Requirement struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Recipe is a crafting rule mapping required items to a result item.
// A zero Duration crafts instantly; a non-zero Duration produces a pending
// craft advanced by the tick loop.
type Recipe struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	ResultItemID      string        `json:"result_item_id"`
	ResultQuantity    int           `json:"result_quantity"`
	Requirements      []Requirement `json:"requirements"`
	UnlockedByDefault bool          `json:"unlocked_by_default"`
	Duration          time.Duration `json:"duration"`
}

// GetID returns the recipe's identifier
func (r *Recipe) GetID() string {
	return r.ID
}

// GetType returns the entity type for toolkit interop
func (r *Recipe) GetType() string {
	return "recipe"
}
