package crafting

import (
	"time"

	"github.com/delveforge/delve-engine/internal/entities"
)

// MissingRequirement reports one requirement the ledger cannot cover
type MissingRequirement struct {
	ItemID   string
	Required int
	Have     int
}

// CanCraftInput defines the input for a craftability check
type CanCraftInput struct {
	RecipeID string
}

// CanCraftOutput defines the output for a craftability check. Missing is
// populated when materials are short; Locked is true when the recipe has
// not been unlocked.
type CanCraftOutput struct {
	Craftable bool
	Locked    bool
	Missing   []MissingRequirement
}

// CraftInput defines the input for executing a recipe. An empty StationID
// addresses the default crafting station.
type CraftInput struct {
	RecipeID  string
	StationID string
}

// CraftOutput defines the output for executing a recipe. Completed is true
// for instant recipes; Pending describes a duration-bearing craft that has
// been started.
type CraftOutput struct {
	Completed      bool
	ResultItemID   string
	ResultQuantity int
	Overflow       int
	Pending        *PendingCraft
}

// PendingCraft is a duration-bearing craft in flight: reserved materials
// plus remaining time, advanced by the tick loop. Reservation is a soft
// lock; the materials stay in the ledger until the craft completes.
type PendingCraft struct {
	ID        string
	RecipeID  string
	StationID string
	Remaining time.Duration
	Reserved  []entities.Requirement
	StartedAt time.Time
}

// CancelInput defines the input for cancelling a pending craft
type CancelInput struct {
	StationID string
}

// CancelOutput defines the output for cancelling a pending craft
type CancelOutput struct {
	RecipeID string
}

// TickInput defines the input for advancing pending crafts
type TickInput struct {
	Delta time.Duration
}

// TickOutput defines the output for advancing pending crafts
type TickOutput struct {
	Completed []string
	Failed    []string
}

// PendingInput defines the input for listing pending crafts
type PendingInput struct{}

// PendingOutput defines the output for listing pending crafts
type PendingOutput struct {
	Crafts []PendingCraft
}

// UnlockRecipeInput defines the input for unlocking a recipe
type UnlockRecipeInput struct {
	RecipeID string
}

// UnlockRecipeOutput defines the output for unlocking a recipe.
// NewlyUnlocked is false when the recipe was already unlocked.
type UnlockRecipeOutput struct {
	NewlyUnlocked bool
}
