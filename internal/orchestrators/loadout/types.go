package loadout

import (
	"github.com/delveforge/delve-engine/internal/entities"
)

// EquipInput defines the input for placing an owned item in a slot
type EquipInput struct {
	ItemID string
	Slot   entities.EquipmentSlot
}

// EquipOutput defines the output for equipping. Replaced names the item
// the slot previously held, empty when the slot was free.
type EquipOutput struct {
	Replaced string
}

// UnequipInput defines the input for clearing a slot
type UnequipInput struct {
	Slot entities.EquipmentSlot
}

// UnequipOutput defines the output for clearing a slot. Removed is empty
// when the slot was already free.
type UnequipOutput struct {
	Removed string
}

// AddConsumableInput defines the input for reserving ledger stock in a
// consumable slot
type AddConsumableInput struct {
	ItemID   string
	Quantity int
}

// AddConsumableOutput defines the output for a consumable reservation
type AddConsumableOutput struct {
	SlotIndex int
}

// RemoveConsumableInput defines the input for releasing a consumable slot
type RemoveConsumableInput struct {
	SlotIndex int
}

// RemoveConsumableOutput defines the output for releasing a consumable slot
type RemoveConsumableOutput struct {
	Removed entities.ConsumableSlot
}

// GetInput defines the input for reading the loadout
type GetInput struct{}

// GetOutput defines the output for reading the loadout. Loadout is a copy;
// mutating it does not affect the manager.
type GetOutput struct {
	Loadout *entities.Loadout
}

// ClearInput defines the input for resetting the loadout
type ClearInput struct{}

// ClearOutput defines the output for resetting the loadout
type ClearOutput struct {
	SlotsCleared int
}

// RestoreInput defines the input for seeding the loadout from a snapshot
type RestoreInput struct {
	Loadout *entities.Loadout
}

// RestoreOutput defines the output for seeding the loadout. SkippedItems
// lists references the ledger could no longer satisfy.
type RestoreOutput struct {
	SkippedItems []string
}
