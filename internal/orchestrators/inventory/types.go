package inventory

import (
	"github.com/delveforge/delve-engine/internal/entities"
)

// AddItemInput defines the input for adding items to the ledger
type AddItemInput struct {
	ItemID   string
	Quantity int
}

// AddItemOutput defines the output for adding items. Overflow is the
// quantity that did not fit; Added is what the ledger accepted.
type AddItemOutput struct {
	Stack    *entities.ItemStack
	Added    int
	Overflow int
}

// RemoveItemInput defines the input for removing items from the ledger
type RemoveItemInput struct {
	ItemID   string
	Quantity int
}

// RemoveItemOutput defines the output for removing items. Remaining is the
// quantity left after removal, zero when the entry was deleted.
type RemoveItemOutput struct {
	Removed   int
	Remaining int
}

// HasInput defines the input for a stock check
type HasInput struct {
	ItemID   string
	Quantity int
}

// HasOutput defines the output for a stock check
type HasOutput struct {
	Has bool
}

// CountInput defines the input for a quantity query
type CountInput struct {
	ItemID string
}

// CountOutput defines the output for a quantity query
type CountOutput struct {
	Count int
}

// ListInput defines the input for listing the ledger
type ListInput struct{}

// ListOutput defines the output for listing the ledger
type ListOutput struct {
	Stacks []entities.ItemStack
}

// ClearInput defines the input for clearing the ledger
type ClearInput struct{}

// ClearOutput defines the output for clearing the ledger
type ClearOutput struct {
	EntriesRemoved int
}

// SetEquippedInput defines the input for flagging a stack as equipped
type SetEquippedInput struct {
	ItemID   string
	Equipped bool
}

// SetEquippedOutput defines the output for flagging a stack as equipped
type SetEquippedOutput struct {
	Stack *entities.ItemStack
}

// SetSlotIndexInput defines the input for recording a consumable slot index
// on a stack. Index -1 clears the reservation marker.
type SetSlotIndexInput struct {
	ItemID    string
	SlotIndex int
}

// SetSlotIndexOutput defines the output for recording a slot index
type SetSlotIndexOutput struct {
	Stack *entities.ItemStack
}

// SnapshotInput defines the input for exporting ledger contents
type SnapshotInput struct{}

// SnapshotOutput defines the output for exporting ledger contents
type SnapshotOutput struct {
	Stacks []entities.ItemStack
}

// RestoreInput defines the input for seeding the ledger from a snapshot
type RestoreInput struct {
	Stacks []entities.ItemStack
}

// RestoreOutput defines the output for seeding the ledger. SkippedItems
// lists persisted items no longer present in the catalog.
type RestoreOutput struct {
	Restored     int
	SkippedItems []string
}
