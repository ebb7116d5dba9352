// Package events is the engine's outward notification surface. The engine
// publishes typed events describing every observable state change; the
// presentation layer subscribes here and the engine holds zero references
// to it.
//
// The bus is single-goroutine by contract: the engine and its callers run
// inside one cooperative tick loop, so publishing and subscribing are never
// concurrent.
package events

import (
	"context"
	"time"

	"github.com/delveforge/delve-engine/internal/entities"
)

// Event is implemented by every published event type
type Event interface {
	EventType() string
}

// Event type constants, used as subscription keys
const (
	TypeItemAdded          = "economy.item_added"
	TypeItemRemoved        = "economy.item_removed"
	TypeInventoryCleared   = "economy.inventory_cleared"
	TypeCraftStarted       = "economy.craft_started"
	TypeCraftCompleted     = "economy.craft_completed"
	TypeCraftFailed        = "economy.craft_failed"
	TypeCraftCancelled     = "economy.craft_cancelled"
	TypeRecipeUnlocked     = "economy.recipe_unlocked"
	TypeLootGenerated      = "economy.loot_generated"
	TypeTaskProgressed     = "economy.task_progressed"
	TypeTaskCompleted      = "economy.task_completed"
	TypeItemEquipped       = "economy.item_equipped"
	TypeItemUnequipped     = "economy.item_unequipped"
	TypeConsumableReserved = "economy.consumable_reserved"
	TypeMissionStarted     = "economy.mission_started"
	TypeMissionEnded       = "economy.mission_ended"
)

// ItemAdded is published after a successful ledger add
type ItemAdded struct {
	Stack    entities.ItemStack
	Added    int
	Overflow int
}

// EventType implements Event
func (e ItemAdded) EventType() string { return TypeItemAdded }

// ItemRemoved is published after a successful ledger removal. Remaining is
// zero when the entry was deleted.
type ItemRemoved struct {
	ItemID    string
	Removed   int
	Remaining int
}

// EventType implements Event
func (e ItemRemoved) EventType() string { return TypeItemRemoved }

// InventoryCleared is published when the ledger is emptied wholesale
type InventoryCleared struct{}

// EventType implements Event
func (e InventoryCleared) EventType() string { return TypeInventoryCleared }

// CraftStarted is published when a duration-bearing craft goes pending
type CraftStarted struct {
	RecipeID  string
	StationID string
	Duration  time.Duration
}

// EventType implements Event
func (e CraftStarted) EventType() string { return TypeCraftStarted }

// CraftCompleted is published when a craft consumes its materials and
// produces its result
type CraftCompleted struct {
	RecipeID       string
	StationID      string
	ResultItemID   string
	ResultQuantity int
	Overflow       int
}

// EventType implements Event
func (e CraftCompleted) EventType() string { return TypeCraftCompleted }

// CraftFailed is published when a pending craft cannot complete, typically
// because reserved materials were spent before the timer elapsed
type CraftFailed struct {
	RecipeID  string
	StationID string
	Reason    string
}

// EventType implements Event
func (e CraftFailed) EventType() string { return TypeCraftFailed }

// CraftCancelled is published when a pending craft is cancelled and its
// reservation released
type CraftCancelled struct {
	RecipeID  string
	StationID string
}

// EventType implements Event
func (e CraftCancelled) EventType() string { return TypeCraftCancelled }

// RecipeUnlocked is published on the first unlock of a recipe
type RecipeUnlocked struct {
	RecipeID string
}

// EventType implements Event
func (e RecipeUnlocked) EventType() string { return TypeRecipeUnlocked }

// Drop is one generated loot result
type Drop struct {
	ItemID   string
	Quantity int
}

// LootGenerated is published after a loot roll
type LootGenerated struct {
	TableID    string
	FloorDepth int
	Drops      []Drop
}

// EventType implements Event
func (e LootGenerated) EventType() string { return TypeLootGenerated }

// TaskProgressed is published when an active task's progress advances
type TaskProgressed struct {
	TaskID   string
	Progress int
	Required int
}

// EventType implements Event
func (e TaskProgressed) EventType() string { return TypeTaskProgressed }

// TaskCompleted is published exactly once per task, when progress crosses
// the required amount
type TaskCompleted struct {
	TaskID  string
	Rewards []entities.Reward
}

// EventType implements Event
func (e TaskCompleted) EventType() string { return TypeTaskCompleted }

// ItemEquipped is published when a ledger item is mapped into a slot
type ItemEquipped struct {
	ItemID string
	Slot   entities.EquipmentSlot
}

// EventType implements Event
func (e ItemEquipped) EventType() string { return TypeItemEquipped }

// ItemUnequipped is published when a slot mapping is cleared
type ItemUnequipped struct {
	ItemID string
	Slot   entities.EquipmentSlot
}

// EventType implements Event
func (e ItemUnequipped) EventType() string { return TypeItemUnequipped }

// ConsumableReserved is published when a consumable slot reservation is made
type ConsumableReserved struct {
	ItemID    string
	Quantity  int
	SlotIndex int
}

// EventType implements Event
func (e ConsumableReserved) EventType() string { return TypeConsumableReserved }

// MissionStarted is published when the driver begins a mission
type MissionStarted struct {
	MissionID  string
	FloorDepth int
}

// EventType implements Event
func (e MissionStarted) EventType() string { return TypeMissionStarted }

// MissionEnded is published when the driver reports a terminal outcome
type MissionEnded struct {
	MissionID string
	Success   bool
}

// EventType implements Event
func (e MissionEnded) EventType() string { return TypeMissionEnded }

// HandlerFunc receives published events for one subscribed type
type HandlerFunc func(ctx context.Context, event Event) error
