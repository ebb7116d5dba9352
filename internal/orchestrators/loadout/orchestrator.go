// Package loadout implements the loadout manager: the equipment mapping
// and consumable reservations layered over the inventory ledger.
//
// A loadout never owns quantity. Equipment slots and consumable slots hold
// references into the ledger, and the manager keeps those references
// consistent when ledger stock disappears. Equipping does not reserve a
// stack against removal; removing the last copy of a referenced item
// clears the reference instead.
package loadout

import (
	"context"
	"log/slog"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/inventory"
)

// DefaultMaxConsumableSlots is used when the config does not set a limit
const DefaultMaxConsumableSlots = 4

// Service defines the interface for loadout operations
type Service interface {
	// Equip places an owned item in an equipment slot. Returns
	// errors.NotFound unless the ledger owns at least one, and
	// errors.CapacityExceeded when the item's category does not fit the
	// slot. Replacing an occupied slot unequips the previous item first.
	Equip(ctx context.Context, input *EquipInput) (*EquipOutput, error)

	// Unequip clears a slot. Idempotent on an empty slot.
	Unequip(ctx context.Context, input *UnequipInput) (*UnequipOutput, error)

	// AddConsumable reserves ledger stock in the next consumable slot.
	// Returns errors.CapacityExceeded when all slots are taken and
	// errors.InsufficientResource when the ledger cannot satisfy the
	// total reserved for the item.
	AddConsumable(ctx context.Context, input *AddConsumableInput) (*AddConsumableOutput, error)

	// RemoveConsumable releases a consumable slot and reindexes the rest
	RemoveConsumable(ctx context.Context, input *RemoveConsumableInput) (*RemoveConsumableOutput, error)

	// Get returns a copy of the current loadout
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Clear empties every equipment and consumable slot
	Clear(ctx context.Context, input *ClearInput) (*ClearOutput, error)

	// Restore seeds the loadout from a snapshot, skipping references the
	// ledger can no longer satisfy
	Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error)
}

// Config holds the dependencies for the loadout orchestrator
type Config struct {
	Catalog  *catalog.Catalog
	Ledger   inventory.Service
	EventBus events.EventBus

	// MaxConsumableSlots defaults to DefaultMaxConsumableSlots when zero
	MaxConsumableSlots int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.Ledger == nil {
		vb.RequiredField("Ledger")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.MaxConsumableSlots < 0 {
		vb.Field("MaxConsumableSlots", "must not be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	catalog  *catalog.Catalog
	ledger   inventory.Service
	eventBus events.EventBus
	maxSlots int

	loadout *entities.Loadout
}

// NewOrchestrator creates a new loadout orchestrator with the provided
// dependencies. It subscribes to ledger removal events to drop references
// to items whose stock reaches zero.
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	maxSlots := cfg.MaxConsumableSlots
	if maxSlots == 0 {
		maxSlots = DefaultMaxConsumableSlots
	}

	o := &orchestrator{
		catalog:  cfg.Catalog,
		ledger:   cfg.Ledger,
		eventBus: cfg.EventBus,
		maxSlots: maxSlots,
		loadout:  entities.NewLoadout(),
	}

	cfg.EventBus.SubscribeFunc(events.TypeItemRemoved, o.onItemRemoved)

	return o, nil
}

// onItemRemoved clears references to an item whose ledger entry was
// exhausted
func (o *orchestrator) onItemRemoved(ctx context.Context, e events.Event) error {
	removed, ok := e.(events.ItemRemoved)
	if !ok || removed.Remaining > 0 {
		return nil
	}

	for slot, itemID := range o.loadout.Equipment {
		if itemID == removed.ItemID {
			delete(o.loadout.Equipment, slot)
			slog.Info("cleared equipment slot for exhausted item",
				"slot", string(slot),
				"item_id", itemID)
		}
	}

	kept := o.loadout.Consumables[:0]
	for _, slot := range o.loadout.Consumables {
		if slot.ItemID != removed.ItemID {
			kept = append(kept, slot)
		}
	}
	if len(kept) < len(o.loadout.Consumables) {
		o.loadout.Consumables = kept
		if err := o.reindexConsumables(ctx, 0); err != nil {
			return err
		}
		slog.Info("cleared consumable slots for exhausted item",
			"item_id", removed.ItemID)
	}

	return nil
}

// reindexConsumables re-stamps ledger slot indexes for consumable slots at
// position from and later, so compaction never leaves a stale index behind.
func (o *orchestrator) reindexConsumables(ctx context.Context, from int) error {
	for i := from; i < len(o.loadout.Consumables); i++ {
		if _, err := o.ledger.SetSlotIndex(ctx, &inventory.SetSlotIndexInput{
			ItemID:    o.loadout.Consumables[i].ItemID,
			SlotIndex: i,
		}); err != nil && !errors.IsNotFound(err) {
			return err
		}
	}
	return nil
}

func (o *orchestrator) Equip(ctx context.Context, input *EquipInput) (*EquipOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.ItemID == "" {
		vb.RequiredField("ItemID")
	}
	if !input.Slot.Valid() {
		vb.InvalidField("Slot", string(input.Slot))
	}
	if err := vb.Build(); err != nil {
		return nil, err
	}

	def, err := o.catalog.Item(input.ItemID)
	if err != nil {
		return nil, err
	}

	count, err := o.ledger.Count(ctx, &inventory.CountInput{ItemID: input.ItemID})
	if err != nil {
		return nil, err
	}
	if count.Count < 1 {
		return nil, errors.NotFoundf("item %s is not in the inventory", input.ItemID)
	}

	if !input.Slot.Accepts(def.Category) {
		return nil, errors.CapacityExceededf("item %s (%s) does not fit slot %s",
			input.ItemID, def.Category, input.Slot)
	}

	output := &EquipOutput{}
	if previous, ok := o.loadout.Equipment[input.Slot]; ok {
		if previous == input.ItemID {
			return output, nil
		}
		if _, err := o.unequipSlot(ctx, input.Slot); err != nil {
			return nil, err
		}
		output.Replaced = previous
	}

	o.loadout.Equipment[input.Slot] = input.ItemID
	if _, err := o.ledger.SetEquipped(ctx, &inventory.SetEquippedInput{
		ItemID:   input.ItemID,
		Equipped: true,
	}); err != nil {
		return nil, err
	}

	if err := o.eventBus.Publish(ctx, events.ItemEquipped{
		ItemID: input.ItemID,
		Slot:   input.Slot,
	}); err != nil {
		slog.Warn("failed to publish item equipped event", "error", err)
	}

	slog.Info("item equipped",
		"item_id", input.ItemID,
		"slot", string(input.Slot))

	return output, nil
}

func (o *orchestrator) Unequip(ctx context.Context, input *UnequipInput) (*UnequipOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.Slot.Valid() {
		return nil, errors.InvalidArgumentf("invalid slot %q", input.Slot)
	}

	removed, err := o.unequipSlot(ctx, input.Slot)
	if err != nil {
		return nil, err
	}
	return &UnequipOutput{Removed: removed}, nil
}

// unequipSlot clears one slot and drops the stack's equipped flag unless
// the same item occupies another slot
func (o *orchestrator) unequipSlot(ctx context.Context, slot entities.EquipmentSlot) (string, error) {
	itemID, ok := o.loadout.Equipment[slot]
	if !ok {
		return "", nil
	}
	delete(o.loadout.Equipment, slot)

	if !o.equippedElsewhere(itemID) {
		if _, err := o.ledger.SetEquipped(ctx, &inventory.SetEquippedInput{
			ItemID:   itemID,
			Equipped: false,
		}); err != nil && !errors.IsNotFound(err) {
			return "", err
		}
	}

	if err := o.eventBus.Publish(ctx, events.ItemUnequipped{
		ItemID: itemID,
		Slot:   slot,
	}); err != nil {
		slog.Warn("failed to publish item unequipped event", "error", err)
	}

	return itemID, nil
}

func (o *orchestrator) equippedElsewhere(itemID string) bool {
	for _, other := range o.loadout.Equipment {
		if other == itemID {
			return true
		}
	}
	return false
}

func (o *orchestrator) AddConsumable(ctx context.Context, input *AddConsumableInput) (*AddConsumableOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	if input.ItemID == "" {
		vb.RequiredField("ItemID")
	}
	vb.PositiveField("Quantity", input.Quantity)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	if _, err := o.catalog.Item(input.ItemID); err != nil {
		return nil, err
	}

	if len(o.loadout.Consumables) >= o.maxSlots {
		return nil, errors.CapacityExceededf("all %d consumable slots are taken", o.maxSlots)
	}

	// The reference must be satisfiable: total reserved across slots,
	// including this one, cannot exceed owned stock
	reserved := input.Quantity
	for _, slot := range o.loadout.Consumables {
		if slot.ItemID == input.ItemID {
			reserved += slot.Quantity
		}
	}
	count, err := o.ledger.Count(ctx, &inventory.CountInput{ItemID: input.ItemID})
	if err != nil {
		return nil, err
	}
	if count.Count < reserved {
		return nil, errors.InsufficientResourcef("cannot reserve %d of %s, only %d owned",
			reserved, input.ItemID, count.Count).
			WithMeta("item_id", input.ItemID).
			WithMeta("requested", reserved).
			WithMeta("available", count.Count)
	}

	index := len(o.loadout.Consumables)
	o.loadout.Consumables = append(o.loadout.Consumables, entities.ConsumableSlot{
		ItemID:   input.ItemID,
		Quantity: input.Quantity,
	})

	if _, err := o.ledger.SetSlotIndex(ctx, &inventory.SetSlotIndexInput{
		ItemID:    input.ItemID,
		SlotIndex: index,
	}); err != nil {
		return nil, err
	}

	if err := o.eventBus.Publish(ctx, events.ConsumableReserved{
		ItemID:    input.ItemID,
		Quantity:  input.Quantity,
		SlotIndex: index,
	}); err != nil {
		slog.Warn("failed to publish consumable reserved event", "error", err)
	}

	return &AddConsumableOutput{SlotIndex: index}, nil
}

func (o *orchestrator) RemoveConsumable(ctx context.Context, input *RemoveConsumableInput) (*RemoveConsumableOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.SlotIndex < 0 || input.SlotIndex >= len(o.loadout.Consumables) {
		return nil, errors.InvalidArgumentf("slot index %d out of range [0,%d)",
			input.SlotIndex, len(o.loadout.Consumables))
	}

	removed := o.loadout.Consumables[input.SlotIndex]
	o.loadout.Consumables = append(
		o.loadout.Consumables[:input.SlotIndex],
		o.loadout.Consumables[input.SlotIndex+1:]...)

	if !o.reservedElsewhere(removed.ItemID) {
		if _, err := o.ledger.SetSlotIndex(ctx, &inventory.SetSlotIndexInput{
			ItemID:    removed.ItemID,
			SlotIndex: -1,
		}); err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
	}

	// Slots after the removed one shifted down
	if err := o.reindexConsumables(ctx, input.SlotIndex); err != nil {
		return nil, err
	}

	return &RemoveConsumableOutput{Removed: removed}, nil
}

func (o *orchestrator) reservedElsewhere(itemID string) bool {
	for _, slot := range o.loadout.Consumables {
		if slot.ItemID == itemID {
			return true
		}
	}
	return false
}

func (o *orchestrator) Get(ctx context.Context, input *GetInput) (*GetOutput, error) {
	return &GetOutput{Loadout: o.loadout.Clone()}, nil
}

func (o *orchestrator) Clear(ctx context.Context, input *ClearInput) (*ClearOutput, error) {
	cleared := len(o.loadout.Equipment) + len(o.loadout.Consumables)

	for _, slot := range entities.EquipmentSlots {
		if _, err := o.unequipSlot(ctx, slot); err != nil {
			return nil, err
		}
	}
	for _, slot := range o.loadout.Consumables {
		if _, err := o.ledger.SetSlotIndex(ctx, &inventory.SetSlotIndexInput{
			ItemID:    slot.ItemID,
			SlotIndex: -1,
		}); err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
	}
	o.loadout = entities.NewLoadout()

	return &ClearOutput{SlotsCleared: cleared}, nil
}

func (o *orchestrator) Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error) {
	if input == nil || input.Loadout == nil {
		return nil, errors.InvalidArgument("input loadout is required")
	}

	output := &RestoreOutput{}
	o.loadout = entities.NewLoadout()

	for _, slot := range entities.EquipmentSlots {
		itemID, ok := input.Loadout.Equipment[slot]
		if !ok {
			continue
		}
		if _, err := o.Equip(ctx, &EquipInput{ItemID: itemID, Slot: slot}); err != nil {
			slog.Warn("skipping unsatisfiable equipment reference",
				"slot", string(slot),
				"item_id", itemID,
				"error", err)
			output.SkippedItems = append(output.SkippedItems, itemID)
		}
	}

	for _, slot := range input.Loadout.Consumables {
		if _, err := o.AddConsumable(ctx, &AddConsumableInput{
			ItemID:   slot.ItemID,
			Quantity: slot.Quantity,
		}); err != nil {
			slog.Warn("skipping unsatisfiable consumable reference",
				"item_id", slot.ItemID,
				"quantity", slot.Quantity,
				"error", err)
			output.SkippedItems = append(output.SkippedItems, slot.ItemID)
		}
	}

	return output, nil
}
