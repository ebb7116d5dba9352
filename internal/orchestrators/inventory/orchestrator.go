// Package inventory implements the inventory ledger: the single source of
// truth for every item quantity the player owns. One stack per item
// identity; an entry present in the ledger always has quantity > 0.
package inventory

//go:generate mockgen -destination=mock/mock_service.go -package=inventorymock github.com/delveforge/delve-engine/internal/orchestrators/inventory Service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
)

// Service defines the interface for ledger operations
type Service interface {
	// AddItem adds quantity to the item's stack, creating it if absent.
	// Overflow past the stack cap is reported, not rejected.
	// Returns errors.CapacityExceeded for a second non-stackable instance.
	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)

	// RemoveItem removes quantity from the item's stack, deleting the
	// entry at zero. Returns errors.InsufficientResource when stock is
	// short; the ledger is untouched on failure.
	RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error)

	// Has reports whether the ledger owns at least the given quantity
	Has(ctx context.Context, input *HasInput) (*HasOutput, error)

	// Count returns the owned quantity of the item, zero when absent
	Count(ctx context.Context, input *CountInput) (*CountOutput, error)

	// List returns every stack in stable item-ID order
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Clear empties the ledger
	Clear(ctx context.Context, input *ClearInput) (*ClearOutput, error)

	// SetEquipped flags a stack as equipped without changing quantity
	SetEquipped(ctx context.Context, input *SetEquippedInput) (*SetEquippedOutput, error)

	// SetSlotIndex records a consumable reservation index on a stack
	SetSlotIndex(ctx context.Context, input *SetSlotIndexInput) (*SetSlotIndexOutput, error)

	// Snapshot exports ledger contents for the persistence collaborator
	Snapshot(ctx context.Context, input *SnapshotInput) (*SnapshotOutput, error)

	// Restore seeds the ledger from persisted stacks, skipping items no
	// longer present in the catalog
	Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error)
}

// Config holds the dependencies for the inventory orchestrator
type Config struct {
	Catalog  *catalog.Catalog
	EventBus events.EventBus
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}

	return vb.Build()
}

type orchestrator struct {
	catalog  *catalog.Catalog
	eventBus events.EventBus
	stacks   map[string]*entities.ItemStack
}

// NewOrchestrator creates a new inventory orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		catalog:  cfg.Catalog,
		eventBus: cfg.EventBus,
		stacks:   make(map[string]*entities.ItemStack),
	}, nil
}

// stackCap returns the effective cap of a stack. Non-stackable items hold
// one logical instance per entry.
func stackCap(def *entities.ItemDefinition) int {
	if !def.Stackable {
		return 1
	}
	return def.MaxStackSize
}

// copyStack detaches a ledger entry from internal state before it is
// handed to a caller. Quantity truth only changes through AddItem and
// RemoveItem.
func copyStack(stack *entities.ItemStack) *entities.ItemStack {
	if stack == nil {
		return nil
	}
	out := *stack
	return &out
}

func (o *orchestrator) AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if input.Quantity <= 0 {
		return nil, errors.InvalidArgumentf("quantity must be positive, got %d", input.Quantity)
	}

	def, err := o.catalog.Item(input.ItemID)
	if err != nil {
		return nil, err
	}

	stack, exists := o.stacks[input.ItemID]
	if exists && !def.Stackable {
		return nil, errors.CapacityExceededf("non-stackable item %s already owned", input.ItemID).
			WithMeta("item_id", input.ItemID)
	}

	if !exists {
		stack = &entities.ItemStack{ItemID: input.ItemID, SlotIndex: -1}
		o.stacks[input.ItemID] = stack
	}

	space := stackCap(def) - stack.Quantity
	added := input.Quantity
	if added > space {
		added = space
	}
	overflow := input.Quantity - added

	if added > 0 {
		stack.Quantity += added

		if err := o.eventBus.Publish(ctx, events.ItemAdded{
			Stack:    *stack,
			Added:    added,
			Overflow: overflow,
		}); err != nil {
			slog.Warn("failed to publish item added event", "item_id", input.ItemID, "error", err)
		}
	} else if !exists {
		// A fresh entry that accepted nothing should not linger at zero
		delete(o.stacks, input.ItemID)
	}

	if overflow > 0 {
		slog.Info("ledger add overflowed stack cap",
			"item_id", input.ItemID,
			"added", added,
			"overflow", overflow,
		)
	}

	return &AddItemOutput{
		Stack:    copyStack(o.stacks[input.ItemID]),
		Added:    added,
		Overflow: overflow,
	}, nil
}

func (o *orchestrator) RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error) {
	if input.Quantity <= 0 {
		return nil, errors.InvalidArgumentf("quantity must be positive, got %d", input.Quantity)
	}

	stack, exists := o.stacks[input.ItemID]
	if !exists || stack.Quantity < input.Quantity {
		have := 0
		if exists {
			have = stack.Quantity
		}
		return nil, errors.InsufficientResourcef("need %d of %s, have %d", input.Quantity, input.ItemID, have).
			WithMeta("item_id", input.ItemID).
			WithMeta("requested", input.Quantity).
			WithMeta("available", have)
	}

	stack.Quantity -= input.Quantity
	remaining := stack.Quantity
	if remaining == 0 {
		delete(o.stacks, input.ItemID)
	}

	if err := o.eventBus.Publish(ctx, events.ItemRemoved{
		ItemID:    input.ItemID,
		Removed:   input.Quantity,
		Remaining: remaining,
	}); err != nil {
		slog.Warn("failed to publish item removed event", "item_id", input.ItemID, "error", err)
	}

	return &RemoveItemOutput{
		Removed:   input.Quantity,
		Remaining: remaining,
	}, nil
}

func (o *orchestrator) Has(_ context.Context, input *HasInput) (*HasOutput, error) {
	if input.Quantity <= 0 {
		return nil, errors.InvalidArgumentf("quantity must be positive, got %d", input.Quantity)
	}

	stack, exists := o.stacks[input.ItemID]
	return &HasOutput{Has: exists && stack.Quantity >= input.Quantity}, nil
}

func (o *orchestrator) Count(_ context.Context, input *CountInput) (*CountOutput, error) {
	if input.ItemID == "" {
		return nil, errors.InvalidArgument("item ID cannot be empty")
	}

	stack, exists := o.stacks[input.ItemID]
	if !exists {
		return &CountOutput{Count: 0}, nil
	}
	return &CountOutput{Count: stack.Quantity}, nil
}

func (o *orchestrator) List(_ context.Context, _ *ListInput) (*ListOutput, error) {
	return &ListOutput{Stacks: o.snapshotStacks()}, nil
}

func (o *orchestrator) Clear(ctx context.Context, _ *ClearInput) (*ClearOutput, error) {
	removed := len(o.stacks)
	o.stacks = make(map[string]*entities.ItemStack)

	if err := o.eventBus.Publish(ctx, events.InventoryCleared{}); err != nil {
		slog.Warn("failed to publish inventory cleared event", "error", err)
	}

	return &ClearOutput{EntriesRemoved: removed}, nil
}

func (o *orchestrator) SetEquipped(_ context.Context, input *SetEquippedInput) (*SetEquippedOutput, error) {
	stack, exists := o.stacks[input.ItemID]
	if !exists {
		return nil, errors.NotFoundf("item %s not in ledger", input.ItemID)
	}

	stack.Equipped = input.Equipped
	return &SetEquippedOutput{Stack: copyStack(stack)}, nil
}

func (o *orchestrator) SetSlotIndex(_ context.Context, input *SetSlotIndexInput) (*SetSlotIndexOutput, error) {
	stack, exists := o.stacks[input.ItemID]
	if !exists {
		return nil, errors.NotFoundf("item %s not in ledger", input.ItemID)
	}
	if input.SlotIndex < -1 {
		return nil, errors.InvalidArgumentf("slot index must be >= -1, got %d", input.SlotIndex)
	}

	stack.SlotIndex = input.SlotIndex
	return &SetSlotIndexOutput{Stack: copyStack(stack)}, nil
}

func (o *orchestrator) Snapshot(_ context.Context, _ *SnapshotInput) (*SnapshotOutput, error) {
	return &SnapshotOutput{Stacks: o.snapshotStacks()}, nil
}

func (o *orchestrator) Restore(_ context.Context, input *RestoreInput) (*RestoreOutput, error) {
	restored := make(map[string]*entities.ItemStack, len(input.Stacks))
	var skipped []string

	for _, persisted := range input.Stacks {
		if persisted.Quantity <= 0 {
			continue
		}

		def, err := o.catalog.Item(persisted.ItemID)
		if err != nil {
			// Persisted item no longer in the catalog: drop it, keep loading
			skipped = append(skipped, persisted.ItemID)
			slog.Warn("skipping persisted item missing from catalog", "item_id", persisted.ItemID)
			continue
		}

		stack := persisted
		if limit := stackCap(def); stack.Quantity > limit {
			stack.Quantity = limit
		}
		restored[stack.ItemID] = &stack
	}

	o.stacks = restored

	return &RestoreOutput{
		Restored:     len(restored),
		SkippedItems: skipped,
	}, nil
}

func (o *orchestrator) snapshotStacks() []entities.ItemStack {
	out := make([]entities.ItemStack, 0, len(o.stacks))
	for _, stack := range o.stacks {
		out = append(out, *stack)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
