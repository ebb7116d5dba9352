package loadout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/delveforge/delve-engine/internal/catalog"
	"github.com/delveforge/delve-engine/internal/entities"
	"github.com/delveforge/delve-engine/internal/errors"
	"github.com/delveforge/delve-engine/internal/events"
	"github.com/delveforge/delve-engine/internal/orchestrators/inventory"
	"github.com/delveforge/delve-engine/internal/orchestrators/loadout"
)

const testCatalogJSON = `{
	"items": [
		{"id": "iron_sword", "name": "Iron Sword", "stackable": false, "rarity": "RARITY_UNCOMMON", "category": "CATEGORY_WEAPON"},
		{"id": "steel_sword", "name": "Steel Sword", "stackable": false, "rarity": "RARITY_RARE", "category": "CATEGORY_WEAPON"},
		{"id": "leather_cap", "name": "Leather Cap", "stackable": false, "rarity": "RARITY_COMMON", "category": "CATEGORY_HEAD"},
		{"id": "lucky_ring", "name": "Lucky Ring", "stackable": false, "rarity": "RARITY_RARE", "category": "CATEGORY_ACCESSORY"},
		{"id": "health_potion", "name": "Health Potion", "stackable": true, "max_stack_size": 20, "rarity": "RARITY_COMMON", "category": "CATEGORY_NONE"},
		{"id": "iron_ore", "name": "Iron Ore", "stackable": true, "max_stack_size": 99, "rarity": "RARITY_COMMON", "category": "CATEGORY_NONE"}
	]
}`

type LoadoutTestSuite struct {
	suite.Suite
	ctx     context.Context
	bus     *events.Bus
	ledger  inventory.Service
	manager loadout.Service
}

func TestLoadoutSuite(t *testing.T) {
	suite.Run(t, new(LoadoutTestSuite))
}

func (s *LoadoutTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.bus = events.NewBus()

	cat, err := catalog.Load([]byte(testCatalogJSON))
	s.Require().NoError(err)

	ledger, err := inventory.NewOrchestrator(&inventory.Config{
		Catalog:  cat,
		EventBus: s.bus,
	})
	s.Require().NoError(err)
	s.ledger = ledger

	manager, err := loadout.NewOrchestrator(&loadout.Config{
		Catalog:            cat,
		Ledger:             ledger,
		EventBus:           s.bus,
		MaxConsumableSlots: 2,
	})
	s.Require().NoError(err)
	s.manager = manager
}

func (s *LoadoutTestSuite) give(itemID string, quantity int) {
	out, err := s.ledger.AddItem(s.ctx, &inventory.AddItemInput{ItemID: itemID, Quantity: quantity})
	s.Require().NoError(err)
	s.Require().Zero(out.Overflow)
}

func (s *LoadoutTestSuite) slotIndex(itemID string) int {
	list, err := s.ledger.List(s.ctx, &inventory.ListInput{})
	s.Require().NoError(err)
	for _, stack := range list.Stacks {
		if stack.ItemID == itemID {
			return stack.SlotIndex
		}
	}
	s.Require().Failf("stack not found", "item %s not in ledger", itemID)
	return -1
}

func (s *LoadoutTestSuite) TestEquipDoesNotChangeQuantity() {
	s.give("iron_sword", 1)

	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "iron_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Require().NoError(err)

	count, err := s.ledger.Count(s.ctx, &inventory.CountInput{ItemID: "iron_sword"})
	s.Require().NoError(err)
	s.Assert().Equal(1, count.Count)

	list, err := s.ledger.List(s.ctx, &inventory.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(list.Stacks, 1)
	s.Assert().True(list.Stacks[0].Equipped)
}

func (s *LoadoutTestSuite) TestEquipRequiresOwnership() {
	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "iron_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *LoadoutTestSuite) TestEquipRejectsCategoryMismatch() {
	s.give("leather_cap", 1)

	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "leather_cap",
		Slot:   entities.SlotWeapon,
	})
	s.Assert().True(errors.IsCapacityExceeded(err))
}

func (s *LoadoutTestSuite) TestEquipReplacesPrevious() {
	s.give("iron_sword", 1)
	s.give("steel_sword", 1)

	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "iron_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Require().NoError(err)

	out, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "steel_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Require().NoError(err)
	s.Assert().Equal("iron_sword", out.Replaced)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Assert().Equal("steel_sword", got.Loadout.Equipment[entities.SlotWeapon])

	list, err := s.ledger.List(s.ctx, &inventory.ListInput{})
	s.Require().NoError(err)
	for _, stack := range list.Stacks {
		s.Assert().Equal(stack.ItemID == "steel_sword", stack.Equipped, stack.ItemID)
	}
}

func (s *LoadoutTestSuite) TestUnequipIsIdempotent() {
	out, err := s.manager.Unequip(s.ctx, &loadout.UnequipInput{Slot: entities.SlotHead})
	s.Require().NoError(err)
	s.Assert().Empty(out.Removed)

	s.give("leather_cap", 1)
	_, err = s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "leather_cap",
		Slot:   entities.SlotHead,
	})
	s.Require().NoError(err)

	out, err = s.manager.Unequip(s.ctx, &loadout.UnequipInput{Slot: entities.SlotHead})
	s.Require().NoError(err)
	s.Assert().Equal("leather_cap", out.Removed)

	out, err = s.manager.Unequip(s.ctx, &loadout.UnequipInput{Slot: entities.SlotHead})
	s.Require().NoError(err)
	s.Assert().Empty(out.Removed)
}

func (s *LoadoutTestSuite) TestRemovingEquippedItemClearsSlot() {
	// Equipping does not reserve the stack: removal of the last copy
	// succeeds and the slot reference is dropped with it
	s.give("iron_sword", 1)
	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "iron_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Require().NoError(err)

	removed, err := s.ledger.RemoveItem(s.ctx, &inventory.RemoveItemInput{
		ItemID:   "iron_sword",
		Quantity: 1,
	})
	s.Require().NoError(err)
	s.Assert().Zero(removed.Remaining)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Assert().NotContains(got.Loadout.Equipment, entities.SlotWeapon)
}

func (s *LoadoutTestSuite) TestAccessoryFitsEitherAccessorySlot() {
	s.give("lucky_ring", 1)

	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "lucky_ring",
		Slot:   entities.SlotAccessory2,
	})
	s.Require().NoError(err)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Assert().Equal("lucky_ring", got.Loadout.Equipment[entities.SlotAccessory2])
}

func (s *LoadoutTestSuite) TestAddConsumableReservesAgainstStock() {
	s.give("health_potion", 5)

	out, err := s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{
		ItemID:   "health_potion",
		Quantity: 3,
	})
	s.Require().NoError(err)
	s.Assert().Zero(out.SlotIndex)

	// Reservations are references: the ledger still holds all 5
	count, err := s.ledger.Count(s.ctx, &inventory.CountInput{ItemID: "health_potion"})
	s.Require().NoError(err)
	s.Assert().Equal(5, count.Count)

	// A second reservation totaling past owned stock is refused
	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{
		ItemID:   "health_potion",
		Quantity: 3,
	})
	s.Assert().True(errors.IsInsufficientResource(err))

	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{
		ItemID:   "health_potion",
		Quantity: 2,
	})
	s.Require().NoError(err)
}

func (s *LoadoutTestSuite) TestAddConsumableRespectsSlotLimit() {
	s.give("health_potion", 10)
	s.give("iron_ore", 10)

	_, err := s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "health_potion", Quantity: 1})
	s.Require().NoError(err)
	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "iron_ore", Quantity: 1})
	s.Require().NoError(err)

	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "health_potion", Quantity: 1})
	s.Assert().True(errors.IsCapacityExceeded(err))
}

func (s *LoadoutTestSuite) TestRemoveConsumableReindexes() {
	s.give("health_potion", 10)
	s.give("iron_ore", 10)

	_, err := s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "health_potion", Quantity: 2})
	s.Require().NoError(err)
	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "iron_ore", Quantity: 4})
	s.Require().NoError(err)

	out, err := s.manager.RemoveConsumable(s.ctx, &loadout.RemoveConsumableInput{SlotIndex: 0})
	s.Require().NoError(err)
	s.Assert().Equal("health_potion", out.Removed.ItemID)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Require().Len(got.Loadout.Consumables, 1)
	s.Assert().Equal("iron_ore", got.Loadout.Consumables[0].ItemID)

	// The surviving reservation shifted down and the ledger follows it
	s.Assert().Equal(0, s.slotIndex("iron_ore"))
	s.Assert().Equal(-1, s.slotIndex("health_potion"))

	_, err = s.manager.RemoveConsumable(s.ctx, &loadout.RemoveConsumableInput{SlotIndex: 1})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *LoadoutTestSuite) TestExhaustedConsumableReindexesSurvivors() {
	s.give("health_potion", 3)
	s.give("iron_ore", 5)

	_, err := s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "health_potion", Quantity: 3})
	s.Require().NoError(err)
	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "iron_ore", Quantity: 2})
	s.Require().NoError(err)

	// Exhausting the potion stack clears its slot through the event
	// subscription; the ore reservation moves to the front.
	_, err = s.ledger.RemoveItem(s.ctx, &inventory.RemoveItemInput{ItemID: "health_potion", Quantity: 3})
	s.Require().NoError(err)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Require().Len(got.Loadout.Consumables, 1)
	s.Assert().Equal("iron_ore", got.Loadout.Consumables[0].ItemID)
	s.Assert().Equal(0, s.slotIndex("iron_ore"))
}

func (s *LoadoutTestSuite) TestGetReturnsACopy() {
	s.give("iron_sword", 1)
	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "iron_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Require().NoError(err)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	got.Loadout.Equipment[entities.SlotWeapon] = "tampered"

	again, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Assert().Equal("iron_sword", again.Loadout.Equipment[entities.SlotWeapon])
}

func (s *LoadoutTestSuite) TestClearEmptiesEverything() {
	s.give("iron_sword", 1)
	s.give("health_potion", 5)

	_, err := s.manager.Equip(s.ctx, &loadout.EquipInput{
		ItemID: "iron_sword",
		Slot:   entities.SlotWeapon,
	})
	s.Require().NoError(err)
	_, err = s.manager.AddConsumable(s.ctx, &loadout.AddConsumableInput{ItemID: "health_potion", Quantity: 2})
	s.Require().NoError(err)

	out, err := s.manager.Clear(s.ctx, &loadout.ClearInput{})
	s.Require().NoError(err)
	s.Assert().Equal(2, out.SlotsCleared)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Assert().Empty(got.Loadout.Equipment)
	s.Assert().Empty(got.Loadout.Consumables)

	list, err := s.ledger.List(s.ctx, &inventory.ListInput{})
	s.Require().NoError(err)
	for _, stack := range list.Stacks {
		s.Assert().False(stack.Equipped)
		s.Assert().Equal(-1, stack.SlotIndex)
	}
}

func (s *LoadoutTestSuite) TestRestoreSkipsUnsatisfiableReferences() {
	s.give("iron_sword", 1)
	s.give("health_potion", 3)

	saved := entities.NewLoadout()
	saved.Equipment[entities.SlotWeapon] = "iron_sword"
	saved.Equipment[entities.SlotHead] = "leather_cap" // not owned
	saved.Consumables = []entities.ConsumableSlot{
		{ItemID: "health_potion", Quantity: 2},
		{ItemID: "health_potion", Quantity: 5}, // exceeds remaining stock
	}

	out, err := s.manager.Restore(s.ctx, &loadout.RestoreInput{Loadout: saved})
	s.Require().NoError(err)
	s.Assert().ElementsMatch([]string{"leather_cap", "health_potion"}, out.SkippedItems)

	got, err := s.manager.Get(s.ctx, &loadout.GetInput{})
	s.Require().NoError(err)
	s.Assert().Equal("iron_sword", got.Loadout.Equipment[entities.SlotWeapon])
	s.Require().Len(got.Loadout.Consumables, 1)
	s.Assert().Equal(2, got.Loadout.Consumables[0].Quantity)
}
