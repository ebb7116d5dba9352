package entities

// EquipmentSlot is one of the fixed equipment positions of a loadout
type EquipmentSlot string

// Equipment slot constants
const (
	SlotWeapon     EquipmentSlot = "SLOT_WEAPON"
	SlotHead       EquipmentSlot = "SLOT_HEAD"
	SlotChest      EquipmentSlot = "SLOT_CHEST"
	SlotLegs       EquipmentSlot = "SLOT_LEGS"
	SlotAccessory1 EquipmentSlot = "SLOT_ACCESSORY_1"
	SlotAccessory2 EquipmentSlot = "SLOT_ACCESSORY_2"
)

// EquipmentSlots lists every slot in display order
var EquipmentSlots = []EquipmentSlot{
	SlotWeapon,
	SlotHead,
	SlotChest,
	SlotLegs,
	SlotAccessory1,
	SlotAccessory2,
}

// Valid reports whether the slot is one of the known constants
func (s EquipmentSlot) Valid() bool {
	switch s {
	case SlotWeapon, SlotHead, SlotChest, SlotLegs, SlotAccessory1, SlotAccessory2:
		return true
	}
	return false
}

// Accepts reports whether an item of the given category may occupy the slot
func (s EquipmentSlot) Accepts(category EquipmentCategory) bool {
	switch s {
	case SlotWeapon:
		return category == CategoryWeapon
	case SlotHead:
		return category == CategoryHead
	case SlotChest:
		return category == CategoryChest
	case SlotLegs:
		return category == CategoryLegs
	case SlotAccessory1, SlotAccessory2:
		return category == CategoryAccessory
	}
	return false
}

// ConsumableSlot is a logical reservation of ledger stock for a mission.
// It references the ledger; it never owns quantity.
type ConsumableSlot struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Loadout is the player's configured equipment mapping and consumable
// reservations. Slot values are item IDs referencing ledger entries; the
// ledger remains the single source of quantity truth.
type Loadout struct {
	Equipment   map[EquipmentSlot]string `json:"equipment"`
	Consumables []ConsumableSlot         `json:"consumables"`
}

// NewLoadout returns an empty loadout
func NewLoadout() *Loadout {
	return &Loadout{
		Equipment: make(map[EquipmentSlot]string),
	}
}

// Clone returns a deep copy of the loadout
func (l *Loadout) Clone() *Loadout {
	out := &Loadout{
		Equipment:   make(map[EquipmentSlot]string, len(l.Equipment)),
		Consumables: make([]ConsumableSlot, len(l.Consumables)),
	}
	for slot, itemID := range l.Equipment {
		out.Equipment[slot] = itemID
	}
	copy(out.Consumables, l.Consumables)
	return out
}
