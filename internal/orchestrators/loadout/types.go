package loadout

import (
	"github.com/KirkDiggler/rpg-loadout/internal/abilities"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
)

// Outcome is what every mutating call reports besides its own fields
type Outcome struct {
	// Changed is set when the inventory or slots changed
	Changed bool
	// Saved is set when the resulting state was written to storage. A false
	// value after a change means the caller should retry persisting later.
	Saved bool
	// Abilities is the reconciliation pass that followed the change
	Abilities abilities.Result
}

// OpenSessionInput defines the request for opening a session
type OpenSessionInput struct {
	PlayerID string
	// CharacterID sources startup and default abilities; defaults to PlayerID
	CharacterID string
	// Level defaults to the configured start level
	Level int
}

// OpenSessionOutput defines the response for opening a session
type OpenSessionOutput struct {
	// Created is set when the player had no save
	Created bool
	// LoadedVersion is the version the save was written with
	LoadedVersion  int
	DroppedEntries int
	DroppedSlots   int
	Outcome
}

// CloseSessionInput defines the request for closing a session
type CloseSessionInput struct {
	PlayerID string
}

// CloseSessionOutput defines the response for closing a session
type CloseSessionOutput struct {
	Saved   bool
	Revoked int
}

// AddItemInput defines the request for adding units of an item
type AddItemInput struct {
	PlayerID string
	ItemID   equipment.ItemID
	Count    int
	Level    int
}

// AddItemOutput defines the response for adding an item
type AddItemOutput struct {
	// AutoSlotted is set when the item filled an empty auto-assign slot
	AutoSlotted bool
	Outcome
}

// RemoveItemInput defines the request for removing units of an item
type RemoveItemInput struct {
	PlayerID string
	ItemID   equipment.ItemID
	// Count <= 0 removes the whole targeted stack
	Count int
}

// RemoveItemOutput defines the response for removing an item
type RemoveItemOutput struct {
	Outcome
}

// SetItemAtInput defines the request for a positional write
type SetItemAtInput struct {
	PlayerID string
	Index    int
	ItemID   equipment.ItemID
	Count    int
	Level    int
}

// SetItemAtOutput defines the response for a positional write
type SetItemAtOutput struct {
	Outcome
}

// SwapItemsInput defines the request for swapping two positions
type SwapItemsInput struct {
	PlayerID string
	From     int
	To       int
}

// SwapItemsOutput defines the response for swapping two positions
type SwapItemsOutput struct {
	Outcome
}

// AssignSlotInput defines the request for assigning a slot; the empty item
// clears it
type AssignSlotInput struct {
	PlayerID string
	Slot     equipment.SlotKey
	ItemID   equipment.ItemID
}

// AssignSlotOutput defines the response for assigning a slot
type AssignSlotOutput struct {
	Outcome
}

// SortInventoryInput defines the request for sorting slotted items into the
// slot area
type SortInventoryInput struct {
	PlayerID string
}

// SortInventoryOutput defines the response for sorting
type SortInventoryOutput struct {
	Outcome
}

// SetCapacityInput defines the request for resizing the inventory
type SetCapacityInput struct {
	PlayerID string
	Capacity int
}

// SetCapacityOutput defines the response for resizing the inventory
type SetCapacityOutput struct {
	Outcome
}

// SetLevelInput defines the request for a character level change
type SetLevelInput struct {
	PlayerID string
	Level    int
}

// SetLevelOutput defines the response for a level change
type SetLevelOutput struct {
	// LevelChanged is false for non-positive or unchanged levels
	LevelChanged bool
	Abilities    abilities.Result
}

// GetLoadoutInput defines the request for a loadout snapshot
type GetLoadoutInput struct {
	PlayerID string
}

// GetLoadoutOutput is a point-in-time copy of a session
type GetLoadoutOutput struct {
	Level     int
	Capacity  int
	Bound     int
	Inventory []*equipment.Stack
	Slots     map[equipment.SlotKey]equipment.ItemID
	// SlotAbilities lists what each slot currently grants
	SlotAbilities map[equipment.SlotKey][]equipment.AbilityID
	// Grants is every live grant of the session's ability system
	Grants []abilities.GrantSpec
}

// QueryItemInput defines the request for locating an item
type QueryItemInput struct {
	PlayerID string
	ItemID   equipment.ItemID
}

// QueryItemOutput maps inventory index to stack. An item that is not held
// comes back under inventory.NotFoundIndex with a zero count.
type QueryItemOutput struct {
	Stacks map[int]equipment.Stack
	Total  int
}
