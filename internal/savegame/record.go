// Package savegame converts a session's inventory and slots to and from the
// durable save record.
package savegame

import (
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
)

// Version numbers the save format. Decode understands every version up to
// VersionLatest.
type Version int

// Save format versions
const (
	// VersionInitial predates inventory persistence
	VersionInitial Version = iota
	// VersionAddedInventory stored a flat list of item ids
	VersionAddedInventory
	// VersionAddedItemData stores stacks with holes and slot assignments
	VersionAddedItemData

	VersionLatest = VersionAddedItemData
)

// Record is the durable form of a player's loadout
type Record struct {
	Version Version `json:"version"`
	UserID  string  `json:"user_id"`

	// Inventory has one entry per index; nil is a hole
	Inventory []*equipment.Stack `json:"inventory"`

	// Slots has one entry per layout key; the empty id is an empty slot
	Slots map[equipment.SlotKey]equipment.ItemID `json:"slots"`

	// InventoryItems is the VersionAddedInventory list, read but never written
	InventoryItems []equipment.ItemID `json:"inventory_items,omitempty"`

	// SavedAt is a unix timestamp set by the repository
	SavedAt int64 `json:"saved_at"`
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	out := *r
	out.Inventory = make([]*equipment.Stack, len(r.Inventory))
	for i, st := range r.Inventory {
		if st != nil {
			cp := *st
			out.Inventory[i] = &cp
		}
	}
	if r.Slots != nil {
		out.Slots = make(map[equipment.SlotKey]equipment.ItemID, len(r.Slots))
		for k, v := range r.Slots {
			out.Slots[k] = v
		}
	}
	out.InventoryItems = append([]equipment.ItemID(nil), r.InventoryItems...)
	return &out
}
