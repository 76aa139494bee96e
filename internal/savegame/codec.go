package savegame

import (
	"log/slog"

	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
)

// Encode captures the store and slot table as a latest-version record
func Encode(store *inventory.Store, slots *inventory.SlotTable, userID string) *Record {
	return &Record{
		Version:   VersionLatest,
		UserID:    userID,
		Inventory: store.Entries(),
		Slots:     slots.Assignments(),
	}
}

// DecodeResult reports what a decode had to discard
type DecodeResult struct {
	// Version is the version the record was written with
	Version        Version
	DroppedEntries int
	DroppedSlots   int
	// AutoFilled is set when no slot survived decoding and held items were
	// auto-assigned instead
	AutoFilled bool
}

// Upgrade brings an older record to the latest layout without touching the
// input. Legacy item lists become single-unit level one stacks.
// Returns errors.FailedPrecondition for versions newer than VersionLatest
func Upgrade(rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.InvalidArgument("record cannot be nil")
	}
	if rec.Version > VersionLatest {
		return nil, errors.FailedPreconditionf("save version %d is newer than supported version %d",
			rec.Version, VersionLatest).WithMeta("version", int(rec.Version))
	}
	if rec.Version < VersionInitial {
		return nil, errors.DataLossf("save version %d is invalid", rec.Version)
	}

	out := rec.Clone()
	if out.Version < VersionAddedItemData && len(out.Inventory) == 0 {
		for _, id := range out.InventoryItems {
			if id.IsEmpty() {
				continue
			}
			out.Inventory = append(out.Inventory, &equipment.Stack{ItemID: id, Count: 1, Level: 1})
		}
	}
	out.InventoryItems = nil
	out.Version = VersionLatest
	return out, nil
}

// Decode restores a record into the store and slot table. Unresolvable
// entries become holes and unresolvable or unheld slot items become empty
// slots. When no slot is left holding an item, the slots auto-fill from what
// is held.
// InventoryLoaded fires once everything is in place.
func Decode(rec *Record, store *inventory.Store, slots *inventory.SlotTable, items catalog.Catalog) (*DecodeResult, error) {
	upgraded, err := Upgrade(rec)
	if err != nil {
		return nil, err
	}

	res := &DecodeResult{Version: rec.Version}
	res.DroppedEntries = store.Restore(upgraded.Inventory)

	kept := make(map[equipment.SlotKey]equipment.ItemID, len(upgraded.Slots))
	for key, id := range upgraded.Slots {
		if id.IsEmpty() {
			continue
		}
		if _, err := items.Resolve(id); err != nil || !store.Has(id) {
			res.DroppedSlots++
			continue
		}
		kept[key] = id
	}
	if slots.Restore(kept) == 0 {
		res.AutoFilled = slots.FillEmptySlots(store.Items(""))
	}

	if res.DroppedEntries > 0 || res.DroppedSlots > 0 {
		slog.Warn("Save record had unresolvable data",
			"user_id", rec.UserID,
			"version", int(rec.Version),
			"dropped_entries", res.DroppedEntries,
			"dropped_slots", res.DroppedSlots)
	}

	slots.Notifier().InventoryLoaded()
	return res, nil
}
