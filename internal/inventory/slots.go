package inventory

import (
	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

// SlotTableConfig contains the dependencies of a SlotTable
type SlotTableConfig struct {
	Layout  *Layout
	Catalog catalog.Catalog
	// Notifier is optional; a private one is created when nil
	Notifier *Notifier
}

// Validate validates the SlotTableConfig.
func (cfg *SlotTableConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.Layout == nil {
		vb.RequiredField("Layout")
	}
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	return vb.Build()
}

// SlotTable maps every slot key of the layout to an item id or empty.
//
// Assign and AutoFill deliberately follow different multi-slot policies:
// Assign lets one item occupy several slots, AutoFill refuses to place an item
// that is already slotted in its category.
type SlotTable struct {
	layout   *Layout
	catalog  catalog.Catalog
	notifier *Notifier
	slots    map[equipment.SlotKey]equipment.ItemID
}

// NewSlotTable creates a slot table with every slot empty
func NewSlotTable(cfg *SlotTableConfig) (*SlotTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := cfg.Notifier
	if n == nil {
		n = NewNotifier()
	}

	t := &SlotTable{
		layout:   cfg.Layout,
		catalog:  cfg.Catalog,
		notifier: n,
	}
	t.Reset()
	return t, nil
}

// Layout returns the slot layout
func (t *SlotTable) Layout() *Layout {
	return t.layout
}

// Notifier returns the notifier used for slot and inventory events
func (t *SlotTable) Notifier() *Notifier {
	return t.notifier
}

// Reset empties every slot without notifying
func (t *SlotTable) Reset() {
	t.slots = make(map[equipment.SlotKey]equipment.ItemID, t.layout.Size())
	for _, key := range t.layout.Keys() {
		t.slots[key] = ""
	}
}

// Assign overwrites a slot. The empty id clears it. Assigning what the slot
// already holds changes nothing and notifies nobody.
// Returns errors.NotFound for keys outside the layout
func (t *SlotTable) Assign(key equipment.SlotKey, id equipment.ItemID) error {
	if !t.layout.Valid(key) {
		return errors.NotFoundf("slot %s is not part of the layout", key).
			WithMeta("slot", key.String())
	}
	if t.slots[key] == id {
		return nil
	}

	t.slots[key] = id
	t.notifier.SlottedItemChanged(key, id)
	return nil
}

// Get returns the item in a slot; false when the slot is empty or invalid
func (t *SlotTable) Get(key equipment.SlotKey) (equipment.ItemID, bool) {
	id, ok := t.slots[key]
	if !ok || id.IsEmpty() {
		return "", false
	}
	return id, true
}

// IsSlotted reports whether any slot references the item
func (t *SlotTable) IsSlotted(id equipment.ItemID) bool {
	for _, slotted := range t.slots {
		if slotted == id {
			return true
		}
	}
	return false
}

// AutoFill places the item into the lowest empty slot of its category when
// that category auto-assigns and the item is not already slotted there.
func (t *SlotTable) AutoFill(id equipment.ItemID) bool {
	item, err := t.catalog.Resolve(id)
	if err != nil || !t.layout.AutoAssign(item.Category) {
		return false
	}

	keys := t.layout.KeysFor(item.Category)
	for _, key := range keys {
		if t.slots[key] == id {
			return false
		}
	}

	for _, key := range keys {
		if t.slots[key].IsEmpty() {
			t.slots[key] = id
			t.notifier.SlottedItemChanged(key, id)
			return true
		}
	}
	return false
}

// FillEmptySlots auto-fills every item in order and reports whether any
// slot changed
func (t *SlotTable) FillEmptySlots(ids []equipment.ItemID) bool {
	changed := false
	for _, id := range ids {
		changed = t.AutoFill(id) || changed
	}
	return changed
}

// ClearReferencesTo empties every slot referencing the item, notifying once
// per cleared slot, and returns the cleared keys
func (t *SlotTable) ClearReferencesTo(id equipment.ItemID) []equipment.SlotKey {
	if id.IsEmpty() {
		return nil
	}

	var cleared []equipment.SlotKey
	for _, key := range t.layout.Keys() {
		if t.slots[key] == id {
			cleared = append(cleared, key)
		}
	}

	for _, key := range cleared {
		t.slots[key] = ""
		t.notifier.SlottedItemChanged(key, "")
	}
	return cleared
}

// Prune is the consistency pass: slots referencing items the inventory no
// longer holds are cleared
func (t *SlotTable) Prune(held func(equipment.ItemID) bool) []equipment.SlotKey {
	stale := make(map[equipment.ItemID]bool)
	for _, key := range t.layout.Keys() {
		id := t.slots[key]
		if !id.IsEmpty() && !held(id) {
			stale[id] = true
		}
	}

	var cleared []equipment.SlotKey
	for _, key := range t.layout.Keys() {
		if stale[t.slots[key]] {
			cleared = append(cleared, t.ClearReferencesTo(t.slots[key])...)
		}
	}
	return cleared
}

// Items lists slotted items of a category in key order; the empty category
// matches all. With includeEmpty, empty slots appear as the empty id.
func (t *SlotTable) Items(category equipment.Category, includeEmpty bool) []equipment.ItemID {
	var out []equipment.ItemID
	for _, key := range t.layout.Keys() {
		if category != "" && key.Category != category {
			continue
		}
		id := t.slots[key]
		if id.IsEmpty() && !includeEmpty {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Assignments returns a copy of every slot, empty ones included
func (t *SlotTable) Assignments() map[equipment.SlotKey]equipment.ItemID {
	out := make(map[equipment.SlotKey]equipment.ItemID, len(t.slots))
	for key, id := range t.slots {
		out[key] = id
	}
	return out
}

// Restore replaces every slot without notifying. Keys outside the layout
// are skipped; the number of non-empty slots restored is returned.
func (t *SlotTable) Restore(assignments map[equipment.SlotKey]equipment.ItemID) int {
	t.Reset()

	restored := 0
	for key, id := range assignments {
		if !t.layout.Valid(key) {
			continue
		}
		t.slots[key] = id
		if !id.IsEmpty() {
			restored++
		}
	}
	return restored
}
