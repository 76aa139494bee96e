// Package inventory owns a character's item stacks and slot assignments.
//
// The Store is a sparse, capacity-bounded sequence of stacks where a removed
// stack leaves a hole instead of shifting later indices. The SlotTable binds
// slot keys to item ids. Both notify through one Notifier after every
// committed change; a rejected call mutates nothing and notifies nobody.
//
// Neither type is safe for concurrent mutation. Callers serialize access per
// session.
package inventory

import (
	"slices"

	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

// NotFoundIndex is the Query key used when an item has no stack
const NotFoundIndex = -1

// DefaultReserveSlack matches the default layout's slot area
const DefaultReserveSlack = 10

// StoreConfig contains the dependencies of a Store
type StoreConfig struct {
	Catalog catalog.Catalog
	// Slots receives cascade clears; its notifier is shared by the store
	Slots *SlotTable
	// Capacity comes from the character's inventory size attribute
	Capacity int
	// ReserveSlack is extra room past Capacity. Holes inside the first
	// ReserveSlack indices are kept for positional writes and never reused
	// by AddItem.
	ReserveSlack int
}

// Validate validates the StoreConfig.
func (cfg *StoreConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if cfg.Slots == nil {
		vb.RequiredField("Slots")
	}
	if cfg.Capacity < 0 {
		vb.Field("Capacity", "cannot be negative")
	}
	if cfg.ReserveSlack < 0 {
		vb.Field("ReserveSlack", "cannot be negative")
	}
	return vb.Build()
}

// Store is the capacity-bounded collection of item stacks
type Store struct {
	catalog      catalog.Catalog
	slots        *SlotTable
	notifier     *Notifier
	capacity     int
	reserveSlack int

	// nil entries are holes
	entries []*equipment.Stack
}

// NewStore creates an empty store
func NewStore(cfg *StoreConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Store{
		catalog:      cfg.Catalog,
		slots:        cfg.Slots,
		notifier:     cfg.Slots.Notifier(),
		capacity:     cfg.Capacity,
		reserveSlack: cfg.ReserveSlack,
	}, nil
}

// Bound is the maximum collection length, capacity plus reserve slack
func (s *Store) Bound() int {
	return s.capacity + s.reserveSlack
}

// Capacity returns the primary capacity
func (s *Store) Capacity() int {
	return s.capacity
}

// SetCapacity follows a change of the inventory size attribute. Trailing
// holes are trimmed first; shrinking below the stacks still held is rejected.
func (s *Store) SetCapacity(capacity int) error {
	if capacity < 0 {
		return errors.InvalidArgumentf("capacity cannot be negative, got %d", capacity)
	}

	end := len(s.entries)
	for end > 0 && s.entries[end-1] == nil {
		end--
	}
	if end > capacity+s.reserveSlack {
		return errors.FailedPreconditionf("inventory holds %d entries, capacity %d is too small", end, capacity).
			WithMeta("capacity", capacity)
	}

	s.entries = s.entries[:end]
	s.capacity = capacity
	return nil
}

// Len is the collection length, holes included
func (s *Store) Len() int {
	return len(s.entries)
}

// Occupied counts the stacks held
func (s *Store) Occupied() int {
	n := 0
	for _, st := range s.entries {
		if st != nil {
			n++
		}
	}
	return n
}

// At returns the stack at an index; false for holes and out of range
func (s *Store) At(index int) (equipment.Stack, bool) {
	if index < 0 || index >= len(s.entries) || s.entries[index] == nil {
		return equipment.Stack{}, false
	}
	return *s.entries[index], true
}

// Entries returns a copy of the collection, holes as nil
func (s *Store) Entries() []*equipment.Stack {
	out := make([]*equipment.Stack, len(s.entries))
	for i, st := range s.entries {
		if st != nil {
			cp := *st
			out[i] = &cp
		}
	}
	return out
}

// Has reports whether at least one stack of the item exists
func (s *Store) Has(id equipment.ItemID) bool {
	return indexOf(s.entries, id) >= 0
}

// Count sums the units of an item over every stack
func (s *Store) Count(id equipment.ItemID) int {
	total := 0
	for _, st := range s.entries {
		if st != nil && st.ItemID == id {
			total += st.Count
		}
	}
	return total
}

// Query returns every occupied index holding the item. When there is none the
// map holds a single zero-count stack under NotFoundIndex.
func (s *Store) Query(id equipment.ItemID) map[int]equipment.Stack {
	found := make(map[int]equipment.Stack)
	for i, st := range s.entries {
		if st != nil && st.ItemID == id {
			found[i] = *st
		}
	}
	if len(found) == 0 {
		found[NotFoundIndex] = equipment.Stack{ItemID: id}
	}
	return found
}

// Items lists distinct held items in index order. The empty category matches
// every item; items the catalog cannot resolve only match the empty category.
func (s *Store) Items(category equipment.Category) []equipment.ItemID {
	seen := make(map[equipment.ItemID]bool)
	var out []equipment.ItemID
	for _, st := range s.entries {
		if st == nil || seen[st.ItemID] {
			continue
		}
		seen[st.ItemID] = true

		if category != "" {
			item, err := s.catalog.Resolve(st.ItemID)
			if err != nil || item.Category != category {
				continue
			}
		}
		out = append(out, st.ItemID)
	}
	return out
}

// AddItem merges units into the lowest-index stack of the item that has room
// and spills whatever does not fit into new stacks.
// Returns errors.InvalidArgument for non-positive count or level
// Returns errors.NotFound for unknown items
// Returns errors.ResourceExhausted when a new stack has nowhere to go
func (s *Store) AddItem(id equipment.ItemID, count, level int) error {
	item, err := s.resolveForWrite(id, count, level)
	if err != nil {
		return err
	}

	work := slices.Clone(s.entries)
	remaining, spillLevel := count, item.ClampLevel(level)
	if idx := lowestWithRoom(work, item); idx >= 0 {
		remaining, spillLevel = mergeInto(work, idx, item, count, level)
	}
	if err := s.spill(&work, item, remaining, spillLevel); err != nil {
		return err
	}

	s.entries = work
	s.notifier.InventoryItemChanged(true, id)
	return nil
}

// RemoveItem takes units from the item's smallest stack (ties go to the lowest
// index). removeCount <= 0 removes that whole stack. A stack that runs out
// becomes a hole and every slot referencing the item is cleared.
// Returns errors.NotFound when the item is not held
func (s *Store) RemoveItem(id equipment.ItemID, removeCount int) error {
	if id.IsEmpty() {
		return errors.InvalidArgument("item id cannot be empty")
	}

	idx := smallestStack(s.entries, id)
	if idx < 0 {
		return errors.NotFoundf("item %s is not in the inventory", id).WithMeta("item_id", id.String())
	}

	cur := *s.entries[idx]
	remaining := cur.Count - removeCount
	if removeCount <= 0 {
		remaining = 0
	}

	if remaining > 0 {
		cur.Count = remaining
		s.entries[idx] = &cur
	} else {
		s.entries[idx] = nil
		s.slots.ClearReferencesTo(id)
	}

	s.notifier.InventoryItemChanged(false, id)
	return nil
}

// SetAt writes a stack at a position, growing the collection with holes when
// needed. The same item already at the index is merged; anything else is
// overwritten.
// Returns errors.InvalidArgument for bad input
// Returns errors.NotFound for unknown items
// Returns errors.ResourceExhausted when the index or a spill is out of bounds
func (s *Store) SetAt(index int, id equipment.ItemID, count, level int) error {
	item, err := s.resolveForWrite(id, count, level)
	if err != nil {
		return err
	}
	if index < 0 {
		return errors.InvalidArgumentf("index cannot be negative, got %d", index)
	}
	if index >= s.Bound() {
		return errors.ResourceExhaustedf("index %d is past the inventory bound %d", index, s.Bound()).
			WithMeta("index", index)
	}

	work := slices.Clone(s.entries)
	for len(work) <= index {
		work = append(work, nil)
	}

	var displaced equipment.ItemID
	if cur := work[index]; cur != nil && cur.ItemID != id {
		displaced = cur.ItemID
		work[index] = nil
	}

	remaining, spillLevel := mergeInto(work, index, item, count, level)
	if err := s.spill(&work, item, remaining, spillLevel); err != nil {
		return err
	}

	s.entries = work
	if !displaced.IsEmpty() {
		if !s.Has(displaced) {
			s.slots.ClearReferencesTo(displaced)
		}
		s.notifier.InventoryItemChanged(false, displaced)
	}
	s.notifier.InventoryItemChanged(true, id)
	return nil
}

// Swap exchanges two positions, growing the collection with holes when needed
func (s *Store) Swap(from, to int) error {
	if from < 0 || to < 0 {
		return errors.InvalidArgumentf("swap indices cannot be negative, got %d and %d", from, to)
	}
	if from >= s.Bound() || to >= s.Bound() {
		return errors.ResourceExhaustedf("swap %d<->%d is past the inventory bound %d", from, to, s.Bound())
	}

	s.grow(max(from, to) + 1)
	s.entries[from], s.entries[to] = s.entries[to], s.entries[from]
	return nil
}

// SortToSlotArea moves the smallest stack of every slotted item to the slot
// area index of its first slot and reports whether anything moved
func (s *Store) SortToSlotArea() bool {
	layout := s.slots.Layout()
	placed := make(map[equipment.ItemID]bool)
	moved := false
	for _, key := range layout.Keys() {
		id, ok := s.slots.Get(key)
		if !ok || placed[id] {
			continue
		}
		placed[id] = true

		target := layout.AreaIndex(key)
		from := smallestStack(s.entries, id)
		if from < 0 || from == target || target >= s.Bound() {
			continue
		}

		s.grow(target + 1)
		s.entries[from], s.entries[target] = s.entries[target], s.entries[from]
		moved = true
	}
	return moved
}

// Restore replaces the collection without notifying. Entries the catalog
// cannot resolve, or with a non-positive count, become holes; levels are
// normalized into range. Entries at or past Bound are dropped. The number of
// entries dropped is returned.
func (s *Store) Restore(stacks []*equipment.Stack) int {
	dropped := 0
	entries := make([]*equipment.Stack, min(len(stacks), s.Bound()))
	for i, st := range stacks {
		if st == nil {
			continue
		}
		if i >= len(entries) {
			dropped++
			continue
		}

		item, err := s.catalog.Resolve(st.ItemID)
		if err != nil || st.Count <= 0 {
			dropped++
			continue
		}

		entries[i] = &equipment.Stack{
			ItemID: st.ItemID,
			Count:  item.ClampCount(st.Count),
			Level:  item.ClampLevel(max(st.Level, 1)),
		}
	}

	s.entries = entries
	return dropped
}

func (s *Store) resolveForWrite(id equipment.ItemID, count, level int) (*catalog.Item, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("item_id", id.String(), vb)
	errors.ValidatePositive("count", count, vb)
	errors.ValidatePositive("level", level, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	return s.catalog.Resolve(id)
}

func (s *Store) grow(length int) {
	for len(s.entries) < length {
		s.entries = append(s.entries, nil)
	}
}

// spill places units that did not merge into new stacks of at most MaxCount
func (s *Store) spill(work *[]*equipment.Stack, item *catalog.Item, units, level int) error {
	for units > 0 {
		idx, err := s.freeIndex(work)
		if err != nil {
			return err
		}

		n := item.ClampCount(units)
		(*work)[idx] = &equipment.Stack{ItemID: item.ID, Count: n, Level: level}
		units -= n
	}
	return nil
}

// freeIndex appends while under the bound, then reuses the first hole past the
// reserve region
func (s *Store) freeIndex(work *[]*equipment.Stack) (int, error) {
	if len(*work) < s.Bound() {
		*work = append(*work, nil)
		return len(*work) - 1, nil
	}

	for i := s.reserveSlack; i < len(*work); i++ {
		if (*work)[i] == nil {
			return i, nil
		}
	}

	return -1, errors.ResourceExhaustedf("inventory is full (%d entries)", len(*work)).
		WithMeta("bound", s.Bound())
}

// mergeInto adds units to work[idx], which is a hole or a stack of the same
// item. It returns the units past MaxCount and the level they should carry.
func mergeInto(work []*equipment.Stack, idx int, item *catalog.Item, count, level int) (int, int) {
	merged := equipment.Stack{ItemID: item.ID, Count: count, Level: item.ClampLevel(level)}
	if cur := work[idx]; cur != nil {
		merged.Count += cur.Count
		merged.Level = item.ClampLevel(max(cur.Level, level))
	}

	overflow := 0
	if item.MaxCount > 0 && merged.Count > item.MaxCount {
		overflow = merged.Count - item.MaxCount
		merged.Count = item.MaxCount
	}

	work[idx] = &merged
	return overflow, merged.Level
}

func lowestWithRoom(entries []*equipment.Stack, item *catalog.Item) int {
	for i, st := range entries {
		if st != nil && st.ItemID == item.ID && (item.MaxCount <= 0 || st.Count < item.MaxCount) {
			return i
		}
	}
	return -1
}

func smallestStack(entries []*equipment.Stack, id equipment.ItemID) int {
	best := -1
	for i, st := range entries {
		if st == nil || st.ItemID != id {
			continue
		}
		if best < 0 || st.Count < entries[best].Count {
			best = i
		}
	}
	return best
}

func indexOf(entries []*equipment.Stack, id equipment.ItemID) int {
	for i, st := range entries {
		if st != nil && st.ItemID == id {
			return i
		}
	}
	return -1
}
