package inventory

import (
	"sync"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
)

// Listener receives change notifications. Calls happen synchronously after a
// mutation commits and never for a rejected call.
type Listener interface {
	InventoryItemChanged(added bool, id equipment.ItemID)
	// SlottedItemChanged passes the empty ItemID when a slot is cleared
	SlottedItemChanged(key equipment.SlotKey, id equipment.ItemID)
	InventoryLoaded()
}

// ListenerFuncs adapts optional functions to Listener
type ListenerFuncs struct {
	OnInventoryItemChanged func(added bool, id equipment.ItemID)
	OnSlottedItemChanged   func(key equipment.SlotKey, id equipment.ItemID)
	OnInventoryLoaded      func()
}

// InventoryItemChanged implements Listener
func (f ListenerFuncs) InventoryItemChanged(added bool, id equipment.ItemID) {
	if f.OnInventoryItemChanged != nil {
		f.OnInventoryItemChanged(added, id)
	}
}

// SlottedItemChanged implements Listener
func (f ListenerFuncs) SlottedItemChanged(key equipment.SlotKey, id equipment.ItemID) {
	if f.OnSlottedItemChanged != nil {
		f.OnSlottedItemChanged(key, id)
	}
}

// InventoryLoaded implements Listener
func (f ListenerFuncs) InventoryLoaded() {
	if f.OnInventoryLoaded != nil {
		f.OnInventoryLoaded()
	}
}

// Notifier fans notifications out to subscribed listeners in subscription order
type Notifier struct {
	mu        sync.RWMutex
	nextID    int
	listeners []subscription
}

type subscription struct {
	id       int
	listener Listener
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a listener and returns its unsubscribe function
func (n *Notifier) Subscribe(l Listener) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, subscription{id: id, listener: l})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, sub := range n.listeners {
			if sub.id == id {
				n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
				return
			}
		}
	}
}

// snapshot lets listeners unsubscribe while being notified
func (n *Notifier) snapshot() []Listener {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Listener, len(n.listeners))
	for i, sub := range n.listeners {
		out[i] = sub.listener
	}
	return out
}

// InventoryItemChanged notifies every listener
func (n *Notifier) InventoryItemChanged(added bool, id equipment.ItemID) {
	for _, l := range n.snapshot() {
		l.InventoryItemChanged(added, id)
	}
}

// SlottedItemChanged notifies every listener
func (n *Notifier) SlottedItemChanged(key equipment.SlotKey, id equipment.ItemID) {
	for _, l := range n.snapshot() {
		l.SlottedItemChanged(key, id)
	}
}

// InventoryLoaded notifies every listener
func (n *Notifier) InventoryLoaded() {
	for _, l := range n.snapshot() {
		l.InventoryLoaded()
	}
}

var _ Listener = (*Notifier)(nil)
