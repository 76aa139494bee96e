// Package notifications republishes inventory and slot changes on an
// rpg-toolkit event bus so other game systems can react to them.
package notifications

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
)

// Event types published by the bridge
const (
	EventItemAdded       = "loadout.inventory.item_added"
	EventItemRemoved     = "loadout.inventory.item_removed"
	EventSlotChanged     = "loadout.slot.changed"
	EventInventoryLoaded = "loadout.inventory.loaded"
)

// Event context keys
const (
	KeyItemID = "item_id"
	KeySlot   = "slot"
)

// PlayerEntity is the event source for a player's loadout
type PlayerEntity struct {
	ID string
}

// GetID implements core.Entity
func (p *PlayerEntity) GetID() string {
	return p.ID
}

// GetType implements core.Entity
func (p *PlayerEntity) GetType() string {
	return "player"
}

var _ core.Entity = (*PlayerEntity)(nil)

// BridgeConfig contains the dependencies of a Bridge
type BridgeConfig struct {
	Bus      events.EventBus
	PlayerID string
}

// Validate validates the BridgeConfig.
func (cfg *BridgeConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.Bus == nil {
		vb.RequiredField("Bus")
	}
	errors.ValidateRequired("PlayerID", cfg.PlayerID, vb)
	return vb.Build()
}

// Bridge is an inventory.Listener that publishes every notification
type Bridge struct {
	bus    events.EventBus
	player *PlayerEntity
}

// NewBridge creates a bridge for one player
func NewBridge(cfg *BridgeConfig) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Bridge{
		bus:    cfg.Bus,
		player: &PlayerEntity{ID: cfg.PlayerID},
	}, nil
}

// InventoryItemChanged implements inventory.Listener
func (b *Bridge) InventoryItemChanged(added bool, id equipment.ItemID) {
	eventType := EventItemRemoved
	if added {
		eventType = EventItemAdded
	}

	e := events.NewGameEvent(eventType, b.player, nil)
	e.Context().Set(KeyItemID, id.String())
	b.publish(e)
}

// SlottedItemChanged implements inventory.Listener
func (b *Bridge) SlottedItemChanged(key equipment.SlotKey, id equipment.ItemID) {
	e := events.NewGameEvent(EventSlotChanged, b.player, nil)
	e.Context().Set(KeySlot, key.String())
	e.Context().Set(KeyItemID, id.String())
	b.publish(e)
}

// InventoryLoaded implements inventory.Listener
func (b *Bridge) InventoryLoaded() {
	b.publish(events.NewGameEvent(EventInventoryLoaded, b.player, nil))
}

func (b *Bridge) publish(e events.Event) {
	if err := b.bus.Publish(context.Background(), e); err != nil {
		slog.Warn("Failed to publish loadout event",
			"player_id", b.player.ID,
			"event", e.Type(),
			"error", err)
	}
}

// ItemID reads the item id carried by a bridge event
func ItemID(e events.Event) (equipment.ItemID, bool) {
	v, ok := e.Context().Get(KeyItemID)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return equipment.ItemID(s), ok
}

// Slot reads the slot key carried by a slot event
func Slot(e events.Event) (equipment.SlotKey, bool) {
	v, ok := e.Context().Get(KeySlot)
	if !ok {
		return equipment.SlotKey{}, false
	}
	s, ok := v.(string)
	if !ok {
		return equipment.SlotKey{}, false
	}
	key, err := equipment.ParseSlotKey(s)
	return key, err == nil
}

var _ inventory.Listener = (*Bridge)(nil)
