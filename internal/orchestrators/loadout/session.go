package loadout

import (
	"sync"

	"github.com/KirkDiggler/rpg-loadout/internal/abilities"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
	"github.com/KirkDiggler/rpg-loadout/internal/notifications"
)

// session is one possessed character: its inventory, slots and grants.
// Every field below mu is guarded by it.
type session struct {
	mu       sync.Mutex
	playerID string

	store      *inventory.Store
	slots      *inventory.SlotTable
	system     abilities.System
	reconciler *abilities.Reconciler
	level      *abilities.LevelController

	unsubscribe []func()
	// changed is set by notifications during the current call
	changed bool
	// unsaved is set until the latest change reached storage
	unsaved bool
	closed  bool
}

func (o *orchestrator) newSession(playerID, characterID string) (*session, error) {
	slots, err := inventory.NewSlotTable(&inventory.SlotTableConfig{
		Layout:  o.data.Layout,
		Catalog: o.data.Catalog,
	})
	if err != nil {
		return nil, err
	}

	store, err := inventory.NewStore(&inventory.StoreConfig{
		Catalog:      o.data.Catalog,
		Slots:        slots,
		Capacity:     o.capacity,
		ReserveSlack: o.reserveSlack,
	})
	if err != nil {
		return nil, err
	}

	system := o.newSystem(playerID)
	reconciler, err := abilities.NewReconciler(&abilities.ReconcilerConfig{
		System:   system,
		Catalog:  o.data.Catalog,
		Slots:    slots,
		Owner:    abilities.CharacterRef(characterID),
		Defaults: o.data.SlotDefaults,
	})
	if err != nil {
		return nil, err
	}

	level, err := abilities.NewLevelController(&abilities.LevelControllerConfig{
		System:           system,
		Reconciler:       reconciler,
		StartupAbilities: o.data.StartupAbilities,
		Passives:         o.data.Passives,
	})
	if err != nil {
		return nil, err
	}

	s := &session{
		playerID:   playerID,
		store:      store,
		slots:      slots,
		system:     system,
		reconciler: reconciler,
		level:      level,
	}

	markChanged := inventory.ListenerFuncs{
		OnInventoryItemChanged: func(bool, equipment.ItemID) { s.changed = true },
		OnSlottedItemChanged:   func(equipment.SlotKey, equipment.ItemID) { s.changed = true },
	}
	s.unsubscribe = append(s.unsubscribe, slots.Notifier().Subscribe(markChanged))

	if o.bus != nil {
		bridge, err := notifications.NewBridge(&notifications.BridgeConfig{Bus: o.bus, PlayerID: playerID})
		if err != nil {
			return nil, err
		}
		s.unsubscribe = append(s.unsubscribe, slots.Notifier().Subscribe(bridge))
	}

	return s, nil
}

// close detaches listeners; the caller holds mu
func (s *session) close() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
	s.closed = true
}
