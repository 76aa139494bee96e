package notifications_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
	"github.com/KirkDiggler/rpg-loadout/internal/notifications"
	"github.com/KirkDiggler/rpg-loadout/internal/testutils"
)

type BridgeTestSuite struct {
	suite.Suite
	bus      events.EventBus
	received []events.Event
	store    *inventory.Store
	slots    *inventory.SlotTable
}

func TestBridgeSuite(t *testing.T) {
	suite.Run(t, new(BridgeTestSuite))
}

func (s *BridgeTestSuite) SetupTest() {
	s.bus = events.NewBus()
	s.received = nil
	for _, eventType := range []string{
		notifications.EventItemAdded,
		notifications.EventItemRemoved,
		notifications.EventSlotChanged,
		notifications.EventInventoryLoaded,
	} {
		s.bus.SubscribeFunc(eventType, 0, func(_ context.Context, e events.Event) error {
			s.received = append(s.received, e)
			return nil
		})
	}

	bridge, err := notifications.NewBridge(&notifications.BridgeConfig{
		Bus:      s.bus,
		PlayerID: testutils.TestPlayerID,
	})
	s.Require().NoError(err)

	s.store, s.slots = testutils.CreateTestInventory(s.T(), 20, inventory.DefaultReserveSlack)
	s.slots.Notifier().Subscribe(bridge)
}

func (s *BridgeTestSuite) TestPublishesInventoryChanges() {
	s.Require().NoError(s.store.AddItem(testutils.ItemSword, 1, 1))
	s.Require().NoError(s.slots.Assign(equipment.NewSlotKey(equipment.CategoryWeapon, 0), testutils.ItemSword))
	s.Require().NoError(s.store.RemoveItem(testutils.ItemSword, 0))

	s.Require().Len(s.received, 4)

	s.Equal(notifications.EventItemAdded, s.received[0].Type())
	id, ok := notifications.ItemID(s.received[0])
	s.True(ok)
	s.Equal(testutils.ItemSword, id)
	s.Equal(testutils.TestPlayerID, s.received[0].Source().GetID())

	s.Equal(notifications.EventSlotChanged, s.received[1].Type())
	key, ok := notifications.Slot(s.received[1])
	s.True(ok)
	s.Equal(equipment.NewSlotKey(equipment.CategoryWeapon, 0), key)

	s.Equal(notifications.EventSlotChanged, s.received[2].Type())
	id, _ = notifications.ItemID(s.received[2])
	s.True(id.IsEmpty(), "cleared slot carries the empty id")

	s.Equal(notifications.EventItemRemoved, s.received[3].Type())
}

func (s *BridgeTestSuite) TestPublishesLoaded() {
	s.slots.Notifier().InventoryLoaded()

	s.Require().Len(s.received, 1)
	s.Equal(notifications.EventInventoryLoaded, s.received[0].Type())
	_, ok := notifications.ItemID(s.received[0])
	s.False(ok)
}

func (s *BridgeTestSuite) TestConfigValidation() {
	_, err := notifications.NewBridge(&notifications.BridgeConfig{Bus: s.bus})
	s.True(errors.IsInvalidArgument(err))

	_, err = notifications.NewBridge(nil)
	s.True(errors.IsInvalidArgument(err))
}
