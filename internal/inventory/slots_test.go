package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
	"github.com/KirkDiggler/rpg-loadout/internal/testutils"
)

var (
	weapon0 = equipment.NewSlotKey(equipment.CategoryWeapon, 0)
	skill0  = equipment.NewSlotKey(equipment.CategorySkill, 0)
	skill1  = equipment.NewSlotKey(equipment.CategorySkill, 1)
	potion0 = equipment.NewSlotKey(equipment.CategoryPotion, 0)
)

type SlotTableTestSuite struct {
	suite.Suite
	slots    *inventory.SlotTable
	recorder *testutils.RecordingListener
}

func TestSlotTableSuite(t *testing.T) {
	suite.Run(t, new(SlotTableTestSuite))
}

func (s *SlotTableTestSuite) SetupTest() {
	_, s.slots = testutils.CreateTestInventory(s.T(), 20, inventory.DefaultReserveSlack)
	s.recorder = &testutils.RecordingListener{}
	s.slots.Notifier().Subscribe(s.recorder)
}

func (s *SlotTableTestSuite) TestNewSlotTableStartsEmpty() {
	assignments := s.slots.Assignments()
	s.Len(assignments, 10)
	for key, id := range assignments {
		s.True(id.IsEmpty(), "slot %s should be empty", key)
	}
}

func (s *SlotTableTestSuite) TestNewSlotTableValidation() {
	_, err := inventory.NewSlotTable(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = inventory.NewSlotTable(&inventory.SlotTableConfig{Layout: testutils.CreateTestLayout(s.T())})
	s.True(errors.IsInvalidArgument(err))
}

func (s *SlotTableTestSuite) TestAssign() {
	s.Require().NoError(s.slots.Assign(skill0, testutils.ItemFireball))

	id, ok := s.slots.Get(skill0)
	s.True(ok)
	s.Equal(testutils.ItemFireball, id)
	s.Equal([]string{"slot:skill:0=skill_fireball"}, s.recorder.Events)
}

func (s *SlotTableTestSuite) TestAssignAllowsSameItemInSeveralSlots() {
	s.Require().NoError(s.slots.Assign(skill0, testutils.ItemFireball))
	s.Require().NoError(s.slots.Assign(skill1, testutils.ItemFireball))

	s.Equal([]equipment.ItemID{testutils.ItemFireball, testutils.ItemFireball},
		s.slots.Items(equipment.CategorySkill, false))
}

func (s *SlotTableTestSuite) TestAssignSameItemIsSilent() {
	s.Require().NoError(s.slots.Assign(skill0, testutils.ItemFireball))
	s.Require().NoError(s.slots.Assign(skill0, testutils.ItemFireball))
	s.Require().NoError(s.slots.Assign(skill1, ""))

	s.Equal([]string{"slot:skill:0=skill_fireball"}, s.recorder.Events)
}

func (s *SlotTableTestSuite) TestAssignEmptyClears() {
	s.Require().NoError(s.slots.Assign(potion0, testutils.ItemHealthPot))
	s.Require().NoError(s.slots.Assign(potion0, ""))

	_, ok := s.slots.Get(potion0)
	s.False(ok)
}

func (s *SlotTableTestSuite) TestAssignInvalidKey() {
	testCases := []struct {
		name string
		key  equipment.SlotKey
	}{
		{name: "index past category", key: equipment.NewSlotKey(equipment.CategoryWeapon, 1)},
		{name: "negative index", key: equipment.NewSlotKey(equipment.CategorySkill, -1)},
		{name: "unknown category", key: equipment.NewSlotKey("trinket", 0)},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := s.slots.Assign(tc.key, testutils.ItemSword)
			s.True(errors.IsNotFound(err))
			s.Empty(s.recorder.Events)
		})
	}
}

func (s *SlotTableTestSuite) TestAutoFill() {
	s.True(s.slots.AutoFill(testutils.ItemSword))
	id, _ := s.slots.Get(weapon0)
	s.Equal(testutils.ItemSword, id)

	s.False(s.slots.AutoFill(testutils.ItemSword), "already slotted in its category")
	s.False(s.slots.AutoFill(testutils.ItemAxe), "no empty weapon slot")
	s.False(s.slots.AutoFill(testutils.ItemFireball), "skills do not auto-assign")
	s.False(s.slots.AutoFill(testutils.ItemUnknown))

	s.Equal([]string{"slot:weapon:0=weapon_sword"}, s.recorder.Events)
}

func (s *SlotTableTestSuite) TestFillEmptySlots() {
	s.True(s.slots.FillEmptySlots([]equipment.ItemID{testutils.ItemHealthPot, testutils.ItemAxe, testutils.ItemSword}))

	id, _ := s.slots.Get(weapon0)
	s.Equal(testutils.ItemAxe, id)
	s.False(s.slots.FillEmptySlots([]equipment.ItemID{testutils.ItemSword}))
}

func (s *SlotTableTestSuite) TestClearReferencesTo() {
	s.Require().NoError(s.slots.Assign(skill0, testutils.ItemHeal))
	s.Require().NoError(s.slots.Assign(skill1, testutils.ItemHeal))
	s.recorder.Reset()

	cleared := s.slots.ClearReferencesTo(testutils.ItemHeal)

	s.Equal([]equipment.SlotKey{skill0, skill1}, cleared)
	s.Equal([]string{"slot:skill:0=", "slot:skill:1="}, s.recorder.Events)
	s.Empty(s.slots.ClearReferencesTo(testutils.ItemHeal))
	s.Empty(s.slots.ClearReferencesTo(""))
}

func (s *SlotTableTestSuite) TestPrune() {
	s.Require().NoError(s.slots.Assign(weapon0, testutils.ItemSword))
	s.Require().NoError(s.slots.Assign(skill0, testutils.ItemFireball))
	s.Require().NoError(s.slots.Assign(potion0, testutils.ItemFireball))

	cleared := s.slots.Prune(func(id equipment.ItemID) bool { return id == testutils.ItemSword })

	s.ElementsMatch([]equipment.SlotKey{skill0, potion0}, cleared)
	s.True(s.slots.IsSlotted(testutils.ItemSword))
	s.False(s.slots.IsSlotted(testutils.ItemFireball))
}

func (s *SlotTableTestSuite) TestItemsIncludeEmpty() {
	s.Require().NoError(s.slots.Assign(skill1, testutils.ItemHeal))

	s.Equal([]equipment.ItemID{"", testutils.ItemHeal, "", "", ""},
		s.slots.Items(equipment.CategorySkill, true))
	s.Equal([]equipment.ItemID{testutils.ItemHeal}, s.slots.Items("", false))
}

func (s *SlotTableTestSuite) TestRestore() {
	restored := s.slots.Restore(map[equipment.SlotKey]equipment.ItemID{
		weapon0: testutils.ItemSword,
		skill0:  "",
		equipment.NewSlotKey(equipment.CategorySkill, 7): testutils.ItemHeal,
	})

	s.Equal(1, restored)
	s.Len(s.slots.Assignments(), 10)
	s.True(s.slots.IsSlotted(testutils.ItemSword))
	s.False(s.slots.IsSlotted(testutils.ItemHeal))
	s.Empty(s.recorder.Events)
}
