package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/gamedata"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
)

// Item ids of the test catalog
const (
	ItemSword       equipment.ItemID = "weapon_sword"
	ItemAxe         equipment.ItemID = "weapon_axe"
	ItemFireball    equipment.ItemID = "skill_fireball"
	ItemHeal        equipment.ItemID = "skill_heal"
	ItemHealthPot   equipment.ItemID = "potion_health"
	ItemManaPot     equipment.ItemID = "potion_mana"
	ItemUnknown     equipment.ItemID = "relic_unknown"
	TestPlayerID                     = "player-test-001"
	TestCharacterID                  = "character-test-001"
)

// TestItems returns a small catalog: single-unit weapons and skills, stackable
// potions capped at 10
func TestItems() []*catalog.Item {
	return []*catalog.Item{
		{
			ID:       ItemSword,
			Name:     "Sword",
			Category: equipment.CategoryWeapon,
			MaxCount: 1,
			MaxLevel: 5,
			Abilities: map[string][]catalog.AbilityDefinition{
				"melee": {{Ability: "ability_slash", Level: 3}, {Ability: "ability_parry", Level: 2}},
			},
		},
		{
			ID:       ItemAxe,
			Name:     "Axe",
			Category: equipment.CategoryWeapon,
			MaxCount: 1,
			MaxLevel: 5,
			Abilities: map[string][]catalog.AbilityDefinition{
				"melee": {{Ability: "ability_chop", Level: 4}},
			},
		},
		{
			ID:       ItemFireball,
			Name:     "Fireball",
			Category: equipment.CategorySkill,
			MaxCount: 1,
			MaxLevel: 10,
			Abilities: map[string][]catalog.AbilityDefinition{
				"cast": {{Ability: "ability_fireball", Level: 1}},
			},
		},
		{ID: ItemHeal, Name: "Heal", Category: equipment.CategorySkill, MaxCount: 1, MaxLevel: 10},
		{ID: ItemHealthPot, Name: "Health Potion", Category: equipment.CategoryPotion, MaxCount: 10, MaxLevel: 3},
		{ID: ItemManaPot, Name: "Mana Potion", Category: equipment.CategoryPotion, MaxCount: 10, MaxLevel: 3},
	}
}

// CreateTestCatalog builds the static test catalog
func CreateTestCatalog(t *testing.T) *catalog.Static {
	c, err := catalog.NewStatic(TestItems())
	require.NoError(t, err, "failed to create test catalog")
	return c
}

// CreateTestLayout builds the default slot layout
func CreateTestLayout(t *testing.T) *inventory.Layout {
	l, err := inventory.NewLayout(inventory.DefaultLayoutConfig())
	require.NoError(t, err, "failed to create test layout")
	return l
}

// CreateTestInventory wires a slot table and store over the test catalog
func CreateTestInventory(t *testing.T, capacity, reserveSlack int) (*inventory.Store, *inventory.SlotTable) {
	c := CreateTestCatalog(t)

	slots, err := inventory.NewSlotTable(&inventory.SlotTableConfig{
		Layout:  CreateTestLayout(t),
		Catalog: c,
	})
	require.NoError(t, err, "failed to create slot table")

	store, err := inventory.NewStore(&inventory.StoreConfig{
		Catalog:      c,
		Slots:        slots,
		Capacity:     capacity,
		ReserveSlack: reserveSlack,
	})
	require.NoError(t, err, "failed to create store")

	return store, slots
}

// Default and startup grants of the test game data
const (
	AbilityUnarmed  equipment.AbilityID = "ability_unarmed_strike"
	AbilityInteract equipment.AbilityID = "ability_interact"
	EffectRegen     equipment.EffectID  = "effect_regen"
)

// CreateTestGameData bundles the test catalog and layout with one weapon
// slot default, one startup ability and one passive
func CreateTestGameData(t *testing.T) *gamedata.GameData {
	return &gamedata.GameData{
		Catalog: CreateTestCatalog(t),
		Layout:  CreateTestLayout(t),
		SlotDefaults: map[equipment.SlotKey][]equipment.AbilityID{
			equipment.NewSlotKey(equipment.CategoryWeapon, 0): {AbilityUnarmed},
		},
		StartupAbilities: []equipment.AbilityID{AbilityInteract},
		Passives:         []equipment.EffectID{EffectRegen},
	}
}

// RecordingListener collects notifications as readable strings
type RecordingListener struct {
	Events []string
}

// InventoryItemChanged implements inventory.Listener
func (r *RecordingListener) InventoryItemChanged(added bool, id equipment.ItemID) {
	if added {
		r.Events = append(r.Events, "added:"+id.String())
		return
	}
	r.Events = append(r.Events, "removed:"+id.String())
}

// SlottedItemChanged implements inventory.Listener
func (r *RecordingListener) SlottedItemChanged(key equipment.SlotKey, id equipment.ItemID) {
	r.Events = append(r.Events, "slot:"+key.String()+"="+id.String())
}

// InventoryLoaded implements inventory.Listener
func (r *RecordingListener) InventoryLoaded() {
	r.Events = append(r.Events, "loaded")
}

// Reset forgets recorded events
func (r *RecordingListener) Reset() {
	r.Events = nil
}
