package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
)

func TestDefaultLayout(t *testing.T) {
	layout, err := inventory.NewLayout(inventory.DefaultLayoutConfig())
	require.NoError(t, err)

	assert.Equal(t, 10, layout.Size())
	keys := layout.Keys()
	require.Len(t, keys, 10)
	assert.Equal(t, equipment.NewSlotKey(equipment.CategoryWeapon, 0), keys[0])
	assert.Equal(t, equipment.NewSlotKey(equipment.CategorySkill, 0), keys[1])
	assert.Equal(t, equipment.NewSlotKey(equipment.CategoryPotion, 3), keys[9])

	assert.Equal(t, 0, layout.AreaIndex(equipment.NewSlotKey(equipment.CategoryWeapon, 0)))
	assert.Equal(t, 1, layout.AreaIndex(equipment.NewSlotKey(equipment.CategorySkill, 0)))
	assert.Equal(t, 6, layout.AreaIndex(equipment.NewSlotKey(equipment.CategoryPotion, 0)))
	assert.Equal(t, -1, layout.AreaIndex(equipment.NewSlotKey(equipment.CategoryPotion, 4)))

	assert.True(t, layout.AutoAssign(equipment.CategoryWeapon))
	assert.False(t, layout.AutoAssign(equipment.CategorySkill))
	assert.True(t, layout.IsPrimary(equipment.CategoryWeapon))
	assert.False(t, layout.IsPrimary(equipment.CategoryPotion))
	assert.Nil(t, layout.KeysFor("trinket"))
}

func TestLayoutConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *inventory.LayoutConfig
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "default", cfg: inventory.DefaultLayoutConfig()},
		{
			name: "duplicate category",
			cfg: &inventory.LayoutConfig{Categories: []inventory.CategorySlots{
				{Category: equipment.CategorySkill, Count: 1},
				{Category: equipment.CategorySkill, Count: 2},
			}},
			wantErr: true,
		},
		{
			name:    "zero slots",
			cfg:     &inventory.LayoutConfig{Categories: []inventory.CategorySlots{{Category: equipment.CategorySkill}}},
			wantErr: true,
		},
		{
			name:    "missing category",
			cfg:     &inventory.LayoutConfig{Categories: []inventory.CategorySlots{{Count: 1}}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := inventory.NewLayout(tc.cfg)
			if tc.wantErr {
				assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSlotKeyText(t *testing.T) {
	key, err := equipment.ParseSlotKey("potion:3")
	require.NoError(t, err)
	assert.Equal(t, equipment.NewSlotKey(equipment.CategoryPotion, 3), key)

	for _, bad := range []string{"", "potion", ":1", "potion:", "potion:-1", "potion:x"} {
		_, err := equipment.ParseSlotKey(bad)
		assert.Error(t, err, bad)
	}
}
