// Package gamedata loads the item catalog, slot layout and ability defaults
// from YAML.
package gamedata

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
)

//go:embed default.yaml
var defaultData []byte

// file is the YAML document layout
type file struct {
	Layout           *inventory.LayoutConfig          `yaml:"layout"`
	SlotDefaults     map[string][]equipment.AbilityID `yaml:"slot_defaults"`
	StartupAbilities []equipment.AbilityID            `yaml:"startup_abilities"`
	Passives         []equipment.EffectID             `yaml:"passives"`
	Items            []*catalog.Item                  `yaml:"items"`
}

// GameData is everything a session needs that does not change at runtime
type GameData struct {
	Catalog          *catalog.Static
	Layout           *inventory.Layout
	SlotDefaults     map[equipment.SlotKey][]equipment.AbilityID
	StartupAbilities []equipment.AbilityID
	Passives         []equipment.EffectID
}

// Default returns the built-in game data
func Default() (*GameData, error) {
	return Parse(defaultData)
}

// Load reads game data from a YAML file; the empty path means Default
func Load(path string) (*GameData, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("game data file %s not found", path)
		}
		return nil, errors.Wrapf(err, "failed to read game data file %s", path)
	}

	gd, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid game data file %s", path)
	}
	return gd, nil
}

// Parse builds game data from a YAML document. A missing layout section uses
// the default layout.
func Parse(data []byte) (*GameData, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse game data")
	}

	layoutCfg := f.Layout
	if layoutCfg == nil {
		layoutCfg = inventory.DefaultLayoutConfig()
	}
	layout, err := inventory.NewLayout(layoutCfg)
	if err != nil {
		return nil, errors.Wrap(err, "invalid layout")
	}

	items, err := catalog.NewStatic(f.Items)
	if err != nil {
		return nil, err
	}

	defaults := make(map[equipment.SlotKey][]equipment.AbilityID, len(f.SlotDefaults))
	for raw, abilities := range f.SlotDefaults {
		key, err := equipment.ParseSlotKey(raw)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid slot_defaults key")
		}
		if !layout.Valid(key) {
			return nil, errors.InvalidArgumentf("slot_defaults key %s is not part of the layout", key)
		}
		defaults[key] = abilities
	}

	return &GameData{
		Catalog:          items,
		Layout:           layout,
		SlotDefaults:     defaults,
		StartupAbilities: f.StartupAbilities,
		Passives:         f.Passives,
	}, nil
}
