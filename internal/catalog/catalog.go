// Package catalog resolves item identifiers to static item metadata.
package catalog

import (
	"sort"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

// Catalog is the read-only item metadata resolver.
type Catalog interface {
	// Resolve returns the metadata for an item
	// Returns errors.NotFound for unknown ids
	Resolve(id equipment.ItemID) (*Item, error)
}

// AbilityDefinition is one ability an item grants while slotted
type AbilityDefinition struct {
	Ability equipment.AbilityID `yaml:"ability" json:"ability"`
	// Level is used instead of the character level for primary equipment
	Level int `yaml:"level" json:"level"`
}

// Item is the static definition of an item.
// MaxCount and MaxLevel of zero or less mean unbounded.
type Item struct {
	ID       equipment.ItemID   `yaml:"id" json:"id"`
	Name     string             `yaml:"name" json:"name"`
	Category equipment.Category `yaml:"category" json:"category"`
	MaxCount int                `yaml:"max_count" json:"max_count"`
	MaxLevel int                `yaml:"max_level" json:"max_level"`

	// Abilities maps an effect container tag to the abilities it grants
	Abilities map[string][]AbilityDefinition `yaml:"abilities" json:"abilities,omitempty"`
}

// ClampCount caps a count at MaxCount
func (i *Item) ClampCount(count int) int {
	if i.MaxCount > 0 && count > i.MaxCount {
		return i.MaxCount
	}
	return count
}

// ClampLevel caps a level at MaxLevel
func (i *Item) ClampLevel(level int) int {
	if i.MaxLevel > 0 && level > i.MaxLevel {
		return i.MaxLevel
	}
	return level
}

// AbilityDefinitions flattens the container map in tag order, keeping the
// first definition of each ability.
func (i *Item) AbilityDefinitions() []AbilityDefinition {
	tags := make([]string, 0, len(i.Abilities))
	for tag := range i.Abilities {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	seen := make(map[equipment.AbilityID]bool)
	var defs []AbilityDefinition
	for _, tag := range tags {
		for _, def := range i.Abilities[tag] {
			if def.Ability == "" || seen[def.Ability] {
				continue
			}
			seen[def.Ability] = true
			defs = append(defs, def)
		}
	}
	return defs
}

// Static is an in-memory catalog built once from game data
type Static struct {
	items map[equipment.ItemID]*Item
}

// NewStatic builds a catalog from item definitions
func NewStatic(items []*Item) (*Static, error) {
	byID := make(map[equipment.ItemID]*Item, len(items))
	for _, item := range items {
		if item == nil {
			return nil, errors.InvalidArgument("item definition cannot be nil")
		}

		vb := errors.NewValidationBuilder()
		errors.ValidateRequired("id", item.ID.String(), vb)
		errors.ValidateRequired("category", item.Category.String(), vb)
		if err := vb.Build(); err != nil {
			return nil, errors.Wrapf(err, "invalid item definition %q", item.ID)
		}

		if _, exists := byID[item.ID]; exists {
			return nil, errors.AlreadyExistsf("item %s defined twice", item.ID)
		}
		byID[item.ID] = item
	}

	return &Static{items: byID}, nil
}

// Resolve implements Catalog
func (s *Static) Resolve(id equipment.ItemID) (*Item, error) {
	if id.IsEmpty() {
		return nil, errors.InvalidArgument("item id cannot be empty")
	}

	item, ok := s.items[id]
	if !ok {
		return nil, errors.NotFoundf("item %s not found", id).WithMeta("item_id", id.String())
	}
	return item, nil
}

// Items returns every definition sorted by id
func (s *Static) Items() []*Item {
	out := make([]*Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
