package inventory

import (
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

// CategorySlots configures how many slots a category owns
type CategorySlots struct {
	Category equipment.Category `yaml:"category" mapstructure:"category"`
	Count    int                `yaml:"count" mapstructure:"count"`
	// AutoAssign lets newly acquired items of this category fill an empty slot
	AutoAssign bool `yaml:"auto_assign" mapstructure:"auto_assign"`
}

// LayoutConfig describes the fixed slot set of a session
type LayoutConfig struct {
	Categories []CategorySlots `yaml:"categories" mapstructure:"categories"`
	// PrimaryCategory grants abilities at the item's own level instead of the
	// character level
	PrimaryCategory equipment.Category `yaml:"primary_category" mapstructure:"primary_category"`
}

// DefaultLayoutConfig is one weapon, five skills and four potions
func DefaultLayoutConfig() *LayoutConfig {
	return &LayoutConfig{
		Categories: []CategorySlots{
			{Category: equipment.CategoryWeapon, Count: 1, AutoAssign: true},
			{Category: equipment.CategorySkill, Count: 5},
			{Category: equipment.CategoryPotion, Count: 4},
		},
		PrimaryCategory: equipment.CategoryWeapon,
	}
}

// Validate validates the LayoutConfig.
func (cfg *LayoutConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("layout config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	seen := make(map[equipment.Category]bool)
	for _, c := range cfg.Categories {
		field := "categories." + c.Category.String()
		if c.Category == "" {
			vb.RequiredField("categories.category")
			continue
		}
		if seen[c.Category] {
			vb.Field(field, "is declared twice")
		}
		seen[c.Category] = true
		errors.ValidatePositive(field+".count", c.Count, vb)
	}
	return vb.Build()
}

// Layout is the immutable set of valid slot keys. The slot area is the
// leading region of the inventory where slotted items are sorted, one index
// per slot in category order.
type Layout struct {
	categories []CategorySlots
	primary    equipment.Category
	offsets    map[equipment.Category]int
	byCategory map[equipment.Category]CategorySlots
	size       int
}

// NewLayout creates a layout from configuration
func NewLayout(cfg *LayoutConfig) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := &Layout{
		categories: append([]CategorySlots(nil), cfg.Categories...),
		primary:    cfg.PrimaryCategory,
		offsets:    make(map[equipment.Category]int, len(cfg.Categories)),
		byCategory: make(map[equipment.Category]CategorySlots, len(cfg.Categories)),
	}
	for _, c := range cfg.Categories {
		l.offsets[c.Category] = l.size
		l.byCategory[c.Category] = c
		l.size += c.Count
	}
	return l, nil
}

// Keys returns every valid key in category order, then ascending index
func (l *Layout) Keys() []equipment.SlotKey {
	keys := make([]equipment.SlotKey, 0, l.size)
	for _, c := range l.categories {
		for i := 0; i < c.Count; i++ {
			keys = append(keys, equipment.NewSlotKey(c.Category, i))
		}
	}
	return keys
}

// KeysFor returns the keys of one category in ascending index order
func (l *Layout) KeysFor(category equipment.Category) []equipment.SlotKey {
	c, ok := l.byCategory[category]
	if !ok {
		return nil
	}
	keys := make([]equipment.SlotKey, 0, c.Count)
	for i := 0; i < c.Count; i++ {
		keys = append(keys, equipment.NewSlotKey(category, i))
	}
	return keys
}

// Valid reports whether the key belongs to this layout
func (l *Layout) Valid(key equipment.SlotKey) bool {
	c, ok := l.byCategory[key.Category]
	return ok && key.Index >= 0 && key.Index < c.Count
}

// AutoAssign reports whether the category auto-fills empty slots
func (l *Layout) AutoAssign(category equipment.Category) bool {
	return l.byCategory[category].AutoAssign
}

// IsPrimary reports whether the category is primary equipment
func (l *Layout) IsPrimary(category equipment.Category) bool {
	return l.primary != "" && category == l.primary
}

// Size is the total number of slots, which is also the slot area length
func (l *Layout) Size() int {
	return l.size
}

// AreaIndex returns the inventory index reserved for a slot, or -1
func (l *Layout) AreaIndex(key equipment.SlotKey) int {
	if !l.Valid(key) {
		return -1
	}
	return l.offsets[key.Category] + key.Index
}
