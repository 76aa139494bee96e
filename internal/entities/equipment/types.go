// Package equipment holds the value types shared by the inventory, slot and
// ability layers.
package equipment

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemID is the stable identifier of an item definition in the catalog.
// The empty ItemID means "no item".
type ItemID string

// String returns the string representation of the item id
func (id ItemID) String() string {
	return string(id)
}

// IsEmpty reports whether the id refers to no item
func (id ItemID) IsEmpty() bool {
	return id == ""
}

// Category groups items and slots (weapon, skill, potion, ...)
type Category string

// Default categories of the stock game data
const (
	CategoryWeapon Category = "weapon"
	CategorySkill  Category = "skill"
	CategoryPotion Category = "potion"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// AbilityID identifies a grantable ability class
type AbilityID string

// EffectID identifies a passive effect class
type EffectID string

// Stack is one inventory entry: an item id with a count and a level.
// Stacks are values; the inventory replaces them instead of mutating in place.
type Stack struct {
	ItemID ItemID `json:"item_id"`
	Count  int    `json:"count"`
	Level  int    `json:"level"`
}

// SlotKey addresses one capacity-one binding point
type SlotKey struct {
	Category Category `json:"category"`
	Index    int      `json:"index"`
}

// NewSlotKey creates a slot key
func NewSlotKey(category Category, index int) SlotKey {
	return SlotKey{Category: category, Index: index}
}

// String renders the key as "category:index"
func (k SlotKey) String() string {
	return fmt.Sprintf("%s:%d", k.Category, k.Index)
}

// MarshalText lets SlotKey be used as a JSON object key
func (k SlotKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the "category:index" form
func (k *SlotKey) UnmarshalText(text []byte) error {
	parsed, err := ParseSlotKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSlotKey parses a "category:index" string
func ParseSlotKey(s string) (SlotKey, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return SlotKey{}, fmt.Errorf("invalid slot key %q", s)
	}

	index, err := strconv.Atoi(s[i+1:])
	if err != nil || index < 0 {
		return SlotKey{}, fmt.Errorf("invalid slot index in %q", s)
	}

	return SlotKey{Category: Category(s[:i]), Index: index}, nil
}
