// Package abilities derives the abilities implied by slotted items and keeps
// the live grants of an ability subsystem in step with them.
//
// The Reconciler owns the per-slot handle bookkeeping and the LevelController
// owns the startup grants and passive effects of a character level. Neither
// is safe for concurrent use; the session that owns them serializes calls.
package abilities

import (
	"fmt"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
)

// ObjectKind tells what kind of object sourced a grant
type ObjectKind string

// Object kinds
const (
	ObjectCharacter ObjectKind = "character"
	ObjectItem      ObjectKind = "item"
)

// ObjectRef identifies the object a grant or effect came from. It is the key
// used to remove everything a source granted.
type ObjectRef struct {
	Kind ObjectKind `json:"kind"`
	ID   string     `json:"id"`
}

// CharacterRef references a character
func CharacterRef(id string) ObjectRef {
	return ObjectRef{Kind: ObjectCharacter, ID: id}
}

// ItemRef references an item definition
func ItemRef(id equipment.ItemID) ObjectRef {
	return ObjectRef{Kind: ObjectItem, ID: id.String()}
}

// String renders the reference as "kind/id"
func (r ObjectRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}

// IsZero reports whether the reference is unset
func (r ObjectRef) IsZero() bool {
	return r.Kind == "" && r.ID == ""
}

// GrantSpec describes one ability to grant
type GrantSpec struct {
	// SourceSlot is nil for grants that do not come from a slot
	SourceSlot *equipment.SlotKey
	Ability    equipment.AbilityID
	Level      int
	Source     ObjectRef
}

// Handle is the opaque token the subsystem issues for a live grant
type Handle string

// Grant is a live grant as the subsystem reports it
type Grant interface {
	Handle() Handle
	GrantSpec() GrantSpec
	SourceObject() ObjectRef
}

// ActiveGrant is the value implementation of Grant
type ActiveGrant struct {
	ID   Handle
	Spec GrantSpec
}

// Handle implements Grant
func (g ActiveGrant) Handle() Handle {
	return g.ID
}

// GrantSpec implements Grant
func (g ActiveGrant) GrantSpec() GrantSpec {
	return g.Spec
}

// SourceObject implements Grant
func (g ActiveGrant) SourceObject() ObjectRef {
	return g.Spec.Source
}

// EffectSpec describes a passive effect applied to the owner
type EffectSpec struct {
	Effect equipment.EffectID
	Level  int
	Source ObjectRef
}

// EffectHandle identifies an applied effect
type EffectHandle string

// grantKey is the identity compared when diffing a slot
type grantKey struct {
	ability equipment.AbilityID
	source  ObjectRef
}

func keyOf(spec GrantSpec) grantKey {
	return grantKey{ability: spec.Ability, source: spec.Source}
}
