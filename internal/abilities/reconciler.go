package abilities

import (
	"log/slog"

	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
)

// Failure is a grant or effect the subsystem refused
type Failure struct {
	// Slot is nil for startup grants and passives
	Slot    *equipment.SlotKey
	Ability equipment.AbilityID
	Effect  equipment.EffectID
	Err     error
}

// Result summarizes a reconciliation pass. Failures are not fatal; the pass
// continues past them.
type Result struct {
	Granted  int
	Revoked  int
	Dropped  int
	Failures []Failure
}

// Changed reports whether the pass touched the subsystem
func (r Result) Changed() bool {
	return r.Granted > 0 || r.Revoked > 0 || r.Dropped > 0
}

// Merge adds another result into this one
func (r *Result) Merge(other Result) {
	r.Granted += other.Granted
	r.Revoked += other.Revoked
	r.Dropped += other.Dropped
	r.Failures = append(r.Failures, other.Failures...)
}

// ReconcilerConfig contains the dependencies of a Reconciler
type ReconcilerConfig struct {
	System  System
	Catalog catalog.Catalog
	Slots   *inventory.SlotTable
	// Owner sources the default slot abilities
	Owner ObjectRef
	// Defaults are granted for a slot whose item defines no abilities
	Defaults map[equipment.SlotKey][]equipment.AbilityID
}

// Validate validates the ReconcilerConfig.
func (cfg *ReconcilerConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.System == nil {
		vb.RequiredField("System")
	}
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if cfg.Slots == nil {
		vb.RequiredField("Slots")
	}
	if cfg.Owner.IsZero() {
		vb.RequiredField("Owner")
	}
	if cfg.Slots != nil {
		for key := range cfg.Defaults {
			if !cfg.Slots.Layout().Valid(key) {
				vb.InvalidField("Defaults", "slot "+key.String()+" is not part of the layout")
			}
		}
	}
	return vb.Build()
}

// Reconciler keeps the grants of every slot equal to what the slot implies
type Reconciler struct {
	system   System
	catalog  catalog.Catalog
	slots    *inventory.SlotTable
	owner    ObjectRef
	defaults map[equipment.SlotKey][]equipment.AbilityID

	level   int
	tracked map[equipment.SlotKey][]Handle
}

// NewReconciler creates a reconciler tracking nothing at character level 1
func NewReconciler(cfg *ReconcilerConfig) (*Reconciler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	defaults := make(map[equipment.SlotKey][]equipment.AbilityID, len(cfg.Defaults))
	for key, ids := range cfg.Defaults {
		defaults[key] = append([]equipment.AbilityID(nil), ids...)
	}

	return &Reconciler{
		system:   cfg.System,
		catalog:  cfg.Catalog,
		slots:    cfg.Slots,
		owner:    cfg.Owner,
		defaults: defaults,
		level:    1,
		tracked:  make(map[equipment.SlotKey][]Handle),
	}, nil
}

// Owner returns the character the defaults are sourced from
func (r *Reconciler) Owner() ObjectRef {
	return r.owner
}

// CharacterLevel is the level used for non-primary grants
func (r *Reconciler) CharacterLevel() int {
	return r.level
}

// SetCharacterLevel changes the level of future grants. Existing grants are
// left alone; a level change goes through the LevelController.
func (r *Reconciler) SetCharacterLevel(level int) {
	if level > 0 {
		r.level = level
	}
}

// Desired derives the grants a slot should hold right now
func (r *Reconciler) Desired(key equipment.SlotKey) []GrantSpec {
	slot := key

	if id, ok := r.slots.Get(key); ok {
		item, err := r.catalog.Resolve(id)
		if err == nil {
			if defs := item.AbilityDefinitions(); len(defs) > 0 {
				primary := r.slots.Layout().IsPrimary(key.Category)
				specs := make([]GrantSpec, 0, len(defs))
				for _, def := range defs {
					level := r.level
					if primary && def.Level > 0 {
						level = def.Level
					}
					specs = append(specs, GrantSpec{
						SourceSlot: &slot,
						Ability:    def.Ability,
						Level:      level,
						Source:     ItemRef(id),
					})
				}
				return specs
			}
		}
	}

	defaults := r.defaults[key]
	specs := make([]GrantSpec, 0, len(defaults))
	for _, ability := range defaults {
		specs = append(specs, GrantSpec{
			SourceSlot: &slot,
			Ability:    ability,
			Level:      r.level,
			Source:     r.owner,
		})
	}
	return specs
}

// Reconcile runs ReconcileSlot over every slot of the layout
func (r *Reconciler) Reconcile() Result {
	var res Result
	for _, key := range r.slots.Layout().Keys() {
		res.Merge(r.ReconcileSlot(key))
	}
	return res
}

// ReconcileSlot diffs the live grants of one slot against its desired set.
// Stale handles are forgotten. When the live set differs, every live handle is
// revoked and the whole desired set is granted again.
func (r *Reconciler) ReconcileSlot(key equipment.SlotKey) Result {
	var res Result

	live := make([]Handle, 0, len(r.tracked[key]))
	have := make(map[grantKey]int)
	for _, h := range r.tracked[key] {
		g, ok := r.system.Resolve(h)
		if !ok {
			res.Dropped++
			continue
		}
		live = append(live, h)
		have[keyOf(g.GrantSpec())]++
	}

	desired := r.Desired(key)
	if sameGrants(have, desired) {
		r.track(key, live)
		return res
	}

	for _, h := range live {
		r.system.Revoke(h)
		res.Revoked++
	}

	granted := make([]Handle, 0, len(desired))
	for _, spec := range desired {
		h, err := r.system.Grant(spec)
		if err != nil {
			slog.Warn("Failed to grant slot ability",
				"slot", key.String(),
				"ability", spec.Ability,
				"error", err)
			slot := key
			res.Failures = append(res.Failures, Failure{Slot: &slot, Ability: spec.Ability, Err: err})
			continue
		}
		granted = append(granted, h)
		res.Granted++
	}

	r.track(key, granted)
	return res
}

// RevokeAll revokes every live grant whose source matches, whichever slot
// it belongs to. Matches are collected before anything is revoked.
func (r *Reconciler) RevokeAll(source ObjectRef) int {
	var matched []Handle
	for _, g := range r.system.ActiveGrants() {
		if g.SourceObject() == source {
			matched = append(matched, g.Handle())
		}
	}

	for _, h := range matched {
		r.system.Revoke(h)
	}
	return len(matched)
}

// RevokeTracked revokes and forgets every per-slot handle
func (r *Reconciler) RevokeTracked() int {
	revoked := 0
	for _, key := range r.slots.Layout().Keys() {
		for _, h := range r.tracked[key] {
			if _, ok := r.system.Resolve(h); ok {
				r.system.Revoke(h)
				revoked++
			}
		}
	}
	r.tracked = make(map[equipment.SlotKey][]Handle)
	return revoked
}

// Handles returns the handles tracked for a slot
func (r *Reconciler) Handles(key equipment.SlotKey) []Handle {
	return append([]Handle(nil), r.tracked[key]...)
}

// ActiveAbilities returns the abilities currently granted from a slot
func (r *Reconciler) ActiveAbilities(key equipment.SlotKey) []equipment.AbilityID {
	var out []equipment.AbilityID
	for _, h := range r.tracked[key] {
		if g, ok := r.system.Resolve(h); ok {
			out = append(out, g.GrantSpec().Ability)
		}
	}
	return out
}

func (r *Reconciler) track(key equipment.SlotKey, handles []Handle) {
	if len(handles) == 0 {
		delete(r.tracked, key)
		return
	}
	r.tracked[key] = handles
}

func sameGrants(have map[grantKey]int, desired []GrantSpec) bool {
	want := make(map[grantKey]int, len(desired))
	for _, spec := range desired {
		want[keyOf(spec)]++
	}
	if len(want) != len(have) {
		return false
	}
	for k, n := range want {
		if have[k] != n {
			return false
		}
	}
	return true
}
