package abilities

import (
	"sync"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/idgen"
)

// RegistryConfig contains the dependencies of a Registry
type RegistryConfig struct {
	// IDGenerator issues handle ids; UUIDs are used when nil
	IDGenerator idgen.Generator
}

// Registry is an in-memory System. Grants and effects are kept in issue order.
type Registry struct {
	mu    sync.RWMutex
	idGen idgen.Generator

	grants      map[Handle]GrantSpec
	grantOrder  []Handle
	effects     map[EffectHandle]EffectSpec
	effectOrder []EffectHandle
}

// NewRegistry creates an empty registry
func NewRegistry(cfg *RegistryConfig) *Registry {
	var gen idgen.Generator = idgen.NewUUID("grant")
	if cfg != nil && cfg.IDGenerator != nil {
		gen = cfg.IDGenerator
	}

	return &Registry{
		idGen:   gen,
		grants:  make(map[Handle]GrantSpec),
		effects: make(map[EffectHandle]EffectSpec),
	}
}

// Grant implements System
func (r *Registry) Grant(spec GrantSpec) (Handle, error) {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("ability", string(spec.Ability), vb)
	errors.ValidatePositive("level", spec.Level, vb)
	if spec.Source.IsZero() {
		vb.RequiredField("source")
	}
	if err := vb.Build(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := Handle(r.idGen.Generate())
	if spec.SourceSlot != nil {
		slot := *spec.SourceSlot
		spec.SourceSlot = &slot
	}
	r.grants[h] = spec
	r.grantOrder = append(r.grantOrder, h)
	return h, nil
}

// Revoke implements System
func (r *Registry) Revoke(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.grants[handle]; !ok {
		return
	}
	delete(r.grants, handle)
	for i, h := range r.grantOrder {
		if h == handle {
			r.grantOrder = append(r.grantOrder[:i], r.grantOrder[i+1:]...)
			break
		}
	}
}

// Resolve implements System
func (r *Registry) Resolve(handle Handle) (Grant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.grants[handle]
	if !ok {
		return nil, false
	}
	return ActiveGrant{ID: handle, Spec: spec}, true
}

// ActiveGrants implements System
func (r *Registry) ActiveGrants() []Grant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Grant, 0, len(r.grantOrder))
	for _, h := range r.grantOrder {
		out = append(out, ActiveGrant{ID: h, Spec: r.grants[h]})
	}
	return out
}

// ApplyEffect implements System
func (r *Registry) ApplyEffect(spec EffectSpec) (EffectHandle, error) {
	if spec.Effect == "" {
		return "", errors.InvalidArgument("effect is required")
	}
	if spec.Source.IsZero() {
		return "", errors.InvalidArgument("effect source is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h := EffectHandle(r.idGen.Generate())
	r.effects[h] = spec
	r.effectOrder = append(r.effectOrder, h)
	return h, nil
}

// RemoveEffectsBySource implements System
func (r *Registry) RemoveEffectsBySource(source ObjectRef) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.effectOrder[:0]
	removed := 0
	for _, h := range r.effectOrder {
		if r.effects[h].Source == source {
			delete(r.effects, h)
			removed++
			continue
		}
		kept = append(kept, h)
	}
	r.effectOrder = kept
	return removed
}

// Effects returns every applied effect in application order
func (r *Registry) Effects() []EffectSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EffectSpec, 0, len(r.effectOrder))
	for _, h := range r.effectOrder {
		out = append(out, r.effects[h])
	}
	return out
}

var _ System = (*Registry)(nil)
