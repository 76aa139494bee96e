package abilities

//go:generate mockgen -destination=mock/mock.go -package=abilitiesmock github.com/KirkDiggler/rpg-loadout/internal/abilities System

// System is the ability subsystem that owns live grants and effects.
// It is the source of truth for whether a handle is still valid.
type System interface {
	// Grant issues a new handle for the spec
	Grant(spec GrantSpec) (Handle, error)

	// Revoke removes a grant. Revoking an unknown handle does nothing.
	Revoke(handle Handle)

	// Resolve returns the live grant behind a handle; false when it is stale
	Resolve(handle Handle) (Grant, bool)

	// ActiveGrants returns every live grant
	ActiveGrants() []Grant

	// ApplyEffect applies a passive effect
	ApplyEffect(spec EffectSpec) (EffectHandle, error)

	// RemoveEffectsBySource removes every effect applied by a source and
	// returns how many were removed
	RemoveEffectsBySource(source ObjectRef) int
}
