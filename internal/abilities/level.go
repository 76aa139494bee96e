package abilities

import (
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
)

// LevelState is the state of a LevelController
type LevelState int

// Level controller states
const (
	StateUninitialized LevelState = iota
	StateInitialized
)

// String returns the state name
func (s LevelState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	default:
		return "uninitialized"
	}
}

// LevelControllerConfig contains the dependencies of a LevelController
type LevelControllerConfig struct {
	System     System
	Reconciler *Reconciler
	// StartupAbilities are granted to the owner at the character level
	StartupAbilities []equipment.AbilityID
	// Passives are applied to the owner at the character level
	Passives []equipment.EffectID
}

// Validate validates the LevelControllerConfig.
func (cfg *LevelControllerConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.System == nil {
		vb.RequiredField("System")
	}
	if cfg.Reconciler == nil {
		vb.RequiredField("Reconciler")
	}
	return vb.Build()
}

// LevelController grants and removes everything that depends on the
// character level. A level change tears the old set down and builds the new
// one while holding the controller lock.
type LevelController struct {
	mu         sync.Mutex
	system     System
	reconciler *Reconciler
	startup    []equipment.AbilityID
	passives   []equipment.EffectID

	state LevelState
	level int
}

// NewLevelController creates an uninitialized controller
func NewLevelController(cfg *LevelControllerConfig) (*LevelController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &LevelController{
		system:     cfg.System,
		reconciler: cfg.Reconciler,
		startup:    append([]equipment.AbilityID(nil), cfg.StartupAbilities...),
		passives:   append([]equipment.EffectID(nil), cfg.Passives...),
		level:      cfg.Reconciler.CharacterLevel(),
	}, nil
}

// State returns the current state
func (c *LevelController) State() LevelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Level returns the character level
func (c *LevelController) Level() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Initialize grants the startup abilities, applies passives and reconciles
// every slot. It does nothing when already initialized.
// Returns errors.InvalidArgument for a non-positive level
func (c *LevelController) Initialize(level int) (Result, error) {
	if level <= 0 {
		return Result{}, errors.InvalidArgumentf("level must be positive, got %d", level)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateInitialized {
		return Result{}, nil
	}
	return c.initialize(level), nil
}

// Teardown revokes everything the owner was granted, removes its passives and
// forgets slot handles. Slot assignments are left alone.
func (c *LevelController) Teardown() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUninitialized {
		return Result{}
	}
	return c.teardown()
}

// SetLevel moves to a new level. It is a no-op for non-positive or unchanged
// levels. While uninitialized the level is only recorded for the next
// Initialize. Returns whether the level changed.
func (c *LevelController) SetLevel(level int) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if level <= 0 || level == c.level {
		return Result{}, false
	}

	if c.state == StateUninitialized {
		c.level = level
		c.reconciler.SetCharacterLevel(level)
		return Result{}, true
	}

	res := c.teardown()
	res.Merge(c.initialize(level))
	return res, true
}

// Refresh reconciles every slot while initialized
func (c *LevelController) Refresh() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateInitialized {
		return Result{}
	}
	return c.reconciler.Reconcile()
}

func (c *LevelController) initialize(level int) Result {
	var res Result
	owner := c.reconciler.Owner()

	c.level = level
	c.reconciler.SetCharacterLevel(level)

	for _, ability := range c.startup {
		if _, err := c.system.Grant(GrantSpec{Ability: ability, Level: level, Source: owner}); err != nil {
			slog.Warn("Failed to grant startup ability",
				"owner", owner.String(),
				"ability", ability,
				"error", err)
			res.Failures = append(res.Failures, Failure{Ability: ability, Err: err})
			continue
		}
		res.Granted++
	}

	for _, effect := range c.passives {
		if _, err := c.system.ApplyEffect(EffectSpec{Effect: effect, Level: level, Source: owner}); err != nil {
			slog.Warn("Failed to apply passive effect",
				"owner", owner.String(),
				"effect", effect,
				"error", err)
			res.Failures = append(res.Failures, Failure{Effect: effect, Err: err})
		}
	}

	res.Merge(c.reconciler.Reconcile())
	c.state = StateInitialized
	return res
}

func (c *LevelController) teardown() Result {
	owner := c.reconciler.Owner()

	res := Result{Revoked: c.reconciler.RevokeAll(owner)}
	c.system.RemoveEffectsBySource(owner)
	res.Revoked += c.reconciler.RevokeTracked()

	c.state = StateUninitialized
	return res
}
