package abilities_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-loadout/internal/abilities"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-loadout/internal/testutils"
)

type LevelControllerTestSuite struct {
	suite.Suite
	registry   *abilities.Registry
	slots      *inventory.SlotTable
	reconciler *abilities.Reconciler
	controller *abilities.LevelController
}

func TestLevelControllerSuite(t *testing.T) {
	suite.Run(t, new(LevelControllerTestSuite))
}

func (s *LevelControllerTestSuite) SetupTest() {
	_, s.slots = testutils.CreateTestInventory(s.T(), 20, inventory.DefaultReserveSlack)
	s.registry = abilities.NewRegistry(&abilities.RegistryConfig{IDGenerator: idgen.NewSequential("h")})

	r, err := abilities.NewReconciler(&abilities.ReconcilerConfig{
		System:   s.registry,
		Catalog:  testutils.CreateTestCatalog(s.T()),
		Slots:    s.slots,
		Owner:    owner,
		Defaults: testDefaults(),
	})
	s.Require().NoError(err)
	s.reconciler = r

	c, err := abilities.NewLevelController(&abilities.LevelControllerConfig{
		System:           s.registry,
		Reconciler:       r,
		StartupAbilities: []equipment.AbilityID{"ability_sprint"},
		Passives:         []equipment.EffectID{"effect_regen"},
	})
	s.Require().NoError(err)
	s.controller = c
}

func (s *LevelControllerTestSuite) TestInitialize() {
	s.Require().NoError(s.slots.Assign(skill1, testutils.ItemFireball))

	res, err := s.controller.Initialize(2)
	s.Require().NoError(err)

	s.Equal(abilities.StateInitialized, s.controller.State())
	s.Equal(4, res.Granted, "startup plus three slot grants")
	s.Len(s.registry.ActiveGrants(), 4)
	s.Equal([]abilities.EffectSpec{{Effect: "effect_regen", Level: 2, Source: owner}}, s.registry.Effects())

	res, err = s.controller.Initialize(2)
	s.Require().NoError(err)
	s.False(res.Changed(), "already initialized")
}

func (s *LevelControllerTestSuite) TestInitializeRejectsBadLevel() {
	_, err := s.controller.Initialize(0)
	s.True(errors.IsInvalidArgument(err))
	s.Equal(abilities.StateUninitialized, s.controller.State())
}

func (s *LevelControllerTestSuite) TestSetLevelRebuildsAtNewLevel() {
	s.Require().NoError(s.slots.Assign(weapon0, testutils.ItemSword))
	s.Require().NoError(s.slots.Assign(skill1, testutils.ItemFireball))
	_, err := s.controller.Initialize(1)
	s.Require().NoError(err)

	var before []abilities.Handle
	for _, g := range s.registry.ActiveGrants() {
		before = append(before, g.Handle())
	}

	_, changed := s.controller.SetLevel(3)
	s.True(changed)
	s.Equal(3, s.controller.Level())
	s.Equal(abilities.StateInitialized, s.controller.State())

	for _, h := range before {
		_, ok := s.registry.Resolve(h)
		s.False(ok, "grant %s from the old level is gone", h)
	}

	grants := s.registry.ActiveGrants()
	s.Len(grants, len(before))
	for _, g := range grants {
		spec := g.GrantSpec()
		if spec.Source == abilities.ItemRef(testutils.ItemSword) {
			continue
		}
		s.Equal(3, spec.Level, "ability %s", spec.Ability)
	}
	s.Equal([]abilities.EffectSpec{{Effect: "effect_regen", Level: 3, Source: owner}}, s.registry.Effects())
}

func (s *LevelControllerTestSuite) TestSetLevelNoOps() {
	_, err := s.controller.Initialize(2)
	s.Require().NoError(err)
	count := len(s.registry.ActiveGrants())

	for _, level := range []int{0, -1, 2} {
		_, changed := s.controller.SetLevel(level)
		s.False(changed, "level %d", level)
	}
	s.Len(s.registry.ActiveGrants(), count)
}

func (s *LevelControllerTestSuite) TestSetLevelWhileUninitialized() {
	_, changed := s.controller.SetLevel(5)
	s.True(changed)
	s.Equal(5, s.controller.Level())
	s.Equal(5, s.reconciler.CharacterLevel())
	s.Empty(s.registry.ActiveGrants())
}

func (s *LevelControllerTestSuite) TestTeardown() {
	s.Require().NoError(s.slots.Assign(weapon0, testutils.ItemSword))
	_, err := s.controller.Initialize(1)
	s.Require().NoError(err)

	res := s.controller.Teardown()

	s.Equal(abilities.StateUninitialized, s.controller.State())
	s.Equal(4, res.Revoked)
	s.Empty(s.registry.ActiveGrants())
	s.Empty(s.registry.Effects())
	s.True(s.slots.IsSlotted(testutils.ItemSword))

	s.False(s.controller.Teardown().Changed())
}

func (s *LevelControllerTestSuite) TestRefreshOnlyWhileInitialized() {
	s.False(s.controller.Refresh().Changed())
	s.Empty(s.registry.ActiveGrants())

	_, err := s.controller.Initialize(1)
	s.Require().NoError(err)
	s.Require().NoError(s.slots.Assign(skill1, testutils.ItemFireball))

	res := s.controller.Refresh()
	s.Equal(1, res.Granted)
	s.Equal([]equipment.AbilityID{"ability_fireball"}, s.reconciler.ActiveAbilities(skill1))
}
