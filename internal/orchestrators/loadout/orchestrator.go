// Package loadout runs player loadout sessions: every change to the inventory
// or slots is followed by one ability reconciliation pass and a save.
package loadout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-loadout/internal/abilities"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/gamedata"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/idgen"
	savegamerepo "github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
)

// Service defines the interface for loadout session operations
type Service interface {
	// OpenSession loads the player's save and grants everything it implies
	// Returns errors.AlreadyExists if the player already has a session
	// Returns errors.FailedPrecondition for saves newer than this build
	OpenSession(ctx context.Context, input *OpenSessionInput) (*OpenSessionOutput, error)

	// CloseSession writes pending changes and revokes the session's grants
	CloseSession(ctx context.Context, input *CloseSessionInput) (*CloseSessionOutput, error)

	AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error)
	RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error)
	SetItemAt(ctx context.Context, input *SetItemAtInput) (*SetItemAtOutput, error)
	SwapItems(ctx context.Context, input *SwapItemsInput) (*SwapItemsOutput, error)
	AssignSlot(ctx context.Context, input *AssignSlotInput) (*AssignSlotOutput, error)
	SortInventory(ctx context.Context, input *SortInventoryInput) (*SortInventoryOutput, error)
	SetCapacity(ctx context.Context, input *SetCapacityInput) (*SetCapacityOutput, error)
	SetLevel(ctx context.Context, input *SetLevelInput) (*SetLevelOutput, error)

	GetLoadout(ctx context.Context, input *GetLoadoutInput) (*GetLoadoutOutput, error)
	QueryItem(ctx context.Context, input *QueryItemInput) (*QueryItemOutput, error)
}

// Config holds the dependencies for the loadout orchestrator
type Config struct {
	Repository savegamerepo.Repository
	GameData   *gamedata.GameData

	// Bus is optional; when set every session publishes its changes on it
	Bus events.EventBus

	// NewSystem builds the ability system of a session. Defaults to an
	// in-memory registry using IDGenerator.
	NewSystem   func(playerID string) abilities.System
	IDGenerator idgen.Generator

	Capacity     int
	ReserveSlack int
	// StartLevel is used when OpenSession has no level; zero means 1
	StartLevel int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.GameData == nil {
		vb.RequiredField("GameData")
	}
	errors.ValidatePositive("Capacity", c.Capacity, vb)
	if c.ReserveSlack < 0 {
		vb.Fieldf("ReserveSlack", "cannot be negative, got %d", c.ReserveSlack)
	}
	if c.StartLevel < 0 {
		vb.Fieldf("StartLevel", "cannot be negative, got %d", c.StartLevel)
	}
	return vb.Build()
}

type orchestrator struct {
	repo         savegamerepo.Repository
	data         *gamedata.GameData
	bus          events.EventBus
	newSystem    func(playerID string) abilities.System
	capacity     int
	reserveSlack int
	startLevel   int

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewOrchestrator creates a new loadout orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	newSystem := cfg.NewSystem
	if newSystem == nil {
		gen := cfg.IDGenerator
		newSystem = func(string) abilities.System {
			return abilities.NewRegistry(&abilities.RegistryConfig{IDGenerator: gen})
		}
	}

	startLevel := cfg.StartLevel
	if startLevel == 0 {
		startLevel = 1
	}

	return &orchestrator{
		repo:         cfg.Repository,
		data:         cfg.GameData,
		bus:          cfg.Bus,
		newSystem:    newSystem,
		capacity:     cfg.Capacity,
		reserveSlack: cfg.ReserveSlack,
		startLevel:   startLevel,
		sessions:     make(map[string]*session),
	}, nil
}

// OpenSession loads the save, restores it and initializes abilities
func (o *orchestrator) OpenSession(ctx context.Context, input *OpenSessionInput) (*OpenSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}
	if input.Level < 0 {
		return nil, errors.InvalidArgumentf("level cannot be negative, got %d", input.Level)
	}

	characterID := input.CharacterID
	if characterID == "" {
		characterID = input.PlayerID
	}
	level := input.Level
	if level == 0 {
		level = o.startLevel
	}

	s, err := o.newSession(input.PlayerID, characterID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	// Held from registration until the save is applied so nothing observes
	// a half-loaded session
	s.mu.Lock()
	defer s.mu.Unlock()

	o.mu.Lock()
	if _, exists := o.sessions[input.PlayerID]; exists {
		o.mu.Unlock()
		return nil, errors.AlreadyExistsf("player %s already has an open session", input.PlayerID)
	}
	o.sessions[input.PlayerID] = s
	o.mu.Unlock()

	output, err := o.load(ctx, s, level)
	if err != nil {
		s.close()
		o.mu.Lock()
		delete(o.sessions, input.PlayerID)
		o.mu.Unlock()
		return nil, err
	}

	slog.InfoContext(ctx, "Loadout session opened",
		"player_id", input.PlayerID,
		"character_id", characterID,
		"level", level,
		"created", output.Created,
		"version", output.LoadedVersion)

	return output, nil
}

func (o *orchestrator) load(ctx context.Context, s *session, level int) (*OpenSessionOutput, error) {
	output := &OpenSessionOutput{}

	var rec *savegame.Record
	got, err := o.repo.Get(ctx, savegamerepo.GetInput{PlayerID: s.playerID})
	switch {
	case err == nil:
		rec = got.Record
	case errors.IsNotFound(err):
		output.Created = true
		rec = &savegame.Record{Version: savegame.VersionLatest, UserID: s.playerID}
	default:
		slog.ErrorContext(ctx, "Failed to load save", "player_id", s.playerID, "error", err)
		return nil, errors.Wrapf(err, "failed to load save for player %s", s.playerID)
	}

	decoded, err := savegame.Decode(rec, s.store, s.slots, o.data.Catalog)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode save for player %s", s.playerID)
	}
	output.LoadedVersion = int(decoded.Version)
	output.DroppedEntries = decoded.DroppedEntries
	output.DroppedSlots = decoded.DroppedSlots

	res, err := s.level.Initialize(level)
	if err != nil {
		return nil, err
	}
	output.Abilities = res

	// The save is rewritten when decoding had to change anything
	s.changed = false
	if output.Created || decoded.Version < savegame.VersionLatest || decoded.AutoFilled ||
		decoded.DroppedEntries > 0 || decoded.DroppedSlots > 0 {
		output.Changed = true
		s.unsaved = true
		output.Saved = o.flush(ctx, s)
	}
	return output, nil
}

// CloseSession flushes pending state and tears the session down
func (o *orchestrator) CloseSession(ctx context.Context, input *CloseSessionInput) (*CloseSessionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	s, err := o.lockSession(input.PlayerID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	output := &CloseSessionOutput{}
	if s.unsaved {
		output.Saved = o.flush(ctx, s)
	}

	output.Revoked = s.level.Teardown().Revoked
	s.close()

	o.mu.Lock()
	delete(o.sessions, input.PlayerID)
	o.mu.Unlock()

	slog.InfoContext(ctx, "Loadout session closed",
		"player_id", input.PlayerID,
		"revoked", output.Revoked,
		"saved", output.Saved)

	return output, nil
}

// AddItem adds units and auto-slots the item when its category allows it
func (o *orchestrator) AddItem(ctx context.Context, input *AddItemInput) (*AddItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	output := &AddItemOutput{}
	outcome, err := o.mutate(ctx, input.PlayerID, "add_item", func(s *session) error {
		if err := s.store.AddItem(input.ItemID, input.Count, input.Level); err != nil {
			return err
		}
		output.AutoSlotted = s.slots.AutoFill(input.ItemID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	output.Outcome = outcome
	return output, nil
}

// RemoveItem removes units from the item's smallest stack
func (o *orchestrator) RemoveItem(ctx context.Context, input *RemoveItemInput) (*RemoveItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	outcome, err := o.mutate(ctx, input.PlayerID, "remove_item", func(s *session) error {
		return s.store.RemoveItem(input.ItemID, input.Count)
	})
	if err != nil {
		return nil, err
	}
	return &RemoveItemOutput{Outcome: outcome}, nil
}

// SetItemAt writes a stack at an inventory position
func (o *orchestrator) SetItemAt(ctx context.Context, input *SetItemAtInput) (*SetItemAtOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	outcome, err := o.mutate(ctx, input.PlayerID, "set_item_at", func(s *session) error {
		return s.store.SetAt(input.Index, input.ItemID, input.Count, input.Level)
	})
	if err != nil {
		return nil, err
	}
	return &SetItemAtOutput{Outcome: outcome}, nil
}

// SwapItems exchanges two inventory positions
func (o *orchestrator) SwapItems(ctx context.Context, input *SwapItemsInput) (*SwapItemsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	outcome, err := o.mutate(ctx, input.PlayerID, "swap_items", func(s *session) error {
		if err := s.store.Swap(input.From, input.To); err != nil {
			return err
		}
		s.changed = s.changed || input.From != input.To
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SwapItemsOutput{Outcome: outcome}, nil
}

// AssignSlot places a held item in a slot of its category or clears the slot
func (o *orchestrator) AssignSlot(ctx context.Context, input *AssignSlotInput) (*AssignSlotOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	outcome, err := o.mutate(ctx, input.PlayerID, "assign_slot", func(s *session) error {
		if !input.ItemID.IsEmpty() {
			item, err := o.data.Catalog.Resolve(input.ItemID)
			if err != nil {
				return err
			}
			if item.Category != input.Slot.Category {
				return errors.InvalidArgumentf("item %s of category %s cannot go in slot %s",
					input.ItemID, item.Category, input.Slot)
			}
			if !s.store.Has(input.ItemID) {
				return errors.FailedPreconditionf("item %s is not in the inventory", input.ItemID).
					WithMeta("item_id", input.ItemID.String())
			}
		}
		return s.slots.Assign(input.Slot, input.ItemID)
	})
	if err != nil {
		return nil, err
	}
	return &AssignSlotOutput{Outcome: outcome}, nil
}

// SortInventory moves slotted items into the slot area
func (o *orchestrator) SortInventory(ctx context.Context, input *SortInventoryInput) (*SortInventoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	outcome, err := o.mutate(ctx, input.PlayerID, "sort_inventory", func(s *session) error {
		if s.store.SortToSlotArea() {
			s.changed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SortInventoryOutput{Outcome: outcome}, nil
}

// SetCapacity follows a change of the inventory size attribute
func (o *orchestrator) SetCapacity(ctx context.Context, input *SetCapacityInput) (*SetCapacityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	outcome, err := o.mutate(ctx, input.PlayerID, "set_capacity", func(s *session) error {
		before := s.store.Len()
		if err := s.store.SetCapacity(input.Capacity); err != nil {
			return err
		}
		s.changed = s.changed || s.store.Len() != before
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SetCapacityOutput{Outcome: outcome}, nil
}

// SetLevel moves the character to a new level, rebuilding level-dependent grants
func (o *orchestrator) SetLevel(ctx context.Context, input *SetLevelInput) (*SetLevelOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	s, err := o.lockSession(input.PlayerID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	res, changed := s.level.SetLevel(input.Level)
	if changed {
		slog.DebugContext(ctx, "Character level changed",
			"player_id", input.PlayerID,
			"level", input.Level,
			"granted", res.Granted,
			"revoked", res.Revoked)
	}
	return &SetLevelOutput{LevelChanged: changed, Abilities: res}, nil
}

// GetLoadout returns a snapshot of the session
func (o *orchestrator) GetLoadout(_ context.Context, input *GetLoadoutInput) (*GetLoadoutOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	s, err := o.lockSession(input.PlayerID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	output := &GetLoadoutOutput{
		Level:         s.level.Level(),
		Capacity:      s.store.Capacity(),
		Bound:         s.store.Bound(),
		Inventory:     s.store.Entries(),
		Slots:         s.slots.Assignments(),
		SlotAbilities: make(map[equipment.SlotKey][]equipment.AbilityID),
	}
	for _, key := range s.slots.Layout().Keys() {
		if ids := s.reconciler.ActiveAbilities(key); len(ids) > 0 {
			output.SlotAbilities[key] = ids
		}
	}
	for _, g := range s.system.ActiveGrants() {
		output.Grants = append(output.Grants, g.GrantSpec())
	}
	return output, nil
}

// QueryItem locates every stack of an item
func (o *orchestrator) QueryItem(_ context.Context, input *QueryItemInput) (*QueryItemOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ItemID.IsEmpty() {
		return nil, errors.InvalidArgument("item ID is required")
	}

	s, err := o.lockSession(input.PlayerID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return &QueryItemOutput{
		Stacks: s.store.Query(input.ItemID),
		Total:  s.store.Count(input.ItemID),
	}, nil
}

// mutate runs one change under the session lock, then the consistency pass,
// one reconciliation and a save when anything changed
func (o *orchestrator) mutate(ctx context.Context, playerID, op string, fn func(s *session) error) (Outcome, error) {
	s, err := o.lockSession(playerID)
	if err != nil {
		return Outcome{}, err
	}
	defer s.mu.Unlock()

	s.changed = false
	if err := fn(s); err != nil {
		slog.DebugContext(ctx, "Loadout change rejected",
			"player_id", playerID,
			"operation", op,
			"error", err)
		return Outcome{}, err
	}
	if !s.changed {
		return Outcome{}, nil
	}

	s.slots.Prune(s.store.Has)

	outcome := Outcome{Changed: true, Abilities: s.level.Refresh()}
	s.changed = false
	s.unsaved = true
	outcome.Saved = o.flush(ctx, s)
	return outcome, nil
}

func (o *orchestrator) flush(ctx context.Context, s *session) bool {
	rec := savegame.Encode(s.store, s.slots, s.playerID)
	if _, err := o.repo.Save(ctx, savegamerepo.SaveInput{PlayerID: s.playerID, Record: rec}); err != nil {
		slog.ErrorContext(ctx, "Failed to save loadout",
			"player_id", s.playerID,
			"error", err)
		return false
	}
	s.unsaved = false
	return true
}

// lockSession returns the player's session locked
func (o *orchestrator) lockSession(playerID string) (*session, error) {
	if playerID == "" {
		return nil, errors.InvalidArgument("player ID is required")
	}

	o.mu.RLock()
	s, ok := o.sessions[playerID]
	o.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("player %s has no open session", playerID)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.NotFoundf("player %s has no open session", playerID)
	}
	return s, nil
}
