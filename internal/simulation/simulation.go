// Package simulation drives a loadout session with random operations and
// checks the session invariants after every step.
package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-loadout/internal/catalog"
	"github.com/KirkDiggler/rpg-loadout/internal/entities/equipment"
	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/gamedata"
	"github.com/KirkDiggler/rpg-loadout/internal/orchestrators/loadout"
)

// Config contains the dependencies of a Runner
type Config struct {
	Service  loadout.Service
	GameData *gamedata.GameData
	Roller   dice.Roller
	PlayerID string
	// Operations is the number of random operations to run
	Operations int
	// MaxLevel bounds random character levels
	MaxLevel int
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if cfg.Service == nil {
		vb.RequiredField("Service")
	}
	if cfg.GameData == nil {
		vb.RequiredField("GameData")
	}
	if cfg.Roller == nil {
		vb.RequiredField("Roller")
	}
	errors.ValidateRequired("PlayerID", cfg.PlayerID, vb)
	errors.ValidatePositive("Operations", cfg.Operations, vb)
	errors.ValidatePositive("MaxLevel", cfg.MaxLevel, vb)
	return vb.Build()
}

// Report summarizes a run
type Report struct {
	Operations map[string]int
	// Rejections counts refused operations by error code
	Rejections map[errors.Code]int
	// Unsaved counts changes that did not reach storage
	Unsaved    int
	Violations []string
}

// OK reports whether every invariant held
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Runner executes random operations against one session
type Runner struct {
	service  loadout.Service
	data     *gamedata.GameData
	roller   dice.Roller
	playerID string
	ops      int
	maxLevel int
	items    []*catalog.Item
}

type operation struct {
	name string
	run  func(r *Runner, ctx context.Context, view *loadout.GetLoadoutOutput) (*loadout.Outcome, error)
}

var operations = []operation{
	{name: "add_item", run: (*Runner).addItem},
	{name: "add_item", run: (*Runner).addItem},
	{name: "remove_item", run: (*Runner).removeItem},
	{name: "set_item_at", run: (*Runner).setItemAt},
	{name: "swap_items", run: (*Runner).swapItems},
	{name: "assign_slot", run: (*Runner).assignSlot},
	{name: "assign_slot", run: (*Runner).assignSlot},
	{name: "sort_inventory", run: (*Runner).sortInventory},
	{name: "set_level", run: (*Runner).setLevel},
}

// NewRunner creates a runner
func NewRunner(cfg *Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	items := cfg.GameData.Catalog.Items()
	if len(items) == 0 {
		return nil, errors.InvalidArgument("game data defines no items")
	}

	return &Runner{
		service:  cfg.Service,
		data:     cfg.GameData,
		roller:   cfg.Roller,
		playerID: cfg.PlayerID,
		ops:      cfg.Operations,
		maxLevel: cfg.MaxLevel,
		items:    items,
	}, nil
}

// Run opens the session, applies the operations and closes the session.
// Rejected operations are expected and counted; any other failure aborts.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Operations: make(map[string]int),
		Rejections: make(map[errors.Code]int),
	}

	if _, err := r.service.OpenSession(ctx, &loadout.OpenSessionInput{PlayerID: r.playerID}); err != nil {
		return nil, errors.Wrap(err, "failed to open session")
	}
	defer func() {
		if _, err := r.service.CloseSession(ctx, &loadout.CloseSessionInput{PlayerID: r.playerID}); err != nil {
			slog.Warn("Failed to close simulated session", "player_id", r.playerID, "error", err)
		}
	}()

	for step := 1; step <= r.ops; step++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		view, err := r.view(ctx)
		if err != nil {
			return report, err
		}

		idx, err := r.pick(len(operations))
		if err != nil {
			return report, err
		}
		op := operations[idx]
		report.Operations[op.name]++

		outcome, err := op.run(r, ctx, view)
		if err != nil {
			if !expectedRejection(err) {
				return report, errors.Wrapf(err, "step %d (%s) failed", step, op.name)
			}
			report.Rejections[errors.GetCode(err)]++
		} else if outcome != nil && outcome.Changed && !outcome.Saved {
			report.Unsaved++
		}

		after, err := r.view(ctx)
		if err != nil {
			return report, err
		}
		for _, v := range r.check(after) {
			report.Violations = append(report.Violations, fmt.Sprintf("step %d (%s): %s", step, op.name, v))
		}
	}

	return report, nil
}

func expectedRejection(err error) bool {
	switch errors.GetCode(err) {
	case errors.CodeInvalidArgument, errors.CodeNotFound,
		errors.CodeResourceExhausted, errors.CodeFailedPrecondition:
		return true
	default:
		return false
	}
}

func (r *Runner) view(ctx context.Context) (*loadout.GetLoadoutOutput, error) {
	view, err := r.service.GetLoadout(ctx, &loadout.GetLoadoutInput{PlayerID: r.playerID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read loadout")
	}
	return view, nil
}

// pick returns a uniform index in [0, n)
func (r *Runner) pick(n int) (int, error) {
	if n <= 1 {
		return 0, nil
	}
	v, err := r.roller.Roll(n)
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll")
	}
	return v - 1, nil
}

func (r *Runner) randomItem() (*catalog.Item, error) {
	idx, err := r.pick(len(r.items))
	if err != nil {
		return nil, err
	}
	return r.items[idx], nil
}

// amount rolls 1..limit, treating an unbounded limit as fallback
func (r *Runner) amount(limit, fallback int) (int, error) {
	if limit <= 0 {
		limit = fallback
	}
	v, err := r.pick(limit)
	return v + 1, err
}

func (r *Runner) addItem(ctx context.Context, _ *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	item, err := r.randomItem()
	if err != nil {
		return nil, err
	}
	count, err := r.amount(item.MaxCount, 5)
	if err != nil {
		return nil, err
	}
	level, err := r.amount(item.MaxLevel, 5)
	if err != nil {
		return nil, err
	}

	out, err := r.service.AddItem(ctx, &loadout.AddItemInput{
		PlayerID: r.playerID,
		ItemID:   item.ID,
		Count:    count,
		Level:    level,
	})
	if err != nil {
		return nil, err
	}
	return &out.Outcome, nil
}

func (r *Runner) removeItem(ctx context.Context, _ *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	item, err := r.randomItem()
	if err != nil {
		return nil, err
	}
	// zero removes the whole stack
	count, err := r.pick(4)
	if err != nil {
		return nil, err
	}

	out, err := r.service.RemoveItem(ctx, &loadout.RemoveItemInput{
		PlayerID: r.playerID,
		ItemID:   item.ID,
		Count:    count,
	})
	if err != nil {
		return nil, err
	}
	return &out.Outcome, nil
}

func (r *Runner) setItemAt(ctx context.Context, view *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	index, err := r.pick(view.Bound)
	if err != nil {
		return nil, err
	}
	item, err := r.randomItem()
	if err != nil {
		return nil, err
	}
	count, err := r.amount(item.MaxCount, 5)
	if err != nil {
		return nil, err
	}

	out, err := r.service.SetItemAt(ctx, &loadout.SetItemAtInput{
		PlayerID: r.playerID,
		Index:    index,
		ItemID:   item.ID,
		Count:    count,
		Level:    1,
	})
	if err != nil {
		return nil, err
	}
	return &out.Outcome, nil
}

func (r *Runner) swapItems(ctx context.Context, view *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	from, err := r.pick(view.Bound)
	if err != nil {
		return nil, err
	}
	to, err := r.pick(view.Bound)
	if err != nil {
		return nil, err
	}

	out, err := r.service.SwapItems(ctx, &loadout.SwapItemsInput{PlayerID: r.playerID, From: from, To: to})
	if err != nil {
		return nil, err
	}
	return &out.Outcome, nil
}

// assignSlot picks a slot and one of the held items of its category, or
// clears the slot
func (r *Runner) assignSlot(ctx context.Context, view *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	keys := r.data.Layout.Keys()
	idx, err := r.pick(len(keys))
	if err != nil {
		return nil, err
	}
	key := keys[idx]

	candidates := []equipment.ItemID{""}
	for _, st := range view.Inventory {
		if st == nil || slices.Contains(candidates, st.ItemID) {
			continue
		}
		if item, err := r.data.Catalog.Resolve(st.ItemID); err == nil && item.Category == key.Category {
			candidates = append(candidates, st.ItemID)
		}
	}
	choice, err := r.pick(len(candidates))
	if err != nil {
		return nil, err
	}

	out, err := r.service.AssignSlot(ctx, &loadout.AssignSlotInput{
		PlayerID: r.playerID,
		Slot:     key,
		ItemID:   candidates[choice],
	})
	if err != nil {
		return nil, err
	}
	return &out.Outcome, nil
}

func (r *Runner) sortInventory(ctx context.Context, _ *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	out, err := r.service.SortInventory(ctx, &loadout.SortInventoryInput{PlayerID: r.playerID})
	if err != nil {
		return nil, err
	}
	return &out.Outcome, nil
}

func (r *Runner) setLevel(ctx context.Context, _ *loadout.GetLoadoutOutput) (*loadout.Outcome, error) {
	level, err := r.amount(r.maxLevel, 1)
	if err != nil {
		return nil, err
	}
	if _, err := r.service.SetLevel(ctx, &loadout.SetLevelInput{PlayerID: r.playerID, Level: level}); err != nil {
		return nil, err
	}
	return nil, nil
}

// check returns every invariant the snapshot breaks
func (r *Runner) check(view *loadout.GetLoadoutOutput) []string {
	var violations []string

	if len(view.Inventory) > view.Bound {
		violations = append(violations, fmt.Sprintf("inventory length %d exceeds bound %d", len(view.Inventory), view.Bound))
	}

	held := make(map[equipment.ItemID]bool)
	for i, st := range view.Inventory {
		if st == nil {
			continue
		}
		held[st.ItemID] = true

		item, err := r.data.Catalog.Resolve(st.ItemID)
		if err != nil {
			violations = append(violations, fmt.Sprintf("index %d holds unknown item %s", i, st.ItemID))
			continue
		}
		if st.Count <= 0 || (item.MaxCount > 0 && st.Count > item.MaxCount) {
			violations = append(violations, fmt.Sprintf("index %d has count %d outside 1..%d", i, st.Count, item.MaxCount))
		}
		if st.Level < 1 || (item.MaxLevel > 0 && st.Level > item.MaxLevel) {
			violations = append(violations, fmt.Sprintf("index %d has level %d outside 1..%d", i, st.Level, item.MaxLevel))
		}
	}

	for _, key := range r.data.Layout.Keys() {
		id := view.Slots[key]
		if !id.IsEmpty() && !held[id] {
			violations = append(violations, fmt.Sprintf("slot %s references unheld item %s", key, id))
		}

		want := r.expectedAbilities(key, id)
		if got := view.SlotAbilities[key]; !slices.Equal(got, want) {
			violations = append(violations, fmt.Sprintf("slot %s grants %v, want %v", key, got, want))
		}
	}

	return violations
}

func (r *Runner) expectedAbilities(key equipment.SlotKey, id equipment.ItemID) []equipment.AbilityID {
	if !id.IsEmpty() {
		if item, err := r.data.Catalog.Resolve(id); err == nil {
			if defs := item.AbilityDefinitions(); len(defs) > 0 {
				out := make([]equipment.AbilityID, 0, len(defs))
				for _, def := range defs {
					out = append(out, def.Ability)
				}
				return out
			}
		}
	}
	if defaults := r.data.SlotDefaults[key]; len(defaults) > 0 {
		return defaults
	}
	return nil
}
