package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-loadout/internal/config"
	"github.com/KirkDiggler/rpg-loadout/internal/notifications"
	"github.com/KirkDiggler/rpg-loadout/internal/orchestrators/loadout"
	"github.com/KirkDiggler/rpg-loadout/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-loadout/internal/simulation"
)

var (
	simPlayerID   string
	simOperations int
	simMaxLevel   int
	simPersist    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run random loadout operations and check invariants",
	Long: `Open a session, apply dice-driven random operations (adding, removing,
moving and slotting items, changing level) and verify after every step that
the inventory, slots and granted abilities are consistent.

By default the session is kept in memory; --persist uses the configured
storage backend.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().StringVar(&simPlayerID, "player", "sim-player", "player id of the simulated session")
	simulateCmd.Flags().IntVar(&simOperations, "ops", 500, "number of random operations")
	simulateCmd.Flags().IntVar(&simMaxLevel, "max-level", 20, "highest random character level")
	simulateCmd.Flags().BoolVar(&simPersist, "persist", false, "save to the configured storage instead of memory")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	storage := config.StorageMemory
	if simPersist {
		storage = cfg.Storage
	}
	repo, closeRepo, err := newRepository(ctx, storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	data, err := loadGameData()
	if err != nil {
		return err
	}

	bus := events.NewBus()
	counts := &eventCounter{counts: make(map[string]int)}
	for _, eventType := range []string{
		notifications.EventItemAdded,
		notifications.EventItemRemoved,
		notifications.EventSlotChanged,
		notifications.EventInventoryLoaded,
	} {
		bus.SubscribeFunc(eventType, 0, counts.handle)
	}

	svc, err := loadout.NewOrchestrator(&loadout.Config{
		Repository:   repo,
		GameData:     data,
		Bus:          bus,
		IDGenerator:  idgen.NewSequential("grant"),
		Capacity:     cfg.Inventory.Capacity,
		ReserveSlack: cfg.Inventory.ReserveSlack,
		StartLevel:   cfg.Inventory.StartLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create loadout service: %w", err)
	}

	runner, err := simulation.NewRunner(&simulation.Config{
		Service:    svc,
		GameData:   data,
		Roller:     dice.DefaultRoller,
		PlayerID:   simPlayerID,
		Operations: simOperations,
		MaxLevel:   simMaxLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulation: %w", err)
	}

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation aborted: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "operations (%d):\n", simOperations)
	printCounts(out, report.Operations)

	rejections := make(map[string]int, len(report.Rejections))
	for code, n := range report.Rejections {
		rejections[code.String()] = n
	}
	fmt.Fprintln(out, "rejections:")
	printCounts(out, rejections)

	fmt.Fprintln(out, "events:")
	printCounts(out, counts.snapshot())

	if report.Unsaved > 0 {
		fmt.Fprintf(out, "unsaved changes: %d\n", report.Unsaved)
	}

	if !report.OK() {
		for _, v := range report.Violations {
			fmt.Fprintf(out, "VIOLATION %s\n", v)
		}
		return fmt.Errorf("%d invariant violations", len(report.Violations))
	}
	fmt.Fprintln(out, "all invariants held")
	return nil
}

type eventCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *eventCounter) handle(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[e.Type()]++
	return nil
}

func (c *eventCounter) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

func printCounts(w io.Writer, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-32s %d\n", k, counts[k])
	}
}
