package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
	savegamerepo "github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
)

var inspectRaw bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [player-id]",
	Short: "Show a stored save record",
	Long: `Decode a player's save record against the current game data and print
the resulting inventory and slots. Without a player id every player with a
save is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "print the stored record as JSON without decoding it")
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repo, closeRepo, err := newRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		list, err := repo.List(ctx, savegamerepo.ListInput{})
		if err != nil {
			return fmt.Errorf("failed to list saves: %w", err)
		}
		for _, id := range list.PlayerIDs {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	got, err := repo.Get(ctx, savegamerepo.GetInput{PlayerID: args[0]})
	if err != nil {
		return fmt.Errorf("failed to get save for %s: %w", args[0], err)
	}

	if inspectRaw {
		data, err := json.MarshalIndent(got.Record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	data, err := loadGameData()
	if err != nil {
		return err
	}

	slots, err := inventory.NewSlotTable(&inventory.SlotTableConfig{Layout: data.Layout, Catalog: data.Catalog})
	if err != nil {
		return err
	}
	store, err := inventory.NewStore(&inventory.StoreConfig{
		Catalog:      data.Catalog,
		Slots:        slots,
		Capacity:     cfg.Inventory.Capacity,
		ReserveSlack: cfg.Inventory.ReserveSlack,
	})
	if err != nil {
		return err
	}

	res, err := savegame.Decode(got.Record, store, slots, data.Catalog)
	if err != nil {
		return fmt.Errorf("failed to decode save for %s: %w", args[0], err)
	}

	fmt.Fprintf(out, "player:   %s\n", args[0])
	fmt.Fprintf(out, "version:  %d (latest %d)\n", res.Version, savegame.VersionLatest)
	fmt.Fprintf(out, "saved at: %d\n", got.Record.SavedAt)
	if res.DroppedEntries > 0 || res.DroppedSlots > 0 {
		fmt.Fprintf(out, "dropped:  %d entries, %d slots\n", res.DroppedEntries, res.DroppedSlots)
	}

	fmt.Fprintf(out, "\ninventory (%d/%d):\n", store.Occupied(), store.Bound())
	for i, st := range store.Entries() {
		if st == nil {
			continue
		}
		fmt.Fprintf(out, "  [%2d] %-20s x%-3d L%d\n", i, st.ItemID, st.Count, st.Level)
	}

	fmt.Fprintln(out, "\nslots:")
	assignments := slots.Assignments()
	for _, key := range data.Layout.Keys() {
		id := assignments[key]
		if id.IsEmpty() {
			id = "-"
		}
		fmt.Fprintf(out, "  %-10s %s\n", key, id)
	}
	return nil
}
