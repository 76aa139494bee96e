package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/inventory"
	savegamerepo "github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
)

var scanDelete bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Check every stored save record",
	Long: `Read and decode every stored save record. Records that cannot be parsed
are reported as corrupted; records from older versions are reported as legacy
and will be rewritten the next time their player opens a session.

With --delete, corrupted records are removed after confirmation.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDelete, "delete", false, "offer to delete corrupted records")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	repo, closeRepo, err := newRepository(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeRepo()

	data, err := loadGameData()
	if err != nil {
		return err
	}

	list, err := repo.List(ctx, savegamerepo.ListInput{})
	if err != nil {
		return fmt.Errorf("failed to list saves: %w", err)
	}

	var corrupted []string
	legacy, degraded := 0, 0
	for _, playerID := range list.PlayerIDs {
		got, err := repo.Get(ctx, savegamerepo.GetInput{PlayerID: playerID})
		switch {
		case errors.GetCode(err) == errors.CodeDataLoss:
			fmt.Fprintf(out, "corrupted  %s\n", playerID)
			corrupted = append(corrupted, playerID)
			continue
		case errors.IsNotFound(err):
			// deleted while scanning
			continue
		case err != nil:
			return fmt.Errorf("failed to read save for %s: %w", playerID, err)
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
		switch {
		case errors.IsFailedPrecondition(err):
			fmt.Fprintf(out, "newer      %s (version %d)\n", playerID, got.Record.Version)
			continue
		case err != nil:
			fmt.Fprintf(out, "corrupted  %s: %v\n", playerID, err)
			corrupted = append(corrupted, playerID)
			continue
		}

		if res.Version < savegame.VersionLatest {
			legacy++
			fmt.Fprintf(out, "legacy     %s (version %d)\n", playerID, res.Version)
		}
		if res.DroppedEntries > 0 || res.DroppedSlots > 0 {
			degraded++
			fmt.Fprintf(out, "degraded   %s (%d entries, %d slots unresolvable)\n",
				playerID, res.DroppedEntries, res.DroppedSlots)
		}
	}

	fmt.Fprintf(out, "\nchecked %d saves: %d corrupted, %d legacy, %d degraded\n",
		len(list.PlayerIDs), len(corrupted), legacy, degraded)

	if len(corrupted) == 0 || !scanDelete {
		return nil
	}

	fmt.Fprint(out, "\nDelete the corrupted records? (yes/no): ")
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if strings.TrimSpace(answer) != "yes" {
		fmt.Fprintln(out, "Aborted - no changes made")
		return nil
	}

	for _, playerID := range corrupted {
		if _, err := repo.Delete(ctx, savegamerepo.DeleteInput{PlayerID: playerID}); err != nil {
			fmt.Fprintf(out, "failed to delete %s: %v\n", playerID, err)
			continue
		}
		fmt.Fprintf(out, "deleted %s\n", playerID)
	}
	return nil
}
