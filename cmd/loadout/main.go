// Package main is the entry point for the loadout command line tool
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-loadout/internal/config"
)

var (
	configDir string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "loadout",
	Short: "Inventory, slot and ability loadout tooling",
	Long: `loadout drives player loadout sessions: inventories, equipment and skill
slots, and the abilities they grant. Configuration comes from LOADOUT_*
environment variables and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.Load(configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		slog.SetDefault(cfg.Log.NewLogger(os.Stderr))
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding the .env file")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(inspectCmd)
}
