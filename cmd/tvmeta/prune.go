package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cache entries older than the longest expiration policy",
	Args:  cobra.NoArgs,
	RunE:  runPruneCmd,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(pruneCmd)
	pruneCmd.Flags().Duration("max-age", 30*24*time.Hour, "Remove entries older than this")
}

func runPruneCmd(cmd *cobra.Command, _ []string) error {
	maxAge, _ := cmd.Flags().GetDuration("max-age")

	app, err := setup()
	if err != nil {
		return err
	}
	defer app.close()

	removed, err := app.store.Prune(cmd.Context(), maxAge)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d entries\n", removed)
	return nil
}
