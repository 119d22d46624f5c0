package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvmeta/pkg/tvdb"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search series by name",
	Long: `Search series by name.

Results are ordered by similarity to the query.

Examples:
  tvmeta search "Breaking Bad"
  tvmeta search --lang de "Die Sendung mit der Maus"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.close()

	query := strings.Join(args, " ")
	results, err := app.client.SearchByName(cmd.Context(), query, app.lang)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	tvdb.RankByRelevance(query, results)

	if jsonOutput {
		return printJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("No series found")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%8d  %s\n", r.ID, r.Name)
		if len(r.AliasNames) > 0 {
			fmt.Printf("          aka %s\n", strings.Join(r.AliasNames, ", "))
		}
	}
	return nil
}
