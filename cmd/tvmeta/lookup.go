package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvmeta/pkg/tvdb"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [<tvdb-id>]",
	Short: "Resolve a series by TVDB or IMDb ID",
	Long: `Resolve a series by TVDB or IMDb ID.

Examples:
  tvmeta lookup 81189
  tvmeta lookup --imdb 903747`,
	RunE: runLookupCmd,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().Int("imdb", 0, "Numeric IMDb ID (903747 for tt0903747)")
}

func runLookupCmd(cmd *cobra.Command, args []string) error {
	imdbID, _ := cmd.Flags().GetInt("imdb")
	if imdbID == 0 && len(args) != 1 {
		return errors.New("expected a TVDB ID argument or --imdb")
	}

	app, err := setup()
	if err != nil {
		return err
	}
	defer app.close()

	var result *tvdb.SearchResult
	if imdbID != 0 {
		result, err = app.client.SearchByIMDbID(cmd.Context(), imdbID, app.lang)
	} else {
		id, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("invalid series id %q", args[0])
		}
		result, err = app.client.LookupByID(cmd.Context(), id, app.lang)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	fmt.Printf("%d  %s\n", result.ID, result.Name)
	if len(result.AliasNames) > 0 {
		fmt.Printf("aka %s\n", strings.Join(result.AliasNames, ", "))
	}
	fmt.Println(tvdb.EpisodeListURL(*result))
	return nil
}
