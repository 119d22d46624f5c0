package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/tvmeta/pkg/tvdb"
)

var episodesCmd = &cobra.Command{
	Use:   "episodes <series-id>...",
	Short: "List all episodes of one or more series",
	Long: `List all episodes of one or more series.

Multiple series are fetched concurrently.

Examples:
  tvmeta episodes 81189
  tvmeta episodes --order dvd 75978
  tvmeta episodes --order absolute 114801 79060`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEpisodesCmd,
}

func init() {
	rootCmd.AddCommand(episodesCmd)
	episodesCmd.Flags().String("order", "aired", "Episode order: aired, dvd or absolute")
}

func runEpisodesCmd(cmd *cobra.Command, args []string) error {
	orderName, _ := cmd.Flags().GetString("order")
	order, err := tvdb.ParseSortOrder(orderName)
	if err != nil {
		return err
	}

	ids := make([]int, len(args))
	for i, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid series id %q", arg)
		}
		ids[i] = id
	}

	app, err := setup()
	if err != nil {
		return err
	}
	defer app.close()

	results := make([]*tvdb.SeriesData, len(ids))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, id := range ids {
		g.Go(func() error {
			data, err := app.client.FetchSeriesData(ctx, tvdb.SearchResult{ID: id}, order, app.lang)
			if err != nil {
				return fmt.Errorf("series %d: %w", id, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(results)
	}
	for _, data := range results {
		printEpisodes(data)
	}
	return nil
}

func printEpisodes(data *tvdb.SeriesData) {
	fmt.Printf("%s (%d episodes)\n", data.Info.Name, len(data.Episodes))
	for _, ep := range data.Episodes {
		switch {
		case ep.Special():
			fmt.Printf("  Special %-4s  %s\n", formatNumber(ep.SpecialNumber), ep.Title)
		case ep.Season != nil && ep.Number != nil:
			fmt.Printf("  S%02dE%02d  %s\n", *ep.Season, *ep.Number, ep.Title)
		default:
			fmt.Printf("  %-6s  %s\n", formatNumber(ep.Number), ep.Title)
		}
	}
}

func formatNumber(n *int) string {
	if n == nil {
		return "?"
	}
	return strconv.Itoa(*n)
}
