package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/tvmeta/pkg/tvdb"
)

var imagesCmd = &cobra.Command{
	Use:   "images <series-id>",
	Short: "List artwork for a series",
	Long: `List artwork for a series.

Examples:
  tvmeta images 81189
  tvmeta images 81189 --type fanart`,
	Args: cobra.ExactArgs(1),
	RunE: runImagesCmd,
}

func init() {
	rootCmd.AddCommand(imagesCmd)
	imagesCmd.Flags().String("type", "poster", "Image key type (poster, fanart, series, season)")
}

func runImagesCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid series id %q", args[0])
	}
	keyType, _ := cmd.Flags().GetString("type")

	app, err := setup()
	if err != nil {
		return err
	}
	defer app.close()

	images, err := app.client.GetImages(cmd.Context(), tvdb.SearchResult{ID: id}, keyType)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(images)
	}
	if len(images) == 0 {
		fmt.Println("No images found")
		return nil
	}

	for _, img := range images {
		rating := "-"
		if img.Rating != nil {
			rating = strconv.FormatFloat(*img.Rating, 'f', 1, 64)
		}
		fmt.Printf("%-10s  %4s  %s\n", img.Resolution, rating, img.FileName)
	}
	return nil
}
