package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List languages the API can serve",
	Args:  cobra.NoArgs,
	RunE:  runLanguagesCmd,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguagesCmd(cmd *cobra.Command, _ []string) error {
	app, err := setup()
	if err != nil {
		return err
	}
	defer app.close()

	langs, err := app.client.Languages(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(langs)
	}
	fmt.Println(strings.Join(langs, " "))
	return nil
}
