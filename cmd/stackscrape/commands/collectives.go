package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var collectivesJson *bool

func init() {
	collectivesJson = collectivesCmd.Flags().Bool("json", false, "Print the records as json instead of a table.")
	rootCmd.AddCommand(collectivesCmd)
}

var collectivesCmd = &cobra.Command{
	Use:   "collectives",
	Short: "Scrapes the collectives directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		collectives, err := client.Collectives(cmd.Context())
		if err != nil {
			return err
		}
		if *collectivesJson {
			return printJSON(collectives)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Slug", "Tags", "External links", "Link"})
		for _, c := range collectives {
			t.AppendRow(table.Row{
				c.Name,
				c.Slug,
				strings.Join(c.Tags, ", "),
				len(c.ExternalLinks),
				c.Link,
			})
		}
		t.Render()
		return nil
	},
}
