package commands

import (
	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	questionBody *bool
	questionJson *bool
)

func init() {
	questionBody = questionCmd.Flags().Bool("body", false, "Include the body of each question.")
	questionJson = questionCmd.Flags().Bool("json", false, "Print the records as json instead of a table.")
	rootCmd.AddCommand(questionCmd)
}

var questionCmd = &cobra.Command{
	Use:   "question <id>...",
	Short: "Scrapes the questions given as positional arguments.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIds(args)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		questions, err := client.Questions(cmd.Context(), ids, stackoverflow.QueryOptions{
			WithBody: *questionBody,
		})
		if err != nil {
			return err
		}
		if *questionJson {
			return printJSON(questions)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Title", "Score", "Answers", "Owner", "Created", "Last activity", "Closed"})
		for _, q := range questions {
			t.AppendRow(table.Row{
				q.QuestionID,
				q.Title,
				formatInt(q.Score),
				q.AnswerCount,
				formatOwner(q.Owner),
				formatDate(q.CreationDate),
				formatDate(q.LastActivityDate),
				formatDate(q.ClosedDate),
			})
		}
		t.Render()
		return nil
	},
}
