package commands

import (
	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	answerBody     *bool
	answerJson     *bool
	answerQuestion *bool
)

func init() {
	answerBody = answerCmd.Flags().Bool("body", false, "Include the body of each answer.")
	answerJson = answerCmd.Flags().Bool("json", false, "Print the records as json instead of a table.")
	answerQuestion = answerCmd.Flags().Bool("question", false, "Treat the ids as question ids and scrape all of their answers.")
	rootCmd.AddCommand(answerCmd)
}

var answerCmd = &cobra.Command{
	Use:   "answer [--question] <id>...",
	Short: "Scrapes the answers given as positional arguments.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIds(args)
		if err != nil {
			return err
		}

		opts := stackoverflow.QueryOptions{WithBody: *answerBody}
		client, err := newClient()
		if err != nil {
			return err
		}

		var answers []stackoverflow.Answer
		if *answerQuestion {
			answers, err = client.QuestionAnswers(cmd.Context(), ids, opts)
		} else {
			answers, err = client.Answers(cmd.Context(), ids, opts)
		}
		if err != nil {
			return err
		}
		if *answerJson {
			return printJSON(answers)
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "Question", "Score", "Accepted", "Owner", "Created", "Collective"})
		for _, a := range answers {
			collective := "-"
			if len(a.Recommendations) > 0 {
				collective = a.Recommendations[0].Collective.Name
			}
			t.AppendRow(table.Row{
				a.AnswerID,
				formatInt(a.QuestionID),
				formatInt(a.Score),
				a.IsAccepted,
				formatOwner(a.Owner),
				formatDate(a.CreationDate),
				collective,
			})
		}
		t.Render()
		return nil
	},
}
