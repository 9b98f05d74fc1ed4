package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List summarisation targets in the dataset",
	Long: `List the organisations and questions found in the consultation export.

Example:
  consultsum list orgs
  consultsum list questions --csv data/responses.csv`,
}

var listOrgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List responding organisations",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(loadConfig(), false)
		if err != nil {
			return err
		}

		orgs, err := svc.ListOrganisations()
		if err != nil {
			return fmt.Errorf("list organisations: %w", err)
		}

		for _, org := range orgs {
			fmt.Printf("%-12s %s\n", org.ID, org.Label)
		}
		fmt.Fprintf(os.Stderr, "\n%d organisations\n", len(orgs))
		return nil
	},
}

var listQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List consultation questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := buildService(loadConfig(), false)
		if err != nil {
			return err
		}

		questions, err := svc.ListQuestions()
		if err != nil {
			return fmt.Errorf("list questions: %w", err)
		}

		for _, q := range questions {
			fmt.Println(q.Label)
		}
		fmt.Fprintf(os.Stderr, "\n%d questions\n", len(questions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listOrgsCmd)
	listCmd.AddCommand(listQuestionsCmd)
}
