package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/openconsult/consultsum/internal/model"
)

var (
	outJSON     string
	timeout     time.Duration
	noCache     bool
	llmProvider string
	llmModel    string
)

// summariseCmd represents the summarise command
var summariseCmd = &cobra.Command{
	Use:   "summarise",
	Short: "Summarise one organisation or one question",
	Long: `Summarise generates an evidence-grounded summary for a single target:
- org: summarise every answer one organisation gave, section by section,
  then roll the sections up into an overall narrative
- question: summarise how all organisations answered one question,
  with viewpoints, mainstream clusters, and minority clusters

Example:
  consultsum summarise org R123
  consultsum summarise question Q05 --json q05.json
  consultsum summarise org R123 --no-cache --llm-provider azure`,
}

var summariseOrgCmd = &cobra.Command{
	Use:   "org <response-id>",
	Short: "Summarise a single organisation's submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		responseID := args[0]

		cfg := loadConfig()
		applyLLMFlags(cfg)

		svc, err := buildService(cfg, true)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if verbose {
			fmt.Fprintf(os.Stderr, "Summarising organisation: %s\n", responseID)
			fmt.Fprintf(os.Stderr, "Provider: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.ModelIdentity())
			fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
			fmt.Fprintln(os.Stderr)
		}

		summary, err := svc.SummariseOrganisation(ctx, responseID, !noCache)
		if err != nil {
			return fmt.Errorf("summarise organisation: %w", err)
		}

		return emitJSON(summary, outJSON)
	},
}

var summariseQuestionCmd = &cobra.Command{
	Use:   "question <question-id>",
	Short: "Summarise all responses to a single question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID := args[0]

		cfg := loadConfig()
		applyLLMFlags(cfg)

		svc, err := buildService(cfg, true)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if verbose {
			fmt.Fprintf(os.Stderr, "Summarising question: %s\n", questionID)
			fmt.Fprintf(os.Stderr, "Provider: %s (%s)\n", cfg.LLM.Provider, cfg.LLM.ModelIdentity())
			fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
			fmt.Fprintln(os.Stderr)
		}

		summary, err := svc.SummariseQuestion(ctx, questionID, !noCache)
		if err != nil {
			return fmt.Errorf("summarise question: %w", err)
		}

		return emitJSON(summary, outJSON)
	},
}

func init() {
	rootCmd.AddCommand(summariseCmd)
	summariseCmd.AddCommand(summariseOrgCmd)
	summariseCmd.AddCommand(summariseQuestionCmd)

	summariseCmd.PersistentFlags().StringVar(&outJSON, "json", "", "write the summary JSON to this path instead of stdout")
	summariseCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall summarisation timeout")
	summariseCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "skip the summary cache (force fresh LLM calls)")
	summariseCmd.PersistentFlags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, azure)")
	summariseCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applyLLMFlags overlays the per-command LLM flags onto the config.
func applyLLMFlags(cfg *model.Config) {
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

// emitJSON writes v as indented JSON to path, or stdout when path is empty.
func emitJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if path == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}
	return nil
}
