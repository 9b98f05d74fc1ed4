package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/openconsult/consultsum/internal/ingest"
	"github.com/openconsult/consultsum/internal/worker"
)

var (
	batchWorkers   int
	batchOutputDir string
	batchTimeout   time.Duration
	batchNoCache   bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Summarise many targets in parallel",
	Long: `Batch summarises every organisation or every question concurrently:
- Targets are discovered from the dataset, no input file needed
- Workers share a rate limiter so LLM quotas hold across the whole run
- One JSON file per target is written to the output directory

Example:
  consultsum batch orgs
  consultsum batch questions --workers 8 --output-dir ./summaries
  consultsum batch orgs --no-cache --timeout 30m`,
}

var batchOrgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "Summarise every organisation",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), "orgs")
	},
}

var batchQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Summarise every question",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), "questions")
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.AddCommand(batchOrgsCmd)
	batchCmd.AddCommand(batchQuestionsCmd)

	batchCmd.PersistentFlags().IntVar(&batchWorkers, "workers", 0, "number of concurrent workers (default from config)")
	batchCmd.PersistentFlags().StringVar(&batchOutputDir, "output-dir", "", "output directory for summary JSON files (default from config)")
	batchCmd.PersistentFlags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch run")
	batchCmd.PersistentFlags().BoolVar(&batchNoCache, "no-cache", false, "skip the summary cache (force fresh LLM calls)")
	batchCmd.PersistentFlags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, azure)")
	batchCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(parent context.Context, kind string) error {
	cfg := loadConfig()
	applyLLMFlags(cfg)
	if batchWorkers > 0 {
		cfg.Concurrency.Workers = batchWorkers
	}
	outputDir := cfg.Output.Dir
	if batchOutputDir != "" {
		outputDir = batchOutputDir
	}

	svc, err := buildService(cfg, true)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, batchTimeout)
	defer cancel()

	var targets []ingest.Option
	switch kind {
	case "orgs":
		targets, err = svc.ListOrganisations()
	case "questions":
		targets, err = svc.ListQuestions()
	}
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no %s found in %s", kind, cfg.Data.CSVPath)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Consultsum Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Targets:      %d %s\n", len(targets), kind)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.ModelIdentity())
	fmt.Fprintf(os.Stderr, "\n")

	ids := make([]string, len(targets))
	for i, target := range targets {
		ids[i] = target.ID
	}

	processor := worker.NewBatchProcessor(svc, cfg.Concurrency, !batchNoCache)

	successCount := 0
	failureCount := 0

	switch kind {
	case "orgs":
		for _, result := range processor.ProcessOrganisations(ctx, ids) {
			if result.Error != nil {
				failureCount++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ResponseID, result.Error)
				continue
			}
			path := filepath.Join(outputDir, "org_"+result.ResponseID+".json")
			if err := emitJSON(result.Summary, path); err != nil {
				failureCount++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.ResponseID, err)
				continue
			}
			successCount++
			fmt.Fprintf(os.Stderr, "✓ %s (%s)\n", result.ResponseID, result.Summary.OrganisationName)
		}
	case "questions":
		for _, result := range processor.ProcessQuestions(ctx, ids) {
			if result.Error != nil {
				failureCount++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.QuestionID, result.Error)
				continue
			}
			path := filepath.Join(outputDir, "question_"+result.QuestionID+".json")
			if err := emitJSON(result.Summary, path); err != nil {
				failureCount++
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.QuestionID, err)
				continue
			}
			successCount++
			fmt.Fprintf(os.Stderr, "✓ %s\n", result.QuestionID)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", len(ids))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
