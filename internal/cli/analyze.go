package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ecfr-analyzer/internal/catalog"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/validate"
	"github.com/ppiankov/ecfr-analyzer/internal/worker"
)

var (
	analyzeDate    string
	analyzeJSON    string
	analyzeMD      string
	analyzeTitles  string
	analyzeTimeout time.Duration
	llmProvider    string
	llmModel       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze all titles as of a date and store the results",
	Long: `Analyze fetches every title of the eCFR as of a date and:
- Counts words per title and attributes them to issuing agencies
- Counts regulatory keywords and buckets them into actions
- Scores complexity and extracts key topics per title
- Compares word counts with the most recent earlier snapshot
- Stores the results as a new snapshot

Titles that cannot be fetched are skipped and listed in the report.

Example:
  ecfr-analyzer analyze --date 2024-01-01
  ecfr-analyzer analyze --date 2024-01-01 --json report.json --md report.md
  ecfr-analyzer analyze --titles 1-10,40 --workers 1
  ecfr-analyzer analyze --llm openai --llm-model gpt-4o-mini`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "date of the regulatory text, YYYY-MM-DD (default: today, UTC)")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&analyzeMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().StringVar(&analyzeTitles, "titles", "", "analyze only these titles, e.g. 1,7,40-42 (default: all)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 2*time.Hour, "overall analysis timeout")

	analyzeCmd.Flags().StringVar(&llmProvider, "llm", "", "generate a narrative summary with this LLM provider (openai)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	date, err := dateOrToday(analyzeDate)
	if err != nil {
		return err
	}

	numbers := catalog.Numbers()
	if analyzeTitles != "" {
		numbers, err = worker.ParseTitleList(analyzeTitles, 1, catalog.TitleCount)
		if err != nil {
			return fmt.Errorf("--titles: %w", err)
		}
	}

	if llmProvider != "" {
		viper.Set("llm.provider", llmProvider)
	}
	if llmModel != "" {
		viper.Set("llm.model", llmModel)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	p, cfg, closeStore, err := openPipeline(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  eCFR Analysis\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Date:     %s\n", date)
	fmt.Fprintf(stderr, "  Titles:   %d\n", len(numbers))
	fmt.Fprintf(stderr, "  Workers:  %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Store:    %s\n", cfg.Store.Type)
	fmt.Fprintf(stderr, "  Cache:    %v\n", cfg.Cache.Enabled)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(stderr, "  LLM:      %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(stderr, "\n")

	results, runErr := p.RunTitles(ctx, date, numbers)
	if results == nil {
		return fmt.Errorf("analysis failed: %w", runErr)
	}

	if err := p.RenderReport(results, date, analyzeJSON, analyzeMD, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	var persistenceErr *model.PersistenceError
	if errors.As(runErr, &persistenceErr) {
		return fmt.Errorf("results were computed but not stored: %w", runErr)
	}
	return runErr
}

// dateOrToday validates raw, defaulting to today's UTC date when empty
func dateOrToday(raw string) (string, error) {
	if raw == "" {
		return time.Now().UTC().Format(validate.DateLayout), nil
	}
	return validate.NormalizeDate(raw)
}
