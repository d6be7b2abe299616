package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ecfr-analyzer/internal/store"
	"github.com/ppiankov/ecfr-analyzer/internal/validate"
)

var (
	titleDate string
	asJSON    bool
)

// titleCmd represents the title command
var titleCmd = &cobra.Command{
	Use:   "title <number>",
	Short: "Analyze a single title without storing it",
	Long: `Title fetches and analyzes one title as of a date. Unlike 'analyze',
any failure to fetch the title is reported as an error.

Example:
  ecfr-analyzer title 40 --date 2024-01-01
  ecfr-analyzer title 7 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := validate.ParseTitleNumber(args[0])
		if err != nil {
			return err
		}
		date, err := dateOrToday(titleDate)
		if err != nil {
			return err
		}

		p, _, closeStore, err := openPipeline(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		report, err := p.Title(cmd.Context(), date, number)
		if err != nil {
			return err
		}

		if asJSON {
			return p.Renderer().WriteJSON(cmd.OutOrStdout(), report)
		}
		p.Renderer().RenderTitle(cmd.OutOrStdout(), report)
		return nil
	},
}

// latestCmd represents the latest command
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent stored analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, closeStore, err := openPipeline(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		results, err := p.Latest(cmd.Context())
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w; run 'ecfr-analyzer analyze' first", err)
		}
		if err != nil {
			return err
		}

		if asJSON {
			return p.Renderer().WriteJSON(cmd.OutOrStdout(), results)
		}
		p.Renderer().RenderSummary(cmd.OutOrStdout(), results)
		return nil
	},
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <number>",
	Short: "Show how a title's word count changed across stored snapshots",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := validate.ParseTitleNumber(args[0])
		if err != nil {
			return err
		}

		p, _, closeStore, err := openPipeline(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		series, err := p.History(cmd.Context(), number)
		if err != nil {
			return err
		}

		if asJSON {
			return p.Renderer().WriteJSON(cmd.OutOrStdout(), series)
		}
		p.Renderer().RenderHistory(cmd.OutOrStdout(), number, series)
		return nil
	},
}

func init() {
	titleCmd.Flags().StringVar(&titleDate, "date", "", "date of the regulatory text, YYYY-MM-DD (default: today, UTC)")

	for _, cmd := range []*cobra.Command{titleCmd, latestCmd, historyCmd} {
		cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a summary")
		rootCmd.AddCommand(cmd)
	}
}
