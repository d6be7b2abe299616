package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ecfr-analyzer/internal/api"
	"github.com/ppiankov/ecfr-analyzer/internal/logging"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Serve exposes the analyzer over HTTP:

  POST /api/ecfr/analyze           {"date": "YYYY-MM-DD"} runs and stores an analysis
  GET  /api/ecfr                   most recent stored analysis
  GET  /api/ecfr/titles/:number    single-title analysis (?date=YYYY-MM-DD)
  GET  /api/ecfr/history/:number   word-count series of a title
  GET  /health                     liveness

Example:
  ecfr-analyzer serve --addr :8080 --store postgres`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cfg, closeStore, err := openPipeline(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		server := api.NewServer(p, logging.WithPrefix("api"), cfg.Server.AnalyzeTimeout)
		return server.ListenAndServe(cmd.Context(), cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
