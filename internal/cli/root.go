package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ecfr-analyzer/internal/logging"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/pipeline"
	"github.com/ppiankov/ecfr-analyzer/internal/store"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

const envPrefix = "ECFR"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ecfr-analyzer",
	Short: "ecfr-analyzer - word counts and regulatory language metrics for the eCFR",
	Long: `ecfr-analyzer fetches the full text of all 50 titles of the Electronic
Code of Federal Regulations as of a date and derives simple metrics:

- Word counts per title, attributed to the agencies that issue them
- Frequency of regulatory keywords (shall, must, prohibited, may, ...)
- Mandatory, prohibited and permitted action counts
- A heuristic 1-10 complexity score and key topics per title
- Word-count changes between stored snapshots

Results are stored as dated snapshots and served over HTTP by 'serve'.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Cancelling ctx interrupts running analyses.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ecfr-analyzer %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ecfr-analyzer/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("store", "", "report store: sqlite, postgres, s3, memory")
	flags.String("db", "", "SQLite database path")
	flags.Int("workers", 0, "number of titles analyzed concurrently (1 = strictly sequential)")
	flags.Bool("no-cache", false, "disable the title XML cache (force fresh fetch)")

	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("store.type", flags.Lookup("store"))
	_ = viper.BindPFlag("store.sqlite_path", flags.Lookup("db"))
	_ = viper.BindPFlag("concurrency.workers", flags.Lookup("workers"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and ECFR_* environment variables
func initConfig() {
	logging.Init(verbose)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("could not read .env", "err", err)
	}

	if err := registerDefaults(viper.GetViper()); err != nil {
		logging.Error("could not register defaults", "err", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logging.Warn("could not find home directory", "err", err)
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".ecfr-analyzer"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		logging.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logging.Warn("could not read config file", "path", cfgFile, "err", err)
	}
}

// bindEnv maps ECFR_* variables onto config keys: ECFR_STORE_TYPE overrides store.type
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", envPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	// Secrets and omitempty keys have no default to register
	for _, key := range []string{"store.access_key", "store.secret_key", "store.s3_endpoint", "llm.base_url"} {
		_ = v.BindEnv(key)
	}
}

// registerDefaults makes every config key known to viper so that
// environment variables are consulted during Unmarshal
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}
	return nil
}

func flatten(prefix string, tree map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = v
	}
	return out
}

// loadConfig resolves flags > env > config file > defaults into a validated Config
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	// Unset flags are bound as zero values; keep the configured ones
	if cfg.Concurrency.Workers == 0 {
		cfg.Concurrency.Workers = model.DefaultConfig().Concurrency.Workers
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = model.StoreSQLite
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = model.DefaultConfig().Store.SQLitePath
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openPipeline loads configuration and opens the store and pipeline behind a command
func openPipeline(ctx context.Context, cmd *cobra.Command) (*pipeline.Pipeline, *model.Config, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Type, err)
	}
	logging.Debug("store opened", "type", cfg.Store.Type)

	closeFn := func() {
		if err := st.Close(); err != nil {
			logging.Warn("closing store", "err", err)
		}
	}

	return pipeline.NewPipeline(cfg, st), cfg, closeFn, nil
}
