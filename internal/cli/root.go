// internal/cli/root.go
package grounded

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mwiater/grounded/internal/appconfig"
	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/logging"
	"github.com/mwiater/grounded/internal/metrics"
)

var (
	cfgFile       string
	v             = viper.New()
	currentConfig appconfig.Config
	recorder      *metrics.Recorder
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// flagKeys maps command-line flag names to the config keys they override.
var flagKeys = map[string]string{
	"debug":        "debug",
	"log_file":     "logFile",
	"metrics_file": "metricsFile",
	"docs_dir":     "docsDir",
	"store":        "store",
	"top_k":        "topK",
	"chunk_size":   "chunkSize",
	"overlap":      "chunkOverlap",
	"batch_size":   "batchSize",
	"concurrency":  "embedConcurrency",
	"max_retries":  "maxRetries",
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "grounded",
	Short:         "Index local documents and answer questions with citations",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		if err := logging.Init(currentConfig.LogFilePath(), currentConfig.Debug); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		recorder = metrics.NewRecorder()
		logging.LogEvent("[CLI] %s starting (config file: %q)", cmd.CommandPath(), currentConfig.ConfigPath)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return recorder.WriteFile(currentConfig.MetricsFile)
	},
}

// loadConfig merges defaults, .env, the config file, the environment and the
// flags of cmd into currentConfig.
func loadConfig(cmd *cobra.Command) error {
	if err := appconfig.LoadDotEnv(""); err != nil {
		return err
	}

	v = viper.New()
	appconfig.SetDefaults(v)
	if err := appconfig.BindEnv(v); err != nil {
		return err
	}

	explicit := cmd.Flags().Changed("config")
	path := cfgFile
	if path == "" {
		path = appconfig.DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil || explicit {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return apperr.Configf("failed to load config %s: %v", path, err)
		}
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := appconfig.FromViper(v)
	if err != nil {
		return err
	}
	currentConfig = cfg
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)
	return run(rootCmd.ErrOrStderr())
}

func run(stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logging.Close()

	// cobra only hands the root context to commands that have none yet
	bindContext(rootCmd, ctx)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	reportError(stderr, err)
	return exitCode(err)
}

func bindContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		bindContext(child, ctx)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file, JSON or YAML (default "+appconfig.DefaultConfigPath+" when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "mirror log output to stderr")
	rootCmd.PersistentFlags().String("log_file", "", "path to the log file")
	rootCmd.PersistentFlags().String("metrics_file", "", "write Prometheus metrics to this file on exit")
}

// GetConfig returns the configuration materialised for the running command.
func GetConfig() appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
