// internal/cli/show_config.go
package grounded

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// configCmd groups configuration commands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

// showConfigCmd prints the merged configuration with the API key masked.
var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show config settings",
	Long:  `Show the merged configuration (flags > environment > config file > .env > defaults). The API key is masked.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out := cmd.OutOrStdout()
		if cfg.ConfigPath == "" {
			fmt.Fprintln(out, "No config file loaded (using defaults).")
		} else {
			fmt.Fprintf(out, "Config file: %s\n\n", cfg.ConfigPath)
		}
		redacted := cfg.Redacted()
		if cfg.Debug {
			pp.ColoringEnabled = false
			_, err := pp.Fprintln(out, redacted)
			return err
		}
		return writeFormatted(out, "json", redacted)
	},
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	rootCmd.AddCommand(configCmd)
}
