// internal/cli/structured.go
package grounded

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/structured"
)

// structuredCmd extracts a validated {title, summary, keywords} payload.
var structuredCmd = &cobra.Command{
	Use:   "structured",
	Short: "Extract schema-validated JSON (title, summary, keywords) from a prompt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		format, _ := cmd.Flags().GetString("format")
		if strings.TrimSpace(prompt) == "" {
			return apperr.Inputf("structured: --prompt is required")
		}
		cfg := GetConfig()
		_, completer, err := newCapabilities(cfg)
		if err != nil {
			return err
		}
		payload, err := structured.NewExtractor(completer, cfg.MaxRetries).Extract(cmd.Context(), prompt)
		if err != nil {
			return err
		}
		return writeFormatted(cmd.OutOrStdout(), format, payload)
	},
}

func init() {
	structuredCmd.Flags().String("prompt", "", "prompt text")
	structuredCmd.Flags().String("format", "json", "output format: json or yaml")
	structuredCmd.Flags().Int("max_retries", structured.DefaultMaxRetries, "corrective retries after the first attempt")
	rootCmd.AddCommand(structuredCmd)
}
