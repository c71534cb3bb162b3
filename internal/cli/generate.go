// internal/cli/generate.go
package grounded

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/rag"
)

// generateCmd sends one prompt to the completion model and prints the reply.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Send a single prompt to the completion model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		if strings.TrimSpace(prompt) == "" {
			return apperr.Inputf("generate: --prompt is required")
		}
		_, completer, err := newCapabilities(GetConfig())
		if err != nil {
			return err
		}
		output, err := rag.Generate(cmd.Context(), completer, prompt)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	generateCmd.Flags().String("prompt", "", "prompt text")
	rootCmd.AddCommand(generateCmd)
}
