// internal/cli/ask.go
package grounded

import (
	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/rag"
	"github.com/mwiater/grounded/internal/tui"
)

var startAsk = tui.Run

// askCmd starts the interactive question loop.
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask questions about the indexed documents interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		if _, err := rag.LoadStore(cfg.StorePath); err != nil {
			return err
		}
		return startAsk(cmd.Context(), pipeline, cfg.StorePath, cfg.TopK)
	},
}

func init() {
	addQueryFlags(askCmd, "")
	rootCmd.AddCommand(askCmd)
}
