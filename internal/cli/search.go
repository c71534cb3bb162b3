// internal/cli/search.go
package grounded

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/apperr"
)

// searchCmd prints the top-K passages for a query.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print the passages most similar to a query",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		format, _ := cmd.Flags().GetString("format")
		if strings.TrimSpace(query) == "" {
			return apperr.Inputf("search: --query is required")
		}
		cfg := GetConfig()
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		retrieval, err := pipeline.Retrieve(cmd.Context(), query, cfg.TopK)
		if err != nil {
			return err
		}
		return writeFormatted(cmd.OutOrStdout(), format, retrieval.Results)
	},
}

func init() {
	addQueryFlags(searchCmd, "search query")
	searchCmd.Flags().String("format", "json", "output format: json or yaml")
	rootCmd.AddCommand(searchCmd)
}

// addQueryFlags registers the flags shared by the retrieval commands.
func addQueryFlags(cmd *cobra.Command, queryUsage string) {
	if queryUsage != "" {
		cmd.Flags().String("query", "", queryUsage)
	}
	cmd.Flags().String("store", "./data/vectorstore.json", "vector store path")
	cmd.Flags().Int("top_k", 5, "number of passages to retrieve")
}
