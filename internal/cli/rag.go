// internal/cli/rag.go
package grounded

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/apperr"
	"github.com/mwiater/grounded/internal/logging"
)

// ragCmd answers a question from the store and lists the cited tags.
var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Answer a question from the vector store with citations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		if strings.TrimSpace(query) == "" {
			return apperr.Inputf("rag: --query is required")
		}
		cfg := GetConfig()
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}
		answer, retrieval, err := pipeline.Ask(cmd.Context(), query, cfg.TopK)
		if err != nil {
			return err
		}
		logging.LogEvent("[RAG] answer used %d chunks from %d sources, %d citations",
			len(retrieval.Results), retrieval.SourceCoverage, len(answer.Citations))

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, answer.Answer)
		if len(answer.Citations) > 0 {
			payload, err := json.MarshalIndent(answer.Citations, "", "  ")
			if err != nil {
				return fmt.Errorf("encode citations: %w", err)
			}
			fmt.Fprintln(out, "\nCitations:")
			fmt.Fprintln(out, string(payload))
		}
		return nil
	},
}

func init() {
	addQueryFlags(ragCmd, "question to answer")
	rootCmd.AddCommand(ragCmd)
}
