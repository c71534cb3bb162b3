// internal/cli/index.go
package grounded

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwiater/grounded/internal/rag"
)

// indexCmd chunks and embeds the corpus and writes the vector store.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Chunk and embed a documents directory into the vector store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		embedder, _, err := newCapabilities(cfg)
		if err != nil {
			return err
		}
		entries, err := rag.BuildIndex(cmd.Context(), rag.IndexOptionsFromConfig(cfg), embedder)
		if err != nil {
			return err
		}
		if err := rag.SaveStore(cfg.StorePath, entries); err != nil {
			return err
		}
		recorder.IndexEntries.Set(float64(len(entries)))
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks -> %s\n", len(entries), cfg.StorePath)
		return nil
	},
}

func init() {
	indexCmd.Flags().String("docs_dir", "./sample_docs", "documents directory")
	indexCmd.Flags().String("store", "./data/vectorstore.json", "vector store path")
	indexCmd.Flags().Int("chunk_size", 800, "chunk length in characters")
	indexCmd.Flags().Int("overlap", 150, "characters shared by consecutive chunks")
	indexCmd.Flags().Int("batch_size", 32, "chunks per embedding request")
	indexCmd.Flags().Int("concurrency", 1, "embedding requests in flight")
	rootCmd.AddCommand(indexCmd)
}
