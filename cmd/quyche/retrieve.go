package quyche

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lacviet-ai/quyche/pkg/types"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Run one retrieval query against the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRetrieve,
}

var (
	retrieveTopK  int
	retrieveDocID string
)

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().IntVar(&retrieveTopK, "top-k", 0, "Number of chunks to return (0 uses the configured default)")
	retrieveCmd.Flags().StringVar(&retrieveDocID, "document", "", "Restrict retrieval to one document id")

	retrieveCmd.Flags().String("corpus-dir", "", "Directory holding index.json and document files")
	retrieveCmd.Flags().String("entities-file", "", "Pre-extracted entities JSON file")
	retrieveCmd.Flags().String("tree-dir", "", "Directory holding per-document tree JSON files")
	retrieveCmd.Flags().String("llm-api-key", "", "Chat model API key")
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("corpus-dir") {
		cfg.Corpus.Dir, _ = cmd.Flags().GetString("corpus-dir")
	}
	if cmd.Flags().Changed("entities-file") {
		cfg.Corpus.EntitiesFile, _ = cmd.Flags().GetString("entities-file")
	}
	if cmd.Flags().Changed("tree-dir") {
		cfg.Corpus.TreeDir, _ = cmd.Flags().GetString("tree-dir")
	}
	if cmd.Flags().Changed("llm-api-key") {
		cfg.LLM.APIKey, _ = cmd.Flags().GetString("llm-api-key")
	}

	logger := newLogger(cfg.Log)

	client, err := buildClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize corpus: %w", err)
	}

	query := strings.Join(args, " ")
	var filters *types.Filters
	if retrieveDocID != "" {
		filters = &types.Filters{DocumentID: retrieveDocID}
	}

	result, err := client.Retrieve(cmd.Context(), query, retrieveTopK, filters)
	if err != nil {
		return err
	}

	fmt.Printf("Query: %s\n", result.Query)
	fmt.Printf("Found: %d (showing %d)\n\n", result.TotalFound, len(result.Chunks))
	for i, chunk := range result.Chunks {
		fmt.Printf("[%d] %s (score %.2f)\n%s\n\n", i+1, chunk.Source, chunk.Score, chunk.Content)
	}
	return nil
}
