package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hragent/internal/chunker"
	"hragent/internal/index"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Build or rebuild the document index",
	Long: `Extract text from the PDF files in the documents directory, chunk it,
embed each chunk and write the vector index. An existing index is
replaced.

Examples:
  hragent ingest
  hragent ingest ./policies`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(args) == 1 {
		cfg.DocumentsDir = args[0]
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	store, closeStore, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	docs, err := loadDocuments(cfg.DocumentsDir, log)
	if err != nil {
		return err
	}

	builder := index.NewBuilder(
		chunker.NewPageChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences),
		embedder, store, log)
	report, _, err := builder.Build(cmd.Context(), docs)
	if err != nil {
		return err
	}
	fmt.Println(report.String())
	return nil
}
